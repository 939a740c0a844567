package commission

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"commission-tracker/internal/domain"
)

// RequiredInput carries the raw values every commission is created with.
type RequiredInput struct {
	ArtistID         string
	CharacterIDs     []string
	Price            string
	DateCommissioned string
	Invoice          domain.FileDescriptor
}

// SupplementalInput carries the values that complete a commission. Empty
// strings are treated as absent.
type SupplementalInput struct {
	Title          string
	Description    string
	DateReceived   string
	NSFW           bool
	ThumbnailLabel string
	Images         []domain.ImageSlot
}

type requiredFields struct {
	artistID         int64
	characterIDs     []int64
	price            float64
	dateCommissioned time.Time
	invoice          domain.FileDescriptor
}

type supplementalFields struct {
	title          string
	description    string
	dateReceived   *time.Time
	nsfw           bool
	thumbnailLabel string
	images         []domain.ImageSlot
}

func (s supplementalFields) hasImages() bool {
	return len(s.images) > 0
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"01/02/2006",
	time.RFC1123Z,
	time.RFC1123,
	"Mon Jan 02 2006 15:04:05 GMT-0700",
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if i := strings.Index(value, " ("); i > 0 {
		value = value[:i]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func validateRequired(in RequiredInput) (*requiredFields, error) {
	dateCommissioned, err := parseDate(in.DateCommissioned)
	if err != nil {
		return nil, ErrInvalidDateCommissioned.WithCause(err)
	}

	if in.Invoice.ContentType != domain.ContentTypePDF {
		return nil, ErrInvoiceNotPDF
	}

	if in.Invoice.Size <= 0 {
		return nil, ErrInvoiceUnreadable.WithCause(fmt.Errorf("invoice size %d", in.Invoice.Size))
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(in.Price), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return nil, ErrInvalidPrice
	}

	artistID, err := parseID(in.ArtistID)
	if err != nil {
		return nil, ErrInvalidArtistID
	}

	characterIDs := make([]int64, 0, len(in.CharacterIDs))
	for _, raw := range in.CharacterIDs {
		id, err := parseID(raw)
		if err != nil {
			return nil, ErrInvalidCharacterIDs
		}
		characterIDs = append(characterIDs, id)
	}

	return &requiredFields{
		artistID:         artistID,
		characterIDs:     characterIDs,
		price:            price,
		dateCommissioned: dateCommissioned,
		invoice:          in.Invoice,
	}, nil
}

func validateSupplemental(in SupplementalInput, now func() time.Time) (*supplementalFields, error) {
	out := &supplementalFields{
		title:          strings.TrimSpace(in.Title),
		description:    strings.TrimSpace(in.Description),
		nsfw:           in.NSFW,
		thumbnailLabel: in.ThumbnailLabel,
		images:         in.Images,
	}

	if in.DateReceived != "" {
		received, err := parseDate(in.DateReceived)
		if err != nil {
			return nil, ErrInvalidDateReceived.WithCause(err)
		}
		out.dateReceived = &received
	}

	if !out.hasImages() {
		if out.thumbnailLabel != "" {
			return nil, ErrThumbnailWithoutImages
		}
		return out, nil
	}

	switch {
	case out.title == "":
		return nil, ErrMissingTitle
	case out.description == "":
		return nil, ErrMissingDescription
	case out.thumbnailLabel == "":
		return nil, ErrMissingThumbnail
	}

	if out.dateReceived == nil {
		received := now()
		out.dateReceived = &received
	}

	names := make(map[string]bool, len(out.images))
	for _, slot := range out.images {
		if names[slot.Name] {
			return nil, ErrDuplicateImageNames
		}
		names[slot.Name] = true

		for _, alt := range slot.Alternates {
			if !domain.IsSupportedImageType(alt.ContentType) {
				return nil, ErrUnsupportedFiletype.WithCause(fmt.Errorf("%s is %s", alt.Filename, alt.ContentType))
			}
			if alt.Size <= 0 {
				return nil, ErrImageUnreadable.WithCause(fmt.Errorf("%s has size %d", alt.Filename, alt.Size))
			}
		}
	}

	if !names[out.thumbnailLabel] {
		return nil, ErrThumbnailLabelMismatch
	}

	return out, nil
}
