package commission

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"commission-tracker/internal/domain"
	commission_uc "commission-tracker/internal/usecase/commission"

	"github.com/gabriel-vasile/mimetype"
)

const (
	invoiceField  = "invoice"
	maxFieldBytes = 1 << 20
)

type formFile struct {
	field string
	file  domain.FileDescriptor
}

// uploadForm is a multipart body read in part order. File parts are spooled
// to a per-request directory that cleanup removes.
type uploadForm struct {
	values url.Values
	files  []formFile
	dir    string
}

func parseUploadForm(r *http.Request) (*uploadForm, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, ErrInvalidForm.WithCause(err)
	}

	dir, err := os.MkdirTemp("", "commission-upload-*")
	if err != nil {
		return nil, ErrReadUpload.WithCause(err)
	}

	form := &uploadForm{values: url.Values{}, dir: dir}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			form.cleanup()
			return nil, uploadError(err)
		}

		name := part.FormName()
		if name == "" {
			part.Close()
			continue
		}

		if part.FileName() == "" {
			value, err := io.ReadAll(io.LimitReader(part, maxFieldBytes))
			part.Close()
			if err != nil {
				form.cleanup()
				return nil, uploadError(err)
			}
			form.values.Add(name, string(value))
			continue
		}

		file, err := form.spool(part.FileName(), part.Header.Get("Content-Type"), part)
		part.Close()
		if err != nil {
			form.cleanup()
			return nil, err
		}
		form.files = append(form.files, formFile{field: name, file: file})
	}

	return form, nil
}

func uploadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return ErrUploadTooLarge.WithCause(err)
	}
	return ErrInvalidForm.WithCause(err)
}

func (f *uploadForm) spool(filename, contentType string, src io.Reader) (domain.FileDescriptor, error) {
	tmp, err := os.CreateTemp(f.dir, "part-*")
	if err != nil {
		return domain.FileDescriptor{}, ErrReadUpload.WithCause(err)
	}
	defer tmp.Close()

	size, err := io.Copy(tmp, src)
	if err != nil {
		return domain.FileDescriptor{}, uploadError(err)
	}

	contentType = mediaType(contentType)
	if contentType == "" || contentType == "application/octet-stream" {
		if detected, err := mimetype.DetectFile(tmp.Name()); err == nil {
			contentType = mediaType(detected.String())
		}
	}

	return domain.FileDescriptor{
		Source:      domain.PathSource(tmp.Name()),
		Filename:    filename,
		Size:        size,
		ContentType: contentType,
	}, nil
}

func mediaType(value string) string {
	if value == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(value)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(value))
	}
	return mt
}

func (f *uploadForm) cleanup() {
	if f.dir != "" {
		os.RemoveAll(f.dir)
	}
}

func (f *uploadForm) require(names ...string) error {
	for _, name := range names {
		if _, ok := f.values[name]; !ok {
			return missingField(name)
		}
	}
	return nil
}

func (f *uploadForm) invoice() (domain.FileDescriptor, error) {
	var found []domain.FileDescriptor
	for _, ff := range f.files {
		if ff.field == invoiceField {
			found = append(found, ff.file)
		}
	}

	switch len(found) {
	case 0:
		return domain.FileDescriptor{}, ErrMissingInvoice
	case 1:
		return found[0], nil
	default:
		return domain.FileDescriptor{}, ErrMultipleInvoices
	}
}

// slots groups every non-invoice file part by field name, in the order the
// fields first appeared.
func (f *uploadForm) slots() []domain.ImageSlot {
	var slots []domain.ImageSlot
	index := make(map[string]int)

	for _, ff := range f.files {
		if ff.field == invoiceField {
			continue
		}
		i, ok := index[ff.field]
		if !ok {
			i = len(slots)
			index[ff.field] = i
			slots = append(slots, domain.ImageSlot{Name: ff.field})
		}
		slots[i].Alternates = append(slots[i].Alternates, ff.file)
	}

	return slots
}

// characterIDs accepts a JSON array or repeated values.
func (f *uploadForm) characterIDs() ([]string, error) {
	raw := f.values["characterIds"]
	if len(raw) != 1 || !strings.HasPrefix(strings.TrimSpace(raw[0]), "[") {
		return raw, nil
	}

	var items []interface{}
	if err := json.Unmarshal([]byte(raw[0]), &items); err != nil {
		return nil, commission_uc.ErrInvalidCharacterIDs.WithCause(err)
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case float64:
			ids = append(ids, strconv.FormatFloat(v, 'f', -1, 64))
		case string:
			ids = append(ids, v)
		default:
			ids = append(ids, fmt.Sprint(v))
		}
	}
	return ids, nil
}

func (f *uploadForm) supplemental() commission_uc.SupplementalInput {
	nsfw, _ := strconv.ParseBool(f.values.Get("nsfw"))
	return commission_uc.SupplementalInput{
		Title:          f.values.Get("title"),
		Description:    f.values.Get("description"),
		DateReceived:   f.values.Get("dateReceived"),
		NSFW:           nsfw,
		ThumbnailLabel: f.values.Get("thumbnailLabel"),
		Images:         f.slots(),
	}
}
