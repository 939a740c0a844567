package operations

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"

	"commission-tracker/internal/domain"
)

// Placeholder renders tiny inline previews as data URIs.
type Placeholder struct {
	bound int
}

func NewPlaceholder() *Placeholder {
	return &Placeholder{bound: domain.PlaceholderDimension}
}

func (p *Placeholder) Generate(ctx context.Context, alt domain.HydratedAlternate) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rc, err := domain.OpenSource(alt.Source)
	if err != nil {
		return "", ErrPlaceholderFailed.WithCause(err)
	}
	defer rc.Close()

	img, format, err := image.Decode(rc)
	if err != nil {
		return "", ErrPlaceholderFailed.WithCause(fmt.Errorf("failed to decode %s: %w", alt.Filename, err))
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return "", ErrPlaceholderFailed.WithCause(fmt.Errorf("empty image %s", alt.Filename))
	}

	width, height := scaleToFit(bounds.Dx(), bounds.Dy(), p.bound)
	small := resizeImage(img, width, height)

	buf := new(bytes.Buffer)
	encoded, err := encodeAs(buf, small, format)
	if err != nil {
		return "", ErrPlaceholderFailed.WithCause(err)
	}

	return "data:" + contentTypeOf(encoded) + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
