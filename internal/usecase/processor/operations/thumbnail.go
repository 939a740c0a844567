package operations

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"commission-tracker/internal/domain"

	"github.com/disintegration/imaging"
)

type Thumbnailer struct {
	bound int
}

func NewThumbnailer() *Thumbnailer {
	return &Thumbnailer{bound: domain.ThumbnailMaxDimension}
}

// Needed reports whether smallest is too large to serve as a thumbnail.
func (t *Thumbnailer) Needed(smallest domain.HydratedAlternate) bool {
	return smallest.LargestDimension() > t.bound
}

// Synthesize downsamples smallest so its largest side equals the bound.
// The ratio comes from the measured source, not from the resized output.
func (t *Thumbnailer) Synthesize(ctx context.Context, smallest domain.HydratedAlternate) (*domain.HydratedAlternate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rc, err := domain.OpenSource(smallest.Source)
	if err != nil {
		return nil, ErrThumbnailFailed.WithCause(err)
	}
	defer rc.Close()

	img, format, err := image.Decode(rc)
	if err != nil {
		return nil, ErrThumbnailFailed.WithCause(fmt.Errorf("failed to decode %s: %w", smallest.Filename, err))
	}

	width, height := scaleToFit(smallest.Width, smallest.Height, t.bound)
	resized := imaging.Resize(img, width, height, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, resized, outputFormat(format), imaging.JPEGQuality(domain.DefaultJPEGQuality)); err != nil {
		return nil, ErrThumbnailFailed.WithCause(err)
	}

	data := buf.Bytes()
	cfg, encoded, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, ErrThumbnailMetadata.WithCause(err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || len(data) == 0 {
		return nil, ErrThumbnailMetadata.WithCause(fmt.Errorf("invalid thumbnail %dx%d (%d bytes)", cfg.Width, cfg.Height, len(data)))
	}

	return &domain.HydratedAlternate{
		FileDescriptor: domain.FileDescriptor{
			Source:      domain.BytesSource(data),
			Filename:    thumbnailFilename(smallest.Filename, encoded),
			Size:        int64(len(data)),
			ContentType: contentTypeOf(encoded),
		},
		Width:        cfg.Width,
		Height:       cfg.Height,
		UserProvided: false,
	}, nil
}

func outputFormat(decoded string) imaging.Format {
	switch decoded {
	case "png":
		return imaging.PNG
	case "gif":
		return imaging.GIF
	default:
		return imaging.JPEG
	}
}

func thumbnailFilename(source, format string) string {
	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if stem == "" || stem == "." {
		stem = "image"
	}
	return domain.GeneratedThumbnailName + stem + "." + format
}
