package operations

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"strings"

	"commission-tracker/internal/domain"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ResizeParams describes an on-demand rendition. Zero width or height keeps
// the aspect ratio; zero quality uses the default.
type ResizeParams struct {
	Width   int
	Height  int
	Quality int
}

func (p ResizeParams) Empty() bool {
	return p.Width == 0 && p.Height == 0 && p.Quality == 0
}

// Resizer renders stored images at a requested size as JPEG.
type Resizer struct{}

func NewResizer() *Resizer {
	return &Resizer{}
}

func (r *Resizer) Process(ctx context.Context, src io.Reader, params ResizeParams) (*bytes.Buffer, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", ErrTransformFailed.WithCause(fmt.Errorf("failed to decode image: %w", err))
	}

	if params.Width > 0 || params.Height > 0 {
		img = imaging.Resize(img, params.Width, params.Height, imaging.Lanczos)
	}

	quality := params.Quality
	if quality == 0 {
		quality = domain.DefaultJPEGQuality
	}

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, "", ErrTransformFailed.WithCause(fmt.Errorf("failed to encode image: %w", err))
	}

	return buf, domain.ContentTypeJPEG, nil
}

// scaleToFit bounds the largest side to bound and rounds the other side up.
func scaleToFit(width, height, bound int) (int, int) {
	ratio := float64(width) / float64(height)
	if width >= height {
		return bound, max(1, int(math.Ceil(float64(bound)/ratio)))
	}
	return max(1, int(math.Ceil(float64(bound)*ratio))), bound
}

func resizeImage(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return dst
}

// encodeAs writes img in format when the standard encoders support it and
// as PNG otherwise. It returns the format actually written.
func encodeAs(w io.Writer, img image.Image, format string) (string, error) {
	var err error

	switch strings.ToLower(format) {
	case "jpg", "jpeg":
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: domain.DefaultJPEGQuality})
		format = "jpeg"
	case "gif":
		err = gif.Encode(w, img, nil)
		format = "gif"
	default:
		err = png.Encode(w, img)
		format = "png"
	}

	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return format, nil
}

func contentTypeOf(format string) string {
	return "image/" + format
}
