package operations

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"commission-tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x += 7 {
		img.Set(x, height/2, color.RGBA{R: 200, G: 40, B: 90, A: 255})
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func jpegBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	buf := new(bytes.Buffer)
	require.NoError(t, jpeg.Encode(buf, img, nil))
	return buf.Bytes()
}

func hydrated(data []byte, filename, contentType string, width, height int) domain.HydratedAlternate {
	return domain.HydratedAlternate{
		FileDescriptor: domain.FileDescriptor{
			Source:      domain.BytesSource(data),
			Filename:    filename,
			Size:        int64(len(data)),
			ContentType: contentType,
		},
		Width:        width,
		Height:       height,
		UserProvided: true,
	}
}

func TestScaleToFit(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		bound         int
		wantW, wantH  int
	}{
		{"landscape", 2000, 1000, 512, 512, 256},
		{"portrait", 1000, 2000, 512, 256, 512},
		{"square", 1000, 1000, 512, 512, 512},
		{"rounds up", 1500, 1000, 512, 512, 342},
		{"never zero", 3, 1000, 32, 1, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := scaleToFit(tt.width, tt.height, tt.bound)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestThumbnailer_Needed(t *testing.T) {
	th := NewThumbnailer()

	assert.False(t, th.Needed(domain.HydratedAlternate{Width: 512, Height: 300}))
	assert.False(t, th.Needed(domain.HydratedAlternate{Width: 300, Height: 512}))
	assert.True(t, th.Needed(domain.HydratedAlternate{Width: 513, Height: 10}))
	assert.True(t, th.Needed(domain.HydratedAlternate{Width: 10, Height: 900}))
}

func TestThumbnailer_SynthesizePNG(t *testing.T) {
	src := hydrated(pngBytes(t, 2000, 1000), "big.png", domain.ContentTypePNG, 2000, 1000)

	thumb, err := NewThumbnailer().Synthesize(context.Background(), src)
	require.NoError(t, err)

	assert.False(t, thumb.UserProvided)
	assert.Equal(t, 512, thumb.Width)
	assert.Equal(t, 256, thumb.Height)
	assert.Equal(t, domain.ContentTypePNG, thumb.ContentType)
	assert.Equal(t, "generatedThumbnail_big.png", thumb.Filename)

	data, ok := thumb.Source.(domain.BytesSource)
	require.True(t, ok)
	assert.Equal(t, int64(len(data)), thumb.Size)
}

func TestThumbnailer_SynthesizeJPEGPortrait(t *testing.T) {
	src := hydrated(jpegBytes(t, 700, 1400), "tall.jpeg", domain.ContentTypeJPEG, 700, 1400)

	thumb, err := NewThumbnailer().Synthesize(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, 256, thumb.Width)
	assert.Equal(t, 512, thumb.Height)
	assert.Equal(t, domain.ContentTypeJPEG, thumb.ContentType)
	assert.Equal(t, "generatedThumbnail_tall.jpeg", thumb.Filename)
}

func TestThumbnailer_SynthesizeCorrupt(t *testing.T) {
	src := hydrated([]byte("not an image"), "broken.png", domain.ContentTypePNG, 2000, 1000)

	_, err := NewThumbnailer().Synthesize(context.Background(), src)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrThumbnailFailed)
	assert.Equal(t, domain.KindServer, domain.KindOf(err))
}

func TestPlaceholder_Generate(t *testing.T) {
	src := hydrated(pngBytes(t, 400, 200), "small.png", domain.ContentTypePNG, 400, 200)

	uri, err := NewPlaceholder().Generate(context.Background(), src)
	require.NoError(t, err)

	prefix := "data:image/png;base64,"
	require.True(t, strings.HasPrefix(uri, prefix))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, prefix))
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 32, cfg.Width)
	assert.Equal(t, 16, cfg.Height)
}

func TestPlaceholder_JPEGKeepsFormat(t *testing.T) {
	src := hydrated(jpegBytes(t, 100, 300), "p.jpg", domain.ContentTypeJPEG, 100, 300)

	uri, err := NewPlaceholder().Generate(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/jpeg;base64,"))
}

func TestPlaceholder_NoSource(t *testing.T) {
	_, err := NewPlaceholder().Generate(context.Background(), domain.HydratedAlternate{Width: 10, Height: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPlaceholderFailed)
}

func TestResizer_Process(t *testing.T) {
	buf, contentType, err := NewResizer().Process(context.Background(), bytes.NewReader(pngBytes(t, 400, 200)), ResizeParams{Width: 100})
	require.NoError(t, err)
	assert.Equal(t, domain.ContentTypeJPEG, contentType)

	cfg, format, err := image.DecodeConfig(buf)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestResizer_ProcessCorrupt(t *testing.T) {
	_, _, err := NewResizer().Process(context.Background(), strings.NewReader("nope"), ResizeParams{Width: 10})
	assert.ErrorIs(t, err, ErrTransformFailed)
}
