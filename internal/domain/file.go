package domain

import (
	"bytes"
	"errors"
	"io"
	"os"
)

var ErrNoFileSource = errors.New("file has neither a path nor a buffer")

// FileSource is where the bytes of an uploaded or generated file live.
// It is either a PathSource or a BytesSource.
type FileSource interface {
	Open() (io.ReadCloser, error)
	isFileSource()
}

type PathSource string

func (p PathSource) Open() (io.ReadCloser, error) {
	if p == "" {
		return nil, ErrNoFileSource
	}
	return os.Open(string(p))
}

func (PathSource) isFileSource() {}

type BytesSource []byte

func (b BytesSource) Open() (io.ReadCloser, error) {
	if b == nil {
		return nil, ErrNoFileSource
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (BytesSource) isFileSource() {}

func OpenSource(src FileSource) (io.ReadCloser, error) {
	if src == nil {
		return nil, ErrNoFileSource
	}
	return src.Open()
}

type FileDescriptor struct {
	Source      FileSource
	Filename    string
	Size        int64
	ContentType string
}

type HydratedAlternate struct {
	FileDescriptor
	Width        int
	Height       int
	UserProvided bool
}

// LargestDimension is the width for landscape alternates and the height otherwise.
func (a HydratedAlternate) LargestDimension() int {
	if a.Width > a.Height {
		return a.Width
	}
	return a.Height
}

func (a HydratedAlternate) AspectRatio() float64 {
	return float64(a.Width) / float64(a.Height)
}

type ImageSlot struct {
	Name       string
	Alternates []FileDescriptor
}

type ObjectInfo struct {
	Size        int64
	ContentType string
}

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeJPG  = "image/jpg"
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeWebP = "image/webp"
	ContentTypeTIFF = "image/tiff"
	ContentTypeGIF  = "image/gif"
)

var supportedImageTypes = map[string]bool{
	ContentTypeJPG:  true,
	ContentTypeJPEG: true,
	ContentTypePNG:  true,
	ContentTypeWebP: true,
	ContentTypeTIFF: true,
	ContentTypeGIF:  true,
}

func IsSupportedImageType(contentType string) bool {
	return supportedImageTypes[contentType]
}

const (
	DefaultMaxUploadSize   = 256 << 20
	DefaultJPEGQuality     = 85
	ThumbnailMaxDimension  = 512
	PlaceholderDimension   = 32
	AspectRatioTolerance   = 0.05
	GeneratedThumbnailName = "generatedThumbnail_"
	MaxTransformDimension  = 4096
)
