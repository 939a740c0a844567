package file

import (
	"bytes"
	"context"
	"io"

	"commission-tracker/internal/domain"
	"commission-tracker/internal/usecase/processor/operations"
)

type objectReader interface {
	Get(ctx context.Context, key string) (io.ReadCloser, domain.ObjectInfo, error)
}

type imageResizer interface {
	Process(ctx context.Context, src io.Reader, params operations.ResizeParams) (*bytes.Buffer, string, error)
}
