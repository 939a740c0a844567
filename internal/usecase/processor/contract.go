package processor

import (
	"context"
	"io"
)

type objectStore interface {
	Put(ctx context.Context, key string, data io.Reader, size int64, contentType string) error
}
