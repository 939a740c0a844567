package processor

import (
	"context"
	"fmt"

	"commission-tracker/internal/domain"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
)

type Uploader struct {
	store  objectStore
	logger *zlog.Zerolog
}

func NewUploader(store objectStore, logger *zlog.Zerolog) *Uploader {
	return &Uploader{
		store:  store,
		logger: logger,
	}
}

// Upload writes file under a fresh key and records the key in ledger.
func (u *Uploader) Upload(ctx context.Context, file domain.FileDescriptor, ledger *Ledger) (string, error) {
	if file.Size <= 0 {
		return "", ErrReadFile.WithCause(fmt.Errorf("invalid size %d for %s", file.Size, file.Filename))
	}

	rc, err := domain.OpenSource(file.Source)
	if err != nil {
		return "", ErrReadFile.WithCause(err)
	}
	defer rc.Close()

	key := uuid.New().String()
	if err := u.store.Put(ctx, key, rc, file.Size, file.ContentType); err != nil {
		return "", ErrStoreFile.WithCause(err)
	}
	ledger.Record(key)

	u.logger.Debug().
		Str("key", key).
		Str("filename", file.Filename).
		Str("content_type", file.ContentType).
		Str("size", humanize.Bytes(uint64(file.Size))).
		Msg("File uploaded")

	return key, nil
}

func (u *Uploader) UploadAlternate(ctx context.Context, alt domain.HydratedAlternate, ledger *Ledger) (domain.Alternate, error) {
	key, err := u.Upload(ctx, alt.FileDescriptor, ledger)
	if err != nil {
		return domain.Alternate{}, err
	}

	return domain.Alternate{
		Key:          key,
		Size:         alt.Size,
		Width:        alt.Width,
		Height:       alt.Height,
		Filename:     alt.Filename,
		ContentType:  alt.ContentType,
		UserProvided: alt.UserProvided,
	}, nil
}
