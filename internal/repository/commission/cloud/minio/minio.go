package minio

import (
	"context"
	"errors"
	"fmt"
	"io"

	"commission-tracker/internal/config"
	"commission-tracker/internal/domain"
	"commission-tracker/internal/repository/commission"

	"github.com/dustin/go-humanize"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/wb-go/wbf/zlog"
)

const noSuchKey = "NoSuchKey"

type FileRepository struct {
	client *minio.Client
	bucket string
	logger *zlog.Zerolog
}

func NewMinIORepository(cfg *config.Config, logger *zlog.Zerolog) (*FileRepository, error) {
	client, err := minio.New(cfg.Minio.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Minio.AccessKey, cfg.Minio.SecretKey, ""),
		Secure: cfg.Minio.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &FileRepository{
		client: client,
		bucket: cfg.Minio.Bucket,
		logger: logger,
	}, nil
}

func (r *FileRepository) EnsureBucket(ctx context.Context) error {
	exists, err := r.client.BucketExists(ctx, r.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", r.bucket, err)
	}
	if exists {
		return nil
	}

	if err := r.client.MakeBucket(ctx, r.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", r.bucket, err)
	}

	r.logger.Info().Str("bucket", r.bucket).Msg("Bucket created")
	return nil
}

func (r *FileRepository) Put(ctx context.Context, key string, data io.Reader, size int64, contentType string) error {
	if key == "" || size <= 0 {
		return commission.ErrStorageValidation
	}

	info, err := r.client.PutObject(ctx, r.bucket, key, data, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}

	r.logger.Debug().
		Str("key", key).
		Str("content_type", contentType).
		Str("size", humanize.Bytes(uint64(info.Size))).
		Msg("Object stored")
	return nil
}

func (r *FileRepository) Get(ctx context.Context, key string) (io.ReadCloser, domain.ObjectInfo, error) {
	obj, err := r.client.GetObject(ctx, r.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, domain.ObjectInfo{}, r.mapError(key, err)
	}

	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, domain.ObjectInfo{}, r.mapError(key, err)
	}

	if stat.ContentType == "" {
		obj.Close()
		return nil, domain.ObjectInfo{}, fmt.Errorf("object %s has no content type: %w", key, commission.ErrStorageError)
	}

	return obj, domain.ObjectInfo{Size: stat.Size, ContentType: stat.ContentType}, nil
}

func (r *FileRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.RemoveObject(ctx, r.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return r.mapError(key, err)
	}
	return nil
}

// DeleteMany removes every key in one batched request and joins the
// per-object failures.
func (r *FileRepository) DeleteMany(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	objects := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		objects <- minio.ObjectInfo{Key: key}
	}
	close(objects)

	var errs []error
	for removeErr := range r.client.RemoveObjects(ctx, r.bucket, objects, minio.RemoveObjectsOptions{}) {
		errs = append(errs, fmt.Errorf("failed to remove %s: %w", removeErr.ObjectName, removeErr.Err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	r.logger.Debug().Int("count", len(keys)).Msg("Objects removed")
	return nil
}

func (r *FileRepository) mapError(key string, err error) error {
	if minio.ToErrorResponse(err).Code == noSuchKey {
		return fmt.Errorf("object %s: %w", key, commission.ErrFileNotFound)
	}
	return fmt.Errorf("object %s: %w: %v", key, commission.ErrStorageError, err)
}
