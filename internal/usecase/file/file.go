package file

import (
	"context"
	"errors"
	"io"

	"commission-tracker/internal/domain"
	repo "commission-tracker/internal/repository/commission"
	"commission-tracker/internal/usecase/processor/operations"

	"github.com/dustin/go-humanize"
	"github.com/wb-go/wbf/zlog"
)

// Object is a stored file ready to be streamed.
type Object struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
}

type FileUsecase struct {
	store   objectReader
	resizer imageResizer
	logger  *zlog.Zerolog
}

func NewFileUsecase(store objectReader, resizer imageResizer, logger *zlog.Zerolog) *FileUsecase {
	return &FileUsecase{
		store:   store,
		resizer: resizer,
		logger:  logger,
	}
}

// Fetch returns the object under key. Images are re-rendered when params
// are set; anything else is returned as stored.
func (u *FileUsecase) Fetch(ctx context.Context, key string, params operations.ResizeParams) (*Object, error) {
	body, info, err := u.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, repo.ErrFileNotFound) {
			return nil, ErrFileNotFound
		}
		u.logger.Error().Err(err).Str("key", key).Msg("Failed to fetch file")
		return nil, ErrFetchFile.WithCause(err)
	}

	if params.Empty() || !domain.IsSupportedImageType(info.ContentType) {
		return &Object{Body: body, Size: info.Size, ContentType: info.ContentType}, nil
	}
	defer body.Close()

	buf, contentType, err := u.resizer.Process(ctx, body, params)
	if err != nil {
		u.logger.Error().Err(err).Str("key", key).Msg("Failed to transform file")
		return nil, ErrTransform.WithCause(err)
	}

	u.logger.Debug().
		Str("key", key).
		Int("width", params.Width).
		Int("height", params.Height).
		Str("size", humanize.Bytes(uint64(buf.Len()))).
		Msg("File transformed")

	return &Object{
		Body:        io.NopCloser(buf),
		Size:        int64(buf.Len()),
		ContentType: contentType,
	}, nil
}
