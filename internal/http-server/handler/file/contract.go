package file

import (
	"context"

	file_uc "commission-tracker/internal/usecase/file"
	"commission-tracker/internal/usecase/processor/operations"
)

type fileUsecase interface {
	Fetch(ctx context.Context, key string, params operations.ResizeParams) (*file_uc.Object, error)
}
