package operations

import "commission-tracker/internal/domain"

var (
	ErrThumbnailFailed   = domain.NewServerError("failed to create compressed version of alternate")
	ErrThumbnailMetadata = domain.NewServerError("could not fetch generated thumbnail metadata")
	ErrPlaceholderFailed = domain.NewServerError("could not generate image placeholder")
	ErrTransformFailed   = domain.NewServerError("could not transform image")
)
