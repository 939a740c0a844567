package processor

import "commission-tracker/internal/domain"

var (
	ErrEmptyImageSet          = domain.NewUserError("image sets must contain at least one file")
	ErrAlternateMetadata      = domain.NewServerError("could not read image alternate metadata")
	ErrDissimilarAspectRatios = domain.NewUserError("alternates with dissimilar aspect ratios are not allowed")
	ErrReadFile               = domain.NewServerError("unable to read file")
	ErrStoreFile              = domain.NewServerError("could not store file")
)
