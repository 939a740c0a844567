package file

import "commission-tracker/internal/domain"

var (
	ErrMissingKey     = domain.NewUserError("file key is required")
	ErrInvalidWidth   = domain.NewUserError("invalid width value provided")
	ErrInvalidHeight  = domain.NewUserError("invalid height value provided")
	ErrInvalidQuality = domain.NewUserError("invalid quality value provided")
)
