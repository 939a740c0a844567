package file

import "commission-tracker/internal/domain"

var (
	ErrFileNotFound = domain.NewUserError("could not find file")
	ErrFetchFile    = domain.NewServerError("could not fetch file")
	ErrTransform    = domain.NewServerError("could not transform file")
)
