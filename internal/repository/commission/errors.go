package commission

import "errors"

var (
	ErrCommissionNotFound = errors.New("commission not found")
	ErrReferenceNotFound  = errors.New("referenced artist or character not found")
	ErrAlreadyComplete    = errors.New("commission already complete")
	ErrFileNotFound       = errors.New("file not found")
	ErrStorageError       = errors.New("storage error")
	ErrStorageValidation  = errors.New("storage validation failed")
	ErrDuplicateKey       = errors.New("duplicate key violation")
)
