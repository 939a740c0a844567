package commission

import "commission-tracker/internal/domain"

var (
	ErrInvalidForm       = domain.NewUserError("invalid multipart form")
	ErrUploadTooLarge    = domain.NewUserError("upload exceeds the maximum allowed size")
	ErrReadUpload        = domain.NewServerError("could not read uploaded file")
	ErrMissingInvoice    = domain.NewUserError("must provide invoice")
	ErrMultipleInvoices  = domain.NewUserError("must provide only 1 invoice")
	ErrInvalidBody       = domain.NewUserError("invalid request body")
	ErrInvalidUpdateBody = domain.NewUserError("invalid values provided for update")
)

func missingField(name string) error {
	return domain.NewUserError("missing required field: " + name)
}
