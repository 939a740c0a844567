package commission

import "commission-tracker/internal/domain"

var (
	ErrInvalidDateCommissioned = domain.NewUserError("invalid date commissioned value")
	ErrInvoiceNotPDF           = domain.NewUserError("invoice must be a PDF")
	ErrInvoiceUnreadable       = domain.NewServerError("unable to read invoice file")
	ErrInvalidPrice            = domain.NewUserError("price must be a valid number")
	ErrInvalidArtistID         = domain.NewUserError("artist ID must be a valid number")
	ErrInvalidCharacterIDs     = domain.NewUserError("character IDs must be valid numbers")

	ErrInvalidDateReceived    = domain.NewUserError("invalid date received value")
	ErrThumbnailWithoutImages = domain.NewUserError("must provide images if providing thumbnail label")
	ErrMissingTitle           = domain.NewUserError("must provide title")
	ErrMissingDescription     = domain.NewUserError("must provide description")
	ErrMissingThumbnail       = domain.NewUserError("must provide thumbnail selection")
	ErrDuplicateImageNames    = domain.NewUserError("image sets must have unique names")
	ErrUnsupportedFiletype    = domain.NewUserError("unsupported filetype")
	ErrImageUnreadable        = domain.NewServerError("unable to read image file")
	ErrThumbnailLabelMismatch = domain.NewUserError("thumbnail label must match the name of a provided image")

	ErrInvalidID              = domain.NewUserError("invalid ID provided")
	ErrStoreInvoice           = domain.NewServerError("could not store invoice")
	ErrLinkNotFound           = domain.NewUserError("could not find either artist or character to link")
	ErrNothingToUpdate        = domain.NewUserError("must provide at least one field to edit")
	ErrUpdateNotFound         = domain.NewUserError("could not find commission to update")
	ErrCompleteRequiresImages = domain.NewUserError("must provide images for completeCommission")
	ErrCompleteNotFound       = domain.NewUserError("could not find commission to complete")
	ErrAlreadyComplete        = domain.NewUserError("commission is already complete")
	ErrDeleteNotFound         = domain.NewUserError("could not find commission to delete")
	ErrDeleteRecord           = domain.NewServerError("failed to delete associated DB record")
	ErrDeleteFiles            = domain.NewServerError("failed to delete commission files")
	ErrNotFound               = domain.NewUserError("could not find commission")
	ErrPersist                = domain.NewServerError("could not save commission")
	ErrFetch                  = domain.NewServerError("could not fetch commissions")
)
