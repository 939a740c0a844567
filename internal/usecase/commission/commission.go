package commission

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"commission-tracker/internal/domain"
	repo "commission-tracker/internal/repository/commission"
	"commission-tracker/internal/usecase/processor"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
	"golang.org/x/sync/errgroup"
)

type CommissionUsecase struct {
	repo      commissionRepository
	files     fileRepository
	uploader  fileUploader
	processor imageProcessor
	producer  orphanProducer
	logger    *zlog.Zerolog
	retries   retry.Strategy
	now       func() time.Time
}

func NewCommissionUsecase(
	repo commissionRepository,
	files fileRepository,
	uploader fileUploader,
	processor imageProcessor,
	producer orphanProducer,
	logger *zlog.Zerolog,
	retries retry.Strategy,
) *CommissionUsecase {
	return &CommissionUsecase{
		repo:      repo,
		files:     files,
		uploader:  uploader,
		processor: processor,
		producer:  producer,
		logger:    logger,
		retries:   retries,
		now:       time.Now,
	}
}

// Create validates the input, stores the invoice and every image slot, then
// persists the commission. Keys written before a failure are reclaimed.
func (u *CommissionUsecase) Create(ctx context.Context, in RequiredInput, supp SupplementalInput) (*domain.Commission, error) {
	required, err := validateRequired(in)
	if err != nil {
		return nil, err
	}

	details, err := validateSupplemental(supp, u.now)
	if err != nil {
		return nil, err
	}

	ledger := processor.NewLedger()

	invoiceKey, err := u.uploader.Upload(ctx, required.invoice, ledger)
	if err != nil {
		u.logger.Error().Err(err).Str("filename", required.invoice.Filename).Msg("Failed to store invoice")
		return nil, ErrStoreInvoice.WithCause(err)
	}

	c := &domain.Commission{
		ArtistID:         required.artistID,
		CharacterIDs:     required.characterIDs,
		Price:            required.price,
		DateCommissioned: required.dateCommissioned,
		Invoice: domain.File{
			Key:         invoiceKey,
			Size:        required.invoice.Size,
			Filename:    required.invoice.Filename,
			ContentType: required.invoice.ContentType,
		},
		NSFW:         details.nsfw,
		DateReceived: details.dateReceived,
	}
	if details.title != "" {
		c.Title = &details.title
	}
	if details.description != "" {
		c.Description = &details.description
	}

	if details.hasImages() {
		images, thumbnail, err := u.processImages(ctx, details, ledger)
		if err != nil {
			u.reclaim(ctx, ledger, "create commission: image processing failed")
			return nil, err
		}
		c.Images = images
		c.Thumbnail = &thumbnail
	}

	created, err := u.repo.Create(ctx, c)
	if err != nil {
		u.reclaim(ctx, ledger, "create commission: persistence failed")
		if errors.Is(err, repo.ErrReferenceNotFound) {
			return nil, ErrLinkNotFound.WithCause(err)
		}
		u.logger.Error().Err(err).Int64("artist_id", c.ArtistID).Msg("Failed to save commission")
		return nil, ErrPersist.WithCause(err)
	}

	u.logger.Info().
		Int64("commission_id", created.ID).
		Int("images", len(c.Images)).
		Bool("complete", created.IsComplete()).
		Msg("Commission created")

	return created, nil
}

// Complete attaches images and the remaining details to a commission that
// was created with required fields only.
func (u *CommissionUsecase) Complete(ctx context.Context, id int64, supp SupplementalInput) (*domain.Commission, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	if len(supp.Images) == 0 || supp.ThumbnailLabel == "" {
		return nil, ErrCompleteRequiresImages
	}

	details, err := validateSupplemental(supp, u.now)
	if err != nil {
		return nil, err
	}

	ledger := processor.NewLedger()

	images, thumbnail, err := u.processImages(ctx, details, ledger)
	if err != nil {
		u.reclaim(ctx, ledger, "complete commission: image processing failed")
		return nil, err
	}

	completed, err := u.repo.Complete(ctx, id, domain.CompletionDetails{
		Title:        details.title,
		Description:  details.description,
		DateReceived: *details.dateReceived,
		NSFW:         details.nsfw,
		Images:       images,
		Thumbnail:    thumbnail,
	})
	if err != nil {
		u.reclaim(ctx, ledger, "complete commission: persistence failed")
		switch {
		case errors.Is(err, repo.ErrCommissionNotFound):
			return nil, ErrCompleteNotFound
		case errors.Is(err, repo.ErrAlreadyComplete):
			return nil, ErrAlreadyComplete
		default:
			u.logger.Error().Err(err).Int64("commission_id", id).Msg("Failed to complete commission")
			return nil, ErrPersist.WithCause(err)
		}
	}

	u.logger.Info().Int64("commission_id", id).Int("images", len(images)).Msg("Commission completed")
	return completed, nil
}

func (u *CommissionUsecase) Update(ctx context.Context, id int64, upd domain.CommissionUpdate) (*domain.Commission, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}

	if upd.Title != nil && *upd.Title == "" {
		upd.Title = nil
	}
	if upd.Description != nil && *upd.Description == "" {
		upd.Description = nil
	}
	if upd.Empty() {
		return nil, ErrNothingToUpdate
	}

	updated, err := u.repo.Update(ctx, id, upd)
	if err != nil {
		if errors.Is(err, repo.ErrCommissionNotFound) {
			return nil, ErrUpdateNotFound
		}
		u.logger.Error().Err(err).Int64("commission_id", id).Msg("Failed to update commission")
		return nil, ErrPersist.WithCause(err)
	}

	return updated, nil
}

// Delete removes the record and then every object it referenced in one
// batched call.
func (u *CommissionUsecase) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidID
	}

	deleted, err := u.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrCommissionNotFound) {
			return ErrDeleteNotFound
		}
		u.logger.Error().Err(err).Int64("commission_id", id).Msg("Failed to delete commission record")
		return ErrDeleteRecord.WithCause(err)
	}

	keys := deleted.StorageKeys()
	if err := u.files.DeleteMany(ctx, keys); err != nil {
		u.logger.Error().Err(err).Int64("commission_id", id).Strs("keys", keys).Msg("Failed to delete commission files")
		u.publishOrphans(ctx, keys, "delete commission: storage delete failed")
		return ErrDeleteFiles.WithCause(err)
	}

	u.logger.Info().Int64("commission_id", id).Int("files", len(keys)).Msg("Commission deleted")
	return nil
}

func (u *CommissionUsecase) Get(ctx context.Context, id int64) (*domain.Commission, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}

	c, err := u.repo.FindOne(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrCommissionNotFound) {
			return nil, ErrNotFound
		}
		u.logger.Error().Err(err).Int64("commission_id", id).Msg("Failed to fetch commission")
		return nil, ErrFetch.WithCause(err)
	}

	return c, nil
}

func (u *CommissionUsecase) List(ctx context.Context) ([]domain.Commission, error) {
	commissions, err := u.repo.FindMany(ctx)
	if err != nil {
		u.logger.Error().Err(err).Msg("Failed to list commissions")
		return nil, ErrFetch.WithCause(err)
	}
	return commissions, nil
}

// processImages runs every slot concurrently and returns them in caller
// order together with a copy of the slot chosen as thumbnail.
func (u *CommissionUsecase) processImages(ctx context.Context, details *supplementalFields, ledger *processor.Ledger) ([]domain.Image, domain.Image, error) {
	images := make([]domain.Image, len(details.images))

	g, gctx := errgroup.WithContext(ctx)
	for i, slot := range details.images {
		g.Go(func() error {
			img, err := u.processor.Process(gctx, slot, ledger)
			if err != nil {
				return err
			}
			images[i] = *img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, domain.Image{}, err
	}

	for _, img := range images {
		if img.Name == details.thumbnailLabel {
			thumbnail := img
			thumbnail.Alternates = append([]domain.Alternate(nil), img.Alternates...)
			return images, thumbnail, nil
		}
	}

	return nil, domain.Image{}, ErrThumbnailLabelMismatch
}

// reclaim deletes every key recorded in ledger. Keys that cannot be
// deleted inline are handed to the orphan worker.
func (u *CommissionUsecase) reclaim(ctx context.Context, ledger *processor.Ledger, reason string) {
	keys := ledger.Keys()
	if len(keys) == 0 {
		return
	}

	ctx = context.WithoutCancel(ctx)

	if err := u.files.DeleteMany(ctx, keys); err != nil {
		u.logger.Warn().Err(err).Strs("keys", keys).Str("reason", reason).Msg("Failed to reclaim uploaded files")
		u.publishOrphans(ctx, keys, reason)
		return
	}

	u.logger.Info().Int("keys", len(keys)).Str("reason", reason).Msg("Reclaimed uploaded files")
}

func (u *CommissionUsecase) publishOrphans(ctx context.Context, keys []string, reason string) {
	event := domain.OrphanedBlobs{
		ID:         uuid.New().String(),
		Keys:       keys,
		Reason:     reason,
		OccurredAt: u.now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		u.logger.Error().Err(err).Strs("keys", keys).Msg("Failed to marshal orphaned blobs event")
		return
	}

	if err := u.producer.Send(context.WithoutCancel(ctx), u.retries, []byte(event.ID), payload); err != nil {
		u.logger.Error().Err(err).Strs("keys", keys).Msg("Failed to publish orphaned blobs event")
		return
	}

	u.logger.Info().Str("event_id", event.ID).Int("keys", len(keys)).Msg("Orphaned blobs queued for reclaim")
}
