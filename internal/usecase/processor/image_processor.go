package processor

import (
	"context"

	"commission-tracker/internal/domain"
	"commission-tracker/internal/usecase/processor/operations"

	"github.com/wb-go/wbf/zlog"
	"golang.org/x/sync/errgroup"
)

type ImageProcessor struct {
	hydrator    *Hydrator
	thumbnailer *operations.Thumbnailer
	placeholder *operations.Placeholder
	uploader    *Uploader
	logger      *zlog.Zerolog
}

func NewImageProcessor(uploader *Uploader, logger *zlog.Zerolog) *ImageProcessor {
	return &ImageProcessor{
		hydrator:    NewHydrator(),
		thumbnailer: operations.NewThumbnailer(),
		placeholder: operations.NewPlaceholder(),
		uploader:    uploader,
		logger:      logger,
	}
}

// Process turns one image slot into a stored image: hydrate, synthesize a
// thumbnail when the smallest alternate is oversized, build the placeholder
// and upload every alternate concurrently.
func (p *ImageProcessor) Process(ctx context.Context, slot domain.ImageSlot, ledger *Ledger) (*domain.Image, error) {
	alternates, err := p.hydrator.Hydrate(ctx, slot.Alternates)
	if err != nil {
		p.logger.Warn().Err(err).Str("slot", slot.Name).Msg("Failed to hydrate alternates")
		return nil, err
	}

	previewSource := alternates[0]
	if p.thumbnailer.Needed(alternates[0]) {
		thumb, err := p.thumbnailer.Synthesize(ctx, alternates[0])
		if err != nil {
			p.logger.Error().Err(err).Str("slot", slot.Name).Msg("Failed to synthesize thumbnail")
			return nil, err
		}
		alternates = append(alternates, *thumb)
		previewSource = *thumb

		p.logger.Debug().
			Str("slot", slot.Name).
			Int("width", thumb.Width).
			Int("height", thumb.Height).
			Msg("Thumbnail synthesized")
	}

	placeholder, err := p.placeholder.Generate(ctx, previewSource)
	if err != nil {
		p.logger.Error().Err(err).Str("slot", slot.Name).Msg("Failed to generate placeholder")
		return nil, err
	}

	uploaded := make([]domain.Alternate, len(alternates))

	g, gctx := errgroup.WithContext(ctx)
	for i, alt := range alternates {
		g.Go(func() error {
			record, err := p.uploader.UploadAlternate(gctx, alt, ledger)
			if err != nil {
				return err
			}
			uploaded[i] = record
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		p.logger.Error().Err(err).Str("slot", slot.Name).Msg("Failed to upload alternates")
		return nil, err
	}

	p.logger.Info().
		Str("slot", slot.Name).
		Int("alternates", len(uploaded)).
		Msg("Image set processed")

	return &domain.Image{
		Name:           slot.Name,
		PlaceholderURI: placeholder,
		Alternates:     uploaded,
	}, nil
}
