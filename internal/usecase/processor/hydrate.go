package processor

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"sort"

	"commission-tracker/internal/domain"

	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

type Hydrator struct {
	tolerance float64
}

func NewHydrator() *Hydrator {
	return &Hydrator{tolerance: domain.AspectRatioTolerance}
}

// Hydrate measures every file, sorts the result smallest first and rejects
// sets whose aspect ratios drift from the smallest by the tolerance or more.
func (h *Hydrator) Hydrate(ctx context.Context, files []domain.FileDescriptor) ([]domain.HydratedAlternate, error) {
	if len(files) == 0 {
		return nil, ErrEmptyImageSet
	}

	alternates := make([]domain.HydratedAlternate, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			width, height, err := measure(file)
			if err != nil {
				return ErrAlternateMetadata.WithCause(err)
			}
			alternates[i] = domain.HydratedAlternate{
				FileDescriptor: file,
				Width:          width,
				Height:         height,
				UserProvided:   true,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(alternates, func(i, j int) bool {
		return alternates[i].LargestDimension() < alternates[j].LargestDimension()
	})

	reference := alternates[0].AspectRatio()
	for _, alt := range alternates[1:] {
		if math.Abs(alt.AspectRatio()-reference) >= h.tolerance {
			return nil, ErrDissimilarAspectRatios.WithCause(
				fmt.Errorf("%s is %dx%d, %s is %dx%d",
					alternates[0].Filename, alternates[0].Width, alternates[0].Height,
					alt.Filename, alt.Width, alt.Height))
		}
	}

	return alternates, nil
}

func measure(file domain.FileDescriptor) (int, int, error) {
	rc, err := domain.OpenSource(file.Source)
	if err != nil {
		return 0, 0, err
	}
	defer rc.Close()

	cfg, _, err := image.DecodeConfig(rc)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode %s: %w", file.Filename, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("invalid dimensions %dx%d for %s", cfg.Width, cfg.Height, file.Filename)
	}

	return cfg.Width, cfg.Height, nil
}
