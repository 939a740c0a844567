package commission

import (
	"context"

	"commission-tracker/internal/domain"
	"commission-tracker/internal/usecase/processor"

	"github.com/wb-go/wbf/retry"
)

type commissionRepository interface {
	Create(ctx context.Context, c *domain.Commission) (*domain.Commission, error)
	Complete(ctx context.Context, id int64, details domain.CompletionDetails) (*domain.Commission, error)
	Update(ctx context.Context, id int64, upd domain.CommissionUpdate) (*domain.Commission, error)
	Delete(ctx context.Context, id int64) (*domain.Commission, error)
	FindOne(ctx context.Context, id int64) (*domain.Commission, error)
	FindMany(ctx context.Context) ([]domain.Commission, error)
}

type fileRepository interface {
	DeleteMany(ctx context.Context, keys []string) error
}

type fileUploader interface {
	Upload(ctx context.Context, file domain.FileDescriptor, ledger *processor.Ledger) (string, error)
}

type imageProcessor interface {
	Process(ctx context.Context, slot domain.ImageSlot, ledger *processor.Ledger) (*domain.Image, error)
}

type orphanProducer interface {
	Send(ctx context.Context, strategy retry.Strategy, key, value []byte) error
}
