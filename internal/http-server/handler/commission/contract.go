package commission

import (
	"context"

	"commission-tracker/internal/domain"
	commission_uc "commission-tracker/internal/usecase/commission"
)

type commissionUsecase interface {
	Create(ctx context.Context, in commission_uc.RequiredInput, supp commission_uc.SupplementalInput) (*domain.Commission, error)
	Complete(ctx context.Context, id int64, supp commission_uc.SupplementalInput) (*domain.Commission, error)
	Update(ctx context.Context, id int64, upd domain.CommissionUpdate) (*domain.Commission, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*domain.Commission, error)
	List(ctx context.Context) ([]domain.Commission, error)
}
