package invoice

import (
	"context"

	"github.com/fekuna/omnipos-invoice-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, inv *model.Invoice) error
	Update(ctx context.Context, inv *model.Invoice) error
	FindByID(ctx context.Context, id string) (*model.Invoice, error)
	// FindLatest returns the most recently created invoice, or nil when none exist.
	FindLatest(ctx context.Context) (*model.Invoice, error)
	FindAll(ctx context.Context) ([]model.Invoice, error)
	DeleteMany(ctx context.Context, ids []string) (int64, error)
}
