package customer

import (
	"context"

	"github.com/fekuna/omnipos-invoice-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, c *model.Customer) error
	FindByID(ctx context.Context, id string) (*model.Customer, error)
	FindAll(ctx context.Context) ([]model.Customer, error)
	Update(ctx context.Context, c *model.Customer) error
	Delete(ctx context.Context, id string) error
}
