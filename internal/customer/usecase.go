package customer

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-invoice-service/internal/customer/dto"
	"github.com/fekuna/omnipos-invoice-service/internal/model"
)

var ErrCustomerNotFound = errors.New("customer not found")

type UseCase interface {
	CreateCustomer(ctx context.Context, input *dto.CustomerInput) (*model.Customer, error)
	GetCustomer(ctx context.Context, id string) (*model.Customer, error)
	ListCustomers(ctx context.Context) ([]model.Customer, error)
	UpdateCustomer(ctx context.Context, id string, input *dto.CustomerInput) (*model.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
}
