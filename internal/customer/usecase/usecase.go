package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-invoice-service/internal/customer"
	"github.com/fekuna/omnipos-invoice-service/internal/customer/dto"
	"github.com/fekuna/omnipos-invoice-service/internal/model"
	"github.com/fekuna/omnipos-invoice-service/internal/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type customerUseCase struct {
	repo   customer.Repository
	logger logger.ZapLogger
}

func NewCustomerUseCase(repo customer.Repository, log logger.ZapLogger) customer.UseCase {
	return &customerUseCase{repo: repo, logger: log}
}

func (uc *customerUseCase) CreateCustomer(ctx context.Context, input *dto.CustomerInput) (*model.Customer, error) {
	now := time.Now()
	c := &model.Customer{BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now}}
	apply(c, input)

	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	uc.logger.Info("customer created", zap.String("customer_id", c.ID))
	return c, nil
}

func (uc *customerUseCase) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	c, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, customer.ErrCustomerNotFound
	}
	return c, nil
}

func (uc *customerUseCase) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	return uc.repo.FindAll(ctx)
}

func (uc *customerUseCase) UpdateCustomer(ctx context.Context, id string, input *dto.CustomerInput) (*model.Customer, error) {
	c, err := uc.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(c, input)
	c.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *customerUseCase) DeleteCustomer(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

func apply(c *model.Customer, in *dto.CustomerInput) {
	c.Name = in.Name
	c.Email = in.Email
	c.Phone = in.Phone
	c.Country = in.Country
	c.State = in.State
	c.City = in.City
	c.Address1 = in.Address1
	c.Address2 = in.Address2
	c.Zip = in.Zip
}
