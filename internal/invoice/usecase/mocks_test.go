package usecase

import (
	"context"

	"github.com/fekuna/omnipos-invoice-service/internal/broker"
	"github.com/fekuna/omnipos-invoice-service/internal/model"
	productdto "github.com/fekuna/omnipos-invoice-service/internal/product/dto"
	"github.com/stretchr/testify/mock"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, inv *model.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockRepository) Update(ctx context.Context, inv *model.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, id string) (*model.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *MockRepository) FindLatest(ctx context.Context) (*model.Invoice, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *MockRepository) FindAll(ctx context.Context) ([]model.Invoice, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Invoice), args.Error(1)
}

func (m *MockRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) ListProducts(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockCatalog) CreateProduct(ctx context.Context, input *productdto.CreateProductInput) (*model.Product, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

type MockSnapshot struct {
	mock.Mock
}

func (m *MockSnapshot) Save(ctx context.Context, sessionID string, products []model.Product) error {
	args := m.Called(ctx, sessionID, products)
	return args.Error(0)
}

func (m *MockSnapshot) Load(ctx context.Context, sessionID string) ([]model.Product, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockSnapshot) Append(ctx context.Context, sessionID string, products ...model.Product) error {
	args := m.Called(ctx, sessionID, products)
	return args.Error(0)
}

type MockGuard struct {
	mock.Mock
}

func (m *MockGuard) Acquire(ctx context.Context, key string) (func(), error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, eventType, key string, payload interface{}) error {
	args := m.Called(ctx, eventType, key, payload)
	return args.Error(0)
}

func (m *MockPublisher) PublishBatch(ctx context.Context, eventType string, msgs []broker.Message) error {
	args := m.Called(ctx, eventType, msgs)
	return args.Error(0)
}
