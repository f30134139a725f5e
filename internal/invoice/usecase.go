package invoice

import (
	"context"

	"github.com/fekuna/omnipos-invoice-service/internal/broker"
	"github.com/fekuna/omnipos-invoice-service/internal/invoice/dto"
	"github.com/fekuna/omnipos-invoice-service/internal/model"
	productdto "github.com/fekuna/omnipos-invoice-service/internal/product/dto"
)

type UseCase interface {
	// SaveInvoice validates, reconciles products, computes totals and then
	// inserts or updates exactly one invoice row.
	SaveInvoice(ctx context.Context, input *dto.SaveInvoiceInput) (*model.Invoice, error)
	StartSession(ctx context.Context, input *dto.StartSessionInput) (*dto.Session, error)
	NextInvoiceNumber(ctx context.Context) string
	Calculate(input *dto.CalculateInput) *dto.CalculateOutput

	GetInvoice(ctx context.Context, id string) (*model.Invoice, error)
	ListInvoices(ctx context.Context) ([]model.Invoice, error)
	DeleteInvoices(ctx context.Context, ids []string) (int64, error)
}

// ProductCatalog is the product store as seen by reconciliation.
type ProductCatalog interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	CreateProduct(ctx context.Context, input *productdto.CreateProductInput) (*model.Product, error)
}

// CatalogSnapshot holds the per-session copy of the product catalog.
type CatalogSnapshot interface {
	Save(ctx context.Context, sessionID string, products []model.Product) error
	Load(ctx context.Context, sessionID string) ([]model.Product, error)
	Append(ctx context.Context, sessionID string, products ...model.Product) error
}

// SaveGuard rejects a second save for the same key while one is in flight.
type SaveGuard interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, payload interface{}) error
	PublishBatch(ctx context.Context, eventType string, msgs []broker.Message) error
}
