package product

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-invoice-service/internal/model"
	"github.com/fekuna/omnipos-invoice-service/internal/product/dto"
)

var ErrProductNotFound = errors.New("product not found")

type UseCase interface {
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// Indexer mirrors product writes into a search index.
type Indexer interface {
	IndexProduct(ctx context.Context, p *model.Product) error
	DeleteProduct(ctx context.Context, id string) error
}
