package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-invoice-service/internal/model"
	"github.com/fekuna/omnipos-invoice-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-invoice-service/internal/product"
	"github.com/fekuna/omnipos-invoice-service/internal/product/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type productUseCase struct {
	repo    product.Repository
	indexer product.Indexer
	logger  logger.ZapLogger
}

// NewProductUseCase wires the product usecase. indexer may be nil when
// Elasticsearch is not configured.
func NewProductUseCase(repo product.Repository, indexer product.Indexer, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		repo:    repo,
		indexer: indexer,
		logger:  log,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	now := time.Now()

	status := input.PublishStatus
	if status == "" {
		status = model.PublishStatusDraft
	}
	var sku *string
	if input.SKU != "" {
		s := input.SKU
		sku = &s
	}

	p := &model.Product{
		BaseModel:        model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:             input.Name,
		ShortDescription: input.ShortDescription,
		Content:          input.Content,
		SKU:              sku,
		SalePrice:        input.SalePrice,
		StockQuantity:    input.StockQuantity,
		PublishStatus:    status,
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	// Sync to Elastic
	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

func (uc *productUseCase) syncToElastic(ctx context.Context, p *model.Product) {
	if uc.indexer == nil {
		return
	}
	if err := uc.indexer.IndexProduct(ctx, p); err != nil {
		uc.logger.Error("failed to index product", zap.String("product_id", p.ID), zap.Error(err))
	}
}

func (uc *productUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, product.ErrProductNotFound
	}
	return p, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context) ([]model.Product, error) {
	return uc.repo.FindAll(ctx)
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, product.ErrProductNotFound
	}

	p.Name = input.Name
	p.ShortDescription = input.ShortDescription
	p.Content = input.Content
	p.SalePrice = input.SalePrice
	p.StockQuantity = input.StockQuantity
	if input.PublishStatus != "" {
		p.PublishStatus = input.PublishStatus
	}
	if input.SKU != "" {
		sku := input.SKU
		p.SKU = &sku
	} else {
		p.SKU = nil
	}

	p.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	// Sync ES
	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id string) error {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return nil // Already deleted
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}

	// Remove from ES
	if uc.indexer != nil {
		go func() {
			if err := uc.indexer.DeleteProduct(context.Background(), id); err != nil {
				uc.logger.Error("failed to delete product from ES", zap.Error(err))
			}
		}()
	}

	return nil
}
