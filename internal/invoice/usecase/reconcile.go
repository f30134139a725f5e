package usecase

import (
	"context"

	"github.com/fekuna/omnipos-invoice-service/internal/invoice"
	"github.com/fekuna/omnipos-invoice-service/internal/model"
	productdto "github.com/fekuna/omnipos-invoice-service/internal/product/dto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const autoProvisionedStock = 100

// reconcileProducts makes sure every titled item points at a product. Items
// whose product_id is in the snapshot are left alone, otherwise the title is
// matched exactly against product names. Each missing title is created once,
// concurrently with the others, and its id is written back onto every item
// carrying that title. The created products are returned so the caller can
// extend the session snapshot. On failure the products that were created
// before the error are still returned alongside it.
func (uc *invoiceUseCase) reconcileProducts(ctx context.Context, catalog []model.Product, items []model.LineItem) ([]model.Product, error) {
	known := make(map[string]struct{}, len(catalog))
	byName := make(map[string]string, len(catalog))
	for _, p := range catalog {
		known[p.ID] = struct{}{}
		if _, dup := byName[p.Name]; !dup {
			byName[p.Name] = p.ID
		}
	}

	var missing []model.LineItem
	seen := map[string]struct{}{}
	for i := range items {
		it := &items[i]
		if it.Title == "" {
			continue
		}
		if it.ProductID != nil {
			if _, ok := known[*it.ProductID]; ok {
				continue
			}
		}
		if id, ok := byName[it.Title]; ok {
			it.ProductID = &id
			continue
		}
		if _, ok := seen[it.Title]; ok {
			continue
		}
		seen[it.Title] = struct{}{}
		missing = append(missing, *it)
	}

	if len(missing) == 0 {
		return nil, nil
	}

	// no shared cancellation: one failed create does not abort the others
	created := make([]model.Product, len(missing))
	var g errgroup.Group
	for i, it := range missing {
		i, it := i, it
		g.Go(func() error {
			p, err := uc.catalog.CreateProduct(ctx, &productdto.CreateProductInput{
				Name:             it.Title,
				ShortDescription: it.Description,
				SalePrice:        it.Price,
				StockQuantity:    autoProvisionedStock,
				PublishStatus:    model.PublishStatusPublished,
			})
			if err != nil {
				uc.logger.Error("failed to provision product", zap.String("title", it.Title), zap.Error(err))
				return &invoice.ReconciliationError{Title: it.Title, Err: err}
			}
			created[i] = *p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		provisioned := make([]model.Product, 0, len(created))
		for _, p := range created {
			if p.ID != "" {
				provisioned = append(provisioned, p)
			}
		}
		return provisioned, err
	}

	createdIDs := make(map[string]string, len(created))
	for i, p := range created {
		createdIDs[missing[i].Title] = p.ID
	}
	for i := range items {
		it := &items[i]
		if it.ProductID != nil {
			if _, ok := known[*it.ProductID]; ok {
				continue
			}
		}
		if id, ok := createdIDs[it.Title]; ok {
			it.ProductID = &id
		}
	}

	uc.logger.Info("provisioned products for invoice items", zap.Int("count", len(created)))
	return created, nil
}
