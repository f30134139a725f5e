package search

import (
	"context"
	"sync"

	"github.com/fekuna/omnipos-invoice-service/internal/model"
)

const ProductIndex = "products"

const productMapping = `{
	"mappings": {
		"properties": {
			"name": { "type": "text", "fields": { "raw": { "type": "keyword" } } },
			"short_description": { "type": "text" },
			"sku": { "type": "keyword" },
			"sale_price": { "type": "double" },
			"stock_quantity": { "type": "integer" },
			"publish_status": { "type": "keyword" },
			"created_at": { "type": "date" }
		}
	}
}`

// ProductIndexer mirrors product writes into the products index. The index is
// created lazily on first use.
type ProductIndexer struct {
	client *Client
	once   sync.Once
	err    error
}

func NewProductIndexer(client *Client) *ProductIndexer {
	return &ProductIndexer{client: client}
}

func (i *ProductIndexer) ensureIndex(ctx context.Context) error {
	i.once.Do(func() {
		i.err = i.client.CreateIndex(ctx, ProductIndex, productMapping)
	})
	return i.err
}

func (i *ProductIndexer) IndexProduct(ctx context.Context, p *model.Product) error {
	if err := i.ensureIndex(ctx); err != nil {
		return err
	}
	return i.client.Index(ctx, ProductIndex, p.ID, p)
}

func (i *ProductIndexer) DeleteProduct(ctx context.Context, id string) error {
	return i.client.Delete(ctx, ProductIndex, id)
}
