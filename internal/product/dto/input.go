package dto

import "github.com/shopspring/decimal"

type CreateProductInput struct {
	Name             string          `json:"name" binding:"required"`
	ShortDescription string          `json:"short_description"`
	Content          string          `json:"content"`
	SKU              string          `json:"sku"`
	SalePrice        decimal.Decimal `json:"sale_price"`
	StockQuantity    int             `json:"stock_quantity" binding:"gte=0"`
	PublishStatus    string          `json:"publish_status" binding:"omitempty,oneof=draft published"`
}

type UpdateProductInput struct {
	ID               string          `json:"-"`
	Name             string          `json:"name" binding:"required"`
	ShortDescription string          `json:"short_description"`
	Content          string          `json:"content"`
	SKU              string          `json:"sku"`
	SalePrice        decimal.Decimal `json:"sale_price"`
	StockQuantity    int             `json:"stock_quantity" binding:"gte=0"`
	PublishStatus    string          `json:"publish_status" binding:"omitempty,oneof=draft published"`
}
