package model

import "github.com/shopspring/decimal"

const (
	PublishStatusDraft     = "draft"
	PublishStatusPublished = "published"
)

type Product struct {
	BaseModel
	Name             string          `db:"name" json:"name"` // business key, matched by exact equality
	ShortDescription string          `db:"short_description" json:"short_description"`
	Content          string          `db:"content" json:"content"`
	SKU              *string         `db:"sku" json:"sku"` // Nullable
	SalePrice        decimal.Decimal `db:"sale_price" json:"sale_price"`
	StockQuantity    int             `db:"stock_quantity" json:"stock_quantity"`
	PublishStatus    string          `db:"publish_status" json:"publish_status"`
}
