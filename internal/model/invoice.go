package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	InvoiceStatusDraft   = "draft"
	InvoiceStatusPending = "pending"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusOverdue = "overdue"
)

// LineItem is one row of an invoice. Total is derived from Quantity and Price
// and is rewritten on every recalculation; it is never the source of truth.
type LineItem struct {
	ProductID   *string         `json:"product_id,omitempty"`
	Title       string          `json:"title"` // display cache of the product name
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Total       decimal.Decimal `json:"total"`
}

// LineItems is stored as a single JSON document column next to the invoice row.
type LineItems []LineItem

func (li LineItems) Value() (driver.Value, error) {
	if li == nil {
		li = LineItems{}
	}
	b, err := json.Marshal(li)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (li *LineItems) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*li = LineItems{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("line items: unsupported scan type %T", src)
	}
	items := LineItems{}
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("line items: %w", err)
	}
	*li = items
	return nil
}

type InvoiceTotals struct {
	Subtotal    decimal.Decimal `db:"subtotal" json:"subtotal"`
	TaxAmount   decimal.Decimal `db:"tax_amount" json:"tax_amount"`
	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount"`
}

type Invoice struct {
	BaseModel
	InvoiceTotals
	InvoiceNumber string          `db:"invoice_number" json:"invoice_number"`
	Status        string          `db:"status" json:"status"`
	CustomerID    string          `db:"customer_id" json:"customer_id"`
	Items         LineItems       `db:"items" json:"items"`
	Shipping      decimal.Decimal `db:"shipping" json:"shipping"`
	Discount      decimal.Decimal `db:"discount" json:"discount"`
	TaxRate       decimal.Decimal `db:"tax_rate" json:"tax_rate"` // percent
	IssueDate     time.Time       `db:"issue_date" json:"issue_date"`
	DueDate       *time.Time      `db:"due_date" json:"due_date"`
	Customer      *Customer       `db:"-" json:"customer,omitempty"` // Joined data
}
