package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	ActionDraft = "draft"
	ActionSend  = "send"
)

type ItemInput struct {
	ProductID   *string         `json:"product_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	Price       decimal.Decimal `json:"price"`
}

type SaveInvoiceInput struct {
	ExistingID string `json:"-"` // from the URL on update
	SessionID  string `json:"session_id"`
	Action     string `json:"action" validate:"required,oneof=draft send"`

	// Optional on create: the number proposed when the session started.
	InvoiceNumber string `json:"invoice_number"`

	CustomerID string      `json:"customer_id" validate:"required"`
	IssueDate  *time.Time  `json:"issue_date" validate:"required"`
	DueDate    *time.Time  `json:"due_date"`
	Items      []ItemInput `json:"items" validate:"dive"`

	Shipping decimal.Decimal `json:"shipping"`
	Discount decimal.Decimal `json:"discount"`
	TaxRate  decimal.Decimal `json:"tax_rate"`
}

type StartSessionInput struct {
	InvoiceID string `json:"invoice_id"`
}

type CalculateInput struct {
	Items    []ItemInput     `json:"items"`
	Shipping decimal.Decimal `json:"shipping"`
	Discount decimal.Decimal `json:"discount"`
	TaxRate  decimal.Decimal `json:"tax_rate"`
}

// DeleteInvoicesInput accepts {"ids": [...]} as well as the older
// {"id": "x"} and {"id": ["x", "y"]} forms.
type DeleteInvoicesInput struct {
	ID  IDList   `json:"id"`
	IDs []string `json:"ids"`
}

// All returns the ids from both keys, first occurrence wins.
func (in *DeleteInvoicesInput) All() []string {
	seen := make(map[string]struct{}, len(in.ID)+len(in.IDs))
	out := make([]string, 0, len(in.ID)+len(in.IDs))
	for _, id := range append(append([]string{}, in.IDs...), in.ID...) {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// IDList decodes either a single JSON string or an array of strings.
type IDList []string

func (l *IDList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*l = IDList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = many
	return nil
}
