// Package billing derives invoice figures from line items.
//
// Everything here is pure and exact: amounts are decimals and nothing is
// rounded, so totals can be recomputed after every edit without drift.
// Rounding for display belongs to the presentation layer.
package billing

import (
	"github.com/fekuna/omnipos-invoice-service/internal/model"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LineTotal returns quantity × unit price.
func LineTotal(quantity int, price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// Recalculate rewrites the Total of every item from its quantity and price.
func Recalculate(items []model.LineItem) {
	for i := range items {
		items[i].Total = LineTotal(items[i].Quantity, items[i].Price)
	}
}

// ComputeTotals derives subtotal, tax and total for a set of items.
//
//	subtotal = Σ quantity × price
//	tax      = (subtotal − discount + shipping) × taxRate / 100
//	total    = subtotal − discount − shipping + tax
//
// Negative adjustments are applied as signed values; rejecting them is the
// caller's job.
func ComputeTotals(items []model.LineItem, shipping, discount, taxRate decimal.Decimal) model.InvoiceTotals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(LineTotal(item.Quantity, item.Price))
	}

	taxAmount := subtotal.Sub(discount).Add(shipping).Mul(taxRate).Div(hundred)
	totalAmount := subtotal.Sub(discount).Sub(shipping).Add(taxAmount)

	return model.InvoiceTotals{
		Subtotal:    subtotal,
		TaxAmount:   taxAmount,
		TotalAmount: totalAmount,
	}
}
