package dto

import "github.com/fekuna/omnipos-invoice-service/internal/model"

// Session is returned when an editing session starts.
type Session struct {
	SessionID     string          `json:"session_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Products      []model.Product `json:"products"`
}

type CalculateOutput struct {
	Items []model.LineItem `json:"items"`
	model.InvoiceTotals
}
