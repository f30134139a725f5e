package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-invoice-service/internal/invoice"
	"github.com/fekuna/omnipos-invoice-service/internal/invoice/dto"
	"github.com/fekuna/omnipos-invoice-service/internal/invoice/handler"
	"github.com/fekuna/omnipos-invoice-service/internal/model"
	"github.com/fekuna/omnipos-invoice-service/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockInvoiceUseCase struct {
	mock.Mock
}

func (m *MockInvoiceUseCase) SaveInvoice(ctx context.Context, input *dto.SaveInvoiceInput) (*model.Invoice, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *MockInvoiceUseCase) StartSession(ctx context.Context, input *dto.StartSessionInput) (*dto.Session, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.Session), args.Error(1)
}

func (m *MockInvoiceUseCase) NextInvoiceNumber(ctx context.Context) string {
	return m.Called(ctx).String(0)
}

func (m *MockInvoiceUseCase) Calculate(input *dto.CalculateInput) *dto.CalculateOutput {
	return m.Called(input).Get(0).(*dto.CalculateOutput)
}

func (m *MockInvoiceUseCase) GetInvoice(ctx context.Context, id string) (*model.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *MockInvoiceUseCase) ListInvoices(ctx context.Context) ([]model.Invoice, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Invoice), args.Error(1)
}

func (m *MockInvoiceUseCase) DeleteInvoices(ctx context.Context, ids []string) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func setup() (*gin.Engine, *MockInvoiceUseCase) {
	gin.SetMode(gin.TestMode)
	uc := new(MockInvoiceUseCase)
	r := gin.New()
	handler.NewInvoiceHandler(uc, logger.NewNop()).RegisterRoutes(r.Group("/api"))
	return r, uc
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, path, nil)
	} else {
		req, _ = http.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

const saveBody = `{
	"session_id": "s1",
	"action": "send",
	"customer_id": "c1",
	"issue_date": "2024-03-01T00:00:00Z",
	"items": [{"title": "Design", "description": "logo", "quantity": 2, "price": 500}],
	"shipping": 50,
	"discount": "0",
	"tax_rate": 18
}`

func TestCreateInvoice(t *testing.T) {
	r, uc := setup()

	saved := &model.Invoice{
		BaseModel:     model.BaseModel{ID: "inv-1"},
		InvoiceNumber: "INV-1043",
		InvoiceTotals: model.InvoiceTotals{TotalAmount: decimal.NewFromInt(1139)},
	}
	uc.On("SaveInvoice", mock.Anything, mock.MatchedBy(func(in *dto.SaveInvoiceInput) bool {
		return in.ExistingID == "" &&
			in.SessionID == "s1" &&
			in.Items[0].Quantity == 2 &&
			in.Items[0].Price.Equal(decimal.NewFromInt(500)) &&
			in.TaxRate.Equal(decimal.NewFromInt(18))
	})).Return(saved, nil)

	w := do(r, http.MethodPost, "/api/invoices", saveBody)

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "inv-1", body["id"])
	assert.Equal(t, "INV-1043", body["invoice_number"])
	assert.Equal(t, "1139", body["total_amount"])
	uc.AssertExpectations(t)
}

func TestUpdateInvoice_UsesPathID(t *testing.T) {
	r, uc := setup()
	uc.On("SaveInvoice", mock.Anything, mock.MatchedBy(func(in *dto.SaveInvoiceInput) bool {
		return in.ExistingID == "inv-7"
	})).Return(&model.Invoice{BaseModel: model.BaseModel{ID: "inv-7"}}, nil)

	w := do(r, http.MethodPut, "/api/invoices/inv-7", saveBody)
	assert.Equal(t, http.StatusOK, w.Code)
	uc.AssertExpectations(t)
}

func TestCreateInvoice_NonNumericQuantity(t *testing.T) {
	r, uc := setup()
	w := do(r, http.MethodPost, "/api/invoices", `{"items":[{"title":"A","quantity":"two","price":1}]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	uc.AssertNotCalled(t, "SaveInvoice", mock.Anything, mock.Anything)
}

func TestSaveInvoice_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		field  string
	}{
		{"validation", &invoice.ValidationError{Field: "due_date", Message: "due date cannot be earlier than issue date"}, http.StatusBadRequest, "due_date"},
		{"not found", invoice.ErrInvoiceNotFound, http.StatusNotFound, ""},
		{"number conflict", invoice.ErrInvoiceNumberConflict, http.StatusConflict, ""},
		{"in flight", invoice.ErrSaveInProgress, http.StatusConflict, ""},
		{"reconciliation", &invoice.ReconciliationError{Title: "Design", Err: errors.New("timeout")}, http.StatusBadGateway, ""},
		{"persistence", &invoice.PersistenceError{Op: "insert", Err: errors.New("disk full")}, http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, uc := setup()
			uc.On("SaveInvoice", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := do(r, http.MethodPost, "/api/invoices", saveBody)

			assert.Equal(t, tt.status, w.Code)
			body := decodeBody(t, w)
			assert.NotEmpty(t, body["error"])
			if tt.field != "" {
				assert.Equal(t, tt.field, body["field"])
			}
		})
	}
}

func TestPersistenceErrorKeepsUnderlyingMessage(t *testing.T) {
	r, uc := setup()
	uc.On("SaveInvoice", mock.Anything, mock.Anything).
		Return(nil, &invoice.PersistenceError{Op: "update", Err: errors.New("deadlock detected")})

	w := do(r, http.MethodPut, "/api/invoices/inv-1", saveBody)
	assert.Contains(t, decodeBody(t, w)["error"], "deadlock detected")
}

func TestNextInvoiceNumber(t *testing.T) {
	r, uc := setup()
	uc.On("NextInvoiceNumber", mock.Anything).Return("INV-1043")

	w := do(r, http.MethodGet, "/api/invoices/next-id", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "INV-1043", decodeBody(t, w)["nextInvoiceId"])
	uc.AssertNotCalled(t, "GetInvoice", mock.Anything, mock.Anything)
}

func TestStartSession(t *testing.T) {
	r, uc := setup()
	uc.On("StartSession", mock.Anything, &dto.StartSessionInput{}).
		Return(&dto.Session{SessionID: "s1", InvoiceNumber: "INV-1001", Products: []model.Product{}}, nil)

	w := do(r, http.MethodPost, "/api/invoices/sessions", "")
	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "s1", body["session_id"])
	assert.Equal(t, "INV-1001", body["invoice_number"])
	assert.Equal(t, []interface{}{}, body["products"])
}

func TestStartSession_ExistingInvoice(t *testing.T) {
	r, uc := setup()
	uc.On("StartSession", mock.Anything, &dto.StartSessionInput{InvoiceID: "inv-1"}).
		Return(nil, invoice.ErrInvoiceNotFound)

	w := do(r, http.MethodPost, "/api/invoices/sessions", `{"invoice_id":"inv-1"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCalculate(t *testing.T) {
	r, uc := setup()
	uc.On("Calculate", mock.Anything).Return(&dto.CalculateOutput{
		InvoiceTotals: model.InvoiceTotals{
			Subtotal:    decimal.NewFromInt(1000),
			TaxAmount:   decimal.NewFromInt(189),
			TotalAmount: decimal.NewFromInt(1139),
		},
	})

	w := do(r, http.MethodPost, "/api/invoices/calculate", `{"items":[{"title":"Design","quantity":2,"price":500}],"shipping":50,"tax_rate":18}`)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "1000", body["subtotal"])
	assert.Equal(t, "189", body["tax_amount"])
	assert.Equal(t, "1139", body["total_amount"])
}

func TestDeleteInvoices(t *testing.T) {
	r, uc := setup()
	uc.On("DeleteInvoices", mock.Anything, []string{"a", "b"}).Return(int64(2), nil)

	w := do(r, http.MethodDelete, "/api/invoices", `{"ids":["a","b"]}`)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["deleted"])
}

func TestDeleteInvoices_AcceptsIDKey(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"single id", `{"id":"a"}`, []string{"a"}},
		{"id array", `{"id":["a","b"]}`, []string{"a", "b"}},
		{"both keys deduplicated", `{"ids":["a"],"id":["a","b"]}`, []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, uc := setup()
			uc.On("DeleteInvoices", mock.Anything, tt.want).Return(int64(len(tt.want)), nil)

			w := do(r, http.MethodDelete, "/api/invoices", tt.body)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, float64(len(tt.want)), decodeBody(t, w)["deleted"])
			uc.AssertExpectations(t)
		})
	}
}

func TestDeleteInvoices_RejectsNonStringID(t *testing.T) {
	r, uc := setup()

	w := do(r, http.MethodDelete, "/api/invoices", `{"id":42}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	uc.AssertNotCalled(t, "DeleteInvoices", mock.Anything, mock.Anything)
}

func TestGetInvoice_NotFound(t *testing.T) {
	r, uc := setup()
	uc.On("GetInvoice", mock.Anything, "missing").Return(nil, invoice.ErrInvoiceNotFound)

	w := do(r, http.MethodGet, "/api/invoices/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "invoice not found", decodeBody(t, w)["error"])
}

func TestListInvoices(t *testing.T) {
	r, uc := setup()
	uc.On("ListInvoices", mock.Anything).Return([]model.Invoice{
		{BaseModel: model.BaseModel{ID: "inv-1"}, Customer: &model.Customer{Name: "Acme"}},
	}, nil)

	w := do(r, http.MethodGet, "/api/invoices", "")
	require.Equal(t, http.StatusOK, w.Code)

	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Acme", list[0]["customer"].(map[string]interface{})["name"])
}
