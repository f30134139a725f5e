package usecase

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/fekuna/omnipos-invoice-service/internal/billing"
	"github.com/fekuna/omnipos-invoice-service/internal/broker"
	"github.com/fekuna/omnipos-invoice-service/internal/cache"
	"github.com/fekuna/omnipos-invoice-service/internal/invoice"
	"github.com/fekuna/omnipos-invoice-service/internal/invoice/dto"
	"github.com/fekuna/omnipos-invoice-service/internal/model"
	"github.com/fekuna/omnipos-invoice-service/internal/pkg/logger"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type saveState string

const (
	stateValidating          saveState = "validating"
	stateReconcilingProducts saveState = "reconciling_products"
	stateComputingTotals     saveState = "computing_totals"
	statePersisting          saveState = "persisting"
	stateDone                saveState = "done"
	stateFailed              saveState = "failed"
)

type invoiceUseCase struct {
	repo      invoice.Repository
	catalog   invoice.ProductCatalog
	snapshots invoice.CatalogSnapshot
	guard     invoice.SaveGuard
	events    invoice.EventPublisher
	validate  *validator.Validate
	logger    logger.ZapLogger
}

func NewInvoiceUseCase(
	repo invoice.Repository,
	catalog invoice.ProductCatalog,
	snapshots invoice.CatalogSnapshot,
	guard invoice.SaveGuard,
	events invoice.EventPublisher,
	log logger.ZapLogger,
) invoice.UseCase {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &invoiceUseCase{
		repo:      repo,
		catalog:   catalog,
		snapshots: snapshots,
		guard:     guard,
		events:    events,
		validate:  v,
		logger:    log,
	}
}

func (uc *invoiceUseCase) SaveInvoice(ctx context.Context, input *dto.SaveInvoiceInput) (*model.Invoice, error) {
	log := uc.logger.With(
		zap.String("session_id", input.SessionID),
		zap.String("existing_id", input.ExistingID),
	)
	state := stateValidating
	enter := func(s saveState) {
		log.Debug("invoice save state", zap.String("from", string(state)), zap.String("to", string(s)))
		state = s
	}
	fail := func(err error) (*model.Invoice, error) {
		log.Warn("invoice save failed", zap.String("state", string(state)), zap.Error(err))
		enter(stateFailed)
		return nil, err
	}

	if err := uc.validateSave(input); err != nil {
		return fail(err)
	}

	if key := saveLockKey(input); key != "" {
		release, err := uc.guard.Acquire(ctx, key)
		switch {
		case errors.Is(err, cache.ErrLocked):
			return fail(invoice.ErrSaveInProgress)
		case err != nil:
			log.Warn("save guard unavailable, continuing without it", zap.Error(err))
		default:
			defer release()
		}
	}

	var (
		existing *model.Invoice
		err      error
	)
	if input.ExistingID != "" {
		existing, err = uc.repo.FindByID(ctx, input.ExistingID)
		if err != nil {
			return fail(&invoice.PersistenceError{Op: "load", Err: err})
		}
		if existing == nil {
			return fail(invoice.ErrInvoiceNotFound)
		}
	}

	enter(stateReconcilingProducts)
	items := toLineItems(input.Items)
	catalog, err := uc.sessionCatalog(ctx, input.SessionID)
	if err != nil {
		return fail(&invoice.ReconciliationError{Err: err})
	}
	created, err := uc.reconcileProducts(ctx, catalog, items)
	// partial results are kept in the snapshot even when reconciliation fails
	uc.extendSnapshot(ctx, log, input.SessionID, created)
	if err != nil {
		return fail(err)
	}

	enter(stateComputingTotals)
	billing.Recalculate(items)
	totals := billing.ComputeTotals(items, input.Shipping, input.Discount, input.TaxRate)

	enter(statePersisting)
	now := time.Now()
	inv := &model.Invoice{
		InvoiceTotals: totals,
		Status:        statusForAction(input.Action),
		CustomerID:    input.CustomerID,
		Items:         items,
		Shipping:      input.Shipping,
		Discount:      input.Discount,
		TaxRate:       input.TaxRate,
		IssueDate:     *input.IssueDate,
		DueDate:       input.DueDate,
	}

	eventType := broker.EventInvoiceCreated
	if existing != nil {
		inv.ID = existing.ID
		inv.InvoiceNumber = existing.InvoiceNumber
		inv.CreatedAt = existing.CreatedAt
		inv.UpdatedAt = now
		eventType = broker.EventInvoiceUpdated

		if err := uc.repo.Update(ctx, inv); err != nil {
			if errors.Is(err, invoice.ErrInvoiceNotFound) {
				return fail(err)
			}
			return fail(&invoice.PersistenceError{Op: "update", Err: err})
		}
	} else {
		inv.ID = uuid.New().String()
		inv.InvoiceNumber = input.InvoiceNumber
		if inv.InvoiceNumber == "" {
			inv.InvoiceNumber = uc.NextInvoiceNumber(ctx)
		}
		inv.CreatedAt = now
		inv.UpdatedAt = now

		if err := uc.repo.Create(ctx, inv); err != nil {
			if errors.Is(err, invoice.ErrInvoiceNumberConflict) {
				return fail(err)
			}
			return fail(&invoice.PersistenceError{Op: "insert", Err: err})
		}
	}

	enter(stateDone)
	log.Info("invoice saved",
		zap.String("invoice_id", inv.ID),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("status", inv.Status),
		zap.String("total_amount", inv.TotalAmount.String()),
	)
	uc.publish(ctx, eventType, inv.ID, inv)

	return inv, nil
}

func (uc *invoiceUseCase) validateSave(input *dto.SaveInvoiceInput) error {
	if err := uc.validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return &invoice.ValidationError{Field: "body", Message: err.Error()}
	}

	if input.DueDate != nil && input.DueDate.Before(*input.IssueDate) {
		return &invoice.ValidationError{Field: "due_date", Message: "due date cannot be earlier than issue date"}
	}
	if input.ExistingID == "" && input.InvoiceNumber != "" && !wireNumberPattern.MatchString(input.InvoiceNumber) {
		return &invoice.ValidationError{Field: "invoice_number", Message: "must look like INV-<number>"}
	}
	if input.Shipping.IsNegative() {
		return &invoice.ValidationError{Field: "shipping", Message: "must not be negative"}
	}
	if input.Discount.IsNegative() {
		return &invoice.ValidationError{Field: "discount", Message: "must not be negative"}
	}
	if input.TaxRate.IsNegative() {
		return &invoice.ValidationError{Field: "tax_rate", Message: "must not be negative"}
	}
	for _, it := range input.Items {
		if it.Title != "" && it.Quantity < 1 {
			return &invoice.ValidationError{Field: "items.quantity", Message: "quantity must be more than 0"}
		}
		if it.Price.IsNegative() {
			return &invoice.ValidationError{Field: "items.price", Message: "must not be negative"}
		}
	}
	return nil
}

func fieldError(fe validator.FieldError) *invoice.ValidationError {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return &invoice.ValidationError{Field: field, Message: "is required"}
	case "oneof":
		return &invoice.ValidationError{Field: field, Message: "must be one of: " + fe.Param()}
	case "gte":
		return &invoice.ValidationError{Field: field, Message: "must be at least " + fe.Param()}
	default:
		return &invoice.ValidationError{Field: field, Message: "is invalid"}
	}
}

// saveLockKey names what a save must hold exclusively. A new invoice saved
// outside a session has nothing to collide with and gets no key.
func saveLockKey(input *dto.SaveInvoiceInput) string {
	if input.SessionID != "" {
		return "invoice:session:" + input.SessionID
	}
	if input.ExistingID != "" {
		return "invoice:" + input.ExistingID
	}
	return ""
}

func (uc *invoiceUseCase) extendSnapshot(ctx context.Context, log logger.ZapLogger, sessionID string, created []model.Product) {
	if sessionID == "" || len(created) == 0 {
		return
	}
	if err := uc.snapshots.Append(ctx, sessionID, created...); err != nil {
		log.Warn("failed to extend session catalog", zap.Error(err))
	}
}

func statusForAction(action string) string {
	if action == dto.ActionSend {
		return model.InvoiceStatusPaid
	}
	return model.InvoiceStatusDraft
}

func toLineItems(in []dto.ItemInput) []model.LineItem {
	items := make([]model.LineItem, 0, len(in))
	for _, it := range in {
		items = append(items, model.LineItem{
			ProductID:   it.ProductID,
			Title:       it.Title,
			Description: it.Description,
			Quantity:    it.Quantity,
			Price:       it.Price,
		})
	}
	return items
}

// sessionCatalog returns the snapshot taken when the session started. An
// unknown or expired session falls back to reading the catalog once.
func (uc *invoiceUseCase) sessionCatalog(ctx context.Context, sessionID string) ([]model.Product, error) {
	if sessionID != "" {
		products, err := uc.snapshots.Load(ctx, sessionID)
		if err == nil {
			return products, nil
		}
		uc.logger.Warn("session catalog unavailable, reading products", zap.String("session_id", sessionID), zap.Error(err))
	}
	return uc.catalog.ListProducts(ctx)
}

func (uc *invoiceUseCase) publish(ctx context.Context, eventType, key string, payload interface{}) {
	if err := uc.events.Publish(ctx, eventType, key, payload); err != nil {
		uc.logger.Error("failed to publish invoice event",
			zap.String("event_type", eventType),
			zap.String("invoice_id", key),
			zap.Error(err),
		)
	}
}

func (uc *invoiceUseCase) StartSession(ctx context.Context, input *dto.StartSessionInput) (*dto.Session, error) {
	number := ""
	if input.InvoiceID != "" {
		inv, err := uc.repo.FindByID(ctx, input.InvoiceID)
		if err != nil {
			return nil, &invoice.PersistenceError{Op: "load", Err: err}
		}
		if inv == nil {
			return nil, invoice.ErrInvoiceNotFound
		}
		number = inv.InvoiceNumber
	} else {
		number = uc.NextInvoiceNumber(ctx)
	}

	products, err := uc.catalog.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []model.Product{}
	}

	sessionID := uuid.New().String()
	if err := uc.snapshots.Save(ctx, sessionID, products); err != nil {
		return nil, err
	}

	uc.logger.Info("invoice editing session started",
		zap.String("session_id", sessionID),
		zap.String("invoice_number", number),
		zap.Int("catalog_size", len(products)),
	)
	return &dto.Session{SessionID: sessionID, InvoiceNumber: number, Products: products}, nil
}

func (uc *invoiceUseCase) Calculate(input *dto.CalculateInput) *dto.CalculateOutput {
	items := toLineItems(input.Items)
	billing.Recalculate(items)
	return &dto.CalculateOutput{
		Items:         items,
		InvoiceTotals: billing.ComputeTotals(items, input.Shipping, input.Discount, input.TaxRate),
	}
}

func (uc *invoiceUseCase) GetInvoice(ctx context.Context, id string) (*model.Invoice, error) {
	inv, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, invoice.ErrInvoiceNotFound
	}
	return inv, nil
}

func (uc *invoiceUseCase) ListInvoices(ctx context.Context) ([]model.Invoice, error) {
	return uc.repo.FindAll(ctx)
}

func (uc *invoiceUseCase) DeleteInvoices(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, &invoice.ValidationError{Field: "ids", Message: "no ids provided"}
	}

	deleted, err := uc.repo.DeleteMany(ctx, ids)
	if err != nil {
		return 0, err
	}
	msgs := make([]broker.Message, 0, len(ids))
	for _, id := range ids {
		msgs = append(msgs, broker.Message{Key: id, Payload: map[string]string{"id": id}})
	}
	if err := uc.events.PublishBatch(ctx, broker.EventInvoiceDeleted, msgs); err != nil {
		uc.logger.Error("failed to publish invoice events",
			zap.String("event_type", broker.EventInvoiceDeleted),
			zap.Int("count", len(msgs)),
			zap.Error(err),
		)
	}
	return deleted, nil
}
