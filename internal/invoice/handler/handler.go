package handler

import (
	"errors"
	"net/http"

	"github.com/fekuna/omnipos-invoice-service/internal/invoice"
	"github.com/fekuna/omnipos-invoice-service/internal/invoice/dto"
	"github.com/fekuna/omnipos-invoice-service/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type InvoiceHandler struct {
	uc     invoice.UseCase
	logger logger.ZapLogger
}

func NewInvoiceHandler(uc invoice.UseCase, log logger.ZapLogger) *InvoiceHandler {
	return &InvoiceHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/invoices")
	g.GET("", h.ListInvoices)
	g.POST("", h.CreateInvoice)
	g.DELETE("", h.DeleteInvoices)
	g.GET("/next-id", h.NextInvoiceNumber)
	g.POST("/sessions", h.StartSession)
	g.POST("/calculate", h.Calculate)
	g.GET("/:id", h.GetInvoice)
	g.PUT("/:id", h.UpdateInvoice)
}

func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	invoices, err := h.uc.ListInvoices(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	inv, err := h.uc.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var input dto.SaveInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "body"})
		return
	}
	input.ExistingID = ""

	inv, err := h.uc.SaveInvoice(c.Request.Context(), &input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	var input dto.SaveInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "body"})
		return
	}
	input.ExistingID = c.Param("id")

	inv, err := h.uc.SaveInvoice(c.Request.Context(), &input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *InvoiceHandler) DeleteInvoices(c *gin.Context) {
	var input dto.DeleteInvoicesInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "body"})
		return
	}

	deleted, err := h.uc.DeleteInvoices(c.Request.Context(), input.All())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "deleted": deleted})
}

func (h *InvoiceHandler) NextInvoiceNumber(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"nextInvoiceId": h.uc.NextInvoiceNumber(c.Request.Context())})
}

func (h *InvoiceHandler) StartSession(c *gin.Context) {
	var input dto.StartSessionInput
	// empty body starts a session for a new invoice
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "body"})
			return
		}
	}

	session, err := h.uc.StartSession(c.Request.Context(), &input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *InvoiceHandler) Calculate(c *gin.Context) {
	var input dto.CalculateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "body"})
		return
	}
	c.JSON(http.StatusOK, h.uc.Calculate(&input))
}

func (h *InvoiceHandler) writeError(c *gin.Context, err error) {
	var (
		vErr *invoice.ValidationError
		rErr *invoice.ReconciliationError
		pErr *invoice.PersistenceError
	)

	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Message, "field": vErr.Field})
	case errors.Is(err, invoice.ErrInvoiceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, invoice.ErrInvoiceNumberConflict), errors.Is(err, invoice.ErrSaveInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &rErr):
		h.logger.Error("product reconciliation failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.As(err, &pErr):
		h.logger.Error("invoice persistence failed", zap.String("op", pErr.Op), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		h.logger.Error("invoice request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
