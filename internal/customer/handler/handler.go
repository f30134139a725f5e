package handler

import (
	"errors"
	"net/http"

	"github.com/fekuna/omnipos-invoice-service/internal/customer"
	"github.com/fekuna/omnipos-invoice-service/internal/customer/dto"
	"github.com/fekuna/omnipos-invoice-service/internal/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CustomerHandler struct {
	uc     customer.UseCase
	logger logger.ZapLogger
}

func NewCustomerHandler(uc customer.UseCase, log logger.ZapLogger) *CustomerHandler {
	return &CustomerHandler{uc: uc, logger: log}
}

func (h *CustomerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/customers")
	g.GET("", h.ListCustomers)
	g.POST("", h.CreateCustomer)
	g.GET("/:id", h.GetCustomer)
	g.PUT("/:id", h.UpdateCustomer)
	g.DELETE("/:id", h.DeleteCustomer)
}

func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	customers, err := h.uc.ListCustomers(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var input dto.CustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cust, err := h.uc.CreateCustomer(c.Request.Context(), &input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cust)
}

func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	cust, err := h.uc.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cust)
}

func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	var input dto.CustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cust, err := h.uc.UpdateCustomer(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cust)
}

func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	if err := h.uc.DeleteCustomer(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *CustomerHandler) writeError(c *gin.Context, err error) {
	if errors.Is(err, customer.ErrCustomerNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	h.logger.Error("customer request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
