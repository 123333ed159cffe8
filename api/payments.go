package api

import (
	"errors"
	"net/http"

	"github.com/avdeev-m/ticketline/internal/domain"
	"github.com/avdeev-m/ticketline/internal/service/payments"
	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	service payments.PaymentUseCase
}

func NewPaymentHandler(service payments.PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (h *PaymentHandler) Register(router *gin.RouterGroup) {
	router.POST("/initialize", h.initialize)
	router.POST("/initialize-demo", h.initializeDemo)
	router.POST("/verify", h.verify)
	router.GET("/:reference/status", h.status)
}

type verifyRequest struct {
	Reference string `json:"reference"`
}

func (h *PaymentHandler) initialize(c *gin.Context) {
	var req payments.InitializePaymentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.InitializePayment(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) initializeDemo(c *gin.Context) {
	var req payments.InitializePaymentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.service.InitializeDemoPayment(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

func (h *PaymentHandler) verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.service.VerifyPayment(c.Request.Context(), req.Reference)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

func (h *PaymentHandler) status(c *gin.Context) {
	outcome, err := h.service.GetPaymentStatus(c.Request.Context(), c.Param("reference"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// respondError maps the domain error taxonomy onto HTTP statuses. The
// retryable flag tells a polling client whether the same reference can
// still resolve.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrOracleUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "retryable": true})
	case errors.Is(err, domain.ErrTicketAlreadyUsed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrSoldOut),
		errors.Is(err, domain.ErrEventNotOnSale),
		errors.Is(err, domain.ErrVerificationFailed),
		errors.Is(err, domain.ErrInvalidTicketCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
