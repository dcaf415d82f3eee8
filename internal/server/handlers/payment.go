package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/sintamutiara6922-star/kazzah-pay/internal/application/paymentservice"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/domain"
)

type PaymentHandler struct {
	paymentSvc paymentservice.IPaymentService
	logger     zerolog.Logger
}

func NewPaymentHandler(paymentSvc paymentservice.IPaymentService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentSvc: paymentSvc,
		logger:     logger,
	}
}

type createPaymentRequest struct {
	Amount    int64  `json:"amount"`
	Method    string `json:"method"`
	Type      string `json:"type"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Message   string `json:"message"`
	Anonymous bool   `json:"anonymous"`
}

func (h *PaymentHandler) Create(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.paymentSvc.CreatePayment(c.Request.Context(), paymentservice.CreateParams{
		Amount:    req.Amount,
		Method:    req.Method,
		Type:      domain.TransactionType(req.Type),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Message:   req.Message,
		Anonymous: req.Anonymous,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

func (h *PaymentHandler) Status(c *gin.Context) {
	id := c.Query("id")
	invoice := c.Query("invoice")

	result, err := h.paymentSvc.GetStatus(c.Request.Context(), id, invoice)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

type cancelPaymentRequest struct {
	ID string `json:"id"`
}

func (h *PaymentHandler) Cancel(c *gin.Context) {
	var req cancelPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}

	tx, err := h.paymentSvc.Cancel(c.Request.Context(), req.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": tx})
}

type instantDepositRequest struct {
	ID     string `json:"id"`
	Action bool   `json:"action"`
}

func (h *PaymentHandler) Instant(c *gin.Context) {
	var req instantDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}

	result, err := h.paymentSvc.InstantDeposit(c.Request.Context(), req.ID, req.Action)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}
