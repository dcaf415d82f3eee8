package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/sintamutiara6922-star/kazzah-pay/internal/application/webhookservice"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/domain"
)

type WebhookHandler struct {
	webhookSvc webhookservice.IWebhookService
	logger     zerolog.Logger
}

func NewWebhookHandler(webhookSvc webhookservice.IWebhookService, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		webhookSvc: webhookSvc,
		logger:     logger,
	}
}

// Handle accepts either provider's callback. A bad signature is the only
// rejection; processing errors still ack with 200 so providers do not enter
// retry storms over issues a retry cannot fix.
func (h *WebhookHandler) Handle(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	if err := h.webhookSvc.VerifySignature(rawBody, c.GetHeader("X-Signature")); err != nil {
		if errors.Is(err, domain.ErrInvalidSignature) {
			h.logger.Warn().Str("client_ip", c.ClientIP()).Msg("Webhook signature mismatch")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if err := h.webhookSvc.Process(c.Request.Context(), rawBody); err != nil {
		h.logger.Error().Err(err).Msg("Webhook processing failed")
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
