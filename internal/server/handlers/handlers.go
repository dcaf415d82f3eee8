package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	authservice "github.com/sintamutiara6922-star/kazzah-pay/internal/application/auth"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/application/paymentservice"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/application/statsservice"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/application/webhookservice"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/domain"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/server/middleware"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/server/websocket"
	"github.com/sintamutiara6922-star/kazzah-pay/pkg/config"
)

type Handlers struct {
	PaymentSvc paymentservice.IPaymentService
	WebhookSvc webhookservice.IWebhookService
	StatsSvc   statsservice.IStatsService
	AuthSvc    authservice.IAuthService
	Logger     zerolog.Logger
	Config     *config.Config
	WsHub      *websocket.WsHub

	// Ping reports store connectivity for readiness and admin health checks.
	Ping func(ctx context.Context) error
}

func New(
	paymentSvc paymentservice.IPaymentService,
	webhookSvc webhookservice.IWebhookService,
	statsSvc statsservice.IStatsService,
	authSvc authservice.IAuthService,
	logger zerolog.Logger,
	config *config.Config,
	wsHub *websocket.WsHub,
	ping func(ctx context.Context) error,
) *Handlers {
	return &Handlers{
		PaymentSvc: paymentSvc,
		WebhookSvc: webhookSvc,
		StatsSvc:   statsSvc,
		AuthSvc:    authSvc,
		Logger:     logger,
		Config:     config,
		WsHub:      wsHub,
		Ping:       ping,
	}
}

func (h *Handlers) SetupHandlers(router *gin.Engine, mw *middleware.Middleware) {
	paymentHandler := NewPaymentHandler(h.PaymentSvc, h.Logger)
	webhookHandler := NewWebhookHandler(h.WebhookSvc, h.Logger)
	statsHandler := NewStatsHandler(h.StatsSvc, h.PaymentSvc, h.Logger)
	adminHandler := NewAdminHandler(h.AuthSvc, h.PaymentSvc, h.Ping, h.Logger)
	healthHandler := NewHealthHandler(h.Ping)

	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// WebSocket activity stream
	router.GET("/ws/activity", func(c *gin.Context) {
		h.WsHub.ServeWs(c.Writer, c.Request)
	})

	api := router.Group("/api")
	{
		payment := api.Group("/payment")
		{
			payment.POST("/create", paymentHandler.Create)
			payment.GET("/status", paymentHandler.Status)
			payment.POST("/cancel", paymentHandler.Cancel)
			payment.POST("/instant", paymentHandler.Instant)
		}

		api.GET("/leaderboard", statsHandler.Leaderboard)
		api.GET("/stats", statsHandler.Overview)

		api.POST("/webhook", webhookHandler.Handle)

		admin := api.Group("/admin")
		{
			admin.POST("/login", adminHandler.Login)

			protected := admin.Group("", mw.AdminAuthMiddleware())
			{
				protected.GET("/verify", adminHandler.Verify)
				protected.POST("/logout", adminHandler.Logout)
				protected.GET("/health", adminHandler.Health)
			}
		}
	}
}

// respondError maps service errors onto HTTP statuses. Anything unmapped is a
// generic 500 without internal detail.
func respondError(c *gin.Context, logger zerolog.Logger, err error) {
	var validationErr *paymentservice.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message, "field": validationErr.Field})
		return
	}

	var conflictErr *domain.ConflictError
	if errors.As(err, &conflictErr) {
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Message, "status": string(conflictErr.Status)})
		return
	}

	switch {
	case errors.Is(err, domain.ErrTransactionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
	case errors.Is(err, domain.ErrMethodUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payment methods unavailable"})
	case errors.Is(err, domain.ErrInstantUnsupported):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	default:
		var gatewayErr *domain.GatewayError
		if errors.As(err, &gatewayErr) {
			c.JSON(http.StatusBadGateway, gin.H{"error": gatewayErr.Message})
			return
		}
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
