package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	authservice "github.com/sintamutiara6922-star/kazzah-pay/internal/application/auth"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/application/paymentservice"
)

type AdminHandler struct {
	authSvc    authservice.IAuthService
	paymentSvc paymentservice.IPaymentService
	ping       func(ctx context.Context) error
	logger     zerolog.Logger
}

func NewAdminHandler(authSvc authservice.IAuthService, paymentSvc paymentservice.IPaymentService, ping func(ctx context.Context) error, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		authSvc:    authSvc,
		paymentSvc: paymentSvc,
		ping:       ping,
		logger:     logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	token, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}

func (h *AdminHandler) Verify(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"email":   c.GetString("admin_email"),
	})
}

func (h *AdminHandler) Logout(c *gin.Context) {
	if err := h.authSvc.Logout(c.Request.Context(), c.GetString("admin_token")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Health reports store and gateway connectivity for the admin dashboard.
func (h *AdminHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	redisStatus := "ok"
	if err := h.ping(ctx); err != nil {
		redisStatus = "unreachable"
	}

	gatewayStatus := "ok"
	if _, err := h.paymentSvc.Profile(ctx); err != nil {
		gatewayStatus = "unreachable"
	}

	status := http.StatusOK
	if redisStatus != "ok" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"redis":     redisStatus,
		"gateway":   gatewayStatus,
		"timestamp": time.Now(),
	})
}
