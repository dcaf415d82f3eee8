package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/sintamutiara6922-star/kazzah-pay/internal/application/paymentservice"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/application/statsservice"
)

type StatsHandler struct {
	statsSvc   statsservice.IStatsService
	paymentSvc paymentservice.IPaymentService
	logger     zerolog.Logger
}

func NewStatsHandler(statsSvc statsservice.IStatsService, paymentSvc paymentservice.IPaymentService, logger zerolog.Logger) *StatsHandler {
	return &StatsHandler{
		statsSvc:   statsSvc,
		paymentSvc: paymentSvc,
		logger:     logger,
	}
}

func (h *StatsHandler) Leaderboard(c *gin.Context) {
	periodName := c.DefaultQuery("period", "alltime")
	typeName := c.DefaultQuery("type", "all")
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)
	if err != nil || limit <= 0 || limit > 100 {
		limit = 10
	}

	entries, err := h.statsSvc.Leaderboard(c.Request.Context(), periodName, typeName, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": entries})
}

func (h *StatsHandler) Overview(c *gin.Context) {
	overview, err := h.statsSvc.Overview(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	feed, err := h.statsSvc.RecentTransactions(c.Request.Context(), 10)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response := gin.H{
		"success": true,
		"data": gin.H{
			"overview": overview,
			"recent":   feed,
		},
	}

	// Profile is best effort; the dashboard renders without it when the
	// gateway does not expose one or is unreachable.
	if profile, err := h.paymentSvc.Profile(c.Request.Context()); err == nil && profile != nil {
		response["data"].(gin.H)["profile"] = profile
	}

	c.JSON(http.StatusOK, response)
}
