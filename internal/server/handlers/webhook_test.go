package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sintamutiara6922-star/kazzah-pay/internal/application/statsservice"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/application/webhookservice"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/repositories/statsrepo"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/repositories/txrepo"
	"github.com/sintamutiara6922-star/kazzah-pay/pkg/config"
)

func setupWebhookRouter(t *testing.T, secret string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	redisCfg := config.RedisConfig{KeyPrefix: "test:"}
	tr := txrepo.New(client, redisCfg, zerolog.Nop())
	sr := statsrepo.New(client, redisCfg, zerolog.Nop())
	statsSvc := statsservice.NewStatsService(zerolog.Nop(), sr, tr, nil)

	cfg := &config.Config{}
	cfg.Webhook.Secret = secret
	webhookSvc := webhookservice.NewWebhookService(cfg, zerolog.Nop(), tr, statsSvc)

	router := gin.New()
	handler := NewWebhookHandler(webhookSvc, zerolog.Nop())
	router.POST("/api/webhook", handler.Handle)
	return router
}

func postWebhook(router *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set("X-Signature", signature)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	router := setupWebhookRouter(t, "s3cret")
	body := []byte(`{"event":"payment.success","data":{"id":"DEP-1"}}`)

	w := postWebhook(router, body, "deadbeef")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookAcceptsValidSignature(t *testing.T) {
	router := setupWebhookRouter(t, "s3cret")
	body := []byte(`{"event":"payment.success","data":{"id":"DEP-UNKNOWN"}}`)

	mac := hmac.New(sha256.New, []byte("s3cret"))
	mac.Write(body)
	w := postWebhook(router, body, hex.EncodeToString(mac.Sum(nil)))

	// Unknown transaction is a processing error, still acked with 200.
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
}

func TestWebhookAcksProcessingErrors(t *testing.T) {
	router := setupWebhookRouter(t, "")

	w := postWebhook(router, []byte(`{"unexpected":"shape"}`), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
}
