package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	authservice "github.com/sintamutiara6922-star/kazzah-pay/internal/application/auth"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/application/paymentservice"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/application/statsservice"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/application/webhookservice"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/server/handlers"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/server/middleware"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/server/websocket"
	"github.com/sintamutiara6922-star/kazzah-pay/pkg/config"
)

type Server struct {
	PaymentSvc paymentservice.IPaymentService
	WebhookSvc webhookservice.IWebhookService
	StatsSvc   statsservice.IStatsService
	AuthSvc    authservice.IAuthService
	Ping       func(ctx context.Context) error
	Cfg        *config.Config
	Logger     zerolog.Logger
	Router     *gin.Engine
	httpServer *http.Server
	WsHub      *websocket.WsHub
}

func New(
	cfg *config.Config,
	paymentSvc paymentservice.IPaymentService,
	webhookSvc webhookservice.IWebhookService,
	statsSvc statsservice.IStatsService,
	authSvc authservice.IAuthService,
	ping func(ctx context.Context) error,
	logger zerolog.Logger,
	wsHub *websocket.WsHub,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	return &Server{
		Cfg:        cfg,
		PaymentSvc: paymentSvc,
		WebhookSvc: webhookSvc,
		StatsSvc:   statsSvc,
		AuthSvc:    authSvc,
		Ping:       ping,
		Logger:     logger,
		Router:     router,
		WsHub:      wsHub,
	}
}

func (s *Server) SetupRouter() {
	mw := middleware.NewMiddleware(s.AuthSvc, s.Logger)
	mw.SetupMiddleware(s.Router)

	handler := handlers.New(
		s.PaymentSvc,
		s.WebhookSvc,
		s.StatsSvc,
		s.AuthSvc,
		s.Logger,
		s.Cfg,
		s.WsHub,
		s.Ping,
	)
	handler.SetupHandlers(s.Router, mw)
}

func (s *Server) Start() {
	s.SetupRouter()

	go s.WsHub.Run()

	s.httpServer = &http.Server{
		Addr:         s.Cfg.Server.Host + ":" + s.Cfg.Server.Port,
		Handler:      s.Router,
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 20 * time.Second,
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	s.Logger.Info().Msgf("Starting server on %s", s.httpServer.Addr)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.Logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-stopChan
	s.Logger.Info().Msg("Shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.Logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	s.Logger.Info().Msg("Server exited gracefully")
}
