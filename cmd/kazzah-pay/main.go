package main

import (
	"context"

	"github.com/redis/go-redis/v9"

	authservice "github.com/sintamutiara6922-star/kazzah-pay/internal/application/auth"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/application/paymentservice"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/application/statsservice"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/application/webhookservice"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/gateway"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/repositories/sessionrepo"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/repositories/statsrepo"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/repositories/txrepo"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/server"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/server/websocket"
	"github.com/sintamutiara6922-star/kazzah-pay/pkg/config"
	"github.com/sintamutiara6922-star/kazzah-pay/pkg/logger"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log = logger.NewWithConfig(cfg.Logger)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	transactionRepo := txrepo.New(redisClient, cfg.Redis, log)
	statsRepo := statsrepo.New(redisClient, cfg.Redis, log)
	sessionRepo := sessionrepo.New(redisClient, cfg.Redis, log)

	wsHub := websocket.NewWsHub(log)

	gateways := gateway.NewSelector(cfg.Gateway, log)
	log.Info().Str("gateway", gateways.ActiveName()).Msg("Payment gateway selected")

	statsService := statsservice.NewStatsService(log, statsRepo, transactionRepo, wsHub)
	paymentService := paymentservice.NewPaymentService(cfg, log, transactionRepo, statsService, gateways)
	webhookService := webhookservice.NewWebhookService(cfg, log, transactionRepo, statsService)
	authService := authservice.NewAuthService(cfg, log, sessionRepo)

	srv := server.New(
		cfg,
		paymentService,
		webhookService,
		statsService,
		authService,
		transactionRepo.Ping,
		log,
		wsHub,
	)
	srv.Start()
}
