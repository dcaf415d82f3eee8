package sessionrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sintamutiara6922-star/kazzah-pay/internal/domain"
	"github.com/sintamutiara6922-star/kazzah-pay/pkg/config"
)

type sessionRepositoryImpl struct {
	client    *redis.Client
	keyPrefix string
	logger    zerolog.Logger
}

func New(client *redis.Client, cfg config.RedisConfig, logger zerolog.Logger) ISessionRepository {
	return &sessionRepositoryImpl{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
		logger:    logger,
	}
}

func (r *sessionRepositoryImpl) sessionKey(token string) string {
	return r.keyPrefix + "session:" + token
}

func (r *sessionRepositoryImpl) Save(ctx context.Context, token, email string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.sessionKey(token), email, ttl).Err(); err != nil {
		r.logger.Error().Err(err).Msg("Failed to store session")
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (r *sessionRepositoryImpl) Get(ctx context.Context, token string) (string, error) {
	email, err := r.client.Get(ctx, r.sessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	return email, nil
}

func (r *sessionRepositoryImpl) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, r.sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
