package authservice

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sintamutiara6922-star/kazzah-pay/internal/domain"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/repositories/sessionrepo"
	"github.com/sintamutiara6922-star/kazzah-pay/pkg/config"
)

func setup(t *testing.T) *AuthService {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := &config.Config{}
	cfg.Admin.Email = "admin@example.com"
	cfg.Admin.Password = "hunter2"
	cfg.Admin.SessionTTL = time.Hour
	cfg.JWT.Secret = "jwt-secret"

	sessionRepo := sessionrepo.New(client, config.RedisConfig{KeyPrefix: "test:"}, zerolog.Nop())
	return NewAuthService(cfg, zerolog.Nop(), sessionRepo)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "admin@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "other@example.com", "hunter2")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginVerifyLogout(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	token, err := svc.Login(ctx, "admin@example.com", "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	email, err := svc.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", email)

	require.NoError(t, svc.Logout(ctx, token))

	// Logged-out token fails even though the JWT itself is still unexpired.
	_, err = svc.Verify(ctx, token)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	token, err := svc.Login(ctx, "admin@example.com", "hunter2")
	require.NoError(t, err)

	_, err = svc.Verify(ctx, token+"x")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = svc.Verify(ctx, "not-a-token")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
