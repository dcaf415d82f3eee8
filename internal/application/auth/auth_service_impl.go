package authservice

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/rs/zerolog"

	"github.com/sintamutiara6922-star/kazzah-pay/internal/domain"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/repositories/sessionrepo"
	"github.com/sintamutiara6922-star/kazzah-pay/pkg/config"
)

const tokenIssuer = "kazzah-pay"

type AuthService struct {
	config      *config.Config
	logger      zerolog.Logger
	sessionRepo sessionrepo.ISessionRepository
}

func NewAuthService(config *config.Config, logger zerolog.Logger, sessionRepo sessionrepo.ISessionRepository) *AuthService {
	return &AuthService{
		config:      config,
		logger:      logger,
		sessionRepo: sessionRepo,
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	admin := s.config.Admin
	if admin.Email == "" || admin.Password == "" {
		s.logger.Error().Msg("Admin credentials not configured")
		return "", domain.ErrInvalidCredentials
	}

	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(admin.Email)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(admin.Password)) == 1
	if !emailOK || !passOK {
		return "", domain.ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(admin.SessionTTL)
	claims := jwt.StandardClaims{
		Subject:   email,
		Issuer:    tokenIssuer,
		IssuedAt:  time.Now().Unix(),
		ExpiresAt: expiresAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.JWT.Secret))
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to sign session token")
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	if err := s.sessionRepo.Save(ctx, token, email, admin.SessionTTL); err != nil {
		return "", err
	}

	s.logger.Info().Str("admin", email).Msg("Admin logged in")
	return token, nil
}

// Verify checks both the token signature and the live session: a logged-out
// token fails even while its JWT expiry is still in the future.
func (s *AuthService) Verify(ctx context.Context, tokenString string) (string, error) {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWT.Secret), nil
	})
	if err != nil || !token.Valid {
		return "", domain.ErrSessionNotFound
	}
	if claims.Issuer != tokenIssuer {
		return "", domain.ErrSessionNotFound
	}

	email, err := s.sessionRepo.Get(ctx, tokenString)
	if err != nil {
		return "", err
	}
	return email, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessionRepo.Delete(ctx, token)
}
