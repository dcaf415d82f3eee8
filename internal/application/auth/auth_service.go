package authservice

import "context"

// IAuthService handles admin dashboard sessions: credential login issuing a
// signed token, token verification against the live session store, logout.
type IAuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	Verify(ctx context.Context, token string) (string, error)
	Logout(ctx context.Context, token string) error
}
