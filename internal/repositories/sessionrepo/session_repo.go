package sessionrepo

import (
	"context"
	"time"
)

// ISessionRepository stores admin sessions keyed by token. A session vanishes
// on logout or when its TTL runs out, whichever comes first.
type ISessionRepository interface {
	Save(ctx context.Context, token, email string, ttl time.Duration) error

	// Get returns the session's email, or domain.ErrSessionNotFound.
	Get(ctx context.Context, token string) (string, error)

	Delete(ctx context.Context, token string) error
}
