package statsrepo

import (
	"context"
	"time"

	"github.com/sintamutiara6922-star/kazzah-pay/internal/domain"
)

// FeedCap bounds the recent-transactions list. LTRIM after every push keeps
// the list at this length regardless of traffic.
const FeedCap = 100

// ScoredMember is one leaderboard row as stored: raw email member plus
// cumulative amount score. Censoring happens in the service layer.
type ScoredMember struct {
	Member string
	Score  int64
}

type IStatsRepository interface {
	// IncrementSuccess applies the success counters for tx in one pipeline.
	IncrementSuccess(ctx context.Context, tx *domain.Transaction) error

	// RollbackSuccess reverses IncrementSuccess after a partial commit failure.
	RollbackSuccess(ctx context.Context, tx *domain.Transaction) error

	IncrementFailed(ctx context.Context) error

	// AddLeaderboardScores adds amount to the 12 sorted sets covering at:
	// 6 period keys for the transaction's type scope plus 6 for "all".
	AddLeaderboardScores(ctx context.Context, email string, amount int64, txType domain.TransactionType, at time.Time) error

	RemoveLeaderboardScores(ctx context.Context, email string, amount int64, txType domain.TransactionType, at time.Time) error

	SetContributor(ctx context.Context, contributor domain.Contributor) error
	GetContributor(ctx context.Context, email string) (*domain.Contributor, error)

	PushFeed(ctx context.Context, entry domain.FeedEntry) error
	RecentFeed(ctx context.Context, limit int64) ([]domain.FeedEntry, error)

	GetStats(ctx context.Context) (*domain.Stats, error)

	// LeaderboardRange returns the top entries of one sorted set, best first.
	LeaderboardRange(ctx context.Context, scope, suffix string, limit int64) ([]ScoredMember, error)

	// AcquireCommitLock creates the per-transaction commit marker if absent.
	// A false return means another worker already holds or held it.
	AcquireCommitLock(ctx context.Context, transactionID string, ttl time.Duration) (bool, error)

	// ReleaseCommitLock deletes the marker so a failed commit can be retried.
	ReleaseCommitLock(ctx context.Context, transactionID string) error

	Ping(ctx context.Context) error
}
