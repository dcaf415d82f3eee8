package statsservice

import (
	"context"
	"time"

	"github.com/sintamutiara6922-star/kazzah-pay/internal/domain"
)

// Notifier receives every committed feed entry, e.g. the websocket hub.
type Notifier interface {
	BroadcastFeedEntry(entry domain.FeedEntry)
}

// IStatsService is the single owner of aggregate mutation. Both the webhook
// path and the reconciler backup path commit through RecordSuccess; nothing
// else touches counters, leaderboards, contributors or the feed.
type IStatsService interface {
	// RecordSuccess applies the full aggregate commit for tx at most once.
	// A duplicate call is a silent no-op; a partial failure is rolled back so
	// a later retry re-runs the whole sequence.
	RecordSuccess(ctx context.Context, tx *domain.Transaction, at time.Time) error

	// RecordFailure bumps the failed-transactions counter.
	RecordFailure(ctx context.Context) error

	// Leaderboard returns ranked contributors for a period/type query, with
	// censored emails and tiers resolved.
	Leaderboard(ctx context.Context, periodName, typeName string, limit int64) ([]domain.LeaderboardEntry, error)

	// Overview returns global counters plus today's variants derived from the
	// recent feed at read time.
	Overview(ctx context.Context) (*domain.StatsOverview, error)

	RecentTransactions(ctx context.Context, limit int64) ([]domain.FeedEntry, error)
}
