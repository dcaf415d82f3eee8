package statsrepo

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sintamutiara6922-star/kazzah-pay/internal/domain"
	"github.com/sintamutiara6922-star/kazzah-pay/pkg/config"
)

func setupRepo(t *testing.T) (IStatsRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, config.RedisConfig{KeyPrefix: "test:"}, zerolog.Nop()), mr
}

func donation(amount int64) *domain.Transaction {
	return &domain.Transaction{
		ID:     "DEP-1",
		Amount: amount,
		Type:   domain.TypeDonation,
		Email:  "alice@example.com",
	}
}

func TestIncrementAndRollbackSuccess(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	tx := donation(150000)

	require.NoError(t, repo.IncrementSuccess(ctx, tx))

	stats, err := repo.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(150000), stats.TotalAmount)
	assert.Equal(t, int64(1), stats.TotalTransactions)
	assert.Equal(t, int64(1), stats.SuccessfulTransactions)
	assert.Equal(t, int64(1), stats.TotalDonations)
	assert.Equal(t, int64(150000), stats.DonationAmount)
	assert.Equal(t, int64(0), stats.TotalPayments)

	require.NoError(t, repo.RollbackSuccess(ctx, tx))
	stats, err = repo.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalAmount)
	assert.Equal(t, int64(0), stats.SuccessfulTransactions)
}

func TestIncrementFailed(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.IncrementFailed(ctx))
	require.NoError(t, repo.IncrementFailed(ctx))

	stats, err := repo.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.FailedTransactions)
}

func TestAddLeaderboardScoresTouchesTwelveSets(t *testing.T) {
	repo, mr := setupRepo(t)
	at := time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.AddLeaderboardScores(context.Background(), "alice@example.com", 150000, domain.TypeDonation, at))

	leaderboards := 0
	for _, key := range mr.Keys() {
		if strings.HasPrefix(key, "test:leaderboard:") {
			leaderboards++
		}
	}
	assert.Equal(t, 12, leaderboards)

	// Spot check: typed and untyped alltime sets both carry the score.
	rows, err := repo.LeaderboardRange(context.Background(), "donations", "alltime", 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "alice@example.com", rows[0].Member)
	assert.Equal(t, int64(150000), rows[0].Score)

	rows, err = repo.LeaderboardRange(context.Background(), "all", "daily:2026-08-30", 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(150000), rows[0].Score)

	// Payments scope was not touched by a donation.
	rows, err = repo.LeaderboardRange(context.Background(), "payments", "alltime", 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestLeaderboardRangeOrdersByScore(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	at := time.Now()

	require.NoError(t, repo.AddLeaderboardScores(ctx, "small@example.com", 10000, domain.TypeDonation, at))
	require.NoError(t, repo.AddLeaderboardScores(ctx, "big@example.com", 900000, domain.TypeDonation, at))
	require.NoError(t, repo.AddLeaderboardScores(ctx, "big@example.com", 100000, domain.TypeDonation, at))

	rows, err := repo.LeaderboardRange(ctx, "donations", "alltime", 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "big@example.com", rows[0].Member)
	assert.Equal(t, int64(1000000), rows[0].Score)
	assert.Equal(t, "small@example.com", rows[1].Member)
}

func TestFeedIsTrimmed(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	for i := 0; i < FeedCap+20; i++ {
		require.NoError(t, repo.PushFeed(ctx, domain.FeedEntry{
			ID:     fmt.Sprintf("DEP-%d", i),
			Amount: int64(i),
			Type:   domain.TypeDonation,
			Status: domain.StatusSuccess,
		}))
	}

	entries, err := repo.RecentFeed(ctx, FeedCap)
	require.NoError(t, err)
	assert.Len(t, entries, FeedCap)
	// Newest first.
	assert.Equal(t, fmt.Sprintf("DEP-%d", FeedCap+19), entries[0].ID)
}

func TestContributorRoundTrip(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	last := time.Now().Truncate(time.Second)

	require.NoError(t, repo.SetContributor(ctx, domain.Contributor{
		Name:            "Alice",
		Email:           "alice@example.com",
		LastTransaction: last,
		Count:           1,
	}))

	contributor, err := repo.GetContributor(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, contributor)
	assert.Equal(t, "Alice", contributor.Name)
	assert.Equal(t, int64(1), contributor.Count)
	assert.True(t, contributor.LastTransaction.Equal(last))

	missing, err := repo.GetContributor(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCommitLockIsExclusive(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	first, err := repo.AcquireCommitLock(ctx, "DEP-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := repo.AcquireCommitLock(ctx, "DEP-1", time.Hour)
	require.NoError(t, err)
	assert.False(t, second)

	require.NoError(t, repo.ReleaseCommitLock(ctx, "DEP-1"))

	third, err := repo.AcquireCommitLock(ctx, "DEP-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, third)
}
