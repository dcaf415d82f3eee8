package statsservice

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sintamutiara6922-star/kazzah-pay/internal/domain"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/repositories/statsrepo"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/repositories/txrepo"
	"github.com/sintamutiara6922-star/kazzah-pay/pkg/config"
)

type testEnv struct {
	svc       *StatsService
	statsRepo statsrepo.IStatsRepository
	txRepo    txrepo.ITransactionRepository
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := config.RedisConfig{KeyPrefix: "test:"}
	sr := statsrepo.New(client, cfg, zerolog.Nop())
	tr := txrepo.New(client, cfg, zerolog.Nop())
	return &testEnv{
		svc:       NewStatsService(zerolog.Nop(), sr, tr, nil),
		statsRepo: sr,
		txRepo:    tr,
	}
}

func aliceDonation() *domain.Transaction {
	now := time.Now().Truncate(time.Second)
	return &domain.Transaction{
		ID:          "DEP-ALICE",
		InvoiceCode: "INV-ALICE00001",
		ReffID:      "TRX-ALICE",
		Amount:      150000,
		Type:        domain.TypeDonation,
		Name:        "Alice",
		Email:       "alice@example.com",
		Gateway:     "atlantic",
		Status:      domain.StatusSuccess,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestRecordSuccessFullCommit(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	tx := aliceDonation()
	require.NoError(t, env.txRepo.Create(ctx, tx))

	at := time.Now()
	require.NoError(t, env.svc.RecordSuccess(ctx, tx, at))

	stats, err := env.statsRepo.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(150000), stats.TotalAmount)
	assert.Equal(t, int64(1), stats.SuccessfulTransactions)
	assert.Equal(t, int64(1), stats.TotalDonations)
	assert.Equal(t, int64(150000), stats.DonationAmount)

	rows, err := env.statsRepo.LeaderboardRange(ctx, "donations", "alltime", 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "alice@example.com", rows[0].Member)
	assert.Equal(t, int64(150000), rows[0].Score)

	contributor, err := env.statsRepo.GetContributor(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, contributor)
	assert.Equal(t, "Alice", contributor.Name)
	assert.Equal(t, int64(1), contributor.Count)

	feed, err := env.statsRepo.RecentFeed(ctx, 10)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "Alice", feed[0].Name)
	assert.Equal(t, int64(150000), feed[0].Amount)
	assert.Equal(t, domain.StatusSuccess, feed[0].Status)

	stored, err := env.txRepo.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.True(t, stored.StatsRecorded)

	// Invoice read reflects the same committed record.
	byInvoice, err := env.txRepo.GetByInvoice(ctx, tx.InvoiceCode)
	require.NoError(t, err)
	assert.True(t, byInvoice.StatsRecorded)
}

func TestRecordSuccessAnonymousSkipsRanking(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	tx := aliceDonation()
	tx.Anonymous = true
	require.NoError(t, env.txRepo.Create(ctx, tx))

	require.NoError(t, env.svc.RecordSuccess(ctx, tx, time.Now()))

	stats, err := env.statsRepo.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.SuccessfulTransactions)

	rows, err := env.statsRepo.LeaderboardRange(ctx, "donations", "alltime", 10)
	require.NoError(t, err)
	assert.Empty(t, rows)

	contributor, err := env.statsRepo.GetContributor(ctx, tx.Email)
	require.NoError(t, err)
	assert.Nil(t, contributor)

	feed, err := env.statsRepo.RecentFeed(ctx, 10)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "Anonymous", feed[0].Name)
}

func TestRecordSuccessDuplicateIsNoOp(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	tx := aliceDonation()
	require.NoError(t, env.txRepo.Create(ctx, tx))

	require.NoError(t, env.svc.RecordSuccess(ctx, tx, time.Now()))

	// A redelivery arrives with a fresh copy of the same transaction.
	dup := aliceDonation()
	require.NoError(t, env.svc.RecordSuccess(ctx, dup, time.Now()))

	stats, err := env.statsRepo.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.SuccessfulTransactions)
	assert.Equal(t, int64(150000), stats.TotalAmount)
}

func TestRecordSuccessConcurrentAtMostOnce(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	require.NoError(t, env.txRepo.Create(ctx, aliceDonation()))

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx := aliceDonation()
			_ = env.svc.RecordSuccess(ctx, tx, time.Now())
		}()
	}
	wg.Wait()

	stats, err := env.statsRepo.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.SuccessfulTransactions)
	assert.Equal(t, int64(150000), stats.TotalAmount)

	feed, err := env.statsRepo.RecentFeed(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, feed, 1)
}

func TestLeaderboardEntries(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	tx := aliceDonation()
	require.NoError(t, env.txRepo.Create(ctx, tx))
	require.NoError(t, env.svc.RecordSuccess(ctx, tx, time.Now()))

	entries, err := env.svc.Leaderboard(ctx, "alltime", "donations", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, 1, entry.Rank)
	assert.Equal(t, "a****@example.com", entry.ID)
	assert.NotContains(t, entry.ID, "alice@")
	assert.Equal(t, "Alice", entry.Name)
	assert.Equal(t, int64(150000), entry.Amount)
	assert.Equal(t, domain.TierGold, entry.Tier)
}

func TestOverviewIncludesTodayDerivedFields(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	tx := aliceDonation()
	require.NoError(t, env.txRepo.Create(ctx, tx))
	require.NoError(t, env.svc.RecordSuccess(ctx, tx, time.Now()))
	require.NoError(t, env.svc.RecordFailure(ctx))

	overview, err := env.svc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(150000), overview.TotalAmount)
	assert.Equal(t, int64(1), overview.FailedTransactions)
	assert.InDelta(t, 50.0, overview.SuccessRate, 0.01)
	assert.Equal(t, int64(150000), overview.AvgAmount)
	assert.Equal(t, int64(150000), overview.TodayAmount)
	assert.Equal(t, int64(1), overview.TodayTransactions)
	assert.Equal(t, int64(1), overview.TodayDonations)
	assert.Equal(t, 1, overview.ActiveUsers)
}

func TestOverviewCountsDistinctDonors(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	alice := aliceDonation()
	require.NoError(t, env.txRepo.Create(ctx, alice))
	require.NoError(t, env.svc.RecordSuccess(ctx, alice, time.Now()))

	// Same donor again under a new transaction.
	again := aliceDonation()
	again.ID = "DEP-ALICE-2"
	again.InvoiceCode = "INV-ALICE00002"
	require.NoError(t, env.txRepo.Create(ctx, again))
	require.NoError(t, env.svc.RecordSuccess(ctx, again, time.Now()))

	// Two different donors, both posting anonymously under the same name.
	for i, email := range []string{"bob@example.com", "carol@example.com"} {
		tx := aliceDonation()
		tx.ID = fmt.Sprintf("DEP-ANON-%d", i)
		tx.InvoiceCode = fmt.Sprintf("INV-ANON0000%d", i)
		tx.Name = "Bob"
		tx.Email = email
		tx.Anonymous = true
		require.NoError(t, env.txRepo.Create(ctx, tx))
		require.NoError(t, env.svc.RecordSuccess(ctx, tx, time.Now()))
	}

	// Feed entries carry an opaque donor key, never the address itself.
	feed, err := env.statsRepo.RecentFeed(ctx, 10)
	require.NoError(t, err)
	require.Len(t, feed, 4)
	for _, entry := range feed {
		assert.NotEmpty(t, entry.DonorKey)
		assert.NotContains(t, entry.DonorKey, "@")
	}

	// Alice twice plus two anonymous donors is three distinct users, not four
	// transactions and not one collapsed "Anonymous" bucket.
	overview, err := env.svc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), overview.TodayTransactions)
	assert.Equal(t, 3, overview.ActiveUsers)
}

func TestCensorEmail(t *testing.T) {
	assert.Equal(t, "a****@example.com", CensorEmail("alice@example.com"))
	assert.Equal(t, "a***@x.com", CensorEmail("ab@x.com"))
	assert.Equal(t, "b***@x.com", CensorEmail("b@x.com"))
	assert.Equal(t, "not-an-email", CensorEmail("not-an-email"))
}
