package txrepo

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
	"github.com/sintamutiara6922-star/kazzah-pay/pkg/config"
)

func setupRepo(t *testing.T) (ITransactionRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, config.RedisConfig{KeyPrefix: "test:"}, zerolog.Nop()), mr
}

func sampleTransaction() *domain.Transaction {
	now := time.Now().Truncate(time.Second)
	return &domain.Transaction{
		ID:          "DEP-1",
		InvoiceCode: "INV-ABCDEF1234",
		ReffID:      "TRX-XYZ",
		Amount:      150000,
		Method:      "QRIS",
		Type:        domain.TypeDonation,
		Name:        "Alice",
		Email:       "alice@example.com",
		Gateway:     "atlantic",
		Status:      domain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestCreateAndGetByBothKeys(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	tx := sampleTransaction()

	require.NoError(t, repo.Create(ctx, tx))

	byID, err := repo.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	byInvoice, err := repo.GetByInvoice(ctx, tx.InvoiceCode)
	require.NoError(t, err)

	// Both reads resolve to the same canonical record.
	assert.Equal(t, byID, byInvoice)
	assert.Equal(t, tx.Amount, byID.Amount)
	assert.Equal(t, tx.Email, byID.Email)
}

func TestCreateSetsTTLOnBothKeys(t *testing.T) {
	repo, mr := setupRepo(t)
	tx := sampleTransaction()
	require.NoError(t, repo.Create(context.Background(), tx))

	assert.Equal(t, TransactionTTL, mr.TTL("test:transaction:"+tx.ID))
	assert.Equal(t, TransactionTTL, mr.TTL("test:invoice:"+tx.InvoiceCode))
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)

	_, err = repo.GetByInvoice(ctx, "INV-NOPE")
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestExpiredRecordIsGone(t *testing.T) {
	repo, mr := setupRepo(t)
	ctx := context.Background()
	tx := sampleTransaction()
	require.NoError(t, repo.Create(ctx, tx))

	mr.FastForward(TransactionTTL + time.Minute)

	_, err := repo.GetByID(ctx, tx.ID)
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
	_, err = repo.GetByInvoice(ctx, tx.InvoiceCode)
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestUpdatePersistsChangesAndKeepsTTL(t *testing.T) {
	repo, mr := setupRepo(t)
	ctx := context.Background()
	tx := sampleTransaction()
	require.NoError(t, repo.Create(ctx, tx))

	mr.FastForward(time.Hour)

	paidAt := time.Now().Truncate(time.Second)
	tx.Status = domain.StatusSuccess
	tx.PaidAt = &paidAt
	tx.StatsRecorded = true
	require.NoError(t, repo.Update(ctx, tx))

	stored, err := repo.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, stored.Status)
	assert.True(t, stored.StatsRecorded)
	require.NotNil(t, stored.PaidAt)

	// Update must not restart the expiry clock.
	assert.Equal(t, TransactionTTL-time.Hour, mr.TTL("test:transaction:"+tx.ID))
}
