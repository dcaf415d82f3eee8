package txrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sintamutiara6922-star/kazzah-pay/internal/domain"
	"github.com/sintamutiara6922-star/kazzah-pay/pkg/config"
)

type transactionRepositoryImpl struct {
	client    *redis.Client
	keyPrefix string
	logger    zerolog.Logger
}

func New(client *redis.Client, cfg config.RedisConfig, logger zerolog.Logger) ITransactionRepository {
	return &transactionRepositoryImpl{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
		logger:    logger,
	}
}

func (r *transactionRepositoryImpl) transactionKey(id string) string {
	return r.keyPrefix + "transaction:" + id
}

func (r *transactionRepositoryImpl) invoiceKey(code string) string {
	return r.keyPrefix + "invoice:" + code
}

func (r *transactionRepositoryImpl) Create(ctx context.Context, tx *domain.Transaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.transactionKey(tx.ID), data, TransactionTTL)
	pipe.Set(ctx, r.invoiceKey(tx.InvoiceCode), tx.ID, TransactionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error().Err(err).Str("transaction_id", tx.ID).Msg("Failed to store transaction")
		return fmt.Errorf("failed to store transaction: %w", err)
	}

	return nil
}

func (r *transactionRepositoryImpl) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	data, err := r.client.Get(ctx, r.transactionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		r.logger.Error().Err(err).Str("transaction_id", id).Msg("Failed to read transaction")
		return nil, fmt.Errorf("failed to read transaction: %w", err)
	}

	var tx domain.Transaction
	if err := json.Unmarshal(data, &tx); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction: %w", err)
	}
	return &tx, nil
}

func (r *transactionRepositoryImpl) GetByInvoice(ctx context.Context, invoiceCode string) (*domain.Transaction, error) {
	id, err := r.client.Get(ctx, r.invoiceKey(invoiceCode)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		r.logger.Error().Err(err).Str("invoice_code", invoiceCode).Msg("Failed to resolve invoice alias")
		return nil, fmt.Errorf("failed to resolve invoice alias: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *transactionRepositoryImpl) Update(ctx context.Context, tx *domain.Transaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}

	// KeepTTL so an update never extends the record past its creation window.
	if err := r.client.Set(ctx, r.transactionKey(tx.ID), data, redis.KeepTTL).Err(); err != nil {
		r.logger.Error().Err(err).Str("transaction_id", tx.ID).Msg("Failed to update transaction")
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return nil
}

func (r *transactionRepositoryImpl) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
