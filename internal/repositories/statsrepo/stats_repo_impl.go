package statsrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sintamutiara6922-star/kazzah-pay/internal/domain"
	"github.com/sintamutiara6922-star/kazzah-pay/pkg/config"
	"github.com/sintamutiara6922-star/kazzah-pay/pkg/period"
)

type statsRepositoryImpl struct {
	client    *redis.Client
	keyPrefix string
	logger    zerolog.Logger
}

func New(client *redis.Client, cfg config.RedisConfig, logger zerolog.Logger) IStatsRepository {
	return &statsRepositoryImpl{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
		logger:    logger,
	}
}

func (r *statsRepositoryImpl) statsKey() string {
	return r.keyPrefix + "stats"
}

func (r *statsRepositoryImpl) leaderboardKey(scope, suffix string) string {
	return r.keyPrefix + "leaderboard:" + scope + ":" + suffix
}

func (r *statsRepositoryImpl) contributorKey(email string) string {
	return r.keyPrefix + "contributor:" + email
}

func (r *statsRepositoryImpl) feedKey() string {
	return r.keyPrefix + "feed:recent"
}

func (r *statsRepositoryImpl) commitLockKey(transactionID string) string {
	return r.keyPrefix + "statslock:" + transactionID
}

// scopeFor maps a transaction type to its leaderboard scope prefix.
func scopeFor(txType domain.TransactionType) string {
	if txType == domain.TypeDonation {
		return "donations"
	}
	return "payments"
}

func (r *statsRepositoryImpl) applySuccess(ctx context.Context, tx *domain.Transaction, sign int64) error {
	pipe := r.client.TxPipeline()
	key := r.statsKey()
	pipe.HIncrBy(ctx, key, "totalAmount", sign*tx.Amount)
	pipe.HIncrBy(ctx, key, "totalTransactions", sign)
	pipe.HIncrBy(ctx, key, "successfulTransactions", sign)
	if tx.Type == domain.TypeDonation {
		pipe.HIncrBy(ctx, key, "totalDonations", sign)
		pipe.HIncrBy(ctx, key, "donationAmount", sign*tx.Amount)
	} else {
		pipe.HIncrBy(ctx, key, "totalPayments", sign)
		pipe.HIncrBy(ctx, key, "paymentAmount", sign*tx.Amount)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to apply stats counters: %w", err)
	}
	return nil
}

func (r *statsRepositoryImpl) IncrementSuccess(ctx context.Context, tx *domain.Transaction) error {
	if err := r.applySuccess(ctx, tx, 1); err != nil {
		r.logger.Error().Err(err).Str("transaction_id", tx.ID).Msg("Failed to increment success counters")
		return err
	}
	return nil
}

func (r *statsRepositoryImpl) RollbackSuccess(ctx context.Context, tx *domain.Transaction) error {
	if err := r.applySuccess(ctx, tx, -1); err != nil {
		r.logger.Error().Err(err).Str("transaction_id", tx.ID).Msg("Failed to roll back success counters")
		return err
	}
	return nil
}

func (r *statsRepositoryImpl) IncrementFailed(ctx context.Context) error {
	if err := r.client.HIncrBy(ctx, r.statsKey(), "failedTransactions", 1).Err(); err != nil {
		r.logger.Error().Err(err).Msg("Failed to increment failed counter")
		return fmt.Errorf("failed to increment failed counter: %w", err)
	}
	return nil
}

func (r *statsRepositoryImpl) applyLeaderboard(ctx context.Context, email string, amount int64, txType domain.TransactionType, at time.Time) error {
	pipe := r.client.TxPipeline()
	scope := scopeFor(txType)
	for _, suffix := range period.Suffixes(at) {
		pipe.ZIncrBy(ctx, r.leaderboardKey(scope, suffix), float64(amount), email)
		pipe.ZIncrBy(ctx, r.leaderboardKey("all", suffix), float64(amount), email)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to apply leaderboard scores: %w", err)
	}
	return nil
}

func (r *statsRepositoryImpl) AddLeaderboardScores(ctx context.Context, email string, amount int64, txType domain.TransactionType, at time.Time) error {
	if err := r.applyLeaderboard(ctx, email, amount, txType, at); err != nil {
		r.logger.Error().Err(err).Str("scope", scopeFor(txType)).Msg("Failed to add leaderboard scores")
		return err
	}
	return nil
}

func (r *statsRepositoryImpl) RemoveLeaderboardScores(ctx context.Context, email string, amount int64, txType domain.TransactionType, at time.Time) error {
	if err := r.applyLeaderboard(ctx, email, -amount, txType, at); err != nil {
		r.logger.Error().Err(err).Str("scope", scopeFor(txType)).Msg("Failed to remove leaderboard scores")
		return err
	}
	return nil
}

func (r *statsRepositoryImpl) SetContributor(ctx context.Context, contributor domain.Contributor) error {
	fields := map[string]any{
		"name":            contributor.Name,
		"email":           contributor.Email,
		"lastTransaction": contributor.LastTransaction.Format(time.RFC3339),
		"count":           strconv.FormatInt(contributor.Count, 10),
	}
	if err := r.client.HSet(ctx, r.contributorKey(contributor.Email), fields).Err(); err != nil {
		r.logger.Error().Err(err).Msg("Failed to store contributor")
		return fmt.Errorf("failed to store contributor: %w", err)
	}
	return nil
}

func (r *statsRepositoryImpl) GetContributor(ctx context.Context, email string) (*domain.Contributor, error) {
	fields, err := r.client.HGetAll(ctx, r.contributorKey(email)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read contributor: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	contributor := &domain.Contributor{
		Name:  fields["name"],
		Email: fields["email"],
	}
	if ts, err := time.Parse(time.RFC3339, fields["lastTransaction"]); err == nil {
		contributor.LastTransaction = ts
	}
	contributor.Count, _ = strconv.ParseInt(fields["count"], 10, 64)
	return contributor, nil
}

func (r *statsRepositoryImpl) PushFeed(ctx context.Context, entry domain.FeedEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal feed entry: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, r.feedKey(), data)
	pipe.LTrim(ctx, r.feedKey(), 0, FeedCap-1)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error().Err(err).Msg("Failed to push feed entry")
		return fmt.Errorf("failed to push feed entry: %w", err)
	}
	return nil
}

func (r *statsRepositoryImpl) RecentFeed(ctx context.Context, limit int64) ([]domain.FeedEntry, error) {
	if limit <= 0 || limit > FeedCap {
		limit = FeedCap
	}

	raw, err := r.client.LRange(ctx, r.feedKey(), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}

	entries := make([]domain.FeedEntry, 0, len(raw))
	for _, item := range raw {
		var entry domain.FeedEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			r.logger.Warn().Err(err).Msg("Skipping malformed feed entry")
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *statsRepositoryImpl) GetStats(ctx context.Context) (*domain.Stats, error) {
	fields, err := r.client.HGetAll(ctx, r.statsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read stats: %w", err)
	}

	parse := func(field string) int64 {
		v, _ := strconv.ParseInt(fields[field], 10, 64)
		return v
	}
	return &domain.Stats{
		TotalAmount:            parse("totalAmount"),
		TotalTransactions:      parse("totalTransactions"),
		SuccessfulTransactions: parse("successfulTransactions"),
		FailedTransactions:     parse("failedTransactions"),
		TotalDonations:         parse("totalDonations"),
		DonationAmount:         parse("donationAmount"),
		TotalPayments:          parse("totalPayments"),
		PaymentAmount:          parse("paymentAmount"),
	}, nil
}

func (r *statsRepositoryImpl) LeaderboardRange(ctx context.Context, scope, suffix string, limit int64) ([]ScoredMember, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.client.ZRevRangeWithScores(ctx, r.leaderboardKey(scope, suffix), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}

	members := make([]ScoredMember, 0, len(rows))
	for _, row := range rows {
		member, ok := row.Member.(string)
		if !ok {
			continue
		}
		members = append(members, ScoredMember{Member: member, Score: int64(row.Score)})
	}
	return members, nil
}

func (r *statsRepositoryImpl) AcquireCommitLock(ctx context.Context, transactionID string, ttl time.Duration) (bool, error) {
	acquired, err := r.client.SetNX(ctx, r.commitLockKey(transactionID), "1", ttl).Result()
	if err != nil {
		r.logger.Error().Err(err).Str("transaction_id", transactionID).Msg("Failed to acquire commit lock")
		return false, fmt.Errorf("failed to acquire commit lock: %w", err)
	}
	return acquired, nil
}

func (r *statsRepositoryImpl) ReleaseCommitLock(ctx context.Context, transactionID string) error {
	if err := r.client.Del(ctx, r.commitLockKey(transactionID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to release commit lock: %w", err)
	}
	return nil
}

func (r *statsRepositoryImpl) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
