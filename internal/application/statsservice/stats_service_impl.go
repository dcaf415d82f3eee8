package statsservice

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sintamutiara6922-star/kazzah-pay/internal/domain"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/repositories/statsrepo"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/repositories/txrepo"
	"github.com/sintamutiara6922-star/kazzah-pay/pkg/period"
)

type StatsService struct {
	logger    zerolog.Logger
	statsRepo statsrepo.IStatsRepository
	txRepo    txrepo.ITransactionRepository
	notifier  Notifier
}

func NewStatsService(logger zerolog.Logger, statsRepo statsrepo.IStatsRepository, txRepo txrepo.ITransactionRepository, notifier Notifier) *StatsService {
	return &StatsService{
		logger:    logger,
		statsRepo: statsRepo,
		txRepo:    txRepo,
		notifier:  notifier,
	}
}

// RecordSuccess is guarded by a create-if-absent commit marker: of N
// concurrent callers exactly one proceeds, the rest see a held lock and
// return without touching anything. The marker lives as long as the
// transaction record itself.
func (s *StatsService) RecordSuccess(ctx context.Context, tx *domain.Transaction, at time.Time) error {
	if tx.StatsRecorded {
		return nil
	}

	acquired, err := s.statsRepo.AcquireCommitLock(ctx, tx.ID, txrepo.TransactionTTL)
	if err != nil {
		return err
	}
	if !acquired {
		s.logger.Debug().Str("transaction_id", tx.ID).Msg("Stats commit already in progress or done")
		return nil
	}

	tx.StatsRecorded = true
	tx.UpdatedAt = at
	if err := s.txRepo.Update(ctx, tx); err != nil {
		s.unlock(ctx, tx)
		tx.StatsRecorded = false
		return err
	}

	if err := s.statsRepo.IncrementSuccess(ctx, tx); err != nil {
		s.rollback(ctx, tx, false)
		return err
	}

	ranked := !tx.Anonymous && tx.Email != ""
	if ranked {
		if err := s.statsRepo.AddLeaderboardScores(ctx, tx.Email, tx.Amount, tx.Type, at); err != nil {
			s.rollback(ctx, tx, false)
			return err
		}
		if err := s.statsRepo.SetContributor(ctx, domain.Contributor{
			Name:            tx.Name,
			Email:           tx.Email,
			LastTransaction: at,
			Count:           1,
		}); err != nil {
			s.rollback(ctx, tx, true)
			return err
		}
	}

	entry := domain.FeedEntry{
		ID:        tx.ID,
		Name:      tx.DisplayName(),
		DonorKey:  donorKey(tx),
		Amount:    tx.Amount,
		Type:      tx.Type,
		CreatedAt: at,
		Status:    domain.StatusSuccess,
	}
	if err := s.statsRepo.PushFeed(ctx, entry); err != nil {
		s.rollback(ctx, tx, ranked)
		return err
	}

	if s.notifier != nil {
		s.notifier.BroadcastFeedEntry(entry)
	}

	s.logger.Info().
		Str("transaction_id", tx.ID).
		Int64("amount", tx.Amount).
		Str("type", string(tx.Type)).
		Msg("Stats commit applied")
	return nil
}

// rollback unwinds a partial commit so the next attempt starts clean. Best
// effort: an unwind failure is logged, not returned, because the caller's
// error is the one that matters.
func (s *StatsService) rollback(ctx context.Context, tx *domain.Transaction, leaderboardApplied bool) {
	if err := s.statsRepo.RollbackSuccess(ctx, tx); err != nil {
		s.logger.Error().Err(err).Str("transaction_id", tx.ID).Msg("Counter rollback failed")
	}
	if leaderboardApplied {
		if err := s.statsRepo.RemoveLeaderboardScores(ctx, tx.Email, tx.Amount, tx.Type, tx.UpdatedAt); err != nil {
			s.logger.Error().Err(err).Str("transaction_id", tx.ID).Msg("Leaderboard rollback failed")
		}
	}

	tx.StatsRecorded = false
	if err := s.txRepo.Update(ctx, tx); err != nil {
		s.logger.Error().Err(err).Str("transaction_id", tx.ID).Msg("Failed to clear stats flag during rollback")
	}
	s.unlock(ctx, tx)
}

func (s *StatsService) unlock(ctx context.Context, tx *domain.Transaction) {
	if err := s.statsRepo.ReleaseCommitLock(ctx, tx.ID); err != nil {
		s.logger.Error().Err(err).Str("transaction_id", tx.ID).Msg("Failed to release commit lock")
	}
}

func (s *StatsService) RecordFailure(ctx context.Context) error {
	return s.statsRepo.IncrementFailed(ctx)
}

func (s *StatsService) Leaderboard(ctx context.Context, periodName, typeName string, limit int64) ([]domain.LeaderboardEntry, error) {
	scope := "all"
	switch typeName {
	case "donations", "donation":
		scope = "donations"
	case "payments", "payment":
		scope = "payments"
	}
	suffix := period.ForQuery(periodName, time.Now())

	members, err := s.statsRepo.LeaderboardRange(ctx, scope, suffix, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.LeaderboardEntry, 0, len(members))
	for i, m := range members {
		entry := domain.LeaderboardEntry{
			Rank:   i + 1,
			ID:     CensorEmail(m.Member),
			Name:   CensorEmail(m.Member),
			Amount: m.Score,
			Count:  1,
			Tier:   domain.DonationTier(m.Score),
		}
		if contributor, err := s.statsRepo.GetContributor(ctx, m.Member); err == nil && contributor != nil {
			entry.Name = contributor.Name
			entry.Count = contributor.Count
			entry.LastTransaction = contributor.LastTransaction
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *StatsService) Overview(ctx context.Context) (*domain.StatsOverview, error) {
	stats, err := s.statsRepo.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}

	overview := &domain.StatsOverview{Stats: *stats}

	attempts := stats.SuccessfulTransactions + stats.FailedTransactions
	if attempts > 0 {
		overview.SuccessRate = float64(stats.SuccessfulTransactions) / float64(attempts) * 100
	}
	if stats.SuccessfulTransactions > 0 {
		overview.AvgAmount = stats.TotalAmount / stats.SuccessfulTransactions
	}

	// Today's slice is derived from the bounded feed rather than kept as
	// separate counters; with a 100-entry cap this is a cheap scan.
	feed, err := s.statsRepo.RecentFeed(ctx, statsrepo.FeedCap)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	donors := make(map[string]struct{})
	for _, entry := range feed {
		y1, m1, d1 := entry.CreatedAt.Date()
		y2, m2, d2 := now.Date()
		if y1 != y2 || m1 != m2 || d1 != d2 {
			continue
		}
		overview.TodayAmount += entry.Amount
		overview.TodayTransactions++
		if entry.Type == domain.TypeDonation {
			overview.TodayDonations++
		} else {
			overview.TodayPayments++
		}
		// Distinct donors by opaque key, so anonymous entries do not collapse
		// into one user and name collisions do not merge donors. Entries
		// written before the key existed count individually.
		key := entry.DonorKey
		if key == "" {
			key = entry.ID
		}
		donors[key] = struct{}{}
	}
	overview.ActiveUsers = len(donors)

	return overview, nil
}

func (s *StatsService) RecentTransactions(ctx context.Context, limit int64) ([]domain.FeedEntry, error) {
	return s.statsRepo.RecentFeed(ctx, limit)
}

// donorKey derives the feed identity for distinct-user counting: a truncated
// digest of the email, or the transaction id when no email was given.
func donorKey(tx *domain.Transaction) string {
	email := strings.ToLower(strings.TrimSpace(tx.Email))
	if email == "" {
		return tx.ID
	}
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:6])
}

// CensorEmail masks the local part, keeping the first character. Very short
// local parts get a fixed mask so their length is not revealed either.
func CensorEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return email
	}
	local, domainPart := email[:at], email[at+1:]
	if len(local) <= 2 {
		return local[:1] + "***@" + domainPart
	}
	return local[:1] + strings.Repeat("*", len(local)-1) + "@" + domainPart
}
