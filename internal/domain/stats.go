package domain

import "time"

// Stats is the running aggregate counter hash. Counters are monotonic and are
// mutated only through the stats service's success/failure commit paths.
type Stats struct {
	TotalAmount            int64 `json:"totalAmount"`
	TotalTransactions      int64 `json:"totalTransactions"`
	SuccessfulTransactions int64 `json:"successfulTransactions"`
	FailedTransactions     int64 `json:"failedTransactions"`
	TotalDonations         int64 `json:"totalDonations"`
	DonationAmount         int64 `json:"donationAmount"`
	TotalPayments          int64 `json:"totalPayments"`
	PaymentAmount          int64 `json:"paymentAmount"`
}

// StatsOverview is the public stats view: global counters plus "today"
// variants recomputed from the recent feed at read time.
type StatsOverview struct {
	Stats
	ActiveUsers       int     `json:"activeUsers"`
	SuccessRate       float64 `json:"successRate"`
	AvgAmount         int64   `json:"avgAmount"`
	TodayAmount       int64   `json:"todayAmount"`
	TodayTransactions int64   `json:"todayTransactions"`
	TodayDonations    int64   `json:"todayDonations"`
	TodayPayments     int64   `json:"todayPayments"`
}

// LeaderboardEntry is one ranked contributor. ID is the censored email, never
// the raw address.
type LeaderboardEntry struct {
	Rank            int       `json:"rank"`
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Amount          int64     `json:"amount"`
	Count           int64     `json:"count"`
	Tier            string    `json:"tier"`
	LastTransaction time.Time `json:"lastTransaction"`
}

// Contributor is the per-email detail hash, overwritten on every successful
// non-anonymous transaction.
type Contributor struct {
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	LastTransaction time.Time `json:"lastTransaction"`
	Count           int64     `json:"count"`
}

// FeedEntry is a compact record on the bounded recent-transactions feed
// (successful transactions only, newest first, capped at 100). DonorKey is an
// opaque per-donor identifier for distinct-user counting; never the raw email,
// and stable across a donor's transactions even when they post anonymously.
type FeedEntry struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	DonorKey  string            `json:"donorKey,omitempty"`
	Amount    int64             `json:"amount"`
	Type      TransactionType   `json:"type"`
	CreatedAt time.Time         `json:"createdAt"`
	Status    TransactionStatus `json:"status"`
}

// Donation tiers by cumulative amount, smallest currency unit.
const (
	TierBronze   = "bronze"
	TierSilver   = "silver"
	TierGold     = "gold"
	TierPlatinum = "platinum"
	TierDiamond  = "diamond"
)

// DonationTier maps a cumulative amount to its tier. Amounts below the bronze
// floor still rank as bronze on leaderboards.
func DonationTier(amount int64) string {
	switch {
	case amount >= 1000001:
		return TierDiamond
	case amount >= 500001:
		return TierPlatinum
	case amount >= 100001:
		return TierGold
	case amount >= 50001:
		return TierSilver
	default:
		return TierBronze
	}
}
