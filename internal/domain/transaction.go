package domain

import "time"

type TransactionStatus string
type TransactionType string

const (
	StatusPending    TransactionStatus = "pending"
	StatusProcessing TransactionStatus = "processing"
	StatusSuccess    TransactionStatus = "success"
	StatusFailed     TransactionStatus = "failed"
	StatusExpired    TransactionStatus = "expired"
	StatusCancel     TransactionStatus = "cancel"
)

const (
	TypePayment  TransactionType = "payment"
	TypeDonation TransactionType = "donation"
)

// IsTerminal reports whether no further status transitions are expected.
// Processing is not terminal: the gateway still settles it asynchronously.
func (s TransactionStatus) IsTerminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusExpired, StatusCancel:
		return true
	}
	return false
}

// Transaction is the central entity: one deposit requested from a payment
// gateway, tracked until it reaches a terminal state or its 24h TTL runs out.
type Transaction struct {
	ID          string            `json:"id"`
	InvoiceCode string            `json:"invoiceCode"`
	ReffID      string            `json:"reffId"`
	Amount      int64             `json:"amount"`
	Method      string            `json:"method"`
	Type        TransactionType   `json:"type"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Phone       string            `json:"phone,omitempty"`
	Message     string            `json:"message,omitempty"`
	Anonymous   bool              `json:"anonymous"`
	Gateway     string            `json:"gateway"`
	Status      TransactionStatus `json:"status"`

	// PaymentData carries the provider payload (QR string/image, fees) verbatim.
	PaymentData string `json:"paymentData,omitempty"`

	// StatsRecorded guards the aggregate commit: counters and leaderboards are
	// applied at most once per transaction.
	StatsRecorded bool `json:"statsRecorded"`

	// Instant-deposit metadata, present once the escalation endpoint has been called.
	InstantFee    int64 `json:"instantFee,omitempty"`
	TotalFee      int64 `json:"totalFee,omitempty"`
	TotalReceived int64 `json:"totalReceived,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	PaidAt      *time.Time `json:"paidAt,omitempty"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
}

// InstantDepositTriggered reports whether escalation metadata was already
// stored; the reconciler uses it to avoid calling the endpoint twice.
func (t *Transaction) InstantDepositTriggered() bool {
	return t.TotalReceived != 0 || t.InstantFee != 0
}

// DisplayName is the name shown on public feeds.
func (t *Transaction) DisplayName() string {
	if t.Anonymous {
		return "Anonymous"
	}
	return t.Name
}
