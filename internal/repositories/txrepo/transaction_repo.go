package txrepo

import (
	"context"
	"time"

	"github.com/sintamutiara6922-star/kazzah-pay/internal/domain"
)

// TransactionTTL bounds how long a transaction stays resolvable. Both the
// canonical record and the invoice alias are created with it; terminal
// transactions simply age out.
const TransactionTTL = 24 * time.Hour

type ITransactionRepository interface {
	// Create stores the canonical record keyed by id and the invoice alias
	// pointing at it, both with TransactionTTL.
	Create(ctx context.Context, tx *domain.Transaction) error

	// GetByID returns domain.ErrTransactionNotFound for missing or expired ids.
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)

	// GetByInvoice resolves the alias first, then reads the canonical record.
	GetByInvoice(ctx context.Context, invoiceCode string) (*domain.Transaction, error)

	// Update rewrites the canonical record in place, preserving its remaining TTL.
	Update(ctx context.Context, tx *domain.Transaction) error

	Ping(ctx context.Context) error
}
