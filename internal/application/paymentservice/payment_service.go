package paymentservice

import (
	"context"

	"github.com/sintamutiara6922-star/kazzah-pay/internal/domain"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/gateway"
)

// CreateParams are the validated inputs for a new deposit.
type CreateParams struct {
	Amount    int64
	Method    string
	Type      domain.TransactionType
	Name      string
	Email     string
	Phone     string
	Message   string
	Anonymous bool
}

// CreateResult is what the client needs to render the invoice page.
type CreateResult struct {
	TransactionID string `json:"transactionId"`
	InvoiceCode   string `json:"invoiceCode"`
	InvoiceURL    string `json:"invoiceUrl"`
	PaymentData   string `json:"paymentData"`
}

// StatusResult is the transaction snapshot returned to pollers.
type StatusResult struct {
	Transaction          *domain.Transaction `json:"transaction"`
	CanUseInstantDeposit bool                `json:"canUseInstantDeposit"`
}

// ValidationError names the offending field for a 400 response.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

type IPaymentService interface {
	// CreatePayment validates the request, opens a deposit on the active
	// gateway and stores the pending transaction.
	CreatePayment(ctx context.Context, params CreateParams) (*CreateResult, error)

	// GetStatus reconciles the transaction against its gateway. Terminal
	// records are returned from the store without any gateway call; gateway
	// failures fall back to the cached state.
	GetStatus(ctx context.Context, id, invoiceCode string) (*StatusResult, error)

	// Cancel aborts a pending deposit. Any other state is a conflict.
	Cancel(ctx context.Context, id string) (*domain.Transaction, error)

	// InstantDeposit previews (action=false) or executes (action=true) instant
	// settlement of a processing deposit, where the gateway supports it.
	InstantDeposit(ctx context.Context, id string, action bool) (*gateway.InstantDepositResult, error)

	// Profile returns the gateway account snapshot, where supported.
	Profile(ctx context.Context) (*gateway.Profile, error)
}
