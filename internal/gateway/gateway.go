package gateway

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sintamutiara6922-star/kazzah-pay/internal/domain"
	"github.com/sintamutiara6922-star/kazzah-pay/pkg/config"
)

// PaymentMethod is a provider payment channel as advertised by the gateway.
type PaymentMethod struct {
	Code       string  `json:"metode"`
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Min        int64   `json:"min"`
	Max        int64   `json:"max"`
	Fee        int64   `json:"fee"`
	FeePercent float64 `json:"fee_persen"`
	Status     string  `json:"status"`
	ImageURL   string  `json:"img_url"`
}

// Active reports whether the provider will accept deposits on this method.
func (m PaymentMethod) Active() bool {
	return m.Status == "aktif"
}

// IsQRIS reports whether this is the QRIS channel.
func (m PaymentMethod) IsQRIS() bool {
	return strings.EqualFold(m.Code, "QRIS")
}

// DepositParams are the normalized inputs for creating a deposit.
type DepositParams struct {
	ReffID        string
	Amount        int64
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

// Deposit is the normalized provider response for a created or polled deposit.
// Raw keeps the provider payload verbatim so it can be stored and replayed to
// clients without re-contacting the gateway.
type Deposit struct {
	ID        string
	ReffID    string
	Amount    int64
	Fee       int64
	QRString  string
	QRImage   string
	Status    domain.TransactionStatus
	ExpiredAt string
	Raw       json.RawMessage
}

// InstantDepositResult carries the escalation fee metadata.
type InstantDepositResult struct {
	ID            string
	ReffID        string
	Amount        int64
	HandlingFee   int64
	TotalFee      int64
	TotalReceived int64
	Status        string
}

// Profile is the provider account snapshot, where supported.
type Profile struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Balance  string `json:"balance"`
	Status   string `json:"status"`
}

// Gateway is the uniform interface over both payment providers. Status and
// cancel take the full transaction record so each backend can extract what it
// needs: pakasir requires the amount on every call, atlantic only the id.
type Gateway interface {
	Name() string
	GetMethods(ctx context.Context) ([]PaymentMethod, error)
	CreateDeposit(ctx context.Context, params DepositParams) (*Deposit, error)
	DepositStatus(ctx context.Context, tx *domain.Transaction) (*Deposit, error)
	CancelDeposit(ctx context.Context, tx *domain.Transaction) error
}

// InstantSettler is implemented by gateways that support instant-deposit
// escalation of a processing deposit.
type InstantSettler interface {
	InstantDeposit(ctx context.Context, id string, action bool) (*InstantDepositResult, error)
}

// ProfileProvider is implemented by gateways that expose an account profile.
type ProfileProvider interface {
	Profile(ctx context.Context) (*Profile, error)
}

// Selector owns both provider clients. New transactions go to the configured
// active gateway; stored transactions resolve through their gateway field so
// they stay reconcilable after a provider switch.
type Selector struct {
	active   string
	atlantic Gateway
	pakasir  Gateway
}

func NewSelector(cfg config.GatewayConfig, logger zerolog.Logger) *Selector {
	active := strings.ToLower(cfg.Provider)
	if active != "pakasir" {
		active = "atlantic"
	}
	return &Selector{
		active:   active,
		atlantic: NewAtlanticGateway(cfg.Atlantic, logger),
		pakasir:  NewPakasirGateway(cfg.Pakasir, logger),
	}
}

// NewSelectorWith wires explicit gateway implementations. Used by tests and
// tooling that stub out the providers.
func NewSelectorWith(active string, atlantic, pakasir Gateway) *Selector {
	if active != "pakasir" {
		active = "atlantic"
	}
	return &Selector{
		active:   active,
		atlantic: atlantic,
		pakasir:  pakasir,
	}
}

// ActiveName returns the configured gateway name.
func (s *Selector) ActiveName() string {
	return s.active
}

// Active returns the gateway used for new deposits.
func (s *Selector) Active() Gateway {
	return s.byName(s.active)
}

// For returns the gateway that produced the given transaction, falling back
// to the active gateway when the record predates gateway tracking.
func (s *Selector) For(tx *domain.Transaction) Gateway {
	if tx != nil && tx.Gateway != "" {
		return s.byName(strings.ToLower(tx.Gateway))
	}
	return s.Active()
}

func (s *Selector) byName(name string) Gateway {
	if name == "pakasir" {
		return s.pakasir
	}
	return s.atlantic
}

// findActiveQRIS scans a method list for an active QRIS channel.
func findActiveQRIS(methods []PaymentMethod) (PaymentMethod, bool) {
	for _, m := range methods {
		if m.Active() && m.IsQRIS() {
			return m, true
		}
	}
	return PaymentMethod{}, false
}
