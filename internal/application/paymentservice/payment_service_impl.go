package paymentservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sintamutiara6922-star/kazzah-pay/internal/application/statsservice"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/domain"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/gateway"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/repositories/txrepo"
	"github.com/sintamutiara6922-star/kazzah-pay/pkg/config"
)

type PaymentService struct {
	config       *config.Config
	logger       zerolog.Logger
	txRepo       txrepo.ITransactionRepository
	statsService statsservice.IStatsService
	gateways     *gateway.Selector
}

func NewPaymentService(config *config.Config, logger zerolog.Logger, txRepo txrepo.ITransactionRepository, statsService statsservice.IStatsService, gateways *gateway.Selector) *PaymentService {
	return &PaymentService{
		config:       config,
		logger:       logger,
		txRepo:       txRepo,
		statsService: statsService,
		gateways:     gateways,
	}
}

func (s *PaymentService) validate(params *CreateParams) error {
	if params.Amount < s.config.Payment.MinAmount {
		return &ValidationError{Field: "amount", Message: fmt.Sprintf("amount must be at least %d", s.config.Payment.MinAmount)}
	}
	if params.Amount > s.config.Payment.MaxAmount {
		return &ValidationError{Field: "amount", Message: fmt.Sprintf("amount must not exceed %d", s.config.Payment.MaxAmount)}
	}
	if strings.TrimSpace(params.Name) == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if strings.TrimSpace(params.Email) == "" {
		return &ValidationError{Field: "email", Message: "email is required"}
	}
	switch params.Type {
	case domain.TypePayment, domain.TypeDonation:
	case "":
		params.Type = domain.TypeDonation
	default:
		return &ValidationError{Field: "type", Message: "type must be payment or donation"}
	}
	if params.Method == "" {
		params.Method = "QRIS"
	}
	return nil
}

// shortID returns the first n hex characters of a fresh UUID, uppercased.
func shortID(n int) string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:n])
}

func (s *PaymentService) CreatePayment(ctx context.Context, params CreateParams) (*CreateResult, error) {
	if err := s.validate(&params); err != nil {
		return nil, err
	}

	reffID := "TRX-" + shortID(12)
	invoiceCode := "INV-" + shortID(10)

	gw := s.gateways.Active()
	deposit, err := gw.CreateDeposit(ctx, gateway.DepositParams{
		ReffID:        reffID,
		Amount:        params.Amount,
		CustomerName:  params.Name,
		CustomerEmail: params.Email,
		CustomerPhone: params.Phone,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("gateway", gw.Name()).Int64("amount", params.Amount).Msg("Failed to create deposit")
		return nil, err
	}

	now := time.Now()
	tx := &domain.Transaction{
		ID:          deposit.ID,
		InvoiceCode: invoiceCode,
		ReffID:      reffID,
		Amount:      params.Amount,
		Method:      params.Method,
		Type:        params.Type,
		Name:        params.Name,
		Email:       params.Email,
		Phone:       params.Phone,
		Message:     params.Message,
		Anonymous:   params.Anonymous,
		Gateway:     gw.Name(),
		Status:      domain.StatusPending,
		PaymentData: string(deposit.Raw),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("transaction_id", tx.ID).
		Str("invoice_code", invoiceCode).
		Str("gateway", gw.Name()).
		Int64("amount", params.Amount).
		Msg("Payment created")

	return &CreateResult{
		TransactionID: tx.ID,
		InvoiceCode:   invoiceCode,
		InvoiceURL:    strings.TrimRight(s.config.Payment.PublicURL, "/") + "/invoice/" + invoiceCode,
		PaymentData:   tx.PaymentData,
	}, nil
}

func (s *PaymentService) GetStatus(ctx context.Context, id, invoiceCode string) (*StatusResult, error) {
	var (
		tx  *domain.Transaction
		err error
	)
	switch {
	case id != "":
		tx, err = s.txRepo.GetByID(ctx, id)
	case invoiceCode != "":
		tx, err = s.txRepo.GetByInvoice(ctx, invoiceCode)
	default:
		return nil, &ValidationError{Field: "id", Message: "id or invoice is required"}
	}
	if err != nil {
		return nil, err
	}

	// Terminal records never change again; skip the gateway entirely. A
	// success that somehow missed its aggregate commit is healed here first.
	if tx.Status.IsTerminal() {
		if tx.Status == domain.StatusSuccess && !tx.StatsRecorded {
			if err := s.statsService.RecordSuccess(ctx, tx, time.Now()); err != nil {
				s.logger.Error().Err(err).Str("transaction_id", tx.ID).Msg("Backup stats commit failed")
			}
		}
		return s.snapshot(tx), nil
	}

	gw := s.gateways.For(tx)
	deposit, err := gw.DepositStatus(ctx, tx)
	if err != nil {
		// Cached state is better than an error page while the provider is down.
		s.logger.Warn().Err(err).Str("transaction_id", tx.ID).Msg("Gateway status check failed, serving cached state")
		return s.snapshot(tx), nil
	}

	now := time.Now()
	if deposit.Status != tx.Status {
		previous := tx.Status
		tx.Status = deposit.Status
		tx.UpdatedAt = now

		if deposit.Status == domain.StatusSuccess {
			tx.PaidAt = &now
		}
		if err := s.txRepo.Update(ctx, tx); err != nil {
			return nil, err
		}

		s.logger.Info().
			Str("transaction_id", tx.ID).
			Str("from", string(previous)).
			Str("to", string(tx.Status)).
			Msg("Transaction status reconciled")

		// Backup commit path for webhooks that never arrived.
		if deposit.Status == domain.StatusSuccess {
			if err := s.statsService.RecordSuccess(ctx, tx, now); err != nil {
				s.logger.Error().Err(err).Str("transaction_id", tx.ID).Msg("Backup stats commit failed")
			}
		}
	}

	s.maybeInstantSettle(ctx, gw, tx)

	return s.snapshot(tx), nil
}

// maybeInstantSettle escalates a processing deposit exactly once. The status
// stays processing; only the fee metadata is stored.
func (s *PaymentService) maybeInstantSettle(ctx context.Context, gw gateway.Gateway, tx *domain.Transaction) {
	if tx.Status != domain.StatusProcessing || tx.InstantDepositTriggered() {
		return
	}
	settler, ok := gw.(gateway.InstantSettler)
	if !ok {
		return
	}

	result, err := settler.InstantDeposit(ctx, tx.ID, true)
	if err != nil {
		s.logger.Warn().Err(err).Str("transaction_id", tx.ID).Msg("Auto instant deposit failed")
		return
	}

	tx.InstantFee = result.HandlingFee
	tx.TotalFee = result.TotalFee
	tx.TotalReceived = result.TotalReceived
	tx.UpdatedAt = time.Now()
	if err := s.txRepo.Update(ctx, tx); err != nil {
		s.logger.Error().Err(err).Str("transaction_id", tx.ID).Msg("Failed to store instant deposit metadata")
		return
	}

	s.logger.Info().
		Str("transaction_id", tx.ID).
		Int64("instant_fee", result.HandlingFee).
		Int64("total_received", result.TotalReceived).
		Msg("Instant deposit triggered")
}

func (s *PaymentService) snapshot(tx *domain.Transaction) *StatusResult {
	_, settles := s.gateways.For(tx).(gateway.InstantSettler)
	return &StatusResult{
		Transaction:          tx,
		CanUseInstantDeposit: settles && tx.Status == domain.StatusProcessing && !tx.InstantDepositTriggered(),
	}
}

func (s *PaymentService) Cancel(ctx context.Context, id string) (*domain.Transaction, error) {
	tx, err := s.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if tx.Status != domain.StatusPending {
		return nil, domain.NewConflictError(tx.Status, fmt.Sprintf("cannot cancel a %s transaction", tx.Status))
	}

	if err := s.gateways.For(tx).CancelDeposit(ctx, tx); err != nil {
		return nil, err
	}

	now := time.Now()
	tx.Status = domain.StatusCancel
	tx.CancelledAt = &now
	tx.UpdatedAt = now
	if err := s.txRepo.Update(ctx, tx); err != nil {
		return nil, err
	}

	s.logger.Info().Str("transaction_id", tx.ID).Msg("Payment cancelled")
	return tx, nil
}

func (s *PaymentService) InstantDeposit(ctx context.Context, id string, action bool) (*gateway.InstantDepositResult, error) {
	tx, err := s.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if tx.Status != domain.StatusProcessing {
		return nil, domain.NewConflictError(tx.Status, "instant deposit is only available while processing")
	}

	settler, ok := s.gateways.For(tx).(gateway.InstantSettler)
	if !ok {
		return nil, domain.ErrInstantUnsupported
	}

	result, err := settler.InstantDeposit(ctx, tx.ID, action)
	if err != nil {
		return nil, err
	}

	if action {
		tx.InstantFee = result.HandlingFee
		tx.TotalFee = result.TotalFee
		tx.TotalReceived = result.TotalReceived
		tx.UpdatedAt = time.Now()
		if err := s.txRepo.Update(ctx, tx); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *PaymentService) Profile(ctx context.Context) (*gateway.Profile, error) {
	provider, ok := s.gateways.Active().(gateway.ProfileProvider)
	if !ok {
		return nil, nil
	}
	return provider.Profile(ctx)
}
