package webhookservice

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sintamutiara6922-star/kazzah-pay/internal/application/statsservice"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/domain"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/gateway"
	"github.com/sintamutiara6922-star/kazzah-pay/internal/repositories/txrepo"
	"github.com/sintamutiara6922-star/kazzah-pay/pkg/config"
)

type WebhookService struct {
	config       *config.Config
	logger       zerolog.Logger
	txRepo       txrepo.ITransactionRepository
	statsService statsservice.IStatsService
}

func NewWebhookService(config *config.Config, logger zerolog.Logger, txRepo txrepo.ITransactionRepository, statsService statsservice.IStatsService) *WebhookService {
	return &WebhookService{
		config:       config,
		logger:       logger,
		txRepo:       txRepo,
		statsService: statsService,
	}
}

func (s *WebhookService) VerifySignature(rawBody []byte, signature string) error {
	secret := s.config.Webhook.Secret
	if secret == "" || signature == "" {
		// Unsigned mode: without a configured secret or a presented header
		// there is nothing to check. Deployments should always set the secret.
		return nil
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return domain.ErrInvalidSignature
	}
	return nil
}

// normalizedEvent is the provider-independent view of one callback.
type normalizedEvent struct {
	provider      string
	transactionID string
	status        domain.TransactionStatus
}

// Pakasir posts flat transaction objects; Atlantic wraps a payment.* event
// name around a data object. The project+order_id pair is the discriminator.
func (s *WebhookService) detect(rawBody []byte) (*normalizedEvent, error) {
	var probe struct {
		Project string `json:"project"`
		OrderID string `json:"order_id"`
		Status  string `json:"status"`
		Event   string `json:"event"`
		Data    struct {
			ID     string `json:"id"`
			ReffID string `json:"reff_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rawBody, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}

	if probe.Project != "" && probe.OrderID != "" {
		return &normalizedEvent{
			provider:      "pakasir",
			transactionID: probe.OrderID,
			status:        gateway.MapPakasirStatus(probe.Status),
		}, nil
	}

	if probe.Event != "" {
		var status domain.TransactionStatus
		switch probe.Event {
		case "payment.success":
			status = domain.StatusSuccess
		case "payment.pending":
			status = domain.StatusPending
		case "payment.failed":
			status = domain.StatusFailed
		case "payment.expired":
			status = domain.StatusExpired
		default:
			return nil, fmt.Errorf("unknown webhook event %q", probe.Event)
		}
		return &normalizedEvent{
			provider:      "atlantic",
			transactionID: probe.Data.ID,
			status:        status,
		}, nil
	}

	return nil, errors.New("unrecognized webhook payload format")
}

func (s *WebhookService) Process(ctx context.Context, rawBody []byte) error {
	event, err := s.detect(rawBody)
	if err != nil {
		return err
	}
	if event.transactionID == "" {
		return errors.New("webhook payload missing transaction id")
	}

	tx, err := s.txRepo.GetByID(ctx, event.transactionID)
	if err != nil {
		return err
	}

	s.logger.Info().
		Str("provider", event.provider).
		Str("transaction_id", tx.ID).
		Str("status", string(event.status)).
		Msg("Webhook event received")

	now := time.Now()
	switch event.status {
	case domain.StatusSuccess:
		if tx.StatsRecorded {
			// Redelivery of an already committed success.
			return nil
		}
		// Commit the aggregates before the status flip. The inverse order can
		// strand a terminal record with uncommitted stats: the ack below is
		// unconditional, so the provider never redelivers, and a record that
		// is already terminal is not re-reconciled on the poll path.
		if err := s.statsService.RecordSuccess(ctx, tx, now); err != nil {
			return err
		}
		tx.Status = domain.StatusSuccess
		tx.PaidAt = &now
		tx.UpdatedAt = now
		return s.txRepo.Update(ctx, tx)

	case domain.StatusFailed:
		tx.Status = domain.StatusFailed
		tx.UpdatedAt = now
		if err := s.txRepo.Update(ctx, tx); err != nil {
			return err
		}
		return s.statsService.RecordFailure(ctx)

	case domain.StatusExpired:
		tx.Status = domain.StatusExpired
		tx.UpdatedAt = now
		return s.txRepo.Update(ctx, tx)

	default:
		// Pending-class events only refresh the timestamp; the status poll and
		// reconciler own intermediate transitions.
		tx.UpdatedAt = now
		return s.txRepo.Update(ctx, tx)
	}
}
