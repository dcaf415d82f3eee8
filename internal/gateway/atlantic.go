package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sintamutiara6922-star/kazzah-pay/internal/domain"
	"github.com/sintamutiara6922-star/kazzah-pay/pkg/config"
)

// atlanticGateway talks to the Atlantic H2H API: form-encoded POSTs carrying
// the api_key field, JSON envelope {status, data, code, message}.
type atlanticGateway struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewAtlanticGateway(cfg config.AtlanticConfig, logger zerolog.Logger) Gateway {
	return &atlanticGateway{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

func (g *atlanticGateway) Name() string {
	return "atlantic"
}

type atlanticEnvelope struct {
	Status  bool            `json:"status"`
	Data    json.RawMessage `json:"data"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
}

// request posts form-encoded fields and decodes the envelope. A provider
// rejection becomes a GatewayError; network faults surface as wrapped errors,
// never panics.
func (g *atlanticGateway) request(ctx context.Context, endpoint string, fields map[string]string, out any) error {
	form := url.Values{}
	form.Set("api_key", g.apiKey)
	for k, v := range fields {
		if v != "" {
			form.Set(k, v)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create atlantic request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Atlantic request failed")
		return fmt.Errorf("atlantic request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read atlantic response: %w", err)
	}

	var envelope atlanticEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to decode atlantic response: %w", err)
	}

	if !envelope.Status {
		code := envelope.Code
		if code == 0 {
			code = resp.StatusCode
		}
		g.logger.Warn().
			Int("code", code).
			Str("endpoint", endpoint).
			Str("message", envelope.Message).
			Msg("Atlantic rejected request")
		return &domain.GatewayError{Gateway: "atlantic", Code: code, Message: envelope.Message}
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to decode atlantic data: %w", err)
		}
	}
	return nil
}

func (g *atlanticGateway) GetMethods(ctx context.Context) ([]PaymentMethod, error) {
	var methods []PaymentMethod
	if err := g.request(ctx, "/deposit/metode", nil, &methods); err != nil {
		return nil, err
	}
	return methods, nil
}

type atlanticDeposit struct {
	ID        string `json:"id"`
	ReffID    string `json:"reff_id"`
	Nominal   int64  `json:"nominal"`
	Fee       int64  `json:"fee"`
	QRString  string `json:"qr_string"`
	QRImage   string `json:"qr_image"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	ExpiredAt string `json:"expired_at"`
}

// CreateDeposit discovers an active QRIS channel first; without one the
// create endpoint is never contacted.
func (g *atlanticGateway) CreateDeposit(ctx context.Context, params DepositParams) (*Deposit, error) {
	methods, err := g.GetMethods(ctx)
	if err != nil {
		return nil, err
	}
	qris, ok := findActiveQRIS(methods)
	if !ok {
		return nil, domain.ErrMethodUnavailable
	}

	var raw json.RawMessage
	fields := map[string]string{
		"reff_id":        params.ReffID,
		"nominal":        strconv.FormatInt(params.Amount, 10),
		"type":           qris.Type,
		"metode":         qris.Code,
		"customer_name":  params.CustomerName,
		"customer_email": params.CustomerEmail,
		"customer_phone": params.CustomerPhone,
	}
	if err := g.request(ctx, "/deposit/create", fields, &raw); err != nil {
		return nil, err
	}

	return g.decodeDeposit(raw)
}

func (g *atlanticGateway) DepositStatus(ctx context.Context, tx *domain.Transaction) (*Deposit, error) {
	var raw json.RawMessage
	if err := g.request(ctx, "/deposit/status", map[string]string{"id": tx.ID}, &raw); err != nil {
		return nil, err
	}
	return g.decodeDeposit(raw)
}

func (g *atlanticGateway) CancelDeposit(ctx context.Context, tx *domain.Transaction) error {
	return g.request(ctx, "/deposit/cancel", map[string]string{"id": tx.ID}, nil)
}

type atlanticInstantResult struct {
	ID            string `json:"id"`
	ReffID        string `json:"reff_id"`
	Nominal       int64  `json:"nominal"`
	Penanganan    int64  `json:"penanganan"`
	TotalFee      int64  `json:"total_fee"`
	TotalDiterima int64  `json:"total_diterima"`
	Status        string `json:"status"`
}

// InstantDeposit previews (action=false) or executes (action=true) settlement
// escalation of a processing deposit.
func (g *atlanticGateway) InstantDeposit(ctx context.Context, id string, action bool) (*InstantDepositResult, error) {
	var result atlanticInstantResult
	fields := map[string]string{
		"id":     id,
		"action": strconv.FormatBool(action),
	}
	if err := g.request(ctx, "/deposit/instant", fields, &result); err != nil {
		return nil, err
	}
	return &InstantDepositResult{
		ID:            result.ID,
		ReffID:        result.ReffID,
		Amount:        result.Nominal,
		HandlingFee:   result.Penanganan,
		TotalFee:      result.TotalFee,
		TotalReceived: result.TotalDiterima,
		Status:        result.Status,
	}, nil
}

func (g *atlanticGateway) Profile(ctx context.Context) (*Profile, error) {
	var profile Profile
	if err := g.request(ctx, "/get_profile", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (g *atlanticGateway) decodeDeposit(raw json.RawMessage) (*Deposit, error) {
	var d atlanticDeposit
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("failed to decode atlantic deposit: %w", err)
	}
	return &Deposit{
		ID:        d.ID,
		ReffID:    d.ReffID,
		Amount:    d.Nominal,
		Fee:       d.Fee,
		QRString:  d.QRString,
		QRImage:   d.QRImage,
		Status:    mapAtlanticStatus(d.Status),
		ExpiredAt: d.ExpiredAt,
		Raw:       raw,
	}, nil
}

// Atlantic already speaks the internal vocabulary, with one cancelled spelling
// quirk. Unknown values are treated as still pending.
func mapAtlanticStatus(s string) domain.TransactionStatus {
	switch strings.ToLower(s) {
	case "success":
		return domain.StatusSuccess
	case "processing":
		return domain.StatusProcessing
	case "failed":
		return domain.StatusFailed
	case "expired":
		return domain.StatusExpired
	case "cancel", "cancelled", "canceled":
		return domain.StatusCancel
	default:
		return domain.StatusPending
	}
}
