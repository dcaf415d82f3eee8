package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
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

// pakasirGateway talks to the Pakasir API: JSON requests scoped by a project
// slug. Unlike atlantic, status and cancel calls require the deposit amount,
// and the status vocabulary is remapped at this boundary.
type pakasirGateway struct {
	baseURL     string
	apiKey      string
	projectSlug string
	httpClient  *http.Client
	logger      zerolog.Logger
}

func NewPakasirGateway(cfg config.PakasirConfig, logger zerolog.Logger) Gateway {
	return &pakasirGateway{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		projectSlug: cfg.ProjectSlug,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

func (g *pakasirGateway) Name() string {
	return "pakasir"
}

func (g *pakasirGateway) request(ctx context.Context, method, endpoint string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal pakasir request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create pakasir request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Pakasir request failed")
		return fmt.Errorf("pakasir request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read pakasir response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var failure struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(raw, &failure)
		g.logger.Warn().
			Int("status", resp.StatusCode).
			Str("endpoint", endpoint).
			Str("message", failure.Message).
			Msg("Pakasir rejected request")
		return &domain.GatewayError{Gateway: "pakasir", Code: resp.StatusCode, Message: failure.Message}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode pakasir response: %w", err)
		}
	}
	return nil
}

// GetMethods returns the static QRIS channel; pakasir exposes no discovery
// endpoint, so the list mirrors what the project is provisioned for.
func (g *pakasirGateway) GetMethods(ctx context.Context) ([]PaymentMethod, error) {
	return []PaymentMethod{{
		Code:       "QRIS",
		Name:       "QRIS",
		Type:       "qris",
		Min:        1000,
		Max:        50000000,
		FeePercent: 1.013,
		Status:     "aktif",
	}}, nil
}

type pakasirPayment struct {
	Payment struct {
		Project       string `json:"project"`
		OrderID       string `json:"order_id"`
		Amount        int64  `json:"amount"`
		Fee           int64  `json:"fee"`
		TotalPayment  int64  `json:"total_payment"`
		PaymentMethod string `json:"payment_method"`
		PaymentNumber string `json:"payment_number"`
		ExpiredAt     string `json:"expired_at"`
	} `json:"payment"`
}

func (g *pakasirGateway) CreateDeposit(ctx context.Context, params DepositParams) (*Deposit, error) {
	if g.projectSlug == "" || g.apiKey == "" {
		return nil, &domain.GatewayError{Gateway: "pakasir", Code: http.StatusInternalServerError, Message: "pakasir project slug or api key not configured"}
	}

	methods, _ := g.GetMethods(ctx)
	if _, ok := findActiveQRIS(methods); !ok {
		return nil, domain.ErrMethodUnavailable
	}

	payload := map[string]any{
		"project":  g.projectSlug,
		"order_id": params.ReffID,
		"amount":   params.Amount,
		"api_key":  g.apiKey,
	}

	var response pakasirPayment
	if err := g.request(ctx, http.MethodPost, "/transactioncreate/qris", payload, &response); err != nil {
		return nil, err
	}

	if response.Payment.PaymentNumber == "" {
		return nil, &domain.GatewayError{Gateway: "pakasir", Code: http.StatusBadRequest, Message: "pakasir response missing payment_number"}
	}

	deposit := &Deposit{
		ID:        response.Payment.OrderID,
		ReffID:    response.Payment.OrderID,
		Amount:    response.Payment.Amount,
		Fee:       response.Payment.Fee,
		QRString:  response.Payment.PaymentNumber,
		QRImage:   qrImageURL(response.Payment.PaymentNumber),
		Status:    domain.StatusPending,
		ExpiredAt: response.Payment.ExpiredAt,
	}
	deposit.Raw, _ = json.Marshal(map[string]any{
		"id":         deposit.ID,
		"reff_id":    deposit.ReffID,
		"nominal":    deposit.Amount,
		"fee":        deposit.Fee,
		"qr_string":  deposit.QRString,
		"qr_image":   deposit.QRImage,
		"status":     deposit.Status,
		"expired_at": deposit.ExpiredAt,
	})
	return deposit, nil
}

type pakasirDetail struct {
	Transaction struct {
		Amount        int64  `json:"amount"`
		OrderID       string `json:"order_id"`
		Project       string `json:"project"`
		Status        string `json:"status"`
		PaymentMethod string `json:"payment_method"`
		CompletedAt   string `json:"completed_at"`
	} `json:"transaction"`
}

func (g *pakasirGateway) DepositStatus(ctx context.Context, tx *domain.Transaction) (*Deposit, error) {
	query := url.Values{}
	query.Set("project", g.projectSlug)
	query.Set("amount", strconv.FormatInt(tx.Amount, 10))
	query.Set("order_id", tx.ID)
	query.Set("api_key", g.apiKey)

	var response pakasirDetail
	if err := g.request(ctx, http.MethodGet, "/transactiondetail?"+query.Encode(), nil, &response); err != nil {
		return nil, err
	}

	return &Deposit{
		ID:     response.Transaction.OrderID,
		ReffID: response.Transaction.OrderID,
		Amount: response.Transaction.Amount,
		Status: MapPakasirStatus(response.Transaction.Status),
	}, nil
}

func (g *pakasirGateway) CancelDeposit(ctx context.Context, tx *domain.Transaction) error {
	payload := map[string]any{
		"project":  g.projectSlug,
		"order_id": tx.ID,
		"amount":   tx.Amount,
		"api_key":  g.apiKey,
	}

	err := g.request(ctx, http.MethodPost, "/transactioncancel", payload, nil)
	if err == nil {
		return nil
	}

	// The provider reports re-cancellation as an error; the deposit is already
	// cancelled on their end, which is the outcome the caller wanted.
	var gwErr *domain.GatewayError
	if errors.As(err, &gwErr) && strings.Contains(strings.ToLower(gwErr.Message), "canceled") {
		return nil
	}
	return err
}

// MapPakasirStatus remaps the provider vocabulary into the internal one.
func MapPakasirStatus(s string) domain.TransactionStatus {
	switch strings.ToLower(s) {
	case "completed":
		return domain.StatusSuccess
	case "expired":
		return domain.StatusExpired
	case "cancelled", "canceled":
		return domain.StatusCancel
	default:
		return domain.StatusPending
	}
}

func qrImageURL(paymentNumber string) string {
	return "https://quickchart.io/qr?text=" + url.QueryEscape(paymentNumber) + "&size=400&margin=2"
}
