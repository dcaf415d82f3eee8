package webhookservice

import (
	"context"
)

// IWebhookService verifies and applies gateway callbacks. Payload format is
// detected from the body itself because both providers post to one endpoint.
type IWebhookService interface {
	// VerifySignature checks the HMAC-SHA256 hex signature over the raw body.
	// Verification is enforced only when a secret is configured and the header
	// is present; otherwise the payload is accepted as-is.
	VerifySignature(rawBody []byte, signature string) error

	// Process detects the provider format, normalizes the event and applies it
	// to the referenced transaction. Duplicate success events are no-ops.
	Process(ctx context.Context, rawBody []byte) error
}
