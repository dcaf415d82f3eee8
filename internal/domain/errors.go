package domain

import (
	"errors"
	"fmt"
)

// Expected outcomes, not server faults. Handlers map these to 404/409/503
// instead of a generic 500.
var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrMethodUnavailable   = errors.New("no active QRIS payment method available")
	ErrInvalidSignature    = errors.New("invalid webhook signature")
	ErrInstantUnsupported  = errors.New("instant deposit not supported by this gateway")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrSessionNotFound     = errors.New("session not found or expired")
)

// ConflictError signals an operation that is invalid for the transaction's
// current state, e.g. cancelling a completed deposit.
type ConflictError struct {
	Status  TransactionStatus
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// NewConflictError builds a conflict for the given current status.
func NewConflictError(status TransactionStatus, message string) *ConflictError {
	return &ConflictError{Status: status, Message: message}
}

// GatewayError carries a provider rejection with its message so callers can
// show it to the user; network faults are wrapped separately.
type GatewayError struct {
	Gateway string
	Code    int
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s gateway error (code %d): %s", e.Gateway, e.Code, e.Message)
}
