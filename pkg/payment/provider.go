// Package payment abstracts the online payment provider used for pickup and
// delivery checkout.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the provider-side state of a payment intent
type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
)

// IsFinal reports whether the intent can no longer change
func (s Status) IsFinal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusCanceled
}

// ErrUnknownIntent is returned for references the provider never issued
var ErrUnknownIntent = errors.New("payment: unknown intent")

// IntentRequest describes the amount to collect for one order
type IntentRequest struct {
	OrderID  uuid.UUID
	OutletID uuid.UUID
	Amount   decimal.Decimal
	Currency string
}

// Intent is a created provider intent
type Intent struct {
	Ref          string
	ClientSecret string
	Status       Status
}

// Provider is the external payment gateway
type Provider interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	GetIntentStatus(ctx context.Context, ref string) (Status, error)
	CancelIntent(ctx context.Context, ref string) error
}

// Event is a provider notification delivered by webhook or queue
type Event struct {
	ID        string `json:"id"`
	IntentRef string `json:"intent_ref"`
	Status    Status `json:"status"`
}

// Sign returns the hex HMAC-SHA256 of body under secret
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a webhook signature. An empty secret disables the check.
func VerifySignature(secret string, body []byte, signature string) bool {
	if secret == "" {
		return true
	}
	return hmac.Equal([]byte(Sign(secret, body)), []byte(signature))
}
