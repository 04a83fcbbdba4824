// Package payment adapts the hosted checkout provider: it opens checkout sessions,
// verifies webhook deliveries and reads back completed sessions.
package payment

import (
	"context"
	"errors"
)

// ErrInvalidEvent is returned when a webhook payload or its signature cannot be verified.
var ErrInvalidEvent = errors.New("invalid payment event")

// Event types acted upon by the webhook.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventPaymentFailed     = "payment_intent.payment_failed"
)

// LineItem is one product line of a checkout. UnitAmount is in the currency's minor unit.
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

type CheckoutRequest struct {
	CustomerEmail string
	Items         []LineItem
}

// Event is a verified webhook delivery reduced to what reconciliation needs.
type Event struct {
	ID            string
	Type          string
	ObjectID      string
	CustomerEmail string
}

// Session is a checkout session as reported by the provider.
type Session struct {
	ID            string
	Status        string
	CustomerEmail string
	// AmountTotal is in the currency's minor unit.
	AmountTotal  int64
	Descriptions []string
}

type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error)
	ParseEvent(payload []byte, signature string) (Event, error)
	GetSession(ctx context.Context, id string) (Session, error)
}
