package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/webhook"
)

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
	Currency      string
}

// Stripe is the Gateway backed by Stripe Checkout.
type Stripe struct {
	cfg      StripeConfig
	sessions *session.Client
	log      zerolog.Logger
}

func NewStripe(cfg StripeConfig, logger zerolog.Logger) *Stripe {
	return newStripe(cfg, stripe.GetBackend(stripe.APIBackend), logger)
}

func newStripe(cfg StripeConfig, backend stripe.Backend, logger zerolog.Logger) *Stripe {
	if cfg.Currency == "" {
		cfg.Currency = string(stripe.CurrencyUSD)
	}
	l := logger.With().Str("module", "payment").Str("provider", "stripe").Logger()
	if cfg.SecretKey == "" {
		l.Warn().Msg("stripe secret key not set; checkout calls will be rejected by the provider")
	}
	return &Stripe{
		cfg:      cfg,
		sessions: &session.Client{B: backend, Key: cfg.SecretKey},
		log:      l,
	}
}

func (s *Stripe) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error) {
	params := &stripe.CheckoutSessionParams{
		CustomerEmail: stripe.String(req.CustomerEmail),
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(s.cfg.SuccessURL),
		CancelURL:     stripe.String(s.cfg.CancelURL),
	}
	for _, it := range req.Items {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(s.cfg.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(it.Name),
				},
				UnitAmount: stripe.Int64(it.UnitAmount),
			},
			Quantity: stripe.Int64(it.Quantity),
		})
	}
	params.Context = ctx

	cs, err := s.sessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	s.log.Info().Str("session_id", cs.ID).Int("items", len(req.Items)).Msg("checkout session created")
	return cs.URL, nil
}

func (s *Stripe) GetSession(ctx context.Context, id string) (Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.AddExpand("line_items")
	params.Context = ctx

	cs, err := s.sessions.Get(id, params)
	if err != nil {
		return Session{}, fmt.Errorf("get checkout session %s: %w", id, err)
	}
	return sessionFromStripe(cs), nil
}

func sessionFromStripe(cs *stripe.CheckoutSession) Session {
	out := Session{
		ID:            cs.ID,
		Status:        string(cs.Status),
		CustomerEmail: sessionEmail(cs),
		AmountTotal:   cs.AmountTotal,
	}
	if cs.LineItems != nil {
		for _, li := range cs.LineItems.Data {
			out.Descriptions = append(out.Descriptions, li.Description)
		}
	}
	return out
}

func sessionEmail(cs *stripe.CheckoutSession) string {
	if cs.CustomerEmail != "" {
		return cs.CustomerEmail
	}
	if cs.CustomerDetails != nil {
		return cs.CustomerDetails.Email
	}
	return ""
}

// ParseEvent verifies the Stripe-Signature header against the webhook secret.
func (s *Stripe) ParseEvent(payload []byte, signature string) (Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signature, s.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return Event{}, errors.Join(ErrInvalidEvent, err)
	}

	out := Event{ID: ev.ID, Type: string(ev.Type)}
	if ev.Data == nil {
		return out, nil
	}
	switch out.Type {
	case EventCheckoutCompleted:
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &cs); err != nil {
			return Event{}, errors.Join(ErrInvalidEvent, err)
		}
		out.ObjectID = cs.ID
		out.CustomerEmail = sessionEmail(&cs)
	case EventPaymentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
			return Event{}, errors.Join(ErrInvalidEvent, err)
		}
		out.ObjectID = pi.ID
		out.CustomerEmail = pi.ReceiptEmail
	}
	return out, nil
}

var _ Gateway = (*Stripe)(nil)
