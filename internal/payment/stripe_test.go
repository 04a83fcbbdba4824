package payment

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
)

const testWebhookSecret = "whsec_test_secret"

func newTestStripe(t *testing.T, h http.HandlerFunc) *Stripe {
	t.Helper()
	cfg := StripeConfig{
		SecretKey:     "sk_test_123",
		WebhookSecret: testWebhookSecret,
		SuccessURL:    "http://localhost:3000/order/success",
		CancelURL:     "http://localhost:3000/order/cancel",
	}
	if h == nil {
		return newStripe(cfg, stripe.GetBackend(stripe.APIBackend), zerolog.New(io.Discard))
	}
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
	})
	return newStripe(cfg, backend, zerolog.New(io.Discard))
}

func signed(t *testing.T, payload string) (body []byte, header string) {
	t.Helper()
	sp := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
	})
	return sp.Payload, sp.Header
}

func TestParseEvent_CheckoutCompleted(t *testing.T) {
	s := newTestStripe(t, nil)
	body, header := signed(t, `{
		"id": "evt_1", "object": "event", "type": "checkout.session.completed",
		"data": {"object": {"id": "cs_test_1", "object": "checkout.session", "customer_email": "alice@example.com"}}
	}`)

	ev, err := s.ParseEvent(body, header)
	require.NoError(t, err)
	assert.Equal(t, Event{ID: "evt_1", Type: EventCheckoutCompleted, ObjectID: "cs_test_1", CustomerEmail: "alice@example.com"}, ev)
}

func TestParseEvent_CheckoutCompletedFallsBackToCustomerDetails(t *testing.T) {
	s := newTestStripe(t, nil)
	body, header := signed(t, `{
		"id": "evt_2", "object": "event", "type": "checkout.session.completed",
		"data": {"object": {"id": "cs_test_2", "object": "checkout.session", "customer_details": {"email": "bob@example.com"}}}
	}`)

	ev, err := s.ParseEvent(body, header)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", ev.CustomerEmail)
}

func TestParseEvent_PaymentFailed(t *testing.T) {
	s := newTestStripe(t, nil)
	body, header := signed(t, `{
		"id": "evt_3", "object": "event", "type": "payment_intent.payment_failed",
		"data": {"object": {"id": "pi_1", "object": "payment_intent", "receipt_email": "carol@example.com"}}
	}`)

	ev, err := s.ParseEvent(body, header)
	require.NoError(t, err)
	assert.Equal(t, EventPaymentFailed, ev.Type)
	assert.Equal(t, "pi_1", ev.ObjectID)
	assert.Equal(t, "carol@example.com", ev.CustomerEmail)
}

func TestParseEvent_RejectsBadSignature(t *testing.T) {
	s := newTestStripe(t, nil)
	body, _ := signed(t, `{"id": "evt_4", "object": "event", "type": "checkout.session.completed"}`)

	_, err := s.ParseEvent(body, "t=1,v1=deadbeef")
	assert.True(t, errors.Is(err, ErrInvalidEvent))

	_, err = s.ParseEvent([]byte("not json"), "")
	assert.True(t, errors.Is(err, ErrInvalidEvent))
}

func TestCreateCheckoutSession(t *testing.T) {
	var form url.Values
	s := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "cs_test_9", "object": "checkout.session", "url": "https://checkout.example/cs_test_9"}`))
	})

	got, err := s.CreateCheckoutSession(context.Background(), CheckoutRequest{
		CustomerEmail: "alice@example.com",
		Items:         []LineItem{{Name: "Linen Shirt", UnitAmount: 4000, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example/cs_test_9", got)
	assert.Equal(t, "payment", form.Get("mode"))
	assert.Equal(t, "alice@example.com", form.Get("customer_email"))
	assert.Equal(t, "usd", form.Get("line_items[0][price_data][currency]"))
	assert.Equal(t, "Linen Shirt", form.Get("line_items[0][price_data][product_data][name]"))
	assert.Equal(t, "4000", form.Get("line_items[0][price_data][unit_amount]"))
	assert.Equal(t, "2", form.Get("line_items[0][quantity]"))
}

func TestGetSession_ExpandsLineItems(t *testing.T) {
	s := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions/cs_test_5", r.URL.Path)
		assert.Equal(t, "line_items", r.URL.Query().Get("expand[0]"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "cs_test_5", "object": "checkout.session", "status": "complete",
			"amount_total": 13250, "customer_email": "alice@example.com",
			"line_items": {"object": "list", "data": [
				{"id": "li_1", "object": "item", "description": "Linen Shirt"},
				{"id": "li_2", "object": "item", "description": "Wool Scarf"}
			]}
		}`))
	})

	got, err := s.GetSession(context.Background(), "cs_test_5")
	require.NoError(t, err)
	assert.Equal(t, Session{
		ID: "cs_test_5", Status: "complete", CustomerEmail: "alice@example.com",
		AmountTotal: 13250, Descriptions: []string{"Linen Shirt", "Wool Scarf"},
	}, got)
}

func TestGetSession_ProviderError(t *testing.T) {
	s := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": {"type": "invalid_request_error", "message": "No such checkout.session"}}`))
	})

	_, err := s.GetSession(context.Background(), "cs_missing")
	assert.Error(t, err)
}
