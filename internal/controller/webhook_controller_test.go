package controller

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/copperkettle/catering/internal/domain/order"
	"github.com/copperkettle/catering/internal/domain/webhook"
	"github.com/copperkettle/catering/internal/infrastructure/observability"
	"github.com/copperkettle/catering/internal/service"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const webhookSecret = "test-secret"

type stubGuard struct{ err error }

func (g *stubGuard) Execute(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if g.err != nil {
		return g.err
	}
	return fn(ctx)
}

type stubTx struct{}

func (stubTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type stubEventRepo struct {
	claimed map[string]bool
}

func (r *stubEventRepo) Claim(ctx context.Context, ev *webhook.Event) (bool, error) {
	if r.claimed == nil {
		r.claimed = make(map[string]bool)
	}
	if r.claimed[ev.EventID] {
		return false, nil
	}
	r.claimed[ev.EventID] = true
	return true, nil
}

type stubOrderRepo struct {
	orders   map[string]*order.Order
	payments map[string]*order.Payment
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{
		orders:   make(map[string]*order.Order),
		payments: make(map[string]*order.Payment),
	}
}

func (r *stubOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	for _, o := range r.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, nil
}

func (r *stubOrderRepo) GetBySquareOrderID(ctx context.Context, squareOrderID string) (*order.Order, error) {
	return r.orders[squareOrderID], nil
}

func (r *stubOrderRepo) GetPaymentBySquareID(ctx context.Context, squarePaymentID string) (*order.Payment, error) {
	return r.payments[squarePaymentID], nil
}

func (r *stubOrderRepo) GetPaymentsByOrderID(ctx context.Context, orderID uuid.UUID) ([]*order.Payment, error) {
	var out []*order.Payment
	for _, p := range r.payments {
		if p.OrderID == orderID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubOrderRepo) CreatePayment(ctx context.Context, p *order.Payment) error {
	r.payments[p.SquarePaymentID] = p
	return nil
}

func (r *stubOrderRepo) UpdatePaymentStatus(ctx context.Context, p *order.Payment) error {
	r.payments[p.SquarePaymentID] = p
	return nil
}

func (r *stubOrderRepo) UpdateOrderStatus(ctx context.Context, o *order.Order) error {
	r.orders[o.SquareOrderID] = o
	return nil
}

func newTestWebhookService(orders order.Repository, guard service.ConnectionGuard) *service.WebhookService {
	return service.NewWebhookService(
		service.NewSignatureVerifier(webhookSecret),
		&stubEventRepo{},
		orders,
		stubTx{},
		guard,
		nil,
		observability.NewMetrics("test", prometheus.NewRegistry()),
		zerolog.Nop(),
	)
}

func webhookBody(eventID, paymentID, orderID, status string) []byte {
	return []byte(fmt.Sprintf(
		`{"merchant_id":"M1","type":"payment.updated","event_id":%q,"data":{"type":"payment","id":%q,"object":{"payment":{"id":%q,"order_id":%q,"status":%q}}}}`,
		eventID, paymentID, paymentID, orderID, status))
}

func postWebhook(h *WebhookController, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/webhooks/square", bytes.NewReader(body))
	req.Header.Set(signatureHeader, signature)
	w := httptest.NewRecorder()
	h.Receive(w, req)
	return w
}

func TestWebhookReceiveProcessed(t *testing.T) {
	orders := newStubOrderRepo()
	orders.orders["sqo-1"] = &order.Order{
		ID:            uuid.New(),
		SquareOrderID: "sqo-1",
		Status:        order.OrderOpen,
		TotalCents:    1000,
		Currency:      "USD",
	}
	h := NewWebhookController(newTestWebhookService(orders, &stubGuard{}))

	body := webhookBody("evt-1", "pay-1", "sqo-1", "COMPLETED")
	w := postWebhook(h, body, service.Sign(webhookSecret, body))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"processed"`)
	assert.Equal(t, order.OrderPaid, orders.orders["sqo-1"].Status)
}

func TestWebhookReceiveBadSignatureIs401(t *testing.T) {
	h := NewWebhookController(newTestWebhookService(newStubOrderRepo(), &stubGuard{}))

	body := webhookBody("evt-1", "pay-1", "sqo-1", "COMPLETED")
	w := postWebhook(h, body, "bogus")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_signature")
}

func TestWebhookReceiveDuplicateIsAcknowledged(t *testing.T) {
	orders := newStubOrderRepo()
	orders.orders["sqo-1"] = &order.Order{ID: uuid.New(), SquareOrderID: "sqo-1", Status: order.OrderOpen}
	h := NewWebhookController(newTestWebhookService(orders, &stubGuard{}))

	body := webhookBody("evt-1", "pay-1", "sqo-1", "COMPLETED")
	sig := service.Sign(webhookSecret, body)

	first := postWebhook(h, body, sig)
	require.Equal(t, http.StatusOK, first.Code)

	second := postWebhook(h, body, sig)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Contains(t, second.Body.String(), `"status":"duplicate"`)
}

func TestWebhookReceiveInfraFailureIs5xx(t *testing.T) {
	h := NewWebhookController(newTestWebhookService(newStubOrderRepo(), &stubGuard{err: errors.New("conn closed")}))

	body := webhookBody("evt-1", "pay-1", "sqo-1", "COMPLETED")
	w := postWebhook(h, body, service.Sign(webhookSecret, body))

	assert.GreaterOrEqual(t, w.Code, 500)
}

func TestWebhookReceiveOversizedBodyRejected(t *testing.T) {
	h := NewWebhookController(newTestWebhookService(newStubOrderRepo(), &stubGuard{}))

	body := bytes.Repeat([]byte("a"), maxWebhookBodySize+1)
	w := postWebhook(h, body, service.Sign(webhookSecret, body))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
