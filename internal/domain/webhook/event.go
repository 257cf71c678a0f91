package webhook

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/copperkettle/catering/internal/domain/errors"
)

// Event is the append-only record of a received webhook delivery. It is
// written once on arrival and never mutated; the unique constraint on
// EventID is the idempotency boundary for processing.
type Event struct {
	EventID    string
	Type       string
	ReceivedAt time.Time
	Payload    []byte
}

// NewEvent builds the audit record for a raw delivery.
func NewEvent(eventID, eventType string, payload []byte) (*Event, error) {
	if eventID == "" {
		return nil, errors.ErrMalformedPayload
	}
	return &Event{
		EventID:    eventID,
		Type:       eventType,
		ReceivedAt: time.Now(),
		Payload:    payload,
	}, nil
}

// Envelope is the outer shape of a provider webhook body. Only the fields
// the processor needs are decoded; the raw payload is retained verbatim in
// the event log.
type Envelope struct {
	MerchantID string `json:"merchant_id"`
	Type       string `json:"type" validate:"required"`
	EventID    string `json:"event_id" validate:"required"`
	CreatedAt  string `json:"created_at"`
	Data       Data   `json:"data"`
}

// Data is the data block of a payment event.
type Data struct {
	Type   string  `json:"type"`
	ID     string  `json:"id" validate:"required"`
	Object *Object `json:"object"`
}

// Object wraps the embedded payment resource.
type Object struct {
	Payment *Payment `json:"payment"`
}

// Payment carries the provider payment fields the processor reads.
type Payment struct {
	ID          string `json:"id"`
	OrderID     string `json:"order_id"`
	Status      string `json:"status"`
	AmountMoney *Money `json:"amount_money"`
}

// Money is the provider money shape (smallest currency unit).
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// ParseEnvelope decodes the outer envelope from raw bytes. A body that is
// not JSON or lacks an event id is malformed.
func ParseEnvelope(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, errors.ErrMalformedPayload
	}
	if env.EventID == "" {
		return nil, errors.ErrMalformedPayload
	}
	return &env, nil
}

// PaymentFields extracts the identifiers a payment mutation needs.
// Missing order_id or payment object makes the envelope malformed; a
// missing status is tolerated (it maps to PENDING downstream).
func (e *Envelope) PaymentFields() (squarePaymentID, squareOrderID, status string, amount *Money, err error) {
	if e.Data.ID == "" || e.Data.Object == nil || e.Data.Object.Payment == nil {
		return "", "", "", nil, errors.ErrMalformedPayload
	}
	p := e.Data.Object.Payment
	if p.OrderID == "" {
		return "", "", "", nil, errors.ErrMalformedPayload
	}
	return e.Data.ID, p.OrderID, p.Status, p.AmountMoney, nil
}

// IsPaymentEvent reports whether the envelope carries a payment resource
// (e.g. "payment.created", "payment.updated").
func (e *Envelope) IsPaymentEvent() bool {
	return strings.HasPrefix(e.Type, "payment.")
}
