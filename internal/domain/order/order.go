package order

import (
	"strings"
	"time"

	"github.com/copperkettle/catering/internal/domain/errors"
	"github.com/google/uuid"
)

// PaymentStatus represents the payment status in the state machine
type PaymentStatus string

const (
	StatusPending  PaymentStatus = "PENDING"
	StatusPaid     PaymentStatus = "PAID"
	StatusFailed   PaymentStatus = "FAILED"
	StatusRefunded PaymentStatus = "REFUNDED"
)

// OrderStatus mirrors the payment lifecycle on the order row so the
// storefront can render order state without joining payments.
type OrderStatus string

const (
	OrderOpen          OrderStatus = "open"
	OrderPaid          OrderStatus = "paid"
	OrderPaymentFailed OrderStatus = "payment_failed"
	OrderRefunded      OrderStatus = "refunded"
)

// MapProviderStatus translates a provider payment status string to the
// internal status. The mapping is total and case-insensitive; unknown or
// missing values map to PENDING.
func MapProviderStatus(providerStatus string) PaymentStatus {
	switch strings.ToUpper(strings.TrimSpace(providerStatus)) {
	case "APPROVED", "COMPLETED", "CAPTURED":
		return StatusPaid
	case "FAILED", "CANCELED":
		return StatusFailed
	case "REFUNDED":
		return StatusRefunded
	default:
		return StatusPending
	}
}

// statusTransitions is the allowed transition table. FAILED and REFUNDED
// are terminal.
var statusTransitions = map[PaymentStatus][]PaymentStatus{
	StatusPending:  {StatusPaid, StatusFailed},
	StatusPaid:     {StatusRefunded},
	StatusFailed:   {},
	StatusRefunded: {},
}

// IsTerminal reports whether no further transition is allowed from s.
func (s PaymentStatus) IsTerminal() bool {
	return len(statusTransitions[s]) == 0
}

// CanTransitionTo checks if the status can transition to target.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// OrderStatusFor returns the order status that mirrors a payment status.
func OrderStatusFor(s PaymentStatus) OrderStatus {
	switch s {
	case StatusPaid:
		return OrderPaid
	case StatusFailed:
		return OrderPaymentFailed
	case StatusRefunded:
		return OrderRefunded
	default:
		return OrderOpen
	}
}

// Order represents a storefront order mirrored from the provider.
type Order struct {
	ID            uuid.UUID
	SquareOrderID string
	Status        OrderStatus
	TotalCents    int64
	Currency      string
	CustomerEmail *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Payment represents a provider payment attached to an order. A given
// provider payment id maps to at most one row (unique constraint on
// square_payment_id).
type Payment struct {
	ID              uuid.UUID
	OrderID         uuid.UUID
	SquarePaymentID string
	Status          PaymentStatus
	AmountCents     int64
	Currency        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewPayment creates a payment row for an order, starting at the given status.
func NewPayment(orderID uuid.UUID, squarePaymentID string, status PaymentStatus, amountCents int64, currency string) (*Payment, error) {
	if squarePaymentID == "" {
		return nil, errors.ErrInvalidInput
	}
	now := time.Now()
	return &Payment{
		ID:              uuid.New(),
		OrderID:         orderID,
		SquarePaymentID: squarePaymentID,
		Status:          status,
		AmountCents:     amountCents,
		Currency:        currency,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Transition moves the payment to target, enforcing the transition table.
// Moving to the current status is a no-op.
func (p *Payment) Transition(target PaymentStatus) error {
	if p.Status == target {
		return nil
	}
	if !p.Status.CanTransitionTo(target) {
		return errors.ErrInvalidStateTransition
	}
	p.Status = target
	p.UpdatedAt = time.Now()
	return nil
}
