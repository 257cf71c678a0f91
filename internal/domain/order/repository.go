package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence interface for orders and payments.
type Repository interface {
	// GetByID retrieves an order by its local id.
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// GetBySquareOrderID retrieves an order by the provider order id.
	// Returns nil without error when no such order exists.
	GetBySquareOrderID(ctx context.Context, squareOrderID string) (*Order, error)

	// GetPaymentBySquareID retrieves a payment by the provider payment id.
	// Returns nil without error when no such payment exists.
	GetPaymentBySquareID(ctx context.Context, squarePaymentID string) (*Payment, error)

	// GetPaymentsByOrderID lists payments attached to an order.
	GetPaymentsByOrderID(ctx context.Context, orderID uuid.UUID) ([]*Payment, error)

	// CreatePayment inserts a payment row.
	CreatePayment(ctx context.Context, p *Payment) error

	// UpdatePaymentStatus persists a status change for a payment.
	UpdatePaymentStatus(ctx context.Context, p *Payment) error

	// UpdateOrderStatus persists a status change for an order.
	UpdateOrderStatus(ctx context.Context, o *Order) error
}
