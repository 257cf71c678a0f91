package postgres

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/copperkettle/catering/internal/domain/errors"
	"github.com/copperkettle/catering/internal/domain/order"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OrderRepository implements order.Repository using PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const orderColumns = `id, square_order_id, status, total_cents, currency, customer_email, created_at, updated_at`

func (r *OrderRepository) scanOrder(row scanner) (*order.Order, error) {
	o := &order.Order{}
	var status string
	err := row.Scan(&o.ID, &o.SquareOrderID, &status, &o.TotalCents, &o.Currency, &o.CustomerEmail, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	o.Status = order.OrderStatus(status)
	return o, nil
}

// GetByID retrieves an order by its local id.
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	o, err := r.scanOrder(r.db(ctx).QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domainErrors.ErrOrderNotFound
	}
	return o, nil
}

// GetBySquareOrderID retrieves an order by the provider order id. Returns
// nil without error when no such order exists.
func (r *OrderRepository) GetBySquareOrderID(ctx context.Context, squareOrderID string) (*order.Order, error) {
	return r.scanOrder(r.db(ctx).QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE square_order_id = $1`, squareOrderID))
}

const paymentColumns = `id, order_id, square_payment_id, status, amount_cents, currency, created_at, updated_at`

func (r *OrderRepository) scanPayment(row scanner) (*order.Payment, error) {
	p := &order.Payment{}
	var status string
	err := row.Scan(&p.ID, &p.OrderID, &p.SquarePaymentID, &status, &p.AmountCents, &p.Currency, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}
	p.Status = order.PaymentStatus(status)
	return p, nil
}

// GetPaymentBySquareID retrieves a payment by the provider payment id.
// Returns nil without error when no such payment exists.
func (r *OrderRepository) GetPaymentBySquareID(ctx context.Context, squarePaymentID string) (*order.Payment, error) {
	return r.scanPayment(r.db(ctx).QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE square_payment_id = $1`, squarePaymentID))
}

// GetPaymentsByOrderID lists payments attached to an order.
func (r *OrderRepository) GetPaymentsByOrderID(ctx context.Context, orderID uuid.UUID) ([]*order.Payment, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE order_id = $1 ORDER BY created_at`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []*order.Payment
	for rows.Next() {
		p, err := r.scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// CreatePayment inserts a payment row. The unique index on
// square_payment_id keeps the at-most-one-row-per-provider-payment
// invariant.
func (r *OrderRepository) CreatePayment(ctx context.Context, p *order.Payment) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO payments
		 (id, order_id, square_payment_id, status, amount_cents, currency, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.OrderID, p.SquarePaymentID, string(p.Status), p.AmountCents, p.Currency, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domainErrors.ErrDuplicatePayment
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// UpdatePaymentStatus persists a status change for a payment.
func (r *OrderRepository) UpdatePaymentStatus(ctx context.Context, p *order.Payment) error {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE payments SET status = $1, updated_at = $2 WHERE id = $3`,
		string(p.Status), p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrPaymentNotFound
	}
	return nil
}

// UpdateOrderStatus persists a status change for an order.
func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, o *order.Order) error {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`,
		string(o.Status), o.UpdatedAt, o.ID,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrOrderNotFound
	}
	return nil
}
