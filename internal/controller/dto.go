package controller

import (
	"time"

	"github.com/copperkettle/catering/internal/domain/order"
)

// OrderResponse represents an order in API responses, with its payments
// embedded so the storefront can render state in one round trip.
type OrderResponse struct {
	ID            string            `json:"id"`
	SquareOrderID string            `json:"square_order_id"`
	Status        string            `json:"status"`
	Total         float64           `json:"total"`
	Currency      string            `json:"currency"`
	Payments      []PaymentResponse `json:"payments"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// PaymentResponse represents a payment attached to an order.
type PaymentResponse struct {
	ID              string    `json:"id"`
	SquarePaymentID string    `json:"square_payment_id"`
	Status          string    `json:"status"`
	Amount          float64   `json:"amount"`
	Currency        string    `json:"currency"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// WebhookAckResponse is the body returned to the payment provider.
type WebhookAckResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// RestoreResponse is the result of an admin product restore.
type RestoreResponse struct {
	SquareID string `json:"square_id"`
	Restored bool   `json:"restored"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// FromOrder converts a domain order and its payments to an API response.
func FromOrder(o *order.Order, payments []*order.Payment) *OrderResponse {
	resp := &OrderResponse{
		ID:            o.ID.String(),
		SquareOrderID: o.SquareOrderID,
		Status:        string(o.Status),
		Total:         centsToFloat(o.TotalCents),
		Currency:      o.Currency,
		Payments:      make([]PaymentResponse, 0, len(payments)),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	for _, p := range payments {
		resp.Payments = append(resp.Payments, PaymentResponse{
			ID:              p.ID.String(),
			SquarePaymentID: p.SquarePaymentID,
			Status:          string(p.Status),
			Amount:          centsToFloat(p.AmountCents),
			Currency:        p.Currency,
			CreatedAt:       p.CreatedAt,
			UpdatedAt:       p.UpdatedAt,
		})
	}
	return resp
}

// centsToFloat converts cents to a float dollar amount.
func centsToFloat(cents int64) float64 {
	return float64(cents) / 100.0
}
