package controller

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/copperkettle/catering/internal/domain/order"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func orderRouter(orders order.Repository) *chi.Mux {
	r := chi.NewRouter()
	h := NewOrderController(orders)
	r.Get("/api/v1/orders/{id}", h.Get)
	return r
}

func TestOrderGetReturnsOrderWithPayments(t *testing.T) {
	repo := newStubOrderRepo()
	ord := &order.Order{
		ID:            uuid.New(),
		SquareOrderID: "sqo-1",
		Status:        order.OrderPaid,
		TotalCents:    4250,
		Currency:      "USD",
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	repo.orders["sqo-1"] = ord
	pay, _ := order.NewPayment(ord.ID, "pay-1", order.StatusPaid, 4250, "USD")
	repo.payments["pay-1"] = pay

	req := httptest.NewRequest("GET", "/api/v1/orders/"+ord.ID.String(), nil)
	w := httptest.NewRecorder()
	orderRouter(repo).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"square_order_id":"sqo-1"`)
	assert.Contains(t, w.Body.String(), `"square_payment_id":"pay-1"`)
	assert.Contains(t, w.Body.String(), `"total":42.5`)
}

func TestOrderGetUnknownIDIs404(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/orders/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	orderRouter(newStubOrderRepo()).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not_found")
}

func TestOrderGetMalformedIDIs400(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/orders/not-a-uuid", nil)
	w := httptest.NewRecorder()
	orderRouter(newStubOrderRepo()).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_error")
}
