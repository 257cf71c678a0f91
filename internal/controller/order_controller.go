package controller

import (
	"net/http"

	domainErrors "github.com/copperkettle/catering/internal/domain/errors"
	"github.com/copperkettle/catering/internal/domain/order"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type OrderController struct {
	orders order.Repository
}

func NewOrderController(orders order.Repository) *OrderController {
	return &OrderController{orders: orders}
}

// Get returns an order with its payments.
func (h *OrderController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, domainErrors.NewValidationError("id", "must be a valid UUID"))
		return
	}

	ord, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if ord == nil {
		writeError(w, domainErrors.ErrOrderNotFound)
		return
	}

	payments, err := h.orders.GetPaymentsByOrderID(r.Context(), ord.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromOrder(ord, payments))
}
