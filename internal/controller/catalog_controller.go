package controller

import (
	"net/http"

	domainErrors "github.com/copperkettle/catering/internal/domain/errors"
	"github.com/copperkettle/catering/internal/middleware"
	"github.com/copperkettle/catering/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type CatalogController struct {
	sync *service.CatalogSyncService
}

func NewCatalogController(sync *service.CatalogSyncService) *CatalogController {
	return &CatalogController{sync: sync}
}

// Restore reactivates an archived provider-managed product. Staff use it
// when an item reappears in the provider catalog between scheduled syncs.
func (h *CatalogController) Restore(w http.ResponseWriter, r *http.Request) {
	squareID := chi.URLParam(r, "squareID")
	if squareID == "" {
		writeError(w, domainErrors.NewValidationError("squareID", "is required"))
		return
	}

	restored, err := h.sync.Restore(r.Context(), squareID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !restored {
		writeError(w, domainErrors.ErrProductNotFound)
		return
	}

	staffID, _ := middleware.GetStaffID(r.Context())
	log.Info().Str("square_id", squareID).Str("staff_id", staffID).Msg("product restored by staff")

	writeJSON(w, http.StatusOK, RestoreResponse{SquareID: squareID, Restored: true})
}
