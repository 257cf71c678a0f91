package controller

import (
	"io"
	"net/http"

	"github.com/copperkettle/catering/internal/service"
	"github.com/rs/zerolog/log"
)

// signatureHeader is the provider's HMAC signature header for webhook
// deliveries.
const signatureHeader = "X-Square-Hmacsha256-Signature"

// maxWebhookBodySize caps webhook bodies at 1 MiB; provider payloads are
// far smaller.
const maxWebhookBodySize = 1 << 20

type WebhookController struct {
	service *service.WebhookService
}

func NewWebhookController(svc *service.WebhookService) *WebhookController {
	return &WebhookController{service: svc}
}

// Receive handles a webhook delivery. Business outcomes (duplicates,
// unknown orders, malformed payloads) are acknowledged with 200 so the
// provider does not redeliver; only a bad signature or a persistence
// failure tells it to retry.
func (h *WebhookController) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodySize+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "failed to read body", Code: "bad_request"})
		return
	}
	if len(body) > maxWebhookBodySize {
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "body too large", Code: "body_too_large"})
		return
	}

	result, err := h.service.Process(r.Context(), body, r.Header.Get(signatureHeader))
	if err != nil {
		log.Error().Err(err).Msg("webhook processing failed, requesting redelivery")
		writeError(w, err)
		return
	}

	if result.Outcome == service.OutcomeRejected {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "signature verification failed", Code: "invalid_signature"})
		return
	}

	writeJSON(w, http.StatusOK, WebhookAckResponse{
		Status: string(result.Outcome),
		Detail: result.Detail,
	})
}
