package service

import (
	"context"
	"time"

	"github.com/copperkettle/catering/internal/domain/order"
	"github.com/copperkettle/catering/internal/domain/webhook"
	"github.com/copperkettle/catering/internal/infrastructure/observability"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// WebhookOutcome classifies how a delivery was handled. Everything except
// OutcomeRejected is acknowledged with 200: the provider must only retry
// on transient infrastructure failure, never on business outcomes.
type WebhookOutcome string

const (
	// OutcomeRejected means the signature did not verify; nothing was
	// claimed or mutated.
	OutcomeRejected WebhookOutcome = "rejected"
	// OutcomeProcessed means a payment/order mutation was committed.
	OutcomeProcessed WebhookOutcome = "processed"
	// OutcomeDuplicate means the event id was already claimed.
	OutcomeDuplicate WebhookOutcome = "duplicate"
	// OutcomeIgnored means the payload was malformed, referenced an
	// unknown order, or carried an unsupported event type.
	OutcomeIgnored WebhookOutcome = "ignored"
	// OutcomeNoChange means the payment was already at the target
	// status, or the transition was illegal from the current state.
	OutcomeNoChange WebhookOutcome = "no_change"
)

// WebhookResult is the per-delivery processing summary.
type WebhookResult struct {
	Outcome WebhookOutcome
	EventID string
	Detail  string
}

// WebhookService orchestrates webhook processing: signature verification,
// the dedup claim, payload extraction and the transactional payment/order
// mutation. All persistence steps run inside the connection guard.
type WebhookService struct {
	verifier *SignatureVerifier
	events   webhook.Repository
	orders   order.Repository
	tx       TxRunner
	guard    ConnectionGuard
	seen     SeenCache
	metrics  *observability.Metrics
	validate *validator.Validate
	log      zerolog.Logger
}

// NewWebhookService creates a webhook service.
func NewWebhookService(
	verifier *SignatureVerifier,
	events webhook.Repository,
	orders order.Repository,
	tx TxRunner,
	guard ConnectionGuard,
	seen SeenCache,
	metrics *observability.Metrics,
	log zerolog.Logger,
) *WebhookService {
	return &WebhookService{
		verifier: verifier,
		events:   events,
		orders:   orders,
		tx:       tx,
		guard:    guard,
		seen:     seen,
		metrics:  metrics,
		validate: validator.New(),
		log:      log,
	}
}

// Process handles one raw webhook delivery. A non-nil error means a
// transient infrastructure failure survived the retry policy; the caller
// should answer 5xx so the provider redelivers. Every other path is an
// acknowledged outcome.
func (s *WebhookService) Process(ctx context.Context, raw []byte, signature string) (*WebhookResult, error) {
	start := time.Now()

	if !s.verifier.Verify(raw, signature) {
		s.log.Warn().Int("body_bytes", len(raw)).Msg("webhook signature rejected")
		s.metrics.WebhookEventsTotal.WithLabelValues("unknown", string(OutcomeRejected)).Inc()
		return &WebhookResult{Outcome: OutcomeRejected, Detail: "signature verification failed"}, nil
	}

	env, err := webhook.ParseEnvelope(raw)
	if err != nil {
		s.log.Warn().Err(err).Msg("webhook payload unparseable, acknowledging without mutation")
		s.metrics.WebhookEventsTotal.WithLabelValues("unknown", string(OutcomeIgnored)).Inc()
		return &WebhookResult{Outcome: OutcomeIgnored, Detail: "unparseable payload"}, nil
	}

	result, err := s.process(ctx, env, raw)
	if err != nil {
		return nil, err
	}

	s.metrics.WebhookEventsTotal.WithLabelValues(env.Type, string(result.Outcome)).Inc()
	s.metrics.WebhookDuration.WithLabelValues(env.Type).Observe(time.Since(start).Seconds())
	s.log.Info().
		Str("event_id", env.EventID).
		Str("type", env.Type).
		Str("outcome", string(result.Outcome)).
		Str("detail", result.Detail).
		Msg("webhook processed")
	return result, nil
}

func (s *WebhookService) process(ctx context.Context, env *webhook.Envelope, raw []byte) (*WebhookResult, error) {
	result := &WebhookResult{EventID: env.EventID}

	if s.seen != nil && s.seen.Seen(ctx, env.EventID) {
		result.Outcome = OutcomeDuplicate
		result.Detail = "replay filtered by cache"
		return result, nil
	}

	ev, err := webhook.NewEvent(env.EventID, env.Type, raw)
	if err != nil {
		result.Outcome = OutcomeIgnored
		result.Detail = "missing event id"
		return result, nil
	}

	var fresh bool
	err = s.guard.Execute(ctx, "claim webhook event", func(ctx context.Context) error {
		var claimErr error
		fresh, claimErr = s.events.Claim(ctx, ev)
		return claimErr
	})
	if err != nil {
		return nil, err
	}
	if s.seen != nil {
		s.seen.Mark(ctx, env.EventID)
	}
	if !fresh {
		result.Outcome = OutcomeDuplicate
		result.Detail = "event id already claimed"
		return result, nil
	}

	if err := s.validate.Struct(env); err != nil {
		s.log.Warn().Err(err).Str("event_id", env.EventID).Msg("webhook envelope failed validation")
		result.Outcome = OutcomeIgnored
		result.Detail = "invalid envelope"
		return result, nil
	}
	if !env.IsPaymentEvent() {
		result.Outcome = OutcomeIgnored
		result.Detail = "unsupported event type"
		return result, nil
	}

	squarePaymentID, squareOrderID, providerStatus, amount, err := env.PaymentFields()
	if err != nil {
		s.log.Warn().Str("event_id", env.EventID).Msg("payment webhook missing required fields")
		result.Outcome = OutcomeIgnored
		result.Detail = "missing payment fields"
		return result, nil
	}

	target := order.MapProviderStatus(providerStatus)

	outcome := OutcomeNoChange
	detail := ""
	err = s.guard.Execute(ctx, "apply payment update", func(ctx context.Context) error {
		return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
			ord, err := s.orders.GetBySquareOrderID(ctx, squareOrderID)
			if err != nil {
				return err
			}
			if ord == nil {
				s.log.Warn().
					Str("event_id", env.EventID).
					Str("square_order_id", squareOrderID).
					Msg("webhook references unknown order")
				outcome = OutcomeIgnored
				detail = "unknown order"
				return nil
			}

			pay, err := s.orders.GetPaymentBySquareID(ctx, squarePaymentID)
			if err != nil {
				return err
			}
			if pay == nil {
				// The webhook outran checkout; record the payment at
				// the mapped status.
				amountCents, currency := ord.TotalCents, ord.Currency
				if amount != nil {
					amountCents, currency = amount.Amount, amount.Currency
				}
				pay, err = order.NewPayment(ord.ID, squarePaymentID, target, amountCents, currency)
				if err != nil {
					return err
				}
				if err := s.orders.CreatePayment(ctx, pay); err != nil {
					return err
				}
				s.metrics.PaymentTransitionsTotal.WithLabelValues("none", string(target)).Inc()
				outcome = OutcomeProcessed
				detail = "payment created"
			} else {
				from := pay.Status
				if from == target {
					outcome = OutcomeNoChange
					detail = "already at target status"
					return nil
				}
				if err := pay.Transition(target); err != nil {
					s.log.Warn().
						Str("event_id", env.EventID).
						Str("square_payment_id", squarePaymentID).
						Str("from", string(from)).
						Str("to", string(target)).
						Msg("illegal status transition skipped")
					outcome = OutcomeNoChange
					detail = "illegal transition skipped"
					return nil
				}
				if err := s.orders.UpdatePaymentStatus(ctx, pay); err != nil {
					return err
				}
				s.metrics.PaymentTransitionsTotal.WithLabelValues(string(from), string(target)).Inc()
				outcome = OutcomeProcessed
				detail = "status updated"
			}

			ord.Status = order.OrderStatusFor(target)
			ord.UpdatedAt = time.Now()
			return s.orders.UpdateOrderStatus(ctx, ord)
		})
	})
	if err != nil {
		return nil, err
	}

	result.Outcome = outcome
	result.Detail = detail
	return result, nil
}
