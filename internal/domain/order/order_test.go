package order_test

import (
	"testing"

	"github.com/copperkettle/catering/internal/domain/errors"
	"github.com/copperkettle/catering/internal/domain/order"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapProviderStatus_Paid(t *testing.T) {
	assert.Equal(t, order.StatusPaid, order.MapProviderStatus("APPROVED"))
	assert.Equal(t, order.StatusPaid, order.MapProviderStatus("COMPLETED"))
	assert.Equal(t, order.StatusPaid, order.MapProviderStatus("CAPTURED"))
}

func TestMapProviderStatus_Failed(t *testing.T) {
	assert.Equal(t, order.StatusFailed, order.MapProviderStatus("FAILED"))
	assert.Equal(t, order.StatusFailed, order.MapProviderStatus("CANCELED"))
}

func TestMapProviderStatus_Refunded(t *testing.T) {
	assert.Equal(t, order.StatusRefunded, order.MapProviderStatus("REFUNDED"))
}

func TestMapProviderStatus_CaseInsensitive(t *testing.T) {
	assert.Equal(t, order.StatusPaid, order.MapProviderStatus("completed"))
	assert.Equal(t, order.StatusPaid, order.MapProviderStatus("Completed"))
	assert.Equal(t, order.StatusRefunded, order.MapProviderStatus("refunded"))
	assert.Equal(t, order.StatusFailed, order.MapProviderStatus("  canceled  "))
}

func TestMapProviderStatus_UnknownOrMissing(t *testing.T) {
	assert.Equal(t, order.StatusPending, order.MapProviderStatus(""))
	assert.Equal(t, order.StatusPending, order.MapProviderStatus("IN_PROGRESS"))
	assert.Equal(t, order.StatusPending, order.MapProviderStatus("garbage"))
}

func TestCanTransitionTo(t *testing.T) {
	assert.True(t, order.StatusPending.CanTransitionTo(order.StatusPaid))
	assert.True(t, order.StatusPending.CanTransitionTo(order.StatusFailed))
	assert.True(t, order.StatusPaid.CanTransitionTo(order.StatusRefunded))

	assert.False(t, order.StatusPaid.CanTransitionTo(order.StatusPending))
	assert.False(t, order.StatusPaid.CanTransitionTo(order.StatusFailed))
	assert.False(t, order.StatusFailed.CanTransitionTo(order.StatusPaid))
	assert.False(t, order.StatusFailed.CanTransitionTo(order.StatusRefunded))
	assert.False(t, order.StatusRefunded.CanTransitionTo(order.StatusPaid))
	assert.False(t, order.StatusRefunded.CanTransitionTo(order.StatusPending))
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, order.StatusPending.IsTerminal())
	assert.False(t, order.StatusPaid.IsTerminal())
	assert.True(t, order.StatusFailed.IsTerminal())
	assert.True(t, order.StatusRefunded.IsTerminal())
}

// Terminal states never accept a transition generated from any provider
// status string, except the explicit PAID -> REFUNDED path.
func TestNoIllegalTransitionFromRandomSequences(t *testing.T) {
	providerStatuses := []string{
		"APPROVED", "COMPLETED", "CAPTURED", "FAILED", "CANCELED", "REFUNDED", "PENDING", "bogus", "",
	}

	for _, first := range providerStatuses {
		for _, second := range providerStatuses {
			p, err := order.NewPayment(uuid.New(), "pay_seq", order.StatusPending, 1000, "USD")
			require.NoError(t, err)

			_ = p.Transition(order.MapProviderStatus(first))
			before := p.Status
			err = p.Transition(order.MapProviderStatus(second))

			if err != nil {
				assert.Equal(t, before, p.Status, "failed transition must not mutate status")
				continue
			}
			target := order.MapProviderStatus(second)
			if target != before {
				assert.True(t, before.CanTransitionTo(target),
					"applied transition %s -> %s must be legal", before, target)
			}
		}
	}
}

func TestTransition_SameStatusIsNoop(t *testing.T) {
	p, err := order.NewPayment(uuid.New(), "pay_1", order.StatusPaid, 2500, "USD")
	require.NoError(t, err)

	updatedAt := p.UpdatedAt
	require.NoError(t, p.Transition(order.StatusPaid))
	assert.Equal(t, order.StatusPaid, p.Status)
	assert.Equal(t, updatedAt, p.UpdatedAt)
}

func TestTransition_IllegalReturnsError(t *testing.T) {
	p, err := order.NewPayment(uuid.New(), "pay_2", order.StatusFailed, 2500, "USD")
	require.NoError(t, err)

	err = p.Transition(order.StatusPaid)
	assert.ErrorIs(t, err, errors.ErrInvalidStateTransition)
	assert.Equal(t, order.StatusFailed, p.Status)
}

func TestNewPayment_EmptyProviderID(t *testing.T) {
	_, err := order.NewPayment(uuid.New(), "", order.StatusPending, 1000, "USD")
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestOrderStatusFor(t *testing.T) {
	assert.Equal(t, order.OrderPaid, order.OrderStatusFor(order.StatusPaid))
	assert.Equal(t, order.OrderPaymentFailed, order.OrderStatusFor(order.StatusFailed))
	assert.Equal(t, order.OrderRefunded, order.OrderStatusFor(order.StatusRefunded))
	assert.Equal(t, order.OrderOpen, order.OrderStatusFor(order.StatusPending))
}
