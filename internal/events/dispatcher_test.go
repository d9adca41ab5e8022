package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/workorder-service/internal/domain"
)

func TestPublishRunsAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	boom := errors.New("boom")

	d.Subscribe(EventWorkOrderAccepted, func(context.Context, Event) error {
		calls = append(calls, "first")
		return boom
	})
	d.Subscribe(EventWorkOrderAccepted, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventWorkOrderClosed, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventWorkOrderAccepted})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestTypeForAction(t *testing.T) {
	assert.Equal(t, EventWorkOrderCompleted, TypeForAction(domain.ActionCompleted))
	assert.Equal(t, EventWorkOrderReopened, TypeForAction(domain.ActionReopened))
	assert.Equal(t, EventWorkOrderUpdated, TypeForAction(domain.ActionStatusChanged))
}
