package worker

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/spec-kit/workorder-service/internal/config"
	"github.com/spec-kit/workorder-service/internal/events"
	"github.com/spec-kit/workorder-service/internal/service"
)

func TestWorkerDeliversQueuedEvents(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	w := NewNotificationWorker(dispatcher, 8, zap.NewNop())

	var delivered atomic.Int32
	w.Subscribe(events.EventWorkOrderAccepted, func(context.Context, events.Event) error {
		delivered.Add(1)
		return nil
	})

	notifications := service.NewNotificationService(dispatcher, zap.NewNop(), config.NotificationConfig{EmailFrom: "noreply@plant.local"})
	StartNotificationWorker(context.Background(), notifications, w)

	for i := 0; i < 3; i++ {
		assert.NoError(t, w.Publish(context.Background(), events.Event{Type: events.EventWorkOrderAccepted}))
	}
	w.Stop()

	assert.Equal(t, int32(3), delivered.Load())
}

func TestWorkerDropsWhenFull(t *testing.T) {
	w := NewNotificationWorker(events.NewInMemoryDispatcher(), 1, zap.NewNop())

	assert.NoError(t, w.Publish(context.Background(), events.Event{Type: events.EventWorkOrderClosed}))
	assert.NoError(t, w.Publish(context.Background(), events.Event{Type: events.EventWorkOrderClosed}))
	assert.Len(t, w.queue, 1)
}

func TestWorkerPublishAfterStop(t *testing.T) {
	w := NewNotificationWorker(events.NewInMemoryDispatcher(), 4, zap.NewNop())
	StartNotificationWorker(context.Background(), nil, w)
	w.Stop()
	w.Stop()

	assert.NotPanics(t, func() {
		err := w.Publish(context.Background(), events.Event{Type: events.EventWorkOrderCreated})
		assert.ErrorIs(t, err, ErrWorkerStopped)
	})
}
