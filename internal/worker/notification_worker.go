package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/workorder-service/internal/events"
	"github.com/spec-kit/workorder-service/internal/service"
)

// NotificationWorker is a Dispatcher that queues events and delivers them to
// the wrapped dispatcher on a background goroutine, keeping notification
// handlers off the request path.
type NotificationWorker struct {
	next   events.Dispatcher
	queue  chan events.Event
	logger *zap.Logger
	wg     sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// ErrWorkerStopped is returned by Publish once Stop has been called.
var ErrWorkerStopped = errors.New("notification worker stopped")

var _ events.Dispatcher = (*NotificationWorker)(nil)

// NewNotificationWorker wraps next with a queue of the given size.
func NewNotificationWorker(next events.Dispatcher, buffer int, logger *zap.Logger) *NotificationWorker {
	if buffer <= 0 {
		buffer = 64
	}
	return &NotificationWorker{
		next:   next,
		queue:  make(chan events.Event, buffer),
		logger: logger,
	}
}

// StartNotificationWorker registers notification handlers and starts
// delivery. Call Stop to drain the queue.
func StartNotificationWorker(ctx context.Context, notificationService *service.NotificationService, w *NotificationWorker) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	w.wg.Add(1)
	go w.run(ctx)
}

// Publish enqueues event. A full queue drops the event with a warning rather
// than blocking the caller.
func (w *NotificationWorker) Publish(_ context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return ErrWorkerStopped
	}
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("notification queue full; dropping event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
	}
	return nil
}

func (w *NotificationWorker) Subscribe(eventType events.EventType, handler events.EventHandler) {
	w.next.Subscribe(eventType, handler)
}

// Stop closes the queue and waits for queued events to be delivered.
func (w *NotificationWorker) Stop() {
	w.mu.Lock()
	if !w.stopped {
		w.stopped = true
		close(w.queue)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *NotificationWorker) run(ctx context.Context) {
	defer w.wg.Done()
	for event := range w.queue {
		// delivery outlives the request that produced the event
		if err := w.next.Publish(context.WithoutCancel(ctx), event); err != nil {
			w.logger.Warn("notification handler failed",
				zap.String("event_id", event.ID),
				zap.String("event_type", string(event.Type)),
				zap.Error(err))
		}
	}
}
