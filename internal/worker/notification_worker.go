package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/attendance-service/internal/events"
)

// Registrar subscribes its handlers on a dispatcher.
type Registrar interface {
	RegisterHandlers(dispatcher events.Dispatcher)
}

// NotificationWorker is an asynchronous events.Dispatcher. Publish enqueues
// into a bounded buffer and a single goroutine delivers to the wrapped
// dispatcher, so request latency never depends on subscribers.
type NotificationWorker struct {
	next   events.Dispatcher
	queue  chan events.Event
	logger *zap.Logger

	mu      sync.RWMutex
	closed  bool
	started bool
	done    chan struct{}
}

// NewNotificationWorker wraps next. queueSize <= 0 falls back to 256.
func NewNotificationWorker(next events.Dispatcher, queueSize int, logger *zap.Logger) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	return &NotificationWorker{
		next:   next,
		queue:  make(chan events.Event, queueSize),
		logger: logger,
		done:   make(chan struct{}),
	}
}

// StartNotificationWorker registers the handlers and starts delivery.
func StartNotificationWorker(ctx context.Context, w *NotificationWorker, registrars ...Registrar) {
	if w == nil {
		return
	}
	for _, r := range registrars {
		if r != nil {
			r.RegisterHandlers(w)
		}
	}
	w.Start(ctx)
}

// Subscribe registers handler on the wrapped dispatcher.
func (w *NotificationWorker) Subscribe(eventType events.EventType, handler events.EventHandler) {
	w.next.Subscribe(eventType, handler)
}

// Publish enqueues event. A full queue or a stopped worker drops the event
// with a warning; the caller's write has already committed.
func (w *NotificationWorker) Publish(_ context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		w.logger.Warn("notification worker stopped; dropping event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
		return nil
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

// Start launches the delivery goroutine. Calling it twice is a no-op.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.started || w.closed {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()

	go w.run(context.WithoutCancel(ctx))
}

func (w *NotificationWorker) run(ctx context.Context) {
	defer close(w.done)
	for event := range w.queue {
		if err := w.next.Publish(ctx, event); err != nil {
			w.logger.Error("deliver event",
				zap.String("event_id", event.ID),
				zap.String("event_type", string(event.Type)),
				zap.Error(err))
		}
	}
}

// Stop closes the queue and waits until queued events are delivered or ctx
// ends.
func (w *NotificationWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	started := w.started
	close(w.queue)
	w.mu.Unlock()

	if !started {
		return nil
	}
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
