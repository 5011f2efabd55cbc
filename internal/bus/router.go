package bus

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"titledoctor/internal/logging"
)

// Topic names an event stream on the router.
type Topic string

// Event is any payload carried on a topic.
type Event interface {
	EventTopic() Topic
}

// HandlerFunc consumes one delivered event.
type HandlerFunc func(ctx context.Context, event Event)

// ErrClosed is returned when publishing after Close.
var ErrClosed = errors.New("router closed")

// Router is an in-process publish/subscribe fan-out. Every subscriber of a
// topic receives each published event on its own goroutine, so one slow
// consumer never blocks the others. Delivery order across topics is not
// defined; subscribers must tolerate duplicate deliveries.
type Router struct {
	logger *slog.Logger

	mu          sync.RWMutex
	subscribers map[Topic][]HandlerFunc
	closed      bool

	inflight sync.WaitGroup
}

// NewRouter constructs a router that logs deliveries through the given logger.
func NewRouter(logger *slog.Logger) *Router {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Router{
		logger:      logging.NewComponentLogger(logger, "bus"),
		subscribers: make(map[Topic][]HandlerFunc),
	}
}

// Subscribe registers a handler for every event published to the topic.
// Registration after Close is ignored.
func (r *Router) Subscribe(topic Topic, handler HandlerFunc) {
	if handler == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.subscribers[topic] = append(r.subscribers[topic], handler)
}

// Publish delivers the event to every subscriber of its topic asynchronously.
// Events with no subscribers are dropped with a warning.
func (r *Router) Publish(ctx context.Context, event Event) error {
	if event == nil {
		return errors.New("publish nil event")
	}
	topic := event.EventTopic()

	r.mu.RLock()
	closed := r.closed
	handlers := r.subscribers[topic]
	r.mu.RUnlock()

	if closed {
		return ErrClosed
	}
	if len(handlers) == 0 {
		r.logger.Warn("event dropped, no subscribers",
			logging.String(logging.FieldTopic, string(topic)))
		return nil
	}

	r.logger.Debug("event published",
		logging.String(logging.FieldTopic, string(topic)),
		logging.Int("subscribers", len(handlers)))

	for _, handler := range handlers {
		r.inflight.Add(1)
		go func(h HandlerFunc) {
			defer r.inflight.Done()
			h(ctx, event)
		}(handler)
	}
	return nil
}

// Drain waits for all in-flight deliveries to finish or the timeout to
// elapse. It reports whether the router drained fully.
func (r *Router) Drain(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		r.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Close stops the router from accepting new publications and waits for
// in-flight deliveries up to the timeout.
func (r *Router) Close(timeout time.Duration) bool {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return r.Drain(timeout)
}
