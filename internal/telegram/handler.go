package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/joshsymonds/relaybot/internal/chat"
	"github.com/joshsymonds/relaybot/internal/metrics"
)

// ErrSourceClosed is returned by Handler.Start when the update stream ends
// before the handler was asked to stop.
var ErrSourceClosed = errors.New("update stream closed")

// EventSource provides inbound events until ctx is done.
type EventSource interface {
	Subscribe(ctx context.Context) (<-chan chat.Event, error)
}

// EventEnqueuer accepts events for the workers.
type EventEnqueuer interface {
	Enqueue(ev chat.Event) error
}

// Handler is the receive loop: it pulls converted updates from the
// messenger and hands them to the dispatcher.
type Handler struct {
	source  EventSource
	queue   EventEnqueuer
	logger  *slog.Logger
	mu      sync.Mutex
	running bool
}

// HandlerOption configures the handler.
type HandlerOption func(*Handler)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// NewHandler creates a receive loop over source feeding queue.
func NewHandler(source EventSource, queue EventEnqueuer, opts ...HandlerOption) (*Handler, error) {
	if source == nil {
		return nil, fmt.Errorf("event source is required")
	}
	if queue == nil {
		return nil, fmt.Errorf("queue is required")
	}

	h := &Handler{
		source: source,
		queue:  queue,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Start receives events until ctx is done, returning nil. If the update
// stream ends first it returns ErrSourceClosed so the caller can shut down.
func (h *Handler) Start(ctx context.Context) error {
	if !h.claim() {
		return fmt.Errorf("handler already running")
	}
	defer h.release()

	events, err := h.source.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to updates: %w", err)
	}

	h.logger.InfoContext(ctx, "receiving updates")

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("stopped receiving updates")
			return nil

		case ev, ok := <-events:
			if !ok {
				// The messenger also closes the stream on cancellation.
				if ctx.Err() != nil {
					return nil
				}
				h.logger.ErrorContext(ctx, "update stream closed unexpectedly")
				return ErrSourceClosed
			}
			h.enqueue(ctx, ev)
		}
	}
}

// enqueue hands ev to the dispatcher. A rejected event is dropped and counted.
func (h *Handler) enqueue(ctx context.Context, ev chat.Event) {
	h.logger.DebugContext(ctx, "received event",
		slog.String("event", ev.Kind.String()),
		slog.Int64("user", ev.User.ID))

	if err := h.queue.Enqueue(ev); err != nil {
		metrics.DroppedEvents.Inc()
		h.logger.ErrorContext(ctx, "failed to enqueue event",
			slog.String("event", ev.Kind.String()),
			slog.Int64("user", ev.User.ID),
			slog.Any("error", err))
	}
}

func (h *Handler) claim() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return false
	}
	h.running = true
	return true
}

func (h *Handler) release() {
	h.mu.Lock()
	h.running = false
	h.mu.Unlock()
}

// IsRunning reports whether Start is receiving updates.
func (h *Handler) IsRunning() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running
}
