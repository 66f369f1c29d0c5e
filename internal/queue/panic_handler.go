package queue

import (
	"context"
	"log/slog"
	"runtime/debug"

	"github.com/joshsymonds/relaybot/internal/metrics"
)

// PanicHandler defines how to handle worker panics.
type PanicHandler interface {
	// HandlePanic is called when a worker panics while handling job.
	// It should return true to keep the worker running, false to stop it.
	HandlePanic(workerID string, job *Job, panicValue any, stackTrace []byte) bool
}

// DefaultPanicHandler logs panics with stack traces and keeps workers running.
type DefaultPanicHandler struct {
	logger *slog.Logger
}

// NewDefaultPanicHandler returns the default panic handler. A nil logger
// uses slog.Default.
func NewDefaultPanicHandler(logger *slog.Logger) *DefaultPanicHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultPanicHandler{logger: logger}
}

// HandlePanic logs the panic with stack trace and returns true.
func (h *DefaultPanicHandler) HandlePanic(workerID string, job *Job, panicValue any, stackTrace []byte) bool {
	attrs := []any{
		slog.String("worker_id", workerID),
		slog.Any("panic", panicValue),
		slog.String("stack_trace", string(stackTrace)),
	}
	if job != nil {
		attrs = append(attrs,
			slog.String("event", job.Event.Kind.String()),
			slog.Int64("user", job.User))
	}
	h.logger.ErrorContext(context.Background(), "PANIC in worker", attrs...)
	return true
}

// NoPanicHandler stops the panicking worker (useful for tests/debugging).
type NoPanicHandler struct{}

// NewNoPanicHandler returns a handler that stops panicking workers.
func NewNoPanicHandler() *NoPanicHandler {
	return &NoPanicHandler{}
}

// HandlePanic logs the panic and returns false.
func (h *NoPanicHandler) HandlePanic(workerID string, _ *Job, panicValue any, _ []byte) bool {
	slog.Default().ErrorContext(
		context.Background(),
		"Worker panic (stopping worker)",
		slog.String("worker_id", workerID),
		slog.Any("panic", panicValue),
	)
	return false
}

// handleRecoveredPanic counts a recovered panic and defers to handler.
// Returns true if the worker should keep running.
func handleRecoveredPanic(workerID string, job *Job, panicValue any, handler PanicHandler) bool {
	metrics.WorkerPanics.Inc()
	if handler == nil {
		handler = NewDefaultPanicHandler(nil)
	}
	return handler.HandlePanic(workerID, job, panicValue, debug.Stack())
}
