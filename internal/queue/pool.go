package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/joshsymonds/relaybot/internal/chat"
)

// Pool size limits.
const (
	// MinWorkers is the smallest allowed pool.
	MinWorkers = 1
	// MaxWorkers is the largest allowed pool.
	MaxWorkers = 64
)

// Processor handles a single event.
type Processor interface {
	Handle(ctx context.Context, ev chat.Event) error
}

// PoolConfig holds configuration for the Pool.
type PoolConfig struct {
	Manager      *Manager
	Processor    Processor
	PanicHandler PanicHandler // Optional: defaults to logging with stack trace
	Logger       *slog.Logger // Optional: defaults to slog.Default
	Size         int
}

// Pool runs a fixed number of workers pulling jobs from a Manager.
type Pool struct {
	config PoolConfig
	wg     sync.WaitGroup
}

// NewPool creates a new worker pool.
func NewPool(config PoolConfig) (*Pool, error) {
	if config.Manager == nil {
		return nil, fmt.Errorf("manager is required")
	}
	if config.Processor == nil {
		return nil, fmt.Errorf("processor is required")
	}
	if config.Size < MinWorkers || config.Size > MaxWorkers {
		return nil, fmt.Errorf("pool size must be between %d and %d, got %d", MinWorkers, MaxWorkers, config.Size)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.PanicHandler == nil {
		config.PanicHandler = NewDefaultPanicHandler(config.Logger)
	}

	return &Pool{config: config}, nil
}

// Start runs the workers and blocks until ctx is done or the manager stops.
func (p *Pool) Start(ctx context.Context) error {
	p.config.Logger.Info("worker pool started", slog.Int("workers", p.config.Size))

	for i := range p.config.Size {
		p.wg.Add(1)
		go p.run(ctx, fmt.Sprintf("worker-%d", i+1))
	}
	p.wg.Wait()

	p.config.Logger.Info("worker pool stopped")
	return nil
}

func (p *Pool) run(ctx context.Context, workerID string) {
	defer p.wg.Done()

	for {
		job, err := p.config.Manager.Next(ctx)
		if err != nil {
			p.config.Logger.Debug("worker stopping",
				slog.String("worker_id", workerID),
				slog.Any("reason", err))
			return
		}

		keep := p.process(ctx, workerID, job)
		p.config.Manager.Complete(job.User)
		if !keep {
			return
		}
	}
}

// process handles one job. Returns false if the worker should stop.
func (p *Pool) process(ctx context.Context, workerID string, job *Job) (keep bool) {
	defer func() {
		if r := recover(); r != nil {
			keep = handleRecoveredPanic(workerID, job, r, p.config.PanicHandler)
		}
	}()

	if err := p.config.Processor.Handle(ctx, job.Event); err != nil {
		p.config.Logger.ErrorContext(ctx, "event handling failed",
			slog.String("worker_id", workerID),
			slog.String("event", job.Event.Kind.String()),
			slog.Int64("user", job.User),
			slog.Any("error", err))
	}
	return true
}
