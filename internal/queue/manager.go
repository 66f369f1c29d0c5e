// Package queue dispatches inbound events to workers. Events of one user are
// handled one at a time in arrival order; different users run in parallel.
package queue

import (
	"container/list"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/joshsymonds/relaybot/internal/chat"
)

// ErrQueueStopped indicates the manager has been stopped.
var ErrQueueStopped = errors.New("queue stopped")

// Job is one event waiting to be handled.
type Job struct {
	Enqueued time.Time
	Event    chat.Event
	User     int64
}

// Stats is a point-in-time view of the manager.
type Stats struct {
	Users      int // users with a queue
	Pending    int // jobs not yet picked up
	Processing int // jobs currently being handled
}

// Manager owns the per-user queues and hands ready jobs to workers.
type Manager struct {
	queues  map[int64]*UserQueue
	ready   *list.List // users with a dequeuable job, oldest first
	notify  chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	stopped bool
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{
		queues: make(map[int64]*UserQueue),
		ready:  list.New(),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Enqueue adds ev to its sender's queue.
func (m *Manager) Enqueue(ev chat.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return ErrQueueStopped
	}

	user := ev.User.ID
	uq, ok := m.queues[user]
	if !ok {
		uq = NewUserQueue(user)
		m.queues[user] = uq
	}

	if err := uq.Enqueue(&Job{Event: ev, User: user, Enqueued: time.Now()}); err != nil {
		return err
	}
	m.scheduleLocked(uq)
	return nil
}

// Next blocks until a job is ready, ctx is done or the manager stops. The
// caller must call Complete for the job's user when done.
func (m *Manager) Next(ctx context.Context) (*Job, error) {
	for {
		m.mu.Lock()
		if m.stopped {
			m.mu.Unlock()
			return nil, ErrQueueStopped
		}
		if job := m.popLocked(); job != nil {
			// Pass the wakeup on so idle workers pick up the rest.
			if m.ready.Len() > 0 {
				m.signal()
			}
			m.mu.Unlock()
			return job, nil
		}
		m.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-m.done:
			return nil, ErrQueueStopped
		case <-m.notify:
		}
	}
}

// Complete releases user's queue so its next job can run.
func (m *Manager) Complete(user int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	uq, ok := m.queues[user]
	if !ok {
		return
	}
	uq.Complete()

	if uq.IsEmpty() {
		delete(m.queues, user)
		return
	}
	m.scheduleLocked(uq)
}

// Stop wakes all waiting workers and rejects further jobs.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return
	}
	m.stopped = true
	close(m.done)
}

// Stats returns current queue statistics.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := Stats{Users: len(m.queues)}
	for _, uq := range m.queues {
		st.Pending += uq.Size()
		if uq.IsProcessing() {
			st.Processing++
		}
	}
	return st
}

func (m *Manager) scheduleLocked(uq *UserQueue) {
	if uq.scheduled || uq.IsProcessing() || uq.Size() == 0 {
		return
	}
	uq.scheduled = true
	m.ready.PushBack(uq.user)
	m.signal()
}

func (m *Manager) popLocked() *Job {
	for front := m.ready.Front(); front != nil; front = m.ready.Front() {
		m.ready.Remove(front)
		user, ok := front.Value.(int64)
		if !ok {
			continue
		}
		uq, exists := m.queues[user]
		if !exists {
			continue
		}
		uq.scheduled = false
		if job := uq.Dequeue(); job != nil {
			return job
		}
	}
	return nil
}

// signal wakes one waiting worker without blocking.
func (m *Manager) signal() {
	select {
	case m.notify <- struct{}{}:
	default:
	}
}
