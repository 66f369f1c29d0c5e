package queue

import (
	"container/list"
	"fmt"
)

// UserQueue holds the pending jobs of a single user in arrival order. It is
// owned by a Manager and guarded by the manager's lock.
type UserQueue struct {
	jobs       *list.List
	processing *Job
	user       int64
	scheduled  bool // on the manager's ready list
}

// NewUserQueue creates a new queue for a user.
func NewUserQueue(user int64) *UserQueue {
	return &UserQueue{
		user: user,
		jobs: list.New(),
	}
}

// Enqueue adds a job to the queue.
func (uq *UserQueue) Enqueue(job *Job) error {
	if job == nil {
		return fmt.Errorf("cannot enqueue nil job")
	}
	if job.User != uq.user {
		return fmt.Errorf("job user %d does not match queue user %d", job.User, uq.user)
	}

	uq.jobs.PushBack(job)
	return nil
}

// Dequeue removes and returns the next job.
// Returns nil if the queue is empty or a job is already being processed.
func (uq *UserQueue) Dequeue() *Job {
	if uq.processing != nil {
		return nil
	}

	front := uq.jobs.Front()
	if front == nil {
		return nil
	}

	job, ok := front.Value.(*Job)
	if !ok {
		return nil
	}
	uq.jobs.Remove(front)
	uq.processing = job

	return job
}

// Complete marks the current job as done.
func (uq *UserQueue) Complete() {
	uq.processing = nil
}

// Size returns the number of jobs waiting in the queue.
func (uq *UserQueue) Size() int {
	return uq.jobs.Len()
}

// IsProcessing returns true if a job is currently being processed.
func (uq *UserQueue) IsProcessing() bool {
	return uq.processing != nil
}

// IsEmpty returns true if the queue has no jobs and nothing is processing.
func (uq *UserQueue) IsEmpty() bool {
	return uq.jobs.Len() == 0 && uq.processing == nil
}
