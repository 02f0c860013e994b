package services

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Worker runs at most one task at a time. A trigger that arrives while a task
// is running is rejected rather than queued.
type Worker interface {
	Run(ctx context.Context, op string, task func(ctx context.Context) error) error
	Busy() bool
}

type worker struct {
	slot    *semaphore.Weighted
	running atomic.Bool
}

func NewWorker() Worker {
	return &worker{slot: semaphore.NewWeighted(1)}
}

// Run executes task on the caller's goroutine and returns its error, or a
// busy error if another task holds the slot.
func (w *worker) Run(ctx context.Context, op string, task func(ctx context.Context) error) error {
	if !w.slot.TryAcquire(1) {
		return newBusyError(op)
	}
	w.running.Store(true)
	defer func() {
		w.running.Store(false)
		w.slot.Release(1)
	}()

	return task(ctx)
}

// Busy reports whether a task is running without touching the slot.
func (w *worker) Busy() bool {
	return w.running.Load()
}
