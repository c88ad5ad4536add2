// Package dispatch runs admin notifications outside the request that caused
// them. A request hands a submission to a Dispatcher and returns; the outcome
// is only visible in logs and metrics.
package dispatch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/servicedesk/backend/internal/metrics"
	"github.com/servicedesk/backend/internal/model"
)

// Dispatcher accepts a saved submission for background notification.
// Dispatch must not block on the notification itself.
type Dispatcher interface {
	Dispatch(ctx context.Context, sub *model.Submission)
}

// Sink performs one delivery attempt for a submission: either sending the
// email directly or enqueueing it for a worker.
type Sink func(ctx context.Context, sub *model.Submission) error

// AsyncDispatcher runs each delivery on its own goroutine with a context that
// outlives the request. Close waits for in-flight deliveries.
type AsyncDispatcher struct {
	sink Sink
	path string

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewAsync creates an AsyncDispatcher. path labels log records and metrics
// ("async" for direct email, "enqueue" for queue publishing).
func NewAsync(path string, sink Sink) *AsyncDispatcher {
	return &AsyncDispatcher{sink: sink, path: path}
}

var _ Dispatcher = (*AsyncDispatcher)(nil)

// Dispatch starts the delivery and returns immediately. Failures are logged
// and counted, never returned.
func (d *AsyncDispatcher) Dispatch(ctx context.Context, sub *model.Submission) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		slog.Warn("dispatcher closed, notification dropped", "submission_id", sub.ID, "path", d.path)
		metrics.RecordNotification(d.path, errDropped)
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	snapshot := *sub
	bg := context.WithoutCancel(ctx)
	go func() {
		defer d.wg.Done()
		err := d.sink(bg, &snapshot)
		metrics.RecordNotification(d.path, err)
		if err != nil {
			slog.Error("async notification failed", "submission_id", snapshot.ID, "path", d.path, "error", err)
			return
		}
		slog.Info("async notification finished", "submission_id", snapshot.ID, "path", d.path)
	}()
}

// Close stops accepting work and waits for in-flight deliveries or ctx.
func (d *AsyncDispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
