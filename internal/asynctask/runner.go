package asynctask

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/Iron-Ham/notesync/internal/errors"
	"github.com/Iron-Ham/notesync/internal/logging"
	"github.com/Iron-Ham/notesync/internal/uithread"
)

// Operation is a background unit of work. It should return promptly once
// ctx is cancelled.
type Operation[T any] func(ctx context.Context) (T, error)

// Scheduler moves work onto the UI goroutine. *uithread.Loop implements it.
type Scheduler interface {
	TryPost(task uithread.Task) error
}

// Runner starts operations on worker goroutines. The number of concurrent
// workers is not bounded; submissions are unordered relative to each other.
type Runner struct {
	ui     Scheduler
	logger *logging.Logger

	ctx       context.Context
	cancelAll context.CancelFunc

	wg       conc.WaitGroup
	inFlight atomic.Int64
}

// NewRunner creates a Runner that delivers continuations through ui.
// A nil logger is replaced with a no-op logger.
func NewRunner(ui Scheduler, logger *logging.Logger) *Runner {
	if logger == nil {
		logger = logging.NopLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		ui:        ui,
		logger:    logger.WithComponent("async-runner"),
		ctx:       ctx,
		cancelAll: cancel,
	}
}

// Submit starts op on a new worker goroutine and returns its handle.
// Operations submitted after Shutdown start with an already cancelled
// context.
func Submit[T any](r *Runner, op Operation[T]) *Handle[T] {
	ctx, cancel := context.WithCancel(r.ctx)
	h := newHandle[T](uuid.NewString(), r.ui, cancel, r.logger)

	r.inFlight.Add(1)
	r.wg.Go(func() {
		defer r.inFlight.Add(-1)
		defer cancel()

		value, err := execute(ctx, h, op)
		h.settle(value, err)
	})

	h.logger.Debug("task submitted")
	return h
}

// SubmitFunc is Submit for operations that produce no value.
func SubmitFunc(r *Runner, fn func(ctx context.Context) error) *Handle[struct{}] {
	return Submit(r, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
}

// execute runs op, converting a panic into a TaskFailure and a context
// error on a cancelled handle into ErrTaskCancelled.
func execute[T any](ctx context.Context, h *Handle[T], op Operation[T]) (value T, err error) {
	var pc panics.Catcher
	pc.Try(func() {
		value, err = op(ctx)
	})

	if rec := pc.Recovered(); rec != nil {
		h.logger.Error("task panicked",
			"panic", rec.Value,
			"stack", string(rec.Stack),
		)
		var zero T
		return zero, errors.NewTaskFailure(h.id, rec.AsError()).WithPanic()
	}
	if err == nil {
		return value, nil
	}
	if h.Cancelled() && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		err = fmt.Errorf("%w: %w", errors.ErrTaskCancelled, err)
	}
	return value, errors.NewTaskFailure(h.id, err)
}

// InFlight returns the number of operations that have not returned yet.
func (r *Runner) InFlight() int {
	return int(r.inFlight.Load())
}

// Wait blocks until every submitted operation has returned. Continuations
// may still be queued on the UI loop afterwards.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Shutdown cancels every in-flight operation and waits for them to return
// or for ctx to end, whichever comes first.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.cancelAll()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		r.logger.Warn("shutdown timed out with tasks still running",
			"in_flight", r.InFlight(),
		)
		return ctx.Err()
	}
}

// WithTimeout wraps op so its context expires after d.
func WithTimeout[T any](d time.Duration, op Operation[T]) Operation[T] {
	return func(ctx context.Context) (T, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return op(ctx)
	}
}
