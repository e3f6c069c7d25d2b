package asynctask

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/Iron-Ham/notesync/internal/logging"
)

// State is the lifecycle state of a task.
type State int

const (
	// StateRunning means the operation has not returned yet.
	StateRunning State = iota
	// StateSucceeded means the operation returned a nil error.
	StateSucceeded
	// StateFailed means the operation returned an error or panicked.
	StateFailed
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Handle tracks one submitted operation.
type Handle[T any] struct {
	id     string
	ui     Scheduler
	cancel context.CancelFunc
	logger *logging.Logger

	cancelled atomic.Bool
	done      chan struct{}

	mu          sync.Mutex
	state       State
	value       T
	err         error
	delivered   bool
	flushPosted bool // a flush for late registrations is queued
	onSuccess   []func(T)
	onFailure   []func(error)
	onComplete  []func()
}

func newHandle[T any](id string, ui Scheduler, cancel context.CancelFunc, logger *logging.Logger) *Handle[T] {
	return &Handle[T]{
		id:     id,
		ui:     ui,
		cancel: cancel,
		logger: logger.WithTask(id),
		done:   make(chan struct{}),
	}
}

// ID returns the task identifier.
func (h *Handle[T]) ID() string {
	return h.id
}

// Cancel requests cooperative cancellation. It never blocks and never
// fires callbacks; calling it after the task settled only sets the flag.
func (h *Handle[T]) Cancel() {
	if h.cancelled.Swap(true) {
		return
	}
	h.cancel()
	h.logger.Debug("task cancel requested", "state", h.State().String())
}

// Cancelled reports whether Cancel has been called. A result delivered on a
// cancelled handle should be treated as stale.
func (h *Handle[T]) Cancelled() bool {
	return h.cancelled.Load()
}

// State returns the current lifecycle state.
func (h *Handle[T]) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Done is closed once the operation has returned. Continuations may not
// have run yet.
func (h *Handle[T]) Done() <-chan struct{} {
	return h.done
}

// Result returns the value and error of a settled task. While the task is
// still running it returns the zero value and a nil error; check State first.
func (h *Handle[T]) Result() (T, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.value, h.err
}

// OnSuccess registers fn to run on the UI goroutine with the result if the
// task succeeds. Returns h for chaining.
func (h *Handle[T]) OnSuccess(fn func(T)) *Handle[T] {
	if fn == nil {
		return h
	}
	h.mu.Lock()
	h.onSuccess = append(h.onSuccess, fn)
	h.mu.Unlock()
	h.scheduleLate()
	return h
}

// OnFailure registers fn to run on the UI goroutine with the cause if the
// task fails. The error is an *errors.TaskFailure.
func (h *Handle[T]) OnFailure(fn func(error)) *Handle[T] {
	if fn == nil {
		return h
	}
	h.mu.Lock()
	h.onFailure = append(h.onFailure, fn)
	h.mu.Unlock()
	h.scheduleLate()
	return h
}

// OnComplete registers fn to run on the UI goroutine once the task settles,
// whatever the outcome. Completion callbacks run after the outcome callbacks
// of the same batch; a batch is everything registered before settlement, or
// everything registered after it until the UI goroutine next runs.
func (h *Handle[T]) OnComplete(fn func()) *Handle[T] {
	if fn == nil {
		return h
	}
	h.mu.Lock()
	h.onComplete = append(h.onComplete, fn)
	h.mu.Unlock()
	h.scheduleLate()
	return h
}

// scheduleLate posts one flush for callbacks registered after delivery.
// Registrations that arrive before that flush runs join it.
func (h *Handle[T]) scheduleLate() {
	h.mu.Lock()
	if !h.delivered || h.flushPosted {
		h.mu.Unlock()
		return
	}
	h.flushPosted = true
	h.mu.Unlock()

	if err := h.ui.TryPost(func() { h.flush(false) }); err != nil {
		h.logger.Debug("task continuation dropped", "error", err.Error())
	}
}

// settle records the outcome on the worker goroutine and schedules delivery.
func (h *Handle[T]) settle(value T, err error) {
	h.mu.Lock()
	if err != nil {
		h.state = StateFailed
		h.err = err
	} else {
		h.state = StateSucceeded
		h.value = value
	}
	h.mu.Unlock()
	close(h.done)

	if err != nil {
		h.logger.Debug("task failed", "error", err.Error(), "cancelled", h.Cancelled())
	} else {
		h.logger.Debug("task succeeded", "cancelled", h.Cancelled())
	}

	if postErr := h.ui.TryPost(h.deliver); postErr != nil {
		h.logger.Debug("task continuation dropped", "error", postErr.Error())
		if err != nil {
			h.warnUnhandled(err)
		}
	}
}

// deliver runs on the UI goroutine exactly once, with every callback
// registered before it.
func (h *Handle[T]) deliver() {
	h.mu.Lock()
	h.delivered = true
	h.mu.Unlock()
	h.flush(true)
}

// flush runs the pending callbacks: outcome callbacks first, then completion
// callbacks. The unhandled-failure warning is only considered on the first
// flush.
func (h *Handle[T]) flush(first bool) {
	h.mu.Lock()
	h.flushPosted = false
	state, value, err := h.state, h.value, h.err
	onSuccess, onFailure, onComplete := h.onSuccess, h.onFailure, h.onComplete
	h.onSuccess, h.onFailure, h.onComplete = nil, nil, nil
	h.mu.Unlock()

	switch state {
	case StateSucceeded:
		for _, fn := range onSuccess {
			h.invoke("success", func() { fn(value) })
		}
	case StateFailed:
		if first && len(onFailure) == 0 {
			h.warnUnhandled(err)
		}
		for _, fn := range onFailure {
			h.invoke("failure", func() { fn(err) })
		}
	}
	for _, fn := range onComplete {
		h.invoke("complete", fn)
	}
}

func (h *Handle[T]) warnUnhandled(err error) {
	h.logger.Warn("task failed with no failure handler",
		"error", err.Error(),
		"cancelled", h.Cancelled(),
	)
}

// invoke runs one continuation so that a panic in it does not skip the
// continuations registered after it.
func (h *Handle[T]) invoke(kind string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("task continuation panicked",
				"callback", kind,
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()
	fn()
}
