// Package uithread provides the single-consumer task queue that carries work
// from arbitrary goroutines onto the cooperative UI goroutine.
//
// Every reactive callback in notesync (event handlers, async task
// continuations, prompt answers) reaches the UI through a [Loop]. Tasks run
// one at a time, to completion, in the order they were posted. The goroutine
// that drains the loop is by definition the UI goroutine; it is either the
// one calling [Loop.Run], or a foreign event loop (bubbletea) that waits on
// [Loop.Wake] and calls [Loop.Drain].
package uithread

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/Iron-Ham/notesync/internal/errors"
	"github.com/Iron-Ham/notesync/internal/logging"
)

// Task is a unit of UI work.
type Task func()

// Loop is an unbounded FIFO of tasks drained by a single goroutine.
// Post is safe from any goroutine; Drain and Run must only ever be driven
// by one goroutine at a time.
type Loop struct {
	mu     sync.Mutex
	queue  []Task
	closed bool

	wake     chan struct{}
	draining atomic.Bool
	panics   atomic.Uint64

	logger *logging.Logger
}

// New creates a Loop. A nil logger is replaced with a no-op logger.
func New(logger *logging.Logger) *Loop {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Loop{
		wake:   make(chan struct{}, 1),
		logger: logger.WithComponent("ui-loop"),
	}
}

// Post enqueues task for execution on the UI goroutine. It never runs the
// task inline, even when called from the UI goroutine, so ordering is
// always enqueue order. Post returns false if the loop has been closed.
func (l *Loop) Post(task Task) bool {
	return l.TryPost(task) == nil
}

// TryPost is Post for callers that need to report a dropped task. It returns
// errors.ErrLoopClosed once Close has been called.
func (l *Loop) TryPost(task Task) error {
	if task == nil {
		return nil
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		l.logger.Debug("dropped task posted after close")
		return errors.ErrLoopClosed
	}
	l.queue = append(l.queue, task)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Drain runs queued tasks on the calling goroutine until the queue is empty,
// including tasks posted by the tasks themselves. A Drain issued from inside
// a running task returns 0 immediately: tasks never nest.
func (l *Loop) Drain() int {
	if !l.draining.CompareAndSwap(false, true) {
		return 0
	}
	defer l.draining.Store(false)

	ran := 0
	for {
		task, ok := l.pop()
		if !ok {
			return ran
		}
		l.runTask(task)
		ran++
	}
}

func (l *Loop) pop() (Task, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.queue) == 0 {
		return nil, false
	}
	task := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	if len(l.queue) == 0 {
		// Drop the backing array once drained so a burst doesn't pin memory.
		l.queue = nil
	}
	return task, true
}

// runTask executes one task, recovering panics so the loop keeps going.
func (l *Loop) runTask(task Task) {
	defer func() {
		if r := recover(); r != nil {
			l.panics.Add(1)
			l.logger.Error("ui task panicked",
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()
	task()
}

// Run makes the calling goroutine the UI goroutine: it drains the queue
// whenever work arrives until ctx is done or the loop is closed. Tasks still
// queued when Close is called are drained before Run returns.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.Drain()

		if l.isClosed() {
			l.Drain()
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Wake returns a channel that receives a value whenever tasks become
// available. Foreign event loops wait on it and then call Drain.
// Each signal may cover many tasks.
func (l *Loop) Wake() <-chan struct{} {
	return l.wake
}

// Len returns the number of queued tasks.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Panics returns how many tasks have panicked since the loop was created.
func (l *Loop) Panics() uint64 {
	return l.panics.Load()
}

// Close stops accepting new tasks. Already queued tasks remain drainable.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}
