package asynctask

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iron-Ham/notesync/internal/errors"
	"github.com/Iron-Ham/notesync/internal/logging"
	"github.com/Iron-Ham/notesync/internal/uithread"
)

func newTestRunner(t *testing.T) (*Runner, *uithread.Loop) {
	t.Helper()
	loop := uithread.New(nil)
	r := NewRunner(loop, nil)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = r.Shutdown(ctx)
	})
	return r, loop
}

// settle waits for the worker to return and then drains the UI loop.
func settle[T any](t *testing.T, loop *uithread.Loop, h *Handle[T]) {
	t.Helper()
	select {
	case <-h.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for task")
	}
	loop.Drain()
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSubmit_SuccessRunsCallbacksOnUILoop(t *testing.T) {
	r, loop := newTestRunner(t)

	release := make(chan struct{})
	h := Submit(r, func(ctx context.Context) (string, error) {
		<-release
		return "done", nil
	})

	var order []string
	h.OnComplete(func() { order = append(order, "complete") })
	h.OnSuccess(func(v string) { order = append(order, "success:"+v) })
	h.OnFailure(func(err error) { order = append(order, "failure") })

	assert.Equal(t, StateRunning, h.State())
	close(release)
	<-h.Done()

	assert.Empty(t, order, "continuations must wait for the UI loop")
	assert.Equal(t, StateSucceeded, h.State())

	loop.Drain()

	assert.Equal(t, []string{"success:done", "complete"}, order)
	v, err := h.Result()
	assert.Equal(t, "done", v)
	assert.NoError(t, err)
	assert.NotEmpty(t, h.ID())
}

func TestSubmit_FailureWrapsCause(t *testing.T) {
	r, loop := newTestRunner(t)

	cause := fmt.Errorf("ai service unavailable")
	h := Submit(r, func(ctx context.Context) (int, error) {
		return 0, cause
	})

	var got error
	successes, completes := 0, 0
	h.OnSuccess(func(int) { successes++ }).
		OnFailure(func(err error) { got = err }).
		OnComplete(func() { completes++ })

	settle(t, loop, h)

	require.Error(t, got)
	assert.ErrorIs(t, got, cause)
	var tf *errors.TaskFailure
	require.True(t, errors.As(got, &tf))
	assert.Equal(t, h.ID(), tf.TaskID)
	assert.False(t, tf.Panicked)
	assert.Equal(t, 0, successes)
	assert.Equal(t, 1, completes)
	assert.Equal(t, StateFailed, h.State())
}

func TestSubmit_CallbacksFireExactlyOnce(t *testing.T) {
	r, loop := newTestRunner(t)

	h := Submit(r, func(ctx context.Context) (int, error) { return 7, nil })

	var a, b, c int
	h.OnSuccess(func(int) { a++ })
	h.OnSuccess(func(int) { b++ })
	h.OnComplete(func() { c++ })

	settle(t, loop, h)
	loop.Drain()
	h.Cancel()
	loop.Drain()

	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
	assert.Equal(t, 1, c)
}

func TestSubmit_PanicBecomesTaskFailure(t *testing.T) {
	r, loop := newTestRunner(t)

	h := Submit(r, func(ctx context.Context) (string, error) {
		panic("model exploded")
	})

	var got error
	h.OnFailure(func(err error) { got = err })
	settle(t, loop, h)

	var tf *errors.TaskFailure
	require.True(t, errors.As(got, &tf))
	assert.True(t, tf.Panicked)
	assert.Contains(t, got.Error(), "model exploded")
}

// Scenario D: a result that arrives after Cancel is recognisable as stale.
func TestHandle_CancelMarksLateResultStale(t *testing.T) {
	r, loop := newTestRunner(t)

	h := Submit(r, func(ctx context.Context) (string, error) {
		time.Sleep(50 * time.Millisecond) // ignores ctx on purpose
		return "late", nil
	})
	h.Cancel()

	fired := false
	staleSeen := false
	h.OnSuccess(func(v string) {
		fired = true
		staleSeen = h.Cancelled()
	})

	settle(t, loop, h)

	if fired {
		assert.True(t, staleSeen, "success on a cancelled handle must report Cancelled")
	}
	assert.True(t, h.Cancelled())
}

func TestHandle_CancelObservedByOperation(t *testing.T) {
	r, loop := newTestRunner(t)

	started := make(chan struct{})
	h := Submit(r, func(ctx context.Context) (string, error) {
		close(started)
		<-ctx.Done()
		return "", ctx.Err()
	})

	var got error
	h.OnFailure(func(err error) { got = err })

	<-started
	h.Cancel()
	settle(t, loop, h)

	assert.ErrorIs(t, got, errors.ErrTaskCancelled)
	assert.ErrorIs(t, got, context.Canceled)
	assert.Equal(t, errors.SeverityInfo, errors.GetSeverity(errors.ErrTaskCancelled))
}

func TestHandle_StaleCancelAfterCompletion(t *testing.T) {
	r, loop := newTestRunner(t)

	h := Submit(r, func(ctx context.Context) (int, error) { return 1, nil })
	calls := 0
	h.OnSuccess(func(int) { calls++ })
	h.OnComplete(func() { calls++ })
	settle(t, loop, h)
	require.Equal(t, 2, calls)

	assert.NotPanics(t, func() {
		h.Cancel()
		h.Cancel()
	})
	loop.Drain()

	assert.Equal(t, 2, calls, "cancel after completion must not re-fire callbacks")
	assert.True(t, h.Cancelled())
	assert.Equal(t, StateSucceeded, h.State())
}

func TestHandle_LateRegistrationIsPosted(t *testing.T) {
	r, loop := newTestRunner(t)

	h := Submit(r, func(ctx context.Context) (string, error) { return "v", nil })
	settle(t, loop, h)

	var got []string
	h.OnSuccess(func(v string) { got = append(got, "success:"+v) })
	h.OnFailure(func(error) { got = append(got, "failure") })
	h.OnComplete(func() { got = append(got, "complete") })

	assert.Empty(t, got, "late callbacks are posted, not run inline")
	loop.Drain()
	assert.Equal(t, []string{"success:v", "complete"}, got)
}

func TestHandle_LateCompleteRunsAfterLateOutcome(t *testing.T) {
	tests := []struct {
		name     string
		fail     bool
		register func(h *Handle[string], got *[]string)
		want     []string
	}{
		{
			name: "complete registered before success",
			register: func(h *Handle[string], got *[]string) {
				h.OnComplete(func() { *got = append(*got, "complete") }).
					OnSuccess(func(string) { *got = append(*got, "success") })
			},
			want: []string{"success", "complete"},
		},
		{
			name: "complete registered before failure",
			fail: true,
			register: func(h *Handle[string], got *[]string) {
				h.OnComplete(func() { *got = append(*got, "complete") }).
					OnFailure(func(error) { *got = append(*got, "failure") })
			},
			want: []string{"failure", "complete"},
		},
		{
			name: "two completes around a success",
			register: func(h *Handle[string], got *[]string) {
				h.OnComplete(func() { *got = append(*got, "complete-1") }).
					OnSuccess(func(string) { *got = append(*got, "success") }).
					OnComplete(func() { *got = append(*got, "complete-2") })
			},
			want: []string{"success", "complete-1", "complete-2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, loop := newTestRunner(t)
			h := Submit(r, func(ctx context.Context) (string, error) {
				if tt.fail {
					return "", fmt.Errorf("offline")
				}
				return "v", nil
			})
			h.OnFailure(func(error) {})
			settle(t, loop, h)

			var got []string
			tt.register(h, &got)
			assert.Empty(t, got)
			assert.Equal(t, 1, loop.Len(), "late registrations share one flush")

			loop.Drain()
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHandle_LateRegistrationAfterFlushRunsAgain(t *testing.T) {
	r, loop := newTestRunner(t)
	h := Submit(r, func(ctx context.Context) (int, error) { return 7, nil })
	settle(t, loop, h)

	var got []string
	h.OnComplete(func() { got = append(got, "first") })
	loop.Drain()
	h.OnSuccess(func(v int) { got = append(got, fmt.Sprintf("second:%d", v)) })
	loop.Drain()

	assert.Equal(t, []string{"first", "second:7"}, got)
}

func TestHandle_PanickingCallbackDoesNotSkipOthers(t *testing.T) {
	r, loop := newTestRunner(t)

	h := Submit(r, func(ctx context.Context) (int, error) { return 1, nil })
	completed := false
	h.OnSuccess(func(int) { panic("view gone") })
	h.OnComplete(func() { completed = true })

	settle(t, loop, h)
	assert.True(t, completed)
}

func TestHandle_FailureWithoutHandlerIsLogged(t *testing.T) {
	var buf syncBuffer
	loop := uithread.New(nil)
	r := NewRunner(loop, logging.NewWriterLogger(&buf, "debug"))

	h := Submit(r, func(ctx context.Context) (int, error) {
		return 0, fmt.Errorf("sync rejected")
	})
	settle(t, loop, h)
	r.Wait()

	out := buf.String()
	assert.Contains(t, out, "task failed with no failure handler")
	assert.Contains(t, out, "sync rejected")
	assert.Contains(t, out, h.ID())
}

func TestHandle_FailureAfterLoopCloseIsStillLogged(t *testing.T) {
	var buf syncBuffer
	loop := uithread.New(nil)
	r := NewRunner(loop, logging.NewWriterLogger(&buf, "debug"))

	release := make(chan struct{})
	h := Submit(r, func(ctx context.Context) (int, error) {
		<-release
		return 0, fmt.Errorf("upload refused")
	})
	loop.Close()
	close(release)
	<-h.Done()
	r.Wait()

	out := buf.String()
	assert.Contains(t, out, "task continuation dropped")
	assert.Contains(t, out, "task failed with no failure handler")
	assert.Contains(t, out, "upload refused")
	assert.Equal(t, 0, loop.Drain())
}

func TestSubmitFunc(t *testing.T) {
	r, loop := newTestRunner(t)

	ran := false
	h := SubmitFunc(r, func(ctx context.Context) error {
		ran = true
		return nil
	})
	succeeded := false
	h.OnSuccess(func(struct{}) { succeeded = true })
	settle(t, loop, h)

	assert.True(t, ran)
	assert.True(t, succeeded)
}

func TestWithTimeout(t *testing.T) {
	r, loop := newTestRunner(t)

	h := Submit(r, WithTimeout(20*time.Millisecond, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}))
	var got error
	h.OnFailure(func(err error) { got = err })
	settle(t, loop, h)

	assert.ErrorIs(t, got, context.DeadlineExceeded)
	assert.NotErrorIs(t, got, errors.ErrTaskCancelled, "a deadline is not a user cancel")
}

func TestRunner_InFlightAndWait(t *testing.T) {
	r, _ := newTestRunner(t)

	release := make(chan struct{})
	for range 3 {
		Submit(r, func(ctx context.Context) (int, error) {
			<-release
			return 0, nil
		})
	}
	assert.Equal(t, 3, r.InFlight())

	close(release)
	r.Wait()
	assert.Equal(t, 0, r.InFlight())
}

func TestRunner_ShutdownCancelsOperations(t *testing.T) {
	loop := uithread.New(nil)
	r := NewRunner(loop, nil)

	started := make(chan struct{})
	h := Submit(r, func(ctx context.Context) (int, error) {
		close(started)
		<-ctx.Done()
		return 0, ctx.Err()
	})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, r.Shutdown(ctx))

	assert.Equal(t, StateFailed, h.State())
	assert.False(t, h.Cancelled(), "runner shutdown is not a handle cancel")
}

func TestRunner_ShutdownTimesOut(t *testing.T) {
	loop := uithread.New(nil)
	r := NewRunner(loop, nil)

	release := make(chan struct{})
	Submit(r, func(ctx context.Context) (int, error) {
		<-release // ignores ctx
		return 0, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Shutdown(ctx), context.DeadlineExceeded)

	close(release)
	r.Wait()
}

func TestSubmit_AfterLoopClosedDropsContinuations(t *testing.T) {
	r, loop := newTestRunner(t)
	loop.Close()

	called := false
	h := Submit(r, func(ctx context.Context) (int, error) { return 1, nil })
	h.OnSuccess(func(int) { called = true })
	settle(t, loop, h)

	assert.False(t, called)
	assert.Equal(t, StateSucceeded, h.State())
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateRunning, "running"},
		{StateSucceeded, "succeeded"},
		{StateFailed, "failed"},
		{State(42), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.String())
		})
	}
}
