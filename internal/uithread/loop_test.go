package uithread

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iron-Ham/notesync/internal/errors"
)

func TestLoop_DrainRunsInPostOrder(t *testing.T) {
	loop := New(nil)

	var got []int
	for i := range 5 {
		require.True(t, loop.Post(func() { got = append(got, i) }))
	}
	assert.Equal(t, 5, loop.Len())

	ran := loop.Drain()

	assert.Equal(t, 5, ran)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
	assert.Equal(t, 0, loop.Len())
}

func TestLoop_PostFromTaskIsDeferredNotInline(t *testing.T) {
	loop := New(nil)

	var got []string
	loop.Post(func() {
		got = append(got, "outer-start")
		loop.Post(func() { got = append(got, "nested") })
		got = append(got, "outer-end")
	})
	loop.Post(func() { got = append(got, "second") })

	loop.Drain()

	assert.Equal(t, []string{"outer-start", "outer-end", "second", "nested"}, got)
}

func TestLoop_NestedDrainIsNoop(t *testing.T) {
	loop := New(nil)

	nested := -1
	var order []string
	loop.Post(func() {
		order = append(order, "first")
		nested = loop.Drain()
		order = append(order, "first-done")
	})
	loop.Post(func() { order = append(order, "second") })

	loop.Drain()

	assert.Equal(t, 0, nested)
	assert.Equal(t, []string{"first", "first-done", "second"}, order)
}

func TestLoop_PanickingTaskDoesNotStopDrain(t *testing.T) {
	loop := New(nil)

	ranAfter := false
	loop.Post(func() { panic("boom") })
	loop.Post(func() { ranAfter = true })

	assert.NotPanics(t, func() { loop.Drain() })
	assert.True(t, ranAfter)
	assert.Equal(t, uint64(1), loop.Panics())
}

func TestLoop_PostAfterClose(t *testing.T) {
	loop := New(nil)

	ran := false
	require.True(t, loop.Post(func() { ran = true }))
	loop.Close()

	assert.False(t, loop.Post(func() { t.Error("task posted after close must not run") }))
	loop.Drain()
	assert.True(t, ran, "tasks queued before Close should still drain")
}

func TestLoop_TryPostReportsClosedLoop(t *testing.T) {
	loop := New(nil)
	require.NoError(t, loop.TryPost(func() {}))

	loop.Close()
	err := loop.TryPost(func() { t.Error("task posted after close must not run") })
	assert.ErrorIs(t, err, errors.ErrLoopClosed)
	assert.Equal(t, 1, loop.Drain())
}

func TestLoop_PostNilIsIgnored(t *testing.T) {
	loop := New(nil)
	assert.True(t, loop.Post(nil))
	assert.Equal(t, 0, loop.Len())
}

func TestLoop_RunDeliversFromManyGoroutinesSerially(t *testing.T) {
	loop := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	const producers, perProducer = 8, 100

	var (
		active  int
		overlap bool
		mu      sync.Mutex
		seen    = make(map[int][]int)
		all     sync.WaitGroup
	)
	all.Add(producers * perProducer)

	var wg sync.WaitGroup
	for p := range producers {
		wg.Go(func() {
			for i := range perProducer {
				loop.Post(func() {
					defer all.Done()
					// active is only touched by tasks; a concurrent task would observe 1.
					if active != 0 {
						overlap = true
					}
					active++
					mu.Lock()
					seen[p] = append(seen[p], i)
					mu.Unlock()
					active--
				})
			}
		})
	}
	wg.Wait()

	waitCh := make(chan struct{})
	go func() { all.Wait(); close(waitCh) }()
	select {
	case <-waitCh:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for tasks")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.False(t, overlap, "tasks must never overlap")

	mu.Lock()
	defer mu.Unlock()
	for p := range producers {
		require.Len(t, seen[p], perProducer)
		for i, v := range seen[p] {
			if v != i {
				t.Fatalf("producer %d: task %d ran out of order (got %d)", p, i, v)
			}
		}
	}
}

func TestLoop_RunReturnsAfterClose(t *testing.T) {
	loop := New(nil)

	ran := make(chan struct{})
	loop.Post(func() { close(ran) })

	done := make(chan error, 1)
	go func() { done <- loop.Run(context.Background()) }()

	<-ran
	loop.Close()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}

func TestLoop_WakeSignalsPendingWork(t *testing.T) {
	loop := New(nil)

	select {
	case <-loop.Wake():
		t.Fatal("no work posted yet")
	default:
	}

	loop.Post(func() {})
	loop.Post(func() {})

	select {
	case <-loop.Wake():
	case <-time.After(time.Second):
		t.Fatal("expected wake signal")
	}
	assert.Equal(t, 2, loop.Drain())
}
