// Package testutil provides testing utilities for notesync tests.
package testutil

import (
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/notesync/internal/event"
)

// Drainer is the part of *uithread.Loop the helpers need.
type Drainer interface {
	Drain() int
}

// DrainUntil drains loop on the calling goroutine, which acts as the UI
// goroutine, until cond returns true. It fails the test after timeout.
func DrainUntil(t *testing.T, loop Drainer, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for {
		loop.Drain()
		if cond() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("condition not met within %v", timeout)
		}
		time.Sleep(time.Millisecond)
	}
}

// EventRecorder collects every event delivered by a bus.
type EventRecorder struct {
	mu     sync.Mutex
	events []event.Event
}

// RecordAll subscribes a new recorder to every event on bus.
func RecordAll(bus *event.Bus) *EventRecorder {
	r := &EventRecorder{}
	bus.SubscribeAll(r.record)
	return r
}

func (r *EventRecorder) record(e event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *EventRecorder) Events() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event.Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfType returns the recorded events of type t.
func (r *EventRecorder) OfType(t event.Type) []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []event.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many events of type t were recorded.
func (r *EventRecorder) Count(t event.Type) int {
	return len(r.OfType(t))
}

// SkipIfNoGolangciLint skips the test if golangci-lint is not installed.
func SkipIfNoGolangciLint(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("golangci-lint"); err != nil {
		t.Skip("golangci-lint not found in PATH, skipping test")
	}
}
