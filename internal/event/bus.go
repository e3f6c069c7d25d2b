package event

import (
	"fmt"
	"runtime/debug"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gobwas/glob"

	"github.com/Iron-Ham/notesync/internal/errors"
	"github.com/Iron-Ham/notesync/internal/logging"
	"github.com/Iron-Ham/notesync/internal/uithread"
)

// Handler is a function that handles an event. Handlers always run on the
// UI goroutine.
type Handler func(Event)

// Scheduler moves work onto the UI goroutine. *uithread.Loop implements it.
type Scheduler interface {
	Post(task uithread.Task) bool
}

// subscription represents a registered event handler.
type subscription struct {
	id        string
	eventType Type      // set for type-specific subscriptions
	matcher   glob.Glob // set for pattern subscriptions
	handler   Handler
	active    atomic.Bool
}

// Bus is a typed pub-sub event bus whose handlers run on the UI goroutine.
// Publishing from any goroutine only enqueues a delivery; the Scheduler
// runs deliveries one at a time in arrival order.
type Bus struct {
	mu       sync.RWMutex
	byType   map[Type][]*subscription
	patterns []*subscription
	wildcard []*subscription

	nextID   atomic.Uint64
	failures atomic.Uint64

	ui     Scheduler
	logger *logging.Logger
}

// NewBus creates an event bus delivering through ui.
// A nil logger is replaced with a no-op logger.
func NewBus(ui Scheduler, logger *logging.Logger) *Bus {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Bus{
		byType: make(map[Type][]*subscription),
		ui:     ui,
		logger: logger.WithComponent("event-bus"),
	}
}

// Subscribe registers a handler for a specific event type.
// Returns a subscription ID that can be used to unsubscribe.
func (b *Bus) Subscribe(t Type, handler Handler) string {
	sub := b.newSubscription(handler)
	sub.eventType = t

	b.mu.Lock()
	b.byType[t] = append(b.byType[t], sub)
	b.mu.Unlock()
	return sub.id
}

// SubscribeAll registers a handler for every event type.
func (b *Bus) SubscribeAll(handler Handler) string {
	sub := b.newSubscription(handler)

	b.mu.Lock()
	b.wildcard = append(b.wildcard, sub)
	b.mu.Unlock()
	return sub.id
}

// SubscribeMatching registers a handler for every event type matching a glob
// pattern, with '.' as the segment separator: "actionable.*" matches both
// actionable item events, "*.updated" matches resource and plan updates.
func (b *Bus) SubscribeMatching(pattern string, handler Handler) (string, error) {
	g, err := glob.Compile(pattern, '.')
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", errors.ErrInvalidPattern, pattern, err)
	}

	sub := b.newSubscription(handler)
	sub.matcher = g

	b.mu.Lock()
	b.patterns = append(b.patterns, sub)
	b.mu.Unlock()
	return sub.id, nil
}

func (b *Bus) newSubscription(handler Handler) *subscription {
	sub := &subscription{
		id:      fmt.Sprintf("sub-%d", b.nextID.Add(1)),
		handler: handler,
	}
	sub.active.Store(true)
	return sub
}

// Unsubscribe removes a subscription by ID and returns true if it existed.
// It is safe to call from inside a handler: a handler already running
// finishes normally, and the removed subscription is skipped for the rest
// of the event being delivered.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	match := func(s *subscription) bool {
		if s.id != id {
			return false
		}
		s.active.Store(false)
		return true
	}

	for t, subs := range b.byType {
		if i := slices.IndexFunc(subs, match); i >= 0 {
			b.byType[t] = slices.Delete(slices.Clone(subs), i, i+1)
			if len(b.byType[t]) == 0 {
				delete(b.byType, t)
			}
			return true
		}
	}
	if i := slices.IndexFunc(b.patterns, match); i >= 0 {
		b.patterns = slices.Delete(slices.Clone(b.patterns), i, i+1)
		return true
	}
	if i := slices.IndexFunc(b.wildcard, match); i >= 0 {
		b.wildcard = slices.Delete(slices.Clone(b.wildcard), i, i+1)
		return true
	}
	return false
}

// Publish schedules delivery of e on the UI goroutine and returns
// immediately. It never runs handlers inline, even when called from a
// handler. Events published by one goroutine are delivered in publish
// order. Returns false if the UI loop no longer accepts work.
func (b *Bus) Publish(e Event) bool {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	ok := b.ui.Post(func() { b.deliver(e) })
	if !ok {
		b.logger.Debug("event dropped, ui loop closed", "event_type", string(e.Type))
	}
	return ok
}

// deliver runs on the UI goroutine. Handlers registered while delivery is in
// progress are not part of the snapshot and do not see this event.
// Type-specific handlers run first, then pattern handlers, then wildcard
// handlers, each group in registration order.
func (b *Bus) deliver(e Event) {
	b.mu.RLock()
	specific := b.byType[e.Type]
	targets := make([]*subscription, 0, len(specific)+len(b.patterns)+len(b.wildcard))
	targets = append(targets, specific...)
	for _, sub := range b.patterns {
		if sub.matcher.Match(string(e.Type)) {
			targets = append(targets, sub)
		}
	}
	targets = append(targets, b.wildcard...)
	b.mu.RUnlock()

	for _, sub := range targets {
		if !sub.active.Load() {
			continue
		}
		b.safeCall(sub, e)
	}
}

// safeCall invokes a handler and recovers from any panic, so one failing
// subscriber never stops delivery to the others or reaches the publisher.
func (b *Bus) safeCall(sub *subscription, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.failures.Add(1)
			err := errors.NewSubscriberError(string(e.Type), sub.id, r)
			b.logger.WithSubscription(sub.id).Error("event handler panicked",
				"event_type", string(e.Type),
				"event_id", e.ID,
				"error", err.Error(),
				"stack", string(debug.Stack()),
			)
		}
	}()
	sub.handler(e)
}

// Clear removes all subscriptions.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, subs := range b.byType {
		for _, s := range subs {
			s.active.Store(false)
		}
	}
	for _, s := range b.patterns {
		s.active.Store(false)
	}
	for _, s := range b.wildcard {
		s.active.Store(false)
	}
	b.byType = make(map[Type][]*subscription)
	b.patterns = nil
	b.wildcard = nil
}

// SubscriptionCount returns the total number of active subscriptions.
func (b *Bus) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := len(b.patterns) + len(b.wildcard)
	for _, subs := range b.byType {
		count += len(subs)
	}
	return count
}

// FailureCount returns how many handler invocations have panicked.
func (b *Bus) FailureCount() uint64 {
	return b.failures.Load()
}
