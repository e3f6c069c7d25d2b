package actionable

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Iron-Ham/notesync/internal/errors"
	"github.com/Iron-Ham/notesync/internal/event"
	"github.com/Iron-Ham/notesync/internal/logging"
)

// Well-known item categories.
const (
	CategoryFriendRequest = "friend_request"
	CategoryPlanFailure   = "plan_failure"
	CategoryConflict      = "conflict"
)

// Item is a unit of pending work surfaced to the user.
type Item struct {
	ID            string
	GroupID       string // Plan, resource or conversation the item belongs to
	Description   string
	Category      string
	Data          any
	Action        func()
	OriginEventID string // ID of the event that caused the item, if any
	CreatedAt     time.Time
}

// Publisher announces registry changes. *event.Bus implements it.
type Publisher interface {
	Publish(e event.Event) bool
}

type entry struct {
	item     Item
	seq      uint64
	executed bool
}

// Registry is a concurrency-safe collection of actionable items keyed by ID.
type Registry struct {
	mu      sync.RWMutex
	items   map[string]*entry
	nextSeq uint64

	bus    Publisher
	logger *logging.Logger
}

// NewRegistry creates an empty registry publishing through bus.
// A nil logger is replaced with a no-op logger.
func NewRegistry(bus Publisher, logger *logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Registry{
		items:  make(map[string]*entry),
		bus:    bus,
		logger: logger.WithComponent("actionable-registry"),
	}
}

// NewID returns a fresh unique item ID.
func NewID() string {
	return uuid.NewString()
}

// Add inserts item if its ID is not already present and publishes
// ActionableItemAdded. It returns false, without publishing, for a
// duplicate ID.
func (r *Registry) Add(item Item) bool {
	if item.ID == "" {
		r.logger.Warn("ignoring actionable item without id", "category", item.Category)
		return false
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	// Publish only enqueues, so holding the lock keeps event order equal to
	// mutation order without risking a handler deadlock.
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return false
	}
	r.nextSeq++
	r.items[item.ID] = &entry{item: item, seq: r.nextSeq}
	r.bus.Publish(event.New(event.ActionableItemAdded, item))

	r.logger.Debug("actionable item added",
		"item_id", item.ID,
		"group_id", item.GroupID,
		"category", item.Category,
	)
	return true
}

// Remove deletes the item with the given ID and publishes
// ActionableItemRemoved. It returns false, without publishing, if the ID
// is absent.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.removeLocked(id) {
		return false
	}
	r.logger.Debug("actionable item removed", "item_id", id)
	return true
}

func (r *Registry) removeLocked(id string) bool {
	if _, exists := r.items[id]; !exists {
		return false
	}
	delete(r.items, id)
	r.bus.Publish(event.New(event.ActionableItemRemoved, id))
	return true
}

// RemoveGroup removes every item in groupID and returns how many were
// removed. One ActionableItemRemoved event is published per item.
func (r *Registry) RemoveGroup(groupID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*entry
	for _, e := range r.items {
		if e.item.GroupID == groupID {
			matched = append(matched, e)
		}
	}
	slices.SortFunc(matched, func(a, b *entry) int { return cmp.Compare(a.seq, b.seq) })

	for _, e := range matched {
		r.removeLocked(e.item.ID)
	}
	if len(matched) > 0 {
		r.logger.Debug("actionable group removed", "group_id", groupID, "count", len(matched))
	}
	return len(matched)
}

// Get returns the item with the given ID.
func (r *Registry) Get(id string) (Item, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.items[id]
	if !ok {
		return Item{}, false
	}
	return e.item, true
}

// Len returns the number of items.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Snapshot returns an independent copy of the items in insertion order.
// Later mutations never show up in a returned snapshot.
func (r *Registry) Snapshot() []Item {
	return r.collect(func(*entry) bool { return true })
}

// ExecutedPending returns the items whose action has run at least once but
// which are still registered. A non-empty result usually means an action
// did not trigger its own removal.
func (r *Registry) ExecutedPending() []Item {
	return r.collect(func(e *entry) bool { return e.executed })
}

func (r *Registry) collect(keep func(*entry) bool) []Item {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.items))
	for _, e := range r.items {
		if keep(e) {
			entries = append(entries, e)
		}
	}
	// Items are immutable once stored, so copying values under the read
	// lock yields a consistent snapshot.
	out := make([]Item, len(entries))
	slices.SortFunc(entries, func(a, b *entry) int { return cmp.Compare(a.seq, b.seq) })
	for i, e := range entries {
		out[i] = e.item
	}
	r.mu.RUnlock()
	return out
}

// Execute invokes item.Action exactly once. It does not remove the item;
// removal is left to the action. A panicking action is recovered and
// returned as an error.
func (r *Registry) Execute(item Item) (err error) {
	if item.Action == nil {
		return fmt.Errorf("%w: %s", errors.ErrNoAction, item.ID)
	}

	r.mu.Lock()
	if e, ok := r.items[item.ID]; ok {
		e.executed = true
	}
	r.mu.Unlock()

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("actionable item %s: action panicked: %v", item.ID, rec)
			r.logger.Error("actionable action panicked",
				"item_id", item.ID,
				"panic", rec,
			)
		}
	}()

	r.logger.Debug("executing actionable item", "item_id", item.ID, "category", item.Category)
	item.Action()
	return nil
}

// ExecuteID looks up id and executes it.
func (r *Registry) ExecuteID(id string) error {
	item, ok := r.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrItemNotFound, id)
	}
	return r.Execute(item)
}

// ItemOf returns the item carried by an ActionableItemAdded event.
func ItemOf(e event.Event) (Item, bool) {
	if e.Type != event.ActionableItemAdded {
		return Item{}, false
	}
	item, ok := e.Payload.(Item)
	return item, ok
}
