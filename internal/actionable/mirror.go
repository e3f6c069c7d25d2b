package actionable

import (
	"slices"

	"github.com/Iron-Ham/notesync/internal/event"
)

// Subscriber is the subset of *event.Bus a Mirror needs.
type Subscriber interface {
	SubscribeMatching(pattern string, h event.Handler) (string, error)
	Unsubscribe(id string) bool
}

// Mirror is a view-local copy of the registry maintained on the UI
// goroutine. It starts from a snapshot and then follows the registry's
// added/removed events, so every Mirror over the same registry converges on
// the same items in the same order.
//
// A Mirror is not safe for concurrent use; create and read it on the UI
// goroutine only.
type Mirror struct {
	reg      *Registry
	bus      Subscriber
	filter   func(Item) bool
	subID    string
	items    []Item
	onChange func()
}

// NewMirror creates a Mirror of reg restricted to items accepted by filter
// (nil accepts everything). Call it on the UI goroutine.
func NewMirror(reg *Registry, bus Subscriber, filter func(Item) bool) (*Mirror, error) {
	if filter == nil {
		filter = func(Item) bool { return true }
	}
	m := &Mirror{reg: reg, bus: bus, filter: filter}

	// Subscribe before taking the snapshot so no mutation falls between them.
	id, err := bus.SubscribeMatching("actionable.*", m.handle)
	if err != nil {
		return nil, err
	}
	m.subID = id

	for _, item := range reg.Snapshot() {
		if filter(item) {
			m.items = append(m.items, item)
		}
	}
	return m, nil
}

// ByCategory returns a filter accepting only the given categories.
func ByCategory(categories ...string) func(Item) bool {
	return func(item Item) bool {
		return slices.Contains(categories, item.Category)
	}
}

// OnChange sets a function called after every change to the mirror.
func (m *Mirror) OnChange(fn func()) {
	m.onChange = fn
}

func (m *Mirror) handle(e event.Event) {
	switch e.Type {
	case event.ActionableItemAdded:
		item, ok := ItemOf(e)
		if !ok || !m.filter(item) || m.contains(item.ID) {
			return
		}
		// Events queued before the snapshot can announce items that have
		// since been removed; the registry is the source of truth.
		if _, live := m.reg.Get(item.ID); !live {
			return
		}
		m.items = append(m.items, item)
	case event.ActionableItemRemoved:
		id, ok := event.RemovedItemIDOf(e)
		if !ok {
			return
		}
		i := slices.IndexFunc(m.items, func(it Item) bool { return it.ID == id })
		if i < 0 {
			return
		}
		m.items = slices.Delete(m.items, i, i+1)
	default:
		return
	}
	if m.onChange != nil {
		m.onChange()
	}
}

func (m *Mirror) contains(id string) bool {
	return slices.ContainsFunc(m.items, func(it Item) bool { return it.ID == id })
}

// Items returns a copy of the mirrored items.
func (m *Mirror) Items() []Item {
	return slices.Clone(m.items)
}

// Len returns the number of mirrored items.
func (m *Mirror) Len() int {
	return len(m.items)
}

// At returns the i-th mirrored item.
func (m *Mirror) At(i int) (Item, bool) {
	if i < 0 || i >= len(m.items) {
		return Item{}, false
	}
	return m.items[i], true
}

// Close stops following the registry.
func (m *Mirror) Close() {
	if m.subID != "" {
		m.bus.Unsubscribe(m.subID)
		m.subID = ""
	}
}
