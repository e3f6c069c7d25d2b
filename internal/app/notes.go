package app

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Iron-Ham/notesync/internal/event"
)

// ResourceKindNote is the event.ResourcePayload kind for notes.
const ResourceKindNote = "note"

// NoteStore is an in-memory collection of notes. Saves publish
// ResourceUpdated, creation and deletion publish ResourceAdded and
// ResourceDeleted.
type NoteStore struct {
	mu      sync.RWMutex
	notes   map[string]*Note
	failOn  map[string]error
	nextSeq uint64

	bus *event.Bus
}

// NewNoteStore creates an empty store.
func NewNoteStore(bus *event.Bus) *NoteStore {
	return &NoteStore{
		notes:  make(map[string]*Note),
		failOn: make(map[string]error),
		bus:    bus,
	}
}

// Create adds a note and returns it.
func (s *NoteStore) Create(title, body string, readOnly bool) *Note {
	n := s.Draft(title, body, readOnly)
	s.Insert(n)
	return n
}

// Draft returns a note bound to the store but not yet listed in it. The
// shell uses it as a switch target and inserts it once the switch is allowed.
func (s *NoteStore) Draft(title, body string, readOnly bool) *Note {
	return &Note{
		id:       uuid.NewString(),
		title:    title,
		body:     body,
		saved:    body,
		readOnly: readOnly,
		created:  time.Now(),
		store:    s,
	}
}

// Insert lists a draft in the store. Inserting a note twice is a no-op.
func (s *NoteStore) Insert(n *Note) {
	s.mu.Lock()
	if _, ok := s.notes[n.id]; ok {
		s.mu.Unlock()
		return
	}
	s.nextSeq++
	n.seq = s.nextSeq
	s.notes[n.id] = n
	s.mu.Unlock()

	s.bus.Publish(event.NewResourceAdded(n.id, ResourceKindNote, n.title))
}

// Delete removes a note.
func (s *NoteStore) Delete(id string) bool {
	s.mu.Lock()
	n, ok := s.notes[id]
	delete(s.notes, id)
	s.mu.Unlock()

	if ok {
		s.bus.Publish(event.NewResourceDeleted(id, ResourceKindNote, n.Title()))
	}
	return ok
}

// Get returns a note by ID.
func (s *NoteStore) Get(id string) (*Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notes[id]
	return n, ok
}

// List returns all notes in creation order.
func (s *NoteStore) List() []*Note {
	s.mu.RLock()
	out := make([]*Note, 0, len(s.notes))
	for _, n := range s.notes {
		out = append(out, n)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b *Note) int {
		return cmp.Compare(a.seq, b.seq)
	})
	return out
}

// FailSaves makes every save of note id fail with err until cleared with a
// nil err. It simulates a read-only mount or a full disk.
func (s *NoteStore) FailSaves(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failOn, id)
		return
	}
	s.failOn[id] = err
}

func (s *NoteStore) persist(n *Note) error {
	s.mu.RLock()
	err := s.failOn[n.id]
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	s.bus.Publish(event.NewResourceUpdated(n.id, ResourceKindNote, n.title))
	return nil
}

// Note is an editable note. It implements dirty.Resource and dirty.ReadOnly.
// Its text is only touched on the UI goroutine.
type Note struct {
	id       string
	title    string
	body     string
	saved    string
	readOnly bool
	created  time.Time
	seq      uint64
	store    *NoteStore
}

// ID returns the note identifier.
func (n *Note) ID() string { return n.id }

// Title returns the note title.
func (n *Note) Title() string { return n.title }

// Kind returns "note".
func (n *Note) Kind() string { return ResourceKindNote }

// Body returns the current, possibly unsaved, text.
func (n *Note) Body() string { return n.body }

// ReadOnly reports whether the note can be edited.
func (n *Note) ReadOnly() bool { return n.readOnly }

// IsDirty reports whether the text differs from the last save.
func (n *Note) IsDirty() bool { return n.body != n.saved }

// SetBody replaces the text. Read-only notes ignore edits.
func (n *Note) SetBody(body string) {
	if n.readOnly {
		return
	}
	n.body = body
}

// Append adds text to the end of the note.
func (n *Note) Append(text string) {
	n.SetBody(n.body + text)
}

// Revert discards unsaved edits.
func (n *Note) Revert() {
	n.body = n.saved
}

// Save persists the current text.
func (n *Note) Save() error {
	if n.readOnly {
		return fmt.Errorf("note %q is read-only", n.title)
	}
	if err := n.store.persist(n); err != nil {
		return err
	}
	n.saved = n.body
	return nil
}
