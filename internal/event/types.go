package event

import (
	"time"

	"github.com/google/uuid"
)

// Type identifies the kind of an Event and therefore the shape of its payload.
// Convention: "category.action".
type Type string

// Event types published by the core and its collaborators.
const (
	ResourceAdded         Type = "resource.added"
	ResourceUpdated       Type = "resource.updated"
	ResourceDeleted       Type = "resource.deleted"
	ConfigChanged         Type = "config.changed"
	MessageAdded          Type = "message.added"
	StatusMessage         Type = "status.message"
	PlanUpdated           Type = "plan.updated"
	ActionableItemAdded   Type = "actionable.added"
	ActionableItemRemoved Type = "actionable.removed"
)

// AllTypes returns every event type defined by this package.
func AllTypes() []Type {
	return []Type{
		ResourceAdded, ResourceUpdated, ResourceDeleted,
		ConfigChanged, MessageAdded, StatusMessage, PlanUpdated,
		ActionableItemAdded, ActionableItemRemoved,
	}
}

// Event is an ephemeral notification of a state change. It is built at
// publish time and discarded after delivery.
type Event struct {
	ID        string
	Type      Type
	Payload   any
	Timestamp time.Time
}

// New creates an Event with a fresh ID and the current time.
func New(t Type, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Resource Events
// -----------------------------------------------------------------------------

// ResourcePayload is carried by ResourceAdded, ResourceUpdated and ResourceDeleted.
type ResourcePayload struct {
	ID    string // Resource identifier (note ID, chat ID, ...)
	Kind  string // "note", "chat", "plan", "settings"
	Title string // Display title at the time of the event
}

// NewResourceAdded creates a ResourceAdded event.
func NewResourceAdded(id, kind, title string) Event {
	return New(ResourceAdded, ResourcePayload{ID: id, Kind: kind, Title: title})
}

// NewResourceUpdated creates a ResourceUpdated event.
func NewResourceUpdated(id, kind, title string) Event {
	return New(ResourceUpdated, ResourcePayload{ID: id, Kind: kind, Title: title})
}

// NewResourceDeleted creates a ResourceDeleted event.
func NewResourceDeleted(id, kind, title string) Event {
	return New(ResourceDeleted, ResourcePayload{ID: id, Kind: kind, Title: title})
}

// ResourceOf returns the payload of a resource event.
func ResourceOf(e Event) (ResourcePayload, bool) {
	p, ok := e.Payload.(ResourcePayload)
	return p, ok
}

// -----------------------------------------------------------------------------
// Config Events
// -----------------------------------------------------------------------------

// ConfigPayload is carried by ConfigChanged.
type ConfigPayload struct {
	Path string // Config file that changed
	Op   string // File operation that triggered the reload (e.g. "WRITE")
	// Config is the validated configuration read when the change was seen
	// (a *config.Config). Subscribers read it instead of reloading, since
	// the config source is owned by the watcher goroutine.
	Config any
}

// NewConfigChanged creates a ConfigChanged event.
func NewConfigChanged(path, op string, cfg any) Event {
	return New(ConfigChanged, ConfigPayload{Path: path, Op: op, Config: cfg})
}

// ConfigOf returns the payload of a ConfigChanged event.
func ConfigOf(e Event) (ConfigPayload, bool) {
	p, ok := e.Payload.(ConfigPayload)
	return p, ok
}

// -----------------------------------------------------------------------------
// Message Events
// -----------------------------------------------------------------------------

// MessagePayload is carried by MessageAdded.
type MessagePayload struct {
	ConversationID string
	Sender         string
	Text           string
	Timestamp      time.Time // When the message was sent, not when the event was built
}

// NewMessageAdded creates a MessageAdded event.
func NewMessageAdded(conversationID, sender, text string, sentAt time.Time) Event {
	return New(MessageAdded, MessagePayload{
		ConversationID: conversationID,
		Sender:         sender,
		Text:           text,
		Timestamp:      sentAt,
	})
}

// MessageOf returns the payload of a MessageAdded event.
func MessageOf(e Event) (MessagePayload, bool) {
	p, ok := e.Payload.(MessagePayload)
	return p, ok
}

// -----------------------------------------------------------------------------
// Status Events
// -----------------------------------------------------------------------------

// StatusLevel classifies a status message for display.
type StatusLevel int

const (
	StatusInfo StatusLevel = iota
	StatusWarning
	StatusError
)

// String returns a human-readable name for a status level.
func (l StatusLevel) String() string {
	switch l {
	case StatusInfo:
		return "info"
	case StatusWarning:
		return "warning"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// StatusPayload is carried by StatusMessage.
type StatusPayload struct {
	Level  StatusLevel
	Text   string
	Source string // Component that raised it (e.g. "health", "sync")
}

// NewStatusMessage creates a StatusMessage event.
func NewStatusMessage(level StatusLevel, source, text string) Event {
	return New(StatusMessage, StatusPayload{Level: level, Text: text, Source: source})
}

// StatusOf returns the payload of a StatusMessage event.
func StatusOf(e Event) (StatusPayload, bool) {
	p, ok := e.Payload.(StatusPayload)
	return p, ok
}

// -----------------------------------------------------------------------------
// Plan Events
// -----------------------------------------------------------------------------

// PlanStatus is the lifecycle state of a plan.
type PlanStatus string

const (
	PlanPending   PlanStatus = "pending"
	PlanRunning   PlanStatus = "running"
	PlanCompleted PlanStatus = "completed"
	PlanFailed    PlanStatus = "failed"
)

// PlanPayload is carried by PlanUpdated.
type PlanPayload struct {
	PlanID string
	Status PlanStatus
	Detail string
}

// NewPlanUpdated creates a PlanUpdated event.
func NewPlanUpdated(planID string, status PlanStatus, detail string) Event {
	return New(PlanUpdated, PlanPayload{PlanID: planID, Status: status, Detail: detail})
}

// PlanOf returns the payload of a PlanUpdated event.
func PlanOf(e Event) (PlanPayload, bool) {
	p, ok := e.Payload.(PlanPayload)
	return p, ok
}

// -----------------------------------------------------------------------------
// Actionable Item Events
// -----------------------------------------------------------------------------

// ActionableItemAdded carries the added actionable.Item as its payload and
// ActionableItemRemoved carries the removed item's ID (string). The item type
// lives in package actionable, which builds these events itself.

// RemovedItemIDOf returns the item ID carried by an ActionableItemRemoved event.
func RemovedItemIDOf(e Event) (string, bool) {
	if e.Type != ActionableItemRemoved {
		return "", false
	}
	id, ok := e.Payload.(string)
	return id, ok
}
