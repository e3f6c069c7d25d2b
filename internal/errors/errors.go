// Package errors provides centralized error definitions and error handling utilities
// for the notesync synchronization core. It defines the failure taxonomy of the
// core (subscriber failures, task failures, save failures), sentinel errors, and
// classification helpers used by the presentation layer to decide what to show.
//
// # Error Types
//
//   - SubscriberError: an event handler panicked during delivery. Always isolated
//     and logged; it never reaches the publisher.
//   - TaskFailure: a background operation returned an error or panicked. Delivered
//     to the task's failure continuation, or logged when none is registered.
//   - SaveError: a resource failed to save during a guarded switch. The switch is
//     denied and the error is surfaced to whoever requested it.
//
// Duplicate item adds and unknown item removals are not errors at all; the
// registry treats them as silent no-ops.
//
// # Usage
//
//	var saveErr *errors.SaveError
//	if errors.As(decision.Err, &saveErr) {
//	    showStatus(saveErr.Title + " could not be saved")
//	}
//
//	if errors.IsUserFacing(err) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

var (
	// ErrLoopClosed indicates a task was posted to a UI loop that has been closed.
	ErrLoopClosed = New("ui loop closed")
	// ErrPromptPending indicates a navigation request was denied because another
	// prompt is already outstanding for the same resource host.
	ErrPromptPending = New("a switch prompt is already pending")
	// ErrNoAction indicates an actionable item was executed without an action.
	ErrNoAction = New("actionable item has no action")
	// ErrTaskCancelled indicates a task observed its cancellation flag.
	ErrTaskCancelled = New("task cancelled")
	// ErrItemNotFound indicates an actionable item id is not in the registry.
	ErrItemNotFound = New("actionable item not found")
	// ErrInvalidPattern indicates an event subscription pattern did not compile.
	ErrInvalidPattern = New("invalid subscription pattern")
)

// -----------------------------------------------------------------------------
// Base Error
// -----------------------------------------------------------------------------

// CoreError is implemented by every typed error in this package.
type CoreError interface {
	error
	Unwrap() error
	Severity() Severity
	IsUserFacing() bool
}

type baseError struct {
	message    string
	cause      error
	severity   Severity
	userFacing bool
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Unwrap() error      { return e.cause }
func (e *baseError) Severity() Severity { return e.severity }
func (e *baseError) IsUserFacing() bool { return e.userFacing }

// -----------------------------------------------------------------------------
// Subscriber Errors
// -----------------------------------------------------------------------------

// SubscriberError records a panic raised by an event handler during delivery.
//
// Example:
//
//	err := errors.NewSubscriberError("message.added", "a3", recovered)
//	fmt.Println(err) // "subscriber error [event=message.added, subscription=a3]: handler panicked: boom"
type SubscriberError struct {
	baseError
	EventType      string
	SubscriptionID string
	Recovered      any
}

// NewSubscriberError creates a SubscriberError from a recovered panic value.
func NewSubscriberError(eventType, subscriptionID string, recovered any) *SubscriberError {
	var cause error
	switch r := recovered.(type) {
	case error:
		cause = r
	default:
		cause = fmt.Errorf("%v", r)
	}
	return &SubscriberError{
		baseError: baseError{
			message:  "handler panicked",
			cause:    cause,
			severity: SeverityError,
		},
		EventType:      eventType,
		SubscriptionID: subscriptionID,
		Recovered:      recovered,
	}
}

// Error returns the formatted error message.
func (e *SubscriberError) Error() string {
	var parts []string
	if e.EventType != "" {
		parts = append(parts, "event="+e.EventType)
	}
	if e.SubscriptionID != "" {
		parts = append(parts, "subscription="+e.SubscriptionID)
	}
	return formatWithContext("subscriber error", parts, &e.baseError)
}

// -----------------------------------------------------------------------------
// Task Failures
// -----------------------------------------------------------------------------

// TaskFailure wraps the error produced by a background operation.
type TaskFailure struct {
	baseError
	TaskID   string
	Panicked bool
}

// NewTaskFailure creates a TaskFailure for the given task.
func NewTaskFailure(taskID string, cause error) *TaskFailure {
	return &TaskFailure{
		baseError: baseError{
			message:    "task failed",
			cause:      cause,
			severity:   SeverityWarning,
			userFacing: true,
		},
		TaskID: taskID,
	}
}

// WithPanic marks the failure as originating from a recovered panic.
func (e *TaskFailure) WithPanic() *TaskFailure {
	e.Panicked = true
	e.message = "task panicked"
	e.severity = SeverityError
	e.userFacing = false
	return e
}

// Error returns the formatted error message.
func (e *TaskFailure) Error() string {
	var parts []string
	if e.TaskID != "" {
		parts = append(parts, "task="+e.TaskID)
	}
	return formatWithContext("task failure", parts, &e.baseError)
}

// -----------------------------------------------------------------------------
// Save Errors
// -----------------------------------------------------------------------------

// SaveError is returned when a resource fails to save during a guarded switch.
type SaveError struct {
	baseError
	Title string
	Kind  string
}

// NewSaveError creates a SaveError for the named resource.
func NewSaveError(title, kind string, cause error) *SaveError {
	return &SaveError{
		baseError: baseError{
			message:    "save failed",
			cause:      cause,
			severity:   SeverityError,
			userFacing: true,
		},
		Title: title,
		Kind:  kind,
	}
}

// Error returns the formatted error message.
func (e *SaveError) Error() string {
	var parts []string
	if e.Kind != "" {
		parts = append(parts, "kind="+e.Kind)
	}
	if e.Title != "" {
		parts = append(parts, fmt.Sprintf("title=%q", e.Title))
	}
	return formatWithContext("save error", parts, &e.baseError)
}

func formatWithContext(prefix string, parts []string, b *baseError) string {
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", prefix, strings.Join(parts, ", "))
	}
	if b.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, b.message, b.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, b.message)
}

// -----------------------------------------------------------------------------
// Classification
// -----------------------------------------------------------------------------

// IsUserFacing returns true if the error message is safe to display to end users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	var coreErr CoreError
	if As(err, &coreErr) {
		return coreErr.IsUserFacing()
	}
	return Is(err, ErrPromptPending) || Is(err, ErrTaskCancelled)
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement CoreError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}
	var coreErr CoreError
	if As(err, &coreErr) {
		return coreErr.Severity()
	}
	if Is(err, ErrTaskCancelled) || Is(err, ErrPromptPending) {
		return SeverityInfo
	}
	return SeverityError
}

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
