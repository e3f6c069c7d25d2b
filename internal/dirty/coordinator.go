package dirty

import (
	"github.com/Iron-Ham/notesync/internal/errors"
	"github.com/Iron-Ham/notesync/internal/logging"
)

// Resource is an editable view's unsaved-change capability.
type Resource interface {
	IsDirty() bool
	Save() error
	Title() string
	Kind() string
}

// ReadOnly is implemented by resources that can be opened without editing.
type ReadOnly interface {
	ReadOnly() bool
}

// State is the coordinator's view of the active resource.
type State int

const (
	// Clean means there is nothing to lose by switching.
	Clean State = iota
	// Dirty means the active resource has unsaved edits.
	Dirty
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case Clean:
		return "clean"
	case Dirty:
		return "dirty"
	default:
		return "unknown"
	}
}

// Choice is the user's answer to a switch prompt.
type Choice int

const (
	// ChoiceCancel keeps the current resource active.
	ChoiceCancel Choice = iota
	// ChoiceSave saves the current resource, then switches if the save succeeds.
	ChoiceSave
	// ChoiceDiscard switches without saving.
	ChoiceDiscard
)

// String returns a human-readable name for the choice.
func (c Choice) String() string {
	switch c {
	case ChoiceCancel:
		return "cancel"
	case ChoiceSave:
		return "save"
	case ChoiceDiscard:
		return "discard"
	default:
		return "unknown"
	}
}

// Decision is the outcome of a switch request.
type Decision struct {
	Allowed  bool
	Prompted bool   // A prompt was shown
	Choice   Choice // Meaningful only when Prompted is true
	Err      error  // *errors.SaveError or errors.ErrPromptPending on denial
}

// Prompt describes a pending question for the user.
type Prompt struct {
	Current Resource
	Next    Resource // nil when the host is closing
}

// Closing reports whether the prompt guards closing rather than switching.
func (p Prompt) Closing() bool {
	return p.Next == nil
}

// Prompter asks the user what to do with unsaved edits. It may call answer
// synchronously or later; either way answer must be called on the UI
// goroutine. Answers after the first are ignored.
type Prompter interface {
	Prompt(p Prompt, answer func(Choice))
}

// PrompterFunc adapts a function to the Prompter interface.
type PrompterFunc func(p Prompt, answer func(Choice))

// Prompt calls f(p, answer).
func (f PrompterFunc) Prompt(p Prompt, answer func(Choice)) {
	f(p, answer)
}

type request struct {
	next     Resource
	done     func(Decision)
	answered bool
}

// Coordinator arbitrates switches away from the active resource of one host.
type Coordinator struct {
	active   Resource
	pending  *request
	prompter Prompter
	onSwitch func(prev, next Resource)
	logger   *logging.Logger
}

// NewCoordinator creates a Coordinator with no active resource.
// A nil logger is replaced with a no-op logger.
func NewCoordinator(prompter Prompter, logger *logging.Logger) *Coordinator {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Coordinator{
		prompter: prompter,
		logger:   logger.WithComponent("dirty-coordinator"),
	}
}

// OnSwitch sets a function called whenever the active resource changes.
func (c *Coordinator) OnSwitch(fn func(prev, next Resource)) {
	c.onSwitch = fn
}

// SetActive replaces the active resource unconditionally. Use it when the
// resource was replaced or closed by something other than a guarded
// request. A prompt still waiting for an answer is abandoned and its
// request denied.
func (c *Coordinator) SetActive(r Resource) {
	if req := c.pending; req != nil {
		req.answered = true
		c.pending = nil
		c.logger.Debug("pending switch prompt abandoned")
		req.done(Decision{Prompted: true, Choice: ChoiceCancel})
	}
	c.setActive(r)
}

func (c *Coordinator) setActive(r Resource) {
	prev := c.active
	c.active = r
	if c.onSwitch != nil {
		c.onSwitch(prev, r)
	}
}

// Active returns the active resource, or nil.
func (c *Coordinator) Active() Resource {
	return c.active
}

// State derives the current state from the active resource.
func (c *Coordinator) State() State {
	if isDirty(c.active) {
		return Dirty
	}
	return Clean
}

// Pending reports whether a prompt is waiting for an answer.
func (c *Coordinator) Pending() bool {
	return c.pending != nil
}

// Save saves the active resource. Clean and read-only resources are not
// saved.
func (c *Coordinator) Save() error {
	if !isDirty(c.active) {
		return nil
	}
	return c.save()
}

func (c *Coordinator) save() error {
	r := c.active
	if err := r.Save(); err != nil {
		c.logger.Warn("save failed",
			"title", r.Title(),
			"kind", r.Kind(),
			"error", err.Error(),
		)
		return errors.NewSaveError(r.Title(), r.Kind(), err)
	}
	c.logger.Debug("resource saved", "title", r.Title(), "kind", r.Kind())
	return nil
}

// RequestSwitch asks to make next the active resource (nil closes the
// host). done is called exactly once with the outcome, either before
// RequestSwitch returns or when the user answers the prompt. On an allowed
// decision next is already active when done runs.
func (c *Coordinator) RequestSwitch(next Resource, done func(Decision)) {
	if done == nil {
		done = func(Decision) {}
	}

	if c.pending != nil {
		c.logger.Debug("switch denied, prompt already pending")
		done(Decision{Err: errors.ErrPromptPending})
		return
	}

	if !isDirty(c.active) {
		c.setActive(next)
		done(Decision{Allowed: true})
		return
	}

	req := &request{next: next, done: done}
	c.pending = req
	c.logger.Debug("prompting before switch",
		"title", c.active.Title(),
		"kind", c.active.Kind(),
		"closing", next == nil,
	)
	c.prompter.Prompt(Prompt{Current: c.active, Next: next}, func(choice Choice) {
		c.answer(req, choice)
	})
}

// RequestClose is RequestSwitch(nil, done).
func (c *Coordinator) RequestClose(done func(Decision)) {
	c.RequestSwitch(nil, done)
}

func (c *Coordinator) answer(req *request, choice Choice) {
	if req.answered || c.pending != req {
		c.logger.Debug("ignoring stale prompt answer", "choice", choice.String())
		return
	}
	req.answered = true
	c.pending = nil

	decision := Decision{Prompted: true, Choice: choice}
	switch choice {
	case ChoiceSave:
		if err := c.save(); err != nil {
			decision.Err = err
			break
		}
		decision.Allowed = true
	case ChoiceDiscard:
		decision.Allowed = true
	default:
		decision.Choice = ChoiceCancel
	}

	if decision.Allowed {
		c.setActive(req.next)
	}
	c.logger.Debug("switch prompt answered",
		"choice", decision.Choice.String(),
		"allowed", decision.Allowed,
	)
	req.done(decision)
}

func isDirty(r Resource) bool {
	if r == nil {
		return false
	}
	if ro, ok := r.(ReadOnly); ok && ro.ReadOnly() {
		return false
	}
	return r.IsDirty()
}
