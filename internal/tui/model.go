// Package tui is the bubbletea shell of notesync. The bubbletea event loop
// runs on the UI goroutine: every wake of the uithread.Loop becomes a
// message, and Update drains the loop, so bus deliveries and task
// continuations run between key presses and never concurrently with them.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/notesync/internal/actionable"
	"github.com/Iron-Ham/notesync/internal/app"
	"github.com/Iron-Ham/notesync/internal/config"
	"github.com/Iron-Ham/notesync/internal/dirty"
	"github.com/Iron-Ham/notesync/internal/event"
	"github.com/Iron-Ham/notesync/internal/tui/styles"
)

const maxMessages = 200

type focus int

const (
	focusNotes focus = iota
	focusItems
)

type statusLine struct {
	level event.StatusLevel
	text  string
	at    time.Time
}

// wakeMsg reports that the UI loop has queued work.
type wakeMsg struct{}

// Model is the root bubbletea model. It uses pointer receivers because bus
// handlers registered at construction update the same state Update reads.
type Model struct {
	core     *app.Core
	coord    *dirty.Coordinator
	prompter *modalPrompter
	items    *actionable.Mirror
	subs     []string

	styles    styles.Styles
	maxStatus int

	focus      focus
	noteCursor int
	itemCursor int
	editing    bool
	input      textinput.Model
	showHelp   bool

	messages []string
	status   []statusLine

	width    int
	height   int
	quitting bool
}

// New creates the shell over core. Call it on the goroutine that will run
// the bubbletea program.
func New(core *app.Core) (*Model, error) {
	prompter := &modalPrompter{}
	m := &Model{
		core:      core,
		prompter:  prompter,
		coord:     dirty.NewCoordinator(prompter, core.Logger),
		styles:    styles.ForTheme(core.Config.UI.Theme),
		maxStatus: core.Config.UI.MaxStatusLines,
		input:     textinput.New(),
	}
	m.input.Placeholder = "text to append"
	m.input.CharLimit = 500

	items, err := actionable.NewMirror(core.Registry, core.Bus, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to mirror actionable items: %w", err)
	}
	m.items = items
	m.items.OnChange(m.clampCursors)

	m.subs = append(m.subs,
		core.Bus.Subscribe(event.MessageAdded, m.onMessage),
		core.Bus.Subscribe(event.StatusMessage, m.onStatus),
		core.Bus.Subscribe(event.PlanUpdated, m.onPlan),
		core.Bus.Subscribe(event.ResourceUpdated, m.onSaved),
		core.Bus.Subscribe(event.ConfigChanged, m.onConfigChanged),
	)

	if notes := core.Notes.List(); len(notes) > 0 {
		m.coord.SetActive(notes[0])
	}
	m.coord.OnSwitch(func(_, next dirty.Resource) {
		if next != nil {
			m.addStatus(event.StatusInfo, "editing "+next.Title())
		}
	})
	return m, nil
}

// Close detaches the model from the bus.
func (m *Model) Close() {
	for _, id := range m.subs {
		m.core.Bus.Unsubscribe(id)
	}
	m.subs = nil
	m.items.Close()
}

// Init starts waiting for UI loop work.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(waitForWake(m.core.Loop.Wake()), textinput.Blink)
}

func waitForWake(wake <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-wake
		return wakeMsg{}
	}
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case wakeMsg:
		m.core.Loop.Drain()
		m.syncPrompt()
		return m, waitForWake(m.core.Loop.Wake())

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(msg.Width/2-8, 10)
		return m, nil

	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		if m.quitting {
			return m, tea.Quit
		}
		return m, cmd
	}

	if m.editing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	m.syncPrompt()
	if m.prompter.Showing() {
		m.handlePromptKey(msg)
		return nil
	}
	if m.editing {
		return m.handleEditKey(msg)
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		m.coord.RequestClose(func(d dirty.Decision) {
			if d.Allowed {
				m.quitting = true
			} else if d.Err != nil {
				m.addStatus(event.StatusError, d.Err.Error())
			}
		})
	case key.Matches(msg, Keys.Focus):
		if m.focus == focusNotes {
			m.focus = focusItems
		} else {
			m.focus = focusNotes
		}
	case key.Matches(msg, Keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, Keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, Keys.Execute):
		m.activate()
	case key.Matches(msg, Keys.Edit):
		return m.startEditing()
	case key.Matches(msg, Keys.Revert):
		if note := m.activeNote(); note != nil {
			note.Revert()
		}
	case key.Matches(msg, Keys.Save):
		if err := m.coord.Save(); err != nil {
			m.addStatus(event.StatusError, err.Error())
		}
	case key.Matches(msg, Keys.New):
		m.createNote()
	case key.Matches(msg, Keys.Help):
		m.showHelp = !m.showHelp
	}
	return nil
}

func (m *Model) handlePromptKey(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, PromptKeys.Save):
		m.prompter.Answer(dirty.ChoiceSave)
	case key.Matches(msg, PromptKeys.Discard):
		m.prompter.Answer(dirty.ChoiceDiscard)
	case key.Matches(msg, PromptKeys.Cancel):
		m.prompter.Answer(dirty.ChoiceCancel)
	}
}

func (m *Model) handleEditKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, EditKeys.Cancel):
		m.stopEditing()
		return nil
	case key.Matches(msg, EditKeys.Submit):
		if note := m.activeNote(); note != nil && m.input.Value() != "" {
			if note.Body() != "" {
				note.Append("\n")
			}
			note.Append(m.input.Value())
		}
		m.input.Reset()
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) startEditing() tea.Cmd {
	note := m.activeNote()
	if note == nil {
		return nil
	}
	if note.ReadOnly() {
		m.addStatus(event.StatusWarning, note.Title()+" is read-only")
		return nil
	}
	m.editing = true
	return m.input.Focus()
}

func (m *Model) stopEditing() {
	m.editing = false
	m.input.Blur()
	m.input.Reset()
}

// activate opens the selected note or executes the selected item.
func (m *Model) activate() {
	switch m.focus {
	case focusNotes:
		notes := m.core.Notes.List()
		if m.noteCursor < len(notes) {
			m.switchTo(notes[m.noteCursor])
		}
	case focusItems:
		item, ok := m.items.At(m.itemCursor)
		if !ok {
			return
		}
		if err := m.core.Registry.Execute(item); err != nil {
			m.addStatus(event.StatusError, err.Error())
		}
	}
}

func (m *Model) switchTo(note *app.Note) {
	if note == m.activeNote() {
		return
	}
	m.coord.RequestSwitch(note, func(d dirty.Decision) {
		switch {
		case d.Err != nil:
			m.addStatus(event.StatusError, d.Err.Error())
		case !d.Allowed && d.Prompted:
			m.addStatus(event.StatusInfo, "switch cancelled")
		}
	})
}

// createNote switches to a fresh note. The note is only added to the store
// once the switch is allowed, so a cancelled prompt leaves nothing behind.
func (m *Model) createNote() {
	note := m.core.Notes.Draft(fmt.Sprintf("Untitled %d", len(m.core.Notes.List())+1), "", false)
	m.coord.RequestSwitch(note, func(d dirty.Decision) {
		switch {
		case d.Allowed:
			m.core.Notes.Insert(note)
		case d.Err != nil:
			m.addStatus(event.StatusError, d.Err.Error())
		case d.Prompted:
			m.addStatus(event.StatusInfo, "new note cancelled")
		}
	})
}

// syncPrompt hides a modal whose request the coordinator has abandoned.
func (m *Model) syncPrompt() {
	if m.prompter.Showing() && !m.coord.Pending() {
		m.prompter.Dismiss()
	}
}

func (m *Model) activeNote() *app.Note {
	note, _ := m.coord.Active().(*app.Note)
	return note
}

func (m *Model) moveCursor(delta int) {
	switch m.focus {
	case focusNotes:
		m.noteCursor += delta
	case focusItems:
		m.itemCursor += delta
	}
	m.clampCursors()
}

func (m *Model) clampCursors() {
	m.noteCursor = clamp(m.noteCursor, len(m.core.Notes.List()))
	m.itemCursor = clamp(m.itemCursor, m.items.Len())
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	return min(i, n-1)
}

func (m *Model) onMessage(e event.Event) {
	msg, ok := event.MessageOf(e)
	if !ok {
		return
	}
	m.messages = append(m.messages, msg.Sender+": "+msg.Text)
	if over := len(m.messages) - maxMessages; over > 0 {
		m.messages = m.messages[over:]
	}
}

func (m *Model) onStatus(e event.Event) {
	if p, ok := event.StatusOf(e); ok {
		m.addStatus(p.Level, p.Text)
	}
}

func (m *Model) onPlan(e event.Event) {
	p, ok := event.PlanOf(e)
	if !ok {
		return
	}
	switch p.Status {
	case event.PlanFailed:
		m.addStatus(event.StatusError, "plan "+p.PlanID+" failed")
	case event.PlanCompleted:
		m.addStatus(event.StatusInfo, "plan "+p.PlanID+" completed")
	default:
		m.addStatus(event.StatusInfo, "plan "+p.PlanID+" "+string(p.Status))
	}
}

func (m *Model) onSaved(e event.Event) {
	if p, ok := event.ResourceOf(e); ok {
		m.addStatus(event.StatusInfo, "saved "+p.Title)
	}
}

func (m *Model) onConfigChanged(e event.Event) {
	cfg, ok := config.FromEvent(e)
	if !ok {
		return
	}
	m.styles = styles.ForTheme(cfg.UI.Theme)
	m.maxStatus = cfg.UI.MaxStatusLines
	m.addStatus(event.StatusInfo, "configuration reloaded")
}

func (m *Model) addStatus(level event.StatusLevel, text string) {
	m.status = append(m.status, statusLine{level: level, text: text, at: time.Now()})
	if over := len(m.status) - max(m.maxStatus, 1); over > 0 {
		m.status = m.status[over:]
	}
}
