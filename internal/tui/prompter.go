package tui

import (
	"github.com/Iron-Ham/notesync/internal/dirty"
)

// modalPrompter shows the unsaved-changes question as a modal and answers it
// from a later key press. It lives on the UI goroutine.
type modalPrompter struct {
	prompt *dirty.Prompt
	answer func(dirty.Choice)
}

func (p *modalPrompter) Prompt(pr dirty.Prompt, answer func(dirty.Choice)) {
	p.prompt = &pr
	p.answer = answer
}

// Showing reports whether a prompt is waiting for an answer.
func (p *modalPrompter) Showing() bool {
	return p.answer != nil
}

// Answer resolves the shown prompt. It is a no-op when none is shown.
func (p *modalPrompter) Answer(c dirty.Choice) {
	if p.answer == nil {
		return
	}
	answer := p.answer
	p.prompt, p.answer = nil, nil
	answer(c)
}

// Dismiss hides the modal without answering. Used when the coordinator has
// already abandoned the request.
func (p *modalPrompter) Dismiss() {
	p.prompt, p.answer = nil, nil
}
