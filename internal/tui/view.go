package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/notesync/internal/event"
)

// Layout defaults used before the first WindowSizeMsg.
const (
	defaultWidth  = 100
	defaultHeight = 30
	sidebarWidth  = 28
)

// View renders the shell.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	width, height := m.width, m.height
	if width == 0 {
		width, height = defaultWidth, defaultHeight
	}

	if m.prompter.Showing() {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, m.renderPrompt())
	}

	mainWidth := max(width-2*sidebarWidth-6, 20)
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderNotes(sidebarWidth),
		m.renderEditor(mainWidth),
		m.renderItems(sidebarWidth),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(width),
		body,
		m.renderMessages(width),
		m.renderStatus(),
		m.renderHelp(),
	)
}

func (m *Model) renderHeader(width int) string {
	title := "notesync"
	if note := m.activeNote(); note != nil {
		title += " · " + note.Title()
		if note.IsDirty() {
			title += " " + m.styles.Dirty.Render("[modified]")
		}
	}
	health := "sync: off"
	if m.core.Health != nil {
		health = "sync: " + m.core.Health.Status().String()
	}
	right := fmt.Sprintf("%s · tasks: %d", health, m.core.Runner.InFlight())
	gap := max(width-lipgloss.Width(title)-lipgloss.Width(right)-2, 1)
	return m.styles.Header.Width(width).Render(title + strings.Repeat(" ", gap) + right)
}

func (m *Model) panel(focused bool) lipgloss.Style {
	if focused {
		return m.styles.Focused
	}
	return m.styles.Panel
}

func (m *Model) renderNotes(width int) string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Notes"))
	b.WriteString("\n")
	active := m.activeNote()
	for i, note := range m.core.Notes.List() {
		line := note.Title()
		if note.ReadOnly() {
			line += " (ro)"
		}
		if note == active {
			line = "› " + line
		} else {
			line = "  " + line
		}
		if note.IsDirty() {
			line += " *"
		}
		b.WriteString(m.renderRow(line, m.focus == focusNotes && i == m.noteCursor, width-4))
		b.WriteString("\n")
	}
	return m.panel(m.focus == focusNotes).Width(width).Render(strings.TrimRight(b.String(), "\n"))
}

func (m *Model) renderItems(width int) string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(fmt.Sprintf("Needs attention (%d)", m.items.Len())))
	b.WriteString("\n")
	if m.items.Len() == 0 {
		b.WriteString(m.styles.Muted.Render("nothing to do"))
	}
	for i, item := range m.items.Items() {
		b.WriteString(m.renderRow(item.Description, m.focus == focusItems && i == m.itemCursor, width-4))
		b.WriteString("\n")
	}
	return m.panel(m.focus == focusItems).Width(width).Render(strings.TrimRight(b.String(), "\n"))
}

func (m *Model) renderRow(text string, selected bool, width int) string {
	if runes := []rune(text); width > 1 && len(runes) > width {
		text = string(runes[:width-1]) + "…"
	}
	if selected {
		return m.styles.Selected.Render(text)
	}
	return m.styles.Item.Render(text)
}

func (m *Model) renderEditor(width int) string {
	note := m.activeNote()
	if note == nil {
		return m.styles.Panel.Width(width).Render(m.styles.Muted.Render("no note open"))
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render(note.Title()))
	b.WriteString("\n")
	if note.Body() == "" {
		b.WriteString(m.styles.Muted.Render("(empty)"))
	} else {
		b.WriteString(note.Body())
	}
	if m.editing {
		b.WriteString("\n\n")
		b.WriteString(m.input.View())
	}
	return m.panel(m.editing).Width(width).Render(b.String())
}

func (m *Model) renderMessages(width int) string {
	const shown = 5
	lines := m.messages
	if len(lines) > shown {
		lines = lines[len(lines)-shown:]
	}
	content := m.styles.Muted.Render("no messages yet")
	if len(lines) > 0 {
		content = strings.Join(lines, "\n")
	}
	return m.styles.Panel.Width(width - 2).Render(m.styles.Title.Render("Messages") + "\n" + content)
}

func (m *Model) renderStatus() string {
	lines := make([]string, 0, len(m.status))
	for _, s := range m.status {
		style := m.styles.Info
		switch s.level {
		case event.StatusWarning:
			style = m.styles.Warning
		case event.StatusError:
			style = m.styles.Error
		}
		lines = append(lines, style.Render(s.at.Format("15:04:05")+" "+s.text))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderPrompt() string {
	p := m.prompter.prompt
	if p == nil {
		return ""
	}
	question := fmt.Sprintf("%q has unsaved changes.", p.Current.Title())
	action := "Save before quitting?"
	if !p.Closing() {
		action = fmt.Sprintf("Save before switching to %q?", p.Next.Title())
	}
	return m.styles.Modal.Render(question + "\n" + action + "\n\n" + m.helpLine(PromptKeys.help()))
}

func (m *Model) renderHelp() string {
	if m.editing {
		return m.helpLine(EditKeys.help())
	}
	if !m.showHelp {
		return m.helpLine([]key.Binding{Keys.Help, Keys.Quit})
	}
	return m.helpLine(Keys.help())
}

func (m *Model) helpLine(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, m.styles.HelpKey.Render(h.Key)+" "+m.styles.HelpDesc.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}
