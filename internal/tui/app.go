package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/notesync/internal/app"
)

// App wraps the bubbletea program.
type App struct {
	core  *app.Core
	model *Model
}

// NewApp creates the shell application over core.
func NewApp(core *app.Core) (*App, error) {
	model, err := New(core)
	if err != nil {
		return nil, err
	}
	return &App{core: core, model: model}, nil
}

// Run runs the program until the user quits or ctx is cancelled. The calling
// goroutine becomes the UI goroutine for the duration.
func (a *App) Run(ctx context.Context) error {
	defer a.model.Close()

	program := tea.NewProgram(a.model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
