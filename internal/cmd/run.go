package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Iron-Ham/notesync/internal/app"
	"github.com/Iron-Ham/notesync/internal/config"
	"github.com/Iron-Ham/notesync/internal/event"
	"github.com/Iron-Ham/notesync/internal/logging"
	"github.com/Iron-Ham/notesync/internal/tui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the notesync shell",
	Long: `Start the notesync shell.

When stdout is a terminal the interactive shell is started. Otherwise, or
with --headless, notesync runs without a UI and prints every event it
delivers, which is useful for watching the simulated collaborators.`,
	RunE: runRun,
}

var (
	runHeadless bool
	runNoDemo   bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runHeadless, "headless", false, "run without the interactive shell")
	runCmd.Flags().BoolVar(&runNoDemo, "no-demo", false, "disable the simulated collaborators")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if runNoDemo {
		cfg.Demo.Enabled = false
	}

	logger := createLogger(cfg)
	defer func() { _ = logger.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	core := app.New(cfg, logger)
	seedNotes(core.Notes)
	core.Start(ctx)

	if runHeadless || !term.IsTerminal(int(os.Stdout.Fd())) {
		err = runHeadlessLoop(ctx, core, cmd.OutOrStdout())
	} else {
		err = runShell(ctx, core)
	}

	// Give running tasks their grace period, then flush what they posted.
	if shutdownErr := core.Shutdown(context.Background()); shutdownErr != nil {
		logger.Warn("shutdown did not complete cleanly", "error", shutdownErr)
	}
	core.Loop.Drain()
	return err
}

func runShell(ctx context.Context, core *app.Core) error {
	shell, err := tui.NewApp(core)
	if err != nil {
		return err
	}
	return shell.Run(ctx)
}

// runHeadlessLoop drives the UI loop on the calling goroutine and prints
// every delivered event until ctx is done.
func runHeadlessLoop(ctx context.Context, core *app.Core, out io.Writer) error {
	core.Bus.SubscribeAll(func(e event.Event) {
		fmt.Fprintf(out, "%s %-20s %s\n", e.Timestamp.Format(time.TimeOnly), e.Type, describe(e))
	})

	err := core.Loop.Run(ctx)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func describe(e event.Event) string {
	switch e.Type {
	case event.MessageAdded:
		if p, ok := event.MessageOf(e); ok {
			return p.Sender + ": " + p.Text
		}
	case event.StatusMessage:
		if p, ok := event.StatusOf(e); ok {
			return "[" + p.Level.String() + "] " + p.Text
		}
	case event.PlanUpdated:
		if p, ok := event.PlanOf(e); ok {
			return p.PlanID + " " + string(p.Status)
		}
	case event.ResourceAdded, event.ResourceUpdated, event.ResourceDeleted:
		if p, ok := event.ResourceOf(e); ok {
			return p.Kind + " " + p.Title
		}
	case event.ConfigChanged:
		if p, ok := event.ConfigOf(e); ok {
			return p.Path
		}
	case event.ActionableItemRemoved:
		if id, ok := event.RemovedItemIDOf(e); ok {
			return id
		}
	}
	return fmt.Sprintf("%v", e.Payload)
}

func seedNotes(store *app.NoteStore) {
	if len(store.List()) > 0 {
		return
	}
	store.Create("Welcome", `Welcome to notesync.

tab switches between notes and the attention list, enter opens a note or
acts on an item, a appends to the open note and w saves it.`, true)
	store.Create("Scratch", "", false)
}

// createLogger creates a logger if logging is enabled in config.
// Returns a NopLogger if logging is disabled or if creation fails.
func createLogger(cfg *config.Config) *logging.Logger {
	if !cfg.Logging.Enabled {
		return logging.NopLogger()
	}

	rotationConfig := logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		Compress:   cfg.Logging.Compress,
	}

	logger, err := logging.NewLoggerWithRotation(cfg.Logging.ResolveLogDir(), cfg.Logging.Level, rotationConfig)
	if err != nil {
		// Log creation failure shouldn't prevent the application from starting
		fmt.Fprintf(os.Stderr, "Warning: failed to create logger: %v\n", err)
		return logging.NopLogger()
	}
	return logger
}
