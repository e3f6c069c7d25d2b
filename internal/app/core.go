// Package app wires the notesync core together. Everything process-wide is
// built once by New and passed explicitly; nothing here is global.
package app

import (
	"context"
	"sync"

	"github.com/Iron-Ham/notesync/internal/actionable"
	"github.com/Iron-Ham/notesync/internal/asynctask"
	"github.com/Iron-Ham/notesync/internal/config"
	"github.com/Iron-Ham/notesync/internal/event"
	"github.com/Iron-Ham/notesync/internal/health"
	"github.com/Iron-Ham/notesync/internal/logging"
	"github.com/Iron-Ham/notesync/internal/uithread"
)

// Core holds the shared infrastructure every view and collaborator uses.
type Core struct {
	Config   *config.Config
	Logger   *logging.Logger
	Loop     *uithread.Loop
	Bus      *event.Bus
	Runner   *asynctask.Runner
	Registry *actionable.Registry
	Notes    *NoteStore

	Simulator *Simulator     // nil when the demo is disabled
	Health    *health.Poller // nil when health polling is disabled

	cancel  context.CancelFunc
	workers sync.WaitGroup
	once    sync.Once
}

// New builds a Core from cfg. A nil logger is replaced with a no-op logger.
func New(cfg *config.Config, logger *logging.Logger) *Core {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.NopLogger()
	}

	loop := uithread.New(logger)
	bus := event.NewBus(loop, logger)
	runner := asynctask.NewRunner(loop, logger)
	reg := actionable.NewRegistry(bus, logger)

	c := &Core{
		Config:   cfg,
		Logger:   logger,
		Loop:     loop,
		Bus:      bus,
		Runner:   runner,
		Registry: reg,
		Notes:    NewNoteStore(bus),
	}

	if cfg.Demo.Enabled {
		c.Simulator = NewSimulator(bus, reg, runner, cfg.Demo.MessageInterval(), logger)
	}
	if cfg.Health.Enabled {
		check := health.Check(alwaysUp)
		if c.Simulator != nil {
			check = c.Simulator.SyncCheck
		}
		c.Health = health.NewPoller("sync", check, cfg.Health.Interval(), cfg.Health.Timeout(), bus, logger)
	}
	return c
}

func alwaysUp(context.Context) error { return nil }

// Start launches the background collaborators. The caller keeps driving the
// UI loop, either with Loop.Run or by draining it from its own event loop.
func (c *Core) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)

	if c.Health != nil {
		c.workers.Go(func() { _ = c.Health.Run(ctx) })
	}
	if c.Simulator != nil {
		c.workers.Go(func() { _ = c.Simulator.Run(ctx) })
	}
	if config.Watch(c.Bus, c.Logger) {
		c.Logger.Info("watching config file for changes")
	}

	c.Logger.Info("core started",
		"demo", c.Simulator != nil,
		"health", c.Health != nil,
	)
}

// Shutdown stops the collaborators, waits for running tasks up to the
// configured grace period and closes the UI loop. Continuations still queued
// can be flushed with a final Loop.Drain.
func (c *Core) Shutdown(ctx context.Context) error {
	var err error
	c.once.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}
		c.workers.Wait()

		if timeout := c.Config.Tasks.ShutdownTimeout(); timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		err = c.Runner.Shutdown(ctx)
		c.Loop.Close()
		c.Logger.Info("core stopped", "in_flight", c.Runner.InFlight())
	})
	return err
}
