package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/notesync/internal/event"
	"github.com/Iron-Ham/notesync/internal/logging"
)

// Publisher announces configuration changes. *event.Bus implements it.
type Publisher interface {
	Publish(e event.Event) bool
}

// Watch starts watching the config file viper loaded and publishes
// ConfigChanged on every valid change. It returns false when no config file
// is in use. Viper delivers file events on its own goroutine; subscribers
// still run on the UI goroutine because the bus marshals them there.
func Watch(pub Publisher, logger *logging.Logger) bool {
	if viper.ConfigFileUsed() == "" {
		return false
	}
	viper.OnConfigChange(ChangeHandler(pub, logger))
	viper.WatchConfig()
	return true
}

// ChangeHandler returns the callback Watch registers with viper. It runs on
// viper's watcher goroutine, which is the only goroutine that reads viper
// after startup; the loaded Config travels in the ConfigChanged payload. A
// change that fails validation is reported as a warning status message and
// does not publish ConfigChanged, so subscribers never see an invalid config.
func ChangeHandler(pub Publisher, logger *logging.Logger) func(fsnotify.Event) {
	if logger == nil {
		logger = logging.NopLogger()
	}
	logger = logger.WithComponent("config-watch")

	return func(e fsnotify.Event) {
		cfg, err := Load()
		if err != nil {
			logger.Warn("config change rejected",
				"path", e.Name,
				"op", e.Op.String(),
				"error", err.Error(),
			)
			pub.Publish(event.NewStatusMessage(event.StatusWarning, "config",
				"config reload rejected: "+err.Error()))
			return
		}
		logger.Info("config reloaded", "path", e.Name, "op", e.Op.String())
		pub.Publish(event.NewConfigChanged(e.Name, e.Op.String(), cfg))
	}
}

// FromEvent returns the configuration carried by a ConfigChanged event.
func FromEvent(e event.Event) (*Config, bool) {
	p, ok := event.ConfigOf(e)
	if !ok {
		return nil, false
	}
	cfg, ok := p.Config.(*Config)
	return cfg, ok && cfg != nil
}
