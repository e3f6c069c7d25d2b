package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete notesync configuration
type Config struct {
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Health  HealthConfig  `mapstructure:"health" yaml:"health"`
	Tasks   TasksConfig   `mapstructure:"tasks" yaml:"tasks"`
	UI      UIConfig      `mapstructure:"ui" yaml:"ui"`
	Demo    DemoConfig    `mapstructure:"demo" yaml:"demo"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether logging is active (default: true)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level is the minimum log level to record (default: "info")
	// Valid values: "debug", "info", "warn", "error"
	Level string `mapstructure:"level" yaml:"level"`
	// Dir is the directory for notesync.log (default: config directory)
	Dir string `mapstructure:"dir" yaml:"dir"`
	// MaxSizeMB is the maximum size of a single log file in megabytes (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is the maximum number of rotated log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
	// Compress gzips rotated log files (default: false)
	Compress bool `mapstructure:"compress" yaml:"compress"`
}

// HealthConfig controls the background service health poller
type HealthConfig struct {
	// Enabled starts the poller with the app (default: true)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// IntervalSeconds is the time between checks (default: 30)
	IntervalSeconds int `mapstructure:"interval_seconds" yaml:"interval_seconds"`
	// TimeoutSeconds bounds a single check (default: 5)
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// TasksConfig controls background task execution
type TasksConfig struct {
	// ShutdownTimeoutSeconds is how long to wait for running tasks on exit (default: 5)
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" yaml:"shutdown_timeout_seconds"`
}

// UIConfig controls the terminal UI
type UIConfig struct {
	// MaxStatusLines limits how many status messages are kept on screen (default: 5)
	MaxStatusLines int `mapstructure:"max_status_lines" yaml:"max_status_lines"`
	// Theme is the color theme (default: "default")
	// Options: "default", "nord", "dracula"
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// DemoConfig controls the built-in simulated collaborators
type DemoConfig struct {
	// Enabled starts simulated chat, friend requests and plan runs (default: true)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// MessageIntervalMs is the mean delay between simulated messages (default: 2500)
	MessageIntervalMs int `mapstructure:"message_interval_ms" yaml:"message_interval_ms"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			Dir:        "", // Empty means use ConfigDir()
			MaxSizeMB:  10,
			MaxBackups: 3,
			Compress:   false,
		},
		Health: HealthConfig{
			Enabled:         true,
			IntervalSeconds: 30,
			TimeoutSeconds:  5,
		},
		Tasks: TasksConfig{
			ShutdownTimeoutSeconds: 5,
		},
		UI: UIConfig{
			MaxStatusLines: 5,
			Theme:          "default",
		},
		Demo: DemoConfig{
			Enabled:           true,
			MessageIntervalMs: 2500,
		},
	}
}

// Interval returns the poll interval as a time.Duration
func (c *HealthConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// Timeout returns the per-check timeout as a time.Duration
func (c *HealthConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ShutdownTimeout returns the task shutdown grace period as a time.Duration
func (c *TasksConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// MessageInterval returns the simulated message interval as a time.Duration
func (c *DemoConfig) MessageInterval() time.Duration {
	return time.Duration(c.MessageIntervalMs) * time.Millisecond
}

// ResolveLogDir returns the log directory, defaulting to ConfigDir().
func (c *LoggingConfig) ResolveLogDir() string {
	if c.Dir == "" {
		return ConfigDir()
	}
	return expandHome(c.Dir)
}

func expandHome(path string) string {
	if path == "~" || (len(path) > 1 && path[:2] == "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)

	// Health defaults
	viper.SetDefault("health.enabled", defaults.Health.Enabled)
	viper.SetDefault("health.interval_seconds", defaults.Health.IntervalSeconds)
	viper.SetDefault("health.timeout_seconds", defaults.Health.TimeoutSeconds)

	// Task defaults
	viper.SetDefault("tasks.shutdown_timeout_seconds", defaults.Tasks.ShutdownTimeoutSeconds)

	// UI defaults
	viper.SetDefault("ui.max_status_lines", defaults.UI.MaxStatusLines)
	viper.SetDefault("ui.theme", defaults.UI.Theme)

	// Demo defaults
	viper.SetDefault("demo.enabled", defaults.Demo.Enabled)
	viper.SetDefault("demo.message_interval_ms", defaults.Demo.MessageIntervalMs)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration, falling back to defaults if the
// loaded configuration is invalid
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "notesync")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".notesync"
	}
	return filepath.Join(home, ".config", "notesync")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// ValidThemes returns the list of built-in UI themes
func ValidThemes() []string {
	return []string{"default", "nord", "dracula"}
}
