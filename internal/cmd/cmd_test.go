package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iron-Ham/notesync/internal/app"
	"github.com/Iron-Ham/notesync/internal/config"
	"github.com/Iron-Ham/notesync/internal/event"
)

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err = root.Execute()
	return buf.String(), err
}

// isolateConfig points the config search path at an empty temp directory
// and resets viper around the test.
func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Chdir(dir)

	viper.Reset()
	configInitForce = false
	t.Cleanup(viper.Reset)
	return filepath.Join(dir, "notesync", "config.yaml")
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "notesync", rootCmd.Use)

	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "config"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}

	sub := make(map[string]bool)
	for _, c := range configCmd.Commands() {
		sub[c.Name()] = true
	}
	for _, want := range []string{"show", "init", "validate", "path"} {
		assert.True(t, sub[want], "missing config subcommand %q", want)
	}
}

func TestConfigPath(t *testing.T) {
	path := isolateConfig(t)

	out, err := executeCommand(rootCmd, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, path, strings.TrimSpace(out))
}

func TestConfigInit(t *testing.T) {
	path := isolateConfig(t)

	out, err := executeCommand(rootCmd, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, path)

	cfg, err := config.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	_, err = executeCommand(rootCmd, "config", "init")
	assert.Error(t, err, "init must not overwrite an existing file")

	_, err = executeCommand(rootCmd, "config", "init", "--force")
	assert.NoError(t, err)
}

func TestConfigShow(t *testing.T) {
	isolateConfig(t)
	t.Setenv("NOTESYNC_UI_THEME", "nord")

	out, err := executeCommand(rootCmd, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "(none - using defaults)")
	assert.Contains(t, out, "health:")
	assert.Contains(t, out, "theme: nord")
}

func TestConfigValidate(t *testing.T) {
	dir := filepath.Dir(isolateConfig(t))
	require.NoError(t, os.MkdirAll(dir, 0o755))

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("ui:\n  theme: dracula\n"), 0o644))
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("ui:\n  max_status_lines: 0\n"), 0o644))

	out, err := executeCommand(rootCmd, "config", "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")

	_, err = executeCommand(rootCmd, "config", "validate", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_status_lines")

	out, err = executeCommand(rootCmd, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "defaults and environment")
}

func TestSeedNotes(t *testing.T) {
	core := app.New(testConfig(), nil)
	defer func() { _ = core.Shutdown(context.Background()) }()

	seedNotes(core.Notes)
	notes := core.Notes.List()
	require.Len(t, notes, 2)
	assert.True(t, notes[0].ReadOnly())
	assert.False(t, notes[1].ReadOnly())

	seedNotes(core.Notes)
	assert.Len(t, core.Notes.List(), 2, "seeding is skipped when notes exist")
}

func TestRunHeadlessLoop(t *testing.T) {
	core := app.New(testConfig(), nil)
	defer func() { _ = core.Shutdown(context.Background()) }()

	var out syncBuffer
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runHeadlessLoop(ctx, core, &out) }()

	core.Bus.Publish(event.NewMessageAdded("general", "chen", "lunch?", time.Now()))
	core.Bus.Publish(event.NewStatusMessage(event.StatusError, "health", "sync unavailable"))

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "sync unavailable")
	}, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Contains(t, out.String(), "chen: lunch?")
	assert.Contains(t, out.String(), "[error] sync unavailable")
}

func TestCreateLogger(t *testing.T) {
	cfg := testConfig()
	cfg.Logging.Enabled = false
	assert.NotNil(t, createLogger(cfg))

	cfg.Logging.Enabled = true
	cfg.Logging.Dir = t.TempDir()
	logger := createLogger(cfg)
	logger.Info("hello")
	require.NoError(t, logger.Close())

	_, err := os.Stat(filepath.Join(cfg.Logging.Dir, "notesync.log"))
	assert.NoError(t, err)
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Demo.Enabled = false
	cfg.Health.Enabled = false
	return cfg
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
