package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c := New()
	require.NoError(t, c.Load(nil))

	assert.Equal(t, "info", c.LogLevel())
	assert.Equal(t, time.Second, c.MoveTime())
	assert.Equal(t, 50*time.Millisecond, c.SafetyMargin())
	assert.Equal(t, 16, c.EvalCacheMB())
	assert.Equal(t, 0, c.Depth())
	assert.Equal(t, 10, c.Games())
	assert.Equal(t, 2, c.Parallel())
	assert.Empty(t, c.Book())
	assert.Contains(t, c.AllSettings(), "engine")
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("CONNECTK_ENGINE_MOVETIME", "750")
	t.Setenv("CONNECTK_ARENA_GAMES", "4")

	c := New()
	require.NoError(t, c.Load([]string{"--movetime", "300", "--log-level", "debug"}))
	assert.Equal(t, 300*time.Millisecond, c.MoveTime())
	assert.Equal(t, 4, c.Games())
	assert.Equal(t, "debug", c.LogLevel())
}

func TestZeroSafetyMargin(t *testing.T) {
	c := New()
	require.NoError(t, c.Load([]string{"--safety-margin", "0"}))
	assert.Equal(t, time.Nanosecond, c.SafetyMargin())
}

func TestBookFromEnv(t *testing.T) {
	t.Setenv("CONNECTK_ENGINE_BOOK", "/tmp/openings.bin")

	c := New()
	require.NoError(t, c.Load(nil))
	assert.Equal(t, "/tmp/openings.bin", c.Book())
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "connectk.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  depth: 6\n  eval-cache-mb: 0\narena:\n  parallel: 4\n"), 0o644))

	c := New()
	require.NoError(t, c.Load([]string{"--config", path}))
	assert.Equal(t, 6, c.Depth())
	assert.Equal(t, 0, c.EvalCacheMB())
	assert.Equal(t, 4, c.Parallel())
}

func TestValidate(t *testing.T) {
	for _, args := range [][]string{
		{"--movetime", "0"},
		{"--depth", "-1"},
		{"--parallel", "0"},
		{"--log-level", "chatty"},
	} {
		err := New().Load(args)
		assert.True(t, errors.Is(err, ErrInvalid), "%v: %v", args, err)
	}
	assert.Error(t, New().Load([]string{"--no-such-flag"}))
}

func TestNewLogger(t *testing.T) {
	c := New()
	c.Set(KeyLogLevel, "warn")
	var buf bytes.Buffer
	logger := c.NewLogger(&buf, false)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)

	dbg := logger.Level(zerolog.DebugLevel)
	dbg.Debug().Msg("raised")
	assert.Contains(t, buf.String(), `"message":"raised"`)
}
