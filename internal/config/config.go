// Package config loads settings from flags, CONNECTK_ environment
// variables and an optional YAML file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Setting keys
const (
	KeyConfigFile       = "config"
	KeyLogLevel         = "log-level"
	KeyDataDir          = "data-dir"
	KeyEngineMoveTime   = "engine.movetime"
	KeyEngineDepth      = "engine.depth"
	KeyEngineMargin     = "engine.safety-margin"
	KeyEngineEvalCache  = "engine.eval-cache-mb"
	KeyEngineBook       = "engine.book"
	KeyArenaGames       = "arena.games"
	KeyArenaParallel    = "arena.parallel"
	envPrefix           = "CONNECTK"
	defaultMoveTimeMS   = 1000
	defaultMarginMS     = 50
	defaultEvalCacheMB  = 16
	defaultArenaGames   = 10
	defaultArenaWorkers = 2
)

// ErrInvalid is wrapped by validation errors.
var ErrInvalid = errors.New("invalid configuration")

// Config wraps a viper instance with typed getters.
type Config struct {
	v *viper.Viper
}

// New returns a configuration holding only defaults.
func New() *Config {
	v := viper.New()
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyDataDir, "")
	v.SetDefault(KeyEngineMoveTime, defaultMoveTimeMS)
	v.SetDefault(KeyEngineDepth, 0)
	v.SetDefault(KeyEngineMargin, defaultMarginMS)
	v.SetDefault(KeyEngineEvalCache, defaultEvalCacheMB)
	v.SetDefault(KeyEngineBook, "")
	v.SetDefault(KeyArenaGames, defaultArenaGames)
	v.SetDefault(KeyArenaParallel, defaultArenaWorkers)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return &Config{v: v}
}

// flagKeys maps command-line flags to setting keys.
var flagKeys = map[string]string{
	"config":        KeyConfigFile,
	"log-level":     KeyLogLevel,
	"data-dir":      KeyDataDir,
	"movetime":      KeyEngineMoveTime,
	"depth":         KeyEngineDepth,
	"safety-margin": KeyEngineMargin,
	"eval-cache-mb": KeyEngineEvalCache,
	"book":          KeyEngineBook,
	"games":         KeyArenaGames,
	"parallel":      KeyArenaParallel,
}

// AddFlags registers the flags on fs. Defaults shown in help come from c.
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "YAML config file")
	fs.String("log-level", c.v.GetString(KeyLogLevel), "debug, info, warn, error or disabled")
	fs.String("data-dir", "", "directory for the match database (default: platform data dir)")
	fs.Int("movetime", c.v.GetInt(KeyEngineMoveTime), "milliseconds per move")
	fs.Int("depth", c.v.GetInt(KeyEngineDepth), "maximum search depth, 0 for none")
	fs.Int("safety-margin", c.v.GetInt(KeyEngineMargin), "milliseconds kept in reserve each move")
	fs.Int("eval-cache-mb", c.v.GetInt(KeyEngineEvalCache), "evaluation cache size in MB, 0 disables it")
	fs.String("book", "", "opening book file")
	fs.Int("games", c.v.GetInt(KeyArenaGames), "arena games to play")
	fs.Int("parallel", c.v.GetInt(KeyArenaParallel), "arena games to run at once")
}

// BindFlags binds the flags registered by AddFlags to their keys and reads
// the config file if one was named.
func (c *Config) BindFlags(fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := c.v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	if path := c.v.GetString(KeyConfigFile); path != "" {
		c.v.SetConfigFile(path)
		c.v.SetConfigType("yaml")
		if err := c.v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}
	return c.Validate()
}

// Load parses args as flags and binds them.
func (c *Config) Load(args []string) error {
	fs := pflag.NewFlagSet("connectk", pflag.ContinueOnError)
	c.AddFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	return c.BindFlags(fs)
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.v.GetInt(KeyEngineMoveTime) < 1:
		return fmt.Errorf("%w: %s must be at least 1", ErrInvalid, KeyEngineMoveTime)
	case c.v.GetInt(KeyEngineDepth) < 0:
		return fmt.Errorf("%w: %s must not be negative", ErrInvalid, KeyEngineDepth)
	case c.v.GetInt(KeyEngineMargin) < 0:
		return fmt.Errorf("%w: %s must not be negative", ErrInvalid, KeyEngineMargin)
	case c.v.GetInt(KeyEngineEvalCache) < 0:
		return fmt.Errorf("%w: %s must not be negative", ErrInvalid, KeyEngineEvalCache)
	case c.v.GetInt(KeyArenaGames) < 1:
		return fmt.Errorf("%w: %s must be at least 1", ErrInvalid, KeyArenaGames)
	case c.v.GetInt(KeyArenaParallel) < 1:
		return fmt.Errorf("%w: %s must be at least 1", ErrInvalid, KeyArenaParallel)
	}
	if _, err := ParseLevel(c.LogLevel()); err != nil {
		return err
	}
	return nil
}

// Set overrides a key.
func (c *Config) Set(key string, value any) { c.v.Set(key, value) }

func (c *Config) GetString(key string) string { return c.v.GetString(key) }
func (c *Config) GetInt(key string) int       { return c.v.GetInt(key) }

// AllSettings returns every key with its effective value.
func (c *Config) AllSettings() map[string]any { return c.v.AllSettings() }

func (c *Config) LogLevel() string { return c.v.GetString(KeyLogLevel) }
func (c *Config) DataDir() string  { return c.v.GetString(KeyDataDir) }
func (c *Config) Depth() int       { return c.v.GetInt(KeyEngineDepth) }
func (c *Config) EvalCacheMB() int { return c.v.GetInt(KeyEngineEvalCache) }
func (c *Config) Book() string     { return c.v.GetString(KeyEngineBook) }
func (c *Config) Games() int       { return c.v.GetInt(KeyArenaGames) }
func (c *Config) Parallel() int    { return c.v.GetInt(KeyArenaParallel) }

// MoveTime is the per-move budget.
func (c *Config) MoveTime() time.Duration {
	return time.Duration(c.v.GetInt(KeyEngineMoveTime)) * time.Millisecond
}

// SafetyMargin is the time reserved at the end of each move. A setting of
// 0 yields 1ns; a zero margin in the search limits selects the default.
func (c *Config) SafetyMargin() time.Duration {
	ms := c.v.GetInt(KeyEngineMargin)
	if ms == 0 {
		return time.Nanosecond
	}
	return time.Duration(ms) * time.Millisecond
}
