// Package config resolves where studywith keeps its files and the tunable
// knobs of the progression game.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/julianstephens/studywith/internal/constants"
)

const (
	EnvDataDir = "STUDYWITH_DATA_DIR"
	EnvBackend = "STUDYWITH_BACKEND"
	EnvDebug   = "STUDYWITH_DEBUG"
)

type CloudConfig struct {
	BaseURL string `toml:"base_url"`
}

type BlockerConfig struct {
	Processes []string `toml:"processes"`
}

type Config struct {
	DataDir        string        `toml:"data_dir"`
	Backend        string        `toml:"backend"`
	PostgresURL    string        `toml:"postgres_url"`
	Debug          bool          `toml:"debug"`
	ScrollCost     int           `toml:"scroll_cost"`
	BattleVariance float64       `toml:"battle_variance"`
	PresetsDir     string        `toml:"presets_dir"`
	Cloud          CloudConfig   `toml:"cloud"`
	Blocker        BlockerConfig `toml:"blocker"`

	// path is the file the config was read from, empty for defaults.
	path string
	// file and resolved hold the overridable keys before and after
	// environment overrides and ~ expansion.
	file, resolved *overridable
}

type overridable struct {
	DataDir    string
	Backend    string
	PresetsDir string
	Debug      bool
}

func (c Config) snapshot() *overridable {
	return &overridable{DataDir: c.DataDir, Backend: c.Backend, PresetsDir: c.PresetsDir, Debug: c.Debug}
}

// Default returns the configuration used when no file is present.
func Default() Config {
	base := baseDir()
	return Config{
		DataDir:        filepath.Join(base, "data"),
		Backend:        constants.BackendJSON,
		ScrollCost:     constants.DefaultScrollCost,
		BattleVariance: constants.DefaultBattleVariance,
		PresetsDir:     filepath.Join(base, "presets"),
	}
}

// baseDir mirrors the per-platform application directory of the desktop app.
func baseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(appData, "StudyWith")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "StudyWith")
	default:
		xdg := os.Getenv("XDG_DATA_HOME")
		if xdg == "" {
			xdg = filepath.Join(home, ".local", "share")
		}
		return filepath.Join(xdg, "study-with")
	}
}

// DefaultPath is the config file location when none is given.
func DefaultPath() string {
	return filepath.Join(baseDir(), "config", constants.ConfigFileName)
}

// Load reads path (or DefaultPath when empty) over the defaults, then
// applies environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		cfg.path = path
	}
	cfg.file = cfg.snapshot()

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	cfg.DataDir = expandHome(cfg.DataDir)
	cfg.PresetsDir = expandHome(cfg.PresetsDir)
	cfg.resolved = cfg.snapshot()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvBackend); v != "" {
		c.Backend = strings.ToLower(v)
	}
	if v := os.Getenv(EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDebug, err)
		}
		c.Debug = debug
	}
	return nil
}

// Validate rejects values the engine cannot work with.
func (c Config) Validate() error {
	switch c.Backend {
	case constants.BackendJSON, constants.BackendSQLite, constants.BackendPostgres:
	default:
		return fmt.Errorf("unknown backend %q (use json, sqlite or postgres)", c.Backend)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir cannot be empty")
	}
	if c.ScrollCost <= 0 {
		return fmt.Errorf("scroll_cost must be positive, got %d", c.ScrollCost)
	}
	if c.BattleVariance < 0 || c.BattleVariance >= 1 {
		return fmt.Errorf("battle_variance must be in [0, 1), got %v", c.BattleVariance)
	}
	return nil
}

// Path returns the file the config was loaded from, or "" for defaults.
func (c Config) Path() string {
	return c.path
}

// fileValues undoes environment overrides and ~ expansion for keys the
// caller has not changed since Load.
func (c Config) fileValues() Config {
	if c.file == nil || c.resolved == nil {
		return c
	}
	out := c
	if c.DataDir == c.resolved.DataDir {
		out.DataDir = c.file.DataDir
	}
	if c.Backend == c.resolved.Backend {
		out.Backend = c.file.Backend
	}
	if c.PresetsDir == c.resolved.PresetsDir {
		out.PresetsDir = c.file.PresetsDir
	}
	if c.Debug == c.resolved.Debug {
		out.Debug = c.file.Debug
	}
	return out
}

// Save writes c as TOML to path, creating the directory. Values that came
// from the environment are written as they were in the file.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	if err := toml.NewEncoder(f).Encode(c.fileValues()); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
