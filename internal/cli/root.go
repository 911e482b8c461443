package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/studywith/internal/backup"
	"github.com/julianstephens/studywith/internal/cloud"
	"github.com/julianstephens/studywith/internal/config"
	"github.com/julianstephens/studywith/internal/constants"
	"github.com/julianstephens/studywith/internal/keyring"
	"github.com/julianstephens/studywith/internal/logger"
	"github.com/julianstephens/studywith/internal/preset"
	"github.com/julianstephens/studywith/internal/progression"
	"github.com/julianstephens/studywith/internal/sessions"
	"github.com/julianstephens/studywith/internal/storage"
)

type Context struct {
	Config   config.Config
	Store    storage.Provider
	Sessions *sessions.Store
	Engine   *progression.Engine
}

// Open builds the session store and progression engine over a loaded Store.
func (c *Context) Open(opts ...progression.Option) {
	c.Sessions = sessions.NewStore(c.Store)
	c.Engine = progression.NewEngine(c.Store, opts...)
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	mgr, err := backup.ForBackend(c.Config.Backend, c.Config.DataDir)
	if err != nil {
		return
	}
	if _, err := mgr.CreateBackup(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// CloudClient returns a client for the configured server, logged in when
// the keyring holds a token.
func (c *Context) CloudClient() (*cloud.Client, error) {
	token, err := keyring.GetCloudToken()
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		logger.Warn("Failed to read cloud token", "error", err)
	}
	client := cloud.New(c.Config.Cloud.BaseURL, token)
	if !client.IsConfigured() {
		return nil, fmt.Errorf("%w: run 'studywith cloud url <server>' first", cloud.ErrNotConfigured)
	}
	return client, nil
}

// Presets opens the blocking preset directory, seeding the default preset
// when it is empty. The last loaded preset is remembered in the data directory.
func (c *Context) Presets() *preset.Dir {
	d := preset.NewDir(c.Config.PresetsDir, filepath.Join(c.Config.DataDir, constants.LastPresetFileName))
	if wrote, err := d.EnsureDefault(); err != nil {
		logger.Warn("Failed to seed the default preset", "dir", d.Path(), "error", err)
	} else if wrote {
		logger.Info("Seeded the default preset", "dir", d.Path())
	}
	return d
}

// ReportPersistError prints a warning when the last write of a session
// store or engine failed. State in memory is still correct.
func ReportPersistError(err error) {
	if err != nil {
		fmt.Printf("⚠ Warning: changes were not saved: %v\n", err)
	}
}

// ConfigPath returns where config changes are written.
func (c *Context) ConfigPath() string {
	if p := c.Config.Path(); p != "" {
		return p
	}
	return config.DefaultPath()
}

// PrintJSON writes v to stdout as indented JSON.
func PrintJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
