package cloud

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/julianstephens/studywith/internal/constants"
	"github.com/julianstephens/studywith/internal/logger"
)

// SyncResult counts what SyncPresetsDir moved.
type SyncResult struct {
	Uploaded   int
	Downloaded int
}

// SyncPresetsDir uploads every *.txt preset in dir, then downloads the
// server presets that have no local file. Local files are never
// overwritten.
func (c *Client) SyncPresetsDir(ctx context.Context, dir string) (SyncResult, error) {
	var res SyncResult
	if !c.IsLoggedIn() {
		return res, ErrNotLoggedIn
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return res, fmt.Errorf("failed to create presets directory: %w", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*"+constants.PresetFileSuffix))
	if err != nil {
		return res, err
	}
	sort.Strings(matches)

	for _, path := range matches {
		content, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("Skipping unreadable preset", "path", path, "error", err)
			continue
		}
		name := strings.TrimSuffix(filepath.Base(path), constants.PresetFileSuffix)
		if err := c.PutPreset(ctx, name, string(content)); err != nil {
			return res, fmt.Errorf("upload %s: %w", name, err)
		}
		res.Uploaded++
	}

	remote, err := c.ListPresets(ctx)
	if err != nil {
		return res, fmt.Errorf("list presets: %w", err)
	}
	for _, item := range remote {
		name := strings.TrimSpace(item.Name)
		if name == "" || strings.ContainsAny(name, `/\`) {
			continue
		}
		local := filepath.Join(dir, name+constants.PresetFileSuffix)
		if _, err := os.Stat(local); err == nil {
			continue
		}
		preset, err := c.GetPreset(ctx, name)
		if err != nil {
			return res, fmt.Errorf("download %s: %w", name, err)
		}
		if err := os.WriteFile(local, []byte(preset.Content), 0600); err != nil {
			logger.Warn("Failed to write preset", "path", local, "error", err)
			continue
		}
		res.Downloaded++
	}
	return res, nil
}
