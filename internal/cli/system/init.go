package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/studywith/internal/backup"
	"github.com/julianstephens/studywith/internal/cli"
	"github.com/julianstephens/studywith/internal/storage"
)

type InitCmd struct {
	Force  bool   `help:"Delete existing data files before initialization."`
	Source string `help:"Migrate data from another store: a JSON data directory, a .db file, or a PostgreSQL connection string."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.removeExisting(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized studywith storage (%s) at: %s\n", ctx.Config.Backend, ctx.Store.GetConfigPath())

	if c.Source != "" {
		fmt.Printf("Migrating data from: %s\n", c.Source)
		if err := c.migrateData(ctx, c.Source); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("Migration completed successfully!")
	}

	return nil
}

func (c *InitCmd) removeExisting(ctx *cli.Context) error {
	mgr, err := backup.ForBackend(ctx.Config.Backend, ctx.Config.DataDir)
	if err != nil {
		return fmt.Errorf("--force is only supported for file backends: %w", err)
	}

	for _, path := range mgr.Files() {
		// Don't delete if it's the source (user error protection)
		if c.Source != "" && samePath(path, c.Source) {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", path)
		}
	}

	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close existing store: %w", err)
	}
	for _, path := range mgr.Files() {
		if _, err := os.Stat(path); err == nil {
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("failed to delete %s: %w", path, err)
			}
			fmt.Printf("Deleted existing data file: %s\n", path)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing data file: %w", err)
		}
	}
	return nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB || filepath.Dir(absA) == absB
}

func (c *InitCmd) migrateData(ctx *cli.Context, source string) error {
	sourceStore, err := cli.OpenSource(source)
	if err != nil {
		return err
	}
	if sourceStore.GetConfigPath() == ctx.Store.GetConfigPath() {
		return fmt.Errorf("source and destination are the same store")
	}

	if err := sourceStore.Load(); err != nil {
		return fmt.Errorf("failed to load source store: %w", err)
	}
	defer sourceStore.Close()

	fmt.Println("  Migrating sessions...")
	records, err := sourceStore.LoadSessions()
	switch {
	case errors.Is(err, storage.ErrNoData):
		fmt.Println("    No sessions found")
	case err != nil:
		return fmt.Errorf("failed to read sessions from source: %w", err)
	default:
		if err := ctx.Store.SaveSessions(records); err != nil {
			return fmt.Errorf("failed to save sessions to destination: %w", err)
		}
		fmt.Printf("    Migrated %d sessions\n", len(records))
	}

	fmt.Println("  Migrating progression...")
	rec, err := sourceStore.LoadProgression()
	switch {
	case errors.Is(err, storage.ErrNoData):
		fmt.Println("    No progression found")
	case err != nil:
		return fmt.Errorf("failed to read progression from source: %w", err)
	default:
		if err := ctx.Store.SaveProgression(rec); err != nil {
			return fmt.Errorf("failed to save progression to destination: %w", err)
		}
		fmt.Println("    Migrated progression")
	}

	return nil
}
