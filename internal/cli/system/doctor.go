package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/studywith/internal/backup"
	"github.com/julianstephens/studywith/internal/cli"
	"github.com/julianstephens/studywith/internal/constants"
	"github.com/julianstephens/studywith/internal/keyring"
	"github.com/julianstephens/studywith/internal/migration"
	"github.com/julianstephens/studywith/internal/storage"
)

type DoctorCmd struct{}

type check struct {
	name      string
	run       func(ctx *cli.Context) error
	needsData bool
	warnOnly  bool
}

var checks = []check{
	{name: "Schema version", run: checkSchemaVersion, needsData: true},
	{name: "Session log", run: checkSessions, needsData: true},
	{name: "Progression", run: checkProgression, needsData: true},
	{name: "Backups present", run: checkBackupsPresent, warnOnly: true},
	{name: "OS keyring", run: checkKeyring, warnOnly: true},
	{name: "Clock/timezone", run: func(*cli.Context) error { return checkClockTimezone() }},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	reachable := false

	if err := ctx.Store.Load(); err != nil {
		fmt.Printf("❌ Storage reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Storage reachable: OK (%s)\n", ctx.Config.Backend)
		reachable = true
	}

	for _, c := range checks {
		if c.needsData && !reachable {
			fmt.Printf("⊘ %s: SKIPPED (storage not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		return fmt.Errorf("diagnostics found problems")
	}
	fmt.Println("All checks passed.")
	return nil
}

type schemaReporter interface {
	SchemaStatus() (migration.Status, error)
}

func checkSchemaVersion(ctx *cli.Context) error {
	sr, ok := ctx.Store.(schemaReporter)
	if !ok {
		// JSON store doesn't have schema version
		return nil
	}
	status, err := sr.SchemaStatus()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if status.Current > status.Latest {
		return fmt.Errorf("database schema version (%d) is newer than supported (%d), upgrade studywith", status.Current, status.Latest)
	}
	if !status.UpToDate() {
		return fmt.Errorf("%d pending migrations (current %d, latest %d), run 'studywith init'", status.Latest-status.Current, status.Current, status.Latest)
	}
	return nil
}

func checkSessions(ctx *cli.Context) error {
	records, err := ctx.Store.LoadSessions()
	if errors.Is(err, storage.ErrNoData) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read sessions: %w", err)
	}

	ids := make(map[string]bool)
	for _, r := range records {
		if r.ID != "" && ids[r.ID] {
			return fmt.Errorf("duplicate session ID found: %s", r.ID)
		}
		ids[r.ID] = true
		if r.EndTime.Before(r.StartTime) {
			return fmt.Errorf("session %s ends before it starts", r.ID)
		}
		if r.CompletedCycles > r.TotalCycles {
			return fmt.Errorf("session %s completed more cycles than planned", r.ID)
		}
	}
	return nil
}

func checkProgression(ctx *cli.Context) error {
	rec, err := ctx.Store.LoadProgression()
	if errors.Is(err, storage.ErrNoData) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read progression: %w", err)
	}
	var problems []error
	if rec.Points != nil && *rec.Points < 0 {
		problems = append(problems, fmt.Errorf("stored points (%d) are negative", *rec.Points))
	}
	if rec.Stage != nil && *rec.Stage < 1 {
		problems = append(problems, fmt.Errorf("stored stage (%d) is below 1", *rec.Stage))
	}
	if rec.Scrolls != nil && *rec.Scrolls < 0 {
		problems = append(problems, fmt.Errorf("stored scrolls (%d) are negative", *rec.Scrolls))
	}
	for _, slot := range constants.Slots {
		item, ok := rec.Inventory[slot]
		if ok && item.Enhancement != nil && *item.Enhancement < 0 {
			problems = append(problems, fmt.Errorf("%s enhancement (%d) is negative", slot, *item.Enhancement))
		}
	}
	return errors.Join(problems...)
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr, err := backup.ForBackend(ctx.Config.Backend, ctx.Config.DataDir)
	if err != nil {
		return err
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'studywith backup create'")
	}
	return nil
}

func checkKeyring(*cli.Context) error {
	if !keyring.IsAvailable() {
		return fmt.Errorf("OS keyring unavailable; cloud login and stored connection strings will not work")
	}
	return nil
}

func checkClockTimezone() error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if _, offset := now.Zone(); offset < -14*3600 || offset > 14*3600 {
		return fmt.Errorf("timezone offset out of range: %d seconds", offset)
	}
	return nil
}
