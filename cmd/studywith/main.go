package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/studywith/internal/cli"
	"github.com/julianstephens/studywith/internal/cli/backups"
	"github.com/julianstephens/studywith/internal/cli/cloudsync"
	"github.com/julianstephens/studywith/internal/cli/game"
	"github.com/julianstephens/studywith/internal/cli/presets"
	"github.com/julianstephens/studywith/internal/cli/study"
	"github.com/julianstephens/studywith/internal/cli/system"
	"github.com/julianstephens/studywith/internal/config"
	"github.com/julianstephens/studywith/internal/constants"
	apperrors "github.com/julianstephens/studywith/internal/errors"
	"github.com/julianstephens/studywith/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"path"`
	Debug   bool   `help:"Log debug output to stderr."`

	Init    system.InitCmd   `cmd:"" help:"Initialize studywith storage."`
	Doctor  system.DoctorCmd `cmd:"" help:"Run health checks and diagnostics."`
	Session struct {
		Add   study.SessionAddCmd   `cmd:"" help:"Record a finished study session."`
		List  study.SessionListCmd  `cmd:"" help:"List recent sessions." default:"1"`
		Stats study.SessionStatsCmd `cmd:"" help:"Show study statistics."`
	} `cmd:"" help:"Manage study sessions."`
	Rank   study.RankCmd `cmd:"" help:"Show your rank."`
	Points struct {
		Grant game.PointsGrantCmd `cmd:"" help:"Grant points for a session without recording it."`
		Add   game.PointsAddCmd   `cmd:"" help:"Add points directly."`
	} `cmd:"" help:"Manage points."`
	Scroll struct {
		Buy game.ScrollBuyCmd `cmd:"" help:"Buy enhancement scrolls with points."`
	} `cmd:"" help:"Manage enhancement scrolls."`
	Enhance  game.EnhanceCmd  `cmd:"" help:"Spend scrolls to enhance equipment."`
	Rates    game.RatesCmd    `cmd:"" help:"Show enhancement odds for a slot."`
	Power    game.PowerCmd    `cmd:"" help:"Show equipment power."`
	Advance  game.AdvanceCmd  `cmd:"" help:"Advance every stage your power already clears."`
	Snapshot game.SnapshotCmd `cmd:"" help:"Print the progression state as JSON."`
	Battle   struct {
		Fight  game.BattleFightCmd  `cmd:"" help:"Fight the next stage battle to the end." default:"1"`
		Status game.BattleStatusCmd `cmd:"" help:"Show the next stage battle."`
	} `cmd:"" help:"Fight stage battles."`
	Cloud struct {
		URL    cloudsync.CloudURLCmd    `cmd:"" name:"url" help:"Show or set the cloud server."`
		Login  cloudsync.CloudLoginCmd  `cmd:"" help:"Log in or register."`
		Logout cloudsync.CloudLogoutCmd `cmd:"" help:"Forget the stored login."`
		Upload cloudsync.CloudUploadCmd `cmd:"" help:"Upload score and rank."`
		Sync   cloudsync.CloudSyncCmd   `cmd:"" help:"Sync blocking presets."`
	} `cmd:"" help:"Cloud account and sync."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage data backups."`
	Blocker struct {
		Scan system.BlockerScanCmd `cmd:"" help:"Report running distracting processes."`
	} `cmd:"" help:"Distraction detection."`
	Preset struct {
		List presets.PresetListCmd `cmd:"" help:"List blocking presets." default:"1"`
		Save presets.PresetSaveCmd `cmd:"" help:"Save a blocking preset."`
		Show presets.PresetShowCmd `cmd:"" help:"Show a preset, by default the last one loaded."`
	} `cmd:"" help:"Manage blocking presets."`
}

// storageFree lists commands that run without loading study data.
var storageFree = []string{"init", "doctor", "backup", "blocker", "preset", "cloud url", "cloud login", "cloud logout", "cloud sync"}

func needsData(command string) bool {
	for _, prefix := range storageFree {
		if command == prefix || strings.HasPrefix(command, prefix+" ") {
			return false
		}
	}
	return true
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Study With: focus sessions, ranks and equipment progression"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		apperrors.Fatal(err)
	}
	if err := logger.Init(logger.Config{Debug: cfg.Debug || CLI.Debug, DataDir: cfg.DataDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	store, err := cli.NewStore(cfg)
	if err != nil {
		apperrors.Fatal(err)
	}
	appCtx := &cli.Context{
		Config: cfg,
		Store:  store,
	}

	if needsData(ctx.Command()) {
		if err := store.Load(); err != nil {
			apperrors.Fatal(err)
		}
		appCtx.Open()
	}

	err = ctx.Run(appCtx)
	if closeErr := store.Close(); closeErr != nil {
		logger.Warn("Failed to close storage", "error", closeErr)
	}
	apperrors.Fatal(err)
}
