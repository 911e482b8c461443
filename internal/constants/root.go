package constants

import "time"

// Slot identifies one of the three fixed equipment slots.
type Slot string

// RankCode is the machine-readable tier name.
type RankCode string

const (
	AppName            = "studywith"
	DisplayName        = "Study With"
	Version            = "v0.3.0"
	DefaultKeyringUser = "database-connection"
	CloudKeyringUser   = "cloud-token"
	CloudNameKeyring   = "cloud-username"

	// DateFormat is the calendar-date format used in session records (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Data files
	SessionsFileName    = "sessions.json"
	ProgressionFileName = "progression.json"
	SQLiteFileName      = "studywith.db"
	ConfigFileName      = "config.toml"
	LogFileName         = "studywith.log"

	// Storage backends
	BackendJSON     = "json"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "studywith-"

	// Cloud
	CloudRequestTimeout = 10 * time.Second
	PresetFileSuffix    = ".txt"

	// Blocking presets
	DefaultPresetName  = "Default"
	LastPresetFileName = "last_preset.txt"

	// Equipment slots
	SlotBook   Slot = "book"
	SlotPencil Slot = "pencil"
	SlotLaptop Slot = "laptop"

	// Rank tiers
	RankBronze      RankCode = "BRONZE"
	RankSilver      RankCode = "SILVER"
	RankGold        RankCode = "GOLD"
	RankPlatinum    RankCode = "PLATINUM"
	RankDiamond     RankCode = "DIAMOND"
	RankMaster      RankCode = "MASTER"
	RankGrandmaster RankCode = "GRANDMASTER"
	RankChallenger  RankCode = "CHALLENGER"
	RankLegend      RankCode = "LEGEND"
)

// Slots lists the equipment slots in display order.
var Slots = []Slot{SlotBook, SlotPencil, SlotLaptop}
