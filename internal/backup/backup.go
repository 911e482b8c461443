package backup

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/studywith/internal/constants"
	"github.com/julianstephens/studywith/internal/logger"
)

const timestampFormat = "20060102-150405"

// BackupInfo contains information about one backup snapshot.
type BackupInfo struct {
	Path      string
	Timestamp time.Time
	Size      int64
	Files     []string
}

// Manager snapshots the data files of one data directory into
// <dataDir>/backups/studywith-<timestamp>/.
type Manager struct {
	dataDir   string
	backupDir string
	files     []string
	now       func() time.Time
}

// NewManager backs up the named files (relative to dataDir).
func NewManager(dataDir string, files ...string) *Manager {
	return &Manager{
		dataDir:   dataDir,
		backupDir: filepath.Join(dataDir, constants.BackupDirName),
		files:     files,
		now:       time.Now,
	}
}

// ForBackend returns a manager for the files a storage backend keeps in dataDir.
func ForBackend(backend, dataDir string) (*Manager, error) {
	switch backend {
	case constants.BackendJSON:
		return NewManager(dataDir, constants.SessionsFileName, constants.ProgressionFileName), nil
	case constants.BackendSQLite:
		return NewManager(dataDir, constants.SQLiteFileName), nil
	default:
		return nil, fmt.Errorf("backups are not supported for the %s backend, use the database's own tooling", backend)
	}
}

// Files returns the absolute paths of the data files the manager covers.
func (m *Manager) Files() []string {
	paths := make([]string, len(m.files))
	for i, name := range m.files {
		paths[i] = filepath.Join(m.dataDir, name)
	}
	return paths
}

func (m *Manager) GetBackupDir() string {
	return m.backupDir
}

// CreateBackup snapshots every data file that exists. It fails when
// none of them do.
func (m *Manager) CreateBackup() (string, error) {
	return m.createBackup(false)
}

// skipRotation keeps a pre-restore snapshot from rotating away the backup being restored.
func (m *Manager) createBackup(skipRotation bool) (string, error) {
	var present []string
	for _, name := range m.files {
		if _, err := os.Stat(filepath.Join(m.dataDir, name)); err == nil {
			present = append(present, name)
		}
	}
	if len(present) == 0 {
		return "", fmt.Errorf("nothing to back up in %s", m.dataDir)
	}

	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	timestamp := m.now().Format(timestampFormat)
	dest := filepath.Join(m.backupDir, constants.BackupFilePrefix+timestamp)
	for counter := 1; ; counter++ {
		if _, err := os.Stat(dest); os.IsNotExist(err) {
			break
		}
		if counter > 100 {
			return "", fmt.Errorf("failed to generate unique backup name")
		}
		dest = filepath.Join(m.backupDir, fmt.Sprintf("%s%s-%d", constants.BackupFilePrefix, timestamp, counter))
	}

	if err := os.MkdirAll(dest, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}
	for _, name := range present {
		if err := copyDataFile(filepath.Join(m.dataDir, name), filepath.Join(dest, name)); err != nil {
			_ = os.RemoveAll(dest)
			return "", fmt.Errorf("failed to back up %s: %w", name, err)
		}
	}

	if !skipRotation {
		if err := m.rotateBackups(); err != nil {
			logger.Warn("Failed to rotate old backups", "error", err)
		}
	}
	logger.Info("Backup created", "path", dest, "files", len(present))
	return dest, nil
}

// copyDataFile uses VACUUM INTO for SQLite databases and a plain copy otherwise.
func copyDataFile(src, dst string) error {
	if filepath.Ext(src) != ".db" {
		return copyFile(src, dst)
	}

	srcDB, err := sql.Open("sqlite", src+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer srcDB.Close()

	var count int
	if err := srcDB.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}
	if _, err := srcDB.Exec("VACUUM INTO ?", dst); err != nil {
		srcDB.Close()
		return copyFile(src, dst)
	}
	return nil
}

// ListBackups returns all snapshots, newest first.
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	if _, err := os.Stat(m.backupDir); os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}

	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || !strings.HasPrefix(name, constants.BackupFilePrefix) {
			continue
		}

		stamp := strings.TrimPrefix(name, constants.BackupFilePrefix)
		if len(stamp) > len(timestampFormat) {
			// drop the -N counter
			stamp = stamp[:len(timestampFormat)]
		}
		timestamp, err := time.ParseInLocation(timestampFormat, stamp, time.Local)
		if err != nil {
			continue
		}

		info := BackupInfo{Path: filepath.Join(m.backupDir, name), Timestamp: timestamp}
		files, err := os.ReadDir(info.Path)
		if err != nil {
			continue
		}
		for _, f := range files {
			if fi, err := f.Info(); err == nil && !f.IsDir() {
				info.Size += fi.Size()
				info.Files = append(info.Files, f.Name())
			}
		}
		backups = append(backups, info)
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Path > backups[j].Path
		}
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

func (m *Manager) rotateBackups() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}
	for i := constants.MaxBackups; i < len(backups); i++ {
		if err := os.RemoveAll(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// RestoreBackup copies a snapshot's files back into the data directory,
// snapshotting the current files first. Every file is verified before
// anything is replaced.
func (m *Manager) RestoreBackup(backupPath string) error {
	info, err := os.Stat(backupPath)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("backup does not exist: %s", backupPath)
	}

	var toRestore []string
	for _, name := range m.files {
		path := filepath.Join(backupPath, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := verifyFile(path); err != nil {
			return fmt.Errorf("backup file %s is corrupted or invalid: %w", name, err)
		}
		toRestore = append(toRestore, name)
	}
	if len(toRestore) == 0 {
		return fmt.Errorf("backup %s contains no data files", filepath.Base(backupPath))
	}

	if current, err := m.createBackup(true); err == nil {
		logger.Info("Backed up current data before restore", "path", current)
	}

	for _, name := range toRestore {
		target := filepath.Join(m.dataDir, name)
		tempPath := target + ".restore.tmp"
		if err := copyFile(filepath.Join(backupPath, name), tempPath); err != nil {
			return fmt.Errorf("failed to copy %s: %w", name, err)
		}
		if err := os.Rename(tempPath, target); err != nil {
			if removeErr := os.Remove(tempPath); removeErr != nil {
				logger.Warn("Failed to remove temporary file", "path", tempPath, "error", removeErr)
			}
			return fmt.Errorf("failed to restore %s: %w", name, err)
		}
	}
	return nil
}

// verifyFile checks that a JSON file parses or that a .db file is a SQLite database.
func verifyFile(path string) error {
	if filepath.Ext(path) == ".db" {
		db, err := sql.Open("sqlite", path)
		if err != nil {
			return err
		}
		defer db.Close()
		var count int
		return db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if !json.Valid(data) {
		return fmt.Errorf("not valid JSON")
	}
	return nil
}

func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := destFile.ReadFrom(sourceFile); err != nil {
		return err
	}
	return destFile.Sync()
}
