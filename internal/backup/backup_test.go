package backup

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/studywith/internal/constants"
)

func writeJSONData(t *testing.T, dir, sessions string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, constants.SessionsFileName), []byte(sessions), 0644); err != nil {
		t.Fatalf("failed to write sessions: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, constants.ProgressionFileName), []byte(`{"points": 5}`), 0644); err != nil {
		t.Fatalf("failed to write progression: %v", err)
	}
}

func setupTestDB(t *testing.T, dir string) string {
	t.Helper()
	dbPath := filepath.Join(dir, constants.SQLiteFileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE test_data (id INTEGER PRIMARY KEY, value INTEGER)`); err != nil {
		t.Fatalf("failed to create test table: %v", err)
	}
	if _, err := db.Exec("INSERT INTO test_data (id, value) VALUES (1, 100), (2, 200)"); err != nil {
		t.Fatalf("failed to insert test data: %v", err)
	}
	return dbPath
}

// stepClock returns a clock that advances one minute per call.
func stepClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		t := current
		current = current.Add(time.Minute)
		return t
	}
}

func TestForBackend(t *testing.T) {
	tests := []struct {
		backend string
		files   int
		wantErr bool
	}{
		{constants.BackendJSON, 2, false},
		{constants.BackendSQLite, 1, false},
		{constants.BackendPostgres, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			mgr, err := ForBackend(tt.backend, t.TempDir())
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ForBackend failed: %v", err)
			}
			if len(mgr.files) != tt.files {
				t.Errorf("expected %d files, got %d", tt.files, len(mgr.files))
			}
		})
	}
}

func TestCreateBackupJSON(t *testing.T) {
	dir := t.TempDir()
	writeJSONData(t, dir, `[]`)

	mgr, _ := ForBackend(constants.BackendJSON, dir)
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(backupPath), constants.BackupFilePrefix) {
		t.Errorf("unexpected backup name: %s", backupPath)
	}
	for _, name := range []string{constants.SessionsFileName, constants.ProgressionFileName} {
		if _, err := os.Stat(filepath.Join(backupPath, name)); err != nil {
			t.Errorf("expected %s in backup: %v", name, err)
		}
	}
}

func TestCreateBackupPartialFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, constants.SessionsFileName), []byte(`[]`), 0644); err != nil {
		t.Fatal(err)
	}

	mgr, _ := ForBackend(constants.BackendJSON, dir)
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(backupPath, constants.ProgressionFileName)); !os.IsNotExist(err) {
		t.Error("missing data file should not appear in backup")
	}
}

func TestCreateBackupNothingToBackUp(t *testing.T) {
	mgr, _ := ForBackend(constants.BackendJSON, t.TempDir())
	if _, err := mgr.CreateBackup(); err == nil {
		t.Fatal("expected error when no data files exist")
	}
}

func TestCreateBackupSQLite(t *testing.T) {
	dir := t.TempDir()
	setupTestDB(t, dir)

	mgr, _ := ForBackend(constants.BackendSQLite, dir)
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(backupPath, constants.SQLiteFileName))
	if err != nil {
		t.Fatalf("failed to open backup database: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM test_data").Scan(&count); err != nil {
		t.Fatalf("failed to query backup database: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 rows in backup, got %d", count)
	}
}

func TestCreateBackupSameSecond(t *testing.T) {
	dir := t.TempDir()
	writeJSONData(t, dir, `[]`)

	mgr, _ := ForBackend(constants.BackendJSON, dir)
	fixed := time.Date(2024, 1, 5, 10, 0, 0, 0, time.Local)
	mgr.now = func() time.Time { return fixed }

	first, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("first backup failed: %v", err)
	}
	second, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("second backup failed: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct backup paths")
	}
	if !strings.HasSuffix(second, "-1") {
		t.Errorf("expected counter suffix, got %s", second)
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 2 {
		t.Fatalf("expected 2 backups, got %d", len(backups))
	}
}

func TestBackupRotation(t *testing.T) {
	dir := t.TempDir()
	writeJSONData(t, dir, `[]`)

	mgr, _ := ForBackend(constants.BackendJSON, dir)
	mgr.now = stepClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local))

	for i := 0; i < constants.MaxBackups+3; i++ {
		if _, err := mgr.CreateBackup(); err != nil {
			t.Fatalf("CreateBackup %d failed: %v", i, err)
		}
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != constants.MaxBackups {
		t.Fatalf("expected %d backups after rotation, got %d", constants.MaxBackups, len(backups))
	}
	oldestKept := time.Date(2024, 1, 1, 9, 3, 0, 0, time.Local)
	if !backups[len(backups)-1].Timestamp.Equal(oldestKept) {
		t.Errorf("expected oldest kept backup at %v, got %v", oldestKept, backups[len(backups)-1].Timestamp)
	}
}

func TestListBackups(t *testing.T) {
	dir := t.TempDir()
	writeJSONData(t, dir, `[]`)

	mgr, _ := ForBackend(constants.BackendJSON, dir)

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected no backups, got %d", len(backups))
	}

	mgr.now = stepClock(time.Date(2024, 3, 1, 8, 0, 0, 0, time.Local))
	for i := 0; i < 3; i++ {
		if _, err := mgr.CreateBackup(); err != nil {
			t.Fatalf("CreateBackup failed: %v", err)
		}
	}
	// unrelated entries are ignored
	if err := os.WriteFile(filepath.Join(mgr.GetBackupDir(), "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	backups, err = mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("expected 3 backups, got %d", len(backups))
	}
	for i := 0; i < len(backups)-1; i++ {
		if backups[i].Timestamp.Before(backups[i+1].Timestamp) {
			t.Error("backups not sorted newest first")
		}
	}
	if len(backups[0].Files) != 2 || backups[0].Size == 0 {
		t.Errorf("unexpected backup info: %+v", backups[0])
	}
}

func TestRestoreBackup(t *testing.T) {
	dir := t.TempDir()
	writeJSONData(t, dir, `[{"id":"a"}]`)

	mgr, _ := ForBackend(constants.BackendJSON, dir)
	mgr.now = stepClock(time.Date(2024, 2, 1, 12, 0, 0, 0, time.Local))

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	sessionsPath := filepath.Join(dir, constants.SessionsFileName)
	if err := os.WriteFile(sessionsPath, []byte(`[]`), 0644); err != nil {
		t.Fatal(err)
	}

	if err := mgr.RestoreBackup(backupPath); err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}

	data, err := os.ReadFile(sessionsPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `[{"id":"a"}]` {
		t.Errorf("expected restored sessions, got %s", data)
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 2 {
		t.Errorf("expected a pre-restore backup, got %d backups", len(backups))
	}
}

func TestRestoreBackupSQLite(t *testing.T) {
	dir := t.TempDir()
	dbPath := setupTestDB(t, dir)

	mgr, _ := ForBackend(constants.BackendSQLite, dir)
	mgr.now = stepClock(time.Date(2024, 2, 1, 12, 0, 0, 0, time.Local))
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("DELETE FROM test_data"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	if err := mgr.RestoreBackup(backupPath); err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}

	db, err = sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM test_data").Scan(&count); err != nil {
		t.Fatalf("failed to query restored database: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 rows after restore, got %d", count)
	}
}

func TestRestoreBackupRejectsCorrupt(t *testing.T) {
	dir := t.TempDir()
	writeJSONData(t, dir, `[]`)

	mgr, _ := ForBackend(constants.BackendJSON, dir)
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(backupPath, constants.SessionsFileName), []byte(`{not json`), 0644); err != nil {
		t.Fatal(err)
	}

	if err := mgr.RestoreBackup(backupPath); err == nil {
		t.Fatal("expected error restoring corrupt backup")
	}
	data, _ := os.ReadFile(filepath.Join(dir, constants.SessionsFileName))
	if string(data) != `[]` {
		t.Errorf("current data should be untouched, got %s", data)
	}
}

func TestRestoreBackupMissing(t *testing.T) {
	mgr, _ := ForBackend(constants.BackendJSON, t.TempDir())
	if err := mgr.RestoreBackup(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing backup")
	}
}
