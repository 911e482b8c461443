package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/studywith/internal/constants"
	"github.com/julianstephens/studywith/internal/models"
)

// JSONStore keeps sessions.json and progression.json side by side in one
// data directory.
type JSONStore struct {
	dir string
}

func NewJSONStore(dataDir string) *JSONStore {
	return &JSONStore{
		dir: dataDir,
	}
}

func (s *JSONStore) SessionsPath() string {
	return filepath.Join(s.dir, constants.SessionsFileName)
}

func (s *JSONStore) ProgressionPath() string {
	return filepath.Join(s.dir, constants.ProgressionFileName)
}

// Init creates the data directory and an empty session log if none exists.
func (s *JSONStore) Init() error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if _, err := os.Stat(s.SessionsPath()); os.IsNotExist(err) {
		return s.SaveSessions(nil)
	}
	return nil
}

// Load only makes sure the directory exists; a fresh install has no files yet.
func (s *JSONStore) Load() error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) LoadSessions() ([]models.SessionRecord, error) {
	data, err := os.ReadFile(s.SessionsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}

	var sessions []models.SessionRecord
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("failed to parse sessions: %w", err)
	}
	return sessions, nil
}

func (s *JSONStore) SaveSessions(sessions []models.SessionRecord) error {
	if sessions == nil {
		sessions = []models.SessionRecord{}
	}
	return writeJSON(s.SessionsPath(), sessions)
}

func (s *JSONStore) LoadProgression() (models.ProgressionRecord, error) {
	data, err := os.ReadFile(s.ProgressionPath())
	if err != nil {
		if os.IsNotExist(err) {
			return models.ProgressionRecord{}, ErrNoData
		}
		return models.ProgressionRecord{}, fmt.Errorf("failed to read progression: %w", err)
	}

	var rec models.ProgressionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return models.ProgressionRecord{}, fmt.Errorf("failed to parse progression: %w", err)
	}
	return rec, nil
}

func (s *JSONStore) SaveProgression(rec models.ProgressionRecord) error {
	return writeJSON(s.ProgressionPath(), rec)
}

func (s *JSONStore) GetConfigPath() string {
	return s.dir
}

// writeJSON writes through a temp file and a rename so a crash never
// leaves a half-written file behind.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", filepath.Base(path), err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
