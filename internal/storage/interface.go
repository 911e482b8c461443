package storage

import (
	"errors"

	"github.com/julianstephens/studywith/internal/models"
)

// ErrNoData is returned by loaders when nothing has been persisted yet.
var ErrNoData = errors.New("no persisted data")

// Provider persists the session log and the progression state. The two
// are independent: a failure writing one never affects the other.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Sessions are always written as the full ordered list
	LoadSessions() ([]models.SessionRecord, error)
	SaveSessions([]models.SessionRecord) error

	// Progression
	LoadProgression() (models.ProgressionRecord, error)
	SaveProgression(models.ProgressionRecord) error

	// Utils
	GetConfigPath() string
}
