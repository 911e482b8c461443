// Package sessions keeps the append-only study session log and derives
// statistics from it.
package sessions

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/studywith/internal/constants"
	"github.com/julianstephens/studywith/internal/logger"
	"github.com/julianstephens/studywith/internal/models"
	"github.com/julianstephens/studywith/internal/storage"
)

// Repository is the slice of storage.Provider the session log needs.
type Repository interface {
	LoadSessions() ([]models.SessionRecord, error)
	SaveSessions([]models.SessionRecord) error
	GetConfigPath() string
}

type Store struct {
	mu       sync.Mutex
	repo     Repository
	now      func() time.Time
	sessions []models.SessionRecord
	persist  error
}

type Option func(*Store)

// WithClock sets the clock used to decide what "today" is.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore loads the log from repo. A missing or unreadable log is
// treated as a fresh install.
func NewStore(repo Repository, opts ...Option) *Store {
	s := &Store{
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	sessions, err := repo.LoadSessions()
	if err != nil {
		if !errors.Is(err, storage.ErrNoData) {
			logger.Warn("Failed to load sessions, starting with an empty log", "path", repo.GetConfigPath(), "error", err)
		}
		sessions = nil
	}
	s.sessions = sessions
	return s
}

// AddSession appends rec and writes the whole log. The date is always
// taken from the start time. A write failure is logged and kept for
// LastPersistError; the record stays in memory either way.
func (s *Store) AddSession(rec models.SessionRecord) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.Date = rec.StartTime.Format(constants.DateFormat)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = append(s.sessions, rec)
	if err := s.repo.SaveSessions(s.sessions); err != nil {
		perr := &storage.PersistError{Op: "save sessions", Path: s.repo.GetConfigPath(), Err: err}
		logger.PersistFailure(perr, "count", len(s.sessions))
		s.persist = perr
		return
	}
	s.persist = nil
}

// LastPersistError returns the most recent write failure, or nil once a
// later write succeeded.
func (s *Store) LastPersistError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist
}

// AllSessions returns a copy of the log in insertion order.
func (s *Store) AllSessions() []models.SessionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.SessionRecord, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// RecentSessions returns up to limit records, newest start time first.
// Records with equal start times keep their log order.
func (s *Store) RecentSessions(limit int) []models.SessionRecord {
	if limit <= 0 {
		return []models.SessionRecord{}
	}
	sorted := s.AllSessions()
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.After(sorted[j].StartTime)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// Statistics recomputes the aggregates over the whole log.
func (s *Store) Statistics() models.Statistics {
	sessions := s.AllSessions()
	return Compute(sessions, s.now())
}
