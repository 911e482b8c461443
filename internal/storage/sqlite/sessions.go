package sqlite

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/studywith/internal/models"
	"github.com/julianstephens/studywith/internal/utils"
)

func (s *Store) LoadSessions() ([]models.SessionRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not loaded")
	}

	rows, err := s.db.Query(`
		SELECT id, start_time, end_time, total_focus_minutes, total_cycles,
			completed_cycles, focus_duration, break_duration, date
		FROM sessions ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.SessionRecord
	for rows.Next() {
		var r models.SessionRecord
		var start, end string
		if err := rows.Scan(&r.ID, &start, &end, &r.TotalFocusMinutes, &r.TotalCycles,
			&r.CompletedCycles, &r.FocusDuration, &r.BreakDuration, &r.Date); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if r.StartTime, err = utils.ParseTimestamp(start, time.Local); err != nil {
			return nil, fmt.Errorf("session %s: %w", r.ID, err)
		}
		if r.EndTime, err = utils.ParseTimestamp(end, time.Local); err != nil {
			return nil, fmt.Errorf("session %s: %w", r.ID, err)
		}
		sessions = append(sessions, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if sessions == nil {
		sessions = []models.SessionRecord{}
	}
	return sessions, nil
}

// SaveSessions replaces the whole log in one transaction, keeping order in seq.
func (s *Store) SaveSessions(sessions []models.SessionRecord) error {
	if s.db == nil {
		return fmt.Errorf("database not loaded")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM sessions"); err != nil {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO sessions (id, seq, start_time, end_time, total_focus_minutes,
			total_cycles, completed_cycles, focus_duration, break_duration, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range sessions {
		id := r.ID
		if id == "" {
			id = uuid.New().String()
		}
		if _, err := stmt.Exec(id, i, utils.FormatTimestamp(r.StartTime), utils.FormatTimestamp(r.EndTime),
			r.TotalFocusMinutes, r.TotalCycles, r.CompletedCycles, r.FocusDuration, r.BreakDuration, r.Date); err != nil {
			return fmt.Errorf("failed to insert session %d: %w", i, err)
		}
	}

	return tx.Commit()
}
