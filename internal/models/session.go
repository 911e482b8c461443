package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/studywith/internal/constants"
	"github.com/julianstephens/studywith/internal/utils"
)

// SessionRecord is one finished focus session. Records are never edited
// after they are appended to the log.
type SessionRecord struct {
	ID                string    `json:"id,omitempty"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	TotalFocusMinutes int       `json:"total_focus_minutes"`
	TotalCycles       int       `json:"total_cycles"`
	CompletedCycles   int       `json:"completed_cycles"`
	FocusDuration     int       `json:"focus_duration"` // minutes per cycle
	BreakDuration     int       `json:"break_duration"` // minutes per cycle
	Date              string    `json:"date"`           // YYYY-MM-DD of StartTime
}

// NewSessionRecord builds a record with a fresh id and the date derived from start.
func NewSessionRecord(start, end time.Time, focusMinutes, totalCycles, completedCycles, focusDuration, breakDuration int) SessionRecord {
	return SessionRecord{
		ID:                uuid.New().String(),
		StartTime:         start,
		EndTime:           end,
		TotalFocusMinutes: focusMinutes,
		TotalCycles:       totalCycles,
		CompletedCycles:   completedCycles,
		FocusDuration:     focusDuration,
		BreakDuration:     breakDuration,
		Date:              start.Format(constants.DateFormat),
	}
}

// Completed reports whether every planned cycle was finished.
func (r SessionRecord) Completed() bool {
	return r.CompletedCycles == r.TotalCycles
}

type sessionRecordJSON struct {
	ID                string `json:"id,omitempty"`
	StartTime         string `json:"start_time"`
	EndTime           string `json:"end_time"`
	TotalFocusMinutes int    `json:"total_focus_minutes"`
	TotalCycles       int    `json:"total_cycles"`
	CompletedCycles   int    `json:"completed_cycles"`
	FocusDuration     int    `json:"focus_duration"`
	BreakDuration     int    `json:"break_duration"`
	Date              string `json:"date"`
}

func (r SessionRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(sessionRecordJSON{
		ID:                r.ID,
		StartTime:         utils.FormatTimestamp(r.StartTime),
		EndTime:           utils.FormatTimestamp(r.EndTime),
		TotalFocusMinutes: r.TotalFocusMinutes,
		TotalCycles:       r.TotalCycles,
		CompletedCycles:   r.CompletedCycles,
		FocusDuration:     r.FocusDuration,
		BreakDuration:     r.BreakDuration,
		Date:              r.Date,
	})
}

// UnmarshalJSON accepts offset-less timestamps (read as local time) and
// fills in Date from StartTime when it is missing.
func (r *SessionRecord) UnmarshalJSON(data []byte) error {
	var raw sessionRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	start, err := utils.ParseTimestamp(raw.StartTime, time.Local)
	if err != nil {
		return fmt.Errorf("start_time: %w", err)
	}
	end, err := utils.ParseTimestamp(raw.EndTime, time.Local)
	if err != nil {
		return fmt.Errorf("end_time: %w", err)
	}

	*r = SessionRecord{
		ID:                raw.ID,
		StartTime:         start,
		EndTime:           end,
		TotalFocusMinutes: raw.TotalFocusMinutes,
		TotalCycles:       raw.TotalCycles,
		CompletedCycles:   raw.CompletedCycles,
		FocusDuration:     raw.FocusDuration,
		BreakDuration:     raw.BreakDuration,
		Date:              raw.Date,
	}
	if r.Date == "" {
		r.Date = start.Format(constants.DateFormat)
	}
	return nil
}

// Statistics is derived from the session log on demand and never stored.
type Statistics struct {
	TotalSessions     int                `json:"total_sessions"`
	TotalFocusMinutes int                `json:"total_focus_minutes"`
	TotalFocusHours   float64            `json:"total_focus_hours"`
	TotalCycles       int                `json:"total_cycles"`
	CompletedSessions int                `json:"completed_sessions"`
	CurrentStreak     int                `json:"current_streak"`
	LongestStreak     int                `json:"longest_streak"`
	TotalScore        int                `json:"total_score"`
	Rank              constants.RankCode `json:"rank"`
	RankDisplay       string             `json:"rank_display"`
}
