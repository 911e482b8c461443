package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/studywith/internal/constants"
	"github.com/julianstephens/studywith/internal/models"
	"github.com/julianstephens/studywith/internal/storage"
)

func (s *Store) LoadProgression() (models.ProgressionRecord, error) {
	if s.db == nil {
		return models.ProgressionRecord{}, fmt.Errorf("database not loaded")
	}

	var points, stage, scrolls int
	err := s.db.QueryRow("SELECT points, stage, scrolls FROM progression WHERE id = 1").
		Scan(&points, &stage, &scrolls)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ProgressionRecord{}, storage.ErrNoData
	}
	if err != nil {
		return models.ProgressionRecord{}, fmt.Errorf("failed to read progression: %w", err)
	}

	rec := models.ProgressionRecord{
		Points:    &points,
		Stage:     &stage,
		Scrolls:   &scrolls,
		Inventory: make(map[constants.Slot]models.EquipmentRecord),
	}

	rows, err := s.db.Query("SELECT slot, name, base_power, enhancement FROM equipment")
	if err != nil {
		return models.ProgressionRecord{}, fmt.Errorf("failed to query equipment: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var slot, name string
		var base, enh int
		if err := rows.Scan(&slot, &name, &base, &enh); err != nil {
			return models.ProgressionRecord{}, fmt.Errorf("failed to scan equipment: %w", err)
		}
		rec.Inventory[constants.Slot(slot)] = models.EquipmentRecord{
			Slot:        constants.Slot(slot),
			Name:        &name,
			BasePower:   &base,
			Enhancement: &enh,
		}
	}
	return rec, rows.Err()
}

// SaveProgression upserts the single progression row and rewrites the
// equipment table. Absent record fields fall back to column defaults.
func (s *Store) SaveProgression(rec models.ProgressionRecord) error {
	if s.db == nil {
		return fmt.Errorf("database not loaded")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		INSERT INTO progression (id, points, stage, scrolls) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET points = excluded.points, stage = excluded.stage, scrolls = excluded.scrolls`,
		intOr(rec.Points, 0), intOr(rec.Stage, 1), intOr(rec.Scrolls, 0))
	if err != nil {
		return fmt.Errorf("failed to save progression: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM equipment"); err != nil {
		return fmt.Errorf("failed to clear equipment: %w", err)
	}
	for slot, item := range rec.Inventory {
		if item.Name == nil || item.BasePower == nil {
			continue
		}
		if _, err := tx.Exec("INSERT INTO equipment (slot, name, base_power, enhancement) VALUES (?, ?, ?, ?)",
			string(slot), *item.Name, *item.BasePower, intOr(item.Enhancement, 0)); err != nil {
			return fmt.Errorf("failed to save %s: %w", slot, err)
		}
	}

	return tx.Commit()
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
