package models

import "github.com/julianstephens/studywith/internal/constants"

// Equipment is one inventory slot. Power is derived, see progression.Power.
type Equipment struct {
	Slot        constants.Slot `json:"slot"`
	Name        string         `json:"name"`
	BasePower   int            `json:"base_power"`
	Enhancement int            `json:"enhancement"`
}

// ProgressionState is everything the progression engine persists.
type ProgressionState struct {
	Points    int                          `json:"points"`
	Stage     int                          `json:"stage"`
	Scrolls   int                          `json:"scrolls"`
	Inventory map[constants.Slot]Equipment `json:"inventory"`
}

// EquipmentRecord is a slot as found in storage. Nil fields were absent
// and take the compiled-in default when merged.
type EquipmentRecord struct {
	Slot        constants.Slot `json:"slot,omitempty"`
	Name        *string        `json:"name,omitempty"`
	BasePower   *int           `json:"base_power,omitempty"`
	Enhancement *int           `json:"enhancement,omitempty"`
}

// ProgressionRecord is the possibly partial persisted form of ProgressionState.
type ProgressionRecord struct {
	Points    *int                                `json:"points,omitempty"`
	Stage     *int                                `json:"stage,omitempty"`
	Scrolls   *int                                `json:"scrolls,omitempty"`
	Inventory map[constants.Slot]EquipmentRecord `json:"inventory,omitempty"`
}

// Record converts a full state into its persisted form.
func (s ProgressionState) Record() ProgressionRecord {
	points, stage, scrolls := s.Points, s.Stage, s.Scrolls
	rec := ProgressionRecord{
		Points:    &points,
		Stage:     &stage,
		Scrolls:   &scrolls,
		Inventory: make(map[constants.Slot]EquipmentRecord, len(s.Inventory)),
	}
	for slot, item := range s.Inventory {
		name, base, enh := item.Name, item.BasePower, item.Enhancement
		rec.Inventory[slot] = EquipmentRecord{
			Slot:        item.Slot,
			Name:        &name,
			BasePower:   &base,
			Enhancement: &enh,
		}
	}
	return rec
}

// EnhanceResult describes one enhancement attempt.
type EnhanceResult struct {
	Slot        constants.Slot `json:"slot"`
	Success     bool           `json:"success"`
	BeforeLevel int            `json:"before_level"`
	AfterLevel  int            `json:"after_level"`
	SuccessRate float64        `json:"success_rate"` // percent, one decimal
	Downgraded  bool           `json:"downgraded"`
}

// EnhanceRates are the current odds for a slot, in percent.
type EnhanceRates struct {
	Success   float64 `json:"success"`
	Downgrade float64 `json:"downgrade"`
}

// BattleHit is one entry of the battle log.
type BattleHit struct {
	Hit    int     `json:"hit"`
	Damage float64 `json:"damage"`
	Factor float64 `json:"factor"`
}

// BattleState lives only in memory while a stage battle is running.
type BattleState struct {
	TargetStage int         `json:"target_stage"`
	HP          float64     `json:"hp"`
	RemainingHP float64     `json:"remaining_hp"`
	HitsUsed    int         `json:"hits_used"`
	Limit       int         `json:"limit"`
	Log         []BattleHit `json:"log"`
}

// BattleHitResult is the snapshot returned after each hit.
type BattleHitResult struct {
	Success     bool    `json:"success"`
	Finished    bool    `json:"finished"`
	TargetStage int     `json:"target_stage"`
	HP          float64 `json:"hp"`
	RemainingHP float64 `json:"remaining_hp"`
	HitIndex    int     `json:"hit_index"`
	HitDamage   float64 `json:"hit_damage"`
	Factor      float64 `json:"factor"`
	TotalPower  float64 `json:"total_power"`
	HitsUsed    int     `json:"hits_used"`
	Limit       int     `json:"limit"`
}

// BattleStatus projects the active battle, or the next one when idle.
// RemainingHP is nil when no battle is in progress.
type BattleStatus struct {
	InProgress  bool     `json:"in_progress"`
	TargetStage int      `json:"target_stage"`
	HP          float64  `json:"hp"`
	RemainingHP *float64 `json:"remaining_hp"`
	HitsUsed    int      `json:"hits_used"`
	Limit       int      `json:"limit"`
}

// SlotSnapshot is the per-slot part of a Snapshot.
type SlotSnapshot struct {
	Level     int     `json:"level"`
	Power     float64 `json:"power"`
	BasePower int     `json:"base_power"`
}

// Snapshot is a read-only summary for display and logging.
type Snapshot struct {
	Points               int                             `json:"points"`
	Stage                int                             `json:"stage"`
	Scrolls              int                             `json:"scrolls"`
	Inventory            map[constants.Slot]SlotSnapshot `json:"inventory"`
	TotalPower           float64                         `json:"total_power"`
	NextStageRequirement int                             `json:"next_stage_requirement"`
}
