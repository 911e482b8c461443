package progression

import (
	"github.com/julianstephens/studywith/internal/constants"
	"github.com/julianstephens/studywith/internal/models"
)

// StartStageBattle opens a fresh battle against the next stage, replacing
// any battle in progress.
func (e *Engine) StartStageBattle() models.BattleState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return copyBattle(e.startBattle())
}

func (e *Engine) startBattle() *models.BattleState {
	target := e.state.Stage + 1
	hp := float64(StageHP(target))
	e.battle = &models.BattleState{
		TargetStage: target,
		HP:          hp,
		RemainingHP: hp,
		Limit:       constants.BattleHitLimit,
		Log:         []models.BattleHit{},
	}
	return e.battle
}

// HitStageBattle lands one hit of total power scaled by a factor drawn
// uniformly from [1-variance, 1+variance]. A battle is started first when
// none is running. Winning moves the stage to the target; the battle is
// dropped once it is won or out of hits.
func (e *Engine) HitStageBattle(variance float64) models.BattleHitResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	b := e.battle
	if b == nil || b.HitsUsed >= b.Limit || b.RemainingHP <= 0 {
		b = e.startBattle()
	}

	power := TotalPower(e.state.Inventory)
	factor := (1 - variance) + 2*variance*e.rng.Float64()
	damage := round(power*factor, 1)

	b.HitsUsed++
	b.RemainingHP -= damage
	b.Log = append(b.Log, models.BattleHit{
		Hit:    b.HitsUsed,
		Damage: damage,
		Factor: round(factor, 3),
	})

	success := b.RemainingHP <= 0
	finished := success || b.HitsUsed >= b.Limit

	result := models.BattleHitResult{
		Success:     success,
		Finished:    finished,
		TargetStage: b.TargetStage,
		HP:          b.HP,
		RemainingHP: round(b.RemainingHP, 1),
		HitIndex:    b.HitsUsed,
		HitDamage:   damage,
		Factor:      round(factor, 3),
		TotalPower:  power,
		HitsUsed:    b.HitsUsed,
		Limit:       b.Limit,
	}

	if finished {
		// the stage may have advanced past the target mid-battle
		if success && b.TargetStage > e.state.Stage {
			e.state.Stage = b.TargetStage
			e.save()
		}
		e.battle = nil
	}
	return result
}

// BattleStatus describes the running battle, or the next one when idle.
func (e *Engine) BattleStatus() models.BattleStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.battle == nil {
		target := e.state.Stage + 1
		return models.BattleStatus{
			InProgress:  false,
			TargetStage: target,
			HP:          float64(StageHP(target)),
			Limit:       constants.BattleHitLimit,
		}
	}
	remaining := round(e.battle.RemainingHP, 1)
	return models.BattleStatus{
		InProgress:  true,
		TargetStage: e.battle.TargetStage,
		HP:          e.battle.HP,
		RemainingHP: &remaining,
		HitsUsed:    e.battle.HitsUsed,
		Limit:       e.battle.Limit,
	}
}

func copyBattle(b *models.BattleState) models.BattleState {
	out := *b
	out.Log = make([]models.BattleHit, len(b.Log))
	copy(out.Log, b.Log)
	return out
}
