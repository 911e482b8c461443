package game

import (
	"fmt"

	"github.com/julianstephens/studywith/internal/cli"
	"github.com/julianstephens/studywith/internal/models"
)

// BattleFightCmd fights a whole stage battle. Battles live in engine memory,
// so one invocation always runs the fight to victory or to the hit limit.
type BattleFightCmd struct {
	Variance float64 `help:"Damage variance in [0, 1). Negative uses battle_variance from the config file." default:"-1"`
}

func (c *BattleFightCmd) Run(ctx *cli.Context) error {
	variance := c.Variance
	if variance < 0 {
		variance = ctx.Config.BattleVariance
	}
	if variance >= 1 {
		return fmt.Errorf("variance must be in [0, 1), got %v", variance)
	}

	b := ctx.Engine.StartStageBattle()
	fmt.Printf("Battle for stage %d: %.0f HP, %d hits\n", b.TargetStage, b.HP, b.Limit)

	var res models.BattleHitResult
	for !res.Finished {
		res = ctx.Engine.HitStageBattle(variance)
		fmt.Printf("  hit %2d/%d  %7.1f dmg (×%.3f)  %8.1f HP left\n",
			res.HitIndex, res.Limit, res.HitDamage, res.Factor, max(res.RemainingHP, 0))
	}
	cli.ReportPersistError(ctx.Engine.LastPersistError())

	if res.Success {
		fmt.Printf("✓ Victory! Stage %d cleared.\n", res.TargetStage)
	} else {
		fmt.Printf("✗ Out of hits. Stage %d still has %.1f HP.\n", res.TargetStage, res.RemainingHP)
	}
	return nil
}

type BattleStatusCmd struct{}

func (c *BattleStatusCmd) Run(ctx *cli.Context) error {
	st := ctx.Engine.BattleStatus()
	if !st.InProgress {
		fmt.Printf("Next battle: stage %d, %.0f HP, %d hits, power %.2f\n",
			st.TargetStage, st.HP, st.Limit, ctx.Engine.TotalPower())
		return nil
	}
	fmt.Printf("Stage %d: %.1f/%.0f HP, %d/%d hits used\n", st.TargetStage, *st.RemainingHP, st.HP, st.HitsUsed, st.Limit)
	return nil
}
