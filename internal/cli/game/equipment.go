package game

import (
	"fmt"

	"github.com/julianstephens/studywith/internal/cli"
	"github.com/julianstephens/studywith/internal/constants"
	apperrors "github.com/julianstephens/studywith/internal/errors"
)

type EnhanceCmd struct {
	Slot  string `arg:"" help:"Equipment slot: book, pencil or laptop."`
	Times int    `help:"Number of scrolls to spend." default:"1"`
}

func (c *EnhanceCmd) Run(ctx *cli.Context) error {
	slot, err := parseSlot(c.Slot)
	if err != nil {
		return err
	}
	if c.Times <= 0 {
		return apperrors.ErrInvalidQuantity
	}

	name := ctx.Engine.State().Inventory[slot].Name
	for i := 0; i < c.Times; i++ {
		res := ctx.Engine.Enhance(slot)
		if res == nil {
			if i == 0 {
				return apperrors.ErrNoScrolls
			}
			fmt.Println("Out of scrolls.")
			break
		}
		switch {
		case res.Success:
			fmt.Printf("✓ %s +%d → +%d (%.1f%%)\n", name, res.BeforeLevel, res.AfterLevel, res.SuccessRate)
		case res.Downgraded:
			fmt.Printf("❌ %s failed and dropped +%d → +%d (%.1f%%)\n", name, res.BeforeLevel, res.AfterLevel, res.SuccessRate)
		default:
			fmt.Printf("✗ %s failed, stays at +%d (%.1f%%)\n", name, res.AfterLevel, res.SuccessRate)
		}
	}
	cli.ReportPersistError(ctx.Engine.LastPersistError())

	if stage, ok := ctx.Engine.TryAutoAdvance(); ok {
		fmt.Printf("Power %.2f unlocks stage %d!\n", ctx.Engine.TotalPower(), stage)
	}
	fmt.Printf("%d scrolls left\n", ctx.Engine.State().Scrolls)
	return nil
}

type RatesCmd struct {
	Slot string `arg:"" help:"Equipment slot: book, pencil or laptop."`
}

func (c *RatesCmd) Run(ctx *cli.Context) error {
	slot, err := parseSlot(c.Slot)
	if err != nil {
		return err
	}
	item := ctx.Engine.State().Inventory[slot]
	rates := ctx.Engine.EnhanceRates(slot)
	fmt.Printf("%s +%d\n", item.Name, item.Enhancement)
	fmt.Printf("  success:   %.1f%%\n", rates.Success)
	fmt.Printf("  downgrade: %.1f%% (on failure)\n", rates.Downgrade)
	return nil
}

type PowerCmd struct{}

func (c *PowerCmd) Run(ctx *cli.Context) error {
	snap := ctx.Engine.Snapshot()
	st := ctx.Engine.State()
	for _, slot := range constants.Slots {
		s := snap.Inventory[slot]
		fmt.Printf("  %-8s %-6s +%-3d %7.2f\n", slot, st.Inventory[slot].Name, s.Level, s.Power)
	}
	fmt.Printf("Total power: %.2f (stage %d needs %d)\n", snap.TotalPower, snap.Stage+1, snap.NextStageRequirement)
	return nil
}

type AdvanceCmd struct{}

func (c *AdvanceCmd) Run(ctx *cli.Context) error {
	stage, ok := ctx.Engine.TryAutoAdvance()
	cli.ReportPersistError(ctx.Engine.LastPersistError())
	if !ok {
		snap := ctx.Engine.Snapshot()
		fmt.Printf("Stage %d: power %.2f of %d needed for the next stage.\n", snap.Stage, snap.TotalPower, snap.NextStageRequirement)
		return nil
	}
	fmt.Printf("✓ Advanced to stage %d\n", stage)
	return nil
}

type SnapshotCmd struct{}

func (c *SnapshotCmd) Run(ctx *cli.Context) error {
	return cli.PrintJSON(ctx.Engine.Snapshot())
}
