package game

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/studywith/internal/cli"
	"github.com/julianstephens/studywith/internal/constants"
	apperrors "github.com/julianstephens/studywith/internal/errors"
	"github.com/julianstephens/studywith/internal/progression"
)

func parseSlot(s string) (constants.Slot, error) {
	slot := constants.Slot(strings.ToLower(strings.TrimSpace(s)))
	if !progression.KnownSlot(slot) {
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownSlot, s)
	}
	return slot, nil
}

func points(n int) string {
	return humanize.Comma(int64(n))
}

type PointsGrantCmd struct {
	Focus         int `help:"Focus minutes of the session." required:""`
	Completed     int `help:"Completed cycles." default:"0"`
	FocusDuration int `help:"Minutes per focus block." default:"25" name:"focus-duration"`
}

func (c *PointsGrantCmd) Run(ctx *cli.Context) error {
	earned := ctx.Engine.GrantPointsFromSession(c.Focus, c.Completed, c.FocusDuration)
	cli.ReportPersistError(ctx.Engine.LastPersistError())
	if earned == 0 {
		fmt.Println("No points earned.")
		return nil
	}
	fmt.Printf("✓ +%s points (total %s)\n", points(earned), points(ctx.Engine.State().Points))
	return nil
}

type PointsAddCmd struct {
	Amount int `arg:"" help:"Points to add."`
}

func (c *PointsAddCmd) Run(ctx *cli.Context) error {
	if !ctx.Engine.AddPoints(c.Amount) {
		return apperrors.ErrInvalidQuantity
	}
	cli.ReportPersistError(ctx.Engine.LastPersistError())
	fmt.Printf("✓ +%s points (total %s)\n", points(c.Amount), points(ctx.Engine.State().Points))
	return nil
}

type ScrollBuyCmd struct {
	Quantity int `arg:"" optional:"" help:"Number of scrolls to buy." default:"1"`
	Cost     int `help:"Points per scroll. Defaults to scroll_cost from the config file."`
}

func (c *ScrollBuyCmd) Run(ctx *cli.Context) error {
	if c.Quantity <= 0 {
		return apperrors.ErrInvalidQuantity
	}
	cost := c.Cost
	if cost <= 0 {
		cost = ctx.Config.ScrollCost
	}
	if !ctx.Engine.BuyScroll(c.Quantity, cost) {
		return fmt.Errorf("%w: %s needed, %s available", apperrors.ErrNotEnoughPoints,
			points(c.Quantity*cost), points(ctx.Engine.State().Points))
	}
	cli.ReportPersistError(ctx.Engine.LastPersistError())
	st := ctx.Engine.State()
	fmt.Printf("✓ Bought %d scrolls for %s points (%d scrolls, %s points left)\n",
		c.Quantity, points(c.Quantity*cost), st.Scrolls, points(st.Points))
	return nil
}
