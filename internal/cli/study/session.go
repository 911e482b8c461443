package study

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/studywith/internal/cli"
	"github.com/julianstephens/studywith/internal/models"
	"github.com/julianstephens/studywith/internal/rank"
	"github.com/julianstephens/studywith/internal/utils"
)

type SessionAddCmd struct {
	Focus         int    `help:"Total focus minutes." required:""`
	Cycles        int    `help:"Number of planned cycles." default:"1"`
	Completed     int    `help:"Number of completed cycles." default:"-1"`
	FocusDuration int    `help:"Minutes per focus block." default:"25" name:"focus-duration"`
	BreakDuration int    `help:"Minutes per break." default:"5" name:"break-duration"`
	Start         string `help:"Start time (RFC3339 or YYYY-MM-DDTHH:MM:SS). Defaults to now minus the session length."`
	NoPoints      bool   `help:"Record the session without granting points." name:"no-points"`
}

func (c *SessionAddCmd) Run(ctx *cli.Context) error {
	if c.Focus < 0 {
		return fmt.Errorf("focus minutes cannot be negative")
	}
	if c.Cycles < 1 {
		return fmt.Errorf("a session needs at least one planned cycle")
	}
	completed := c.Completed
	if completed < 0 {
		completed = c.Cycles
	}
	if completed > c.Cycles {
		return fmt.Errorf("completed cycles (%d) cannot exceed planned cycles (%d)", completed, c.Cycles)
	}

	end := time.Now()
	start := end.Add(-time.Duration(c.Focus+completed*c.BreakDuration) * time.Minute)
	if c.Start != "" {
		parsed, err := utils.ParseTimestamp(c.Start, time.Local)
		if err != nil {
			return fmt.Errorf("invalid start time: %w", err)
		}
		start = parsed
		end = start.Add(time.Duration(c.Focus+completed*c.BreakDuration) * time.Minute)
	}

	rec := models.NewSessionRecord(start, end, c.Focus, c.Cycles, completed, c.FocusDuration, c.BreakDuration)
	ctx.Sessions.AddSession(rec)
	cli.ReportPersistError(ctx.Sessions.LastPersistError())
	fmt.Printf("✓ Session recorded: %d min, %d/%d cycles on %s\n", c.Focus, completed, c.Cycles, rec.Date)

	if !c.NoPoints {
		earned := ctx.Engine.GrantPointsFromSession(c.Focus, completed, c.FocusDuration)
		cli.ReportPersistError(ctx.Engine.LastPersistError())
		if earned > 0 {
			fmt.Printf("  +%s points (total %s)\n", humanize.Comma(int64(earned)), humanize.Comma(int64(ctx.Engine.State().Points)))
		}
	}

	ctx.PerformAutomaticBackup()
	return nil
}

type SessionListCmd struct {
	Limit int  `help:"Number of sessions to show." default:"10"`
	JSON  bool `help:"Print as JSON." name:"json"`
}

func (c *SessionListCmd) Run(ctx *cli.Context) error {
	recent := ctx.Sessions.RecentSessions(c.Limit)
	if c.JSON {
		return cli.PrintJSON(recent)
	}
	if len(recent) == 0 {
		fmt.Println("No sessions recorded yet.")
		return nil
	}

	for _, s := range recent {
		status := "✓"
		if !s.Completed() {
			status = "…"
		}
		fmt.Printf("%s %s %s  %3d min  %d/%d cycles  (%s)\n",
			status,
			s.Date,
			s.StartTime.Format("15:04"),
			s.TotalFocusMinutes,
			s.CompletedCycles,
			s.TotalCycles,
			humanize.Time(s.StartTime),
		)
	}
	return nil
}

type SessionStatsCmd struct {
	JSON bool `help:"Print as JSON." name:"json"`
}

func (c *SessionStatsCmd) Run(ctx *cli.Context) error {
	stats := ctx.Sessions.Statistics()
	if c.JSON {
		return cli.PrintJSON(stats)
	}

	fmt.Printf("Sessions:        %s (%s completed)\n", humanize.Comma(int64(stats.TotalSessions)), humanize.Comma(int64(stats.CompletedSessions)))
	fmt.Printf("Focus time:      %s min (%.1f h)\n", humanize.Comma(int64(stats.TotalFocusMinutes)), stats.TotalFocusHours)
	fmt.Printf("Cycles:          %s\n", humanize.Comma(int64(stats.TotalCycles)))
	fmt.Printf("Current streak:  %d days\n", stats.CurrentStreak)
	fmt.Printf("Longest streak:  %d days\n", stats.LongestStreak)
	fmt.Printf("Score:           %s\n", humanize.Comma(int64(stats.TotalScore)))
	fmt.Println(rank.Render(rank.Rank{Code: stats.Rank, Display: stats.RankDisplay}))
	return nil
}

type RankCmd struct{}

func (c *RankCmd) Run(ctx *cli.Context) error {
	stats := ctx.Sessions.Statistics()
	fmt.Println(rank.Render(rank.Rank{Code: stats.Rank, Display: stats.RankDisplay}))
	fmt.Printf("Score: %s\n", humanize.Comma(int64(stats.TotalScore)))
	if next := rank.Next(stats.TotalScore); next > 0 {
		fmt.Printf("%s points to the next tier\n", humanize.Comma(int64(next)))
	} else {
		fmt.Println("Top tier reached.")
	}
	return nil
}
