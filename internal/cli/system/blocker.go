package system

import (
	"fmt"
	"strings"

	"github.com/julianstephens/studywith/internal/blocker"
	"github.com/julianstephens/studywith/internal/cli"
)

type BlockerScanCmd struct {
	Processes []string `help:"Process names to look for, overriding blocker.processes in the config file." sep:","`
	Preset    string   `help:"Take process names from the [APPS] section of this preset."`
}

// keywords picks --processes, then the preset's apps, then the config file.
func (cmd *BlockerScanCmd) keywords(ctx *cli.Context) ([]string, error) {
	if len(cmd.Processes) > 0 {
		return cmd.Processes, nil
	}
	if cmd.Preset != "" {
		p, err := ctx.Presets().Load(cmd.Preset)
		if err != nil {
			return nil, err
		}
		return p.Apps, nil
	}
	return ctx.Config.Blocker.Processes, nil
}

func (cmd *BlockerScanCmd) Run(ctx *cli.Context) error {
	keywords, err := cmd.keywords(ctx)
	if err != nil {
		return err
	}

	scanner := blocker.NewScanner(keywords)
	if len(scanner.Keywords()) == 0 {
		fmt.Println("No distracting processes configured.")
		fmt.Println("Add names under [blocker] processes in the config file, pass --processes or pick a --preset.")
		return nil
	}

	hits, err := scanner.Scan()
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		fmt.Printf("✓ None of %s are running.\n", strings.Join(scanner.Keywords(), ", "))
		return nil
	}

	fmt.Printf("⚠ %d distracting processes running:\n\n", len(hits))
	for _, h := range hits {
		fmt.Printf("  %-8d %-30s (matches %q)\n", h.PID, h.Name, h.Keyword)
	}
	return nil
}
