package presets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/studywith/internal/cli"
	"github.com/julianstephens/studywith/internal/constants"
	"github.com/julianstephens/studywith/internal/preset"
)

type PresetListCmd struct{}

func (c *PresetListCmd) Run(ctx *cli.Context) error {
	dir := ctx.Presets()
	names, err := dir.List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Printf("No presets in %s\n", dir.Path())
		return nil
	}
	fmt.Printf("Presets in %s:\n\n", dir.Path())
	for _, name := range names {
		fmt.Printf("  %s\n", name)
	}
	return nil
}

type PresetSaveCmd struct {
	Name  string   `arg:"" help:"Preset name."`
	Sites []string `help:"Sites to block." sep:","`
	Apps  []string `help:"Program names to watch." sep:","`
}

func (c *PresetSaveCmd) Run(ctx *cli.Context) error {
	p := preset.Preset{Name: c.Name, Sites: trimAll(c.Sites), Apps: trimAll(c.Apps)}
	path, err := ctx.Presets().Save(p)
	if errors.Is(err, preset.ErrEmpty) {
		return fmt.Errorf("nothing to save: pass --sites or --apps")
	}
	if err != nil {
		return err
	}
	fmt.Printf("✓ Preset saved: %s\n", path)
	return nil
}

type PresetShowCmd struct {
	Name string `arg:"" optional:"" help:"Preset name. Defaults to the last preset loaded."`
	JSON bool   `help:"Print as JSON." name:"json"`
}

func (c *PresetShowCmd) Run(ctx *cli.Context) error {
	p, err := Resolve(ctx.Presets(), c.Name)
	if err != nil {
		return err
	}
	if c.JSON {
		return cli.PrintJSON(p)
	}
	fmt.Printf("Preset %s\n", p.Name)
	fmt.Printf("  sites: %s\n", orNone(p.Sites))
	fmt.Printf("  apps:  %s\n", orNone(p.Apps))
	return nil
}

// Resolve loads the named preset. Without a name it falls back to the last
// preset loaded, then to the default preset.
func Resolve(dir *preset.Dir, name string) (preset.Preset, error) {
	if name != "" {
		return dir.Load(name)
	}
	if p, err := dir.Last(); err == nil {
		return p, nil
	}
	return dir.Load(constants.DefaultPresetName)
}

func trimAll(items []string) []string {
	var out []string
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func orNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
