package rank

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/studywith/internal/constants"
)

// Theme is the badge palette of one tier.
type Theme struct {
	Accent lipgloss.Color
	Border lipgloss.Color
	Emoji  string
}

var themes = map[constants.RankCode]Theme{
	constants.RankBronze:      {Accent: "#A67C52", Border: "#8B6F47", Emoji: "🥉"},
	constants.RankSilver:      {Accent: "#9CA3AF", Border: "#6B7280", Emoji: "🥈"},
	constants.RankGold:        {Accent: "#D4AF37", Border: "#B8941F", Emoji: "🥇"},
	constants.RankPlatinum:    {Accent: "#B8B6B4", Border: "#9A9896", Emoji: "💎"},
	constants.RankDiamond:     {Accent: "#7DD3FC", Border: "#38BDF8", Emoji: "💠"},
	constants.RankMaster:      {Accent: "#A78BFA", Border: "#8B5CF6", Emoji: "👑"},
	constants.RankGrandmaster: {Accent: "#F87171", Border: "#EF4444", Emoji: "🔥"},
	constants.RankChallenger:  {Accent: "#FB923C", Border: "#F97316", Emoji: "⚡"},
	constants.RankLegend:      {Accent: "#FCD34D", Border: "#FBBF24", Emoji: "🌟"},
}

// ThemeFor returns the palette of a tier. Unknown codes get bronze.
func ThemeFor(code constants.RankCode) Theme {
	if t, ok := themes[code]; ok {
		return t
	}
	return themes[constants.RankBronze]
}

// Style returns the badge style for a tier.
func Style(code constants.RankCode) lipgloss.Style {
	t := ThemeFor(code)
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border)
}

// Render draws r as a coloured badge led by the tier emoji.
func Render(r Rank) string {
	return Style(r.Code).Render(ThemeFor(r.Code).Emoji + " " + r.Display)
}
