// Package rank maps an accumulated study score onto a named tier.
package rank

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/studywith/internal/constants"
)

// Rank is a tier code and its localized display name.
type Rank struct {
	Code    constants.RankCode `json:"rank"`
	Display string             `json:"display"`
}

type tier struct {
	upper   int // exclusive
	code    constants.RankCode
	display string
}

// tiers is ordered by ascending upper bound. Scores at or above the last
// bound are LEGEND.
var tiers = []tier{
	{100, constants.RankBronze, "브론즈"},
	{300, constants.RankSilver, "실버"},
	{600, constants.RankGold, "골드"},
	{1000, constants.RankPlatinum, "플래티넘"},
	{2000, constants.RankDiamond, "다이아몬드"},
	{4000, constants.RankMaster, "마스터"},
	{8000, constants.RankGrandmaster, "그랜드마스터"},
	{15000, constants.RankChallenger, "챌린저"},
}

// LegendThreshold is the score at which the display switches to the score itself.
const LegendThreshold = 15000

// For returns the rank for score. It never fails; negative scores are BRONZE.
func For(score int) Rank {
	for _, t := range tiers {
		if score < t.upper {
			return Rank{Code: t.code, Display: t.display}
		}
	}
	return Rank{
		Code:    constants.RankLegend,
		Display: fmt.Sprintf("%s점", humanize.Comma(int64(score))),
	}
}

// Score combines the session aggregates into the ranking score.
func Score(focusMinutes, completedSessions, currentStreak int) int {
	return focusMinutes*constants.ScorePerFocusMinute +
		completedSessions*constants.ScorePerCompletedSession +
		currentStreak*constants.ScorePerStreakDay
}

// Codes lists every tier code from lowest to highest.
func Codes() []constants.RankCode {
	codes := make([]constants.RankCode, 0, len(tiers)+1)
	for _, t := range tiers {
		codes = append(codes, t.code)
	}
	return append(codes, constants.RankLegend)
}

// Next returns the score still needed to reach the following tier, or 0 at LEGEND.
func Next(score int) int {
	for _, t := range tiers {
		if score < t.upper {
			return t.upper - score
		}
	}
	return 0
}
