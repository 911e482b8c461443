package progression

import "github.com/julianstephens/studywith/internal/constants"

// SuccessRate is the chance an enhancement at level succeeds: 90% at 0,
// eight points less per level, never below 15%.
func SuccessRate(level int) float64 {
	return max(constants.BaseSuccessRate-float64(level)*constants.SuccessRateStep, constants.MinSuccessRate)
}

// DowngradeRate is the chance a failed enhancement also loses a level.
// Zero through level 1, then three points per level capped at 20%.
func DowngradeRate(level int) float64 {
	if level <= 1 {
		return 0
	}
	return min(constants.DowngradeRateStep*float64(level-1), constants.MaxDowngradeRate)
}

// PowerRequirement is the total power needed to reach nextStage.
func PowerRequirement(nextStage int) int {
	if nextStage <= 2 {
		return constants.BasePowerRequirement
	}
	return constants.BasePowerRequirement + (nextStage-2)*constants.PowerRequirementStep
}

// StageHP is the boss HP guarding nextStage.
func StageHP(nextStage int) int {
	return PowerRequirement(nextStage) * constants.StageHPMultiplier
}

// PointsForSession converts a finished session into progression points.
// Negative inputs contribute nothing.
func PointsForSession(focusMinutes, completedCycles, focusDuration int) int {
	cycles := max(completedCycles, 0)
	focusPoints := max(focusMinutes/constants.FocusMinutesPerPoint, 0)
	cyclePoints := cycles * constants.PointsPerCycle
	bonus := cycles * max(focusDuration/constants.FocusBonusBlockMin, 0)
	return focusPoints + cyclePoints + bonus
}
