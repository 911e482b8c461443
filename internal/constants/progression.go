package constants

const (
	// Points earned from a session:
	// - one point per FocusMinutesPerPoint minutes of focus
	// - PointsPerCycle for each completed cycle
	// - one bonus point per cycle for every FocusBonusBlockMin minutes of cycle length
	FocusMinutesPerPoint = 5
	PointsPerCycle       = 3
	FocusBonusBlockMin   = 25

	DefaultScrollCost = 40

	// Enhancement odds
	BaseSuccessRate     = 0.9
	SuccessRateStep     = 0.08
	MinSuccessRate      = 0.15
	DowngradeRateStep   = 0.03
	MaxDowngradeRate    = 0.20
	PowerPerEnhancement = 0.2

	// Stage gating
	BasePowerRequirement  = 30
	PowerRequirementStep  = 10
	StageHPMultiplier     = 10
	BattleHitLimit        = 10
	DefaultBattleVariance = 0.3

	// Score weights
	ScorePerFocusMinute      = 1
	ScorePerCompletedSession = 10
	ScorePerStreakDay        = 5
)
