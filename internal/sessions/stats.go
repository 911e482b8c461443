package sessions

import (
	"math"
	"sort"
	"time"

	"github.com/julianstephens/studywith/internal/constants"
	"github.com/julianstephens/studywith/internal/models"
	"github.com/julianstephens/studywith/internal/rank"
	"github.com/julianstephens/studywith/internal/utils"
)

// Compute derives statistics for sessions as of now.
func Compute(sessions []models.SessionRecord, now time.Time) models.Statistics {
	var st models.Statistics
	for _, s := range sessions {
		st.TotalSessions++
		st.TotalFocusMinutes += s.TotalFocusMinutes
		st.TotalCycles += s.CompletedCycles
		if s.Completed() {
			st.CompletedSessions++
		}
	}
	st.TotalFocusHours = math.Round(float64(st.TotalFocusMinutes)/60*10) / 10

	days := sessionDays(sessions, now.Location())
	st.CurrentStreak = currentStreak(days, now)
	st.LongestStreak = longestStreak(days)

	st.TotalScore = rank.Score(st.TotalFocusMinutes, st.CompletedSessions, st.CurrentStreak)
	r := rank.For(st.TotalScore)
	st.Rank = r.Code
	st.RankDisplay = r.Display
	return st
}

// sessionDays returns the distinct session dates as midnights in loc,
// sorted ascending. Dates that fail to parse are skipped.
func sessionDays(sessions []models.SessionRecord, loc *time.Location) []time.Time {
	seen := make(map[string]bool, len(sessions))
	var days []time.Time
	for _, s := range sessions {
		date := s.Date
		if date == "" {
			date = s.StartTime.Format(constants.DateFormat)
		}
		if seen[date] {
			continue
		}
		seen[date] = true
		d, err := utils.ParseDateInLocation(date, loc)
		if err != nil {
			continue
		}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// currentStreak walks back from today counting days with sessions. A
// missing today is skipped once; any other gap ends the walk.
func currentStreak(days []time.Time, now time.Time) int {
	present := make(map[string]bool, len(days))
	for _, d := range days {
		present[utils.DateString(d)] = true
	}

	today := utils.Midnight(now)
	check := today
	streak := 0
	for {
		switch {
		case present[utils.DateString(check)]:
			streak++
			check = check.AddDate(0, 0, -1)
		case check.Equal(today):
			check = check.AddDate(0, 0, -1)
		default:
			return streak
		}
	}
}

// longestStreak is the longest run of consecutive calendar days.
func longestStreak(days []time.Time) int {
	if len(days) == 0 {
		return 0
	}
	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if utils.DateString(days[i-1].AddDate(0, 0, 1)) == utils.DateString(days[i]) {
			run++
			longest = max(longest, run)
		} else {
			run = 1
		}
	}
	return longest
}
