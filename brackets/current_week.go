package brackets

import "github.com/Dosada05/gods-bracket/models"

// DetectCurrentRoundWeek walks the playoff weeks in order and returns the
// last week before the first one where no roster has a nonzero best-ball
// score. ok is false when the first round week has no data yet.
func DetectCurrentRoundWeek(rosters []*models.Roster, roundWeeks []int) (week int, ok bool) {
	for _, w := range roundWeeks {
		if !anyNonZero(rosters, w) {
			break
		}
		week, ok = w, true
	}
	return week, ok
}

func anyNonZero(rosters []*models.Roster, week int) bool {
	for _, r := range rosters {
		if r.BestBall(week) != 0 {
			return true
		}
	}
	return false
}
