package brackets

import (
	"sort"
	"strings"

	"github.com/Dosada05/gods-bracket/models"
	"github.com/Dosada05/gods-bracket/utils"
)

// WeekScores maps roster id to the feed's points for one week. Rosters the
// feed did not report are absent.
type WeekScores map[int]float64

// HasData reports whether the week carries real scoring. Weeks that have not
// been played come back from the feed with every roster at zero.
func (w WeekScores) HasData() bool {
	for _, v := range w {
		if v != 0 {
			return true
		}
	}
	return false
}

type EliminationReason string

const (
	ReasonNextWeekZero    EliminationReason = "next_week_zero"
	ReasonNextWeekMissing EliminationReason = "next_week_missing"
	ReasonLowestScore     EliminationReason = "lowest_score"
)

type StopReason string

const (
	StopSurvivorTarget StopReason = "survivor_target_reached"
	StopNoWeekData     StopReason = "no_week_data"
	StopNoCandidate    StopReason = "no_candidate"
	StopWindowEnded    StopReason = "window_ended"
)

type GuillotineConfig struct {
	Weeks          []int
	SurvivorTarget int
}

// GuillotineEvent is reported to the observer once per elimination and once
// when the phase ends.
type GuillotineEvent struct {
	Week       int
	Alive      int
	Eliminated *models.Roster
	Reason     EliminationReason
	Stop       StopReason
}

type GuillotineObserver func(GuillotineEvent)

type GuillotineResult struct {
	Eliminations []models.Elimination
	Survivors    []*models.Roster
	Stop         StopReason
	StopWeek     int
}

// RunGuillotine runs the elimination phase over the configured window and
// assigns dense final seeds to the survivors. Weeks are processed in order;
// scores must hold the window weeks and the week after the window.
func RunGuillotine(rosters []*models.Roster, scores map[int]WeekScores, cfg GuillotineConfig, observe GuillotineObserver) GuillotineResult {
	if observe == nil {
		observe = func(GuillotineEvent) {}
	}

	alive := make([]*models.Roster, 0, len(rosters))
	for _, r := range rosters {
		if r.Alive() {
			alive = append(alive, r)
		}
	}
	sort.SliceStable(alive, func(i, j int) bool { return alive[i].RosterID < alive[j].RosterID })

	result := GuillotineResult{Stop: StopWindowEnded}
	weeks := append([]int(nil), cfg.Weeks...)
	sort.Ints(weeks)

	for _, week := range weeks {
		if len(alive) <= cfg.SurvivorTarget {
			result.Stop, result.StopWeek = StopSurvivorTarget, week
			break
		}

		current := scores[week]
		if !current.HasData() {
			result.Stop, result.StopWeek = StopNoWeekData, week
			break
		}
		for _, r := range alive {
			if v, ok := current[r.RosterID]; ok {
				r.GuillotineScores[week] = v
			}
		}

		candidates, reason := eliminationCandidates(alive, current, scores[week+1])
		if len(candidates) == 0 {
			result.Stop, result.StopWeek = StopNoCandidate, week
			break
		}

		out := worstSeeded(candidates)
		out.EliminatedWeek = utils.IntPtr(week)

		elim := models.Elimination{
			Week:      week,
			RosterID:  out.RosterID,
			OwnerID:   out.OwnerID,
			OwnerName: out.OwnerName,
			Reason:    string(reason),
		}
		if v, ok := current[out.RosterID]; ok {
			elim.Score = utils.FloatPtr(v)
		}
		result.Eliminations = append(result.Eliminations, elim)

		alive = removeRoster(alive, out)
		observe(GuillotineEvent{Week: week, Alive: len(alive), Eliminated: out, Reason: reason})
	}

	AssignFinalSeeds(alive)
	result.Survivors = alive
	observe(GuillotineEvent{Week: result.StopWeek, Alive: len(alive), Stop: result.Stop})
	return result
}

// eliminationCandidates applies, in order, the next-week zero rule, the
// next-week disappearance rule and the lowest current score rule. The
// next-week rules only apply once the next week carries real scoring.
func eliminationCandidates(alive []*models.Roster, current, next WeekScores) ([]*models.Roster, EliminationReason) {
	if next.HasData() {
		var zeros []*models.Roster
		for _, r := range alive {
			if v, ok := next[r.RosterID]; ok && v == 0 {
				zeros = append(zeros, r)
			}
		}
		if len(zeros) > 0 {
			return zeros, ReasonNextWeekZero
		}

		var missing []*models.Roster
		for _, r := range alive {
			_, inCurrent := current[r.RosterID]
			_, inNext := next[r.RosterID]
			if inCurrent && !inNext {
				missing = append(missing, r)
			}
		}
		if len(missing) > 0 {
			return missing, ReasonNextWeekMissing
		}
	}

	var lowest []*models.Roster
	var low float64
	for _, r := range alive {
		v, ok := current[r.RosterID]
		if !ok {
			continue
		}
		switch {
		case len(lowest) == 0 || v < low:
			low = v
			lowest = []*models.Roster{r}
		case v == low:
			lowest = append(lowest, r)
		}
	}
	return lowest, ReasonLowestScore
}

// worstSeeded returns the candidate with the numerically highest initial
// seed. A missing seed counts as worst; remaining ties fall to the greater
// owner id.
func worstSeeded(candidates []*models.Roster) *models.Roster {
	sorted := append([]*models.Roster(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if c := utils.CompareSeeds(sorted[i].InitialSeed, sorted[j].InitialSeed); c != 0 {
			return c > 0
		}
		return sorted[i].OwnerID > sorted[j].OwnerID
	})
	return sorted[0]
}

func removeRoster(rosters []*models.Roster, target *models.Roster) []*models.Roster {
	out := rosters[:0]
	for _, r := range rosters {
		if r != target {
			out = append(out, r)
		}
	}
	return out
}

// AssignFinalSeeds orders survivors by initial seed then owner name and
// numbers them 1..N. The slice is sorted in place.
func AssignFinalSeeds(survivors []*models.Roster) {
	sort.SliceStable(survivors, func(i, j int) bool {
		a, b := survivors[i], survivors[j]
		if c := utils.CompareSeeds(a.InitialSeed, b.InitialSeed); c != 0 {
			return c < 0
		}
		if c := strings.Compare(a.OwnerName, b.OwnerName); c != 0 {
			return c < 0
		}
		return a.OwnerID < b.OwnerID
	})
	for i, r := range survivors {
		r.FinalSeed = utils.IntPtr(i + 1)
	}
}
