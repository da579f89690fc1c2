package brackets

import (
	"sort"

	"github.com/Dosada05/gods-bracket/models"
	"github.com/Dosada05/gods-bracket/utils"
)

// AggregateChampionship collects every god champion into the grand
// championship played in targetWeek. Standings stay empty until some
// champion has a nonzero score in that week.
func AggregateChampionship(champions []*models.Champion, targetWeek int, roundWeeks []int) *models.GrandChampionship {
	gc := &models.GrandChampionship{
		Week:         targetWeek,
		Participants: make([]models.ChampionshipEntry, 0, len(champions)),
		Standings:    make([]models.ChampionshipStanding, 0, len(champions)),
	}

	for _, c := range champions {
		if c == nil {
			continue
		}
		cumulative := 0.0
		for _, w := range roundWeeks {
			cumulative += c.WeeklyScores[w]
		}
		entry := models.ChampionshipEntry{
			Champion:        *c,
			WeekScore:       c.WeeklyScores[targetWeek],
			CumulativeScore: utils.Round2(cumulative),
		}
		if entry.WeekScore != 0 {
			gc.Started = true
		}
		gc.Participants = append(gc.Participants, entry)
	}

	if !gc.Started {
		return gc
	}

	ranked := make([]models.ChampionshipEntry, len(gc.Participants))
	copy(ranked, gc.Participants)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.WeekScore != b.WeekScore {
			return a.WeekScore > b.WeekScore
		}
		if a.CumulativeScore != b.CumulativeScore {
			return a.CumulativeScore > b.CumulativeScore
		}
		return a.FinalSeed < b.FinalSeed
	})
	for i, e := range ranked {
		gc.Standings = append(gc.Standings, models.ChampionshipStanding{Rank: i + 1, ChampionshipEntry: e})
	}
	return gc
}
