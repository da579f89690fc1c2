package brackets

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/Dosada05/gods-bracket/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlayers() PlayerMap {
	return PlayerMap{
		"qb1": {FullName: "Quarter One", Position: "QB"},
		"qb2": {FullName: "Quarter Two", Position: "QB"},
		"rb1": {FullName: "Running One", Position: "RB"},
		"rb2": {FullName: "Running Two", Position: "RB"},
		"rb3": {FullName: "Running Three", Position: "RB"},
		"wr1": {FullName: "Wide One", Position: "WR"},
		"wr2": {FullName: "Wide Two", Position: "WR"},
		"wr3": {FullName: "Wide Three", Position: "WR"},
		"wr4": {FullName: "Wide Four", Position: "WR"},
		"te1": {FullName: "Tight One", Position: "TE"},
		"te2": {FullName: "Tight Two", Position: "TE"},
		"k1":  {FullName: "Kicker One", Position: "K"},
		"hyb": {FullName: "Hybrid", Position: "OL", FantasyPositions: []string{"K", "TE"}},
	}
}

func slotsOf(l *models.BestBallLineup) map[string]models.LineupSlot {
	out := make(map[string]models.LineupSlot, len(l.Starters))
	for _, s := range l.Starters {
		out[s.PlayerID] = s.Slot
	}
	return out
}

func TestOptimizeBestBall_FillsSlotsInOrder(t *testing.T) {
	scores := []PlayerPoints{
		{"qb1", 25.5}, {"qb2", 18}, {"rb1", 20}, {"rb2", 12}, {"rb3", 15},
		{"wr1", 22}, {"wr2", 9}, {"wr3", 14}, {"wr4", 11}, {"te1", 8},
		{"te2", 13}, {"k1", 30},
	}

	lineup := OptimizeBestBall(scores, testPlayers())
	slots := slotsOf(lineup)

	assert.Equal(t, models.SlotQB, slots["qb1"])
	assert.Equal(t, models.SlotRB, slots["rb1"])
	assert.Equal(t, models.SlotRB, slots["rb3"])
	assert.Equal(t, models.SlotWR, slots["wr1"])
	assert.Equal(t, models.SlotWR, slots["wr3"])
	assert.Equal(t, models.SlotWR, slots["wr4"])
	assert.Equal(t, models.SlotTE, slots["te2"])
	assert.Equal(t, models.SlotFlex, slots["rb2"])
	assert.Equal(t, models.SlotFlex, slots["wr2"])
	assert.Equal(t, models.SlotSuperFlex, slots["qb2"])
	require.Len(t, lineup.Starters, 10)

	// kicker scores the most but has no slot
	require.Len(t, lineup.Bench, 2)
	assert.Equal(t, "k1", lineup.Bench[0].PlayerID)
	assert.Equal(t, models.SlotBench, lineup.Bench[0].Slot)
	assert.Equal(t, "te1", lineup.Bench[1].PlayerID)

	assert.Equal(t, 25.5+20+15+22+14+11+13+12+9+18, lineup.Total)
}

func TestOptimizeBestBall_StarterOrderFollowsSlotOrder(t *testing.T) {
	scores := []PlayerPoints{{"te1", 40}, {"wr1", 30}, {"qb1", 1}}
	lineup := OptimizeBestBall(scores, testPlayers())

	require.Len(t, lineup.Starters, 3)
	assert.Equal(t, models.SlotQB, lineup.Starters[0].Slot)
	assert.Equal(t, models.SlotWR, lineup.Starters[1].Slot)
	assert.Equal(t, models.SlotTE, lineup.Starters[2].Slot)
	assert.Equal(t, 71.0, lineup.Total)
	assert.Empty(t, lineup.Bench)
}

func TestOptimizeBestBall_FantasyPositionFallback(t *testing.T) {
	lineup := OptimizeBestBall([]PlayerPoints{{"hyb", 7}}, testPlayers())
	require.Len(t, lineup.Starters, 1)
	assert.Equal(t, models.SlotTE, lineup.Starters[0].Slot)
	assert.Equal(t, "TE", lineup.Starters[0].Position)
	assert.Equal(t, "Hybrid", lineup.Starters[0].Name)
}

func TestOptimizeBestBall_UnknownPlayersGoToBench(t *testing.T) {
	lineup := OptimizeBestBall([]PlayerPoints{{"DET", 11}, {"qb1", 3}}, testPlayers())
	require.Len(t, lineup.Starters, 1)
	require.Len(t, lineup.Bench, 1)
	assert.Equal(t, "DET", lineup.Bench[0].Name)
	assert.Equal(t, 3.0, lineup.Total)
}

func TestOptimizeBestBall_TiesKeepFeedOrder(t *testing.T) {
	scores := []PlayerPoints{{"rb2", 10}, {"rb1", 10}, {"rb3", 10}}
	lineup := OptimizeBestBall(scores, testPlayers())
	slots := slotsOf(lineup)

	assert.Equal(t, models.SlotRB, slots["rb2"])
	assert.Equal(t, models.SlotRB, slots["rb1"])
	assert.Equal(t, models.SlotFlex, slots["rb3"])
}

func TestOptimizeBestBall_RoundsTotalAndSkipsDuplicates(t *testing.T) {
	scores := []PlayerPoints{{"qb1", 10.111}, {"rb1", 5.222}, {"rb1", 99}, {"", 4}}
	lineup := OptimizeBestBall(scores, testPlayers())

	assert.Len(t, lineup.Starters, 2)
	assert.Equal(t, 15.33, lineup.Total)
}

func TestOptimizeBestBall_Deterministic(t *testing.T) {
	scores := []PlayerPoints{
		{"qb1", 10}, {"qb2", 10}, {"rb1", 10}, {"rb2", 10}, {"wr1", 10},
		{"wr2", 10}, {"te1", 10}, {"te2", 10}, {"k1", 10},
	}
	first := OptimizeBestBall(scores, testPlayers())
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, OptimizeBestBall(scores, testPlayers()))
	}
}

// bruteForceBest returns the best total over every feasible starter set.
func bruteForceBest(cands []PlayerPoints, pos map[string]string) float64 {
	var slots []slotRule
	for _, r := range bestBallSlots {
		for i := 0; i < r.count; i++ {
			slots = append(slots, r)
		}
	}

	best := 0.0
	n := len(cands)
	for mask := 0; mask < 1<<n; mask++ {
		var chosen []int
		var total float64
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				chosen = append(chosen, i)
				total += cands[i].Points
			}
		}
		if total <= best || len(chosen) > len(slots) {
			continue
		}

		slotOwner := make([]int, len(slots))
		for i := range slotOwner {
			slotOwner[i] = -1
		}
		var assign func(p int, seen []bool) bool
		assign = func(p int, seen []bool) bool {
			for s, rule := range slots {
				if seen[s] || !rule.accepts(pos[cands[p].PlayerID]) {
					continue
				}
				seen[s] = true
				if slotOwner[s] == -1 || assign(slotOwner[s], seen) {
					slotOwner[s] = p
					return true
				}
			}
			return false
		}
		feasible := true
		for _, p := range chosen {
			if !assign(p, make([]bool, len(slots))) {
				feasible = false
				break
			}
		}
		if feasible {
			best = total
		}
	}
	return best
}

func TestOptimizeBestBall_MatchesBruteForceOnSmallRosters(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	positions := []string{"QB", "RB", "WR", "TE", "K"}

	for round := 0; round < 200; round++ {
		n := 1 + rng.Intn(10)
		players := PlayerMap{}
		pos := map[string]string{}
		scores := make([]PlayerPoints, 0, n)
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("p%d", i)
			p := positions[rng.Intn(len(positions))]
			players[id] = PlayerInfo{FullName: id, Position: p}
			pos[id] = p
			scores = append(scores, PlayerPoints{PlayerID: id, Points: float64(rng.Intn(160)) / 4})
		}

		lineup := OptimizeBestBall(scores, players)

		assert.InDelta(t, bruteForceBest(scores, pos), lineup.Total, 1e-9, "round %d", round)

		// no benched player may outscore a starter in a slot it could have filled
		for _, starter := range lineup.Starters {
			var rule slotRule
			for _, r := range bestBallSlots {
				if r.slot == starter.Slot {
					rule = r
				}
			}
			for _, b := range lineup.Bench {
				if rule.accepts(pos[b.PlayerID]) {
					assert.LessOrEqual(t, b.Points, starter.Points, "round %d slot %s", round, starter.Slot)
				}
			}
		}
	}
}
