package brackets

import (
	"sort"

	"github.com/Dosada05/gods-bracket/models"
	"github.com/Dosada05/gods-bracket/utils"
)

// PlayerInfo is the subset of the player directory the optimizer needs.
type PlayerInfo struct {
	FullName         string   `json:"name"`
	Position         string   `json:"pos"`
	FantasyPositions []string `json:"fpos,omitempty"`
}

type PlayerLookup interface {
	Player(id string) (PlayerInfo, bool)
}

// PlayerMap is an in-memory PlayerLookup.
type PlayerMap map[string]PlayerInfo

func (m PlayerMap) Player(id string) (PlayerInfo, bool) {
	p, ok := m[id]
	return p, ok
}

// PlayerPoints is one scored player of a roster-week, in feed order.
type PlayerPoints struct {
	PlayerID string
	Points   float64
}

type slotRule struct {
	slot     models.LineupSlot
	count    int
	eligible map[string]bool
}

func (r slotRule) accepts(position string) bool {
	return r.eligible[position]
}

// bestBallSlots is filled strictly in this order.
var bestBallSlots = []slotRule{
	{slot: models.SlotQB, count: 1, eligible: map[string]bool{"QB": true}},
	{slot: models.SlotRB, count: 2, eligible: map[string]bool{"RB": true}},
	{slot: models.SlotWR, count: 3, eligible: map[string]bool{"WR": true}},
	{slot: models.SlotTE, count: 1, eligible: map[string]bool{"TE": true}},
	{slot: models.SlotFlex, count: 2, eligible: map[string]bool{"RB": true, "WR": true, "TE": true}},
	{slot: models.SlotSuperFlex, count: 1, eligible: map[string]bool{"QB": true, "RB": true, "WR": true, "TE": true}},
}

var starterPositions = map[string]bool{"QB": true, "RB": true, "WR": true, "TE": true}

type bestBallCandidate struct {
	id       string
	name     string
	position string
	points   float64
}

func (c bestBallCandidate) lineupPlayer(slot models.LineupSlot) models.LineupPlayer {
	return models.LineupPlayer{
		PlayerID: c.id,
		Name:     c.name,
		Position: c.position,
		Points:   c.points,
		Slot:     slot,
	}
}

// eligiblePosition resolves the lineup position of a player: the primary
// position when it is a starter position, else the first starter-eligible
// fantasy position. An empty result means bench only.
func eligiblePosition(info PlayerInfo) string {
	if starterPositions[info.Position] {
		return info.Position
	}
	for _, fp := range info.FantasyPositions {
		if starterPositions[fp] {
			return fp
		}
	}
	return ""
}

// OptimizeBestBall picks the best-ball lineup for one roster-week.
//
// Slots are filled greedily in the fixed order QB, RB×2, WR×3, TE, FLEX×2,
// SUPER_FLEX; each slot takes the highest scoring eligible player not yet
// used, ties resolved by feed order. This is not a maximum-weight assignment
// and must not become one: league scoring relies on this exact order.
func OptimizeBestBall(scores []PlayerPoints, players PlayerLookup) *models.BestBallLineup {
	candidates := make([]bestBallCandidate, 0, len(scores))
	seen := make(map[string]bool, len(scores))
	for _, s := range scores {
		if s.PlayerID == "" || seen[s.PlayerID] {
			continue
		}
		seen[s.PlayerID] = true

		c := bestBallCandidate{id: s.PlayerID, name: s.PlayerID, points: s.Points}
		if players != nil {
			if info, ok := players.Player(s.PlayerID); ok {
				if info.FullName != "" {
					c.name = info.FullName
				}
				c.position = eligiblePosition(info)
				if c.position == "" {
					c.position = info.Position
				}
			}
		}
		candidates = append(candidates, c)
	}

	ranked := make([]int, len(candidates))
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return candidates[ranked[i]].points > candidates[ranked[j]].points
	})

	used := make([]bool, len(candidates))
	lineup := &models.BestBallLineup{
		Starters: make([]models.LineupPlayer, 0, 10),
		Bench:    make([]models.LineupPlayer, 0),
	}
	var total float64

	for _, rule := range bestBallSlots {
		filled := 0
		for _, idx := range ranked {
			if filled == rule.count {
				break
			}
			c := candidates[idx]
			if used[idx] || !rule.accepts(c.position) {
				continue
			}
			used[idx] = true
			lineup.Starters = append(lineup.Starters, c.lineupPlayer(rule.slot))
			total += c.points
			filled++
		}
	}

	for idx, c := range candidates {
		if !used[idx] {
			lineup.Bench = append(lineup.Bench, c.lineupPlayer(models.SlotBench))
		}
	}
	sort.SliceStable(lineup.Bench, func(i, j int) bool {
		if lineup.Bench[i].Points != lineup.Bench[j].Points {
			return lineup.Bench[i].Points > lineup.Bench[j].Points
		}
		return lineup.Bench[i].PlayerID < lineup.Bench[j].PlayerID
	})

	lineup.Total = utils.Round2(total)
	return lineup
}
