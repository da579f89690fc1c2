package brackets

import (
	"strings"

	"github.com/Dosada05/gods-bracket/models"
)

// DefaultMaxSeeds caps how many seeds per league enter a god's bracket.
const DefaultMaxSeeds = 8

type GodParams struct {
	Config     models.GodConfig
	Light      *models.LeagueResult
	Dark       *models.LeagueResult
	RoundWeeks []int
	// CurrentWeek is the global current round week; HasCurrent is false
	// before any round has scoring.
	CurrentWeek int
	HasCurrent  bool
	MaxSeeds    int
}

type bracketNode struct {
	ref    models.TeamRef
	roster *models.Roster
}

func newNode(league *models.LeagueResult, side models.Side, r *models.Roster) *bracketNode {
	seed := 0
	if r.FinalSeed != nil {
		seed = *r.FinalSeed
	}
	return &bracketNode{
		ref: models.TeamRef{
			LeagueID:  league.League.ID,
			Side:      side,
			OwnerID:   r.OwnerID,
			OwnerName: r.OwnerName,
			FinalSeed: seed,
		},
		roster: r,
	}
}

// BuildGodBracket lays out a god's fixed round one pairing and simulates
// every round the global current week allows.
func BuildGodBracket(p GodParams) *models.God {
	god := &models.God{
		Index:    p.Config.Index,
		Name:     p.Config.Name,
		Division: p.Config.Division,
		Light:    godSide(p.Light),
		Dark:     godSide(p.Dark),
		Pairings: make([]models.Pairing, 0),
		Rounds:   make([]models.Round, 0),
	}
	if p.Light == nil || p.Dark == nil {
		return god
	}

	maxSeeds := p.MaxSeeds
	if maxSeeds <= 0 {
		maxSeeds = DefaultMaxSeeds
	}
	pairs := roundOnePairs(p.Light, p.Dark, maxSeeds)
	god.Pairings = pairingsOf(pairs)

	god.Rounds = simulateRounds(pairs, p.RoundWeeks, roundsAllowed(p))

	participants := make([]*models.Roster, 0, 2*len(pairs))
	for _, pair := range pairs {
		participants = append(participants, pair[0].roster, pair[1].roster)
	}
	god.Champion = crownChampion(god, p, participants)
	return god
}

// roundOnePairs pairs light seed s with dark seed maxSeeds-s+1, where
// maxSeeds is bounded by both leagues' survivor counts.
func roundOnePairs(light, dark *models.LeagueResult, maxSeeds int) [][2]*bracketNode {
	maxSeeds = min(maxSeeds, len(light.Survivors), len(dark.Survivors))
	lightBySeed := survivorsBySeed(light.Survivors)
	darkBySeed := survivorsBySeed(dark.Survivors)

	pairs := make([][2]*bracketNode, 0, maxSeeds)
	for s := 1; s <= maxSeeds; s++ {
		l, okL := lightBySeed[s]
		d, okD := darkBySeed[maxSeeds-s+1]
		if !okL || !okD {
			continue
		}
		pairs = append(pairs, [2]*bracketNode{
			newNode(light, models.SideLight, l),
			newNode(dark, models.SideDark, d),
		})
	}
	return pairs
}

// BuildRoundOnePairings returns the fixed round one match-ups of two seeded
// leagues.
func BuildRoundOnePairings(light, dark *models.LeagueResult, maxSeeds int) []models.Pairing {
	if light == nil || dark == nil {
		return make([]models.Pairing, 0)
	}
	return pairingsOf(roundOnePairs(light, dark, maxSeeds))
}

func pairingsOf(pairs [][2]*bracketNode) []models.Pairing {
	out := make([]models.Pairing, 0, len(pairs))
	for i, pair := range pairs {
		out = append(out, models.Pairing{
			Slot:      i + 1,
			LightSeed: pair[0].ref.FinalSeed,
			DarkSeed:  pair[1].ref.FinalSeed,
			Light:     pair[0].ref,
			Dark:      pair[1].ref,
		})
	}
	return out
}

func survivorsBySeed(survivors []*models.Roster) map[int]*models.Roster {
	out := make(map[int]*models.Roster, len(survivors))
	for _, r := range survivors {
		if r.FinalSeed != nil {
			out[*r.FinalSeed] = r
		}
	}
	return out
}

func roundsAllowed(p GodParams) int {
	if !p.HasCurrent {
		return 0
	}
	for i, w := range p.RoundWeeks {
		if w == p.CurrentWeek {
			return i + 1
		}
	}
	return 0
}

func simulateRounds(pairs [][2]*bracketNode, roundWeeks []int, allowed int) []models.Round {
	rounds := make([]models.Round, 0, allowed)

	for r := 1; r <= allowed && r <= len(roundWeeks) && len(pairs) > 0; r++ {
		week := roundWeeks[r-1]
		round := models.Round{Round: r, Week: week, Matches: make([]models.Match, 0, len(pairs))}

		scored := false
		decided := true
		winners := make([]*bracketNode, 0, len(pairs))
		for i, pair := range pairs {
			match, winner := playMatch(i+1, pair[0], pair[1], week)
			if match.Team1.Score != 0 || match.Team2.Score != 0 {
				scored = true
			}
			if winner == nil {
				decided = false
			} else {
				winners = append(winners, winner)
			}
			round.Matches = append(round.Matches, match)
		}

		if !scored {
			break
		}
		rounds = append(rounds, round)
		if !decided || len(winners) < 2 {
			break
		}
		pairs = pairWinners(winners)
	}
	return rounds
}

// pairWinners pairs winners two at a time in bracket order. An odd winner
// out gets a bye.
func pairWinners(winners []*bracketNode) [][2]*bracketNode {
	pairs := make([][2]*bracketNode, 0, (len(winners)+1)/2)
	for i := 0; i < len(winners); i += 2 {
		var opponent *bracketNode
		if i+1 < len(winners) {
			opponent = winners[i+1]
		}
		pairs = append(pairs, [2]*bracketNode{winners[i], opponent})
	}
	return pairs
}

func playMatch(slot int, a, b *bracketNode, week int) (models.Match, *bracketNode) {
	match := models.Match{Slot: slot, Team1: models.MatchSide{Team: a.ref}}
	if b == nil {
		match.Bye = true
		match.Team1.Score = a.roster.BestBall(week)
		match.Team1.Lineup = a.roster.Lineup(week)
		winner := a.ref
		match.Winner = &winner
		return match, a
	}
	match.Team2 = models.MatchSide{Team: b.ref}

	sa, sb := a.roster.BestBall(week), b.roster.BestBall(week)
	if sa == 0 && sb == 0 {
		return match, nil
	}
	match.Team1.Score, match.Team1.Lineup = sa, a.roster.Lineup(week)
	match.Team2.Score, match.Team2.Lineup = sb, b.roster.Lineup(week)

	winner := a
	if beats(b, sb, a, sa) {
		winner = b
	}
	ref := winner.ref
	match.Winner = &ref
	return match, winner
}

// beats reports whether x wins over y: higher score, then better final seed,
// then earlier owner name, then owner id.
func beats(x *bracketNode, xs float64, y *bracketNode, ys float64) bool {
	if xs != ys {
		return xs > ys
	}
	if x.ref.FinalSeed != y.ref.FinalSeed {
		return x.ref.FinalSeed < y.ref.FinalSeed
	}
	if c := strings.Compare(x.ref.OwnerName, y.ref.OwnerName); c != 0 {
		return c < 0
	}
	return x.ref.OwnerID < y.ref.OwnerID
}

// crownChampion emits a champion only when every scheduled round was played,
// the final has a winner, and every round week carries nonzero scoring among
// the god's teams.
func crownChampion(god *models.God, p GodParams, participants []*models.Roster) *models.Champion {
	if len(p.RoundWeeks) == 0 || len(god.Rounds) != len(p.RoundWeeks) {
		return nil
	}
	final := god.Rounds[len(god.Rounds)-1]
	if len(final.Matches) != 1 || final.Matches[0].Winner == nil {
		return nil
	}
	for _, w := range p.RoundWeeks {
		if !anyNonZero(participants, w) {
			return nil
		}
	}

	winner := *final.Matches[0].Winner
	league := p.Light
	if winner.Side == models.SideDark {
		league = p.Dark
	}
	var roster *models.Roster
	for _, r := range participants {
		if r.LeagueID == winner.LeagueID && r.OwnerID == winner.OwnerID {
			roster = r
			break
		}
	}
	if roster == nil {
		return nil
	}

	weekly := make(map[int]float64, len(roster.BestBallScores))
	for w, v := range roster.BestBallScores {
		weekly[w] = v
	}
	return &models.Champion{
		God:          god.Name,
		Division:     god.Division,
		LeagueID:     league.League.ID,
		LeagueName:   league.League.Name,
		Side:         winner.Side,
		OwnerID:      winner.OwnerID,
		OwnerName:    winner.OwnerName,
		FinalSeed:    winner.FinalSeed,
		WeeklyScores: weekly,
	}
}

func godSide(league *models.LeagueResult) *models.GodSide {
	if league == nil || league.League == nil {
		return nil
	}
	side := &models.GodSide{
		LeagueID:     league.League.ID,
		LeagueName:   league.League.Name,
		Seeds:        make([]models.SeedEntry, 0, len(league.Survivors)),
		Eliminations: make([]models.Elimination, 0, len(league.Eliminations)),
	}
	for _, r := range league.Survivors {
		if r.FinalSeed == nil {
			continue
		}
		side.Seeds = append(side.Seeds, models.SeedEntry{
			FinalSeed:   *r.FinalSeed,
			InitialSeed: r.InitialSeed,
			RosterID:    r.RosterID,
			OwnerID:     r.OwnerID,
			OwnerName:   r.OwnerName,
		})
	}
	side.Eliminations = append(side.Eliminations, league.Eliminations...)
	return side
}
