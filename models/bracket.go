package models

// SeedEntry is a survivor as shown in a god's seed list.
type SeedEntry struct {
	FinalSeed   int    `json:"finalSeed"`
	InitialSeed *int   `json:"initialSeed"`
	RosterID    int    `json:"rosterId"`
	OwnerID     string `json:"ownerId"`
	OwnerName   string `json:"ownerName"`
}

// GodSide is one league of a god with its survivor seeding.
type GodSide struct {
	LeagueID     string        `json:"leagueId"`
	LeagueName   string        `json:"leagueName"`
	Seeds        []SeedEntry   `json:"seeds"`
	Eliminations []Elimination `json:"eliminations"`
}

// TeamRef identifies a bracket team across leagues.
type TeamRef struct {
	LeagueID  string `json:"leagueId"`
	Side      Side   `json:"side"`
	OwnerID   string `json:"ownerId"`
	OwnerName string `json:"ownerName"`
	FinalSeed int    `json:"finalSeed"`
}

// Pairing is a fixed round one match-up, light seed against dark seed.
type Pairing struct {
	Slot      int     `json:"slot"`
	LightSeed int     `json:"lightSeed"`
	DarkSeed  int     `json:"darkSeed"`
	Light     TeamRef `json:"light"`
	Dark      TeamRef `json:"dark"`
}

type MatchSide struct {
	Team   TeamRef         `json:"team"`
	Score  float64         `json:"score"`
	Lineup *BestBallLineup `json:"lineup"`
}

type Match struct {
	Slot   int       `json:"slot"`
	Team1  MatchSide `json:"team1"`
	Team2  MatchSide `json:"team2"`
	Bye    bool      `json:"bye,omitempty"`
	Winner *TeamRef  `json:"winner"`
}

// Decided reports whether the match has a winner.
func (m *Match) Decided() bool {
	return m.Winner != nil
}

type Round struct {
	Round   int     `json:"round"`
	Week    int     `json:"week"`
	Matches []Match `json:"matches"`
}

// Champion is the winner of a god's final round.
type Champion struct {
	God          string          `json:"god"`
	Division     string          `json:"division"`
	LeagueID     string          `json:"leagueId"`
	LeagueName   string          `json:"leagueName"`
	Side         Side            `json:"side"`
	OwnerID      string          `json:"ownerId"`
	OwnerName    string          `json:"ownerName"`
	FinalSeed    int             `json:"finalSeed"`
	WeeklyScores map[int]float64 `json:"weeklyScores"`
}

// God is one bracket unit: a light and a dark league feeding a
// single-elimination bracket.
type God struct {
	Index    int       `json:"index"`
	Name     string    `json:"name"`
	Division string    `json:"division"`
	Light    *GodSide  `json:"light"`
	Dark     *GodSide  `json:"dark"`
	Pairings []Pairing `json:"pairings"`
	Rounds   []Round   `json:"rounds"`
	Champion *Champion `json:"champion"`
}

type Division struct {
	Name  string   `json:"name"`
	Order []string `json:"order"`
	Gods  []*God   `json:"gods"`
}
