package models

// Side identifies which half of a god a league feeds.
type Side string

const (
	SideLight Side = "light"
	SideDark  Side = "dark"
)

func (s Side) Valid() bool {
	return s == SideLight || s == SideDark
}

// SeedRow is one raw row of the seed registry. League-only rows (no owners yet)
// carry an empty OwnerID.
type SeedRow struct {
	LeagueID   string  `json:"league_id" db:"league_id"`
	Division   string  `json:"division" db:"division"`
	GodName    string  `json:"god_name" db:"god_name"`
	Side       Side    `json:"side" db:"side"`
	OwnerID    string  `json:"owner_id" db:"owner_id"`
	OwnerName  string  `json:"owner_name" db:"owner_name"`
	Seed       *int    `json:"seed,omitempty" db:"seed"`
	LeagueName *string `json:"league_name,omitempty" db:"league_name"`
}

type OwnerSeed struct {
	OwnerID   string `json:"ownerId"`
	OwnerName string `json:"ownerName"`
	Seed      *int   `json:"seed"`
}

// LeagueConfig is a league as known to the seed registry.
type LeagueConfig struct {
	ID       string      `json:"leagueId"`
	Name     string      `json:"leagueName"`
	Division string      `json:"division"`
	GodName  string      `json:"god"`
	Side     Side        `json:"side"`
	Owners   []OwnerSeed `json:"owners"`
}

// FullySeeded reports whether every owner row of the league carries a seed.
// A league without any owner rows is never considered seeded.
func (l *LeagueConfig) FullySeeded() bool {
	if len(l.Owners) == 0 {
		return false
	}
	for _, o := range l.Owners {
		if o.Seed == nil {
			return false
		}
	}
	return true
}

// SeedFor returns the registry seed of an owner, or nil.
func (l *LeagueConfig) SeedFor(ownerID string) *int {
	for _, o := range l.Owners {
		if o.OwnerID == ownerID {
			return o.Seed
		}
	}
	return nil
}

// GodConfig pairs the two leagues of one bracket unit.
type GodConfig struct {
	Index         int    `json:"index"`
	Name          string `json:"name"`
	Division      string `json:"division"`
	LightLeagueID string `json:"lightLeagueId,omitempty"`
	DarkLeagueID  string `json:"darkLeagueId,omitempty"`
}

type SeedCompleteness struct {
	LeagueID      string      `json:"leagueId"`
	LeagueName    string      `json:"leagueName"`
	Division      string      `json:"division"`
	GodName       string      `json:"god"`
	Seeded        int         `json:"seeded"`
	Total         int         `json:"total"`
	MissingOwners []OwnerSeed `json:"missingOwners"`
}

// Elimination records the week an owner was cut during the guillotine phase.
type Elimination struct {
	Week      int      `json:"week"`
	RosterID  int      `json:"rosterId"`
	OwnerID   string   `json:"ownerId"`
	OwnerName string   `json:"ownerName"`
	Score     *float64 `json:"score"`
	Reason    string   `json:"reason"`
}

// LeagueResult is the output of processing one fully seeded league.
type LeagueResult struct {
	League       *LeagueConfig `json:"league"`
	Rosters      []*Roster     `json:"-"`
	Survivors    []*Roster     `json:"-"`
	Eliminations []Elimination `json:"eliminations"`
}
