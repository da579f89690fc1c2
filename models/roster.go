package models

// Roster is an owner's team inside one league.
type Roster struct {
	RosterID         int                     `json:"rosterId"`
	LeagueID         string                  `json:"leagueId"`
	OwnerID          string                  `json:"ownerId"`
	OwnerName        string                  `json:"ownerName"`
	InitialSeed      *int                    `json:"initialSeed"`
	EliminatedWeek   *int                    `json:"eliminatedWeek"`
	GuillotineScores map[int]float64         `json:"guillotineScores"`
	BestBallScores   map[int]float64         `json:"bestBallScores"`
	BestBallLineups  map[int]*BestBallLineup `json:"-"`
	FinalSeed        *int                    `json:"finalSeed"`
}

func NewRoster(leagueID string, rosterID int, ownerID, ownerName string, seed *int) *Roster {
	return &Roster{
		RosterID:         rosterID,
		LeagueID:         leagueID,
		OwnerID:          ownerID,
		OwnerName:        ownerName,
		InitialSeed:      seed,
		GuillotineScores: make(map[int]float64),
		BestBallScores:   make(map[int]float64),
		BestBallLineups:  make(map[int]*BestBallLineup),
	}
}

func (r *Roster) Alive() bool {
	return r.EliminatedWeek == nil
}

// BestBall returns the best-ball score for a week, 0 when not recorded.
func (r *Roster) BestBall(week int) float64 {
	if r == nil {
		return 0
	}
	return r.BestBallScores[week]
}

func (r *Roster) Lineup(week int) *BestBallLineup {
	if r == nil {
		return nil
	}
	return r.BestBallLineups[week]
}

// SetBestBall stores a computed lineup and its total for a week.
func (r *Roster) SetBestBall(week int, lineup *BestBallLineup) {
	if lineup == nil {
		return
	}
	r.BestBallLineups[week] = lineup
	r.BestBallScores[week] = lineup.Total
}

type LineupSlot string

const (
	SlotQB        LineupSlot = "QB"
	SlotRB        LineupSlot = "RB"
	SlotWR        LineupSlot = "WR"
	SlotTE        LineupSlot = "TE"
	SlotFlex      LineupSlot = "FLEX"
	SlotSuperFlex LineupSlot = "SUPER_FLEX"
	SlotBench     LineupSlot = "BN"
)

type LineupPlayer struct {
	PlayerID string     `json:"playerId"`
	Name     string     `json:"name"`
	Position string     `json:"position"`
	Points   float64    `json:"points"`
	Slot     LineupSlot `json:"slot"`
}

type BestBallLineup struct {
	Starters []LineupPlayer `json:"starters"`
	Bench    []LineupPlayer `json:"bench"`
	Total    float64        `json:"total"`
}
