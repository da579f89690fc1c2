package sleeper

import "fmt"

// League is the subset of /league/{id} the bracket engine reads.
type League struct {
	LeagueID     string `json:"league_id"`
	Name         string `json:"name"`
	Status       string `json:"status"`
	Sport        string `json:"sport"`
	Season       string `json:"season"`
	TotalRosters int    `json:"total_rosters"`
}

type User struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

type Roster struct {
	RosterID int      `json:"roster_id"`
	OwnerID  string   `json:"owner_id"`
	Players  []string `json:"players"`
	Starters []string `json:"starters"`
}

// Matchup is one roster's entry for a scoring week.
type Matchup struct {
	RosterID      int                `json:"roster_id"`
	MatchupID     int                `json:"matchup_id"`
	Points        float64            `json:"points"`
	Starters      []string           `json:"starters"`
	Players       []string           `json:"players"`
	PlayersPoints map[string]float64 `json:"players_points"`
}

type Player struct {
	PlayerID         string   `json:"player_id"`
	FullName         string   `json:"full_name"`
	FirstName        string   `json:"first_name"`
	LastName         string   `json:"last_name"`
	Position         string   `json:"position"`
	Team             string   `json:"team"`
	FantasyPositions []string `json:"fantasy_positions"`
}

// DisplayName falls back to first and last name when full_name is empty,
// which is the case for team defenses.
func (p Player) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	if p.FirstName != "" || p.LastName != "" {
		return fmt.Sprintf("%s %s", p.FirstName, p.LastName)
	}
	return p.PlayerID
}

// APIError is returned for non-200 responses from the Sleeper API.
type APIError struct {
	Endpoint   string `json:"endpoint"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sleeper %s: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// Temporary reports whether the request may succeed when retried.
func (e *APIError) Temporary() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
