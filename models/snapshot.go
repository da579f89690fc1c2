package models

import "time"

const SnapshotVersion = 1

// SnapshotStatus describes how complete the input data was for a snapshot.
type SnapshotStatus string

const (
	SnapshotStatusOK           SnapshotStatus = "ok"
	SnapshotStatusPartial      SnapshotStatus = "partial"
	SnapshotStatusMissingSeeds SnapshotStatus = "missing_seeds"
)

type ChampionshipEntry struct {
	Champion
	WeekScore       float64 `json:"weekScore"`
	CumulativeScore float64 `json:"cumulativeScore"`
}

type ChampionshipStanding struct {
	Rank int `json:"rank"`
	ChampionshipEntry
}

type GrandChampionship struct {
	Week         int                    `json:"week"`
	Started      bool                   `json:"started"`
	Participants []ChampionshipEntry    `json:"participants"`
	Standings    []ChampionshipStanding `json:"standings"`
}

type LeagueError struct {
	LeagueID   string `json:"leagueId"`
	LeagueName string `json:"leagueName"`
	Error      string `json:"error"`
}

// Snapshot is the whole document stored per tournament year.
type Snapshot struct {
	Version           int                  `json:"version"`
	Year              int                  `json:"year"`
	Name              string               `json:"name"`
	UpdatedAt         time.Time            `json:"updatedAt"`
	Status            SnapshotStatus       `json:"status"`
	CurrentWeek       *int                 `json:"currentWeek"`
	MissingSeeds      []SeedCompleteness   `json:"missingSeeds"`
	Divisions         map[string]*Division `json:"divisions"`
	GrandChampionship *GrandChampionship   `json:"grandChampionship"`
	LeagueErrors      []LeagueError        `json:"leagueErrors"`
}
