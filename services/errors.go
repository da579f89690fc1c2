package services

import "errors"

// Errors shared by services and mapped to HTTP statuses by handlers.
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidYear      = errors.New("invalid tournament year")

	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrLeagueNotFound   = errors.New("league not found")

	ErrSeedRegistryUnavailable    = errors.New("seed registry unavailable")
	ErrPlayerDirectoryUnavailable = errors.New("player directory unavailable")
	ErrSeedConflict               = errors.New("seed already assigned to another owner")
	ErrRebuildInProgress          = errors.New("a snapshot rebuild is already running")
)

const (
	minTournamentYear = 2000
	maxTournamentYear = 2100
)

func validateYear(year int) error {
	if year < minTournamentYear || year > maxTournamentYear {
		return ErrInvalidYear
	}
	return nil
}
