package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/gods-bracket/models"
	"github.com/lib/pq"
)

var (
	ErrLeagueNotFound   = errors.New("league not found")
	ErrSeedConflict     = errors.New("seed already assigned in this league")
	ErrSeedLeagueAbsent = errors.New("seed references an unknown league")
)

type SeedRepository interface {
	GetSeeds(ctx context.Context, year int) ([]models.SeedRow, error)
	SetLeagueName(ctx context.Context, year int, leagueID, name string) error
	GetDivisionOrder(ctx context.Context, year int) (map[string][]string, error)
	UpsertSeed(ctx context.Context, exec SQLExecutor, year int, row models.SeedRow) error
}

type postgresSeedRepository struct {
	db *sql.DB
}

func NewPostgresSeedRepository(db *sql.DB) SeedRepository {
	return &postgresSeedRepository{db: db}
}

func (r *postgresSeedRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// GetSeeds returns one row per (league, owner). Leagues without any owner
// rows are returned once with an empty OwnerID.
func (r *postgresSeedRepository) GetSeeds(ctx context.Context, year int) ([]models.SeedRow, error) {
	executor := r.getExecutor(nil)
	query := `
		SELECT
			l.league_id, l.division, l.god_name, l.side, l.league_name,
			s.owner_id, s.owner_name, s.seed
		FROM guillotine_leagues l
		LEFT JOIN guillotine_seeds s ON s.year = l.year AND s.league_id = l.league_id
		WHERE l.year = $1
		ORDER BY l.id, s.seed NULLS LAST, s.id`

	rows, err := executor.QueryContext(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query seeds for %d: %w", year, err)
	}
	defer rows.Close()

	var out []models.SeedRow
	for rows.Next() {
		var (
			row        models.SeedRow
			leagueName sql.NullString
			ownerID    sql.NullString
			ownerName  sql.NullString
			seed       sql.NullInt64
		)
		if err := rows.Scan(
			&row.LeagueID, &row.Division, &row.GodName, &row.Side, &leagueName,
			&ownerID, &ownerName, &seed,
		); err != nil {
			return nil, fmt.Errorf("failed to scan seed row: %w", err)
		}
		out = append(out, withOwnerColumns(row, leagueName, ownerID, ownerName, seed))
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate seed rows: %w", err)
	}
	return out, nil
}

// withOwnerColumns fills the nullable columns of a seed row. A league without
// owners yields NULL owner columns and maps to an empty OwnerID.
func withOwnerColumns(row models.SeedRow, leagueName, ownerID, ownerName sql.NullString, seed sql.NullInt64) models.SeedRow {
	row.LeagueName = nullableString(leagueName)
	row.OwnerID = ownerID.String
	row.OwnerName = ownerName.String
	row.Seed = nullableInt(seed)
	return row
}

func (r *postgresSeedRepository) SetLeagueName(ctx context.Context, year int, leagueID, name string) error {
	executor := r.getExecutor(nil)
	query := `UPDATE guillotine_leagues SET league_name = $3 WHERE year = $1 AND league_id = $2`

	result, err := executor.ExecContext(ctx, query, year, leagueID, name)
	if err != nil {
		return fmt.Errorf("failed to update name of league %s: %w", leagueID, err)
	}
	return checkAffectedRows(result, ErrLeagueNotFound)
}

// GetDivisionOrder returns the canonical god order per division.
func (r *postgresSeedRepository) GetDivisionOrder(ctx context.Context, year int) (map[string][]string, error) {
	executor := r.getExecutor(nil)
	query := `SELECT division, god_order FROM guillotine_division_order WHERE year = $1`

	rows, err := executor.QueryContext(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query division order for %d: %w", year, err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var (
			division string
			order    []string
		)
		if err := rows.Scan(&division, pq.Array(&order)); err != nil {
			return nil, fmt.Errorf("failed to scan division order: %w", err)
		}
		out[division] = order
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate division order: %w", err)
	}
	return out, nil
}

// UpsertSeed records an owner and their seed for a registered league.
func (r *postgresSeedRepository) UpsertSeed(ctx context.Context, exec SQLExecutor, year int, row models.SeedRow) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO guillotine_seeds (year, league_id, owner_id, owner_name, seed)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (year, league_id, owner_id)
		DO UPDATE SET owner_name = EXCLUDED.owner_name, seed = EXCLUDED.seed`

	_, err := executor.ExecContext(ctx, query, year, row.LeagueID, row.OwnerID, row.OwnerName, row.Seed)
	return r.handleSeedError(err)
}

func (r *postgresSeedRepository) handleSeedError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23503":
			return ErrSeedLeagueAbsent
		case "23505":
			return ErrSeedConflict
		}
	}
	return err
}
