package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/gods-bracket/models"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

type SnapshotRepository interface {
	Upsert(ctx context.Context, snapshot *models.Snapshot) error
	GetByYear(ctx context.Context, year int) (*models.Snapshot, error)
}

type postgresSnapshotRepository struct {
	db *sql.DB
}

func NewPostgresSnapshotRepository(db *sql.DB) SnapshotRepository {
	return &postgresSnapshotRepository{db: db}
}

// Upsert replaces the whole document for the snapshot's year.
func (r *postgresSnapshotRepository) Upsert(ctx context.Context, snapshot *models.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	query := `
		INSERT INTO guillotine_snapshots (year, status, payload, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (year)
		DO UPDATE SET status = EXCLUDED.status, payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`

	if _, err := r.db.ExecContext(ctx, query, snapshot.Year, snapshot.Status, payload, snapshot.UpdatedAt); err != nil {
		return fmt.Errorf("failed to upsert snapshot for %d: %w", snapshot.Year, err)
	}
	return nil
}

func (r *postgresSnapshotRepository) GetByYear(ctx context.Context, year int) (*models.Snapshot, error) {
	query := `SELECT payload FROM guillotine_snapshots WHERE year = $1`

	var payload []byte
	err := r.db.QueryRowContext(ctx, query, year).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get snapshot for %d: %w", year, err)
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot for %d: %w", year, err)
	}
	return &snapshot, nil
}
