package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Dosada05/gods-bracket/models"
	"github.com/Dosada05/gods-bracket/repositories"
	"github.com/Dosada05/gods-bracket/sleeper"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// LeagueInfoSource resolves league display names from the score feed.
type LeagueInfoSource interface {
	GetLeague(ctx context.Context, leagueID string) (*sleeper.League, error)
}

// DivisionConfig is a division with its gods in display order.
type DivisionConfig struct {
	Name  string
	Order []string
	Gods  []models.GodConfig
}

// SeedRegistry is the grouped view of one year's seed rows.
type SeedRegistry struct {
	Year         int
	Leagues      map[string]*models.LeagueConfig
	LeagueOrder  []string
	Divisions    []DivisionConfig
	Completeness []models.SeedCompleteness
}

// FullySeeded returns the leagues ready for processing, in discovery order.
func (r *SeedRegistry) FullySeeded() []*models.LeagueConfig {
	out := make([]*models.LeagueConfig, 0, len(r.LeagueOrder))
	for _, id := range r.LeagueOrder {
		if l := r.Leagues[id]; l.FullySeeded() {
			out = append(out, l)
		}
	}
	return out
}

type SeedService interface {
	Load(ctx context.Context, year int) (*SeedRegistry, error)
	SetSeeds(ctx context.Context, year int, leagueID string, owners []models.OwnerSeed) error
}

type seedService struct {
	db      *sql.DB
	repo    repositories.SeedRepository
	feed    LeagueInfoSource
	logger  *logrus.Logger
	workers int
}

func NewSeedService(db *sql.DB, repo repositories.SeedRepository, feed LeagueInfoSource, logger *logrus.Logger, workers int) SeedService {
	if workers < 1 {
		workers = 1
	}
	return &seedService{db: db, repo: repo, feed: feed, logger: logger, workers: workers}
}

func (s *seedService) Load(ctx context.Context, year int) (*SeedRegistry, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}

	rows, err := s.repo.GetSeeds(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSeedRegistryUnavailable, err)
	}

	order, err := s.repo.GetDivisionOrder(ctx, year)
	if err != nil {
		s.logger.WithError(err).WithField("year", year).Warn("Canonical division order unavailable, using discovery order")
		order = nil
	}

	registry := groupSeedRows(year, rows)
	s.backfillLeagueNames(ctx, registry)
	registry.Completeness = seedCompleteness(registry)
	registry.Divisions = s.orderDivisions(registry, order)
	return registry, nil
}

// groupSeedRows groups flat registry rows by league, keeping first-seen order.
func groupSeedRows(year int, rows []models.SeedRow) *SeedRegistry {
	registry := &SeedRegistry{Year: year, Leagues: make(map[string]*models.LeagueConfig)}

	for _, row := range rows {
		league, ok := registry.Leagues[row.LeagueID]
		if !ok {
			league = &models.LeagueConfig{
				ID:       row.LeagueID,
				Division: row.Division,
				GodName:  row.GodName,
				Side:     row.Side,
				Owners:   make([]models.OwnerSeed, 0),
			}
			if row.LeagueName != nil {
				league.Name = strings.TrimSpace(*row.LeagueName)
			}
			registry.Leagues[row.LeagueID] = league
			registry.LeagueOrder = append(registry.LeagueOrder, row.LeagueID)
		}
		if row.OwnerID == "" {
			continue
		}
		league.Owners = append(league.Owners, models.OwnerSeed{
			OwnerID:   row.OwnerID,
			OwnerName: row.OwnerName,
			Seed:      row.Seed,
		})
	}
	return registry
}

// backfillLeagueNames resolves missing league names from the score feed and
// writes them back to the registry. Failures only cost the display name.
func (s *seedService) backfillLeagueNames(ctx context.Context, registry *SeedRegistry) {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, id := range registry.LeagueOrder {
		league := registry.Leagues[id]
		if league.Name != "" {
			continue
		}
		league.Name = league.ID

		g.Go(func() error {
			log := s.logger.WithFields(logrus.Fields{"year": registry.Year, "league_id": league.ID})

			info, err := s.feed.GetLeague(gCtx, league.ID)
			if err != nil {
				log.WithError(err).Warn("Failed to fetch league name, using league id")
				return nil
			}
			name := strings.TrimSpace(info.Name)
			if name == "" {
				return nil
			}
			league.Name = name

			if err := s.repo.SetLeagueName(gCtx, registry.Year, league.ID, name); err != nil {
				log.WithError(err).Warn("Failed to persist league name")
			}
			return nil
		})
	}
	_ = g.Wait()
}

func seedCompleteness(registry *SeedRegistry) []models.SeedCompleteness {
	out := make([]models.SeedCompleteness, 0)
	for _, id := range registry.LeagueOrder {
		league := registry.Leagues[id]
		if league.FullySeeded() {
			continue
		}
		rec := models.SeedCompleteness{
			LeagueID:      league.ID,
			LeagueName:    league.Name,
			Division:      league.Division,
			GodName:       league.GodName,
			Total:         len(league.Owners),
			MissingOwners: make([]models.OwnerSeed, 0),
		}
		for _, o := range league.Owners {
			if o.Seed != nil {
				rec.Seeded++
			} else {
				rec.MissingOwners = append(rec.MissingOwners, o)
			}
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Division != out[j].Division {
			return out[i].Division < out[j].Division
		}
		return out[i].LeagueName < out[j].LeagueName
	})
	return out
}

// orderDivisions lays out divisions in discovery order and their gods by the
// canonical order, appending unlisted gods in discovery order.
func (s *seedService) orderDivisions(registry *SeedRegistry, canonical map[string][]string) []DivisionConfig {
	type godSlot struct {
		config models.GodConfig
		seen   bool
	}
	var divisionNames []string
	godNames := make(map[string][]string)
	gods := make(map[string]map[string]*godSlot)

	for _, id := range registry.LeagueOrder {
		league := registry.Leagues[id]
		if _, ok := gods[league.Division]; !ok {
			divisionNames = append(divisionNames, league.Division)
			gods[league.Division] = make(map[string]*godSlot)
		}
		slot, ok := gods[league.Division][league.GodName]
		if !ok {
			slot = &godSlot{config: models.GodConfig{Name: league.GodName, Division: league.Division}}
			gods[league.Division][league.GodName] = slot
			godNames[league.Division] = append(godNames[league.Division], league.GodName)
		}

		target := &slot.config.LightLeagueID
		if league.Side == models.SideDark {
			target = &slot.config.DarkLeagueID
		}
		if *target != "" {
			s.logger.WithFields(logrus.Fields{
				"division":  league.Division,
				"god":       league.GodName,
				"side":      league.Side,
				"league_id": league.ID,
			}).Warn("Duplicate league for god side, keeping the first")
			continue
		}
		*target = league.ID
	}

	out := make([]DivisionConfig, 0, len(divisionNames))
	for _, division := range divisionNames {
		ordered := make([]string, 0, len(godNames[division]))
		for _, name := range canonical[division] {
			if slot, ok := gods[division][name]; ok && !slot.seen {
				slot.seen = true
				ordered = append(ordered, name)
			}
		}
		for _, name := range godNames[division] {
			if slot := gods[division][name]; !slot.seen {
				slot.seen = true
				ordered = append(ordered, name)
			}
		}

		dc := DivisionConfig{Name: division, Order: ordered, Gods: make([]models.GodConfig, 0, len(ordered))}
		for i, name := range ordered {
			cfg := gods[division][name].config
			cfg.Index = i
			dc.Gods = append(dc.Gods, cfg)
		}
		out = append(out, dc)
	}
	return out
}

// SetSeeds records owners and their initial seeds for one league in a
// single transaction.
func (s *seedService) SetSeeds(ctx context.Context, year int, leagueID string, owners []models.OwnerSeed) (txErr error) {
	if err := validateYear(year); err != nil {
		return err
	}
	if err := validateOwnerSeeds(leagueID, owners); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.WithError(rbErr).Error("Failed to roll back seed transaction")
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			txErr = fmt.Errorf("failed to commit seeds: %w", cErr)
		}
	}()

	for _, o := range owners {
		row := models.SeedRow{LeagueID: leagueID, OwnerID: o.OwnerID, OwnerName: strings.TrimSpace(o.OwnerName), Seed: o.Seed}
		if err := s.repo.UpsertSeed(ctx, tx, year, row); err != nil {
			switch {
			case errors.Is(err, repositories.ErrSeedLeagueAbsent):
				return ErrLeagueNotFound
			case errors.Is(err, repositories.ErrSeedConflict):
				return ErrSeedConflict
			}
			return fmt.Errorf("failed to save seed for owner %s: %w", o.OwnerID, err)
		}
	}

	s.logger.WithFields(logrus.Fields{"year": year, "league_id": leagueID, "owners": len(owners)}).Info("Seeds updated")
	return nil
}

func validateOwnerSeeds(leagueID string, owners []models.OwnerSeed) error {
	if strings.TrimSpace(leagueID) == "" {
		return fmt.Errorf("%w: league id is required", ErrValidationFailed)
	}
	if len(owners) == 0 {
		return fmt.Errorf("%w: at least one owner is required", ErrValidationFailed)
	}
	ownersSeen := make(map[string]bool, len(owners))
	seedsSeen := make(map[int]bool, len(owners))
	for _, o := range owners {
		if strings.TrimSpace(o.OwnerID) == "" {
			return fmt.Errorf("%w: owner id is required", ErrValidationFailed)
		}
		if ownersSeen[o.OwnerID] {
			return fmt.Errorf("%w: owner %s listed twice", ErrValidationFailed, o.OwnerID)
		}
		ownersSeen[o.OwnerID] = true
		if o.Seed == nil {
			continue
		}
		if *o.Seed < 1 {
			return fmt.Errorf("%w: seed for owner %s must be positive", ErrValidationFailed, o.OwnerID)
		}
		if seedsSeen[*o.Seed] {
			return fmt.Errorf("%w: seed %d assigned twice", ErrSeedConflict, *o.Seed)
		}
		seedsSeen[*o.Seed] = true
	}
	return nil
}
