package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/gods-bracket/brackets"
	"github.com/Dosada05/gods-bracket/models"
	"github.com/Dosada05/gods-bracket/repositories"
	"github.com/Dosada05/gods-bracket/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// PlayerLoader provides the player directory once per build.
type PlayerLoader interface {
	Load(ctx context.Context) (brackets.PlayerMap, error)
}

// SnapshotPublisher mirrors a finished snapshot to a public location.
type SnapshotPublisher interface {
	PublishSnapshot(ctx context.Context, year int, body []byte) (string, error)
}

type BuildResult struct {
	RunID        string           `json:"runId"`
	Snapshot     *models.Snapshot `json:"snapshot"`
	PublishedURL string           `json:"publishedUrl,omitempty"`
	Duration     time.Duration    `json:"-"`
}

type SnapshotService interface {
	Build(ctx context.Context, year int) (*BuildResult, error)
	Get(ctx context.Context, year int) (*models.Snapshot, error)
}

type snapshotService struct {
	seeds     SeedService
	leagues   LeagueService
	players   PlayerLoader
	repo      repositories.SnapshotRepository
	publisher SnapshotPublisher
	settings  TournamentSettings
	logger    *logrus.Logger
	now       func() time.Time

	building sync.Mutex
}

// NewSnapshotService wires the build pipeline. publisher may be nil.
func NewSnapshotService(
	seeds SeedService,
	leagues LeagueService,
	players PlayerLoader,
	repo repositories.SnapshotRepository,
	publisher SnapshotPublisher,
	settings TournamentSettings,
	logger *logrus.Logger,
) SnapshotService {
	if settings.Workers < 1 {
		settings.Workers = 1
	}
	return &snapshotService{
		seeds:     seeds,
		leagues:   leagues,
		players:   players,
		repo:      repo,
		publisher: publisher,
		settings:  settings,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *snapshotService) Get(ctx context.Context, year int) (*models.Snapshot, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}
	snapshot, err := s.repo.GetByYear(ctx, year)
	if err != nil {
		if errors.Is(err, repositories.ErrSnapshotNotFound) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}
	return snapshot, nil
}

// Build recomputes the whole tournament for a year and replaces its stored
// snapshot. Only one build runs at a time per process.
func (s *snapshotService) Build(ctx context.Context, year int) (*BuildResult, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}
	if !s.building.TryLock() {
		return nil, ErrRebuildInProgress
	}
	defer s.building.Unlock()

	started := s.now()
	runID := uuid.NewString()
	log := s.logger.WithFields(logrus.Fields{"run_id": runID, "year": year})
	log.Info("Snapshot build started")

	registry, err := s.seeds.Load(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("failed to load seed registry: %w", err)
	}

	snapshot := &models.Snapshot{
		Version:      models.SnapshotVersion,
		Year:         year,
		Name:         s.settings.Name,
		UpdatedAt:    started.UTC(),
		MissingSeeds: registry.Completeness,
		Divisions:    make(map[string]*models.Division),
		LeagueErrors: make([]models.LeagueError, 0),
	}

	seeded := registry.FullySeeded()
	if len(seeded) == 0 {
		snapshot.Status = models.SnapshotStatusMissingSeeds
		log.WithField("leagues", len(registry.LeagueOrder)).Warn("No fully seeded league, nothing to compute")
	} else {
		players, err := s.players.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPlayerDirectoryUnavailable, err)
		}

		results := s.processLeagues(ctx, log, seeded, players, snapshot)
		if len(results) == 0 {
			log.WithFields(logrus.Fields{
				"seeded_leagues": len(seeded),
				"league_errors":  len(snapshot.LeagueErrors),
			}).Error("Every seeded league failed, no bracket could be computed")
		}
		s.assemble(registry, results, snapshot)
	}

	if err := s.repo.Upsert(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to store snapshot: %w", err)
	}

	result := &BuildResult{RunID: runID, Snapshot: snapshot}
	if s.publisher != nil {
		result.PublishedURL = s.publish(ctx, log, snapshot)
	}

	result.Duration = s.now().Sub(started)
	log.WithFields(logrus.Fields{
		"status":        snapshot.Status,
		"league_errors": len(snapshot.LeagueErrors),
		"missing_seeds": len(snapshot.MissingSeeds),
		"duration":      result.Duration.String(),
	}).Info("Snapshot build finished")
	return result, nil
}

// processLeagues runs every seeded league on the worker pool. A failed
// league is recorded on the snapshot and never cancels the others.
func (s *snapshotService) processLeagues(
	ctx context.Context,
	log *logrus.Entry,
	leagues []*models.LeagueConfig,
	players brackets.PlayerLookup,
	snapshot *models.Snapshot,
) map[string]*models.LeagueResult {
	var mu sync.Mutex
	results := make(map[string]*models.LeagueResult, len(leagues))

	g := new(errgroup.Group)
	g.SetLimit(s.settings.Workers)
	for _, league := range leagues {
		g.Go(func() error {
			res, err := s.leagues.Process(ctx, league, players)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.WithError(err).WithField("league_id", league.ID).Error("League processing failed")
				snapshot.LeagueErrors = append(snapshot.LeagueErrors, models.LeagueError{
					LeagueID:   league.ID,
					LeagueName: league.Name,
					Error:      err.Error(),
				})
				return nil
			}
			results[league.ID] = res
			return nil
		})
	}
	_ = g.Wait()

	sortLeagueErrors(snapshot.LeagueErrors)
	return results
}

// assemble builds every god bracket and the grand championship once all
// leagues are processed.
func (s *snapshotService) assemble(registry *SeedRegistry, results map[string]*models.LeagueResult, snapshot *models.Snapshot) {
	var survivors []*models.Roster
	for _, id := range registry.LeagueOrder {
		if res, ok := results[id]; ok {
			survivors = append(survivors, res.Survivors...)
		}
	}
	currentWeek, hasCurrent := brackets.DetectCurrentRoundWeek(survivors, s.settings.PlayoffWeeks)
	if hasCurrent {
		snapshot.CurrentWeek = utils.IntPtr(currentWeek)
	}

	var champions []*models.Champion
	for _, dc := range registry.Divisions {
		division := &models.Division{Name: dc.Name, Order: dc.Order, Gods: make([]*models.God, 0, len(dc.Gods))}
		for _, gc := range dc.Gods {
			god := brackets.BuildGodBracket(brackets.GodParams{
				Config:      gc,
				Light:       results[gc.LightLeagueID],
				Dark:        results[gc.DarkLeagueID],
				RoundWeeks:  s.settings.PlayoffWeeks,
				CurrentWeek: currentWeek,
				HasCurrent:  hasCurrent,
				MaxSeeds:    s.settings.MaxSeeds,
			})
			if god.Champion != nil {
				champions = append(champions, god.Champion)
			}
			division.Gods = append(division.Gods, god)
		}
		snapshot.Divisions[dc.Name] = division
	}

	snapshot.GrandChampionship = brackets.AggregateChampionship(champions, s.settings.ChampionshipWeek, s.settings.PlayoffWeeks)

	snapshot.Status = models.SnapshotStatusOK
	if len(snapshot.MissingSeeds) > 0 {
		snapshot.Status = models.SnapshotStatusPartial
	}
}

func (s *snapshotService) publish(ctx context.Context, log *logrus.Entry, snapshot *models.Snapshot) string {
	body, err := json.Marshal(snapshot)
	if err != nil {
		log.WithError(err).Warn("Failed to encode snapshot for publishing")
		return ""
	}
	location, err := s.publisher.PublishSnapshot(ctx, snapshot.Year, body)
	if err != nil {
		log.WithError(err).Warn("Failed to publish snapshot mirror")
		return ""
	}
	return location
}

func sortLeagueErrors(errs []models.LeagueError) {
	sort.Slice(errs, func(i, j int) bool { return errs[i].LeagueID < errs[j].LeagueID })
}
