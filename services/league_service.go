package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Dosada05/gods-bracket/brackets"
	"github.com/Dosada05/gods-bracket/models"
	"github.com/Dosada05/gods-bracket/sleeper"
	"github.com/Dosada05/gods-bracket/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// weekFetchLimit bounds concurrent matchup requests inside one league.
const weekFetchLimit = 3

// ScoreFeed is the part of the Sleeper client needed to process a league.
type ScoreFeed interface {
	GetLeagueUsers(ctx context.Context, leagueID string) ([]sleeper.User, error)
	GetLeagueRosters(ctx context.Context, leagueID string) ([]sleeper.Roster, error)
	GetMatchups(ctx context.Context, leagueID string, week int) ([]sleeper.Matchup, error)
}

// TournamentSettings carries the week layout of a tournament year.
type TournamentSettings struct {
	Name             string
	GuillotineWeeks  []int
	PlayoffWeeks     []int
	ChampionshipWeek int
	SurvivorTarget   int
	MaxSeeds         int
	Workers          int
}

// scoringWeeks are the weeks that need best-ball lineups.
func (t TournamentSettings) scoringWeeks() []int {
	weeks := append([]int(nil), t.PlayoffWeeks...)
	if t.ChampionshipWeek > 0 {
		weeks = append(weeks, t.ChampionshipWeek)
	}
	return weeks
}

// feedWeeks lists every week a league needs from the feed: the guillotine
// window, the week after it, and the scoring weeks.
func (t TournamentSettings) feedWeeks() []int {
	seen := make(map[int]bool)
	var weeks []int
	add := func(w int) {
		if w > 0 && !seen[w] {
			seen[w] = true
			weeks = append(weeks, w)
		}
	}
	for _, w := range t.GuillotineWeeks {
		add(w)
	}
	if n := len(t.GuillotineWeeks); n > 0 {
		add(t.GuillotineWeeks[n-1] + 1)
	}
	for _, w := range t.scoringWeeks() {
		add(w)
	}
	sort.Ints(weeks)
	return weeks
}

type LeagueService interface {
	Process(ctx context.Context, league *models.LeagueConfig, players brackets.PlayerLookup) (*models.LeagueResult, error)
}

type leagueService struct {
	feed     ScoreFeed
	settings TournamentSettings
	logger   *logrus.Logger
}

func NewLeagueService(feed ScoreFeed, settings TournamentSettings, logger *logrus.Logger) LeagueService {
	return &leagueService{feed: feed, settings: settings, logger: logger}
}

// Process runs the guillotine phase for one fully seeded league and
// computes best-ball lineups for its survivors.
func (s *leagueService) Process(ctx context.Context, league *models.LeagueConfig, players brackets.PlayerLookup) (*models.LeagueResult, error) {
	log := s.logger.WithFields(logrus.Fields{"league_id": league.ID, "league": league.Name})

	rosters, err := s.loadRosters(ctx, league)
	if err != nil {
		return nil, err
	}

	matchups, err := s.loadMatchups(ctx, league.ID)
	if err != nil {
		return nil, err
	}

	scores := make(map[int]brackets.WeekScores, len(matchups))
	for week, ms := range matchups {
		ws := make(brackets.WeekScores, len(ms))
		for _, m := range ms {
			ws[m.RosterID] = m.Points
		}
		scores[week] = ws
	}

	result := brackets.RunGuillotine(rosters, scores, brackets.GuillotineConfig{
		Weeks:          s.settings.GuillotineWeeks,
		SurvivorTarget: s.settings.SurvivorTarget,
	}, func(e brackets.GuillotineEvent) {
		if e.Eliminated != nil {
			log.WithFields(logrus.Fields{
				"week":   e.Week,
				"owner":  e.Eliminated.OwnerName,
				"reason": e.Reason,
				"alive":  e.Alive,
			}).Debug("Roster eliminated")
			return
		}
		log.WithFields(logrus.Fields{"week": e.Week, "stop": e.Stop, "survivors": e.Alive}).Info("Guillotine phase finished")
	})

	for _, week := range s.settings.scoringWeeks() {
		byRoster := make(map[int]sleeper.Matchup, len(matchups[week]))
		for _, m := range matchups[week] {
			byRoster[m.RosterID] = m
		}
		for _, r := range result.Survivors {
			m, ok := byRoster[r.RosterID]
			if !ok {
				continue
			}
			points := matchupPlayerPoints(m)
			if len(points) == 0 {
				continue
			}
			r.SetBestBall(week, brackets.OptimizeBestBall(points, players))
		}
	}

	eliminations := result.Eliminations
	if eliminations == nil {
		eliminations = make([]models.Elimination, 0)
	}
	return &models.LeagueResult{
		League:       league,
		Rosters:      rosters,
		Survivors:    result.Survivors,
		Eliminations: eliminations,
	}, nil
}

func (s *leagueService) loadRosters(ctx context.Context, league *models.LeagueConfig) ([]*models.Roster, error) {
	var (
		users   []sleeper.User
		rosters []sleeper.Roster
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.feed.GetLeagueUsers(gCtx, league.ID)
		return err
	})
	g.Go(func() error {
		var err error
		rosters, err = s.feed.GetLeagueRosters(gCtx, league.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load rosters of league %s: %w", league.ID, err)
	}

	displayNames := make(map[string]string, len(users))
	for _, u := range users {
		displayNames[u.UserID] = u.DisplayName
	}
	registryNames := make(map[string]string, len(league.Owners))
	for _, o := range league.Owners {
		registryNames[o.OwnerID] = o.OwnerName
	}

	out := make([]*models.Roster, 0, len(rosters))
	for _, r := range rosters {
		name := displayNames[r.OwnerID]
		if name == "" {
			name = registryNames[r.OwnerID]
		}
		out = append(out, models.NewRoster(
			league.ID,
			r.RosterID,
			r.OwnerID,
			utils.OwnerLabel(name, r.OwnerID),
			league.SeedFor(r.OwnerID),
		))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RosterID < out[j].RosterID })
	return out, nil
}

func (s *leagueService) loadMatchups(ctx context.Context, leagueID string) (map[int][]sleeper.Matchup, error) {
	var mu sync.Mutex
	out := make(map[int][]sleeper.Matchup)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(weekFetchLimit)
	for _, week := range s.settings.feedWeeks() {
		g.Go(func() error {
			ms, err := s.feed.GetMatchups(gCtx, leagueID, week)
			if err != nil {
				return err
			}
			mu.Lock()
			out[week] = ms
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load matchups of league %s: %w", leagueID, err)
	}
	return out, nil
}

// matchupPlayerPoints lists scored players in feed order: the matchup's
// player list first, then any other scored ids sorted.
func matchupPlayerPoints(m sleeper.Matchup) []brackets.PlayerPoints {
	out := make([]brackets.PlayerPoints, 0, len(m.PlayersPoints))
	seen := make(map[string]bool, len(m.PlayersPoints))
	for _, id := range m.Players {
		pts, ok := m.PlayersPoints[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, brackets.PlayerPoints{PlayerID: id, Points: pts})
	}

	var extra []string
	for id := range m.PlayersPoints {
		if !seen[id] {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	for _, id := range extra {
		out = append(out, brackets.PlayerPoints{PlayerID: id, Points: m.PlayersPoints[id]})
	}
	return out
}
