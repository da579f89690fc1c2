package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/Dosada05/gods-bracket/brackets"
	"github.com/Dosada05/gods-bracket/models"
	"github.com/Dosada05/gods-bracket/repositories"
	"github.com/Dosada05/gods-bracket/sleeper"
	"github.com/Dosada05/gods-bracket/utils"
)

type fakeSeedRepo struct {
	mu         sync.Mutex
	rows       []models.SeedRow
	order      map[string][]string
	err        error
	orderErr   error
	setNameErr error
	names      map[string]string
}

func (r *fakeSeedRepo) GetSeeds(context.Context, int) ([]models.SeedRow, error) {
	return r.rows, r.err
}

func (r *fakeSeedRepo) SetLeagueName(_ context.Context, _ int, leagueID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.setNameErr != nil {
		return r.setNameErr
	}
	if r.names == nil {
		r.names = make(map[string]string)
	}
	r.names[leagueID] = name
	return nil
}

func (r *fakeSeedRepo) GetDivisionOrder(context.Context, int) (map[string][]string, error) {
	return r.order, r.orderErr
}

func (r *fakeSeedRepo) UpsertSeed(context.Context, repositories.SQLExecutor, int, models.SeedRow) error {
	return nil
}

// fakeFeed serves canned Sleeper responses keyed by league id.
type fakeFeed struct {
	mu       sync.Mutex
	leagues  map[string]*sleeper.League
	users    map[string][]sleeper.User
	rosters  map[string][]sleeper.Roster
	matchups map[string]map[int][]sleeper.Matchup
	fail     map[string]error
	calls    int
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{
		leagues:  make(map[string]*sleeper.League),
		users:    make(map[string][]sleeper.User),
		rosters:  make(map[string][]sleeper.Roster),
		matchups: make(map[string]map[int][]sleeper.Matchup),
		fail:     make(map[string]error),
	}
}

func (f *fakeFeed) GetLeague(_ context.Context, leagueID string) (*sleeper.League, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.fail[leagueID]; err != nil {
		return nil, err
	}
	l, ok := f.leagues[leagueID]
	if !ok {
		return nil, fmt.Errorf("league %s: %w", leagueID, sleeper.ErrNotFound)
	}
	return l, nil
}

func (f *fakeFeed) GetLeagueUsers(_ context.Context, leagueID string) ([]sleeper.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[leagueID]; err != nil {
		return nil, err
	}
	return f.users[leagueID], nil
}

func (f *fakeFeed) GetLeagueRosters(_ context.Context, leagueID string) ([]sleeper.Roster, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[leagueID]; err != nil {
		return nil, err
	}
	return f.rosters[leagueID], nil
}

func (f *fakeFeed) GetMatchups(_ context.Context, leagueID string, week int) ([]sleeper.Matchup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[leagueID]; err != nil {
		return nil, err
	}
	return f.matchups[leagueID][week], nil
}

// addLeague registers n rosters. Roster i belongs to owner "<id>-u<i>" and
// starts a single quarterback "<id>-<i>".
func (f *fakeFeed) addLeague(id, name string, n int) {
	f.leagues[id] = &sleeper.League{LeagueID: id, Name: name}
	f.matchups[id] = make(map[int][]sleeper.Matchup)
	for i := 1; i <= n; i++ {
		owner := fmt.Sprintf("%s-u%d", id, i)
		f.users[id] = append(f.users[id], sleeper.User{UserID: owner, DisplayName: fmt.Sprintf("%s Manager %d", id, i)})
		f.rosters[id] = append(f.rosters[id], sleeper.Roster{RosterID: i, OwnerID: owner})
	}
}

// score sets one roster's week total, carried by its quarterback.
func (f *fakeFeed) score(id string, week, rosterID int, points float64) {
	pid := playerID(id, rosterID)
	ms := f.matchups[id][week]
	for i := range ms {
		if ms[i].RosterID == rosterID {
			ms[i].Points = points
			ms[i].PlayersPoints[pid] = points
			return
		}
	}
	f.matchups[id][week] = append(ms, sleeper.Matchup{
		RosterID:      rosterID,
		Points:        points,
		Players:       []string{pid},
		PlayersPoints: map[string]float64{pid: points},
	})
}

func playerID(leagueID string, rosterID int) string {
	return fmt.Sprintf("%s-%d", leagueID, rosterID)
}

// quarterbacks builds a directory where every fake player is a QB.
func quarterbacks(leagueIDs []string, n int) brackets.PlayerMap {
	out := brackets.PlayerMap{}
	for _, id := range leagueIDs {
		for i := 1; i <= n; i++ {
			out[playerID(id, i)] = brackets.PlayerInfo{FullName: "QB " + playerID(id, i), Position: "QB"}
		}
	}
	return out
}

// seedRows returns registry rows for a league with owners seeded 1..n; seeds
// listed in unseeded are left empty.
func seedRows(id, division, god string, side models.Side, n int, unseeded ...int) []models.SeedRow {
	skip := make(map[int]bool)
	for _, u := range unseeded {
		skip[u] = true
	}
	rows := make([]models.SeedRow, 0, n)
	for i := 1; i <= n; i++ {
		row := models.SeedRow{
			LeagueID:  id,
			Division:  division,
			GodName:   god,
			Side:      side,
			OwnerID:   fmt.Sprintf("%s-u%d", id, i),
			OwnerName: fmt.Sprintf("Registry %d", i),
		}
		if !skip[i] {
			row.Seed = utils.IntPtr(i)
		}
		rows = append(rows, row)
	}
	return rows
}

type fakePlayers struct {
	players brackets.PlayerMap
	err     error
}

func (p fakePlayers) Load(context.Context) (brackets.PlayerMap, error) {
	return p.players, p.err
}

type fakeSnapshotRepo struct {
	mu        sync.Mutex
	stored    map[int]*models.Snapshot
	upsertErr error
	upserts   int
}

func (r *fakeSnapshotRepo) Upsert(_ context.Context, s *models.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	if r.upsertErr != nil {
		return r.upsertErr
	}
	if r.stored == nil {
		r.stored = make(map[int]*models.Snapshot)
	}
	r.stored[s.Year] = s
	return nil
}

func (r *fakeSnapshotRepo) GetByYear(_ context.Context, year int) (*models.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stored[year]
	if !ok {
		return nil, repositories.ErrSnapshotNotFound
	}
	return s, nil
}

type fakePublisher struct {
	calls int
	err   error
}

func (p *fakePublisher) PublishSnapshot(_ context.Context, year int, _ []byte) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return fmt.Sprintf("https://cdn.example.com/snapshots/%d.json", year), nil
}

func testSettings() TournamentSettings {
	return TournamentSettings{
		Name:             "Gods of the Guillotine",
		GuillotineWeeks:  []int{9, 10, 11, 12},
		PlayoffWeeks:     []int{13, 14, 15, 16},
		ChampionshipWeek: 17,
		SurvivorTarget:   8,
		MaxSeeds:         8,
		Workers:          5,
	}
}
