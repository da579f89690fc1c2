package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/gods-bracket/models"
	"github.com/Dosada05/gods-bracket/utils"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedService_LoadGroupsLeagues(t *testing.T) {
	logger, _ := test.NewNullLogger()
	named := "Zeus Light"
	rows := seedRows("L1", "Olympus", "Zeus", models.SideLight, 3)
	for i := range rows {
		rows[i].LeagueName = &named
	}
	rows = append(rows, seedRows("D1", "Olympus", "Zeus", models.SideDark, 3, 2)...)
	rows = append(rows, models.SeedRow{LeagueID: "E1", Division: "Underworld", GodName: "Hades", Side: models.SideLight})

	repo := &fakeSeedRepo{rows: rows}
	feed := newFakeFeed()
	feed.addLeague("D1", "Zeus Dark", 0)
	feed.addLeague("E1", "Hades Light", 0)
	svc := NewSeedService(nil, repo, feed, logger, 2)

	registry, err := svc.Load(context.Background(), 2025)

	require.NoError(t, err)
	assert.Equal(t, []string{"L1", "D1", "E1"}, registry.LeagueOrder)
	assert.Equal(t, "Zeus Light", registry.Leagues["L1"].Name)
	assert.Equal(t, "Zeus Dark", registry.Leagues["D1"].Name)
	assert.Len(t, registry.Leagues["D1"].Owners, 3)
	assert.Empty(t, registry.Leagues["E1"].Owners)

	seeded := registry.FullySeeded()
	require.Len(t, seeded, 1)
	assert.Equal(t, "L1", seeded[0].ID)

	require.Len(t, registry.Completeness, 2)
	assert.Equal(t, "D1", registry.Completeness[0].LeagueID)
	assert.Equal(t, 2, registry.Completeness[0].Seeded)
	assert.Equal(t, 3, registry.Completeness[0].Total)
	require.Len(t, registry.Completeness[0].MissingOwners, 1)
	assert.Equal(t, "D1-u2", registry.Completeness[0].MissingOwners[0].OwnerID)
	assert.Equal(t, "E1", registry.Completeness[1].LeagueID)
	assert.Zero(t, registry.Completeness[1].Total)

	assert.Equal(t, map[string]string{"D1": "Zeus Dark", "E1": "Hades Light"}, repo.names)
}

func TestSeedService_LoadNameBackfillFailure(t *testing.T) {
	logger, hook := test.NewNullLogger()
	repo := &fakeSeedRepo{rows: seedRows("L1", "Olympus", "Zeus", models.SideLight, 2)}
	feed := newFakeFeed()
	feed.fail["L1"] = errors.New("sleeper unavailable")
	svc := NewSeedService(nil, repo, feed, logger, 2)

	registry, err := svc.Load(context.Background(), 2025)

	require.NoError(t, err)
	assert.Equal(t, "L1", registry.Leagues["L1"].Name)
	assert.Empty(t, repo.names)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestSeedService_LoadDivisionOrder(t *testing.T) {
	logger, _ := test.NewNullLogger()
	var rows []models.SeedRow
	for _, god := range []string{"Ares", "Zeus", "Hera", "Apollo"} {
		rows = append(rows, seedRows(god+"-L", "Olympus", god, models.SideLight, 1)...)
		rows = append(rows, seedRows(god+"-D", "Olympus", god, models.SideDark, 1)...)
	}
	rows = append(rows, seedRows("Hades-L", "Underworld", "Hades", models.SideLight, 1)...)
	for i := range rows {
		name := rows[i].LeagueID
		rows[i].LeagueName = &name
	}
	repo := &fakeSeedRepo{
		rows:  rows,
		order: map[string][]string{"Olympus": {"Zeus", "Poseidon", "Hera"}},
	}
	svc := NewSeedService(nil, repo, newFakeFeed(), logger, 2)

	registry, err := svc.Load(context.Background(), 2025)

	require.NoError(t, err)
	require.Len(t, registry.Divisions, 2)
	olympus := registry.Divisions[0]
	assert.Equal(t, "Olympus", olympus.Name)
	assert.Equal(t, []string{"Zeus", "Hera", "Ares", "Apollo"}, olympus.Order)
	require.Len(t, olympus.Gods, 4)
	assert.Equal(t, 0, olympus.Gods[0].Index)
	assert.Equal(t, "Zeus-L", olympus.Gods[0].LightLeagueID)
	assert.Equal(t, "Zeus-D", olympus.Gods[0].DarkLeagueID)
	assert.Equal(t, 3, olympus.Gods[3].Index)

	underworld := registry.Divisions[1]
	require.Len(t, underworld.Gods, 1)
	assert.Equal(t, "Hades-L", underworld.Gods[0].LightLeagueID)
	assert.Empty(t, underworld.Gods[0].DarkLeagueID)
}

func TestSeedService_LoadErrors(t *testing.T) {
	logger, _ := test.NewNullLogger()

	t.Run("registry unavailable", func(t *testing.T) {
		svc := NewSeedService(nil, &fakeSeedRepo{err: errors.New("connection refused")}, newFakeFeed(), logger, 1)
		_, err := svc.Load(context.Background(), 2025)
		assert.ErrorIs(t, err, ErrSeedRegistryUnavailable)
	})

	t.Run("invalid year", func(t *testing.T) {
		svc := NewSeedService(nil, &fakeSeedRepo{}, newFakeFeed(), logger, 1)
		_, err := svc.Load(context.Background(), 99)
		assert.ErrorIs(t, err, ErrInvalidYear)
	})

	t.Run("division order unavailable is not fatal", func(t *testing.T) {
		repo := &fakeSeedRepo{rows: seedRows("L1", "Olympus", "Zeus", models.SideLight, 1), orderErr: errors.New("boom")}
		svc := NewSeedService(nil, repo, newFakeFeed(), logger, 1)
		registry, err := svc.Load(context.Background(), 2025)
		require.NoError(t, err)
		assert.Len(t, registry.Divisions, 1)
	})
}

func TestValidateOwnerSeeds(t *testing.T) {
	tests := []struct {
		name     string
		leagueID string
		owners   []models.OwnerSeed
		wantErr  error
	}{
		{name: "valid", leagueID: "L1", owners: []models.OwnerSeed{{OwnerID: "a", Seed: utils.IntPtr(1)}, {OwnerID: "b"}}},
		{name: "missing league", leagueID: " ", owners: []models.OwnerSeed{{OwnerID: "a"}}, wantErr: ErrValidationFailed},
		{name: "no owners", leagueID: "L1", wantErr: ErrValidationFailed},
		{name: "blank owner", leagueID: "L1", owners: []models.OwnerSeed{{OwnerID: ""}}, wantErr: ErrValidationFailed},
		{name: "duplicate owner", leagueID: "L1", owners: []models.OwnerSeed{{OwnerID: "a"}, {OwnerID: "a"}}, wantErr: ErrValidationFailed},
		{name: "non-positive seed", leagueID: "L1", owners: []models.OwnerSeed{{OwnerID: "a", Seed: utils.IntPtr(0)}}, wantErr: ErrValidationFailed},
		{name: "duplicate seed", leagueID: "L1", owners: []models.OwnerSeed{{OwnerID: "a", Seed: utils.IntPtr(2)}, {OwnerID: "b", Seed: utils.IntPtr(2)}}, wantErr: ErrSeedConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateOwnerSeeds(tt.leagueID, tt.owners)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSeedService_SetSeedsRejectsInvalidInput(t *testing.T) {
	logger, _ := test.NewNullLogger()
	svc := NewSeedService(nil, &fakeSeedRepo{}, newFakeFeed(), logger, 1)

	err := svc.SetSeeds(context.Background(), 2025, "L1", nil)
	assert.ErrorIs(t, err, ErrValidationFailed)

	err = svc.SetSeeds(context.Background(), 1900, "L1", []models.OwnerSeed{{OwnerID: "a"}})
	assert.ErrorIs(t, err, ErrInvalidYear)
}
