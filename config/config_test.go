package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/gods?sslmode=disable")
	t.Setenv("TOURNAMENT_YEAR", "2025")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 2025, cfg.Tournament.Year)
	assert.Equal(t, []int{9, 10, 11, 12}, cfg.Tournament.GuillotineWeeks)
	assert.Equal(t, []int{13, 14, 15, 16}, cfg.Tournament.PlayoffWeeks)
	assert.Equal(t, 17, cfg.Tournament.ChampionshipWeek)
	assert.Equal(t, 8, cfg.Tournament.SurvivorTarget)
	assert.Equal(t, 5, cfg.Tournament.Workers)
	assert.Equal(t, 10*time.Second, cfg.Sleeper.Timeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Sleeper.RetryBackoff)
	assert.Equal(t, 24*time.Hour, cfg.Cache.PlayersTTL)
	assert.Empty(t, cfg.R2.AccountID)
	assert.Equal(t, "snapshots", cfg.R2.Prefix)
	assert.Equal(t, "Gods of the Guillotine", cfg.Tournament.Name)
	assert.Equal(t, 8, cfg.Tournament.MaxSeeds)
	assert.Equal(t, "https://api.sleeper.app/v1", cfg.Sleeper.BaseURL)
	assert.Equal(t, 3, cfg.Sleeper.RetryAttempts)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/gods")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("GUILLOTINE_WEEKS", "8,9,10")
	t.Setenv("PLAYOFF_WEEKS", "11,12")
	t.Setenv("CHAMPIONSHIP_WEEK", "13")
	t.Setenv("CORS_ORIGINS", "https://gods.example.com,https://admin.example.com")
	t.Setenv("R2_ACCOUNT_ID", "acct")
	t.Setenv("R2_ACCESS_KEY_ID", "key")
	t.Setenv("R2_SECRET_ACCESS_KEY", "secret")
	t.Setenv("R2_BUCKET_NAME", "brackets")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, []int{8, 9, 10}, cfg.Tournament.GuillotineWeeks)
	assert.Equal(t, 13, cfg.Tournament.ChampionshipWeek)
	assert.Len(t, cfg.CORSOrigins, 2)
	assert.Equal(t, "acct", cfg.R2.AccountID)
	assert.Equal(t, "brackets", cfg.R2.BucketName)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing database url", env: map[string]string{"DATABASE_URL": ""}},
		{name: "port out of range", env: map[string]string{"SERVER_PORT": "70000"}},
		{name: "port not numeric", env: map[string]string{"SERVER_PORT": "http"}},
		{name: "guillotine weeks descending", env: map[string]string{"GUILLOTINE_WEEKS": "10,9"}},
		{name: "playoffs overlap guillotine", env: map[string]string{"PLAYOFF_WEEKS": "12,13,14,15"}},
		{name: "championship inside playoffs", env: map[string]string{"CHAMPIONSHIP_WEEK": "16"}},
		{name: "zero max seeds", env: map[string]string{"MAX_SEEDS": "0"}},
		{name: "max seeds above eight", env: map[string]string{"MAX_SEEDS": "9"}},
		{name: "zero workers", env: map[string]string{"WORKERS": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "postgres://localhost/gods")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
