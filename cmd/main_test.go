package main

import (
	"testing"
	"time"

	"github.com/Dosada05/gods-bracket/config"
	"github.com/stretchr/testify/assert"
)

func testConfig() *config.Config {
	return &config.Config{
		Tournament: config.Tournament{
			Name:             "Gods of the Guillotine",
			GuillotineWeeks:  []int{9, 10, 11, 12},
			PlayoffWeeks:     []int{13, 14, 15, 16},
			ChampionshipWeek: 17,
			SurvivorTarget:   8,
			MaxSeeds:         6,
			Workers:          3,
		},
		Sleeper: config.Sleeper{
			BaseURL:       "https://api.sleeper.app/v1",
			Timeout:       10 * time.Second,
			RetryAttempts: 3,
			RetryBackoff:  500 * time.Millisecond,
			RateLimit:     10,
		},
		R2: config.R2{
			AccountID:       "acct",
			AccessKeyID:     "key",
			SecretAccessKey: "secret",
			BucketName:      "brackets",
			CacheControl:    "public, max-age=60",
		},
	}
}

func TestTournamentSettings(t *testing.T) {
	cfg := testConfig()
	settings := tournamentSettings(cfg)

	assert.Equal(t, "Gods of the Guillotine", settings.Name)
	assert.Equal(t, []int{13, 14, 15, 16}, settings.PlayoffWeeks)
	assert.Equal(t, 17, settings.ChampionshipWeek)
	assert.Equal(t, 6, settings.MaxSeeds)
	assert.Equal(t, 3, settings.Workers)

	settings.PlayoffWeeks[0] = 99
	assert.Equal(t, 13, cfg.Tournament.PlayoffWeeks[0])
}

func TestSleeperOptions(t *testing.T) {
	opts := sleeperOptions(testConfig())

	assert.Equal(t, "https://api.sleeper.app/v1", opts.BaseURL)
	assert.Equal(t, 3, opts.Retry.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, opts.Retry.Backoff)
	assert.Equal(t, 10.0, opts.RateLimit)
}

func TestR2Config(t *testing.T) {
	cfg := testConfig()
	assert.True(t, r2Config(cfg).Enabled())
	assert.Equal(t, "brackets", r2Config(cfg).BucketName)

	cfg.R2.SecretAccessKey = ""
	assert.False(t, r2Config(cfg).Enabled())
}
