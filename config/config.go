package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// maxSeedsLimit is the widest first round a god bracket supports.
const maxSeedsLimit = 8

// Config holds every runtime setting read from the environment.
type Config struct {
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	ServerPort  int    `envconfig:"SERVER_PORT" default:"8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"json"`

	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`

	Tournament Tournament
	Sleeper    Sleeper
	Cache      Cache
	R2         R2
	Scheduler  Scheduler
}

type Tournament struct {
	Year             int    `envconfig:"TOURNAMENT_YEAR"`
	Name             string `envconfig:"TOURNAMENT_NAME" default:"Gods of the Guillotine"`
	GuillotineWeeks  []int  `envconfig:"GUILLOTINE_WEEKS" default:"9,10,11,12"`
	PlayoffWeeks     []int  `envconfig:"PLAYOFF_WEEKS" default:"13,14,15,16"`
	ChampionshipWeek int    `envconfig:"CHAMPIONSHIP_WEEK" default:"17"`
	SurvivorTarget   int    `envconfig:"SURVIVOR_TARGET" default:"8"`
	MaxSeeds         int    `envconfig:"MAX_SEEDS" default:"8"`
	Workers          int    `envconfig:"WORKERS" default:"5"`
}

type Sleeper struct {
	BaseURL       string        `envconfig:"SLEEPER_BASE_URL" default:"https://api.sleeper.app/v1"`
	Timeout       time.Duration `envconfig:"SLEEPER_TIMEOUT" default:"10s"`
	RetryAttempts int           `envconfig:"SLEEPER_RETRY_ATTEMPTS" default:"3"`
	RetryBackoff  time.Duration `envconfig:"SLEEPER_RETRY_BACKOFF" default:"500ms"`
	RateLimit     float64       `envconfig:"SLEEPER_RATE_LIMIT" default:"10"`
}

type Cache struct {
	RedisURL   string        `envconfig:"REDIS_URL"`
	PlayersTTL time.Duration `envconfig:"PLAYERS_CACHE_TTL" default:"24h"`
}

type R2 struct {
	AccountID       string `envconfig:"R2_ACCOUNT_ID"`
	AccessKeyID     string `envconfig:"R2_ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"R2_SECRET_ACCESS_KEY"`
	BucketName      string `envconfig:"R2_BUCKET_NAME"`
	PublicBaseURL   string `envconfig:"R2_PUBLIC_BASE_URL"`
	Prefix          string `envconfig:"R2_PREFIX" default:"snapshots"`
	CacheControl    string `envconfig:"R2_CACHE_CONTROL" default:"public, max-age=60"`
}

type Scheduler struct {
	RebuildCron string `envconfig:"REBUILD_CRON"`
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	if cfg.Tournament.Year == 0 {
		cfg.Tournament.Year = time.Now().Year()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL environment variable is not set")
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}
	if err := validateWeeks("GUILLOTINE_WEEKS", c.Tournament.GuillotineWeeks); err != nil {
		return err
	}
	if err := validateWeeks("PLAYOFF_WEEKS", c.Tournament.PlayoffWeeks); err != nil {
		return err
	}
	lastGuillotine := c.Tournament.GuillotineWeeks[len(c.Tournament.GuillotineWeeks)-1]
	if c.Tournament.PlayoffWeeks[0] <= lastGuillotine {
		return fmt.Errorf("PLAYOFF_WEEKS must start after week %d", lastGuillotine)
	}
	lastPlayoff := c.Tournament.PlayoffWeeks[len(c.Tournament.PlayoffWeeks)-1]
	if c.Tournament.ChampionshipWeek <= lastPlayoff {
		return fmt.Errorf("CHAMPIONSHIP_WEEK must be after week %d, got %d", lastPlayoff, c.Tournament.ChampionshipWeek)
	}
	if c.Tournament.SurvivorTarget < 1 {
		return errors.New("SURVIVOR_TARGET must be positive")
	}
	if c.Tournament.MaxSeeds < 1 || c.Tournament.MaxSeeds > maxSeedsLimit {
		return fmt.Errorf("MAX_SEEDS must be between 1 and %d, got %d", maxSeedsLimit, c.Tournament.MaxSeeds)
	}
	if c.Tournament.Workers < 1 {
		return errors.New("WORKERS must be positive")
	}
	return nil
}

func validateWeeks(name string, weeks []int) error {
	if len(weeks) == 0 {
		return fmt.Errorf("%s must not be empty", name)
	}
	for i, w := range weeks {
		if w < 1 {
			return fmt.Errorf("%s contains invalid week %d", name, w)
		}
		if i > 0 && w <= weeks[i-1] {
			return fmt.Errorf("%s must be strictly ascending", name)
		}
	}
	return nil
}
