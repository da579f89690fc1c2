package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/gods-bracket/brackets"
	"github.com/Dosada05/gods-bracket/sleeper"
	"github.com/sirupsen/logrus"
)

const (
	playersKey        = "gods-bracket:sleeper:players:nfl:v1"
	DefaultPlayersTTL = 24 * time.Hour
)

// PlayerSource downloads the full player directory.
type PlayerSource interface {
	GetAllPlayers(ctx context.Context) (map[string]sleeper.Player, error)
}

// PlayerDirectory serves the trimmed player directory used for best-ball
// slotting, caching it in a Store between runs.
type PlayerDirectory struct {
	store  Store
	source PlayerSource
	ttl    time.Duration
	logger *logrus.Logger
}

func NewPlayerDirectory(store Store, source PlayerSource, ttl time.Duration, logger *logrus.Logger) *PlayerDirectory {
	if ttl <= 0 {
		ttl = DefaultPlayersTTL
	}
	return &PlayerDirectory{store: store, source: source, ttl: ttl, logger: logger}
}

// Load returns the directory from cache, downloading and caching it on a
// miss. Cache failures are logged and never fail the load.
func (d *PlayerDirectory) Load(ctx context.Context) (brackets.PlayerMap, error) {
	if players, ok := d.cached(ctx); ok {
		return players, nil
	}

	raw, err := d.source.GetAllPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load player directory: %w", err)
	}
	players := trimPlayers(raw)

	encoded, err := json.Marshal(players)
	if err != nil {
		return nil, fmt.Errorf("failed to encode player directory: %w", err)
	}
	if err := d.store.Set(ctx, playersKey, encoded, d.ttl); err != nil {
		d.logger.WithError(err).Warn("Failed to cache player directory")
	}

	d.logger.WithField("players", len(players)).Info("Player directory refreshed from Sleeper")
	return players, nil
}

func (d *PlayerDirectory) cached(ctx context.Context) (brackets.PlayerMap, bool) {
	data, err := d.store.Get(ctx, playersKey)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			d.logger.WithError(err).Warn("Player directory cache unavailable, fetching from Sleeper")
		}
		return nil, false
	}

	var players brackets.PlayerMap
	if err := json.Unmarshal(data, &players); err != nil {
		d.logger.WithError(err).Warn("Discarding unreadable player directory cache entry")
		return nil, false
	}
	d.logger.WithField("players", len(players)).Debug("Player directory loaded from cache")
	return players, true
}

func trimPlayers(raw map[string]sleeper.Player) brackets.PlayerMap {
	out := make(brackets.PlayerMap, len(raw))
	for id, p := range raw {
		out[id] = brackets.PlayerInfo{
			FullName:         p.DisplayName(),
			Position:         p.Position,
			FantasyPositions: p.FantasyPositions,
		}
	}
	return out
}
