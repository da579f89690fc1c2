package sleeper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	BaseURL        = "https://api.sleeper.app/v1"
	DefaultTimeout = 10 * time.Second

	maxBodyBytes = 64 << 20

	breakerTripFailures = 5
	breakerOpenTimeout  = 30 * time.Second
	playersBreakerKey   = "players"
)

var ErrNotFound = errors.New("sleeper: resource not found")

// Client is the score feed used by the bracket engine.
type Client interface {
	GetLeague(ctx context.Context, leagueID string) (*League, error)
	GetLeagueUsers(ctx context.Context, leagueID string) ([]User, error)
	GetLeagueRosters(ctx context.Context, leagueID string) ([]Roster, error)
	GetMatchups(ctx context.Context, leagueID string, week int) ([]Matchup, error)
	GetAllPlayers(ctx context.Context) (map[string]Player, error)
}

// RetryPolicy retries transient failures with a linearly growing delay.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Delay returns the wait before the attempt following the given one.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	return time.Duration(attempt) * p.Backoff
}

type Options struct {
	BaseURL string
	Timeout time.Duration
	Retry   RetryPolicy
	// RateLimit is requests per second; zero or less disables limiting.
	RateLimit float64
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
	retry      RetryPolicy
	limiter    *rate.Limiter

	// breakers are keyed by league id.
	breakersMu sync.Mutex
	breakers   map[string]*gobreaker.CircuitBreaker
}

func NewHTTPClient(opts Options, logger *logrus.Logger) *HTTPClient {
	if opts.BaseURL == "" {
		opts.BaseURL = BaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &HTTPClient{
		baseURL:    opts.BaseURL,
		httpClient: &http.Client{Timeout: opts.Timeout},
		logger:     logger,
		retry:      opts.Retry,
		limiter:    limiter,
		breakers:   make(map[string]*gobreaker.CircuitBreaker),
	}
}

// breakerFor returns the circuit breaker guarding one upstream resource,
// creating it on first use.
func (c *HTTPClient) breakerFor(key string) *gobreaker.CircuitBreaker {
	c.breakersMu.Lock()
	defer c.breakersMu.Unlock()

	if cb, ok := c.breakers[key]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "sleeper-api:" + key,
		Timeout: breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerTripFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !isTransient(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			c.logger.WithFields(logrus.Fields{
				"breaker":    name,
				"from_state": from.String(),
				"to_state":   to.String(),
			}).Warn("Sleeper circuit breaker state changed")
		},
	})
	c.breakers[key] = cb
	return cb
}

// makeRequest GETs an endpoint and decodes the JSON body into result,
// retrying transient failures per the retry policy. breakerKey selects the
// circuit breaker, normally the league id.
func (c *HTTPClient) makeRequest(ctx context.Context, breakerKey, endpoint string, result interface{}) error {
	url := c.baseURL + endpoint
	breaker := c.breakerFor(breakerKey)
	var lastErr error

	for attempt := 1; attempt <= c.retry.attempts(); attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		body, err := breaker.Execute(func() (interface{}, error) {
			return c.get(ctx, endpoint, url)
		})
		if err == nil {
			if err := json.Unmarshal(body.([]byte), result); err != nil {
				return fmt.Errorf("failed to unmarshal %s: %w", endpoint, err)
			}
			return nil
		}

		lastErr = err
		if !isTransient(err) || attempt == c.retry.attempts() {
			break
		}

		delay := c.retry.Delay(attempt)
		c.logger.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"attempt":  attempt,
			"delay":    delay.String(),
		}).WithError(err).Warn("Sleeper request failed, retrying")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return lastErr
}

func (c *HTTPClient) get(ctx context.Context, endpoint, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.WithField("url", url).Debug("Making Sleeper API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    abbreviate(body),
		}
	}
	return body, nil
}

// isTransient reports whether err is worth retrying: transport failures,
// 429 and 5xx responses.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return true
}

func abbreviate(body []byte) string {
	const limit = 256
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}

// GetLeague returns league metadata. Sleeper answers unknown ids with a
// literal null, reported as ErrNotFound.
func (c *HTTPClient) GetLeague(ctx context.Context, leagueID string) (*League, error) {
	var league *League
	if err := c.makeRequest(ctx, leagueID, fmt.Sprintf("/league/%s", leagueID), &league); err != nil {
		return nil, fmt.Errorf("failed to get league %s: %w", leagueID, err)
	}
	if league == nil {
		return nil, fmt.Errorf("league %s: %w", leagueID, ErrNotFound)
	}
	return league, nil
}

func (c *HTTPClient) GetLeagueUsers(ctx context.Context, leagueID string) ([]User, error) {
	var users []User
	if err := c.makeRequest(ctx, leagueID, fmt.Sprintf("/league/%s/users", leagueID), &users); err != nil {
		return nil, fmt.Errorf("failed to get users for league %s: %w", leagueID, err)
	}
	return users, nil
}

func (c *HTTPClient) GetLeagueRosters(ctx context.Context, leagueID string) ([]Roster, error) {
	var rosters []Roster
	if err := c.makeRequest(ctx, leagueID, fmt.Sprintf("/league/%s/rosters", leagueID), &rosters); err != nil {
		return nil, fmt.Errorf("failed to get rosters for league %s: %w", leagueID, err)
	}
	return rosters, nil
}

// GetMatchups returns every roster's scoring for a week. Weeks the feed has
// not reached yet come back empty or with zero points.
func (c *HTTPClient) GetMatchups(ctx context.Context, leagueID string, week int) ([]Matchup, error) {
	var matchups []Matchup
	if err := c.makeRequest(ctx, leagueID, fmt.Sprintf("/league/%s/matchups/%d", leagueID, week), &matchups); err != nil {
		return nil, fmt.Errorf("failed to get week %d matchups for league %s: %w", week, leagueID, err)
	}
	return matchups, nil
}

// GetAllPlayers downloads the full NFL player directory. The payload is
// several megabytes; callers should cache it.
func (c *HTTPClient) GetAllPlayers(ctx context.Context) (map[string]Player, error) {
	var players map[string]Player
	if err := c.makeRequest(ctx, playersBreakerKey, "/players/nfl", &players); err != nil {
		return nil, fmt.Errorf("failed to get players: %w", err)
	}
	for id, p := range players {
		if p.PlayerID == "" {
			p.PlayerID = id
			players[id] = p
		}
	}
	return players, nil
}
