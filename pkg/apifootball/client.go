// Package apifootball is a typed client for the API-Football v3 provider.
//
// It sits on top of the caching GET layer: every method builds the endpoint
// URL and parameters, lets the cache decide between a stored document and a
// live fetch, and decodes the provider envelope. Quota headers on live
// responses feed the run's stats collector so the outer workflow can gate
// discretionary work.
package apifootball

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/matchday-tools/apiclient/pkg/fetch"
	"github.com/matchday-tools/apiclient/pkg/stats"
)

// DefaultBaseURL is the production API-Football v3 host.
const DefaultBaseURL = "https://v3.football.api-sports.io"

const (
	authHeader           = "x-apisports-key"
	quotaRemainingHeader = "x-ratelimit-requests-remaining"
	quotaLimitHeader     = "x-ratelimit-requests-limit"
)

// Getter performs a (possibly cached) GET. Both the caching client and the
// raw fetcher satisfy it.
type Getter interface {
	Get(ctx context.Context, url string, headers map[string]string, params map[string]string) (*fetch.Response, error)
}

// Envelope is the provider's response wrapper, common to every endpoint.
// Response stays raw; each caller decodes it into the shape it expects.
type Envelope struct {
	Results  int             `json:"results"`
	Paging   Paging          `json:"paging"`
	Errors   json.RawMessage `json:"errors"`
	Response json.RawMessage `json:"response"`

	fromCache bool
}

// Paging is the provider's pagination block.
type Paging struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// FromCache reports whether the envelope was served from the cache.
func (e *Envelope) FromCache() bool { return e.fromCache }

// HasErrors reports whether the provider attached endpoint errors. The
// provider signals them in-band with a 200, as either an object or an
// array, so emptiness of the raw field is the only reliable test.
func (e *Envelope) HasErrors() bool {
	s := string(e.Errors)
	return s != "" && s != "null" && s != "{}" && s != "[]"
}

// Client is the typed API-Football client.
type Client struct {
	baseURL  string
	apiKey   string
	getter   Getter
	stats    *stats.Collector
	logger   zerolog.Logger
	now      func() time.Time
	location *time.Location
}

// Config holds the client configuration.
type Config struct {
	// APIKey authenticates every request via the x-apisports-key header.
	APIKey string

	// Getter performs the GETs, typically a cache.Client.
	Getter Getter

	// BaseURL defaults to DefaultBaseURL.
	BaseURL string

	// Stats receives quota readings parsed from live responses.
	// Defaults to a fresh collector.
	Stats *stats.Collector

	// Logger defaults to the global logger.
	Logger *zerolog.Logger

	// Now is the clock used for season inference, injectable for tests.
	Now func() time.Time
}

// NewClient creates an API-Football client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if cfg.Getter == nil {
		return nil, fmt.Errorf("getter is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Stats == nil {
		cfg.Stats = stats.New()
	}
	logger := log.With().Str("component", "api-football").Logger()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "api-football").Logger()
	}
	now := time.Now
	if cfg.Now != nil {
		now = cfg.Now
	}
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		loc = time.UTC
	}

	return &Client{
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		getter:   cfg.Getter,
		stats:    cfg.Stats,
		logger:   logger,
		now:      now,
		location: loc,
	}, nil
}

// CurrentSeason infers the season year: August onward belongs to this
// year's season, earlier months to last year's.
func (c *Client) CurrentSeason() int {
	now := c.now().In(c.location)
	if now.Month() >= time.August {
		return now.Year()
	}
	return now.Year() - 1
}

// FixtureByID fetches one fixture.
func (c *Client) FixtureByID(ctx context.Context, fixtureID int) (*Envelope, error) {
	return c.get(ctx, "/fixtures", map[string]string{"id": strconv.Itoa(fixtureID)})
}

// FixturesByLeagueDate fetches a league's fixtures on a date (YYYY-MM-DD).
func (c *Client) FixturesByLeagueDate(ctx context.Context, leagueID int, date string) (*Envelope, error) {
	return c.get(ctx, "/fixtures", map[string]string{
		"league": strconv.Itoa(leagueID),
		"date":   date,
	})
}

// FixturesByLeagueSeason fetches a league's full season schedule.
func (c *Client) FixturesByLeagueSeason(ctx context.Context, leagueID, season int) (*Envelope, error) {
	return c.get(ctx, "/fixtures", map[string]string{
		"league": strconv.Itoa(leagueID),
		"season": strconv.Itoa(season),
	})
}

// LastFixtures fetches a team's n most recent fixtures. Results move with
// every match, so the cache holds them only briefly.
func (c *Client) LastFixtures(ctx context.Context, teamID, n int) (*Envelope, error) {
	return c.get(ctx, "/fixtures", map[string]string{
		"team": strconv.Itoa(teamID),
		"last": strconv.Itoa(n),
	})
}

// Lineups fetches the starting lineups for a fixture.
func (c *Client) Lineups(ctx context.Context, fixtureID int) (*Envelope, error) {
	return c.get(ctx, "/fixtures/lineups", map[string]string{"fixture": strconv.Itoa(fixtureID)})
}

// HeadToHead fetches the last n meetings between two teams.
func (c *Client) HeadToHead(ctx context.Context, team1ID, team2ID, last int) (*Envelope, error) {
	return c.get(ctx, "/fixtures/headtohead", map[string]string{
		"h2h":  fmt.Sprintf("%d-%d", team1ID, team2ID),
		"last": strconv.Itoa(last),
	})
}

// Statistics fetches a team's season statistics in a league. season 0
// means the current season.
func (c *Client) Statistics(ctx context.Context, teamID, leagueID, season int) (*Envelope, error) {
	if season == 0 {
		season = c.CurrentSeason()
	}
	return c.get(ctx, "/teams/statistics", map[string]string{
		"team":   strconv.Itoa(teamID),
		"league": strconv.Itoa(leagueID),
		"season": strconv.Itoa(season),
	})
}

// Injuries fetches the injury list for a fixture. Never cached: the list
// changes up to kickoff.
func (c *Client) Injuries(ctx context.Context, fixtureID int) (*Envelope, error) {
	return c.get(ctx, "/injuries", map[string]string{"fixture": strconv.Itoa(fixtureID)})
}

// Player fetches one player's season details. season 0 means the current
// season.
func (c *Client) Player(ctx context.Context, playerID, season int) (*Envelope, error) {
	if season == 0 {
		season = c.CurrentSeason()
	}
	return c.get(ctx, "/players", map[string]string{
		"id":     strconv.Itoa(playerID),
		"season": strconv.Itoa(season),
	})
}

// SquadPlayer is one roster entry from /players/squads.
type SquadPlayer struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Age      int    `json:"age"`
	Number   int    `json:"number"`
	Position string `json:"position"`
}

// Squad fetches a team's current roster.
func (c *Client) Squad(ctx context.Context, teamID int) ([]SquadPlayer, error) {
	env, err := c.get(ctx, "/players/squads", map[string]string{"team": strconv.Itoa(teamID)})
	if err != nil {
		return nil, err
	}
	var entries []struct {
		Players []SquadPlayer `json:"players"`
	}
	if err := json.Unmarshal(env.Response, &entries); err != nil {
		return nil, fmt.Errorf("decode squad response: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return entries[0].Players, nil
}

// Status queries the account status endpoint and returns the daily quota
// reading. Used when a run served everything from cache and never saw
// quota headers.
func (c *Client) Status(ctx context.Context) (remaining, limit int, err error) {
	resp, err := c.getter.Get(ctx, c.baseURL+"/status", c.authHeaders(), nil)
	if err != nil {
		return 0, 0, err
	}
	if !resp.OK {
		return 0, 0, fmt.Errorf("status endpoint returned %d", resp.StatusCode)
	}
	var body struct {
		Response struct {
			Requests struct {
				Current  int `json:"current"`
				LimitDay int `json:"limit_day"`
			} `json:"requests"`
		} `json:"response"`
	}
	if err := resp.JSON(&body); err != nil {
		return 0, 0, fmt.Errorf("decode status response: %w", err)
	}
	limit = body.Response.Requests.LimitDay
	remaining = limit - body.Response.Requests.Current
	c.stats.SetQuota(remaining, limit)
	return remaining, limit, nil
}

// LastQuota returns the latest quota reading seen on this run.
func (c *Client) LastQuota() (stats.Quota, bool) {
	return c.stats.LastQuota()
}

func (c *Client) authHeaders() map[string]string {
	return map[string]string{authHeader: c.apiKey}
}

func (c *Client) get(ctx context.Context, path string, params map[string]string) (*Envelope, error) {
	resp, err := c.getter.Get(ctx, c.baseURL+path, c.authHeaders(), params)
	if err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, fmt.Errorf("%s returned %d", path, resp.StatusCode)
	}

	if !resp.FromCache {
		c.recordQuota(resp)
	}

	var env Envelope
	if err := resp.JSON(&env); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", path, err)
	}
	env.fromCache = resp.FromCache

	if env.HasErrors() {
		c.logger.Warn().
			Str("path", path).
			RawJSON("errors", env.Errors).
			Msg("Provider attached endpoint errors")
	}
	return &env, nil
}

// recordQuota parses the ratelimit headers off a live response.
func (c *Client) recordQuota(resp *fetch.Response) {
	remainingStr := resp.Headers.Get(quotaRemainingHeader)
	if remainingStr == "" {
		return
	}
	remaining, err := strconv.Atoi(remainingStr)
	if err != nil {
		return
	}
	limit, _ := strconv.Atoi(resp.Headers.Get(quotaLimitHeader))
	c.stats.SetQuota(remaining, limit)
	c.logger.Debug().
		Int("remaining", remaining).
		Int("limit", limit).
		Msg("Quota headers recorded")
}
