// Package warmer pre-fetches squad and player data on quiet days so that
// report runs later in the week hit the cache instead of spending quota.
package warmer

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/matchday-tools/apiclient/pkg/apifootball"
	"github.com/matchday-tools/apiclient/pkg/quota"
)

// Provider is the slice of the API client the warmer uses.
type Provider interface {
	Squad(ctx context.Context, teamID int) ([]apifootball.SquadPlayer, error)
	Player(ctx context.Context, playerID, season int) (*apifootball.Envelope, error)
}

// Policy gates each unit of warming work.
type Policy interface {
	ShouldContinue(remaining int) bool
}

// Team identifies one warming target.
type Team struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
}

// Result summarizes a warming run.
type Result struct {
	Skipped          bool
	Reason           string
	TeamsProcessed   int
	PlayersProcessed int
}

// Warmer walks the configured teams one squad and one player at a time.
// All work is sequential: warming is discretionary and must never compete
// with the primary workflow for quota or connections.
type Warmer struct {
	provider Provider
	policy   Policy
	teams    []Team
	season   int
	logger   zerolog.Logger
}

// Config holds the warmer configuration.
type Config struct {
	// Provider fetches squads and players, typically through the cache.
	Provider Provider

	// Policy decides before each unit whether to keep going. Defaults
	// to a quota.Scheduler with default settings.
	Policy Policy

	// Teams are the warming targets, deduplicated by ID.
	Teams []Team

	// Season is the season year passed to player lookups.
	Season int

	// Logger defaults to the global logger.
	Logger *zerolog.Logger
}

// New creates a warmer.
func New(cfg Config) *Warmer {
	policy := cfg.Policy
	if policy == nil {
		policy = quota.NewScheduler()
	}
	logger := log.With().Str("component", "cache-warmer").Logger()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "cache-warmer").Logger()
	}
	return &Warmer{
		provider: cfg.Provider,
		policy:   policy,
		teams:    dedupe(cfg.Teams),
		season:   cfg.Season,
		logger:   logger,
	}
}

// Run warms the cache with remaining provider quota. The budget is spent
// conservatively: every squad and player lookup decrements it whether it
// hit the cache or not, so a run can only underuse quota, never overdraw.
func (w *Warmer) Run(ctx context.Context, remaining int) Result {
	if !w.policy.ShouldContinue(remaining) {
		w.logger.Info().Int("remaining", remaining).Msg("Skipping cache warming")
		return Result{Skipped: true, Reason: "limit_reached_at_start"}
	}

	w.logger.Info().
		Int("remaining", remaining).
		Int("teams", len(w.teams)).
		Msg("Starting cache warming")

	result := Result{}
	available := remaining

	for _, team := range w.teams {
		if !w.policy.ShouldContinue(available) {
			break
		}
		w.logger.Info().Int("team_id", team.ID).Str("team", team.Name).Msg("Warming team")

		squad, err := w.provider.Squad(ctx, team.ID)
		available--
		result.TeamsProcessed++
		if err != nil {
			w.logger.Warn().Err(err).Int("team_id", team.ID).Msg("Squad fetch failed")
			continue
		}
		if len(squad) == 0 {
			w.logger.Warn().Int("team_id", team.ID).Msg("No squad data")
			continue
		}

		for _, player := range squad {
			if !w.policy.ShouldContinue(available) {
				break
			}
			if player.ID == 0 {
				continue
			}
			_, err := w.provider.Player(ctx, player.ID, w.season)
			available--
			if err != nil {
				w.logger.Warn().Err(err).Int("player_id", player.ID).Msg("Player fetch failed")
				continue
			}
			result.PlayersProcessed++
		}
	}

	w.logger.Info().
		Int("teams_processed", result.TeamsProcessed).
		Int("players_processed", result.PlayersProcessed).
		Msg("Cache warming completed")
	return result
}

func dedupe(teams []Team) []Team {
	seen := make(map[int]bool, len(teams))
	out := make([]Team, 0, len(teams))
	for _, t := range teams {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		out = append(out, t)
	}
	return out
}
