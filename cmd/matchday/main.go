// Command matchday is the CLI around the caching API-Football client: it
// fetches endpoints through the cache, pre-warms squads and players, and
// inspects the job-status table.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/matchday-tools/apiclient/internal/config"
	"github.com/matchday-tools/apiclient/pkg/apifootball"
	"github.com/matchday-tools/apiclient/pkg/cache"
	"github.com/matchday-tools/apiclient/pkg/fetch"
	"github.com/matchday-tools/apiclient/pkg/jobstatus"
	"github.com/matchday-tools/apiclient/pkg/logging"
	"github.com/matchday-tools/apiclient/pkg/stats"
	"github.com/matchday-tools/apiclient/pkg/store"
)

var version = "dev"

func main() {
	var configPath string

	root := &cobra.Command{
		Use:     "matchday",
		Short:   "Matchday — cached API-Football client and cache warmer",
		Version: version,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "matchday.yaml", "path to the config file")

	root.AddCommand(
		newFetchCmd(&configPath),
		newWarmCmd(&configPath),
		newStatusCmd(&configPath),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app bundles the wired components a command works with.
type app struct {
	cfg     *config.Config
	logger  zerolog.Logger
	store   store.Store
	stats   *stats.Collector
	cache   *cache.Client
	api     *apifootball.Client
	tracker *jobstatus.Tracker
}

// buildApp loads the config and wires the full stack: store backend,
// fetcher, cache, provider client, and job-status tracker.
func buildApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger := logging.Setup(logging.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
		Output: os.Stderr,
	})

	st, err := store.New(cfg.Cache.StoreConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("init cache backend: %w", err)
	}

	collector := stats.New()

	ttl := cache.DefaultTTLTable()
	for endpoint, days := range cfg.Cache.TTLDays {
		ttl[endpoint] = days
	}

	cacheClient, err := cache.NewClient(cache.Config{
		Store:    st,
		Fetcher:  fetch.NewHTTPFetcher(),
		TTL:      ttl,
		UseCache: cfg.Cache.Enabled,
		Stats:    collector,
		Logger:   &logger,
	})
	if err != nil {
		return nil, err
	}

	api, err := apifootball.NewClient(apifootball.Config{
		APIKey:  cfg.API.Key,
		BaseURL: cfg.API.BaseURL,
		Getter:  cacheClient,
		Stats:   collector,
		Logger:  &logger,
	})
	if err != nil {
		return nil, err
	}

	tracker := jobstatus.NewTracker(st,
		jobstatus.WithPath(cfg.Jobs.TablePath),
		jobstatus.WithLogger(logger),
	)

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   st,
		stats:   collector,
		cache:   cacheClient,
		api:     api,
		tracker: tracker,
	}, nil
}

// printRunSummary writes the per-endpoint call and hit counts.
func (a *app) printRunSummary() {
	for endpoint, entry := range a.stats.Snapshot() {
		a.logger.Info().
			Str("endpoint", endpoint).
			Int("calls", entry.Calls).
			Int("cache_hits", entry.CacheHits).
			Msg("Run summary")
	}
	if q, ok := a.stats.LastQuota(); ok {
		a.logger.Info().
			Int("remaining", q.Remaining).
			Int("limit", q.Limit).
			Msg("Provider quota")
	}
}
