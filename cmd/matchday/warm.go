package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matchday-tools/apiclient/pkg/quota"
	"github.com/matchday-tools/apiclient/pkg/warmer"
)

func newWarmCmd(configPath *string) *cobra.Command {
	var remaining int

	cmd := &cobra.Command{
		Use:   "warm",
		Short: "Pre-fetch squad and player data into the cache",
		Long: `Pre-fetch squad and player data for the configured teams so later
report runs hit the cache. Warming is discretionary: it checks the
remaining provider quota and the cutoff window before every request.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(*configPath)
			if err != nil {
				return err
			}
			defer a.printRunSummary()

			if !a.cfg.Warming.Enabled {
				a.logger.Info().Msg("Cache warming disabled in config")
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Minute)
			defer cancel()

			// Without an explicit budget, ask the provider.
			if remaining < 0 {
				var err error
				remaining, _, err = a.api.Status(ctx)
				if err != nil {
					return fmt.Errorf("check provider quota: %w", err)
				}
			}

			loc, err := time.LoadLocation(a.cfg.Quota.Timezone)
			if err != nil {
				return fmt.Errorf("load timezone %q: %w", a.cfg.Quota.Timezone, err)
			}
			scheduler := quota.NewScheduler(
				quota.WithThreshold(a.cfg.Quota.Threshold),
				quota.WithCutoff(a.cfg.Quota.CutoffHour, a.cfg.Quota.CutoffMinute),
				quota.WithLocation(loc),
				quota.WithLogger(a.logger),
			)

			season := a.cfg.Warming.Season
			if season == 0 {
				season = a.api.CurrentSeason()
			}

			w := warmer.New(warmer.Config{
				Provider: a.api,
				Policy:   scheduler,
				Teams:    a.cfg.Warming.Teams,
				Season:   season,
				Logger:   &a.logger,
			})

			result := w.Run(ctx, remaining)
			if result.Skipped {
				fmt.Printf("skipped: %s\n", result.Reason)
				return nil
			}
			fmt.Printf("teams: %d, players: %d\n", result.TeamsProcessed, result.PlayersProcessed)
			return nil
		},
	}

	cmd.Flags().IntVar(&remaining, "remaining", -1, "remaining provider quota (-1 queries /status)")

	return cmd
}
