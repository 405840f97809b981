package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matchday-tools/apiclient/pkg/apifootball"
)

func newFetchCmd(configPath *string) *cobra.Command {
	var (
		fixtureID int
		teamID    int
		team2ID   int
		leagueID  int
		playerID  int
		season    int
		date      string
		last      int
	)

	cmd := &cobra.Command{
		Use:   "fetch <endpoint>",
		Short: "Fetch one endpoint through the cache and print the response",
		Long: `Fetch one endpoint through the cache and print the provider response
as JSON. Endpoints: fixture, fixtures, last-fixtures, lineups, headtohead,
statistics, injuries, player, squad.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(*configPath)
			if err != nil {
				return err
			}
			defer a.printRunSummary()

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			var env *apifootball.Envelope
			switch args[0] {
			case "fixture":
				env, err = a.api.FixtureByID(ctx, fixtureID)
			case "fixtures":
				if date != "" {
					env, err = a.api.FixturesByLeagueDate(ctx, leagueID, date)
				} else {
					env, err = a.api.FixturesByLeagueSeason(ctx, leagueID, season)
				}
			case "last-fixtures":
				env, err = a.api.LastFixtures(ctx, teamID, last)
			case "lineups":
				env, err = a.api.Lineups(ctx, fixtureID)
			case "headtohead":
				env, err = a.api.HeadToHead(ctx, teamID, team2ID, last)
			case "statistics":
				env, err = a.api.Statistics(ctx, teamID, leagueID, season)
			case "injuries":
				env, err = a.api.Injuries(ctx, fixtureID)
			case "player":
				env, err = a.api.Player(ctx, playerID, season)
			case "squad":
				squad, err := a.api.Squad(ctx, teamID)
				if err != nil {
					return err
				}
				for _, p := range squad {
					fmt.Printf("%d\t%s\t%s\n", p.ID, p.Position, p.Name)
				}
				return nil
			default:
				return fmt.Errorf("unknown endpoint %q", args[0])
			}
			if err != nil {
				return err
			}

			os.Stdout.Write(env.Response)
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().IntVar(&fixtureID, "fixture", 0, "fixture id")
	cmd.Flags().IntVar(&teamID, "team", 0, "team id")
	cmd.Flags().IntVar(&team2ID, "team2", 0, "second team id for headtohead")
	cmd.Flags().IntVar(&leagueID, "league", 0, "league id")
	cmd.Flags().IntVar(&playerID, "player", 0, "player id")
	cmd.Flags().IntVar(&season, "season", 0, "season year (0 infers the current season)")
	cmd.Flags().StringVar(&date, "date", "", "date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&last, "last", 5, "number of recent fixtures")

	return cmd
}
