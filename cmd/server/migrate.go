package main

import (
	"github.com/spf13/cobra"

	"github.com/actuallystonmai/course-recommender/internal/logging"
	"github.com/actuallystonmai/course-recommender/internal/repository"
	"github.com/actuallystonmai/course-recommender/migrations"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate up|down",
	Short:     "Apply or drop the database schema",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		pool, err := repository.Connect(ctx, cfg.DatabaseURL, cfg.DBPoolSize)
		if err != nil {
			return err
		}
		defer pool.Close()

		if args[0] == "down" {
			if err := migrations.Down(ctx, pool); err != nil {
				return err
			}
			logging.Info().Msg("migrations dropped successfully")
			return nil
		}
		if err := migrations.Up(ctx, pool); err != nil {
			return err
		}
		logging.Info().Msg("migrations applied successfully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
