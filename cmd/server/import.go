package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/actuallystonmai/course-recommender/internal/catalog"
	"github.com/actuallystonmai/course-recommender/internal/logging"
	"github.com/actuallystonmai/course-recommender/internal/repository"
)

var importCmd = &cobra.Command{
	Use:   "import-catalog <file.csv>",
	Short: "Upsert courses from a CSV export into PostgreSQL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		courses, err := (&catalog.CSVSource{Path: args[0]}).LoadCourses(ctx)
		if err != nil {
			return err
		}
		if len(courses) == 0 {
			return fmt.Errorf("no courses found in %s", args[0])
		}

		pool, err := connectPostgres(ctx, cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		n, err := repository.New(pool).ImportCourses(ctx, courses)
		if err != nil {
			return err
		}
		logging.Info().Int("courses", n).Str("path", args[0]).Msg("catalog imported")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
