package main

import (
	"github.com/spf13/cobra"

	"github.com/actuallystonmai/course-recommender/internal/catalog"
	"github.com/actuallystonmai/course-recommender/internal/logging"
	"github.com/actuallystonmai/course-recommender/internal/repository"
	"github.com/actuallystonmai/course-recommender/seeds"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace the catalog and interaction log with deterministic synthetic data",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		users, _ := cmd.Flags().GetInt("users")
		courses, _ := cmd.Flags().GetInt("courses")
		csvPath, _ := cmd.Flags().GetString("catalog")

		opts := seeds.Options{Users: users, Courses: courses}
		if csvPath != "" {
			rows, err := (&catalog.CSVSource{Path: csvPath}).LoadCourses(ctx)
			if err != nil {
				return err
			}
			opts.Catalog = rows
			logging.Info().Int("courses", len(rows)).Str("path", csvPath).Msg("seeding interactions over CSV catalog")
		}

		pool, err := connectPostgres(ctx, cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		return seeds.Setup(ctx, pool, repository.New(pool), opts)
	},
}

func init() {
	seedCmd.Flags().Int("users", 100, "number of synthetic users")
	seedCmd.Flags().Int("courses", 200, "number of generated courses")
	seedCmd.Flags().String("catalog", "", "seed over the courses of this CSV file instead of generated ones")
	rootCmd.AddCommand(seedCmd)
}
