// Command server runs the course recommendation API and its maintenance
// tasks.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/actuallystonmai/course-recommender/internal/config"
	"github.com/actuallystonmai/course-recommender/internal/logging"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "server",
	Short:         "Course recommendation service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return err
		}
		cfg = c
		logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
		return nil
	},
	// serve is the default
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logging.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
