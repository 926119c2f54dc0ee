package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "git-release",
	Short: "A CLI tool for cutting tag-based releases from release branches",
	Long: `git-release opens release branches and tags patch releases on them,
bumping the version file on a temporary branch so the release line itself
never carries release commits.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level (debug, info, warn, error, none); overrides log_level from the config")
}

func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx, cancelled on interrupt by main.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
