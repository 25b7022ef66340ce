package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// Command groups shown in help output.
const (
	groupCore  = "core"
	groupSetup = "setup"
)

// Persistent flags shared by every command.
var (
	configPath   string
	catalogPath  string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "cinematch",
	Short: "movie recommendations by feature similarity",
	Long: `cinematch - movie recommendations by feature similarity
  - cinematch recommend "toy story"       movies closest to a title
  - cinematch recommend --pref Drama=1    movies closest to stated preferences
  - cinematch shell                       interactive session`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx, which is cancelled on
// interrupt by the caller.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: groupCore, Title: "Recommendations:"},
		&cobra.Group{ID: groupSetup, Title: "Setup:"},
	)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/cinematch/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "catalog file, CSV or SQLite (overrides catalog.path)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level: debug, info, warn, or error")

	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(titlesCmd)
	rootCmd.AddCommand(featuresCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// cmdContext returns the command's context, or Background when the
// command runs outside Execute.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
