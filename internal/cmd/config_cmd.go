package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runger/cinematch/internal/config"
	"github.com/runger/cinematch/internal/render"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change configuration values",
	Long: `Show or change cinematch configuration values.

Configuration is stored in ~/.config/cinematch/config.yaml (XDG compliant).

Keys are in the format: section.key
Sections: catalog, recommend, output, log

List values (catalog.drop_columns, catalog.continuous) are comma separated.
catalog.scale takes feature=factor pairs, e.g. "year=2,imdbRating=0.5".

Examples:
  cinematch config list
  cinematch config get catalog.path
  cinematch config set catalog.path ~/movies/imdb.csv
  cinematch config set recommend.default_n 5`,
	GroupID: groupSetup,
	Args:    cobra.NoArgs,
	RunE:    runConfigList,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration keys and values",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value and save it",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), configFilePath(config.DefaultPaths()))
	},
}

func init() {
	configCmd.AddCommand(configListCmd, configGetCmd, configSetCmd, configPathCmd)
}

// configFilePath returns --config or the default config file.
func configFilePath(paths *config.Paths) string {
	if configPath != "" {
		return configPath
	}
	return paths.ConfigFile()
}

// loadConfigFile reads the config file as stored, without environment
// overrides, so that set never persists them.
func loadConfigFile() (*config.Config, *config.Paths, error) {
	paths := config.DefaultPaths()
	cfg, err := config.ReadFile(configFilePath(paths))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, paths, nil
}

// configPrinter styles config output with the configured color mode.
func configPrinter(cmd *cobra.Command, cfg *config.Config) *render.Printer {
	return render.New(cmd.OutOrStdout(), render.Options{Color: cfg.Output.Color})
}

func runConfigList(cmd *cobra.Command, args []string) error {
	cfg, paths, err := loadConfigFile()
	if err != nil {
		return err
	}

	var settings []render.Setting
	var failedKeys []string
	for _, key := range config.ListKeys() {
		value, err := cfg.Get(key)
		if err != nil {
			failedKeys = append(failedKeys, key)
			continue
		}
		settings = append(settings, render.Setting{Key: key, Value: value})
	}

	p := configPrinter(cmd, cfg)
	if err := p.Settings("Configuration Keys", settings); err != nil {
		return err
	}
	if len(failedKeys) > 0 {
		if err := p.Warn("\nWarning: failed to retrieve keys: " + strings.Join(failedKeys, ", ")); err != nil {
			return err
		}
	}
	return p.Line("\nConfig file: " + configFilePath(paths))
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfigFile()
	if err != nil {
		return err
	}

	value, err := cfg.Get(args[0])
	if err != nil {
		return err
	}
	return configPrinter(cmd, cfg).Value(value)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	cfg, paths, err := loadConfigFile()
	if err != nil {
		return err
	}

	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	path := configFilePath(paths)
	if err := cfg.SaveToFile(path); err != nil {
		return err
	}

	p := configPrinter(cmd, cfg)
	if err := p.Setting(render.Setting{Key: key, Value: value}); err != nil {
		return err
	}
	return p.Line("Saved to: " + path)
}
