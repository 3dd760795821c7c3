// Package cmd implements the cinedeck command line.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oceanbase/cinedeck-go/pkg/core"
)

var (
	envFile    string
	configFile string
	profileID  string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "cinedeck",
	Short: "Swipe through movies and TV shows that match your taste",
	Long: `cinedeck samples titles from TMDB, learns genre preferences from your
likes and dislikes, and keeps a watchlist and a liked list.

Configuration is read from the environment (and a .env file), or from a JSON
file passed with --config.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.HiddenDefaultCmd = false

	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "Path to a .env file (default: search upwards from the working directory)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a JSON config file")
	rootCmd.PersistentFlags().StringVar(&profileID, "profile", "", "Profile id that namespaces stored preferences")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
}

// loadConfig resolves the configuration from the persistent flags.
func loadConfig() (*core.Config, error) {
	var (
		cfg *core.Config
		err error
	)
	switch {
	case configFile != "":
		cfg, err = core.LoadConfigFromJSON(configFile)
	case envFile != "":
		cfg, err = core.LoadConfigFromEnvFile(envFile)
	default:
		cfg, err = core.LoadConfigFromEnv()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if profileID != "" {
		cfg.ProfileID = profileID
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	return cfg, nil
}

func openClient() (*core.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	client, err := core.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}
