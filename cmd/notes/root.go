package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"example.com/notes-app/internal/app"
	"example.com/notes-app/internal/config"
	"example.com/notes-app/internal/logging"
)

var (
	configPath string
	verbose    bool

	cfg         config.Config
	application *app.App
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "notes",
	Short: "Create, search and organize short text notes",
	Long: `notes keeps short text notes in a local bbolt file or a Postgres table.
Pick the backend with NOTES_BACKEND (local|remote) or a TOML file passed with --config.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configPath != "" {
			cfg, err = config.LoadFile(configPath)
			if err != nil {
				return err
			}
		} else {
			cfg = config.Load()
		}

		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		logger := logging.New(os.Stderr, level)

		application, err = app.Open(cmd.Context(), cfg, logger)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if application == nil {
			return nil
		}
		return application.Close()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("NOTES_CONFIG"), "TOML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}
