package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var rootFlags struct {
	LogLevel string
}

var rootCmd = &cobra.Command{
	Use:   "fitness-tracker",
	Short: "Fitness tracker REST API",
	Long:  `Serves users, teams, activities, leaderboard entries and workouts over a JSON API backed by a document store.`,
	Example: `fitness-tracker serve
  fitness-tracker serve --log-level debug
  STORE_DRIVER=mysql fitness-tracker migrate`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlags.LogLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

// setLogLevel applies the flag when given, else the configured level.
func setLogLevel(configured string) {
	level := rootFlags.LogLevel
	if level == "" {
		level = configured
	}
	switch level {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info", "":
		log.SetLevel(log.InfoLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.Warnf("unknown log level %s, defaulting to info", level)
		log.SetLevel(log.InfoLevel)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
