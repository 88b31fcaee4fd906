package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bunca/bakery-service/config"
	"github.com/bunca/bakery-service/internal/database"
	"github.com/bunca/bakery-service/internal/logging"
)

var (
	cfgFile  string
	logLevel string
	cfg      *config.Config
	logger   *zerolog.Logger
)

// dbAnnotation marks commands that talk to Postgres. The value says when:
// dbAlways, or dbOnApply for commands that only write with --apply.
const (
	dbAnnotation = "database"
	dbAlways     = "always"
	dbOnApply    = "apply"
)

var rootCmd = &cobra.Command{
	Use:   "bakery",
	Short: "Bakery CLI - workbook import tool",
	Long: `A CLI tool for importing bakery planning workbooks (raw materials, items,
recipes, production plans and shop deliveries) from loosely structured
Excel and CSV files. Sheets are recognised by their column headers, in German
or English, in any order and in either orientation.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		if cfg, err = config.Load(cfgFile); err != nil {
			// parse and schemas work on defaults
			fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
			cfg = nil
		}
		logger = newLogger(cmd.ErrOrStderr())

		if !requiresDatabase(cmd) {
			return nil
		}
		if cfg == nil {
			return fmt.Errorf("%s needs a loadable config", cmd.Name())
		}
		dbURL := config.GetDatabaseURL()
		if dbURL == "" {
			return fmt.Errorf("%s needs DATABASE_URL", cmd.Name())
		}
		if err := database.Connect(cmd.Context(), dbURL, cfg.Database); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		logger.Debug().Msg("Database connected")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml or ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
}

// newLogger writes to w, which is stderr, so json results on stdout stay parseable
func newLogger(w io.Writer) *zerolog.Logger {
	var lc config.LoggingConfig
	if cfg != nil {
		lc = cfg.Logging
	}
	if logLevel != "" {
		lc.Level = logLevel
	}
	return logging.New(lc, w, "bakery-cli")
}

func requiresDatabase(cmd *cobra.Command) bool {
	switch cmd.Annotations[dbAnnotation] {
	case dbAlways:
		return true
	case dbOnApply:
		return importApply
	}
	return false
}

// importerConfig returns the importer section, or defaults when no config was loaded
func importerConfig() config.ImporterConfig {
	if cfg == nil {
		return config.ImporterConfig{}
	}
	return cfg.Importer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	database.Close()
	if err != nil {
		os.Exit(1)
	}
}
