package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"db-retain/internal/config"
	"db-retain/internal/logging"
	"db-retain/internal/report"
)

// Exit codes returned by Execute.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitConfigError = 2
	ExitSinkError   = 3
)

var (
	cfgFile string
	logger  = zap.NewNop()
)

var RootCmd = &cobra.Command{
	Use:   "db-retain",
	Short: "Catalog-driven table retention",
	Long: `
  ____  ____    ____  _____ _____  _    ___ _   _ 
 |  _ \| __ )  |  _ \| ____|_   _|/ \  |_ _| \ | |
 | | | |  _ \  | |_) |  _|   | | / _ \  | ||  \| |
 | |_| | |_) | |  _ <| |___  | |/ ___ \ | || |\  |
 |____/|____/  |_| \_\_____| |_/_/   \_\___|_| \_|
                                                  
DB RETAIN 🦅 - keep one value, purge the rest
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(viper.GetString("log.level"), viper.GetString("log.format"))
		if err != nil {
			return &config.ConfigurationError{Field: "log", Reason: "invalid logging settings", Cause: err}
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command and exits with the code matching the error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := RootCmd.ExecuteContext(ctx)
	stop()

	code := exitCode(err)
	if err != nil && !errors.Is(err, report.ErrNothingToReport) {
		fmt.Fprintln(os.Stderr, logging.Emoji, logging.SanitizeError(err))
	}
	os.Exit(code)
}

func exitCode(err error) int {
	var cfgErr *config.ConfigurationError
	var sinkErr *report.SinkError
	switch {
	case err == nil, errors.Is(err, report.ErrNothingToReport):
		return ExitOK
	case errors.As(err, &cfgErr):
		return ExitConfigError
	case errors.As(err, &sinkErr):
		return ExitSinkError
	default:
		return ExitFailure
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	setDefaults(viper.GetViper())

	// Define flags
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./db-retain.yaml)")
	RootCmd.PersistentFlags().String("dsn", "", "Database Source Name (DSN), used when no databases list is configured")
	RootCmd.PersistentFlags().String("driver", "", "database/sql driver name for --dsn (sqlserver, postgres, pgx, mysql, oracle, sqlite)")
	RootCmd.PersistentFlags().String("dialect", "", "SQL dialect override (mssql, postgres, mysql, oracle, sqlite, generic)")
	RootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	RootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

	viper.BindPFlag("database.dsn", RootCmd.PersistentFlags().Lookup("dsn"))
	viper.BindPFlag("database.driver", RootCmd.PersistentFlags().Lookup("driver"))
	viper.BindPFlag("database.dialect", RootCmd.PersistentFlags().Lookup("dialect"))
	viper.BindPFlag("log.level", RootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", RootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// 1. Executable Directory (Priority 1)
		ex, err := os.Executable()
		if err == nil {
			exePath := filepath.Dir(ex)
			viper.AddConfigPath(exePath)
		}

		// 2. Current Directory (Priority 2)
		viper.AddConfigPath(".")

		viper.SetConfigName("db-retain")
		viper.SetConfigType("yaml")
	}

	// DB_RETAIN_RETENTION_KEEP_VALUE=8 overrides retention.keep_value
	viper.SetEnvPrefix("db_retain")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintln(os.Stderr, logging.Emoji, "failed to read config file:", err)
	}
}

// openDB opens and pings the configured database.
func openDB(ctx context.Context, cfg *config.RunConfig) (*sql.DB, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}
	logger.Info("connected",
		zap.String("database", cfg.Name),
		zap.String("driver", cfg.Driver),
		zap.String("dsn", logging.SanitizeDSN(cfg.DSN)))
	return db, nil
}
