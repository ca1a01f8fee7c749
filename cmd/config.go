package cmd

import (
	"fmt"

	"github.com/spf13/viper"

	"db-retain/internal/config"
	"db-retain/internal/dialect"
	"db-retain/internal/report"
)

type DBConfig struct {
	Name    string `mapstructure:"name"`
	Driver  string `mapstructure:"driver"`
	Dialect string `mapstructure:"dialect"`
	DSN     string `mapstructure:"dsn"`
	Active  bool   `mapstructure:"active"`
}

// runOverrides carries command-line values that win over the config file.
// Zero values mean "not given".
type runOverrides struct {
	dryRun     *bool
	exceptions []string
	workers    int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("retention.dry_run", true)
	v.SetDefault("retention.count_rows", true)
	v.SetDefault("retention.keep_value_type", config.KindAuto)
	v.SetDefault("settings.workers", 1)
	v.SetDefault("settings.report.path", "retention-report.xlsx")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// GetActiveDBConfig returns the currently active database configuration.
// Without a databases list, the --dsn/--driver values (database.dsn,
// database.driver) are used instead.
func GetActiveDBConfig(v *viper.Viper) (*DBConfig, error) {
	var configs []DBConfig

	if err := v.UnmarshalKey("databases", &configs); err != nil {
		return nil, &config.ConfigurationError{Field: "databases", Reason: "failed to parse databases config", Cause: err}
	}

	if len(configs) == 0 {
		if dsn := v.GetString("database.dsn"); dsn != "" {
			return &DBConfig{
				Name:    "CLI",
				Driver:  v.GetString("database.driver"),
				Dialect: v.GetString("database.dialect"),
				DSN:     dsn,
				Active:  true,
			}, nil
		}
	}

	var activeConfig *DBConfig
	count := 0

	for i := range configs {
		if configs[i].Active {
			activeConfig = &configs[i]
			count++
		}
	}

	if count == 0 {
		return nil, &config.ConfigurationError{Field: "databases", Reason: "no active database found in config (set active: true)"}
	}
	if count > 1 {
		return nil, &config.ConfigurationError{Field: "databases", Reason: "multiple active databases found (only one can be active)"}
	}

	// CLI flags still override the entry's connection pieces
	if d := v.GetString("database.dialect"); d != "" {
		activeConfig.Dialect = d
	}
	return activeConfig, nil
}

// loadRunConfig builds and validates the RunConfig from v and the overrides.
func loadRunConfig(v *viper.Viper, o runOverrides) (*config.RunConfig, error) {
	db, err := GetActiveDBConfig(v)
	if err != nil {
		return nil, err
	}

	var d dialect.Dialect
	if db.Dialect != "" {
		d, err = dialect.GetDialect(db.Dialect)
	} else {
		d, err = dialect.ForDriver(db.Driver)
	}
	if err != nil {
		return nil, &config.ConfigurationError{Field: "databases.dialect", Reason: "unknown dialect", Cause: err}
	}

	keep, err := config.ResolveKeepValue(v.Get("retention.keep_value"), v.GetString("retention.keep_value_type"))
	if err != nil {
		return nil, err
	}

	exceptions := append(v.GetStringSlice("retention.exceptions"), o.exceptions...)

	dryRun := v.GetBool("retention.dry_run")
	if o.dryRun != nil {
		dryRun = *o.dryRun
	}
	workers := v.GetInt("settings.workers")
	if o.workers > 0 {
		workers = o.workers
	}

	cfg := &config.RunConfig{
		Name:    db.Name,
		Driver:  db.Driver,
		DSN:     db.DSN,
		Dialect: d,
		Policy: config.RetentionPolicy{
			FilterColumn: v.GetString("retention.filter_column"),
			KeepValue:    keep,
		},
		Exceptions:     config.NewExceptionSet(exceptions...),
		DryRun:         dryRun,
		ExcludeSchemas: v.GetStringSlice("retention.exclude_schemas"),
		CountRows:      v.GetBool("retention.count_rows"),
		Workers:        workers,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolveFormat(format, path string) (string, error) {
	f, err := report.ResolveFormat(format, path)
	if err != nil {
		return "", &config.ConfigurationError{Field: "settings.report.format", Reason: "unsupported report format", Cause: err}
	}
	return f, nil
}

func describe(cfg *config.RunConfig) string {
	mode := "PRINT ONLY"
	if !cfg.DryRun {
		mode = "EXECUTE"
	}
	return fmt.Sprintf("%s (%s, %s)", cfg.Name, cfg.Dialect.Name(), mode)
}
