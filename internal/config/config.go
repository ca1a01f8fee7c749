package config

import (
	"fmt"

	"db-retain/internal/dialect"
)

// RunConfig is the immutable input of one retention run. Build it once,
// call Validate, then pass it by pointer.
type RunConfig struct {
	Name    string // label of the active database entry, for logs and reports
	Driver  string
	DSN     string
	Dialect dialect.Dialect

	Policy     RetentionPolicy
	Exceptions ExceptionSet
	DryRun     bool

	ExcludeSchemas []string
	CountRows      bool
	Workers        int
}

// Validate returns a *ConfigurationError describing the first problem found.
func (c *RunConfig) Validate() error {
	if c.Dialect == nil {
		return newConfigError("database.dialect", "unknown dialect", nil)
	}
	if c.Driver == "" {
		return newConfigError("database.driver", "required", nil)
	}
	if c.DSN == "" {
		return newConfigError("database.dsn", "missing connection descriptor", nil)
	}
	if err := c.Policy.validate(); err != nil {
		return err
	}
	if c.Workers < 1 {
		return newConfigError("settings.workers", fmt.Sprintf("must be at least 1, got %d", c.Workers), nil)
	}
	if !c.DryRun {
		if _, err := c.Dialect.DiscardStatement(c.Dialect.Quote("s", "t")); err != nil {
			return newConfigError("database.dialect",
				fmt.Sprintf("dialect %s can only be used with dry_run", c.Dialect.Name()), err)
		}
	}
	return nil
}
