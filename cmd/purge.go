package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"db-retain/internal/config"
	"db-retain/internal/engine"
	"db-retain/internal/metrics"
	"db-retain/internal/report"
	"db-retain/internal/schedule"
	"db-retain/internal/schema"
)

var (
	dryRun      bool
	execute     bool
	exceptions  []string
	workers     int
	reportPath  string
	reportFmt   string
	cronExpr    string
	metricsFile string
	noProgress  bool
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Apply the retention policy to every table",
	Long: `Walks every base table of the active database in (schema, name) order and
deletes the rows whose filter column differs from the keep value. Tables
without the column are truncated, tables in the exception list are skipped.

Nothing is executed unless --execute is given (or retention.dry_run is false).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := overridesFromFlags(cmd)
		if err != nil {
			return err
		}
		cfg, err := loadRunConfig(viper.GetViper(), o)
		if err != nil {
			return err
		}

		path := stringOverride(cmd, "report", "settings.report.path")
		format, err := resolveFormat(stringOverride(cmd, "format", "settings.report.format"), path)
		if err != nil {
			return err
		}

		target := purgeTarget{
			reportPath:   path,
			reportFormat: format,
			metricsFile:  stringOverride(cmd, "metrics-file", "settings.metrics_file"),
			progress:     !noProgress,
			recorder:     metrics.NewRecorder(),
		}

		expr := stringOverride(cmd, "schedule", "settings.schedule")
		if expr == "" {
			return purgeOnce(cmd.Context(), cfg, target)
		}

		s, err := schedule.New(expr, func(ctx context.Context) error {
			return purgeOnce(ctx, cfg, target)
		}, logger)
		if err != nil {
			return &config.ConfigurationError{Field: "settings.schedule", Reason: "invalid cron expression", Cause: err}
		}
		fmt.Printf("🦅 Scheduled retention for %s on %q (Ctrl+C to stop)\n", describe(cfg), expr)
		return s.Run(cmd.Context())
	},
}

func init() {
	RootCmd.AddCommand(purgeCmd)

	// CLI Flags
	purgeCmd.Flags().BoolVar(&dryRun, "dry-run", true, "Only print the statements (overrides retention.dry_run)")
	purgeCmd.Flags().BoolVar(&execute, "execute", false, "Execute the statements (same as --dry-run=false)")
	purgeCmd.Flags().StringArrayVarP(&exceptions, "exception", "x", nil, "Quoted table identifier to skip, e.g. [dbo].[Audit] (repeatable)")
	purgeCmd.Flags().IntVarP(&workers, "workers", "w", 0, "Tables processed in parallel (overrides settings.workers)")
	purgeCmd.Flags().StringVarP(&reportPath, "report", "o", "", "Report file (overrides settings.report.path)")
	purgeCmd.Flags().StringVar(&reportFmt, "format", "", "Report format: xlsx, csv, json, yaml, table (default from extension)")
	purgeCmd.Flags().StringVar(&cronExpr, "schedule", "", "Cron expression for repeated runs, e.g. \"0 3 * * *\"")
	purgeCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write prometheus textfile metrics after each run")
	purgeCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")
}

// overridesFromFlags reads the run-shaping flags shared by purge and plan.
func overridesFromFlags(cmd *cobra.Command) (runOverrides, error) {
	var o runOverrides

	dryChanged := cmd.Flags().Changed("dry-run")
	if execute {
		if dryChanged && dryRun {
			return o, &config.ConfigurationError{Field: "retention.dry_run", Reason: "--dry-run and --execute are mutually exclusive"}
		}
		o.dryRun = new(bool)
	} else if dryChanged {
		v := dryRun
		o.dryRun = &v
	}

	o.exceptions = exceptions
	o.workers = workers
	return o, nil
}

// stringOverride returns the flag value when it was given, else the viper key.
func stringOverride(cmd *cobra.Command, flag, key string) string {
	if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
		return f.Value.String()
	}
	return viper.GetString(key)
}

type purgeTarget struct {
	reportPath   string
	reportFormat string
	metricsFile  string
	progress     bool
	recorder     *metrics.Recorder
}

// purgeOnce runs one retention cycle and flushes its report.
func purgeOnce(ctx context.Context, cfg *config.RunConfig, target purgeTarget) error {
	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Printf("🦅 Connected to %s\n", describe(cfg))
	if cfg.DryRun {
		fmt.Println("[SIMULATION] Print-only mode: no statement will be executed. Use --execute to apply.")
	}

	catalog := schema.NewIntrospector(db, cfg.Dialect, cfg.ExcludeSchemas, logger)
	exec := engine.NewExecutor(db, cfg.DryRun, logger)
	rep := report.NewReporter()
	runner := engine.NewRunner(cfg, catalog, exec, rep, logger)

	var progress *uiprogress.Progress
	var bar *uiprogress.Bar
	hooks := engine.Hooks{
		OnDiscovered: func(tables []schema.TableRef) {
			if !target.progress || len(tables) == 0 {
				return
			}
			progress = uiprogress.New()
			bar = progress.AddBar(len(tables)).AppendCompleted().PrependElapsed()
			bar.PrependFunc(func(b *uiprogress.Bar) string {
				return fmt.Sprintf("Processing %d/%d: ", b.Current(), b.Total)
			})
			progress.Start()
		},
		OnOutcome: func(rec schema.OutcomeRecord) {
			target.recorder.Observe(rec, cfg.DryRun)
			if bar != nil {
				bar.Incr()
			}
		},
	}

	summary, runErr := runner.Run(ctx, hooks)
	if progress != nil {
		progress.Stop()
	}
	// a run cancelled while listing tables has no summary
	if runErr != nil && (summary == nil || engine.IsFatal(runErr)) {
		return runErr
	}

	printSummary(summary, rep.Records())

	target.recorder.RunFinished(summary.Finished, summary.Counts)
	if target.metricsFile != "" {
		if err := target.recorder.WriteTextfile(target.metricsFile); err != nil {
			logger.Warn("failed to write metrics file", zap.String("path", target.metricsFile), zap.Error(err))
		}
	}

	sink, err := report.NewFileSink(target.reportFormat, target.reportPath)
	if err != nil {
		return &config.ConfigurationError{Field: "settings.report.path", Reason: "invalid report target", Cause: err}
	}
	// the report is written even when the run was interrupted
	flushErr := rep.Flush(context.WithoutCancel(ctx), sink)
	switch {
	case errors.Is(flushErr, report.ErrNothingToReport):
		fmt.Println("📄 Nothing to report: no tables were processed.")
	case flushErr != nil:
		return flushErr
	default:
		fmt.Printf("📄 Report written to %s (%d tables)\n", target.reportPath, rep.Len())
	}

	return runErr
}
