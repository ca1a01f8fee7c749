package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"db-retain/internal/config"
	"db-retain/internal/engine"
	"db-retain/internal/report"
	"db-retain/internal/schema"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what purge would do, without executing anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := overridesFromFlags(cmd)
		if err != nil {
			return err
		}
		forced := true
		o.dryRun = &forced

		cfg, err := loadRunConfig(viper.GetViper(), o)
		if err != nil {
			return err
		}

		sinks := report.MultiSink{report.NewTableSink(os.Stdout)}
		if cmd.Flags().Changed("report") {
			fileSink, err := report.NewFileSink(reportFmt, reportPath)
			if err != nil {
				return &config.ConfigurationError{Field: "settings.report.path", Reason: "invalid report target", Cause: err}
			}
			sinks = append(sinks, fileSink)
		}

		ctx := cmd.Context()
		db, err := openDB(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Printf("🔍 Retention plan for %s\n", describe(cfg))
		fmt.Printf("    keep %s = %s, %d exception(s)\n",
			cfg.Policy.FilterColumn, cfg.Policy.KeepValue.SQL(), cfg.Exceptions.Len())

		rep := report.NewReporter()
		runner := engine.NewRunner(cfg,
			schema.NewIntrospector(db, cfg.Dialect, cfg.ExcludeSchemas, logger),
			engine.NewExecutor(db, true, logger),
			rep, logger)

		summary, runErr := runner.Run(ctx, engine.Hooks{})
		if runErr != nil && (summary == nil || engine.IsFatal(runErr)) {
			return runErr
		}

		if err := writePlan(ctx, rep, sinks); err != nil {
			return err
		}
		return runErr
	},
}

// writePlan flushes the plan even after an interrupt, like purge does.
func writePlan(ctx context.Context, rep *report.Reporter, sink report.Sink) error {
	err := rep.Flush(context.WithoutCancel(ctx), sink)
	if errors.Is(err, report.ErrNothingToReport) {
		fmt.Println("📄 Nothing to report: no tables found.")
		return nil
	}
	return err
}

func init() {
	RootCmd.AddCommand(planCmd)

	planCmd.Flags().StringArrayVarP(&exceptions, "exception", "x", nil, "Quoted table identifier to skip (repeatable)")
	planCmd.Flags().IntVarP(&workers, "workers", "w", 0, "Tables analysed in parallel")
	planCmd.Flags().StringVarP(&reportPath, "report", "o", "", "Also write the plan to this file")
	planCmd.Flags().StringVar(&reportFmt, "format", "", "Report format (default from extension)")
}
