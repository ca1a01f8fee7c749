package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"db-retain/internal/config"
	"db-retain/internal/report"
	"db-retain/internal/schema"
)

// Catalog is the read-only view of the database the runner needs.
// *schema.Introspector implements it.
type Catalog interface {
	ColumnChecker
	ListBaseTables(ctx context.Context) ([]schema.TableRef, error)
	RowCount(ctx context.Context, table schema.TableRef, quoted string) (int64, error)
}

// Summary describes one completed (or cancelled) run.
type Summary struct {
	RunID     string
	Database  string
	Dialect   string
	DryRun    bool
	Started   time.Time
	Finished  time.Time
	Tables    int // discovered
	Processed int
	Counts    map[schema.ActionKind]int
	Cancelled bool
}

// Hooks observe a run. Both fields are optional.
type Hooks struct {
	// OnDiscovered is called once with the tables about to be processed.
	OnDiscovered func(tables []schema.TableRef)
	// OnOutcome is called after each outcome is recorded. Calls are
	// serialized even when workers > 1.
	OnOutcome func(rec schema.OutcomeRecord)
}

// Runner drives one retention run: list, then decide, execute and record per table.
type Runner struct {
	cfg      *config.RunConfig
	catalog  Catalog
	exec     Executor
	reporter *report.Reporter
	logger   *zap.Logger
}

// NewRunner creates a Runner. If logger is nil, a no-op logger is used.
func NewRunner(cfg *config.RunConfig, catalog Catalog, exec Executor, reporter *report.Reporter, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:      cfg,
		catalog:  catalog,
		exec:     exec,
		reporter: reporter,
		logger:   logger.Named("engine"),
	}
}

// Run processes every discovered table and records one outcome for each.
// Table-level failures never stop the run; they become Failed outcomes.
// Run returns an error only when the table list could not be read, or when
// ctx was cancelled, which is checked between tables. A table already in
// progress finishes its statement.
func (r *Runner) Run(ctx context.Context, hooks Hooks) (*Summary, error) {
	summary := &Summary{
		RunID:    uuid.NewString(),
		Database: r.cfg.Name,
		Dialect:  r.cfg.Dialect.Name(),
		DryRun:   r.cfg.DryRun,
		Started:  time.Now(),
		Counts:   make(map[schema.ActionKind]int),
	}
	logger := r.logger.With(zap.String("run_id", summary.RunID))

	tables, err := r.catalog.ListBaseTables(ctx)
	if err != nil {
		return nil, err
	}
	summary.Tables = len(tables)
	if hooks.OnDiscovered != nil {
		hooks.OnDiscovered(tables)
	}
	logger.Info("starting retention run",
		zap.String("dialect", summary.Dialect),
		zap.Bool("dry_run", r.cfg.DryRun),
		zap.Int("tables", len(tables)),
		zap.Int("workers", r.cfg.Workers),
		zap.String("filter_column", r.cfg.Policy.FilterColumn),
		zap.String("keep_value", r.cfg.Policy.KeepValue.SQL()),
		zap.Int("exceptions", r.cfg.Exceptions.Len()))

	// In-flight statements must not be abandoned when ctx is cancelled.
	opCtx := context.WithoutCancel(ctx)

	var mu sync.Mutex
	record := func(index int, rec schema.OutcomeRecord) {
		r.reporter.RecordAt(index, rec)
		mu.Lock()
		defer mu.Unlock()
		summary.Processed++
		summary.Counts[rec.Action]++
		if hooks.OnOutcome != nil {
			hooks.OnOutcome(rec)
		}
	}

	if r.cfg.Workers <= 1 {
		for i, t := range tables {
			if ctx.Err() != nil {
				break
			}
			record(i, r.processTable(opCtx, logger, t))
		}
	} else {
		var g errgroup.Group
		g.SetLimit(r.cfg.Workers)
		for i, t := range tables {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				record(i, r.processTable(opCtx, logger, t))
				return nil
			})
		}
		_ = g.Wait() // per-table errors are outcomes, never returned
	}

	summary.Finished = time.Now()
	if err := ctx.Err(); err != nil {
		summary.Cancelled = true
		logger.Warn("retention run cancelled",
			zap.Int("processed", summary.Processed),
			zap.Int("remaining", summary.Tables-summary.Processed))
		return summary, err
	}

	logger.Info("retention run finished",
		zap.Int("processed", summary.Processed),
		zap.Int("skipped", summary.Counts[schema.ActionSkipped]),
		zap.Int("filtered_delete", summary.Counts[schema.ActionFilteredDelete]),
		zap.Int("full_discard", summary.Counts[schema.ActionFullDiscard]),
		zap.Int("failed", summary.Counts[schema.ActionFailed]),
		zap.Duration("elapsed", summary.Finished.Sub(summary.Started)))
	return summary, nil
}

// processTable runs decide, count, execute for one table and builds its record.
func (r *Runner) processTable(ctx context.Context, logger *zap.Logger, table schema.TableRef) schema.OutcomeRecord {
	start := time.Now()
	logger = logger.With(zap.Stringer("table", table))

	dec := Decide(ctx, table, r.cfg.Policy, r.cfg.Exceptions, r.cfg.Dialect, r.catalog)
	rec := schema.OutcomeRecord{
		Table:           table,
		Action:          dec.Action,
		HasFilterColumn: dec.HasColumn,
		Statement:       dec.Statement,
	}

	switch dec.Action {
	case schema.ActionSkipped:
		logger.Info("skipping table (exception list)", zap.String("quoted", dec.Quoted))
		rec.Duration = time.Since(start)
		return rec
	case schema.ActionFailed:
		logger.Error("could not classify table", zap.String("quoted", dec.Quoted), zap.Error(dec.Err))
		rec.ErrorDetail = dec.Err.Error()
		rec.Duration = time.Since(start)
		return rec
	}

	// Best effort: a failed count degrades to unknown and never blocks the action.
	if r.cfg.CountRows {
		n, err := r.catalog.RowCount(ctx, table, dec.Quoted)
		if err != nil {
			logger.Warn("row count failed", zap.Error(err))
		} else {
			rec.RowCountBefore = &n
		}
	}

	res, err := r.exec.Run(ctx, dec.Statement)
	if err != nil {
		execErr := &ExecutionError{Table: table, Statement: dec.Statement, Cause: err}
		logger.Error("error processing table",
			zap.String("statement", dec.Statement),
			zap.Error(execErr))
		rec.Action = schema.ActionFailed
		rec.ErrorDetail = execErr.Error()
		rec.Duration = time.Since(start)
		return rec
	}

	rec.Executed = res.Executed
	if dec.Action == schema.ActionFilteredDelete {
		rec.RowsAffected = res.RowsAffected
	}
	rec.Duration = time.Since(start)
	return rec
}

// IsFatal reports whether err from Run means the run could not start,
// as opposed to a cancellation after some tables were processed.
func IsFatal(err error) bool {
	return err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
