package engine

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// Log prefixes for intended statements.
const (
	PrefixDryRun  = "[PRINT ONLY]"
	PrefixExecute = "[EXECUTE]"
)

// RunResult reports what the gateway did with a statement.
type RunResult struct {
	Executed     bool
	RowsAffected *int64 // nil when not executed or not reported by the driver
}

// Executor runs or merely logs a retention statement. Implementations log the
// statement before attempting anything so the log reflects intent.
type Executor interface {
	Run(ctx context.Context, statement string) (RunResult, error)
}

// TxBeginner is the write side of *sql.DB.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// NewExecutor selects the executor once, at construction.
// If logger is nil, a no-op logger is used.
func NewExecutor(db TxBeginner, dryRun bool, logger *zap.Logger) Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dryRun {
		return &DryRunExecutor{logger: logger.Named("gateway")}
	}
	return &TxExecutor{db: db, logger: logger.Named("gateway")}
}

// DryRunExecutor logs statements and never touches the connection.
type DryRunExecutor struct {
	logger *zap.Logger
}

func (e *DryRunExecutor) Run(ctx context.Context, statement string) (RunResult, error) {
	e.logger.Info(PrefixDryRun + " " + statement)
	return RunResult{Executed: false}, nil
}

// TxExecutor runs each statement in its own transaction. There is no
// transaction spanning tables.
type TxExecutor struct {
	db     TxBeginner
	logger *zap.Logger
}

func (e *TxExecutor) Run(ctx context.Context, statement string) (result RunResult, err error) {
	e.logger.Info(PrefixExecute + " " + statement)

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return RunResult{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				e.logger.Warn("rollback failed", zap.String("statement", statement), zap.Error(rbErr))
			}
		}
	}()

	res, err := tx.ExecContext(ctx, statement)
	if err != nil {
		return RunResult{}, fmt.Errorf("exec: %w", err)
	}

	if err := tx.Commit(); err != nil {
		tx = nil // a failed commit already ended the transaction
		return RunResult{}, fmt.Errorf("commit: %w", err)
	}
	tx = nil

	result.Executed = true
	if n, err := res.RowsAffected(); err == nil && n >= 0 {
		result.RowsAffected = &n
	}
	return result, nil
}
