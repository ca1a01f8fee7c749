package cmd

import (
	"bytes"
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"db-retain/internal/config"
	"db-retain/internal/dialect"
	"db-retain/internal/metrics"
	"db-retain/internal/report"
	"db-retain/internal/schema"
)

// interruptedDriver connects fine but every query reports a cancelled context,
// as when Ctrl+C lands while the table list is being read.
type interruptedDriver struct{}

func (interruptedDriver) Open(name string) (driver.Conn, error) { return interruptedConn{}, nil }

type interruptedConn struct{}

func (interruptedConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}
func (interruptedConn) Close() error              { return nil }
func (interruptedConn) Begin() (driver.Tx, error) { return nil, errors.New("begin not supported") }
func (interruptedConn) Ping(ctx context.Context) error {
	return nil
}
func (interruptedConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	return nil, context.Canceled
}

func init() {
	sql.Register("db-retain-interrupted", interruptedDriver{})
}

func TestPurgeOnce_CancelledWhileListing(t *testing.T) {
	keep, err := config.ResolveKeepValue(8, config.KindAuto)
	require.NoError(t, err)
	cfg := &config.RunConfig{
		Name:       "interrupted",
		Driver:     "db-retain-interrupted",
		DSN:        "any",
		Dialect:    &dialect.GenericDialect{},
		Policy:     config.RetentionPolicy{FilterColumn: "AccountId", KeepValue: keep},
		Exceptions: config.NewExceptionSet(),
		DryRun:     true,
		Workers:    1,
	}
	require.NoError(t, cfg.Validate())

	dir := t.TempDir()
	target := purgeTarget{
		reportPath:   filepath.Join(dir, "report.csv"),
		reportFormat: report.FormatCSV,
		metricsFile:  filepath.Join(dir, "db_retain.prom"),
		recorder:     metrics.NewRecorder(),
	}

	var runErr error
	require.NotPanics(t, func() { runErr = purgeOnce(context.Background(), cfg, target) })
	require.ErrorIs(t, runErr, context.Canceled)

	var catErr *schema.CatalogError
	assert.ErrorAs(t, runErr, &catErr)
	assert.Equal(t, ExitFailure, exitCode(runErr))

	_, statErr := os.Stat(target.reportPath)
	assert.True(t, os.IsNotExist(statErr), "no report for a run that never started")
	_, statErr = os.Stat(target.metricsFile)
	assert.True(t, os.IsNotExist(statErr))
}

// ctxCheckingSink fails like the csv and xlsx sinks do on a cancelled context.
type ctxCheckingSink struct {
	buf bytes.Buffer
}

func (s *ctxCheckingSink) Name() string { return "ctx-checking" }

func (s *ctxCheckingSink) Write(ctx context.Context, records []schema.OutcomeRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return report.NewCSVSink(&s.buf).Write(ctx, records)
}

func TestWritePlan_AfterInterrupt(t *testing.T) {
	rep := report.NewReporter()
	rep.Record(schema.OutcomeRecord{
		Table:  schema.TableRef{Schema: "dbo", Name: "logs"},
		Action: schema.ActionFullDiscard,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &ctxCheckingSink{}
	require.NoError(t, writePlan(ctx, rep, sink))
	assert.Contains(t, sink.buf.String(), "FullDiscard")
}

func TestWritePlan_NothingToReport(t *testing.T) {
	sink := &ctxCheckingSink{}
	require.NoError(t, writePlan(context.Background(), report.NewReporter(), sink))
	assert.Zero(t, sink.buf.Len())
}
