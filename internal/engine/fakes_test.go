package engine_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"db-retain/internal/config"
	"db-retain/internal/dialect"
	"db-retain/internal/engine"
	"db-retain/internal/schema"
)

// fakeCatalog serves a fixed table list. Safe for concurrent use.
type fakeCatalog struct {
	mu       sync.Mutex
	tables   []schema.TableRef
	columns  map[string]bool  // table name -> has filter column
	colErrs  map[string]error // table name -> HasColumn failure
	counts   map[string]int64
	countErr error
	listErr  error

	hasColumnCalls []string
	countCalls     []string
}

func (c *fakeCatalog) ListBaseTables(ctx context.Context) ([]schema.TableRef, error) {
	if c.listErr != nil {
		return nil, &schema.CatalogError{Op: "list_tables", Cause: c.listErr}
	}
	return append([]schema.TableRef(nil), c.tables...), nil
}

func (c *fakeCatalog) HasColumn(ctx context.Context, table schema.TableRef, column string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hasColumnCalls = append(c.hasColumnCalls, table.Name)
	if err, ok := c.colErrs[table.Name]; ok {
		return false, &schema.CatalogError{Table: table, Op: "has_column", Cause: err}
	}
	return c.columns[table.Name], nil
}

func (c *fakeCatalog) RowCount(ctx context.Context, table schema.TableRef, quoted string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.countCalls = append(c.countCalls, table.Name)
	if c.countErr != nil {
		return 0, &schema.CatalogError{Table: table, Op: "count_rows", Cause: c.countErr}
	}
	return c.counts[table.Name], nil
}

// recordingExecutor remembers every statement it was asked to run.
type recordingExecutor struct {
	mu         sync.Mutex
	statements []string
	failOn     map[string]error
	executed   bool
}

func (e *recordingExecutor) Run(ctx context.Context, statement string) (engine.RunResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.statements = append(e.statements, statement)
	if err, ok := e.failOn[statement]; ok {
		return engine.RunResult{}, err
	}
	return engine.RunResult{Executed: e.executed}, nil
}

// countingBeginner fails the test if a transaction is ever opened.
type countingBeginner struct {
	begins int
}

func (b *countingBeginner) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	b.begins++
	return nil, errors.New("no transactions expected")
}

func mustKeep(t *testing.T, raw any) config.KeepValue {
	t.Helper()
	v, err := config.ResolveKeepValue(raw, config.KindAuto)
	require.NoError(t, err)
	return v
}

func runConfig(t *testing.T, d dialect.Dialect, dryRun bool, exceptions ...string) *config.RunConfig {
	t.Helper()
	cfg := &config.RunConfig{
		Name:       "test",
		Driver:     "sqlite",
		DSN:        "file::memory:",
		Dialect:    d,
		Policy:     config.RetentionPolicy{FilterColumn: "AccountId", KeepValue: mustKeep(t, 8)},
		Exceptions: config.NewExceptionSet(exceptions...),
		DryRun:     dryRun,
		CountRows:  true,
		Workers:    1,
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

// openScenarioDB creates the orders/logs catalog used by the end-to-end
// scenarios: orders carries AccountId values 8, 9 and NULL, logs has no
// AccountId at all.
func openScenarioDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "scenario.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	for _, stmt := range []string{
		`CREATE TABLE orders (id INTEGER PRIMARY KEY, AccountId INTEGER, customer TEXT, amount REAL)`,
		`CREATE TABLE logs (id INTEGER PRIMARY KEY, message TEXT)`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	faker := gofakeit.New(42)
	accounts := []any{8, 9, nil}
	for i := 0; i < 30; i++ {
		_, err := db.Exec(`INSERT INTO orders (AccountId, customer, amount) VALUES (?, ?, ?)`,
			accounts[i%len(accounts)], faker.Name(), faker.Price(1, 500))
		require.NoError(t, err)
	}
	for i := 0; i < 12; i++ {
		_, err := db.Exec(`INSERT INTO logs (message) VALUES (?)`, faker.Sentence(6))
		require.NoError(t, err)
	}
	return db
}

func countRows(t *testing.T, db *sql.DB, query string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(query).Scan(&n))
	return n
}
