package schema

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"db-retain/internal/dialect"

	"go.uber.org/zap"
)

// Querier is the read side of *sql.DB.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Introspector reads base tables and column presence from catalog metadata.
// It never writes.
type Introspector struct {
	db      Querier
	d       dialect.Dialect
	exclude map[string]bool
	logger  *zap.Logger
}

// NewIntrospector creates an Introspector. The dialect's system schemas are always
// excluded; excludeSchemas adds to them. If logger is nil, a no-op logger is used.
func NewIntrospector(db Querier, d dialect.Dialect, excludeSchemas []string, logger *zap.Logger) *Introspector {
	if logger == nil {
		logger = zap.NewNop()
	}
	exclude := make(map[string]bool)
	for _, s := range d.SystemSchemas() {
		exclude[strings.ToUpper(s)] = true
	}
	for _, s := range excludeSchemas {
		exclude[strings.ToUpper(s)] = true
	}
	return &Introspector{
		db:      db,
		d:       d,
		exclude: exclude,
		logger:  logger.Named("catalog"),
	}
}

// ListBaseTables returns every base table outside the excluded schemas,
// ordered by (schema, name). The order is re-established in Go so it does not
// depend on the server's collation.
func (in *Introspector) ListBaseTables(ctx context.Context) ([]TableRef, error) {
	rows, err := in.db.QueryContext(ctx, in.d.TablesQuery())
	if err != nil {
		return nil, &CatalogError{Op: "list_tables", Cause: err}
	}
	defer rows.Close()

	var tables []TableRef
	excluded := 0
	for rows.Next() {
		var schemaName, tableName sql.NullString
		if err := rows.Scan(&schemaName, &tableName); err != nil {
			return nil, &CatalogError{Op: "list_tables", Cause: fmt.Errorf("scan table row: %w", err)}
		}
		if !tableName.Valid {
			continue
		}
		// Normalized key (UPPERCASE) for case-insensitive schema matching
		if in.exclude[strings.ToUpper(schemaName.String)] {
			excluded++
			continue
		}
		tables = append(tables, TableRef{Schema: schemaName.String, Name: tableName.String})
	}
	if err := rows.Err(); err != nil {
		return nil, &CatalogError{Op: "list_tables", Cause: fmt.Errorf("iterate table rows: %w", err)}
	}

	slices.SortStableFunc(tables, func(a, b TableRef) int {
		if c := cmp.Compare(a.Schema, b.Schema); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	in.logger.Debug("listed base tables",
		zap.Int("tables", len(tables)),
		zap.Int("excluded", excluded))
	return tables, nil
}

// HasColumn reports whether table has a column named column.
// A failed lookup is a *CatalogError, never a false result.
func (in *Introspector) HasColumn(ctx context.Context, table TableRef, column string) (bool, error) {
	query, args := in.d.ColumnExistsQuery(table.Schema, table.Name, column)

	var one int
	err := in.db.QueryRowContext(ctx, query, args...).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, &CatalogError{Table: table, Op: "has_column", Cause: err}
	}
	return true, nil
}

// RowCount counts the rows of an already-quoted table.
func (in *Introspector) RowCount(ctx context.Context, table TableRef, quoted string) (int64, error) {
	var n int64
	if err := in.db.QueryRowContext(ctx, in.d.CountStatement(quoted)).Scan(&n); err != nil {
		return 0, &CatalogError{Table: table, Op: "count_rows", Cause: err}
	}
	return n, nil
}
