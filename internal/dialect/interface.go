package dialect

import "errors"

// ErrDiscardUnsupported is returned by dialects that have no bulk-clear statement.
var ErrDiscardUnsupported = errors.New("dialect has no discard statement")

// Dialect abstracts database-specific identifier quoting and statement forms.
// It is the only place dialect differences are allowed to leak into the engine.
type Dialect interface {
	Name() string

	// Identifiers
	Quote(schema, table string) string

	// Statement Generation
	DiscardStatement(quotedTable string) (string, error)
	CountStatement(quotedTable string) string

	// Metadata Queries (Catalog Introspection)
	TablesQuery() string
	ColumnExistsQuery(schema, table, column string) (string, []any)
	SystemSchemas() []string

	Placeholder(index int) string // Returns ?, $1, @p1, :1
}
