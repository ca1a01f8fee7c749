package dialect

import "fmt"

// SQLiteDialect targets the main database of a SQLite file. SQLite has no
// TRUNCATE; an unqualified DELETE uses the truncate optimization internally.
type SQLiteDialect struct{}

func (d *SQLiteDialect) Name() string { return "sqlite" }

func (d *SQLiteDialect) Quote(schema, table string) string {
	return fmt.Sprintf(`"%s"."%s"`, schema, table)
}

func (d *SQLiteDialect) DiscardStatement(quotedTable string) (string, error) {
	return fmt.Sprintf("DELETE FROM %s", quotedTable), nil
}

func (d *SQLiteDialect) CountStatement(quotedTable string) string {
	return DefaultCountStatement(quotedTable)
}

func (d *SQLiteDialect) TablesQuery() string {
	return `SELECT 'main', name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`
}

func (d *SQLiteDialect) ColumnExistsQuery(schema, table, column string) (string, []any) {
	return `SELECT 1 FROM pragma_table_info(?) WHERE name = ?`, []any{table, column}
}

func (d *SQLiteDialect) SystemSchemas() []string {
	return nil
}

func (d *SQLiteDialect) Placeholder(index int) string {
	return "?"
}
