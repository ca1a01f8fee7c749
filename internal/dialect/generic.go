package dialect

import "fmt"

// GenericDialect is the fallback for catalogs that expose INFORMATION_SCHEMA
// but have no known bulk-clear statement. It is usable for dry runs only.
type GenericDialect struct{}

func (d *GenericDialect) Name() string { return "generic" }

func (d *GenericDialect) Quote(schema, table string) string {
	return fmt.Sprintf("%s.%s", schema, table)
}

func (d *GenericDialect) DiscardStatement(quotedTable string) (string, error) {
	return "", fmt.Errorf("discard %s: %w", quotedTable, ErrDiscardUnsupported)
}

func (d *GenericDialect) CountStatement(quotedTable string) string {
	return DefaultCountStatement(quotedTable)
}

func (d *GenericDialect) TablesQuery() string {
	return informationSchemaTables
}

func (d *GenericDialect) ColumnExistsQuery(schema, table, column string) (string, []any) {
	return informationSchemaColumnExists(d.Placeholder, schema, table, column)
}

func (d *GenericDialect) SystemSchemas() []string {
	return nil
}

func (d *GenericDialect) Placeholder(index int) string {
	return "?"
}
