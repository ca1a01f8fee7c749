package dialect

import "fmt"

// PostgresDialect quotes with double quotes and truncates with CASCADE so that
// referencing tables do not block the discard.
type PostgresDialect struct{}

func (d *PostgresDialect) Name() string { return "postgres" }

func (d *PostgresDialect) Quote(schema, table string) string {
	return fmt.Sprintf(`"%s"."%s"`, schema, table)
}

func (d *PostgresDialect) DiscardStatement(quotedTable string) (string, error) {
	return fmt.Sprintf("TRUNCATE TABLE %s CASCADE", quotedTable), nil
}

func (d *PostgresDialect) CountStatement(quotedTable string) string {
	return DefaultCountStatement(quotedTable)
}

func (d *PostgresDialect) TablesQuery() string {
	// information_schema.tables reports pg_catalog tables as BASE TABLE too;
	// those are removed by the catalog pre-filter.
	return informationSchemaTables
}

func (d *PostgresDialect) ColumnExistsQuery(schema, table, column string) (string, []any) {
	return informationSchemaColumnExists(d.Placeholder, schema, table, column)
}

func (d *PostgresDialect) SystemSchemas() []string {
	return []string{"pg_catalog", "information_schema", "pg_toast"}
}

func (d *PostgresDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index+1)
}
