package dialect

import "fmt"

// MSSQLDialect is SQL Server: bracket-quoted identifiers, non-cascading TRUNCATE.
type MSSQLDialect struct{}

func (d *MSSQLDialect) Name() string { return "mssql" }

// Quote does not escape embedded brackets. Exception lists are matched against
// this exact output.
func (d *MSSQLDialect) Quote(schema, table string) string {
	return fmt.Sprintf("[%s].[%s]", schema, table)
}

// DiscardStatement uses TRUNCATE, which SQL Server refuses on tables referenced
// by a foreign key; that failure is reported per table.
func (d *MSSQLDialect) DiscardStatement(quotedTable string) (string, error) {
	return fmt.Sprintf("TRUNCATE TABLE %s", quotedTable), nil
}

func (d *MSSQLDialect) CountStatement(quotedTable string) string {
	return DefaultCountStatement(quotedTable)
}

func (d *MSSQLDialect) TablesQuery() string {
	return informationSchemaTables
}

func (d *MSSQLDialect) ColumnExistsQuery(schema, table, column string) (string, []any) {
	// go-mssqldb binds @p1, @p2 positionally
	return informationSchemaColumnExists(d.Placeholder, schema, table, column)
}

func (d *MSSQLDialect) SystemSchemas() []string {
	return []string{"INFORMATION_SCHEMA", "sys", "guest"}
}

func (d *MSSQLDialect) Placeholder(index int) string {
	return fmt.Sprintf("@p%d", index+1)
}
