package dialect

import "fmt"

type MysqlDialect struct{}

func (d *MysqlDialect) Name() string { return "mysql" }

func (d *MysqlDialect) Quote(schema, table string) string {
	return fmt.Sprintf("`%s`.`%s`", schema, table)
}

func (d *MysqlDialect) DiscardStatement(quotedTable string) (string, error) {
	return fmt.Sprintf("TRUNCATE TABLE %s", quotedTable), nil
}

func (d *MysqlDialect) CountStatement(quotedTable string) string {
	return DefaultCountStatement(quotedTable)
}

func (d *MysqlDialect) TablesQuery() string {
	// information_schema spans every database on the server, not only the one
	// in the DSN. Other databases' system schemas are pre-filtered.
	return informationSchemaTables
}

func (d *MysqlDialect) ColumnExistsQuery(schema, table, column string) (string, []any) {
	return informationSchemaColumnExists(d.Placeholder, schema, table, column)
}

func (d *MysqlDialect) SystemSchemas() []string {
	return []string{"mysql", "information_schema", "performance_schema", "sys"}
}

func (d *MysqlDialect) Placeholder(index int) string {
	return "?"
}
