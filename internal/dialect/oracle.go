package dialect

import "fmt"

type OracleDialect struct{}

func (d *OracleDialect) Name() string { return "oracle" }

// Quote keeps the case it is given. Oracle stores unquoted names upper case,
// and ALL_TABLES reports them that way, so the round trip is exact.
func (d *OracleDialect) Quote(schema, table string) string {
	return fmt.Sprintf(`"%s"."%s"`, schema, table)
}

func (d *OracleDialect) DiscardStatement(quotedTable string) (string, error) {
	return fmt.Sprintf("TRUNCATE TABLE %s", quotedTable), nil
}

func (d *OracleDialect) CountStatement(quotedTable string) string {
	return DefaultCountStatement(quotedTable)
}

func (d *OracleDialect) TablesQuery() string {
	// Oracle has no INFORMATION_SCHEMA; ALL_TABLES lists every table the
	// current user can see.
	return `SELECT OWNER, TABLE_NAME FROM ALL_TABLES WHERE NESTED = 'NO' AND SECONDARY = 'N' ORDER BY OWNER, TABLE_NAME`
}

func (d *OracleDialect) ColumnExistsQuery(schema, table, column string) (string, []any) {
	query := fmt.Sprintf(
		"SELECT 1 FROM ALL_TAB_COLUMNS WHERE OWNER = %s AND TABLE_NAME = %s AND COLUMN_NAME = %s",
		d.Placeholder(0), d.Placeholder(1), d.Placeholder(2))
	return query, []any{schema, table, column}
}

func (d *OracleDialect) SystemSchemas() []string {
	return []string{
		"SYS", "SYSTEM", "XDB", "OUTLN", "DBSNMP", "APPQOSSYS", "AUDSYS", "CTXSYS",
		"DVSYS", "GSMADMIN_INTERNAL", "LBACSYS", "MDSYS", "OJVMSYS", "OLAPSYS",
		"ORDDATA", "ORDSYS", "WMSYS", "DBSFWUSER", "REMOTE_SCHEDULER_AGENT",
	}
}

func (d *OracleDialect) Placeholder(index int) string {
	// Oracle uses :1, :2, etc. (1-based index)
	return fmt.Sprintf(":%d", index+1)
}
