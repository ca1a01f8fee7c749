package dialect

import (
	"fmt"
	"strings"
)

// informationSchemaTables lists base tables from the standard catalog views.
const informationSchemaTables = `SELECT TABLE_SCHEMA, TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_SCHEMA, TABLE_NAME`

// informationSchemaColumnExists builds the column lookup against INFORMATION_SCHEMA.COLUMNS
// using the dialect's placeholder style.
func informationSchemaColumnExists(placeholder func(int) string, schema, table, column string) (string, []any) {
	query := fmt.Sprintf(
		"SELECT 1 FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_SCHEMA = %s AND TABLE_NAME = %s AND COLUMN_NAME = %s",
		placeholder(0), placeholder(1), placeholder(2))
	return query, []any{schema, table, column}
}

// DefaultCountStatement returns a row count over an already-quoted table.
func DefaultCountStatement(quotedTable string) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTable)
}

// IsSystemSchema reports whether schema is one of d's internal schemas.
// Comparison is case-insensitive; catalogs disagree on the case they report.
func IsSystemSchema(d Dialect, schema string) bool {
	for _, s := range d.SystemSchemas() {
		if strings.EqualFold(s, schema) {
			return true
		}
	}
	return false
}
