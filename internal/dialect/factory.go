package dialect

import (
	"fmt"
	"strings"
)

// GetDialect returns the Dialect registered under name.
func GetDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mssql", "sqlserver":
		return &MSSQLDialect{}, nil
	case "postgres", "postgresql":
		return &PostgresDialect{}, nil
	case "mysql", "mariadb":
		return &MysqlDialect{}, nil
	case "oracle":
		return &OracleDialect{}, nil
	case "sqlite", "sqlite3":
		return &SQLiteDialect{}, nil
	case "generic":
		return &GenericDialect{}, nil
	default:
		return nil, fmt.Errorf("unknown dialect %q", name)
	}
}

// ForDriver maps a database/sql driver name to its Dialect.
func ForDriver(driver string) (Dialect, error) {
	switch driver {
	case "sqlserver", "mssql":
		return &MSSQLDialect{}, nil
	case "postgres", "pgx":
		return &PostgresDialect{}, nil
	case "mysql":
		return &MysqlDialect{}, nil
	case "oracle":
		return &OracleDialect{}, nil
	case "sqlite", "sqlite3":
		return &SQLiteDialect{}, nil
	default:
		return nil, fmt.Errorf("no dialect for driver %q", driver)
	}
}

// Ensure interface implementation
var _ Dialect = (*MysqlDialect)(nil)
var _ Dialect = (*PostgresDialect)(nil)
var _ Dialect = (*MSSQLDialect)(nil)
var _ Dialect = (*OracleDialect)(nil)
var _ Dialect = (*SQLiteDialect)(nil)
var _ Dialect = (*GenericDialect)(nil)
