package schema

import "fmt"

// CatalogError is a failed read against catalog metadata.
// Table is the zero value for catalog-wide operations such as listing.
type CatalogError struct {
	Table TableRef
	Op    string // "list_tables", "has_column", "count_rows"
	Cause error
}

func (e *CatalogError) Error() string {
	if e.Table == (TableRef{}) {
		return fmt.Sprintf("catalog error [op=%s]: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("catalog error [op=%s, table=%s]: %v", e.Op, e.Table, e.Cause)
}

func (e *CatalogError) Unwrap() error {
	return e.Cause
}
