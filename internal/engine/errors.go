package engine

import (
	"fmt"

	"db-retain/internal/schema"
)

// ExecutionError is a failed retention statement. The statement's transaction
// was rolled back; the run continues with the next table.
type ExecutionError struct {
	Table     schema.TableRef
	Statement string
	Cause     error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution error [table=%s]: %v", e.Table, e.Cause)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}
