package engine

import (
	"context"
	"fmt"

	"db-retain/internal/config"
	"db-retain/internal/dialect"
	"db-retain/internal/schema"
)

// ColumnChecker is the part of the catalog a decision needs.
type ColumnChecker interface {
	HasColumn(ctx context.Context, table schema.TableRef, column string) (bool, error)
}

// Decision is the classification of one table and the statement that carries it out.
type Decision struct {
	Action    schema.ActionKind
	Quoted    string
	Statement string
	HasColumn *bool // nil when never checked
	Err       error // set when Action is ActionFailed
}

// Decide classifies table. First match wins:
//  1. quoted identifier in the exception set -> Skipped, nothing else is looked up
//  2. filter column present -> FilteredDelete
//  3. filter column absent -> FullDiscard with the dialect's discard statement
//
// A failed column lookup, or a dialect without a discard statement, yields Failed.
func Decide(ctx context.Context, table schema.TableRef, policy config.RetentionPolicy,
	exceptions config.ExceptionSet, d dialect.Dialect, cols ColumnChecker) Decision {

	quoted := d.Quote(table.Schema, table.Name)
	if exceptions.Contains(quoted) {
		return Decision{Action: schema.ActionSkipped, Quoted: quoted}
	}

	has, err := cols.HasColumn(ctx, table, policy.FilterColumn)
	if err != nil {
		return Decision{Action: schema.ActionFailed, Quoted: quoted, Err: err}
	}

	if has {
		return Decision{
			Action:    schema.ActionFilteredDelete,
			Quoted:    quoted,
			Statement: FilteredDeleteStatement(quoted, policy),
			HasColumn: schema.Bool(true),
		}
	}

	stmt, err := d.DiscardStatement(quoted)
	if err != nil {
		return Decision{Action: schema.ActionFailed, Quoted: quoted, HasColumn: schema.Bool(false), Err: err}
	}
	return Decision{
		Action:    schema.ActionFullDiscard,
		Quoted:    quoted,
		Statement: stmt,
		HasColumn: schema.Bool(false),
	}
}

// FilteredDeleteStatement removes every row not equal to the keep value.
// The IS NULL branch is required: NULL <> v is not true, so without it NULL
// rows would survive.
func FilteredDeleteStatement(quoted string, policy config.RetentionPolicy) string {
	col := policy.FilterColumn
	return fmt.Sprintf("DELETE FROM %s WHERE %s <> %s OR %s IS NULL", quoted, col, policy.KeepValue.SQL(), col)
}
