package report

import (
	"strconv"

	"db-retain/internal/schema"
)

// header is shared by every tabular sink.
var header = []string{
	"Schema", "Table", "Action", "HasFilterColumn", "RowCountBefore",
	"RowsAffected", "Executed", "Statement", "Error", "DurationMs",
}

// recordToRow flattens a record. Unknown tri-state values become empty cells.
func recordToRow(r schema.OutcomeRecord) []string {
	return []string{
		r.Table.Schema,
		r.Table.Name,
		r.Action.String(),
		formatBool(r.HasFilterColumn),
		formatInt(r.RowCountBefore),
		formatInt(r.RowsAffected),
		strconv.FormatBool(r.Executed),
		r.Statement,
		r.ErrorDetail,
		strconv.FormatInt(r.Duration.Milliseconds(), 10),
	}
}

func formatBool(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}

func formatInt(n *int64) string {
	if n == nil {
		return ""
	}
	return strconv.FormatInt(*n, 10)
}
