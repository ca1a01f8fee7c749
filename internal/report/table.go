package report

import (
	"context"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"db-retain/internal/schema"
)

var actionColors = map[schema.ActionKind]*color.Color{
	schema.ActionSkipped:        color.New(color.FgCyan),
	schema.ActionFilteredDelete: color.New(color.FgYellow),
	schema.ActionFullDiscard:    color.New(color.FgRed),
	schema.ActionFailed:         color.New(color.FgHiRed, color.Bold),
}

// TableSink renders the records as a console table.
type TableSink struct {
	w     io.Writer
	plain bool
}

// NewTableSink colors action names when stdout is a terminal.
func NewTableSink(w io.Writer) *TableSink {
	return &TableSink{w: w}
}

// NewPlainTableSink never writes color escapes. Use it for files.
func NewPlainTableSink(w io.Writer) *TableSink {
	return &TableSink{w: w, plain: true}
}

func (s *TableSink) Name() string { return "table" }

func (s *TableSink) Write(ctx context.Context, records []schema.OutcomeRecord) error {
	table := tablewriter.NewWriter(s.w)
	table.Header("#", "Table", "Action", "Has Column", "Rows Before", "Statement / Error")

	for i, rec := range records {
		detail := rec.Statement
		if rec.ErrorDetail != "" {
			detail = rec.ErrorDetail
		}
		row := []string{
			strconv.Itoa(i + 1),
			rec.Table.String(),
			s.action(rec.Action),
			formatBool(rec.HasFilterColumn),
			formatInt(rec.RowCountBefore),
			detail,
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func (s *TableSink) action(a schema.ActionKind) string {
	if s.plain {
		return a.String()
	}
	return ColorAction(a)
}

// ColorAction returns the action name colored for terminals. Color is
// disabled automatically when stdout is not a terminal.
func ColorAction(a schema.ActionKind) string {
	if c, ok := actionColors[a]; ok {
		return c.Sprint(a.String())
	}
	return a.String()
}
