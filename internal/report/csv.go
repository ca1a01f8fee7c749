package report

import (
	"context"
	"encoding/csv"
	"io"

	"db-retain/internal/schema"
)

// CSVSink writes one row per table with a header row.
type CSVSink struct {
	w io.Writer
}

func NewCSVSink(w io.Writer) *CSVSink {
	return &CSVSink{w: w}
}

func (s *CSVSink) Name() string { return "csv" }

func (s *CSVSink) Write(ctx context.Context, records []schema.OutcomeRecord) error {
	writer := csv.NewWriter(s.w)

	if err := writer.Write(header); err != nil {
		return err
	}
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writer.Write(recordToRow(rec)); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
