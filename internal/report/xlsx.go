package report

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"db-retain/internal/schema"
)

// SheetName is the worksheet holding the outcome rows.
const SheetName = "Retention"

// XLSXSink writes the records to a single-sheet spreadsheet.
type XLSXSink struct {
	w io.Writer
}

func NewXLSXSink(w io.Writer) *XLSXSink {
	return &XLSXSink{w: w}
}

func (s *XLSXSink) Name() string { return "xlsx" }

func (s *XLSXSink) Write(ctx context.Context, records []schema.OutcomeRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &headerRow); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := xlsxRow(rec)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	return f.Write(s.w)
}

// xlsxRow keeps numbers and booleans typed so the sheet can be filtered and summed.
func xlsxRow(r schema.OutcomeRecord) []interface{} {
	row := []interface{}{
		r.Table.Schema,
		r.Table.Name,
		r.Action.String(),
		"",
		"",
		"",
		r.Executed,
		r.Statement,
		r.ErrorDetail,
		r.Duration.Milliseconds(),
	}
	if r.HasFilterColumn != nil {
		row[3] = *r.HasFilterColumn
	}
	if r.RowCountBefore != nil {
		row[4] = *r.RowCountBefore
	}
	if r.RowsAffected != nil {
		row[5] = *r.RowsAffected
	}
	return row
}
