package cmd

import (
	"fmt"

	"db-retain/internal/engine"
	"db-retain/internal/report"
	"db-retain/internal/schema"
)

// printSummary writes the final report in discovery order.
func printSummary(summary *engine.Summary, records []schema.OutcomeRecord) {
	fmt.Println("\n📊 Summary Report (Discovery Order):")
	for i, r := range records {
		icon := "✓"
		if r.Action == schema.ActionFailed {
			icon = "!"
		}

		detail := ""
		switch {
		case r.Action == schema.ActionFilteredDelete && r.RowsAffected != nil:
			detail = fmt.Sprintf(" - %d rows removed", *r.RowsAffected)
		case r.RowCountBefore != nil:
			detail = fmt.Sprintf(" - %d rows before", *r.RowCountBefore)
		}

		fmt.Printf("[%s] [%02d/%02d] %-40s : %s%s\n",
			icon, i+1, len(records), r.Table.String(), report.ColorAction(r.Action), detail)
		if r.ErrorDetail != "" {
			fmt.Printf("    └ Error: %s\n", r.ErrorDetail)
		}
	}
	fmt.Println("--------------------------------------------------")

	for _, a := range schema.AllActions {
		fmt.Printf("%-15s : %d\n", a.String(), summary.Counts[a])
	}
	mode := "EXECUTE"
	if summary.DryRun {
		mode = "PRINT ONLY"
	}
	status := "Done"
	if summary.Cancelled {
		status = fmt.Sprintf("Interrupted after %d/%d tables", summary.Processed, summary.Tables)
	}
	fmt.Printf("%s! Mode: %s, Run: %s, Time Elapsed: %s\n",
		status, mode, summary.RunID, summary.Finished.Sub(summary.Started))
}
