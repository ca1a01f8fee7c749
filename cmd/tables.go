package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"db-retain/internal/schema"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the tables a retention run would visit",
	RunE: func(cmd *cobra.Command, args []string) error {
		forced := true
		cfg, err := loadRunConfig(viper.GetViper(), runOverrides{dryRun: &forced})
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		db, err := openDB(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		catalog := schema.NewIntrospector(db, cfg.Dialect, cfg.ExcludeSchemas, logger)
		tables, err := catalog.ListBaseTables(ctx)
		if err != nil {
			return err
		}

		out := tablewriter.NewWriter(os.Stdout)
		out.Header("#", "Identifier", "Exception", "Has "+cfg.Policy.FilterColumn)
		for i, t := range tables {
			quoted := cfg.Dialect.Quote(t.Schema, t.Name)
			excepted := cfg.Exceptions.Contains(quoted)

			has := "-"
			if !excepted {
				ok, err := catalog.HasColumn(ctx, t, cfg.Policy.FilterColumn)
				switch {
				case err != nil:
					has = "error: " + err.Error()
				case ok:
					has = "yes"
				default:
					has = "no"
				}
			}
			if err := out.Append([]string{strconv.Itoa(i + 1), quoted, strconv.FormatBool(excepted), has}); err != nil {
				return err
			}
		}
		if err := out.Render(); err != nil {
			return err
		}
		fmt.Printf("🦅 %d tables in %s\n", len(tables), describe(cfg))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(tablesCmd)
}
