package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"relnorm/internal/db"
)

func newRunsCmd(_ *settings) *cobra.Command {
	var sqlitePath string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List normalization runs applied to a SQLite database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := db.OpenSQLite(cmd.Context(), sqlitePath, db.ModeRead, 1)
			if err != nil {
				return err
			}
			defer conn.Close() //nolint:errcheck

			runs, err := db.ListRuns(cmd.Context(), conn)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if getOutputFormat(cmd) == "json" {
				if runs == nil {
					runs = []db.RunRecord{}
				}
				return printJSON(out, runs)
			}
			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				rows = append(rows, []string{
					r.ID, r.Source, r.Prefix, r.Outcome,
					fmt.Sprint(r.Relations), fmt.Sprint(r.Warnings), r.AppliedAt,
				})
			}
			printTable(out, []string{"id", "source", "prefix", "outcome", "relations", "warnings", "applied at"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&sqlitePath, "sqlite", "", "SQLite database file (required)")
	_ = cmd.MarkFlagRequired("sqlite")

	return cmd
}
