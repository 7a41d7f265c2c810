package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newKeysCmd(s *settings) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "keys FILE",
		Short: "Show the candidate keys of a file after first normal form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := normalizeFile(cmd.Context(), s, &flags, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if getOutputFormat(cmd) == "json" {
				return printJSON(out, map[string]any{
					"file":          args[0],
					"rows":          len(res.FirstNF),
					"candidateKeys": res.CandidateKeys,
					"selectedKey":   res.SelectedKey,
					"warnings":      res.Warnings,
				})
			}

			rows := make([][]string, 0, len(res.CandidateKeys))
			for _, k := range res.CandidateKeys {
				selected := ""
				if k.Equal(res.SelectedKey) {
					selected = "*"
				}
				rows = append(rows, []string{k.String(), fmt.Sprint(k.Len()), selected})
			}
			printTable(out, []string{"key", "size", "selected"}, rows)
			for _, w := range res.Warnings {
				_, _ = fmt.Fprintf(out, "warning: %s\n", w)
			}
			return nil
		},
	}

	flags.register(cmd.Flags())
	return cmd
}
