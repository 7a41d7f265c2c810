package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"relnorm/internal/service/normalization"
	"relnorm/internal/sqlgen"
)

// fileResult is the outcome of normalizing one input file.
type fileResult struct {
	File   string                `json:"file"`
	Output string                `json:"output,omitempty"`
	SQL    string                `json:"sql,omitempty"`
	Result *normalization.Result `json:"result"`
}

func newNormalizeCmd(s *settings) *cobra.Command {
	var (
		flags     runFlags
		outDir    string
		migration bool
	)

	cmd := &cobra.Command{
		Use:   "normalize FILE...",
		Short: "Normalize files and render SQL scripts",
		Long: "Reads each FILE (.csv, .tsv, .xlsx, .parquet, .json), brings it to first and second " +
			"normal form and writes one SQL script per file. Files are processed concurrently. " +
			"Use --out - to print the SQL instead of writing files.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("out") {
				outDir = s.cfg.OutputDir
			}
			results, err := normalizeAll(cmd, s, &flags, args, outDir, migration)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if getOutputFormat(cmd) == "json" {
				return printJSON(out, results)
			}
			for i, r := range results {
				if i > 0 {
					_, _ = fmt.Fprintln(out)
				}
				printFileResult(out, r)
			}
			return nil
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&outDir, "out", "", "Directory for rendered scripts, or - for stdout (default from OUTPUT_DIR or out)")
	cmd.Flags().BoolVar(&migration, "migration", false, "Render goose migrations instead of plain scripts")

	return cmd
}

// normalizeAll runs every file on its own goroutine. The first failure
// cancels the rest.
func normalizeAll(cmd *cobra.Command, s *settings, flags *runFlags, paths []string, outDir string, migration bool) ([]fileResult, error) {
	names := uniqueNames(paths)
	version := time.Now().UTC()
	results := make([]fileResult, len(paths))
	toStdout := outDir == "-"

	if !toStdout {
		if err := os.MkdirAll(outDir, 0o750); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			res, err := normalizeFile(ctx, s, flags, path)
			if err != nil {
				return err
			}

			var sql, file string
			if migration {
				sql, err = sqlgen.Migration(res.Relations)
				file = fmt.Sprintf("%s_%s.sql", version.Add(time.Duration(i)*time.Second).Format("20060102150405"), names[i])
			} else {
				sql, err = sqlgen.Script(res.Relations)
				file = names[i] + ".sql"
			}
			if err != nil {
				return fmt.Errorf("render %s: %w", path, err)
			}

			r := fileResult{File: path, Result: res}
			if toStdout {
				r.SQL = sql
			} else {
				r.Output = filepath.Join(outDir, file)
				if err := os.WriteFile(r.Output, []byte(sql), 0o600); err != nil {
					return fmt.Errorf("write %s: %w", r.Output, err)
				}
				s.logger.Info("wrote script", "source", path, "path", r.Output, "outcome", res.Outcome)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func printFileResult(w io.Writer, r fileResult) {
	res := r.Result
	_, _ = fmt.Fprintf(w, "%s: %s\n", r.File, res.Outcome)
	if res.SelectedKey.Len() > 0 {
		_, _ = fmt.Fprintf(w, "key: %s\n", res.SelectedKey)
	}
	if len(res.Relations) > 0 {
		printTable(w, []string{"relation", "primary key", "foreign keys", "rows"}, relationRows(res.Relations))
	}
	for _, warn := range res.Warnings {
		_, _ = fmt.Fprintf(w, "warning: %s\n", warn)
	}
	if r.Output != "" {
		_, _ = fmt.Fprintf(w, "wrote %s\n", r.Output)
	}
	if r.SQL != "" {
		_, _ = fmt.Fprint(w, r.SQL)
	}
}
