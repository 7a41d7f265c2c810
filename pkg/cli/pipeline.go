package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"github.com/spf13/pflag"

	"relnorm/internal/domain"
	"relnorm/internal/heuristic"
	"relnorm/internal/ingest"
	"relnorm/internal/service/normalization"
)

// runFlags are the per-command knobs shared by normalize, keys and apply.
type runFlags struct {
	prefix    string
	delimiter string
	rules     []string
	maxKey    int
	useDuckDB bool
}

func (f *runFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.prefix, "prefix", "", "Table name prefix (default from TABLE_PREFIX or EXCEL_DATA)")
	fs.StringVar(&f.delimiter, "delimiter", "", "Multi-value cell delimiter (default from MULTI_VALUE_DELIMITER or ',')")
	fs.StringSliceVar(&f.rules, "heuristics", nil, "Heuristic rules to apply: "+strings.Join(heuristic.Default().Names(), ", "))
	fs.IntVar(&f.maxKey, "max-key-attributes", -1, "Skip key search above this many attributes (0 = unlimited)")
	fs.BoolVar(&f.useDuckDB, "duckdb-reader", false, "Read .csv and .tsv input through DuckDB")
}

// options merges flags over the resolved configuration.
func (f *runFlags) options(s *settings) (normalization.Options, error) {
	opts := normalization.Options{
		Prefix:           s.cfg.TablePrefix,
		Delimiter:        s.cfg.MultiValueDelimiter,
		MaxKeyAttributes: s.cfg.MaxKeyAttributes,
	}
	if f.prefix != "" {
		opts.Prefix = f.prefix
	}
	if f.delimiter != "" {
		opts.Delimiter = f.delimiter
	}
	if f.maxKey >= 0 {
		opts.MaxKeyAttributes = f.maxKey
	}

	names := s.cfg.Heuristics
	if len(f.rules) > 0 {
		names = f.rules
	}
	rules, err := heuristic.ByName(names...)
	if err != nil {
		return normalization.Options{}, err
	}
	opts.Rules = rules
	return opts, nil
}

func (f *runFlags) readOptions(s *settings) ingest.Options {
	return ingest.Options{Delimiter: s.cfg.CSVDelimiter, UseDuckDB: f.useDuckDB}
}

// normalizeFile reads path and runs the engine over it.
func normalizeFile(ctx context.Context, s *settings, f *runFlags, path string) (*normalization.Result, error) {
	opts, err := f.options(s)
	if err != nil {
		return nil, err
	}
	raw, err := ingest.Open(ctx, path, f.readOptions(s))
	if err != nil {
		return nil, err
	}
	s.logger.Debug("read source", "path", path, "rows", len(raw))

	res, err := normalization.NewService(s.logger.With("source", path)).Run(ctx, raw, opts)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", path, err)
	}
	return res, nil
}

// scriptName returns a file-system safe base name for path's rendered SQL.
func scriptName(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name := slug.Make(base)
	if name == "" {
		name = "relations"
	}
	return name
}

// uniqueNames maps each path to a distinct script name, appending -2, -3
// and so on when two inputs slug to the same name.
func uniqueNames(paths []string) []string {
	out := make([]string, len(paths))
	used := make(map[string]bool, len(paths))
	for i, p := range paths {
		base := scriptName(p)
		name := base
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s-%d", base, n)
		}
		used[name] = true
		out[i] = name
	}
	return out
}

func relationRows(rels []domain.DecomposedRelation) [][]string {
	rows := make([][]string, 0, len(rels))
	for _, r := range rels {
		var fks []string
		for _, fk := range r.SortedForeignKeys() {
			fks = append(fks, fk.Column+" -> "+fk.Reference)
		}
		rows = append(rows, []string{
			r.Name,
			strings.Join(r.PrimaryKeys, ", "),
			strings.Join(fks, ", "),
			fmt.Sprint(len(r.Data)),
		})
	}
	return rows
}
