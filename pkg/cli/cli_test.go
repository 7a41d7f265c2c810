package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const coursesCSV = "Course,Student,CourseFee\nMath,\"Alex,Sam\",500\nArt,Alex,300\n"

// isolate points HOME at a temp dir and clears every variable the CLI
// reads, so tests see built-in defaults.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{
		"LOG_LEVEL", "LOG_FORMAT", "ENV", "TABLE_PREFIX", "OUTPUT_DIR", "CSV_DELIMITER",
		"MULTI_VALUE_DELIMITER", "HEURISTICS", "MAX_KEY_ATTRIBUTES", "RELNORM_OUTPUT", "RELNORM_CONFIG",
	} {
		t.Setenv(k, "")
	}
	t.Chdir(home)
	return home
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNormalize_WritesScripts(t *testing.T) {
	home := isolate(t)
	in := writeInput(t, home, "Course List.csv", coursesCSV)
	outDir := filepath.Join(home, "sql")

	stdout, err := runCLI(t, "normalize", in, "--prefix", "UNI", "--out", outDir)
	require.NoError(t, err)

	assert.Contains(t, stdout, "decomposed")
	assert.Contains(t, stdout, "UNI_COURSE_DETAILS")

	script, err := os.ReadFile(filepath.Join(outDir, "course-list.sql"))
	require.NoError(t, err)
	s := string(script)
	assert.Contains(t, s, "CREATE TABLE UNI_COURSE_DETAILS (")
	assert.Contains(t, s, "CONSTRAINT FK_UNI_MAINRELATION_COURSE FOREIGN KEY (COURSE) REFERENCES UNI_COURSE_DETAILS(COURSE)")
	assert.Contains(t, s, "VALUES ('Math', 'Sam');")
	assert.Less(t, strings.Index(s, "UNI_COURSE_DETAILS ("), strings.Index(s, "UNI_MAINRELATION ("))
}

func TestNormalize_ConcurrentFilesJSON(t *testing.T) {
	home := isolate(t)
	a := writeInput(t, home, "a.csv", coursesCSV)
	b := writeInput(t, home, "b.csv", "ID,Name\n1,x\n1,x\n")
	empty := writeInput(t, home, "c.csv", "ID,Name\n")

	stdout, err := runCLI(t, "normalize", a, b, empty, "--out", "-", "-o", "json")
	require.NoError(t, err)

	var results []struct {
		File   string `json:"file"`
		SQL    string `json:"sql"`
		Result struct {
			Outcome  string `json:"outcome"`
			Warnings []struct {
				Code string `json:"code"`
			} `json:"warnings"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &results))
	require.Len(t, results, 3)

	assert.Equal(t, a, results[0].File, "results keep argument order")
	assert.Equal(t, "decomposed", results[0].Result.Outcome)

	assert.Equal(t, "fallback", results[1].Result.Outcome)
	require.Len(t, results[1].Result.Warnings, 1)
	assert.Equal(t, "no_candidate_key", results[1].Result.Warnings[0].Code)
	assert.Contains(t, results[1].SQL, "CREATE TABLE EXCEL_DATA_MAINRELATION")

	assert.Equal(t, "empty", results[2].Result.Outcome)
	assert.Equal(t, "-- No data to generate SQL for.\n", results[2].SQL)
}

func TestNormalize_Migration(t *testing.T) {
	home := isolate(t)
	in := writeInput(t, home, "courses.csv", coursesCSV)
	outDir := filepath.Join(home, "migrations")

	_, err := runCLI(t, "normalize", in, "--migration", "--out", outDir)
	require.NoError(t, err)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Regexp(t, `^\d{14}_courses\.sql$`, entries[0].Name())

	data, err := os.ReadFile(filepath.Join(outDir, entries[0].Name()))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "-- +goose Up\n"))
}

func TestNormalize_Errors(t *testing.T) {
	home := isolate(t)
	in := writeInput(t, home, "courses.csv", coursesCSV)

	tests := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{name: "no_args", args: []string{"normalize"}, wantMsg: "requires at least 1 arg"},
		{name: "missing_file", args: []string{"normalize", filepath.Join(home, "nope.csv"), "--out", "-"}, wantMsg: "no such file"},
		{name: "unknown_rule", args: []string{"normalize", in, "--heuristics", "bogus", "--out", "-"}, wantMsg: "bogus"},
		{name: "bad_output", args: []string{"normalize", in, "-o", "yaml"}, wantMsg: "unsupported output format"},
		{name: "bad_log_format", args: []string{"normalize", in, "--log-format", "xml"}, wantMsg: "unsupported log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestKeys(t *testing.T) {
	home := isolate(t)
	in := writeInput(t, home, "courses.csv", coursesCSV)

	stdout, err := runCLI(t, "keys", in, "-o", "json")
	require.NoError(t, err)

	var got struct {
		Rows          int        `json:"rows"`
		CandidateKeys [][]string `json:"candidateKeys"`
		SelectedKey   []string   `json:"selectedKey"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, 3, got.Rows)
	assert.Equal(t, [][]string{{"Course", "Student"}, {"Student", "CourseFee"}}, got.CandidateKeys)
	assert.Equal(t, []string{"Course", "Student"}, got.SelectedKey)

	stdout, err = runCLI(t, "keys", in)
	require.NoError(t, err)
	assert.Contains(t, stdout, "KEY")
	assert.Contains(t, stdout, "[Course, Student]")
}

func TestApplyAndRuns_SQLite(t *testing.T) {
	home := isolate(t)
	in := writeInput(t, home, "courses.csv", coursesCSV)
	dbPath := filepath.Join(home, "out.sqlite")

	stdout, err := runCLI(t, "apply", in, "--sqlite", dbPath, "--prefix", "UNI", "-o", "json")
	require.NoError(t, err)

	var applied struct {
		Target string           `json:"target"`
		RunID  string           `json:"runId"`
		Rows   map[string]int64 `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &applied))
	assert.Equal(t, "sqlite", applied.Target)
	assert.Equal(t, map[string]int64{"UNI_COURSE_DETAILS": 2, "UNI_MAINRELATION": 3}, applied.Rows)

	stdout, err = runCLI(t, "runs", "--sqlite", dbPath, "-o", "json")
	require.NoError(t, err)
	var runs []struct {
		ID      string `json:"id"`
		Prefix  string `json:"prefix"`
		Outcome string `json:"outcome"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, applied.RunID, runs[0].ID)
	assert.Equal(t, "UNI", runs[0].Prefix)
	assert.Equal(t, "decomposed", runs[0].Outcome)
}

func TestApply_DuckDB(t *testing.T) {
	home := isolate(t)
	in := writeInput(t, home, "courses.csv", coursesCSV)

	stdout, err := runCLI(t, "apply", in, "--duckdb", filepath.Join(home, "out.duckdb"), "--prefix", "UNI")
	require.NoError(t, err)
	assert.Contains(t, stdout, "UNI_COURSE_DETAILS")
	assert.Contains(t, stdout, "UNI_MAINRELATION")
}

func TestApply_RequiresOneTarget(t *testing.T) {
	home := isolate(t)
	in := writeInput(t, home, "courses.csv", coursesCSV)

	for _, args := range [][]string{
		{"apply", in},
		{"apply", in, "--sqlite", "a.sqlite", "--duckdb", "b.duckdb"},
	} {
		_, err := runCLI(t, args...)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exactly one of --sqlite or --duckdb")
	}
}

func TestConfigProfiles(t *testing.T) {
	home := isolate(t)

	_, err := runCLI(t, "config", "set", "--name", "uni", "--prefix", "UNI", "--heuristics", "currency")
	require.NoError(t, err)

	_, err = runCLI(t, "config", "use-profile", "uni")
	require.NoError(t, err)

	stdout, err := runCLI(t, "config", "view", "-o", "json")
	require.NoError(t, err)
	var view effectiveConfig
	require.NoError(t, json.Unmarshal([]byte(stdout), &view))
	assert.Equal(t, "uni", view.CurrentProfile)
	assert.Equal(t, "UNI", view.Profiles["uni"].Prefix)
	assert.Equal(t, "UNI", view.Effective["table-prefix"])

	in := writeInput(t, home, "courses.csv", coursesCSV)
	stdout, err = runCLI(t, "normalize", in, "--out", "-")
	require.NoError(t, err)
	assert.Contains(t, stdout, "CREATE TABLE UNI_COURSE_DETAILS", "active profile supplies the prefix")

	_, err = runCLI(t, "config", "use-profile", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `profile "missing" not found`)

	_, err = runCLI(t, "config", "set", "--name", "bad", "--heuristics", "bogus")
	require.Error(t, err)
}

func TestConfigFile_OverrideAndMalformed(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "alt", "relnorm.yaml")
	t.Setenv("RELNORM_CONFIG", path)

	_, err := runCLI(t, "config", "set", "--name", "ops", "--prefix", "OPS")
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.NoFileExists(t, filepath.Join(home, ".relnorm", "config.yaml"))

	in := writeInput(t, home, "courses.csv", coursesCSV)
	stdout, err := runCLI(t, "normalize", in, "--out", "-", "--profile", "ops")
	require.NoError(t, err)
	assert.Contains(t, stdout, "CREATE TABLE OPS_COURSE_DETAILS", "--profile selects a non-current profile")

	require.NoError(t, os.WriteFile(path, []byte("profiles: [unclosed\n"), 0o600))
	_, err = runCLI(t, "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestZeroArgCommandsRejectUnexpectedPositionalArgs(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "version", args: []string{"version", "extra"}},
		{name: "config view", args: []string{"config", "view", "extra"}},
		{name: "config set", args: []string{"config", "set", "--name", "p", "extra"}},
		{name: "runs", args: []string{"runs", "--sqlite", "x.sqlite", "extra"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runCLI(t, tc.args...)
			require.Error(t, err)
			require.Contains(t, err.Error(), "unknown command \"extra\"")
		})
	}
}

func TestVersion(t *testing.T) {
	isolate(t)

	stdout, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "relnorm version dev (commit: none)\n", stdout)

	stdout, err = runCLI(t, "version", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"dev","commit":"none"}`, stdout)
}

func TestUniqueNames(t *testing.T) {
	got := uniqueNames([]string{"data/Sales 2024.csv", "other/sales-2024.tsv", "x/!!!.csv", "a.b.json"})
	assert.Equal(t, []string{"sales-2024", "sales-2024-2", "relations", "a-b"}, got)
}

func TestCompletion(t *testing.T) {
	isolate(t)

	stdout, err := runCLI(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, stdout, "relnorm")

	_, err = runCLI(t, "completion", "tcsh")
	require.Error(t, err)
}
