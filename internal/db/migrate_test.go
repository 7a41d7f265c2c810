package db

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const courseMigration = `-- +goose Up
-- +goose StatementBegin
CREATE TABLE UNI_COURSE_DETAILS (
    COURSE VARCHAR(255) NOT NULL,
    COURSEFEE INTEGER,
    CONSTRAINT PK_UNI_COURSE_DETAILS PRIMARY KEY (COURSE)
);
-- +goose StatementEnd
-- +goose StatementBegin
INSERT INTO UNI_COURSE_DETAILS (COURSE, COURSEFEE)
VALUES ('Math', 500);
-- +goose StatementEnd
-- +goose StatementBegin
CREATE TABLE UNI_MAINRELATION (
    COURSE VARCHAR(255) NOT NULL,
    STUDENT VARCHAR(255) NOT NULL,
    CONSTRAINT PK_UNI_MAINRELATION PRIMARY KEY (COURSE, STUDENT),
    CONSTRAINT FK_UNI_MAINRELATION_COURSE FOREIGN KEY (COURSE) REFERENCES UNI_COURSE_DETAILS(COURSE)
);
-- +goose StatementEnd
-- +goose StatementBegin
INSERT INTO UNI_MAINRELATION (COURSE, STUDENT)
VALUES ('Math', 'a;
b');
-- +goose StatementEnd

-- +goose Down
DROP TABLE IF EXISTS UNI_MAINRELATION;
DROP TABLE IF EXISTS UNI_COURSE_DETAILS;
`

func TestRunMigrations_CreatesRunsTable(t *testing.T) {
	db := OpenTestSQLite(t)

	var name string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'relnorm_runs'").Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "relnorm_runs", name)

	require.NoError(t, RunMigrations(t.Context(), db), "migrations are idempotent")
}

func TestApplyMigrations(t *testing.T) {
	ctx := context.Background()
	db := OpenTestSQLite(t)

	fsys := fstest.MapFS{
		"20260101000000_uni.sql": &fstest.MapFile{Data: []byte(courseMigration)},
	}

	applied, err := ApplyMigrations(ctx, db, fsys)
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, int64(20260101000000), applied[0].Version)

	counts, err := CountRows(ctx, db, []string{"UNI_COURSE_DETAILS", "UNI_MAINRELATION"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"UNI_COURSE_DETAILS": 1, "UNI_MAINRELATION": 1}, counts)

	var student string
	require.NoError(t, db.QueryRow("SELECT STUDENT FROM UNI_MAINRELATION").Scan(&student))
	assert.Equal(t, "a;\nb", student)

	again, err := ApplyMigrations(ctx, db, fsys)
	require.NoError(t, err)
	assert.Empty(t, again, "already applied migrations are skipped")
}

func TestRecordAndListRuns(t *testing.T) {
	ctx := context.Background()
	db := OpenTestSQLite(t)

	require.NoError(t, RecordRun(ctx, db, RunRecord{
		ID: "run-1", Source: "courses.csv", Prefix: "UNI", Outcome: "decomposed", Relations: 2,
	}))
	require.NoError(t, RecordRun(ctx, db, RunRecord{
		ID: "run-2", Source: "dupes.csv", Prefix: "X", Outcome: "fallback", Relations: 1, Warnings: 1,
	}))

	runs, err := ListRuns(ctx, db)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, 1, runs[0].Warnings)
	assert.NotEmpty(t, runs[0].AppliedAt)

	err = RecordRun(ctx, db, RunRecord{ID: "run-1", Source: "x", Prefix: "x", Outcome: "x"})
	require.Error(t, err)
}
