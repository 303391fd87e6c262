package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/loykin/occaccept/internal/store/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseJournal runs the same checks against every backend.
func exerciseJournal(t *testing.T, j *Journal) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, j.StartRun(ctx, Run{ID: "run-1", Scenario: "set log level", Feature: "features/log.feature"}, base))
	require.NoError(t, j.StartRun(ctx, Run{ID: "run-2", Scenario: "trusted servers", Feature: "features/trusted.feature"}, base.Add(time.Minute)))

	require.NoError(t, j.RecordCommand(ctx, Command{RunID: "run-1", Command: "log:manage --level 1", ExitCode: 0, Stdout: "Set log level to info"}, base))
	require.NoError(t, j.RecordCommand(ctx, Command{RunID: "run-1", Command: "user:add --password=secret bob", ExitCode: 1, Stderr: "boom"}, base.Add(time.Second)))

	require.NoError(t, j.FinishRun(ctx, "run-1", StatusFailed, "exit code 1", base.Add(2*time.Second)))
	assert.Error(t, j.FinishRun(ctx, "missing", StatusPassed, "", base))

	runs, err := j.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, StatusRunning, runs[0].Status)
	assert.Empty(t, runs[0].FinishedAt)
	assert.Equal(t, StatusFailed, runs[1].Status)
	assert.Equal(t, "exit code 1", runs[1].Error)
	assert.NotEmpty(t, runs[1].FinishedAt)

	limited, err := j.ListRuns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	cmds, err := j.ListCommands(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, cmds, 2)
	assert.Equal(t, "log:manage --level 1", cmds[0].Command)
	assert.Equal(t, "Set log level to info", cmds[0].Stdout)
	assert.Equal(t, 1, cmds[1].ExitCode)
	assert.Equal(t, "boom", cmds[1].Stderr)
	assert.NotContains(t, cmds[1].Command, "secret")

	none, err := j.ListCommands(ctx, "run-2")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestJournal_SQLiteMemory(t *testing.T) {
	j, err := Open(context.Background(), Config{})
	require.NoError(t, err)
	defer func() { _ = j.Close() }()
	assert.Equal(t, TableNames{Runs: "occaccept_runs", Commands: "occaccept_commands"}, j.Tables())
	exerciseJournal(t, j)
}

func TestJournal_SQLiteFileReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	cfg := Config{Driver: "sqlite", SQLite: sqlite.Config{Path: path}}

	j, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, j.StartRun(context.Background(), Run{ID: "a", Scenario: "s", Feature: "f"}, time.Now()))
	require.NoError(t, j.Close())

	j, err = Open(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = j.Close() }()
	runs, err := j.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "a", runs[0].ID)
}

func TestConfig_ResolveTables(t *testing.T) {
	tables, err := Config{TablePrefix: "nightly"}.ResolveTables()
	require.NoError(t, err)
	assert.Equal(t, TableNames{Runs: "nightly_runs", Commands: "nightly_commands"}, tables)

	tables, err = Config{TablePrefix: "nightly", Tables: TableNames{Runs: "custom"}}.ResolveTables()
	require.NoError(t, err)
	assert.Equal(t, "custom", tables.Runs)
	assert.Equal(t, "nightly_commands", tables.Commands)

	_, err = Config{Tables: TableNames{Runs: "runs; DROP TABLE x"}}.ResolveTables()
	assert.Error(t, err)
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "mysql"})
	assert.ErrorContains(t, err, "unsupported driver")

	_, err = Open(context.Background(), Config{Driver: "postgres"})
	assert.ErrorContains(t, err, "requires dsn or host")
}
