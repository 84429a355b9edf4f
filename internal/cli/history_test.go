package cli

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ms584/Q-Net/internal/executor"
	"github.com/ms584/Q-Net/internal/store"
	"github.com/ms584/Q-Net/internal/teleport"
)

// seedHistory records a basis run and a superposition run.
func seedHistory(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	runner := teleport.NewRunner(executor.NewIdeal(),
		teleport.WithIDGenerator(teleport.NewFixedGenerator("run-a", "run-b")),
		teleport.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		teleport.WithSinks(st),
	)
	_, err = runner.Run(context.Background(), teleport.Request{Name: "one", Preparation: "1"})
	require.NoError(t, err)
	_, err = runner.Run(context.Background(), teleport.Request{Preparation: "+", Shots: 64})
	require.NoError(t, err)
	return dbPath
}

func TestHistory_List(t *testing.T) {
	dbPath := seedHistory(t)

	out, err := execute(t, NewHistoryCommand(textOpts()), "--db", dbPath, "--style", "ascii")
	require.NoError(t, err)
	assert.Contains(t, out, "run-a")
	assert.Contains(t, out, "run-b")
	assert.Contains(t, out, "100.00%")
	assert.Contains(t, out, "0:32 1:32")
	assert.Contains(t, out, "2 run(s)")
}

func TestHistory_FilterJSON(t *testing.T) {
	dbPath := seedHistory(t)

	out, err := execute(t, NewHistoryCommand(jsonOpts()), "--db", dbPath, "--payload", "+")
	require.NoError(t, err)

	var entries []HistoryEntry
	decodeResponse(t, out, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, "run-b", entries[0].ID)
	assert.Equal(t, int64(2), entries[0].Seq)
	assert.Equal(t, int64(64), entries[0].Shots)
	assert.Nil(t, entries[0].Verified)
}

func TestHistory_Show(t *testing.T) {
	dbPath := seedHistory(t)

	out, err := execute(t, NewHistoryCommand(textOpts()), "--db", dbPath, "--id", "run-a")
	require.NoError(t, err)
	assert.Contains(t, out, "Run run-a (#1)")
	assert.Contains(t, out, "Name: one")
	assert.Contains(t, out, "Success rate (destination == 1): 100.00% (1024/1024)")
	assert.Contains(t, out, "Recorded by 0.1.0 (IR v1)")
	assert.NotContains(t, out, "✗")
}

func TestHistory_ShowUnknown(t *testing.T) {
	dbPath := seedHistory(t)

	_, err := execute(t, NewHistoryCommand(textOpts()), "--db", dbPath, "--id", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, store.ErrRunNotFound)
}

func TestHistory_Verify(t *testing.T) {
	dbPath := seedHistory(t)

	out, err := execute(t, NewHistoryCommand(textOpts()), "--db", dbPath, "--verify")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ 2 run(s) verified")

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE runs SET successes = 1000 WHERE id = 'run-a'`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	out, err = execute(t, NewHistoryCommand(jsonOpts()), "--db", dbPath, "--verify")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var entries []HistoryEntry
	decodeResponse(t, out, &entries)
	require.Len(t, entries, 2)
	require.NotNil(t, entries[0].Verified)
	assert.False(t, *entries[0].Verified)
	assert.Contains(t, entries[0].Problem, "successes recomputed as 1024")
	assert.True(t, *entries[1].Verified)
}

func TestHistory_MissingDatabaseFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "absent.db")

	out, err := execute(t, NewHistoryCommand(jsonOpts()), "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "database not found")
	assert.Equal(t, "error", decodeResponse(t, out, nil).Status)

	assert.NoFileExists(t, dbPath)
}

func TestHistory_NoDatabase(t *testing.T) {
	t.Setenv("QNET_DB", "")
	_, err := execute(t, NewHistoryCommand(textOpts()))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "no database")
}
