package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"club-recon/internal/domain"
)

func memoryEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STORE", "memory")
	t.Setenv("BANK_PROVIDERS_FILE", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("LOG_LEVEL", "error")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestImportCommand(t *testing.T) {
	memoryEnv(t)

	path := filepath.Join(t.TempDir(), "statement.csv")
	csv := "occurred_at,amount,bank_tx_id,narrative\n" +
		"2024-01-05,100.00,T1,Dues\n" +
		"2024-01-05,100.00,T1,Dues\n" +
		"2024-01-06,-20,T2,Bank fee\n" +
		"not-a-date,10,T3,Broken\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	out, err := execute(t, "import", path, "--club", "1", "--account", "ACC-1")
	require.NoError(t, err)

	var summary ImportSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary), out)
	assert.Len(t, summary.Ingest.NewIDs, 2)
	assert.Equal(t, 1, summary.Ingest.Duplicates)
	assert.Len(t, summary.Outcomes, 2)
}

func TestImportCommand_RequiresAccount(t *testing.T) {
	memoryEnv(t)

	_, err := execute(t, "import", "statement.csv", "--club", "1")
	assert.Error(t, err)
}

func TestBalanceCommand(t *testing.T) {
	memoryEnv(t)

	out, err := execute(t, "balance", "--club", "7")
	require.NoError(t, err)

	var balance domain.ClubBalance
	require.NoError(t, json.Unmarshal([]byte(out), &balance), out)
	assert.Equal(t, int64(7), balance.ClubID)
	assert.True(t, balance.Balance.IsZero())
	assert.Equal(t, 0, balance.Entries)
}

func TestSweepCommand(t *testing.T) {
	memoryEnv(t)

	out, err := execute(t, "sweep")
	require.NoError(t, err)
	assert.JSONEq(t, `{"expired":0}`, out)
}

func TestSyncCommand_NeedsTarget(t *testing.T) {
	memoryEnv(t)

	_, err := execute(t, "sync")
	assert.EqualError(t, err, "--club or --all is required")
}

func TestSyncCommand_UnknownAccount(t *testing.T) {
	memoryEnv(t)

	_, err := execute(t, "sync", "--club", "1", "--account", "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMigrateCommand_MemoryStore(t *testing.T) {
	memoryEnv(t)

	_, err := execute(t, "migrate")
	assert.Error(t, err)
}
