package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE", "memory")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.App.Store)
	assert.Equal(t, 3, cfg.App.MatchMaxRetries)
	assert.Equal(t, 30*time.Second, cfg.Sync.FetchTimeout)
	assert.Equal(t, 30*24*time.Hour, cfg.Sync.DefaultLookback)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
}

func TestLoad_RejectsUnknownStore(t *testing.T) {
	t.Setenv("STORE", "mongo")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsBadDuration(t *testing.T) {
	t.Setenv("STORE", "memory")
	t.Setenv("BANK_FETCH_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadProviders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "providers.yaml")
	content := `
providers:
  - code: files
    kind: csv
    directory: /var/statements
  - code: openbank
    kind: http
    base_url: https://bank.example.com
    api_key_env: OPENBANK_KEY
accounts:
  - account_ref: "110-123-456789"
    club_id: 7
    provider: files
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadProviders(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Providers, 2)
	require.Len(t, cfg.Accounts, 1)
	assert.Equal(t, int64(7), cfg.Accounts[0].ClubID)
}

func TestLoadProviders_UnknownProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "providers.yaml")
	content := `
providers:
  - code: files
    kind: csv
    directory: /tmp
accounts:
  - account_ref: "A"
    club_id: 1
    provider: nope
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadProviders(path)
	assert.Error(t, err)
}

func TestLoadProviders_EmptyPath(t *testing.T) {
	cfg, err := LoadProviders("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Accounts)
}
