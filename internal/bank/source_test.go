package bank

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"club-recon/internal/config"
	"club-recon/internal/domain"
)

func TestCSVSource_FiltersByAccountAndRange(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("ACC1-2024-01.csv", "occurred_at,amount,narrative\n2024-01-05,10000,KIM\n2024-02-10,500,LATE\n")
	write("ACC1-2024-02.csv", "occurred_at,amount,narrative\n2024-01-20,-300,FEE\n")
	write("ACC2-2024-01.csv", "occurred_at,amount,narrative\n2024-01-05,999,OTHER\n")

	src := NewCSVSource(dir, time.UTC)
	records, err := src.FetchTransactions(context.Background(), "ACC1",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "KIM", records[0].Narrative)
	assert.Equal(t, domain.Withdraw, records[1].Direction)
}

func TestHTTPSource_FetchTransactions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts/ACC1/transactions", r.URL.Path)
		assert.Equal(t, "2024-01-01", r.URL.Query().Get("from"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"transactions":[{"bank_tx_id":"T1","occurred_at":"2024-01-05T10:00:00Z","direction":"DEPOSIT","amount":"10000","narrative":"KIM"}]}`))
	}))
	defer server.Close()

	src := NewHTTPSource(server.URL, "secret", server.Client())
	records, err := src.FetchTransactions(context.Background(), "ACC1",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "T1", records[0].BankTxID)
	assert.Equal(t, "10000", records[0].Amount.String())
}

func TestHTTPSource_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	src := NewHTTPSource(server.URL, "", server.Client())
	_, err := src.FetchTransactions(context.Background(), "ACC1", time.Now().Add(-time.Hour), time.Now())
	assert.Error(t, err)
}

func TestRegistry_Resolve(t *testing.T) {
	cfg := &config.ProvidersConfig{
		Providers: []config.ProviderConfig{
			{Code: "files", Kind: "csv", Directory: t.TempDir()},
		},
		Accounts: []config.AccountConfig{
			{AccountRef: "B", ClubID: 2, Provider: "files"},
			{AccountRef: "A", ClubID: 1, Provider: "files"},
		},
	}

	registry, err := NewRegistry(cfg, time.UTC)
	require.NoError(t, err)

	account, source, err := registry.Resolve("A")
	require.NoError(t, err)
	assert.Equal(t, int64(1), account.ClubID)
	assert.IsType(t, &CSVSource{}, source)

	_, _, err = registry.Resolve("missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	accounts := registry.Accounts()
	require.Len(t, accounts, 2)
	assert.Equal(t, "A", accounts[0].Ref)
	assert.Len(t, registry.AccountsForClub(2), 1)
}
