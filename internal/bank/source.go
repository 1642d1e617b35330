// Package bank holds the bank transaction sources and the registry that maps
// club accounts to them.
package bank

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"club-recon/internal/config"
	"club-recon/internal/domain"
)

// TransactionSource returns raw transactions of one account for a date range.
// Results may overlap with earlier calls.
type TransactionSource interface {
	FetchTransactions(ctx context.Context, accountRef string, from, to time.Time) ([]domain.RawRecord, error)
}

// Account is a club bank account known to the registry
type Account struct {
	Ref      string
	ClubID   int64
	Provider string
}

// Registry is built once at startup and only read afterwards.
type Registry struct {
	sources  map[string]TransactionSource
	accounts map[string]Account
}

// NewRegistry builds sources for every configured provider.
func NewRegistry(cfg *config.ProvidersConfig, loc *time.Location) (*Registry, error) {
	r := &Registry{
		sources:  make(map[string]TransactionSource, len(cfg.Providers)),
		accounts: make(map[string]Account, len(cfg.Accounts)),
	}

	for _, p := range cfg.Providers {
		switch p.Kind {
		case "csv":
			r.sources[p.Code] = NewCSVSource(p.Directory, loc)
		case "http":
			apiKey := ""
			if p.APIKeyEnv != "" {
				apiKey = os.Getenv(p.APIKeyEnv)
			}
			r.sources[p.Code] = NewHTTPSource(p.BaseURL, apiKey, nil)
		default:
			return nil, fmt.Errorf("provider %q: unknown kind %q", p.Code, p.Kind)
		}
	}

	for _, a := range cfg.Accounts {
		if _, ok := r.sources[a.Provider]; !ok {
			return nil, fmt.Errorf("account %q: %w %q", a.AccountRef, domain.ErrUnknownProvider, a.Provider)
		}
		r.accounts[a.AccountRef] = Account{Ref: a.AccountRef, ClubID: a.ClubID, Provider: a.Provider}
	}

	return r, nil
}

// NewStaticRegistry builds a registry from already constructed sources.
func NewStaticRegistry(sources map[string]TransactionSource, accounts []Account) *Registry {
	r := &Registry{
		sources:  make(map[string]TransactionSource, len(sources)),
		accounts: make(map[string]Account, len(accounts)),
	}
	for code, s := range sources {
		r.sources[code] = s
	}
	for _, a := range accounts {
		r.accounts[a.Ref] = a
	}
	return r
}

// Resolve returns the account and its source.
func (r *Registry) Resolve(accountRef string) (Account, TransactionSource, error) {
	account, ok := r.accounts[accountRef]
	if !ok {
		return Account{}, nil, fmt.Errorf("account %q: %w", accountRef, domain.ErrNotFound)
	}
	source, ok := r.sources[account.Provider]
	if !ok {
		return Account{}, nil, fmt.Errorf("account %q: %w %q", accountRef, domain.ErrUnknownProvider, account.Provider)
	}
	return account, source, nil
}

// Accounts lists accounts ordered by club, then reference.
func (r *Registry) Accounts() []Account {
	out := make([]Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ClubID != out[j].ClubID {
			return out[i].ClubID < out[j].ClubID
		}
		return out[i].Ref < out[j].Ref
	})
	return out
}

// AccountsForClub lists the accounts of one club.
func (r *Registry) AccountsForClub(clubID int64) []Account {
	var out []Account
	for _, a := range r.Accounts() {
		if a.ClubID == clubID {
			out = append(out, a)
		}
	}
	return out
}
