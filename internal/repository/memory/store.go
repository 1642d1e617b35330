// Package memory is an in-process implementation of the repositories. It
// enforces the same natural-key uniqueness and version guards as the
// Postgres schema and is used for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"club-recon/internal/domain"
	"club-recon/internal/repository"
)

type Store struct {
	mu sync.Mutex

	now func() time.Time

	transactions map[int64]domain.BankTransaction
	byNaturalKey map[string]int64
	requests     map[int64]domain.PaymentRequest
	entries      []domain.LedgerEntry

	nextTxID    int64
	nextReqID   int64
	nextEntryID int64
}

func NewStore() *Store {
	return &Store{
		now:          time.Now,
		transactions: make(map[int64]domain.BankTransaction),
		byNaturalKey: make(map[string]int64),
		requests:     make(map[int64]domain.PaymentRequest),
	}
}

// Repositories exposes the store through the repository interfaces.
func (s *Store) Repositories() *repository.Store {
	return &repository.Store{
		Transactions: transactions{s},
		Requests:     requests{s},
		Ledger:       ledger{s},
		Matches:      matches{s},
	}
}

func (s *Store) appendEntryLocked(entry *domain.LedgerEntry) error {
	if entry.TransactionID != nil {
		for _, e := range s.entries {
			if e.TransactionID != nil && *e.TransactionID == *entry.TransactionID {
				return fmt.Errorf("ledger entry for transaction %d already exists", *entry.TransactionID)
			}
		}
	}
	if entry.RelatedRequestID != nil {
		if err := s.checkRequestUnattachedLocked(*entry.RelatedRequestID); err != nil {
			return err
		}
	}

	s.nextEntryID++
	entry.ID = s.nextEntryID
	entry.RecordedAt = s.now()
	s.entries = append(s.entries, cloneEntry(*entry))
	return nil
}

func (s *Store) checkRequestUnattachedLocked(requestID int64) error {
	for _, e := range s.entries {
		if e.RelatedRequestID != nil && *e.RelatedRequestID == requestID {
			return fmt.Errorf("%w: request %d already has a ledger entry", domain.ErrVersionConflict, requestID)
		}
	}
	return nil
}

// --- transactions

type transactions struct{ s *Store }

func (r transactions) InsertWithEntry(_ context.Context, t *domain.BankTransaction, entry *domain.LedgerEntry) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byNaturalKey[t.NaturalKey]; exists {
		return false, nil
	}

	now := s.now()
	s.nextTxID++
	t.ID = s.nextTxID
	t.Version = 1
	t.CreatedAt = now
	t.UpdatedAt = now

	txID := t.ID
	entry.TransactionID = &txID
	if err := s.appendEntryLocked(entry); err != nil {
		s.nextTxID--
		return false, err
	}

	s.transactions[t.ID] = cloneTransaction(*t)
	s.byNaturalKey[t.NaturalKey] = t.ID
	return true, nil
}

func (r transactions) GetByID(_ context.Context, id int64) (*domain.BankTransaction, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[id]
	if !ok {
		return nil, fmt.Errorf("transaction %d: %w", id, domain.ErrNotFound)
	}
	t = cloneTransaction(t)
	return &t, nil
}

func (r transactions) GetByNaturalKey(_ context.Context, naturalKey string) (*domain.BankTransaction, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byNaturalKey[naturalKey]
	if !ok {
		return nil, fmt.Errorf("transaction with natural key %q: %w", naturalKey, domain.ErrNotFound)
	}
	t := cloneTransaction(s.transactions[id])
	return &t, nil
}

func (r transactions) GetByIDs(_ context.Context, ids []int64) ([]domain.BankTransaction, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.BankTransaction
	for _, id := range ids {
		if t, ok := s.transactions[id]; ok {
			out = append(out, cloneTransaction(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r transactions) ListByClub(_ context.Context, clubID int64, unmatchedOnly bool) ([]domain.BankTransaction, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.BankTransaction
	for _, t := range s.transactions {
		if t.ClubID != clubID || (unmatchedOnly && t.IsMatched()) {
			continue
		}
		out = append(out, cloneTransaction(t))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.Before(out[j].OccurredAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// --- payment requests

type requests struct{ s *Store }

func (r requests) Create(_ context.Context, req *domain.PaymentRequest) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.nextReqID++
	req.ID = s.nextReqID
	req.Version = 1
	req.CreatedAt = now
	req.UpdatedAt = now
	if req.Status == "" {
		req.Status = domain.StatusPending
	}
	s.requests[req.ID] = cloneRequest(*req)
	return nil
}

// Put stores req with its own id, replacing any request with that id. It
// lets tests lay out fixtures with specific identifiers.
func (s *Store) Put(req domain.PaymentRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Version == 0 {
		req.Version = 1
	}
	if req.Status == "" {
		req.Status = domain.StatusPending
	}
	if req.ID > s.nextReqID {
		s.nextReqID = req.ID
	}
	s.requests[req.ID] = cloneRequest(req)
}

func (r requests) GetByID(_ context.Context, id int64) (*domain.PaymentRequest, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, fmt.Errorf("payment request %d: %w", id, domain.ErrNotFound)
	}
	req = cloneRequest(req)
	return &req, nil
}

func (r requests) ListByClub(_ context.Context, clubID int64, status *domain.RequestStatus) ([]domain.PaymentRequest, error) {
	return r.filter(func(req domain.PaymentRequest) bool {
		return req.ClubID == clubID && (status == nil || req.Status == *status)
	}, func(a, b domain.PaymentRequest) bool {
		if !a.ExpectedDate.Equal(b.ExpectedDate) {
			return a.ExpectedDate.Before(b.ExpectedDate)
		}
		return a.ID < b.ID
	}), nil
}

func (r requests) ListPendingByAmount(_ context.Context, clubID int64, amount decimal.Decimal) ([]domain.PaymentRequest, error) {
	return r.filter(func(req domain.PaymentRequest) bool {
		return req.ClubID == clubID && req.Status == domain.StatusPending && req.ExpectedAmount.Equal(amount)
	}, byID), nil
}

func (r requests) ListDue(_ context.Context, now time.Time) ([]domain.PaymentRequest, error) {
	return r.filter(func(req domain.PaymentRequest) bool {
		return req.IsDue(now)
	}, byID), nil
}

func (r requests) Expire(_ context.Context, id int64) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return false, fmt.Errorf("payment request %d: %w", id, domain.ErrNotFound)
	}
	if !req.Expire() {
		return false, nil
	}
	req.Version++
	req.UpdatedAt = s.now()
	s.requests[id] = req
	return true, nil
}

func (r requests) filter(keep func(domain.PaymentRequest) bool, less func(a, b domain.PaymentRequest) bool) []domain.PaymentRequest {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.PaymentRequest
	for _, req := range s.requests {
		if keep(req) {
			out = append(out, cloneRequest(req))
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func byID(a, b domain.PaymentRequest) bool { return a.ID < b.ID }

// --- ledger

type ledger struct{ s *Store }

func (r ledger) Append(_ context.Context, entry *domain.LedgerEntry) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.appendEntryLocked(entry)
}

func (r ledger) LatestForClub(_ context.Context, clubID int64) (*domain.LedgerEntry, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].ClubID == clubID {
			e := cloneEntry(s.entries[i])
			return &e, nil
		}
	}
	return nil, fmt.Errorf("ledger for club %d: %w", clubID, domain.ErrNotFound)
}

func (r ledger) LatestBankEntryForClub(_ context.Context, clubID int64) (*domain.LedgerEntry, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest *domain.LedgerEntry
	for i := range s.entries {
		e := s.entries[i]
		if e.ClubID != clubID || e.TransactionID == nil {
			continue
		}
		if latest == nil || !e.OccurredAt.Before(latest.OccurredAt) {
			c := cloneEntry(e)
			latest = &c
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("bank ledger for club %d: %w", clubID, domain.ErrNotFound)
	}
	return latest, nil
}

func (r ledger) Balance(_ context.Context, clubID int64) (decimal.Decimal, int, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var club []domain.LedgerEntry
	for _, e := range s.entries {
		if e.ClubID == clubID {
			club = append(club, e)
		}
	}
	return domain.Balance(club), len(club), nil
}

func (r ledger) ListByClub(_ context.Context, clubID int64, from, to *time.Time) ([]domain.LedgerEntry, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.LedgerEntry
	for _, e := range s.entries {
		if e.ClubID != clubID {
			continue
		}
		if from != nil && e.OccurredAt.Before(*from) {
			continue
		}
		if to != nil && e.OccurredAt.After(*to) {
			continue
		}
		out = append(out, cloneEntry(e))
	}
	return out, nil
}

func (r ledger) GetByTransactionID(_ context.Context, transactionID int64) (*domain.LedgerEntry, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.entryIndexForTransactionLocked(transactionID); i >= 0 {
		e := cloneEntry(s.entries[i])
		return &e, nil
	}
	return nil, fmt.Errorf("ledger entry for transaction %d: %w", transactionID, domain.ErrNotFound)
}

func (s *Store) entryIndexForTransactionLocked(transactionID int64) int {
	for i, e := range s.entries {
		if e.TransactionID != nil && *e.TransactionID == transactionID {
			return i
		}
	}
	return -1
}

// --- matches

type matches struct{ s *Store }

func (r matches) BindTransaction(_ context.Context, req *domain.PaymentRequest, t *domain.BankTransaction) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkRequestLocked(req); err != nil {
		return err
	}

	stored, ok := s.transactions[t.ID]
	if !ok || stored.Version != t.Version || stored.IsMatched() {
		return fmt.Errorf("%w: transaction %d", domain.ErrVersionConflict, t.ID)
	}

	idx := s.entryIndexForTransactionLocked(t.ID)
	if idx < 0 || s.entries[idx].RelatedRequestID != nil {
		return fmt.Errorf("%w: ledger entry of transaction %d", domain.ErrVersionConflict, t.ID)
	}
	if err := s.checkRequestUnattachedLocked(req.ID); err != nil {
		return err
	}

	now := s.now()
	reqID := req.ID

	req.Version++
	req.UpdatedAt = now
	s.requests[req.ID] = cloneRequest(*req)

	t.Version++
	t.MatchedRequestID = &reqID
	t.UpdatedAt = now
	s.transactions[t.ID] = cloneTransaction(*t)

	s.entries[idx].RelatedRequestID = &reqID
	return nil
}

func (r matches) BindCash(_ context.Context, req *domain.PaymentRequest, entry *domain.LedgerEntry) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkRequestLocked(req); err != nil {
		return err
	}
	if err := s.appendEntryLocked(entry); err != nil {
		return err
	}

	req.Version++
	req.UpdatedAt = s.now()
	s.requests[req.ID] = cloneRequest(*req)
	return nil
}

func (s *Store) checkRequestLocked(req *domain.PaymentRequest) error {
	stored, ok := s.requests[req.ID]
	if !ok || stored.Version != req.Version || stored.Status == domain.StatusMatched {
		return fmt.Errorf("%w: payment request %d", domain.ErrVersionConflict, req.ID)
	}
	return nil
}

// --- copies, so callers never alias stored state

func cloneTransaction(t domain.BankTransaction) domain.BankTransaction {
	if t.MatchedRequestID != nil {
		v := *t.MatchedRequestID
		t.MatchedRequestID = &v
	}
	if t.BalanceAfter != nil {
		v := *t.BalanceAfter
		t.BalanceAfter = &v
	}
	return t
}

func cloneRequest(r domain.PaymentRequest) domain.PaymentRequest {
	if r.MatchType != nil {
		v := *r.MatchType
		r.MatchType = &v
	}
	if r.MatchedTransactionID != nil {
		v := *r.MatchedTransactionID
		r.MatchedTransactionID = &v
	}
	if r.MatchedAt != nil {
		v := *r.MatchedAt
		r.MatchedAt = &v
	}
	if r.MatchedBy != nil {
		v := *r.MatchedBy
		r.MatchedBy = &v
	}
	if r.ExpiresAt != nil {
		v := *r.ExpiresAt
		r.ExpiresAt = &v
	}
	return r
}

func cloneEntry(e domain.LedgerEntry) domain.LedgerEntry {
	if e.TransactionID != nil {
		v := *e.TransactionID
		e.TransactionID = &v
	}
	if e.RelatedRequestID != nil {
		v := *e.RelatedRequestID
		e.RelatedRequestID = &v
	}
	return e
}
