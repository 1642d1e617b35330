package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"club-recon/internal/domain"
)

type TransactionRepository interface {
	// InsertWithEntry stores tx and its ingestion ledger entry in one storage
	// transaction. It returns false without error when tx.NaturalKey already
	// exists.
	InsertWithEntry(ctx context.Context, tx *domain.BankTransaction, entry *domain.LedgerEntry) (bool, error)
	GetByID(ctx context.Context, id int64) (*domain.BankTransaction, error)
	GetByNaturalKey(ctx context.Context, naturalKey string) (*domain.BankTransaction, error)
	GetByIDs(ctx context.Context, ids []int64) ([]domain.BankTransaction, error)
	ListByClub(ctx context.Context, clubID int64, unmatchedOnly bool) ([]domain.BankTransaction, error)
}

type PaymentRequestRepository interface {
	Create(ctx context.Context, req *domain.PaymentRequest) error
	GetByID(ctx context.Context, id int64) (*domain.PaymentRequest, error)
	ListByClub(ctx context.Context, clubID int64, status *domain.RequestStatus) ([]domain.PaymentRequest, error)
	// ListPendingByAmount returns PENDING requests of the club expecting
	// exactly amount. Date windows are applied by the caller.
	ListPendingByAmount(ctx context.Context, clubID int64, amount decimal.Decimal) ([]domain.PaymentRequest, error)
	ListDue(ctx context.Context, now time.Time) ([]domain.PaymentRequest, error)
	// Expire moves the request to EXPIRED only if it is still PENDING. It
	// reports whether a row changed.
	Expire(ctx context.Context, id int64) (bool, error)
}

type LedgerRepository interface {
	Append(ctx context.Context, entry *domain.LedgerEntry) error
	LatestForClub(ctx context.Context, clubID int64) (*domain.LedgerEntry, error)
	// LatestBankEntryForClub returns the bank-backed entry with the latest
	// occurrence time, ignoring cash entries.
	LatestBankEntryForClub(ctx context.Context, clubID int64) (*domain.LedgerEntry, error)
	Balance(ctx context.Context, clubID int64) (decimal.Decimal, int, error)
	ListByClub(ctx context.Context, clubID int64, from, to *time.Time) ([]domain.LedgerEntry, error)
	GetByTransactionID(ctx context.Context, transactionID int64) (*domain.LedgerEntry, error)
}

// MatchRepository applies a match atomically across the request, the
// transaction and the ledger. Both methods compare-and-set on the Version
// values carried by their arguments and return domain.ErrVersionConflict when
// any guard fails; on success the in-memory versions are advanced.
type MatchRepository interface {
	// BindTransaction persists req (already transitioned to MATCHED) and
	// attaches it to tx and to tx's ingestion ledger entry.
	BindTransaction(ctx context.Context, req *domain.PaymentRequest, tx *domain.BankTransaction) error
	// BindCash persists req (already transitioned to MATCHED) and appends
	// entry in the same storage transaction.
	BindCash(ctx context.Context, req *domain.PaymentRequest, entry *domain.LedgerEntry) error
}

// Store groups every repository the services need.
type Store struct {
	Transactions TransactionRepository
	Requests     PaymentRequestRepository
	Ledger       LedgerRepository
	Matches      MatchRepository
}
