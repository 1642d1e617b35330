package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"club-recon/internal/domain"
	"club-recon/pkg/logger"
)

const ledgerColumns = `
	id, club_id, transaction_id, direction, amount, occurred_at,
	recorded_at, related_request_id, memo`

type ledgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

type execQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func insertLedgerEntry(ctx context.Context, q execQuerier, entry *domain.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (
			club_id, transaction_id, direction, amount, occurred_at,
			related_request_id, memo
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, recorded_at
	`

	err := q.QueryRowContext(ctx, query,
		entry.ClubID,
		entry.TransactionID,
		entry.Direction,
		entry.Amount,
		entry.OccurredAt,
		entry.RelatedRequestID,
		entry.Memo,
	).Scan(&entry.ID, &entry.RecordedAt)

	if err != nil {
		logger.GetLogger().WithError(err).WithField("club_id", entry.ClubID).Error("Failed to append ledger entry")
		return err
	}

	return nil
}

func (r *ledgerRepository) Append(ctx context.Context, entry *domain.LedgerEntry) error {
	return insertLedgerEntry(ctx, r.db, entry)
}

func (r *ledgerRepository) LatestForClub(ctx context.Context, clubID int64) (*domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE club_id = $1
		ORDER BY recorded_at DESC, id DESC
		LIMIT 1`

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, clubID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("ledger for club %d: %w", clubID, domain.ErrNotFound)
	}
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to get latest ledger entry")
		return nil, err
	}

	return entry, nil
}

func (r *ledgerRepository) LatestBankEntryForClub(ctx context.Context, clubID int64) (*domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE club_id = $1 AND transaction_id IS NOT NULL
		ORDER BY occurred_at DESC, id DESC
		LIMIT 1`

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, clubID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bank ledger for club %d: %w", clubID, domain.ErrNotFound)
	}
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to get latest bank ledger entry")
		return nil, err
	}

	return entry, nil
}

func (r *ledgerRepository) Balance(ctx context.Context, clubID int64) (decimal.Decimal, int, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE direction WHEN 'DEPOSIT' THEN amount ELSE -amount END), 0),
			COUNT(*)
		FROM ledger_entries
		WHERE club_id = $1
	`

	var balance decimal.Decimal
	var count int
	if err := r.db.QueryRowContext(ctx, query, clubID).Scan(&balance, &count); err != nil {
		logger.GetLogger().WithError(err).Error("Failed to compute club balance")
		return decimal.Zero, 0, err
	}

	return balance, count, nil
}

func (r *ledgerRepository) ListByClub(ctx context.Context, clubID int64, from, to *time.Time) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE club_id = $1
		  AND ($2::timestamptz IS NULL OR occurred_at >= $2)
		  AND ($3::timestamptz IS NULL OR occurred_at <= $3)
		ORDER BY recorded_at, id`

	rows, err := r.db.QueryContext(ctx, query, clubID, from, to)
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to query ledger entries")
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			logger.GetLogger().WithError(err).Error("Failed to scan ledger entry")
			return nil, err
		}
		entries = append(entries, *entry)
	}

	return entries, rows.Err()
}

func (r *ledgerRepository) GetByTransactionID(ctx context.Context, transactionID int64) (*domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE transaction_id = $1`

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, transactionID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("ledger entry for transaction %d: %w", transactionID, domain.ErrNotFound)
	}
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to get ledger entry")
		return nil, err
	}

	return entry, nil
}

func scanEntry(row rowScanner) (*domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	err := row.Scan(
		&e.ID,
		&e.ClubID,
		&e.TransactionID,
		&e.Direction,
		&e.Amount,
		&e.OccurredAt,
		&e.RecordedAt,
		&e.RelatedRequestID,
		&e.Memo,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
