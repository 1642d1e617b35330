package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"club-recon/internal/domain"
	"club-recon/pkg/logger"
)

const transactionColumns = `
	id, club_id, account_ref, occurred_at, direction, amount, balance_after,
	narrative, natural_key, matched_request_id, version, created_at, updated_at`

type transactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) InsertWithEntry(ctx context.Context, t *domain.BankTransaction, entry *domain.LedgerEntry) (bool, error) {
	inserted := false

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO bank_transactions (
				club_id, account_ref, occurred_at, direction, amount,
				balance_after, narrative, natural_key
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (natural_key) DO NOTHING
			RETURNING id, version, created_at, updated_at
		`

		err := tx.QueryRowContext(ctx, query,
			t.ClubID,
			t.AccountRef,
			t.OccurredAt,
			t.Direction,
			t.Amount,
			t.BalanceAfter,
			t.Narrative,
			t.NaturalKey,
		).Scan(&t.ID, &t.Version, &t.CreatedAt, &t.UpdatedAt)

		if err == sql.ErrNoRows {
			// natural key already stored
			return nil
		}
		if err != nil {
			logger.GetLogger().WithError(err).WithField("natural_key", t.NaturalKey).Error("Failed to insert bank transaction")
			return err
		}

		txID := t.ID
		entry.TransactionID = &txID
		if err := insertLedgerEntry(ctx, tx, entry); err != nil {
			return err
		}

		inserted = true
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}

	return inserted, nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id int64) (*domain.BankTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM bank_transactions WHERE id = $1`

	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to get transaction")
		return nil, err
	}

	return t, nil
}

func (r *transactionRepository) GetByNaturalKey(ctx context.Context, naturalKey string) (*domain.BankTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM bank_transactions WHERE natural_key = $1`

	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, naturalKey))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction with natural key %q: %w", naturalKey, domain.ErrNotFound)
	}
	if err != nil {
		logger.GetLogger().WithError(err).WithField("natural_key", naturalKey).Error("Failed to get transaction by natural key")
		return nil, err
	}

	return t, nil
}

func (r *transactionRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.BankTransaction, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + transactionColumns + ` FROM bank_transactions WHERE id = ANY($1) ORDER BY id`
	return r.query(ctx, query, pq.Array(ids))
}

func (r *transactionRepository) ListByClub(ctx context.Context, clubID int64, unmatchedOnly bool) ([]domain.BankTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM bank_transactions WHERE club_id = $1`
	if unmatchedOnly {
		query += ` AND matched_request_id IS NULL`
	}
	query += ` ORDER BY occurred_at, id`

	return r.query(ctx, query, clubID)
}

func (r *transactionRepository) query(ctx context.Context, query string, args ...interface{}) ([]domain.BankTransaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to query transactions")
		return nil, err
	}
	defer rows.Close()

	var transactions []domain.BankTransaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			logger.GetLogger().WithError(err).Error("Failed to scan transaction")
			return nil, err
		}
		transactions = append(transactions, *t)
	}

	return transactions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (*domain.BankTransaction, error) {
	var t domain.BankTransaction
	err := row.Scan(
		&t.ID,
		&t.ClubID,
		&t.AccountRef,
		&t.OccurredAt,
		&t.Direction,
		&t.Amount,
		&t.BalanceAfter,
		&t.Narrative,
		&t.NaturalKey,
		&t.MatchedRequestID,
		&t.Version,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
