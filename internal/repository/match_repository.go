package repository

import (
	"context"
	"database/sql"
	"fmt"

	"club-recon/internal/domain"
	"club-recon/pkg/logger"
)

type matchRepository struct {
	db *sql.DB
}

func NewMatchRepository(db *sql.DB) MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) BindTransaction(ctx context.Context, req *domain.PaymentRequest, t *domain.BankTransaction) error {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := updateMatchedRequest(ctx, tx, req); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE bank_transactions
			SET matched_request_id = $1, version = version + 1, updated_at = NOW()
			WHERE id = $2 AND version = $3 AND matched_request_id IS NULL
		`, req.ID, t.ID, t.Version)
		if err != nil {
			logger.GetLogger().WithError(err).WithField("transaction_id", t.ID).Error("Failed to bind transaction")
			return err
		}
		if ok, err := expectOneRow(res); err != nil || !ok {
			return conflictOr(err, "transaction %d", t.ID)
		}

		res, err = tx.ExecContext(ctx, `
			UPDATE ledger_entries
			SET related_request_id = $1
			WHERE transaction_id = $2 AND related_request_id IS NULL
		`, req.ID, t.ID)
		if err != nil {
			logger.GetLogger().WithError(err).WithField("transaction_id", t.ID).Error("Failed to attach ledger entry")
			return err
		}
		if ok, err := expectOneRow(res); err != nil || !ok {
			return conflictOr(err, "ledger entry of transaction %d", t.ID)
		}

		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", domain.ErrVersionConflict, err)
		}
		return err
	}

	reqID := req.ID
	req.Version++
	t.Version++
	t.MatchedRequestID = &reqID
	return nil
}

func (r *matchRepository) BindCash(ctx context.Context, req *domain.PaymentRequest, entry *domain.LedgerEntry) error {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := updateMatchedRequest(ctx, tx, req); err != nil {
			return err
		}
		return insertLedgerEntry(ctx, tx, entry)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", domain.ErrVersionConflict, err)
		}
		return err
	}

	req.Version++
	return nil
}

// updateMatchedRequest writes the match columns guarded by the version the
// caller read.
func updateMatchedRequest(ctx context.Context, tx *sql.Tx, req *domain.PaymentRequest) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE payment_requests
		SET status = $1, match_type = $2, matched_transaction_id = $3,
			matched_at = $4, matched_by = $5, version = version + 1, updated_at = NOW()
		WHERE id = $6 AND version = $7 AND status <> 'MATCHED'
	`,
		req.Status,
		req.MatchType,
		req.MatchedTransactionID,
		req.MatchedAt,
		req.MatchedBy,
		req.ID,
		req.Version,
	)
	if err != nil {
		logger.GetLogger().WithError(err).WithField("request_id", req.ID).Error("Failed to update payment request")
		return err
	}

	ok, err := expectOneRow(res)
	if err != nil || !ok {
		return conflictOr(err, "payment request %d", req.ID)
	}
	return nil
}

func conflictOr(err error, format string, args ...interface{}) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: "+format, append([]interface{}{domain.ErrVersionConflict}, args...)...)
}
