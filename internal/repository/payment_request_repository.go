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

const requestColumns = `
	id, club_id, member_id, member_name, request_type, expected_amount,
	expected_date, match_window_days, expires_at, schedule_id, billing_period,
	status, match_type, matched_transaction_id, matched_at, matched_by,
	version, created_at, updated_at`

type paymentRequestRepository struct {
	db *sql.DB
}

func NewPaymentRequestRepository(db *sql.DB) PaymentRequestRepository {
	return &paymentRequestRepository{db: db}
}

func (r *paymentRequestRepository) Create(ctx context.Context, req *domain.PaymentRequest) error {
	query := `
		INSERT INTO payment_requests (
			club_id, member_id, member_name, request_type, expected_amount,
			expected_date, match_window_days, expires_at, schedule_id, billing_period, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, version, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		req.ClubID,
		req.MemberID,
		req.MemberName,
		req.RequestType,
		req.ExpectedAmount,
		req.ExpectedDate,
		req.MatchWindowDays,
		req.ExpiresAt,
		req.ScheduleID,
		req.BillingPeriod,
		req.Status,
	).Scan(&req.ID, &req.Version, &req.CreatedAt, &req.UpdatedAt)

	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to create payment request")
		return err
	}

	return nil
}

func (r *paymentRequestRepository) GetByID(ctx context.Context, id int64) (*domain.PaymentRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM payment_requests WHERE id = $1`

	req, err := scanRequest(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("payment request %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to get payment request")
		return nil, err
	}

	return req, nil
}

func (r *paymentRequestRepository) ListByClub(ctx context.Context, clubID int64, status *domain.RequestStatus) ([]domain.PaymentRequest, error) {
	if status != nil {
		query := `SELECT ` + requestColumns + `
			FROM payment_requests
			WHERE club_id = $1 AND status = $2
			ORDER BY expected_date, id`
		return r.query(ctx, query, clubID, *status)
	}

	query := `SELECT ` + requestColumns + `
		FROM payment_requests
		WHERE club_id = $1
		ORDER BY expected_date, id`
	return r.query(ctx, query, clubID)
}

func (r *paymentRequestRepository) ListPendingByAmount(ctx context.Context, clubID int64, amount decimal.Decimal) ([]domain.PaymentRequest, error) {
	query := `SELECT ` + requestColumns + `
		FROM payment_requests
		WHERE club_id = $1 AND status = 'PENDING' AND expected_amount = $2
		ORDER BY id`
	return r.query(ctx, query, clubID, amount)
}

func (r *paymentRequestRepository) ListDue(ctx context.Context, now time.Time) ([]domain.PaymentRequest, error) {
	query := `SELECT ` + requestColumns + `
		FROM payment_requests
		WHERE status = 'PENDING' AND expires_at IS NOT NULL AND expires_at <= $1
		ORDER BY id`
	return r.query(ctx, query, now)
}

func (r *paymentRequestRepository) Expire(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE payment_requests
		SET status = 'EXPIRED', version = version + 1, updated_at = NOW()
		WHERE id = $1 AND status = 'PENDING'
	`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		logger.GetLogger().WithError(err).WithField("request_id", id).Error("Failed to expire payment request")
		return false, err
	}

	return expectOneRow(res)
}

func (r *paymentRequestRepository) query(ctx context.Context, query string, args ...interface{}) ([]domain.PaymentRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to query payment requests")
		return nil, err
	}
	defer rows.Close()

	var requests []domain.PaymentRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			logger.GetLogger().WithError(err).Error("Failed to scan payment request")
			return nil, err
		}
		requests = append(requests, *req)
	}

	return requests, rows.Err()
}

func scanRequest(row rowScanner) (*domain.PaymentRequest, error) {
	var req domain.PaymentRequest
	err := row.Scan(
		&req.ID,
		&req.ClubID,
		&req.MemberID,
		&req.MemberName,
		&req.RequestType,
		&req.ExpectedAmount,
		&req.ExpectedDate,
		&req.MatchWindowDays,
		&req.ExpiresAt,
		&req.ScheduleID,
		&req.BillingPeriod,
		&req.Status,
		&req.MatchType,
		&req.MatchedTransactionID,
		&req.MatchedAt,
		&req.MatchedBy,
		&req.Version,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	req.ExpectedDate = domain.DateOf(req.ExpectedDate)
	return &req, nil
}
