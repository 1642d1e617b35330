package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultMatchWindowDays is used when a request is created without a window.
const DefaultMatchWindowDays = 10

type RequestType string

const (
	MembershipFee RequestType = "MEMBERSHIP_FEE"
	Settlement    RequestType = "SETTLEMENT"
	DepositReq    RequestType = "DEPOSIT"
)

func (t RequestType) Valid() bool {
	switch t {
	case MembershipFee, Settlement, DepositReq:
		return true
	default:
		return false
	}
}

type RequestStatus string

const (
	StatusPending RequestStatus = "PENDING"
	StatusMatched RequestStatus = "MATCHED"
	StatusExpired RequestStatus = "EXPIRED"
)

type MatchType string

const (
	AutoMatched MatchType = "AUTO_MATCHED"
	Confirmed   MatchType = "CONFIRMED"
	ManualCash  MatchType = "MANUAL_CASH"
)

// PaymentRequest is an expected inbound payment. Status moves
// PENDING -> MATCHED | EXPIRED, and EXPIRED -> MATCHED through manual
// confirmation only. Rows are never deleted.
type PaymentRequest struct {
	ID                   int64           `json:"id" db:"id"`
	ClubID               int64           `json:"club_id" db:"club_id"`
	MemberID             int64           `json:"member_id" db:"member_id"`
	MemberName           string          `json:"member_name" db:"member_name"`
	RequestType          RequestType     `json:"request_type" db:"request_type"`
	ExpectedAmount       decimal.Decimal `json:"expected_amount" db:"expected_amount"`
	ExpectedDate         time.Time       `json:"expected_date" db:"expected_date"`
	MatchWindowDays      int             `json:"match_window_days" db:"match_window_days"`
	ExpiresAt            *time.Time      `json:"expires_at,omitempty" db:"expires_at"`
	ScheduleID           *int64          `json:"schedule_id,omitempty" db:"schedule_id"`
	BillingPeriod        *string         `json:"billing_period,omitempty" db:"billing_period"`
	Status               RequestStatus   `json:"status" db:"status"`
	MatchType            *MatchType      `json:"match_type,omitempty" db:"match_type"`
	MatchedTransactionID *int64          `json:"matched_transaction_id,omitempty" db:"matched_transaction_id"`
	MatchedAt            *time.Time      `json:"matched_at,omitempty" db:"matched_at"`
	MatchedBy            *int64          `json:"matched_by,omitempty" db:"matched_by"`
	Version              int64           `json:"version" db:"version"`
	CreatedAt            time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at" db:"updated_at"`
}

// Matchable reports whether the request can move to MATCHED with the given
// match type.
func (r *PaymentRequest) Matchable(mt MatchType) bool {
	switch r.Status {
	case StatusPending:
		return true
	case StatusExpired:
		// expired requests are left for humans
		return mt == Confirmed || mt == ManualCash
	case StatusMatched:
		return false
	default:
		return false
	}
}

// Match transitions the request to MATCHED. transactionID is nil for cash
// payments and actorID is nil for automatic matches.
func (r *PaymentRequest) Match(mt MatchType, transactionID, actorID *int64, at time.Time) error {
	if !r.Matchable(mt) {
		return fmt.Errorf("%w: request %d is %s", ErrRequestNotMatchable, r.ID, r.Status)
	}

	switch mt {
	case AutoMatched, Confirmed:
		if transactionID == nil {
			return fmt.Errorf("%w: %s requires a transaction", ErrRequestNotMatchable, mt)
		}
	case ManualCash:
		if transactionID != nil {
			return fmt.Errorf("%w: cash payment cannot reference a transaction", ErrRequestNotMatchable)
		}
	default:
		return fmt.Errorf("%w: unknown match type %q", ErrRequestNotMatchable, mt)
	}

	matchType := mt
	matchedAt := at
	r.Status = StatusMatched
	r.MatchType = &matchType
	r.MatchedTransactionID = transactionID
	r.MatchedAt = &matchedAt
	r.MatchedBy = actorID
	return nil
}

// Expire moves a PENDING request to EXPIRED. It is a no-op on any other
// status and reports whether the state changed.
func (r *PaymentRequest) Expire() bool {
	switch r.Status {
	case StatusPending:
		r.Status = StatusExpired
		return true
	case StatusExpired, StatusMatched:
		return false
	default:
		return false
	}
}

// IsDue reports whether the request should be expired at now.
func (r *PaymentRequest) IsDue(now time.Time) bool {
	return r.Status == StatusPending && r.ExpiresAt != nil && !r.ExpiresAt.After(now)
}

// Validate checks a request before it is stored and fills defaults.
func (r *PaymentRequest) Validate() error {
	if r.ClubID == 0 {
		return fmt.Errorf("%w: club_id is required", ErrInvalidRequest)
	}
	if r.MemberID == 0 {
		return fmt.Errorf("%w: member_id is required", ErrInvalidRequest)
	}
	if !r.RequestType.Valid() {
		return fmt.Errorf("%w: unknown request type %q", ErrInvalidRequest, r.RequestType)
	}
	if err := ValidateAmount(r.ExpectedAmount); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if r.ExpectedDate.IsZero() {
		return fmt.Errorf("%w: expected_date is required", ErrInvalidRequest)
	}
	if r.MatchWindowDays < 0 {
		return fmt.Errorf("%w: match_window_days must not be negative", ErrInvalidRequest)
	}

	r.ExpectedDate = DateOf(r.ExpectedDate)
	r.ExpectedAmount = r.ExpectedAmount.Round(2)
	if r.Status == "" {
		r.Status = StatusPending
	}
	return nil
}
