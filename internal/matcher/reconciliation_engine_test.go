package matcher_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"club-recon/internal/domain"
	"club-recon/internal/matcher"
)

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func deposit(amount int64, at time.Time) domain.BankTransaction {
	return domain.BankTransaction{
		ID:         1,
		ClubID:     1,
		Direction:  domain.Deposit,
		Amount:     decimal.NewFromInt(amount),
		OccurredAt: at,
	}
}

func pending(id int64, amount int64, expected time.Time, window int) domain.PaymentRequest {
	return domain.PaymentRequest{
		ID:              id,
		ClubID:          1,
		ExpectedAmount:  decimal.NewFromInt(amount),
		ExpectedDate:    expected,
		MatchWindowDays: window,
		Status:          domain.StatusPending,
	}
}

func TestExactAmountWindowStrategy(t *testing.T) {
	s := &matcher.ExactAmountWindowStrategy{Location: time.UTC}
	req := pending(1, 50000, day(10), 10)

	assert.True(t, s.Eligible(deposit(50000, day(20).Add(15*time.Hour)), req), "10 days away is inside the window")
	assert.True(t, s.Eligible(deposit(50000, day(1)), req), "window applies on both sides")
	assert.False(t, s.Eligible(deposit(49999, day(10)), req), "amount must match exactly")
	assert.False(t, s.Eligible(deposit(50000, day(21)), req), "11 days away is outside the window")
}

func TestExactAmountWindowStrategy_UsesLocationForCalendarDay(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	s := &matcher.ExactAmountWindowStrategy{Location: seoul}
	req := pending(1, 10000, day(10), 0)

	// 2024-01-09T20:00Z is already Jan 10 in Seoul
	assert.True(t, s.Eligible(deposit(10000, time.Date(2024, 1, 9, 20, 0, 0, 0, time.UTC)), req))
	assert.False(t, (&matcher.ExactAmountWindowStrategy{Location: time.UTC}).Eligible(
		deposit(10000, time.Date(2024, 1, 9, 20, 0, 0, 0, time.UTC)), req))
}

func TestReconciliationEngine_TieBreakByDistance(t *testing.T) {
	engine := matcher.NewReconciliationEngine(nil, time.UTC)
	tx := deposit(10000, day(6))

	requests := []domain.PaymentRequest{
		pending(1, 10000, day(1), 10),
		pending(2, 10000, day(8), 10),
		pending(3, 10000, day(7), 10),
	}

	selected := engine.Select(tx, requests, nil)
	require.NotNil(t, selected)
	assert.Equal(t, int64(3), selected.ID)
}

func TestReconciliationEngine_TieBreakByExpectedDate(t *testing.T) {
	engine := matcher.NewReconciliationEngine(nil, time.UTC)
	tx := deposit(10000, day(6))

	requests := []domain.PaymentRequest{
		pending(1, 10000, day(8), 10),
		pending(2, 10000, day(4), 10),
	}

	selected := engine.Select(tx, requests, nil)
	require.NotNil(t, selected)
	assert.Equal(t, int64(2), selected.ID, "equal distance resolves to the earlier expected date")
}

func TestReconciliationEngine_TieBreakByLowestID(t *testing.T) {
	engine := matcher.NewReconciliationEngine(nil, time.UTC)
	tx := deposit(10000, day(6))

	requests := []domain.PaymentRequest{
		pending(10, 10000, day(5), 10),
		pending(7, 10000, day(5), 10),
	}

	selected := engine.Select(tx, requests, nil)
	require.NotNil(t, selected)
	assert.Equal(t, int64(7), selected.ID)

	// input order must not matter
	requests[0], requests[1] = requests[1], requests[0]
	assert.Equal(t, int64(7), engine.Select(tx, requests, nil).ID)
}

func TestReconciliationEngine_IgnoresNonPendingAndExcluded(t *testing.T) {
	engine := matcher.NewReconciliationEngine(nil, time.UTC)
	tx := deposit(10000, day(6))

	expired := pending(1, 10000, day(6), 10)
	expired.Status = domain.StatusExpired
	matched := pending(2, 10000, day(6), 10)
	matched.Status = domain.StatusMatched
	otherClub := pending(3, 10000, day(6), 10)
	otherClub.ClubID = 2
	claimed := pending(4, 10000, day(6), 10)

	requests := []domain.PaymentRequest{expired, matched, otherClub, claimed}

	assert.Nil(t, engine.Select(tx, requests, map[int64]bool{4: true}))
	assert.Len(t, engine.Rank(tx, requests, nil), 1)
}

func TestSkipReason(t *testing.T) {
	tx := deposit(100, day(1))
	assert.Empty(t, matcher.SkipReason(tx, 1))
	assert.NotEmpty(t, matcher.SkipReason(tx, 2))

	withdrawal := tx
	withdrawal.Direction = domain.Withdraw
	assert.Equal(t, "not a deposit", matcher.SkipReason(withdrawal, 1))

	reqID := int64(9)
	bound := tx
	bound.MatchedRequestID = &reqID
	assert.Equal(t, "already matched", matcher.SkipReason(bound, 1))
}
