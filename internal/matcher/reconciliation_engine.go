package matcher

import (
	"sort"
	"time"

	"club-recon/internal/domain"
)

// MatchingStrategy decides whether a payment request may settle a deposit
type MatchingStrategy interface {
	Eligible(tx domain.BankTransaction, req domain.PaymentRequest) bool
}

// ExactAmountWindowStrategy requires the exact expected amount and an
// occurrence date within the request's match window. Dates are compared as
// calendar days in Location.
type ExactAmountWindowStrategy struct {
	Location *time.Location
}

func (s *ExactAmountWindowStrategy) Eligible(tx domain.BankTransaction, req domain.PaymentRequest) bool {
	if !tx.Amount.Equal(req.ExpectedAmount) {
		return false
	}
	return DateDistance(tx, req, s.Location) <= req.MatchWindowDays
}

// DateDistance is the number of calendar days between the transaction date and
// the request's expected date.
func DateDistance(tx domain.BankTransaction, req domain.PaymentRequest, loc *time.Location) int {
	return domain.DaysBetween(domain.DateIn(tx.OccurredAt, loc), domain.DateOf(req.ExpectedDate))
}

// ReconciliationEngine selects the payment request a deposit settles
type ReconciliationEngine struct {
	strategy MatchingStrategy
	location *time.Location
}

func NewReconciliationEngine(strategy MatchingStrategy, loc *time.Location) *ReconciliationEngine {
	if loc == nil {
		loc = time.UTC
	}
	if strategy == nil {
		strategy = &ExactAmountWindowStrategy{Location: loc}
	}
	return &ReconciliationEngine{
		strategy: strategy,
		location: loc,
	}
}

// Candidate is an eligible request with its distance to the transaction
type Candidate struct {
	Request  domain.PaymentRequest
	Distance int
}

// SkipReason explains why a transaction is not an auto-match candidate. An
// empty string means it is one.
func SkipReason(tx domain.BankTransaction, clubID int64) string {
	switch {
	case tx.ClubID != clubID:
		return "transaction belongs to another club"
	case tx.Direction != domain.Deposit:
		return "not a deposit"
	case tx.IsMatched():
		return "already matched"
	default:
		return ""
	}
}

// Rank filters requests down to the eligible PENDING ones and orders them by
// date distance, then expected date, then id. The order is total, so the first
// element is the deterministic choice.
func (e *ReconciliationEngine) Rank(tx domain.BankTransaction, requests []domain.PaymentRequest, exclude map[int64]bool) []Candidate {
	candidates := make([]Candidate, 0, len(requests))

	for _, req := range requests {
		if req.Status != domain.StatusPending || req.ClubID != tx.ClubID {
			continue
		}
		if exclude[req.ID] {
			continue
		}
		if !e.strategy.Eligible(tx, req) {
			continue
		}
		candidates = append(candidates, Candidate{
			Request:  req,
			Distance: DateDistance(tx, req, e.location),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		if !a.Request.ExpectedDate.Equal(b.Request.ExpectedDate) {
			return a.Request.ExpectedDate.Before(b.Request.ExpectedDate)
		}
		return a.Request.ID < b.Request.ID
	})

	return candidates
}

// Select returns the best request for tx, or nil when none qualifies.
func (e *ReconciliationEngine) Select(tx domain.BankTransaction, requests []domain.PaymentRequest, exclude map[int64]bool) *domain.PaymentRequest {
	ranked := e.Rank(tx, requests, exclude)
	if len(ranked) == 0 {
		return nil
	}
	best := ranked[0].Request
	return &best
}

func (e *ReconciliationEngine) Location() *time.Location {
	return e.location
}
