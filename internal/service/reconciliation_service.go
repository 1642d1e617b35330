package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"club-recon/internal/domain"
	"club-recon/internal/events"
	"club-recon/internal/matcher"
	"club-recon/internal/metrics"
	"club-recon/internal/repository"
	"club-recon/pkg/logger"
)

type ReconciliationService interface {
	// AutoMatch tries to settle one pending request per deposit. It returns
	// one outcome per distinct transaction id, in ascending id order.
	AutoMatch(ctx context.Context, clubID int64, transactionIDs []int64) ([]domain.MatchOutcome, error)
}

// MatchedPayload is published with payment_request.matched events
type MatchedPayload struct {
	RequestID     int64            `json:"request_id"`
	TransactionID *int64           `json:"transaction_id,omitempty"`
	MatchType     domain.MatchType `json:"match_type"`
	Amount        decimal.Decimal  `json:"amount"`
	MatchedBy     *int64           `json:"matched_by,omitempty"`
	MatchedAt     time.Time        `json:"matched_at"`
}

func matchedEvent(req *domain.PaymentRequest, amount decimal.Decimal) events.Event {
	payload := MatchedPayload{
		RequestID:     req.ID,
		TransactionID: req.MatchedTransactionID,
		Amount:        amount,
		MatchedBy:     req.MatchedBy,
	}
	if req.MatchType != nil {
		payload.MatchType = *req.MatchType
	}
	if req.MatchedAt != nil {
		payload.MatchedAt = *req.MatchedAt
	}
	return events.New(events.RequestMatched, req.ClubID, payload)
}

type reconciliationService struct {
	store      *repository.Store
	engine     *matcher.ReconciliationEngine
	publisher  events.Publisher
	maxRetries int
	now        func() time.Time
}

func NewReconciliationService(
	store *repository.Store,
	engine *matcher.ReconciliationEngine,
	publisher events.Publisher,
	maxRetries int,
) ReconciliationService {
	if engine == nil {
		engine = matcher.NewReconciliationEngine(nil, time.UTC)
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}
	return &reconciliationService{
		store:      store,
		engine:     engine,
		publisher:  publisher,
		maxRetries: maxRetries,
		now:        time.Now,
	}
}

func (s *reconciliationService) AutoMatch(ctx context.Context, clubID int64, transactionIDs []int64) ([]domain.MatchOutcome, error) {
	ids := uniqueSorted(transactionIDs)
	outcomes := make([]domain.MatchOutcome, 0, len(ids))
	claimed := make(map[int64]bool)
	conflicts := 0

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		outcome, err := s.matchOne(ctx, clubID, id, claimed)
		if err != nil {
			if !errors.Is(err, domain.ErrConcurrentUpdate) {
				return outcomes, err
			}
			conflicts++
			outcome = domain.MatchOutcome{
				TransactionID: id,
				Status:        domain.OutcomeConflict,
				Reason:        err.Error(),
			}
		}

		metrics.MatchOutcomes.WithLabelValues(string(outcome.Status)).Inc()
		outcomes = append(outcomes, outcome)
	}

	if conflicts > 0 {
		return outcomes, fmt.Errorf("%w: %d transaction(s) of club %d left unmatched", domain.ErrConcurrentUpdate, conflicts, clubID)
	}
	return outcomes, nil
}

// matchOne re-reads the transaction and the candidate requests on every
// attempt, so a retried or replayed call never binds stale state.
func (s *reconciliationService) matchOne(ctx context.Context, clubID, transactionID int64, claimed map[int64]bool) (domain.MatchOutcome, error) {
	outcome := domain.MatchOutcome{TransactionID: transactionID}
	var matched *domain.PaymentRequest
	var amount decimal.Decimal

	err := retryOnConflict(s.maxRetries, func() error {
		tx, err := s.store.Transactions.GetByID(ctx, transactionID)
		if errors.Is(err, domain.ErrNotFound) {
			outcome.Status = domain.OutcomeSkipped
			outcome.Reason = "transaction not found"
			return nil
		}
		if err != nil {
			return err
		}

		if reason := matcher.SkipReason(*tx, clubID); reason != "" {
			outcome.Status = domain.OutcomeSkipped
			outcome.Reason = reason
			outcome.RequestID = tx.MatchedRequestID
			return nil
		}

		pending, err := s.store.Requests.ListPendingByAmount(ctx, clubID, tx.Amount)
		if err != nil {
			return fmt.Errorf("failed to load pending requests: %w", err)
		}

		req := s.engine.Select(*tx, pending, claimed)
		if req == nil {
			outcome.Status = domain.OutcomeUnmatched
			outcome.Reason = "no eligible payment request"
			return nil
		}

		txID := tx.ID
		if err := req.Match(domain.AutoMatched, &txID, nil, s.now().UTC()); err != nil {
			// the listing raced with another writer
			return fmt.Errorf("%w: %v", domain.ErrVersionConflict, err)
		}
		if err := s.store.Matches.BindTransaction(ctx, req, tx); err != nil {
			return err
		}

		reqID := req.ID
		outcome.Status = domain.OutcomeMatched
		outcome.RequestID = &reqID
		outcome.Reason = ""
		matched = req
		amount = tx.Amount
		return nil
	})
	if err != nil {
		return outcome, err
	}

	if matched != nil {
		claimed[matched.ID] = true
		logger.GetLogger().WithFields(map[string]interface{}{
			"club_id":        clubID,
			"transaction_id": transactionID,
			"request_id":     matched.ID,
		}).Info("Payment request auto-matched")
		events.PublishQuietly(ctx, s.publisher, matchedEvent(matched, amount))
	}
	return outcome, nil
}

func uniqueSorted(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
