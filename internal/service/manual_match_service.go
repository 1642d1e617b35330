package service

import (
	"context"
	"fmt"
	"time"

	"club-recon/internal/domain"
	"club-recon/internal/events"
	"club-recon/internal/metrics"
	"club-recon/internal/repository"
	"club-recon/pkg/logger"
)

// ManualMatchService binds requests on behalf of a person. Callers are
// expected to have authorized actorID against the club already.
type ManualMatchService interface {
	ConfirmMatch(ctx context.Context, requestID, transactionID, actorID int64) (*domain.PaymentRequest, error)
	ConfirmManualCashPayment(ctx context.Context, requestID, actorID int64) (*domain.PaymentRequest, *domain.LedgerEntry, error)
}

type manualMatchService struct {
	store      *repository.Store
	publisher  events.Publisher
	maxRetries int
	now        func() time.Time
}

func NewManualMatchService(store *repository.Store, publisher events.Publisher, maxRetries int) ManualMatchService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}
	return &manualMatchService{
		store:      store,
		publisher:  publisher,
		maxRetries: maxRetries,
		now:        time.Now,
	}
}

func (s *manualMatchService) ConfirmMatch(ctx context.Context, requestID, transactionID, actorID int64) (*domain.PaymentRequest, error) {
	var req *domain.PaymentRequest
	var tx *domain.BankTransaction

	err := retryOnConflict(s.maxRetries, func() error {
		var err error
		req, err = s.store.Requests.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		tx, err = s.store.Transactions.GetByID(ctx, transactionID)
		if err != nil {
			return err
		}

		if !req.Matchable(domain.Confirmed) {
			return fmt.Errorf("%w: request %d is %s", domain.ErrRequestNotMatchable, req.ID, req.Status)
		}
		if tx.ClubID != req.ClubID {
			return fmt.Errorf("%w: transaction %d, request %d", domain.ErrClubMismatch, tx.ID, req.ID)
		}
		if tx.Direction != domain.Deposit {
			return fmt.Errorf("%w: transaction %d is %s", domain.ErrTransactionNotDeposit, tx.ID, tx.Direction)
		}
		if tx.IsMatched() {
			return fmt.Errorf("%w: transaction %d is bound to request %d", domain.ErrTransactionAlreadyMatched, tx.ID, *tx.MatchedRequestID)
		}

		actor := actorID
		txID := tx.ID
		if err := req.Match(domain.Confirmed, &txID, &actor, s.now().UTC()); err != nil {
			return err
		}
		return s.store.Matches.BindTransaction(ctx, req, tx)
	})
	if err != nil {
		metrics.ManualMatches.WithLabelValues(string(domain.Confirmed), "rejected").Inc()
		return nil, err
	}

	log := logger.GetLogger().WithFields(map[string]interface{}{
		"club_id":        req.ClubID,
		"request_id":     req.ID,
		"transaction_id": tx.ID,
		"actor_id":       actorID,
	})
	if !tx.Amount.Equal(req.ExpectedAmount) {
		log.WithFields(map[string]interface{}{
			"expected_amount": req.ExpectedAmount.StringFixed(2),
			"amount":          tx.Amount.StringFixed(2),
		}).Warn("Confirmed match with differing amount")
	}
	log.Info("Payment request confirmed")

	metrics.ManualMatches.WithLabelValues(string(domain.Confirmed), "ok").Inc()
	events.PublishQuietly(ctx, s.publisher, matchedEvent(req, tx.Amount))
	return req, nil
}

func (s *manualMatchService) ConfirmManualCashPayment(ctx context.Context, requestID, actorID int64) (*domain.PaymentRequest, *domain.LedgerEntry, error) {
	var req *domain.PaymentRequest
	var entry domain.LedgerEntry

	err := retryOnConflict(s.maxRetries, func() error {
		var err error
		req, err = s.store.Requests.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if !req.Matchable(domain.ManualCash) {
			return fmt.Errorf("%w: request %d is %s", domain.ErrRequestNotMatchable, req.ID, req.Status)
		}

		now := s.now().UTC()
		entry = domain.EntryForCash(req, actorID, now)
		actor := actorID
		if err := req.Match(domain.ManualCash, nil, &actor, now); err != nil {
			return err
		}
		return s.store.Matches.BindCash(ctx, req, &entry)
	})
	if err != nil {
		metrics.ManualMatches.WithLabelValues(string(domain.ManualCash), "rejected").Inc()
		return nil, nil, err
	}

	logger.GetLogger().WithFields(map[string]interface{}{
		"club_id":    req.ClubID,
		"request_id": req.ID,
		"entry_id":   entry.ID,
		"actor_id":   actorID,
		"amount":     entry.Amount.StringFixed(2),
	}).Info("Cash payment recorded")

	metrics.ManualMatches.WithLabelValues(string(domain.ManualCash), "ok").Inc()
	events.PublishQuietly(ctx, s.publisher, matchedEvent(req, entry.Amount))
	return req, &entry, nil
}
