package service

import (
	"context"
	"fmt"
	"time"

	"club-recon/internal/domain"
	"club-recon/internal/repository"
)

type LedgerService interface {
	Balance(ctx context.Context, clubID int64) (*domain.ClubBalance, error)
	LatestForClub(ctx context.Context, clubID int64) (*domain.LedgerEntry, error)
	ListEntries(ctx context.Context, clubID int64, from, to *time.Time) ([]domain.LedgerEntry, error)
}

type ledgerService struct {
	ledger repository.LedgerRepository
	now    func() time.Time
}

func NewLedgerService(ledger repository.LedgerRepository) LedgerService {
	return &ledgerService{ledger: ledger, now: time.Now}
}

// Balance is recomputed from the entries on every call.
func (s *ledgerService) Balance(ctx context.Context, clubID int64) (*domain.ClubBalance, error) {
	total, count, err := s.ledger.Balance(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute balance: %w", err)
	}
	return &domain.ClubBalance{
		ClubID:  clubID,
		Balance: total,
		Entries: count,
		AsOf:    s.now().UTC(),
	}, nil
}

func (s *ledgerService) LatestForClub(ctx context.Context, clubID int64) (*domain.LedgerEntry, error) {
	return s.ledger.LatestForClub(ctx, clubID)
}

func (s *ledgerService) ListEntries(ctx context.Context, clubID int64, from, to *time.Time) ([]domain.LedgerEntry, error) {
	if from != nil && to != nil && from.After(*to) {
		return nil, fmt.Errorf("%w: from cannot be after to", domain.ErrInvalidRequest)
	}
	return s.ledger.ListByClub(ctx, clubID, from, to)
}
