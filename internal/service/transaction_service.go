package service

import (
	"context"
	"fmt"

	"club-recon/internal/domain"
	"club-recon/internal/repository"
)

type TransactionService interface {
	GetByID(ctx context.Context, id int64) (*domain.BankTransaction, error)
	ListByClub(ctx context.Context, clubID int64, unmatchedOnly bool) ([]domain.BankTransaction, error)
}

type transactionService struct {
	repo repository.TransactionRepository
}

func NewTransactionService(repo repository.TransactionRepository) TransactionService {
	return &transactionService{repo: repo}
}

func (s *transactionService) GetByID(ctx context.Context, id int64) (*domain.BankTransaction, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid transaction id %d", domain.ErrInvalidRequest, id)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *transactionService) ListByClub(ctx context.Context, clubID int64, unmatchedOnly bool) ([]domain.BankTransaction, error) {
	return s.repo.ListByClub(ctx, clubID, unmatchedOnly)
}
