package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"club-recon/internal/domain"
	"club-recon/internal/metrics"
	"club-recon/internal/repository"
	"club-recon/pkg/logger"
)

type IngestService interface {
	// Ingest stores new records and returns the ids of the ones that were not
	// seen before.
	Ingest(ctx context.Context, clubID int64, accountRef string, records []domain.RawRecord) ([]int64, error)
	IngestWithResult(ctx context.Context, clubID int64, accountRef string, records []domain.RawRecord) (*domain.IngestResult, error)
}

type ingestService struct {
	transactions repository.TransactionRepository
}

func NewIngestService(transactions repository.TransactionRepository) IngestService {
	return &ingestService{transactions: transactions}
}

func (s *ingestService) Ingest(ctx context.Context, clubID int64, accountRef string, records []domain.RawRecord) ([]int64, error) {
	result, err := s.IngestWithResult(ctx, clubID, accountRef, records)
	if err != nil {
		return nil, err
	}
	return result.NewIDs, nil
}

func (s *ingestService) IngestWithResult(ctx context.Context, clubID int64, accountRef string, records []domain.RawRecord) (*domain.IngestResult, error) {
	if clubID == 0 || accountRef == "" {
		return nil, fmt.Errorf("%w: club id and account ref are required", domain.ErrInvalidRecord)
	}

	result := &domain.IngestResult{NewIDs: []int64{}}
	seen := make(map[string]bool, len(records))

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if err := ValidateRecord(rec); err != nil {
			result.Rejected++
			metrics.TransactionsIngested.WithLabelValues("rejected").Inc()
			logger.GetLogger().WithError(err).WithFields(map[string]interface{}{
				"club_id":     clubID,
				"account_ref": accountRef,
				"index":       i,
				"bank_tx_id":  rec.BankTxID,
			}).Warn("Rejected malformed bank record")
			continue
		}

		key := NaturalKey(accountRef, rec)
		if seen[key] {
			result.Duplicates++
			metrics.TransactionsIngested.WithLabelValues("duplicate").Inc()
			continue
		}
		seen[key] = true

		tx := &domain.BankTransaction{
			ClubID:       clubID,
			AccountRef:   accountRef,
			OccurredAt:   rec.OccurredAt.UTC(),
			Direction:    rec.Direction,
			Amount:       rec.Amount.Round(2),
			BalanceAfter: rec.BalanceAfter,
			Narrative:    rec.Narrative,
			NaturalKey:   key,
		}
		entry := domain.EntryForTransaction(tx)

		inserted, err := s.transactions.InsertWithEntry(ctx, tx, &entry)
		if err != nil {
			logger.GetLogger().WithError(err).WithField("natural_key", key).Error("Failed to store bank transaction")
			return result, fmt.Errorf("failed to store transaction: %w", err)
		}
		if !inserted {
			result.Duplicates++
			metrics.TransactionsIngested.WithLabelValues("duplicate").Inc()
			if err := s.collectUnmatched(ctx, clubID, key, result); err != nil {
				return result, err
			}
			continue
		}

		result.NewIDs = append(result.NewIDs, tx.ID)
		metrics.TransactionsIngested.WithLabelValues("new").Inc()
	}

	logger.GetLogger().WithFields(map[string]interface{}{
		"club_id":     clubID,
		"account_ref": accountRef,
		"received":    len(records),
		"new":         len(result.NewIDs),
		"duplicates":  result.Duplicates,
		"unmatched":   len(result.ExistingUnmatchedIDs),
		"rejected":    result.Rejected,
	}).Info("Bank records ingested")

	return result, nil
}

// collectUnmatched remembers an already stored deposit of the club that no
// request is bound to yet.
func (s *ingestService) collectUnmatched(ctx context.Context, clubID int64, key string, result *domain.IngestResult) error {
	existing, err := s.transactions.GetByNaturalKey(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load stored transaction: %w", err)
	}
	if existing.ClubID == clubID && existing.Direction == domain.Deposit && !existing.IsMatched() {
		result.ExistingUnmatchedIDs = append(result.ExistingUnmatchedIDs, existing.ID)
	}
	return nil
}

// ValidateRecord rejects records that cannot become a bank transaction.
func ValidateRecord(rec domain.RawRecord) error {
	var problems []string
	if rec.OccurredAt.IsZero() {
		problems = append(problems, "missing timestamp")
	}
	if !rec.Direction.Valid() {
		problems = append(problems, fmt.Sprintf("unknown direction %q", rec.Direction))
	}
	if err := domain.ValidateAmount(rec.Amount); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidRecord, strings.Join(problems, "; "))
}

// NaturalKey identifies a real-world transaction. A bank-assigned id wins;
// otherwise the key is a digest of the fields a re-fetch reproduces.
func NaturalKey(accountRef string, rec domain.RawRecord) string {
	if id := strings.TrimSpace(rec.BankTxID); id != "" {
		return accountRef + ":" + id
	}

	parts := []string{
		accountRef,
		string(rec.Direction),
		rec.Amount.StringFixed(2),
		rec.OccurredAt.UTC().Format(time.RFC3339Nano),
		strings.TrimSpace(rec.Narrative),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
