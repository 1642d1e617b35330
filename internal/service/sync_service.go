package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"club-recon/internal/bank"
	"club-recon/internal/domain"
	"club-recon/internal/events"
	"club-recon/internal/lease"
	"club-recon/internal/metrics"
	"club-recon/internal/repository"
	"club-recon/pkg/logger"
)

// SourceRegistry resolves club accounts to their bank source
type SourceRegistry interface {
	Resolve(accountRef string) (bank.Account, bank.TransactionSource, error)
	AccountsForClub(clubID int64) []bank.Account
}

// SyncRequest describes one sync cycle. Nil From/To fall back to the default
// window.
type SyncRequest struct {
	ClubID     int64
	AccountRef string
	From       *time.Time
	To         *time.Time
	SkipMatch  bool
}

type SyncOptions struct {
	FetchTimeout    time.Duration
	DefaultLookback time.Duration
	LeaseTTL        time.Duration
	Location        *time.Location
}

type SyncService interface {
	// Sync fetches one account, ingests what is new and auto-matches it.
	Sync(ctx context.Context, req SyncRequest) (*domain.SyncReport, error)
	// SyncClub runs Sync for every account of the club. Accounts are
	// independent; a failing one does not stop the others.
	SyncClub(ctx context.Context, clubID int64, skipMatch bool) ([]domain.SyncReport, error)
}

type SyncFailedPayload struct {
	CycleID    string `json:"cycle_id"`
	AccountRef string `json:"account_ref"`
	Stage      string `json:"stage"`
	Error      string `json:"error"`
}

type syncService struct {
	registry   SourceRegistry
	ledger     repository.LedgerRepository
	ingest     IngestService
	reconciler ReconciliationService
	leases     lease.Manager
	publisher  events.Publisher
	opts       SyncOptions
	now        func() time.Time
}

func NewSyncService(
	registry SourceRegistry,
	ledger repository.LedgerRepository,
	ingest IngestService,
	reconciler ReconciliationService,
	leases lease.Manager,
	publisher events.Publisher,
	opts SyncOptions,
) SyncService {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 30 * time.Second
	}
	if opts.DefaultLookback <= 0 {
		opts.DefaultLookback = 30 * 24 * time.Hour
	}
	if opts.LeaseTTL <= 0 {
		opts.LeaseTTL = 5 * time.Minute
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if leases == nil {
		leases = lease.NewLocalManager()
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &syncService{
		registry:   registry,
		ledger:     ledger,
		ingest:     ingest,
		reconciler: reconciler,
		leases:     leases,
		publisher:  publisher,
		opts:       opts,
		now:        time.Now,
	}
}

func (s *syncService) Sync(ctx context.Context, req SyncRequest) (*domain.SyncReport, error) {
	account, source, err := s.registry.Resolve(req.AccountRef)
	if err != nil {
		return nil, err
	}
	if req.ClubID != 0 && account.ClubID != req.ClubID {
		return nil, fmt.Errorf("%w: account %q does not belong to club %d", domain.ErrClubMismatch, account.Ref, req.ClubID)
	}

	release, err := s.leases.Acquire(ctx, fmt.Sprintf("sync:club:%d", account.ClubID), s.opts.LeaseTTL)
	if errors.Is(err, lease.ErrHeld) {
		return nil, fmt.Errorf("%w: club %d", domain.ErrSyncInProgress, account.ClubID)
	}
	if err != nil {
		return nil, err
	}
	defer release()

	start := s.now()
	report := &domain.SyncReport{
		CycleID:    uuid.New().String(),
		ClubID:     account.ClubID,
		AccountRef: account.Ref,
		StartedAt:  start.UTC(),
	}
	log := logger.GetLogger().WithFields(map[string]interface{}{
		"cycle_id":    report.CycleID,
		"club_id":     account.ClubID,
		"account_ref": account.Ref,
		"provider":    account.Provider,
	})

	report.From, report.To, err = s.window(ctx, account.ClubID, req)
	if err != nil {
		return nil, err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	records, err := source.FetchTransactions(fetchCtx, account.Ref, report.From, report.To)
	cancel()
	if err != nil {
		log.WithError(err).Error("Bank fetch failed")
		s.fail(ctx, report, "fetch", err)
		return nil, fmt.Errorf("%w: account %q: %v", domain.ErrSourceFetch, account.Ref, err)
	}
	report.Fetched = len(records)

	ingested, err := s.ingest.IngestWithResult(ctx, account.ClubID, account.Ref, records)
	if ingested != nil {
		report.Ingest = *ingested
	}
	if err != nil {
		log.WithError(err).Error("Ingestion failed")
		s.fail(ctx, report, "ingest", err)
		return report, err
	}

	// everything ingested so far stays; a later cycle can match it
	if err := ctx.Err(); err != nil {
		log.WithError(err).Warn("Sync cancelled before matching")
		s.finish(report, "cancelled")
		return report, err
	}

	if candidates := report.Ingest.MatchCandidates(); !req.SkipMatch && len(candidates) > 0 {
		outcomes, err := s.reconciler.AutoMatch(ctx, account.ClubID, candidates)
		report.Outcomes = outcomes
		for _, o := range outcomes {
			if o.Status == domain.OutcomeMatched {
				report.Matched++
			}
		}
		if err != nil {
			log.WithError(err).Error("Auto-match failed")
			s.fail(ctx, report, "match", err)
			return report, err
		}
	}

	s.finish(report, "completed")
	log.WithFields(map[string]interface{}{
		"from":       report.From,
		"to":         report.To,
		"fetched":    report.Fetched,
		"new":        len(report.Ingest.NewIDs),
		"duplicates": report.Ingest.Duplicates,
		"rejected":   report.Ingest.Rejected,
		"matched":    report.Matched,
	}).Info("Sync completed")
	events.PublishQuietly(ctx, s.publisher, events.New(events.SyncCompleted, report.ClubID, report))

	return report, nil
}

func (s *syncService) SyncClub(ctx context.Context, clubID int64, skipMatch bool) ([]domain.SyncReport, error) {
	accounts := s.registry.AccountsForClub(clubID)
	if len(accounts) == 0 {
		return nil, fmt.Errorf("no bank account configured for club %d: %w", clubID, domain.ErrNotFound)
	}

	reports := make([]domain.SyncReport, 0, len(accounts))
	var errs []error
	for _, a := range accounts {
		report, err := s.Sync(ctx, SyncRequest{ClubID: clubID, AccountRef: a.Ref, SkipMatch: skipMatch})
		if report != nil {
			reports = append(reports, *report)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return reports, errors.Join(errs...)
}

// window picks the fetch range. Without a prior bank-backed entry the last
// DefaultLookback is fetched; otherwise the range starts on the calendar day
// of the latest known transaction so a partially synced day is fetched again.
func (s *syncService) window(ctx context.Context, clubID int64, req SyncRequest) (time.Time, time.Time, error) {
	to := s.now().UTC()
	if req.To != nil {
		to = req.To.UTC()
	}

	if req.From != nil {
		from := req.From.UTC()
		if from.After(to) {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: from cannot be after to", domain.ErrInvalidRequest)
		}
		return from, to, nil
	}

	latest, err := s.ledger.LatestBankEntryForClub(ctx, clubID)
	if errors.Is(err, domain.ErrNotFound) {
		return to.Add(-s.opts.DefaultLookback), to, nil
	}
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("failed to read latest ledger entry: %w", err)
	}

	local := latest.OccurredAt.In(s.opts.Location)
	y, m, d := local.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, s.opts.Location).UTC()
	if from.After(to) {
		from = to
	}
	return from, to, nil
}

func (s *syncService) finish(report *domain.SyncReport, result string) {
	report.FinishedAt = s.now().UTC()
	metrics.SyncRuns.WithLabelValues(result).Inc()
	metrics.SyncDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
}

func (s *syncService) fail(ctx context.Context, report *domain.SyncReport, stage string, err error) {
	s.finish(report, "failed")
	events.PublishQuietly(ctx, s.publisher, events.New(events.SyncFailed, report.ClubID, SyncFailedPayload{
		CycleID:    report.CycleID,
		AccountRef: report.AccountRef,
		Stage:      stage,
		Error:      err.Error(),
	}))
}
