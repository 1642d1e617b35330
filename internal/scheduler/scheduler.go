// Package scheduler runs the periodic bank sync and expiry sweep.
package scheduler

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"club-recon/internal/bank"
	"club-recon/internal/domain"
	"club-recon/internal/service"
	"club-recon/pkg/logger"
)

type AccountLister interface {
	Accounts() []bank.Account
}

type Config struct {
	SyncInterval   time.Duration
	ExpiryInterval time.Duration
	MaxConcurrent  int
}

type Scheduler struct {
	accounts AccountLister
	sync     service.SyncService
	expiry   service.ExpiryService
	cfg      Config
	now      func() time.Time
}

func New(accounts AccountLister, sync service.SyncService, expiry service.ExpiryService, cfg Config) *Scheduler {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}
	return &Scheduler{
		accounts: accounts,
		sync:     sync,
		expiry:   expiry,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Run blocks until ctx is done. A zero interval disables that loop.
func (s *Scheduler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if s.cfg.SyncInterval > 0 {
		g.Go(func() error {
			return every(ctx, s.cfg.SyncInterval, func() { s.SyncAll(ctx) })
		})
	}
	if s.cfg.ExpiryInterval > 0 {
		g.Go(func() error {
			return every(ctx, s.cfg.ExpiryInterval, func() { s.SweepOnce(ctx) })
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// SyncAll syncs every club with a configured account. Clubs run
// concurrently up to MaxConcurrent; accounts of one club run in order.
// It returns the number of clubs whose sync failed.
func (s *Scheduler) SyncAll(ctx context.Context) int {
	clubs := clubIDs(s.accounts.Accounts())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrent)

	failed := make([]bool, len(clubs))
	for i, clubID := range clubs {
		i, clubID := i, clubID
		g.Go(func() error {
			reports, err := s.sync.SyncClub(gctx, clubID, false)
			log := logger.GetLogger().WithField("club_id", clubID).WithField("accounts", len(reports))
			switch {
			case err == nil:
			case errors.Is(err, domain.ErrSyncInProgress):
				log.Info("Sync skipped, another cycle holds the club")
			default:
				failed[i] = true
				log.WithError(err).Error("Scheduled sync failed")
			}
			// a failing club never cancels the others
			return nil
		})
	}
	g.Wait()

	n := 0
	for _, f := range failed {
		if f {
			n++
		}
	}
	return n
}

func (s *Scheduler) SweepOnce(ctx context.Context) int {
	n, err := s.expiry.SweepExpired(ctx, s.now().UTC())
	if err != nil {
		logger.GetLogger().WithError(err).Error("Expiry sweep failed")
	}
	return n
}

func every(ctx context.Context, interval time.Duration, fn func()) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fn()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fn()
		}
	}
}

func clubIDs(accounts []bank.Account) []int64 {
	seen := make(map[int64]bool)
	var out []int64
	for _, a := range accounts {
		if !seen[a.ClubID] {
			seen[a.ClubID] = true
			out = append(out, a.ClubID)
		}
	}
	return out
}
