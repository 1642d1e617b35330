package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"club-recon/internal/events"
	"club-recon/internal/metrics"
	"club-recon/internal/repository"
	"club-recon/pkg/logger"
)

type ExpiryService interface {
	// SweepExpired expires every PENDING request whose expiresAt is at or
	// before now and returns how many changed.
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}

type ExpiredPayload struct {
	RequestID int64     `json:"request_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type expiryService struct {
	requests  repository.PaymentRequestRepository
	publisher events.Publisher
}

func NewExpiryService(requests repository.PaymentRequestRepository, publisher events.Publisher) ExpiryService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &expiryService{requests: requests, publisher: publisher}
}

func (s *expiryService) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	due, err := s.requests.ListDue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list due requests: %w", err)
	}

	expired := 0
	var errs []error
	var published []events.Event

	for _, req := range due {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		// a concurrent match or sweep may have moved it already
		changed, err := s.requests.Expire(ctx, req.ID)
		if err != nil {
			logger.GetLogger().WithError(err).WithField("request_id", req.ID).Error("Failed to expire payment request")
			errs = append(errs, err)
			continue
		}
		if !changed {
			continue
		}

		expired++
		payload := ExpiredPayload{RequestID: req.ID}
		if req.ExpiresAt != nil {
			payload.ExpiresAt = *req.ExpiresAt
		}
		published = append(published, events.New(events.RequestExpired, req.ClubID, payload))
	}

	metrics.RequestsExpired.Add(float64(expired))
	events.PublishQuietly(ctx, s.publisher, published...)

	if expired > 0 || len(errs) > 0 {
		logger.GetLogger().WithFields(map[string]interface{}{
			"due":     len(due),
			"expired": expired,
			"errors":  len(errs),
		}).Info("Expiry sweep finished")
	}

	return expired, errors.Join(errs...)
}
