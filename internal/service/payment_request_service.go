package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"club-recon/internal/domain"
	"club-recon/internal/repository"
	"club-recon/pkg/logger"
)

// CreatePaymentRequestInput carries a new expected payment. A nil
// MatchWindowDays falls back to domain.DefaultMatchWindowDays.
type CreatePaymentRequestInput struct {
	ClubID          int64
	MemberID        int64
	MemberName      string
	RequestType     domain.RequestType
	ExpectedAmount  decimal.Decimal
	ExpectedDate    time.Time
	MatchWindowDays *int
	ExpiresAt       *time.Time
	ScheduleID      *int64
	BillingPeriod   *string
}

type PaymentRequestService interface {
	Create(ctx context.Context, in CreatePaymentRequestInput) (*domain.PaymentRequest, error)
	Get(ctx context.Context, id int64) (*domain.PaymentRequest, error)
	ListByClub(ctx context.Context, clubID int64, status *domain.RequestStatus) ([]domain.PaymentRequest, error)
}

type paymentRequestService struct {
	requests repository.PaymentRequestRepository
}

func NewPaymentRequestService(requests repository.PaymentRequestRepository) PaymentRequestService {
	return &paymentRequestService{requests: requests}
}

func (s *paymentRequestService) Create(ctx context.Context, in CreatePaymentRequestInput) (*domain.PaymentRequest, error) {
	window := domain.DefaultMatchWindowDays
	if in.MatchWindowDays != nil {
		window = *in.MatchWindowDays
	}

	req := &domain.PaymentRequest{
		ClubID:          in.ClubID,
		MemberID:        in.MemberID,
		MemberName:      strings.TrimSpace(in.MemberName),
		RequestType:     in.RequestType,
		ExpectedAmount:  in.ExpectedAmount,
		ExpectedDate:    in.ExpectedDate,
		MatchWindowDays: window,
		ExpiresAt:       in.ExpiresAt,
		ScheduleID:      in.ScheduleID,
		BillingPeriod:   in.BillingPeriod,
		Status:          domain.StatusPending,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := s.requests.Create(ctx, req); err != nil {
		logger.GetLogger().WithError(err).WithField("club_id", in.ClubID).Error("Failed to create payment request")
		return nil, fmt.Errorf("failed to create payment request: %w", err)
	}

	logger.GetLogger().WithFields(map[string]interface{}{
		"club_id":      req.ClubID,
		"request_id":   req.ID,
		"request_type": req.RequestType,
		"amount":       req.ExpectedAmount.StringFixed(2),
	}).Info("Payment request created")

	return req, nil
}

func (s *paymentRequestService) Get(ctx context.Context, id int64) (*domain.PaymentRequest, error) {
	return s.requests.GetByID(ctx, id)
}

func (s *paymentRequestService) ListByClub(ctx context.Context, clubID int64, status *domain.RequestStatus) ([]domain.PaymentRequest, error) {
	if status != nil {
		switch *status {
		case domain.StatusPending, domain.StatusMatched, domain.StatusExpired:
		default:
			return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidRequest, *status)
		}
	}
	return s.requests.ListByClub(ctx, clubID, status)
}
