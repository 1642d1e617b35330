package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"club-recon/internal/domain"
	"club-recon/internal/service"
	"club-recon/pkg/logger"
	"club-recon/pkg/response"
)

type PaymentRequestHandler struct {
	service service.PaymentRequestService
}

func NewPaymentRequestHandler(service service.PaymentRequestService) *PaymentRequestHandler {
	return &PaymentRequestHandler{service: service}
}

type CreatePaymentRequestRequest struct {
	ClubID          int64           `json:"club_id" binding:"required"`
	MemberID        int64           `json:"member_id" binding:"required"`
	MemberName      string          `json:"member_name"`
	RequestType     string          `json:"request_type" binding:"required"`
	ExpectedAmount  decimal.Decimal `json:"expected_amount" swaggertype:"string"`
	ExpectedDate    string          `json:"expected_date" binding:"required"`
	MatchWindowDays *int            `json:"match_window_days"`
	ExpiresAt       *time.Time      `json:"expires_at"`
	ScheduleID      *int64          `json:"schedule_id"`
	BillingPeriod   *string         `json:"billing_period"`
}

// CreatePaymentRequest godoc
// @Summary Create a payment request
// @Description Register an expected inbound payment. match_window_days defaults to 10.
// @Tags payment-requests
// @Accept json
// @Produce json
// @Param request body CreatePaymentRequestRequest true "Payment request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /api/v1/payment-requests [post]
func (h *PaymentRequestHandler) CreatePaymentRequest(c *gin.Context) {
	var req CreatePaymentRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithError(err).Error("Invalid request")
		response.ValidationError(c, err.Error())
		return
	}

	expectedDate, err := time.Parse(dateLayout, req.ExpectedDate)
	if err != nil {
		response.BadRequest(c, "Invalid expected_date format", "Use YYYY-MM-DD format")
		return
	}

	created, err := h.service.Create(c.Request.Context(), service.CreatePaymentRequestInput{
		ClubID:          req.ClubID,
		MemberID:        req.MemberID,
		MemberName:      req.MemberName,
		RequestType:     domain.RequestType(strings.ToUpper(req.RequestType)),
		ExpectedAmount:  req.ExpectedAmount,
		ExpectedDate:    expectedDate,
		MatchWindowDays: req.MatchWindowDays,
		ExpiresAt:       req.ExpiresAt,
		ScheduleID:      req.ScheduleID,
		BillingPeriod:   req.BillingPeriod,
	})
	if err != nil {
		respondError(c, "Failed to create payment request", err)
		return
	}

	response.Success(c, http.StatusCreated, "Payment request created successfully", created)
}

// GetPaymentRequest godoc
// @Summary Get a payment request
// @Tags payment-requests
// @Produce json
// @Param id path int true "Payment request ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/payment-requests/{id} [get]
func (h *PaymentRequestHandler) GetPaymentRequest(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	req, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Failed to get payment request", err)
		return
	}

	response.Success(c, http.StatusOK, "Payment request retrieved successfully", req)
}

// ListPaymentRequests godoc
// @Summary List payment requests of a club
// @Tags payment-requests
// @Produce json
// @Param club_id path int true "Club ID"
// @Param status query string false "PENDING, MATCHED or EXPIRED"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /api/v1/clubs/{club_id}/payment-requests [get]
func (h *PaymentRequestHandler) ListPaymentRequests(c *gin.Context) {
	clubID, ok := int64Param(c, "club_id")
	if !ok {
		return
	}

	var status *domain.RequestStatus
	if raw := c.Query("status"); raw != "" {
		s := domain.RequestStatus(strings.ToUpper(raw))
		status = &s
	}

	requests, err := h.service.ListByClub(c.Request.Context(), clubID, status)
	if err != nil {
		respondError(c, "Failed to list payment requests", err)
		return
	}

	response.Success(c, http.StatusOK, "Payment requests retrieved successfully", gin.H{
		"payment_requests": requests,
		"count":            len(requests),
	})
}
