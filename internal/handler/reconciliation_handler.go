package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"club-recon/internal/service"
	"club-recon/pkg/logger"
	"club-recon/pkg/response"
)

type ReconciliationHandler struct {
	sync   service.SyncService
	recon  service.ReconciliationService
	manual service.ManualMatchService
	expiry service.ExpiryService
}

func NewReconciliationHandler(
	sync service.SyncService,
	recon service.ReconciliationService,
	manual service.ManualMatchService,
	expiry service.ExpiryService,
) *ReconciliationHandler {
	return &ReconciliationHandler{sync: sync, recon: recon, manual: manual, expiry: expiry}
}

type SyncRequest struct {
	AccountRef string `json:"account_ref"`
	From       string `json:"from"`
	To         string `json:"to"`
	SkipMatch  bool   `json:"skip_match"`
}

type AutoMatchRequest struct {
	TransactionIDs []int64 `json:"transaction_ids" binding:"required,min=1"`
}

type ConfirmMatchRequest struct {
	TransactionID int64 `json:"transaction_id" binding:"required"`
	ActorID       int64 `json:"actor_id" binding:"required"`
}

type ConfirmCashRequest struct {
	ActorID int64 `json:"actor_id" binding:"required"`
}

// SyncClub godoc
// @Summary Sync bank transactions
// @Description Fetch, ingest and auto-match bank transactions for one account of the club, or for all of its accounts when account_ref is empty. Dates use YYYY-MM-DD.
// @Tags reconciliation
// @Accept json
// @Produce json
// @Param club_id path int true "Club ID"
// @Param request body SyncRequest false "Sync options"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /api/v1/clubs/{club_id}/sync [post]
func (h *ReconciliationHandler) SyncClub(c *gin.Context) {
	clubID, ok := int64Param(c, "club_id")
	if !ok {
		return
	}

	var req SyncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ValidationError(c, err.Error())
			return
		}
	}

	from, err := parseDate(req.From, false)
	if err != nil {
		response.BadRequest(c, "Invalid from format", "Use YYYY-MM-DD format")
		return
	}
	to, err := parseDate(req.To, true)
	if err != nil {
		response.BadRequest(c, "Invalid to format", "Use YYYY-MM-DD format")
		return
	}

	logger.GetLogger().WithFields(map[string]interface{}{
		"club_id":     clubID,
		"account_ref": req.AccountRef,
		"skip_match":  req.SkipMatch,
	}).Info("Starting sync")

	if req.AccountRef == "" {
		if from != nil || to != nil {
			response.BadRequest(c, "account_ref is required with an explicit window", "")
			return
		}
		reports, err := h.sync.SyncClub(c.Request.Context(), clubID, req.SkipMatch)
		if err != nil {
			respondError(c, "Sync failed", err)
			return
		}
		response.Success(c, http.StatusOK, "Sync completed successfully", reports)
		return
	}

	report, err := h.sync.Sync(c.Request.Context(), service.SyncRequest{
		ClubID:     clubID,
		AccountRef: req.AccountRef,
		From:       from,
		To:         to,
		SkipMatch:  req.SkipMatch,
	})
	if err != nil {
		respondError(c, "Sync failed", err)
		return
	}

	response.Success(c, http.StatusOK, "Sync completed successfully", report)
}

// AutoMatch godoc
// @Summary Auto-match transactions
// @Description Try to settle pending payment requests with the given deposits. Safe to repeat.
// @Tags reconciliation
// @Accept json
// @Produce json
// @Param club_id path int true "Club ID"
// @Param request body AutoMatchRequest true "Transaction ids"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /api/v1/clubs/{club_id}/auto-match [post]
func (h *ReconciliationHandler) AutoMatch(c *gin.Context) {
	clubID, ok := int64Param(c, "club_id")
	if !ok {
		return
	}

	var req AutoMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	outcomes, err := h.recon.AutoMatch(c.Request.Context(), clubID, req.TransactionIDs)
	if err != nil {
		respondError(c, "Auto-match failed", err)
		return
	}

	response.Success(c, http.StatusOK, "Auto-match completed", outcomes)
}

// ConfirmMatch godoc
// @Summary Confirm a match by hand
// @Description Bind a deposit to a PENDING or EXPIRED payment request
// @Tags reconciliation
// @Accept json
// @Produce json
// @Param id path int true "Payment request ID"
// @Param request body ConfirmMatchRequest true "Transaction and actor"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /api/v1/payment-requests/{id}/confirm [post]
func (h *ReconciliationHandler) ConfirmMatch(c *gin.Context) {
	requestID, ok := int64Param(c, "id")
	if !ok {
		return
	}

	var req ConfirmMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	matched, err := h.manual.ConfirmMatch(c.Request.Context(), requestID, req.TransactionID, req.ActorID)
	if err != nil {
		respondError(c, "Failed to confirm match", err)
		return
	}

	response.Success(c, http.StatusOK, "Payment request matched", matched)
}

// ConfirmCashPayment godoc
// @Summary Record a cash payment
// @Description Settle a PENDING or EXPIRED payment request without a bank transaction
// @Tags reconciliation
// @Accept json
// @Produce json
// @Param id path int true "Payment request ID"
// @Param request body ConfirmCashRequest true "Actor"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/payment-requests/{id}/confirm-cash [post]
func (h *ReconciliationHandler) ConfirmCashPayment(c *gin.Context) {
	requestID, ok := int64Param(c, "id")
	if !ok {
		return
	}

	var req ConfirmCashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	matched, entry, err := h.manual.ConfirmManualCashPayment(c.Request.Context(), requestID, req.ActorID)
	if err != nil {
		respondError(c, "Failed to record cash payment", err)
		return
	}

	response.Success(c, http.StatusOK, "Cash payment recorded", gin.H{
		"payment_request": matched,
		"ledger_entry":    entry,
	})
}

// SweepExpired godoc
// @Summary Expire overdue payment requests
// @Tags reconciliation
// @Produce json
// @Success 200 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/payment-requests/expire [post]
func (h *ReconciliationHandler) SweepExpired(c *gin.Context) {
	n, err := h.expiry.SweepExpired(c.Request.Context(), time.Now().UTC())
	if err != nil {
		respondError(c, "Expiry sweep failed", err)
		return
	}

	response.Success(c, http.StatusOK, "Expiry sweep completed", gin.H{"expired": n})
}
