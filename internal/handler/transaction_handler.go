package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"club-recon/internal/domain"
	"club-recon/internal/service"
	"club-recon/pkg/logger"
	"club-recon/pkg/response"
)

type TransactionHandler struct {
	ingest       service.IngestService
	transactions service.TransactionService
}

func NewTransactionHandler(ingest service.IngestService, transactions service.TransactionService) *TransactionHandler {
	return &TransactionHandler{ingest: ingest, transactions: transactions}
}

type IngestRequest struct {
	AccountRef string             `json:"account_ref" binding:"required"`
	Records    []domain.RawRecord `json:"records" binding:"required,min=1"`
}

// IngestTransactions godoc
// @Summary Ingest bank records
// @Description Store raw bank records for a club account. Records already seen are skipped and malformed ones are rejected individually.
// @Tags transactions
// @Accept json
// @Produce json
// @Param club_id path int true "Club ID"
// @Param request body IngestRequest true "Bank records"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 422 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/clubs/{club_id}/transactions/ingest [post]
func (h *TransactionHandler) IngestTransactions(c *gin.Context) {
	clubID, ok := int64Param(c, "club_id")
	if !ok {
		return
	}

	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithError(err).Error("Invalid request")
		response.ValidationError(c, err.Error())
		return
	}

	result, err := h.ingest.IngestWithResult(c.Request.Context(), clubID, req.AccountRef, req.Records)
	if err != nil {
		respondError(c, "Failed to ingest transactions", err)
		return
	}

	response.Success(c, http.StatusCreated, "Transactions ingested successfully", result)
}

// GetTransaction godoc
// @Summary Get a bank transaction
// @Tags transactions
// @Produce json
// @Param id path int true "Transaction ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	tx, err := h.transactions.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Failed to get transaction", err)
		return
	}

	response.Success(c, http.StatusOK, "Transaction retrieved successfully", tx)
}

// ListTransactions godoc
// @Summary List bank transactions of a club
// @Tags transactions
// @Produce json
// @Param club_id path int true "Club ID"
// @Param unmatched_only query bool false "Only transactions without a payment request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/clubs/{club_id}/transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	clubID, ok := int64Param(c, "club_id")
	if !ok {
		return
	}

	unmatchedOnly := false
	if raw := c.Query("unmatched_only"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(c, "Invalid unmatched_only", "Use true or false")
			return
		}
		unmatchedOnly = v
	}

	txs, err := h.transactions.ListByClub(c.Request.Context(), clubID, unmatchedOnly)
	if err != nil {
		respondError(c, "Failed to list transactions", err)
		return
	}

	response.Success(c, http.StatusOK, "Transactions retrieved successfully", gin.H{
		"transactions": txs,
		"count":        len(txs),
	})
}
