package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"club-recon/internal/service"
	"club-recon/pkg/response"
)

type LedgerHandler struct {
	service service.LedgerService
}

func NewLedgerHandler(service service.LedgerService) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// ListEntries godoc
// @Summary List ledger entries of a club
// @Tags ledger
// @Produce json
// @Param club_id path int true "Club ID"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD), inclusive"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/clubs/{club_id}/ledger [get]
func (h *LedgerHandler) ListEntries(c *gin.Context) {
	clubID, ok := int64Param(c, "club_id")
	if !ok {
		return
	}

	from, err := parseDate(c.Query("from"), false)
	if err != nil {
		response.BadRequest(c, "Invalid from format", "Use YYYY-MM-DD format")
		return
	}
	to, err := parseDate(c.Query("to"), true)
	if err != nil {
		response.BadRequest(c, "Invalid to format", "Use YYYY-MM-DD format")
		return
	}

	entries, err := h.service.ListEntries(c.Request.Context(), clubID, from, to)
	if err != nil {
		respondError(c, "Failed to list ledger entries", err)
		return
	}

	response.Success(c, http.StatusOK, "Ledger entries retrieved successfully", gin.H{
		"entries": entries,
		"count":   len(entries),
	})
}

// GetBalance godoc
// @Summary Get club balance
// @Description Signed sum of every ledger entry of the club, recomputed on each call
// @Tags ledger
// @Produce json
// @Param club_id path int true "Club ID"
// @Success 200 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/clubs/{club_id}/ledger/balance [get]
func (h *LedgerHandler) GetBalance(c *gin.Context) {
	clubID, ok := int64Param(c, "club_id")
	if !ok {
		return
	}

	balance, err := h.service.Balance(c.Request.Context(), clubID)
	if err != nil {
		respondError(c, "Failed to compute balance", err)
		return
	}

	response.Success(c, http.StatusOK, "Balance retrieved successfully", balance)
}
