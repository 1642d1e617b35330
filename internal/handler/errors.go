package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"club-recon/internal/domain"
	"club-recon/pkg/logger"
	"club-recon/pkg/response"
)

const dateLayout = "2006-01-02"

// respondError maps domain errors to HTTP statuses.
func respondError(c *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrRequestNotMatchable):
		response.Conflict(c, "REQUEST_NOT_MATCHABLE", message, err.Error())
	case errors.Is(err, domain.ErrTransactionAlreadyMatched):
		response.Conflict(c, "TRANSACTION_ALREADY_MATCHED", message, err.Error())
	case errors.Is(err, domain.ErrSyncInProgress):
		response.Conflict(c, "SYNC_IN_PROGRESS", message, err.Error())
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidRecord),
		errors.Is(err, domain.ErrTransactionNotDeposit),
		errors.Is(err, domain.ErrClubMismatch):
		response.ValidationError(c, err.Error())
	case errors.Is(err, domain.ErrSourceFetch):
		response.BadGateway(c, message, err.Error())
	case errors.Is(err, domain.ErrConcurrentUpdate):
		response.ServiceUnavailable(c, message, err.Error())
	default:
		logger.GetLogger().WithError(err).WithField("path", c.FullPath()).Error(message)
		response.InternalError(c, message, err.Error())
	}
}

func int64Param(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "Invalid "+name, "Must be a positive integer")
		return 0, false
	}
	return id, true
}

// parseDate reads YYYY-MM-DD. endOfDay moves the result to the last second of
// that day so ranges are inclusive.
func parseDate(value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
	}
	return &t, nil
}
