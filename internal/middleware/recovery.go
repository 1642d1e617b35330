package middleware

import (
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"club-recon/pkg/logger"
	"club-recon/pkg/response"
)

const RequestIDHeader = "X-Request-ID"

// RequestID propagates the caller's request id or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.GetLogger().WithFields(map[string]interface{}{
					"error":      err,
					"request_id": c.GetString("request_id"),
					"method":     c.Request.Method,
					"route":      c.FullPath(),
					"stack":      string(debug.Stack()),
				}).Error("Panic recovered")
				if !c.Writer.Written() {
					response.InternalError(c, "Internal server error", "An unexpected error occurred")
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}

// ErrorHandler answers requests that attached an error with c.Error but
// wrote no response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last()
		logger.GetLogger().WithError(err.Err).
			WithField("request_id", c.GetString("request_id")).
			Error("Request error")

		if !c.Writer.Written() {
			response.InternalError(c, "Request failed", err.Error())
		}
	}
}
