package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"club-recon/internal/middleware"
)

type Handlers struct {
	Transactions    *TransactionHandler
	Reconciliation  *ReconciliationHandler
	PaymentRequests *PaymentRequestHandler
	Ledger          *LedgerHandler
	// Health reports storage readiness. Nil means always healthy.
	Health func() error
}

func SetupRouter(h Handlers) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())
	router.Use(middleware.ErrorHandler())

	router.GET("/health", func(c *gin.Context) {
		if h.Health != nil {
			if err := h.Health(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	{
		clubs := v1.Group("/clubs/:club_id")
		{
			clubs.POST("/sync", h.Reconciliation.SyncClub)
			clubs.POST("/auto-match", h.Reconciliation.AutoMatch)
			clubs.POST("/transactions/ingest", h.Transactions.IngestTransactions)
			clubs.GET("/transactions", h.Transactions.ListTransactions)
			clubs.GET("/payment-requests", h.PaymentRequests.ListPaymentRequests)
			clubs.GET("/ledger", h.Ledger.ListEntries)
			clubs.GET("/ledger/balance", h.Ledger.GetBalance)
		}

		v1.GET("/transactions/:id", h.Transactions.GetTransaction)

		requests := v1.Group("/payment-requests")
		{
			requests.POST("", h.PaymentRequests.CreatePaymentRequest)
			requests.POST("/expire", h.Reconciliation.SweepExpired)
			requests.GET("/:id", h.PaymentRequests.GetPaymentRequest)
			requests.POST("/:id/confirm", h.Reconciliation.ConfirmMatch)
			requests.POST("/:id/confirm-cash", h.Reconciliation.ConfirmCashPayment)
		}
	}

	return router
}
