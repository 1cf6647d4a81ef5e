// Package v1 provides API v1 routing.
package v1

import (
	"github.com/gin-gonic/gin"

	"stockbook/internal/domain/forecast"
	"stockbook/internal/domain/ledger"
	"stockbook/internal/domain/reports"
	"stockbook/internal/infrastructure/http/v1/handlers"
	"stockbook/internal/infrastructure/http/v1/middleware"
	"stockbook/internal/infrastructure/storage/postgres"
	"stockbook/pkg/logger"
)

// RouterConfig contains router dependencies.
type RouterConfig struct {
	Pool   *postgres.Pool
	Logger *logger.Logger

	Ledger   *ledger.Service
	Forecast *forecast.Service
	Reports  *reports.Service
}

// NewRouter creates a configured Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()

	// Middleware chain order matters:
	// Recovery first (catch panics), then tracing, then logging,
	// then error handling.
	router.Use(
		middleware.Recovery(),
		middleware.Trace(),
		middleware.Logger(cfg.Logger),
		middleware.ErrorHandler(),
	)

	// Health checks (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	ledgerHandler := handlers.NewLedgerHandler(cfg.Ledger)
	forecastHandler := handlers.NewForecastHandler(cfg.Forecast)
	reportsHandler := handlers.NewReportsHandler(cfg.Reports)

	api := router.Group("/api/v1")
	{
		ledgerGroup := api.Group("/ledger")
		{
			ledgerGroup.POST("", ledgerHandler.Record)
			ledgerGroup.GET("/:productId", ledgerHandler.List)
			ledgerGroup.GET("/:productId/avg-price", ledgerHandler.AvgPrice)
			ledgerGroup.GET("/:productId/on-hand", ledgerHandler.OnHand)
		}

		forecastGroup := api.Group("/forecast")
		{
			forecastGroup.GET("/:warehouseId", forecastHandler.Warehouse)
			forecastGroup.GET("/:warehouseId/products/:productId", forecastHandler.Product)
		}

		reportsGroup := api.Group("/reports")
		{
			reportsGroup.GET("/stock", reportsHandler.Stock)
		}
	}

	return router
}
