package routes

import (
	"net/http"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers groups the HTTP handlers served by the API
type Handlers struct {
	Purchase   *handler.PurchaseHandler
	Balance    *handler.BalanceHandler
	Settlement *handler.SettlementHandler
	Health     *handler.HealthHandler
	Metrics    http.Handler
}

// AuthConfig holds the credentials checked by the API middlewares
type AuthConfig struct {
	JWTSecret   []byte
	AdminAPIKey string
}

// SetupRoutes configures all the routes for the API
func SetupRoutes(router *gin.Engine, handlers Handlers, auth AuthConfig, logger core.Logger) {
	router.GET("/healthz", handlers.Health.Health)
	if handlers.Metrics != nil {
		router.GET("/metrics", gin.WrapH(handlers.Metrics))
	}

	v1 := router.Group("/v1")

	user := v1.Group("", middleware.JWTAuth(auth.JWTSecret, logger))
	{
		user.POST("/purchases", handlers.Purchase.CreatePurchase)
		user.GET("/purchases", handlers.Purchase.ListPurchases)
		user.GET("/purchases/:transactionId", handlers.Purchase.GetPurchase)
		user.POST("/purchases/:transactionId/confirm", handlers.Purchase.ConfirmPurchase)

		user.GET("/balance", handlers.Balance.GetBalance)

		user.GET("/settlements/stream", handlers.Settlement.Stream)
	}

	admin := v1.Group("/admin", middleware.AdminAPIKey(auth.AdminAPIKey, logger))
	{
		admin.POST("/balances/:userId/credit", handlers.Balance.Credit)
	}
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(
	router *gin.Engine,
	logger core.Logger,
	timeProvider core.TimeProvider,
	metrics middleware.HTTPMetricsRecorder,
	allowedOrigins []string,
) {
	// recovery first so panics in later middlewares are caught
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger, timeProvider))
	if metrics != nil {
		router.Use(middleware.Metrics(metrics))
	}
	router.Use(middleware.CORS(allowedOrigins))
}
