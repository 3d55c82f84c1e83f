package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"haul/internal/auth"
	"haul/internal/domain"
	"haul/internal/handler"
	"haul/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	RideHandler     *handler.RideHandler
	WalletHandler   *handler.WalletHandler
	OperatorHandler *handler.OperatorHandler
	Authenticator   auth.Authenticator
	Profiles        middleware.ProfileResolver
	RedisClient     redis.Cmdable
	NewRelicApp     *newrelic.Application
	Logger          logrus.FieldLogger
	OperatorKey     string
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	handler.RegisterValidatorTags()

	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")

	authed := v1.Group("",
		middleware.Authenticate(deps.Authenticator, deps.Profiles, deps.Logger),
		middleware.TransactionAttributes(),
		middleware.IdempotencyMiddleware(deps.RedisClient, deps.Logger),
	)
	{
		driverOnly := middleware.RequireRole(domain.RoleDriver)
		requesterOnly := middleware.RequireRole(domain.RoleRequester)

		// Ride routes.
		rides := authed.Group("/rides")
		{
			rides.POST("", requesterOnly, deps.RideHandler.CreateRide)
			rides.GET("/available", driverOnly, deps.RideHandler.ListAvailable)
			rides.GET("/history", deps.RideHandler.ListHistory)
			rides.GET("/:id", deps.RideHandler.GetRide)
			rides.POST("/:id/accept", driverOnly, deps.RideHandler.AcceptRide)
			rides.PUT("/:id/status", deps.RideHandler.UpdateStatus)
		}

		// Driver routes.
		drivers := authed.Group("/drivers", driverOnly)
		{
			drivers.GET("/me/stats", deps.RideHandler.DriverStats)
		}

		// Wallet routes.
		wallet := authed.Group("/wallet", driverOnly)
		{
			wallet.GET("", deps.WalletHandler.GetBalance)
			wallet.GET("/transactions", deps.WalletHandler.ListTransactions)
			wallet.POST("/withdrawals", deps.WalletHandler.RequestWithdrawal)
			wallet.GET("/withdrawals", deps.WalletHandler.ListWithdrawals)
			wallet.GET("/withdrawals/:id", deps.WalletHandler.GetWithdrawal)
			wallet.POST("/withdrawals/:id/cancel", deps.WalletHandler.CancelWithdrawal)
		}
	}

	// Operator routes.
	if deps.OperatorKey != "" {
		ops := v1.Group("/ops", middleware.OperatorKey(deps.OperatorKey))
		{
			ops.POST("/withdrawals/:id/complete", deps.OperatorHandler.CompleteWithdrawal)
			ops.GET("/wallets/:driverId/reconcile", deps.OperatorHandler.Reconcile)
			ops.DELETE("/profiles/:id/cache", deps.OperatorHandler.InvalidateProfile)
		}
	}

	return router
}
