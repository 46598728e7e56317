package router

import (
	"github.com/gin-gonic/gin"

	"folioscan/internal/handler"
	"folioscan/internal/logger"
	"folioscan/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	portfolioH *handler.PortfolioHandler,
	healthH *handler.HealthHandler,
	allowedOrigins []string,
	log *logger.Log,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	portfolio := v1.Group("/portfolio")
	portfolio.POST("/extract", portfolioH.Extract)
	portfolio.POST("/validate", portfolioH.Validate)
	portfolio.GET("/runs", portfolioH.ListRuns)
	portfolio.GET("/runs/:id", portfolioH.GetRun)
	portfolio.GET("/runs/:id/export", portfolioH.ExportRun)

	return r
}
