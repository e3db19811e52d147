package router

import (
	"github.com/gin-gonic/gin"

	"docpilot/internal/config"
	"docpilot/internal/domain"
	"docpilot/internal/handler"
	"docpilot/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	extractH *handler.ExtractHandler,
	templateH *handler.TemplateHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(&cfg.JWT))

	// Extraction routes
	extract := protected.Group("/extract")
	extract.POST("", extractH.Extract)
	extract.POST("/bank-payment", extractH.ExtractBankPayment)
	extract.POST("/batch", middleware.RequireRole(domain.RoleAdmin), extractH.ExtractBatch)

	// Template catalog (read-only; invalidation is admin-only)
	templates := protected.Group("/templates")
	templates.GET("", templateH.List)
	templates.GET("/:id", templateH.Get)
	templates.POST("/cache/invalidate", middleware.RequireRole(domain.RoleAdmin), templateH.Invalidate)

	return r
}
