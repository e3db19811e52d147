package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"docpilot/internal/provider"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db     *sqlx.DB
	router *provider.Router
}

// NewHealthHandler creates a new HealthHandler. db may be nil when the
// catalog runs purely on the built-in set.
func NewHealthHandler(db *sqlx.DB, router *provider.Router) *HealthHandler {
	return &HealthHandler{db: db, router: router}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz. The provider chain is reported but never
// fails readiness: the engine still serves fallback extractions while a
// provider credential is being rotated.
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.db != nil {
		if err := h.db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database not reachable"})
			return
		}
	}

	providers := gin.H{}
	for _, handle := range h.router.Handles() {
		if handle.Name == "" {
			continue
		}
		providers[handle.Name] = handle.IsConfigured
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "providers": providers})
}
