package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"docpilot/internal/catalog"
	"docpilot/internal/domain"
)

// TemplateHandler exposes read-only template catalog endpoints for
// operators. Templates are authored elsewhere; this surface only inspects
// what the engine would select from.
type TemplateHandler struct {
	catalog *catalog.Service
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(cat *catalog.Service) *TemplateHandler {
	return &TemplateHandler{catalog: cat}
}

// List handles GET /api/v1/templates?category=&namespace=
func (h *TemplateHandler) List(c *gin.Context) {
	filter := domain.TemplateFilter{
		Category: domain.ParseDocumentType(c.Query("category")),
		Active:   c.DefaultQuery("active", "true") == "true",
	}
	switch c.Query("namespace") {
	case string(domain.PromptSystemLegacy):
		filter.Namespace = domain.PromptSystemLegacy
	default:
		filter.Namespace = domain.PromptSystemManaged
	}

	templates, err := h.catalog.List(c.Request.Context(), filter)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, templates)
}

// Get handles GET /api/v1/templates/:id
func (h *TemplateHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "template id must be a UUID")
		return
	}

	tpl, err := h.catalog.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, tpl)
}

// Invalidate handles POST /api/v1/templates/cache/invalidate. Admin-only;
// forces the next catalog read for the filter to go remote.
func (h *TemplateHandler) Invalidate(c *gin.Context) {
	var req struct {
		Category  string `json:"category"`
		Namespace string `json:"namespace"`
		Active    *bool  `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	filter := domain.TemplateFilter{
		Category:  domain.ParseDocumentType(req.Category),
		Namespace: domain.PromptSystem(req.Namespace),
		Active:    active,
	}
	h.catalog.Invalidate(filter)
	RespondOK(c, gin.H{"invalidated": filter.Key()})
}
