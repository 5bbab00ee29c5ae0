package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lambda-art/lambdaart-api/internal/models"
	"github.com/lambda-art/lambdaart-api/internal/services"
	"github.com/lambda-art/lambdaart-api/internal/store"
	"github.com/lambda-art/lambdaart-api/pkg/metrics"
	"github.com/lambda-art/lambdaart-api/pkg/slug"
)

// ModuleHandler serves the public catalog endpoints. Listings come from
// the in-memory mirror; the detail page reads the full document from
// the store so LongDesc and Gallery are always current.
type ModuleHandler struct {
	mirror  services.CatalogMirror
	store   store.Store
	baseURL string
}

func NewModuleHandler(mirror services.CatalogMirror, catalogStore store.Store, baseURL string) *ModuleHandler {
	return &ModuleHandler{
		mirror:  mirror,
		store:   catalogStore,
		baseURL: baseURL,
	}
}

// GetPublicModules handles GET /api/v1/modules
func (h *ModuleHandler) GetPublicModules(c *gin.Context) {
	modules, err := h.mirror.Get()
	if err != nil {
		respondError(c, http.StatusServiceUnavailable, "Le catalogue est momentanément indisponible", err)
		return
	}

	publicModules := make([]models.PublicModuleResponse, 0, len(modules))
	for _, module := range modules {
		publicModules = append(publicModules, module.ToPublicResponse(h.baseURL))
	}

	c.JSON(http.StatusOK, gin.H{"modules": publicModules})
}

// GetPublicModuleBySlug handles GET /api/v1/modules/:slug
func (h *ModuleHandler) GetPublicModuleBySlug(c *gin.Context) {
	moduleSlug := c.Param("slug")
	if !slug.IsValid(moduleSlug) {
		respondError(c, http.StatusBadRequest, "Invalid slug", nil)
		return
	}

	module, err := h.store.GetModuleBySlug(c.Request.Context(), moduleSlug)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	metrics.ModuleDetailViews.WithLabelValues(moduleSlug).Inc()
	c.JSON(http.StatusOK, module)
}
