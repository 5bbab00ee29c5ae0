package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lambda-art/lambdaart-api/internal/models"
	"github.com/lambda-art/lambdaart-api/internal/services"
)

// RegistrationHandler handles the public registration and comment
// endpoints. Both compose a WhatsApp deep link and persist nothing.
type RegistrationHandler struct {
	service services.RegistrationLinkBuilder
}

// NewRegistrationHandler creates a new registration handler
func NewRegistrationHandler(service services.RegistrationLinkBuilder) *RegistrationHandler {
	return &RegistrationHandler{service: service}
}

// Register handles POST /api/v1/register
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req models.RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	link, err := h.service.BuildRegistrationLink(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.RegistrationLinkResponse{Link: link})
}

// Contact handles GET /api/v1/contact, the bare contact button link
func (h *RegistrationHandler) Contact(c *gin.Context) {
	link, err := h.service.BuildContactLink(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.RegistrationLinkResponse{Link: link})
}

// Comment handles POST /api/v1/comment
func (h *RegistrationHandler) Comment(c *gin.Context) {
	var req struct {
		ModuleSlug string `json:"moduleSlug"`
		Message    string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	link, err := h.service.BuildCommentLink(c.Request.Context(), req.ModuleSlug, req.Message)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.RegistrationLinkResponse{Link: link})
}
