package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lambda-art/lambdaart-api/internal/middleware"
	"github.com/lambda-art/lambdaart-api/internal/models"
	"github.com/lambda-art/lambdaart-api/internal/services"
)

// AdminAuthHandler handles dashboard authentication endpoints.
type AdminAuthHandler struct {
	service *services.AuthService
}

func NewAdminAuthHandler(service *services.AuthService) *AdminAuthHandler {
	return &AdminAuthHandler{service: service}
}

// Login handles POST /api/v1/admin/auth/login
func (h *AdminAuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		attachError(c, err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": ParseBindingErrors(err),
		})
		return
	}

	token, session, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "Email ou mot de passe incorrect", err)
			return
		}
		if errors.Is(err, services.ErrJWTSecretNotSet) {
			respondError(c, http.StatusInternalServerError, "Service temporarily unavailable", err)
			return
		}
		respondError(c, http.StatusInternalServerError, "Error while logging in", err)
		return
	}

	middleware.SetAdminSessionCookie(
		c,
		token,
		h.service.GetSessionTTL(),
		h.service.GetCookieDomain(),
		h.service.GetCookieSecure(),
	)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": session,
	})
}

// Logout handles POST /api/v1/admin/auth/logout
func (h *AdminAuthHandler) Logout(c *gin.Context) {
	middleware.ClearAdminSessionCookie(
		c,
		h.service.GetCookieDomain(),
		h.service.GetCookieSecure(),
	)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Session handles GET /api/v1/admin/auth/session
func (h *AdminAuthHandler) Session(c *gin.Context) {
	session, err := middleware.GetAdminSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Not authenticated", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": session,
	})
}
