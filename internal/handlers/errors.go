package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lambda-art/lambdaart-api/internal/services"
	pkgerrors "github.com/lambda-art/lambdaart-api/pkg/errors"
)

// attachError attaches err to the gin context so the observability middleware
// can include the reason in the request log. c.Error() returns *gin.Error (not
// the error interface), so we suppress errcheck here intentionally.
func attachError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err) //nolint:errcheck
	}
}

// respondError sends an error JSON response and attaches the error to the gin context
// so the observability middleware can include the reason in the request log.
func respondError(c *gin.Context, status int, message string, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"error": message})
}

// respondServiceError maps a service-layer error to its HTTP response.
// Field validation failures carry the per-field messages; everything
// else maps on the error sentinel.
func respondServiceError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		attachError(c, err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Validation failed",
			"fields": validationErr.Fields,
		})
		return
	}

	switch {
	case pkgerrors.Is(err, pkgerrors.ErrNotFound):
		respondError(c, http.StatusNotFound, "Not found", err)
	case pkgerrors.Is(err, pkgerrors.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, "Invalid input", err)
	case pkgerrors.Is(err, pkgerrors.ErrUnauthorized):
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
	case pkgerrors.Is(err, pkgerrors.ErrUnavailable):
		respondError(c, http.StatusServiceUnavailable, "Le catalogue est momentanément indisponible", err)
	case pkgerrors.Is(err, pkgerrors.ErrUploadFailed):
		respondError(c, http.StatusBadGateway, "Le téléversement du média a échoué", err)
	default:
		// Unmapped errors are store read/write failures; the backend's
		// own message is part of the response, not just the log line
		attachError(c, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "Internal server error",
			"detail": err.Error(),
		})
	}
}
