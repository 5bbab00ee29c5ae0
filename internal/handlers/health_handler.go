package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	mirrorReady func() bool
	mirrorErr   func() error
}

func NewHealthHandler(mirrorReady func() bool, mirrorErr func() error) *HealthHandler {
	return &HealthHandler{
		mirrorReady: mirrorReady,
		mirrorErr:   mirrorErr,
	}
}

func (h *HealthHandler) Healthcheck(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")

	if !h.mirrorReady() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"reason": "catalog mirror not initialized",
		})
		return
	}

	// A broken subscription freezes the mirror; the service still
	// serves the last good snapshot but reports degraded.
	if err := h.mirrorErr(); err != nil {
		c.JSON(http.StatusOK, gin.H{
			"status": "degraded",
			"reason": "catalog subscription lost",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
