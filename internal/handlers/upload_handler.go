package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lambda-art/lambdaart-api/internal/services"
	"github.com/lambda-art/lambdaart-api/pkg/metrics"
)

// UploadHandler proxies single-file media uploads to the configured
// media gateway. The response contract is the same for both backends:
// {success, url} on success, {success:false, message} on failure.
type UploadHandler struct {
	uploader services.MediaUploader
}

func NewUploadHandler(uploader services.MediaUploader) *UploadHandler {
	return &UploadHandler{uploader: uploader}
}

// Upload handles POST /api/v1/admin/upload
func (h *UploadHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		h.respondFailure(c, http.StatusBadRequest, "Aucun fichier reçu", err)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if err := h.uploader.ValidateImageType(contentType); err != nil {
		h.respondFailure(c, http.StatusBadRequest, "Format d'image non supporté", err)
		return
	}

	file, err := header.Open()
	if err != nil {
		h.respondFailure(c, http.StatusBadRequest, "Fichier illisible", err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.respondFailure(c, http.StatusBadRequest, "Fichier illisible", err)
		return
	}

	if err := h.uploader.ValidateImageSize(data); err != nil {
		h.respondFailure(c, http.StatusBadRequest, "Fichier trop volumineux", err)
		return
	}

	url, err := h.uploader.UploadImage(c.Request.Context(), data, header.Filename, contentType)
	if err != nil {
		metrics.MediaUploads.WithLabelValues("proxy", "error").Inc()
		h.respondFailure(c, http.StatusBadGateway, "Le téléversement du média a échoué", err)
		return
	}

	metrics.MediaUploads.WithLabelValues("proxy", "success").Inc()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"url":     url,
	})
}

func (h *UploadHandler) respondFailure(c *gin.Context, status int, message string, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
	})
}
