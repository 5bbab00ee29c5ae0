package cloudinary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/lambda-art/lambdaart-api/pkg/httpclient"
	"github.com/lambda-art/lambdaart-api/pkg/logger"
	"github.com/lambda-art/lambdaart-api/pkg/metrics"
	"go.uber.org/zap"
)

// Client uploads media to Cloudinary using unsigned upload presets
type Client struct {
	httpClient   httpclient.Client
	uploadURL    string
	uploadPreset string
	folder       string
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewClient creates a new Cloudinary client
func NewClient(httpClient httpclient.Client, cloudName, uploadPreset, folder string) *Client {
	uploadURL := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/image/upload", cloudName)

	logger.Info("Cloudinary client initialized",
		zap.String("cloud_name", cloudName),
		zap.String("folder", folder),
	)

	return &Client{
		httpClient:   httpClient,
		uploadURL:    uploadURL,
		uploadPreset: uploadPreset,
		folder:       folder,
	}
}

// UploadImage uploads an image to Cloudinary and returns its public URL
func (c *Client) UploadImage(ctx context.Context, imageData []byte, fileName, contentType string) (string, error) {
	start := time.Now()
	operation := "uploadImage"

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return "", fmt.Errorf("failed to create multipart field: %w", err)
	}
	if _, err = part.Write(imageData); err != nil {
		return "", fmt.Errorf("failed to write image data: %w", err)
	}
	if err = writer.WriteField("upload_preset", c.uploadPreset); err != nil {
		return "", fmt.Errorf("failed to write upload preset: %w", err)
	}
	if c.folder != "" {
		if err = writer.WriteField("folder", c.folder); err != nil {
			return "", fmt.Errorf("failed to write folder: %w", err)
		}
	}
	if err = writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, body)
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		metrics.MediaStorageRequestDuration.WithLabelValues(operation, "error").Observe(duration)
		metrics.MediaStorageRequestTotal.WithLabelValues(operation, "error").Inc()
		logger.LogAPICall("cloudinary", operation, "error", duration,
			zap.Error(err),
			zap.String("file_name", fileName),
		)
		return "", fmt.Errorf("failed to upload image to Cloudinary: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.MediaStorageRequestDuration.WithLabelValues(operation, "error").Observe(duration)
		metrics.MediaStorageRequestTotal.WithLabelValues(operation, "error").Inc()
		return "", fmt.Errorf("failed to read Cloudinary response: %w", err)
	}

	var parsed uploadResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		metrics.MediaStorageRequestDuration.WithLabelValues(operation, "error").Observe(duration)
		metrics.MediaStorageRequestTotal.WithLabelValues(operation, "error").Inc()
		return "", fmt.Errorf("failed to parse Cloudinary response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.MediaStorageRequestDuration.WithLabelValues(operation, "error").Observe(duration)
		metrics.MediaStorageRequestTotal.WithLabelValues(operation, "error").Inc()
		logger.LogAPICall("cloudinary", operation, "error", duration,
			zap.Int("status_code", resp.StatusCode),
			zap.String("message", parsed.Error.Message),
			zap.String("file_name", fileName),
		)
		return "", fmt.Errorf("cloudinary upload failed with status %d: %s", resp.StatusCode, parsed.Error.Message)
	}

	imageURL := parsed.SecureURL
	if imageURL == "" {
		imageURL = parsed.URL
	}
	if imageURL == "" {
		metrics.MediaStorageRequestDuration.WithLabelValues(operation, "error").Observe(duration)
		metrics.MediaStorageRequestTotal.WithLabelValues(operation, "error").Inc()
		return "", fmt.Errorf("cloudinary response contains no URL")
	}

	metrics.MediaStorageRequestDuration.WithLabelValues(operation, "success").Observe(duration)
	metrics.MediaStorageRequestTotal.WithLabelValues(operation, "success").Inc()
	logger.LogAPICall("cloudinary", operation, "success", duration,
		zap.String("file_name", fileName),
		zap.Int("size_bytes", len(imageData)),
	)

	return imageURL, nil
}

// ValidateImageType validates the image content type
func (c *Client) ValidateImageType(contentType string) error {
	validTypes := map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
		"image/webp": true,
	}

	if !validTypes[strings.ToLower(contentType)] {
		return fmt.Errorf("invalid file type: %s. Allowed types: jpeg, jpg, png, webp", contentType)
	}

	return nil
}

// ValidateImageSize validates the image size (max 10MB)
func (c *Client) ValidateImageSize(imageData []byte) error {
	const maxSize = 10 * 1024 * 1024 // 10MB

	if len(imageData) > maxSize {
		return fmt.Errorf("file too large: %d bytes (max %d bytes)", len(imageData), maxSize)
	}

	return nil
}
