package s3storage

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/lambda-art/lambdaart-api/pkg/logger"
	"github.com/lambda-art/lambdaart-api/pkg/metrics"
	"go.uber.org/zap"
)

// StorageClient represents an S3-compatible object storage client
type StorageClient struct {
	s3Client      *s3.Client
	bucketName    string
	publicBaseURL string
}

// NewStorageClient creates a new S3-compatible storage client
func NewStorageClient(accessKeyID, secretAccessKey, bucketName, endpoint, region, publicBaseURL string) (*StorageClient, error) {
	if endpoint == "" {
		endpoint = "https://s3.amazonaws.com"
	}
	if region == "" {
		region = "us-east-1"
	}
	if publicBaseURL == "" {
		publicBaseURL = fmt.Sprintf("%s/%s", endpoint, bucketName)
	}

	s3Client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials: credentials.NewStaticCredentialsProvider(
			accessKeyID,
			secretAccessKey,
			"", // session token not needed
		),
	})

	logger.Info("S3 storage client initialized",
		zap.String("bucket", bucketName),
		zap.String("endpoint", endpoint),
		zap.String("region", region),
	)

	return &StorageClient{
		s3Client:      s3Client,
		bucketName:    bucketName,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

// UploadImage uploads an image to object storage
// Returns the public URL of the uploaded image
func (s *StorageClient) UploadImage(ctx context.Context, imageData []byte, key, contentType string) (string, error) {
	start := time.Now()
	operation := "uploadImage"

	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(imageData),
		ContentType: aws.String(contentType),
	})

	duration := metrics.MeasureDuration(start)

	if err != nil {
		metrics.MediaStorageRequestDuration.WithLabelValues(operation, "error").Observe(duration)
		metrics.MediaStorageRequestTotal.WithLabelValues(operation, "error").Inc()
		logger.LogAPICall("s3_storage", operation, "error", duration,
			zap.Error(err),
			zap.String("key", key),
		)
		return "", fmt.Errorf("failed to upload image to storage: %w", err)
	}

	metrics.MediaStorageRequestDuration.WithLabelValues(operation, "success").Observe(duration)
	metrics.MediaStorageRequestTotal.WithLabelValues(operation, "success").Inc()
	logger.LogAPICall("s3_storage", operation, "success", duration,
		zap.String("key", key),
		zap.Int("size_bytes", len(imageData)),
	)

	return fmt.Sprintf("%s/%s", s.publicBaseURL, key), nil
}

// GenerateKey generates a unique object key for an uploaded file
func (s *StorageClient) GenerateKey(moduleSlug, originalFileName string) string {
	timestamp := time.Now().Unix()
	ext := filepath.Ext(originalFileName)
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("modules/%s/%d%s", moduleSlug, timestamp, ext)
}

// ValidateImageType validates the image content type
func (s *StorageClient) ValidateImageType(contentType string) error {
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
func (s *StorageClient) ValidateImageSize(imageData []byte) error {
	const maxSize = 10 * 1024 * 1024 // 10MB

	if len(imageData) > maxSize {
		return fmt.Errorf("file too large: %d bytes (max %d bytes)", len(imageData), maxSize)
	}

	return nil
}
