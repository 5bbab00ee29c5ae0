package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/lambda-art/lambdaart-api/internal/models"
)

// MediaUploader is the media host surface the editor needs. Both the
// Cloudinary client and the S3 storage client satisfy it.
type MediaUploader interface {
	UploadImage(ctx context.Context, imageData []byte, fileName, contentType string) (string, error)
	ValidateImageType(contentType string) error
	ValidateImageSize(imageData []byte) error
}

// CatalogMirror is the read surface of the catalog synchronizer
type CatalogMirror interface {
	Get() ([]*models.Module, error)
	GetBySlug(slug string) (*models.Module, error)
	TitlesFor(slugs []string) []string
	IsReady() bool
	Err() error
}

// RegistrationLinkBuilder is the registration service surface the
// public handlers need
type RegistrationLinkBuilder interface {
	BuildRegistrationLink(ctx context.Context, req *models.RegistrationRequest) (string, error)
	BuildCommentLink(ctx context.Context, moduleSlug, comment string) (string, error)
	BuildContactLink(ctx context.Context) (string, error)
}

// ValidationError carries field-scoped validation messages. It is a
// local, recoverable failure: the caller re-prompts the user and
// nothing is logged.
type ValidationError struct {
	Fields models.FieldErrors
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fmt.Sprintf("validation failed on fields %v", fields)
}

// NewValidationError builds a single-field validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: models.FieldErrors{field: message}}
}
