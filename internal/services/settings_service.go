package services

import (
	"context"

	"github.com/lambda-art/lambdaart-api/internal/models"
	"github.com/lambda-art/lambdaart-api/internal/store"
	"github.com/lambda-art/lambdaart-api/pkg/logger"
	"go.uber.org/zap"
)

// SettingsService manages the global settings singleton
type SettingsService struct {
	store         store.Store
	defaultNumber string
}

// NewSettingsService creates a new settings service instance
func NewSettingsService(catalogStore store.Store, defaultNumber string) *SettingsService {
	return &SettingsService{
		store:         catalogStore,
		defaultNumber: defaultNumber,
	}
}

// Get reads the settings document. A missing document yields zero
// values, not an error.
func (s *SettingsService) Get(ctx context.Context) (*models.Settings, error) {
	return s.store.GetSettings(ctx)
}

// EffectiveWhatsappNumber resolves the contact number the site should
// use: the stored value, or the configured default when absent.
func (s *SettingsService) EffectiveWhatsappNumber(ctx context.Context) (string, error) {
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return "", err
	}

	if settings.WhatsappNumber != "" {
		return settings.WhatsappNumber, nil
	}
	return s.defaultNumber, nil
}

// Update merge-writes the settings singleton. The document is created
// lazily on first save and unrelated fields are never destroyed.
func (s *SettingsService) Update(ctx context.Context, patch models.SettingsPatch) (*models.Settings, error) {
	saved, err := s.store.MergeSettings(ctx, patch)
	if err != nil {
		return nil, err
	}

	logger.Info("Settings updated",
		zap.Bool("whatsapp_number_changed", patch.WhatsappNumber != nil))

	return saved, nil
}
