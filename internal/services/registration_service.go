package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/lambda-art/lambdaart-api/internal/models"
	"github.com/lambda-art/lambdaart-api/internal/store"
	"github.com/lambda-art/lambdaart-api/pkg/logger"
	"github.com/lambda-art/lambdaart-api/pkg/metrics"
	"github.com/lambda-art/lambdaart-api/pkg/whatsapp"
)

// RegistrationService builds WhatsApp deep links for registration
// requests and module comments. Registration is a fire-and-forget
// handoff: nothing is written to the store, and once the link is
// handed to the caller the outcome is out of our hands.
type RegistrationService struct {
	store         store.Store
	mirror        CatalogMirror
	defaultNumber string
}

// NewRegistrationService creates a new registration service instance
func NewRegistrationService(catalogStore store.Store, mirror CatalogMirror, defaultNumber string) *RegistrationService {
	return &RegistrationService{
		store:         catalogStore,
		mirror:        mirror,
		defaultNumber: defaultNumber,
	}
}

// BuildRegistrationLink validates the registration form and composes
// the WhatsApp deep link.
//
// Checks run in a fixed order and the first failure wins:
// required fields, then contact-number availability, then the
// Benin-specific contact format (only +229 numbers are format-checked).
func (s *RegistrationService) BuildRegistrationLink(ctx context.Context, req *models.RegistrationRequest) (string, error) {
	// 1. Required fields
	if req.Nom == "" {
		metrics.RegistrationLinks.WithLabelValues("validation_failed").Inc()
		return "", NewValidationError("nom", "Le nom est requis")
	}
	if req.Prenom == "" {
		metrics.RegistrationLinks.WithLabelValues("validation_failed").Inc()
		return "", NewValidationError("prenom", "Le prénom est requis")
	}
	if req.Contact == "" {
		metrics.RegistrationLinks.WithLabelValues("validation_failed").Inc()
		return "", NewValidationError("contact", "Le numéro de contact est requis")
	}
	if len(req.ModulesSouhaites) == 0 {
		metrics.RegistrationLinks.WithLabelValues("validation_failed").Inc()
		return "", NewValidationError("modulesSouhaites", "Veuillez sélectionner au moins un module")
	}

	// 2. A destination number must be available
	number, err := s.resolveContactNumber(ctx)
	if err != nil {
		metrics.RegistrationLinks.WithLabelValues("no_number").Inc()
		return "", err
	}

	// 3. Country-specific format check, only enforced for +229
	if req.CountryCode == "+229" && !models.IsValidBeninContact(req.Contact) {
		metrics.RegistrationLinks.WithLabelValues("validation_failed").Inc()
		return "", NewValidationError("contact", "Le numéro doit comporter 8 chiffres et commencer par 4, 5, 6 ou 7")
	}

	// Slug to title resolution against the mirror; unresolved slugs
	// fall back to the raw slug string
	titles := s.mirror.TitlesFor(req.ModulesSouhaites)

	message := whatsapp.RegistrationMessage(req.Nom, req.Prenom, req.FullContact(), titles, req.Message)
	link := whatsapp.Link(number, message)

	metrics.RegistrationLinks.WithLabelValues("success").Inc()
	logger.Info("Registration link composed",
		zap.Int("module_count", len(req.ModulesSouhaites)))

	return link, nil
}

// BuildCommentLink composes the WhatsApp deep link for a module
// comment. The module title is resolved against the mirror; an
// unknown slug falls back to the raw slug string.
func (s *RegistrationService) BuildCommentLink(ctx context.Context, moduleSlug, comment string) (string, error) {
	if comment == "" {
		metrics.CommentLinks.WithLabelValues("validation_failed").Inc()
		return "", NewValidationError("message", "Le message est requis")
	}

	number, err := s.resolveContactNumber(ctx)
	if err != nil {
		metrics.CommentLinks.WithLabelValues("no_number").Inc()
		return "", err
	}

	title := moduleSlug
	if module, lookupErr := s.mirror.GetBySlug(moduleSlug); lookupErr == nil {
		title = module.Title
	}

	link := whatsapp.Link(number, whatsapp.CommentMessage(title, comment))

	metrics.CommentLinks.WithLabelValues("success").Inc()
	return link, nil
}

// BuildContactLink composes the deep link behind the site's bare
// WhatsApp contact button, pre-filled with the standard greeting.
func (s *RegistrationService) BuildContactLink(ctx context.Context) (string, error) {
	number, err := s.resolveContactNumber(ctx)
	if err != nil {
		metrics.ContactLinks.WithLabelValues("no_number").Inc()
		return "", err
	}

	metrics.ContactLinks.WithLabelValues("success").Inc()
	return whatsapp.Link(number, whatsapp.DefaultGreeting), nil
}

// resolveContactNumber reads the settings singleton and falls back to
// the configured default when the document or field is absent. A
// settings read error does not block registration; the default number
// keeps the workflow alive.
func (s *RegistrationService) resolveContactNumber(ctx context.Context) (string, error) {
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		logger.Warn("Settings read failed, using default contact number", zap.Error(err))
		settings = &models.Settings{}
	}

	number := settings.WhatsappNumber
	if number == "" {
		number = s.defaultNumber
	}
	if number == "" {
		return "", NewValidationError("whatsappNumber", "Le numéro WhatsApp n'est pas configuré")
	}

	return number, nil
}
