package services

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/lambda-art/lambdaart-api/config"
	"github.com/lambda-art/lambdaart-api/internal/models"
	"github.com/lambda-art/lambdaart-api/pkg/jwt"
	"github.com/lambda-art/lambdaart-api/pkg/logger"
	"github.com/lambda-art/lambdaart-api/pkg/metrics"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrJWTSecretNotSet    = errors.New("JWT secret not configured")
)

// AuthService handles the single-admin dashboard login. Credentials
// live in configuration (email plus a bcrypt password hash), not in
// the store.
type AuthService struct {
	config       config.AdminSessionConfig
	tokenManager *jwt.TokenManager
}

// NewAuthService creates a new auth service instance
func NewAuthService(cfg config.AdminSessionConfig) *AuthService {
	var tokenManager *jwt.TokenManager
	if cfg.JWTSecret != "" {
		tokenManager = jwt.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.SessionTTLHours)
	}

	return &AuthService{
		config:       cfg,
		tokenManager: tokenManager,
	}
}

// Login verifies the admin credentials and issues a session token.
// The same error is returned for a wrong email and a wrong password.
func (s *AuthService) Login(email, password string) (string, *models.SessionResponse, error) {
	if s.tokenManager == nil {
		return "", nil, ErrJWTSecretNotSet
	}

	emailMatches := jwt.TimingSafeCompare(email, s.config.AdminEmail)
	passwordErr := bcrypt.CompareHashAndPassword(
		[]byte(s.config.AdminPasswordHash),
		[]byte(password),
	)

	if !emailMatches || passwordErr != nil {
		metrics.AdminLogins.WithLabelValues("failed").Inc()
		logger.Warn("Admin login failed", zap.String("email", email))
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokenManager.GenerateToken(s.config.AdminEmail, s.config.AdminName)
	if err != nil {
		metrics.AdminLogins.WithLabelValues("error").Inc()
		return "", nil, err
	}

	metrics.AdminLogins.WithLabelValues("success").Inc()
	logger.Info("Admin logged in", zap.String("email", s.config.AdminEmail))

	session := &models.SessionResponse{
		Email:     s.config.AdminEmail,
		Name:      s.config.AdminName,
		ExpiresIn: int64(s.tokenManager.GetExpirationTime() / time.Second),
	}

	return token, session, nil
}

// ValidateToken validates a session token and returns its claims
func (s *AuthService) ValidateToken(token string) (*jwt.AdminClaims, error) {
	if s.tokenManager == nil {
		return nil, ErrJWTSecretNotSet
	}
	return s.tokenManager.ValidateToken(token)
}

// GetSessionTTL returns the session lifetime in seconds
func (s *AuthService) GetSessionTTL() int {
	return s.config.SessionTTLHours * 3600
}

// GetCookieDomain returns the session cookie domain
func (s *AuthService) GetCookieDomain() string {
	return s.config.CookieDomain
}

// GetCookieSecure returns whether the session cookie is secure-only
func (s *AuthService) GetCookieSecure() bool {
	return s.config.CookieSecure
}
