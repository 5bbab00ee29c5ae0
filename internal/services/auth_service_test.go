package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lambda-art/lambdaart-api/config"
)

func testAdminConfig(t *testing.T) config.AdminSessionConfig {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	return config.AdminSessionConfig{
		AdminEmail:        "admin@lambda-art.bj",
		AdminPasswordHash: string(hash),
		AdminName:         "Lambda Art",
		JWTSecret:         "test-secret-key-for-sessions",
		JWTIssuer:         "lambdaart-api",
		SessionTTLHours:   24,
	}
}

func TestAuthService_LoginSuccess(t *testing.T) {
	svc := NewAuthService(testAdminConfig(t))

	token, session, err := svc.Login("admin@lambda-art.bj", "correct-horse")

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	require.NotNil(t, session)
	assert.Equal(t, "admin@lambda-art.bj", session.Email)
	assert.Equal(t, "Lambda Art", session.Name)
	assert.Equal(t, int64(24*3600), session.ExpiresIn)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@lambda-art.bj", claims.Email)
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	svc := NewAuthService(testAdminConfig(t))

	token, session, err := svc.Login("admin@lambda-art.bj", "wrong")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, token)
	assert.Nil(t, session)
}

func TestAuthService_LoginWrongEmailSameError(t *testing.T) {
	svc := NewAuthService(testAdminConfig(t))

	_, _, wrongEmailErr := svc.Login("intruder@example.com", "correct-horse")
	_, _, wrongPasswordErr := svc.Login("admin@lambda-art.bj", "wrong")

	// A wrong email and a wrong password are indistinguishable
	assert.ErrorIs(t, wrongEmailErr, ErrInvalidCredentials)
	assert.Equal(t, wrongPasswordErr, wrongEmailErr)
}

func TestAuthService_LoginWithoutJWTSecret(t *testing.T) {
	cfg := testAdminConfig(t)
	cfg.JWTSecret = ""
	svc := NewAuthService(cfg)

	_, _, err := svc.Login("admin@lambda-art.bj", "correct-horse")
	assert.ErrorIs(t, err, ErrJWTSecretNotSet)

	_, err = svc.ValidateToken("anything")
	assert.ErrorIs(t, err, ErrJWTSecretNotSet)
}

func TestAuthService_ValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService(testAdminConfig(t))

	_, err := svc.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}

func TestAuthService_SessionCookieAccessors(t *testing.T) {
	cfg := testAdminConfig(t)
	cfg.CookieDomain = "lambda-art.bj"
	cfg.CookieSecure = true
	svc := NewAuthService(cfg)

	assert.Equal(t, 24*3600, svc.GetSessionTTL())
	assert.Equal(t, "lambda-art.bj", svc.GetCookieDomain())
	assert.True(t, svc.GetCookieSecure())
}
