package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/lambda-art/lambdaart-api/internal/handlers"
	"github.com/lambda-art/lambdaart-api/internal/models"
	"github.com/lambda-art/lambdaart-api/internal/services"
	"github.com/lambda-art/lambdaart-api/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)

	_ = logger.Initialize(logger.Config{
		Level:       "error",
		Environment: "test",
		ServiceName: "lambdaart-api-test",
	})
}

// MockLinkBuilder implements services.RegistrationLinkBuilder for testing
type MockLinkBuilder struct {
	mock.Mock
}

func (m *MockLinkBuilder) BuildRegistrationLink(ctx context.Context, req *models.RegistrationRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockLinkBuilder) BuildCommentLink(ctx context.Context, moduleSlug, comment string) (string, error) {
	args := m.Called(ctx, moduleSlug, comment)
	return args.String(0), args.Error(1)
}

func (m *MockLinkBuilder) BuildContactLink(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func newRegistrationRouter(service services.RegistrationLinkBuilder) *gin.Engine {
	handler := handlers.NewRegistrationHandler(service)
	router := gin.New()
	router.POST("/register", handler.Register)
	router.POST("/comment", handler.Comment)
	router.GET("/contact", handler.Contact)
	return router
}

func TestRegistrationHandler_Register_Success(t *testing.T) {
	mockService := new(MockLinkBuilder)
	router := newRegistrationRouter(mockService)

	reqBody := models.RegistrationRequest{
		Nom:              "Aby",
		Prenom:           "K",
		CountryCode:      "+229",
		Contact:          "61234567",
		ModulesSouhaites: []string{"perlage"},
	}

	mockService.On("BuildRegistrationLink", mock.Anything, mock.MatchedBy(func(req *models.RegistrationRequest) bool {
		return req.Nom == "Aby" && req.Contact == "61234567"
	})).Return("https://wa.me/22967507870?text=hello", nil)

	body, _ := json.Marshal(reqBody)
	req := httptest.NewRequest("POST", "/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.RegistrationLinkResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "https://wa.me/22967507870?text=hello", resp.Link)
	mockService.AssertExpectations(t)
}

func TestRegistrationHandler_Register_ValidationFailureCarriesFields(t *testing.T) {
	mockService := new(MockLinkBuilder)
	router := newRegistrationRouter(mockService)

	mockService.On("BuildRegistrationLink", mock.Anything, mock.Anything).
		Return("", services.NewValidationError("nom", "Le nom est requis"))

	body, _ := json.Marshal(models.RegistrationRequest{})
	req := httptest.NewRequest("POST", "/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Le nom est requis", resp.Fields["nom"])
}

func TestRegistrationHandler_Register_MalformedBody(t *testing.T) {
	mockService := new(MockLinkBuilder)
	router := newRegistrationRouter(mockService)

	req := httptest.NewRequest("POST", "/register", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "BuildRegistrationLink", mock.Anything, mock.Anything)
}

func TestRegistrationHandler_Contact_Success(t *testing.T) {
	mockService := new(MockLinkBuilder)
	router := newRegistrationRouter(mockService)

	mockService.On("BuildContactLink", mock.Anything).
		Return("https://wa.me/22967507870?text=greeting", nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/contact", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://wa.me/22967507870")
	mockService.AssertExpectations(t)
}

func TestRegistrationHandler_Comment_Success(t *testing.T) {
	mockService := new(MockLinkBuilder)
	router := newRegistrationRouter(mockService)

	mockService.On("BuildCommentLink", mock.Anything, "perlage", "Très beau programme").
		Return("https://wa.me/22967507870?text=comment", nil)

	body, _ := json.Marshal(gin.H{
		"moduleSlug": "perlage",
		"message":    "Très beau programme",
	})
	req := httptest.NewRequest("POST", "/comment", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://wa.me/22967507870")
	mockService.AssertExpectations(t)
}
