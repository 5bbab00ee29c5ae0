package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validTestConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8081",
			BaseURL:        "https://lambda-art.com",
			AllowedOrigins: []string{"https://lambda-art.com"},
		},
		Database: DatabaseConfig{URL: "postgres://localhost/lambdaart"},
		Media:    MediaConfig{Backend: "cloudinary"},
		Cloudinary: CloudinaryConfig{
			CloudName:    "lambda-art",
			UploadPreset: "modules",
		},
		AdminSession: AdminSessionConfig{
			JWTSecret:         "secret",
			AdminEmail:        "admin@lambda-art.com",
			AdminPasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		},
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected bool
	}{
		{
			name: "development environment",
			config: &Config{
				Server: ServerConfig{AppEnv: "development"},
			},
			expected: true,
		},
		{
			name: "debug gin mode",
			config: &Config{
				Server: ServerConfig{GinMode: "debug"},
			},
			expected: true,
		},
		{
			name: "production environment",
			config: &Config{
				Server: ServerConfig{AppEnv: "production"},
			},
			expected: false,
		},
		{
			name: "release mode",
			config: &Config{
				Server: ServerConfig{GinMode: "release", AppEnv: "production"},
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.config.IsDevelopment()
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected bool
	}{
		{
			name: "production environment",
			config: &Config{
				Server: ServerConfig{AppEnv: "production"},
			},
			expected: true,
		},
		{
			name: "development environment",
			config: &Config{
				Server: ServerConfig{AppEnv: "development"},
			},
			expected: false,
		},
		{
			name: "staging environment",
			config: &Config{
				Server: ServerConfig{AppEnv: "staging"},
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.config.IsProduction()
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:        "valid cloudinary config",
			mutate:      func(c *Config) {},
			expectError: false,
		},
		{
			name: "valid s3 config",
			mutate: func(c *Config) {
				c.Media.Backend = "s3"
				c.S3Storage = S3StorageConfig{
					AccessKeyID:     "key",
					SecretAccessKey: "secret",
					BucketName:      "lambdaart-media",
				}
			},
			expectError: false,
		},
		{
			name:        "missing database URL",
			mutate:      func(c *Config) { c.Database.URL = "" },
			expectError: true,
			errorMsg:    "DATABASE_URL is required",
		},
		{
			name:        "missing cloudinary cloud name",
			mutate:      func(c *Config) { c.Cloudinary.CloudName = "" },
			expectError: true,
			errorMsg:    "CLOUDINARY_CLOUD_NAME is required",
		},
		{
			name: "missing s3 bucket",
			mutate: func(c *Config) {
				c.Media.Backend = "s3"
			},
			expectError: true,
			errorMsg:    "S3_STORAGE_BUCKET_NAME is required",
		},
		{
			name:        "unknown media backend",
			mutate:      func(c *Config) { c.Media.Backend = "ftp" },
			expectError: true,
			errorMsg:    "MEDIA_BACKEND must be either cloudinary or s3",
		},
		{
			name:        "missing JWT secret",
			mutate:      func(c *Config) { c.AdminSession.JWTSecret = "" },
			expectError: true,
			errorMsg:    "JWT_SECRET is required",
		},
		{
			name:        "missing admin email",
			mutate:      func(c *Config) { c.AdminSession.AdminEmail = "" },
			expectError: true,
			errorMsg:    "ADMIN_EMAIL is required",
		},
		{
			name:        "missing admin password hash",
			mutate:      func(c *Config) { c.AdminSession.AdminPasswordHash = "" },
			expectError: true,
			errorMsg:    "ADMIN_PASSWORD_HASH is required",
		},
		{
			name: "profiling enabled without endpoint",
			mutate: func(c *Config) {
				c.Profiling.Enabled = true
			},
			expectError: true,
			errorMsg:    "O11Y_PROFILING_ENDPOINT is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_WithDefaults(t *testing.T) {
	chdirTemp(t)

	// Clean environment
	os.Clearenv()

	// Set only required fields
	os.Setenv("DATABASE_URL", "postgres://localhost/lambdaart")
	os.Setenv("CLOUDINARY_CLOUD_NAME", "lambda-art")
	os.Setenv("CLOUDINARY_UPLOAD_PRESET", "modules")
	os.Setenv("JWT_SECRET", "secret")
	os.Setenv("ADMIN_EMAIL", "admin@lambda-art.com")
	os.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abcdefghijklmnopqrstuv")

	cfg, err := Load()

	assert.NoError(t, err)
	assert.NotNil(t, cfg)

	// Check defaults
	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.GinMode)
	assert.Equal(t, "production", cfg.Server.AppEnv)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "/app/logs", cfg.Logging.Dir)
	assert.Equal(t, "cloudinary", cfg.Media.Backend)
	assert.Equal(t, "modules", cfg.Cloudinary.Folder)
	assert.Equal(t, "+22967507870", cfg.WhatsApp.DefaultNumber)
	assert.Equal(t, 600, cfg.Catalog.MirrorTTLSeconds)
	assert.True(t, cfg.Catalog.WatchEnabled)
	assert.Equal(t, 24, cfg.AdminSession.SessionTTLHours)
	assert.Equal(t, "lambdaart-api", cfg.AdminSession.JWTIssuer)
}

func TestLoad_WithEnvironmentVariables(t *testing.T) {
	chdirTemp(t)

	// Clean environment
	os.Clearenv()

	// Set environment variables
	os.Setenv("PORT", "9000")
	os.Setenv("GIN_MODE", "debug")
	os.Setenv("APP_ENV", "development")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("DATABASE_URL", "postgres://db:5432/lambdaart")
	os.Setenv("MEDIA_BACKEND", "s3")
	os.Setenv("S3_STORAGE_ACCESS_KEY_ID", "key-123")
	os.Setenv("S3_STORAGE_SECRET_ACCESS_KEY", "secret-456")
	os.Setenv("S3_STORAGE_BUCKET_NAME", "lambdaart-media")
	os.Setenv("S3_STORAGE_ENDPOINT", "https://storage.example.com")
	os.Setenv("S3_STORAGE_REGION", "eu-west-1")
	os.Setenv("WHATSAPP_DEFAULT_NUMBER", "+22960000000")
	os.Setenv("JWT_SECRET", "secret")
	os.Setenv("ADMIN_EMAIL", "admin@lambda-art.com")
	os.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abcdefghijklmnopqrstuv")

	cfg, err := Load()

	assert.NoError(t, err)
	assert.NotNil(t, cfg)

	// Verify values from environment
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.GinMode)
	assert.Equal(t, "development", cfg.Server.AppEnv)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "postgres://db:5432/lambdaart", cfg.Database.URL)
	assert.Equal(t, "s3", cfg.Media.Backend)
	assert.Equal(t, "key-123", cfg.S3Storage.AccessKeyID)
	assert.Equal(t, "lambdaart-media", cfg.S3Storage.BucketName)
	assert.Equal(t, "eu-west-1", cfg.S3Storage.Region)
	assert.Equal(t, "+22960000000", cfg.WhatsApp.DefaultNumber)
}

func TestLoad_ValidationFailure(t *testing.T) {
	chdirTemp(t)

	// Clean environment - missing required fields
	os.Clearenv()
	os.Setenv("DATABASE_URL", "postgres://localhost/lambdaart")
	// Missing cloudinary credentials and admin session settings

	cfg, err := Load()

	assert.Error(t, err)
	assert.Nil(t, cfg)
}

// chdirTemp moves to an empty directory so a workspace .env file
// cannot leak into Load tests.
func chdirTemp(t *testing.T) {
	t.Helper()

	originalDir, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(originalDir) })

	os.Chdir(t.TempDir())
}
