package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Media         MediaConfig
	Cloudinary    CloudinaryConfig
	S3Storage     S3StorageConfig
	WhatsApp      WhatsAppConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
	Catalog       CatalogConfig
	AdminSession  AdminSessionConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	BaseURL        string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	URL      string
	MaxConns int32
	MinConns int32
}

// MediaConfig selects the media storage backend for icon and gallery uploads.
// Backend is "cloudinary" or "s3".
type MediaConfig struct {
	Backend string
}

type CloudinaryConfig struct {
	CloudName    string
	UploadPreset string
	Folder       string
}

type S3StorageConfig struct {
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Endpoint        string
	Region          string
	PublicBaseURL   string
}

type WhatsAppConfig struct {
	DefaultNumber string
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	AlloyEndpoint     string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

type CatalogConfig struct {
	MirrorTTLSeconds int // Module mirror fallback TTL in seconds (mirror entries never expire while the watch is live)
	WatchEnabled     bool
}

type AdminSessionConfig struct {
	AdminEmail        string
	AdminPasswordHash string // bcrypt hash of the admin password
	AdminName         string
	JWTSecret         string
	JWTIssuer         string
	SessionTTLHours   int
	CookieDomain      string
	CookieSecure      bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "8081")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("BASE_URL", "https://lambda-art.com")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "https://lambda-art.com,https://www.lambda-art.com")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "/app/logs")
	v.SetDefault("MEDIA_BACKEND", "cloudinary")
	v.SetDefault("CLOUDINARY_FOLDER", "modules")
	v.SetDefault("WHATSAPP_DEFAULT_NUMBER", "+22967507870")
	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "alloy:4318") // OTLP over HTTP
	v.SetDefault("O11Y_BE_SERVICE_NAME", "lambdaart-api")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "lambdaart")
	v.SetDefault("O11Y_BE_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "lambdaart-api")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,alloc_objects,goroutines,mutex,block")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)
	v.SetDefault("MODULE_MIRROR_TTL", 600) // 10 minutes in seconds
	v.SetDefault("CATALOG_WATCH_ENABLED", true)

	// Admin session defaults
	v.SetDefault("JWT_ISSUER", "lambdaart-api")
	v.SetDefault("SESSION_TTL_HOURS", 24)
	v.SetDefault("COOKIE_DOMAIN", "")
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("ADMIN_NAME", "Lambda Art")

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	// Parse allowed CORS origins (comma-separated)
	allowedOrigins := []string{}
	originsStr := v.GetString("ALLOWED_CORS_ORIGINS")
	if originsStr != "" {
		for _, origin := range strings.Split(originsStr, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins = append(allowedOrigins, origin)
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			BaseURL:        v.GetString("BASE_URL"),
			AllowedOrigins: allowedOrigins,
		},
		Database: DatabaseConfig{
			URL:      v.GetString("DATABASE_URL"),
			MaxConns: 20,
			MinConns: 2,
		},
		Media: MediaConfig{
			Backend: strings.ToLower(v.GetString("MEDIA_BACKEND")),
		},
		Cloudinary: CloudinaryConfig{
			CloudName:    v.GetString("CLOUDINARY_CLOUD_NAME"),
			UploadPreset: v.GetString("CLOUDINARY_UPLOAD_PRESET"),
			Folder:       v.GetString("CLOUDINARY_FOLDER"),
		},
		S3Storage: S3StorageConfig{
			AccessKeyID:     v.GetString("S3_STORAGE_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("S3_STORAGE_SECRET_ACCESS_KEY"),
			BucketName:      v.GetString("S3_STORAGE_BUCKET_NAME"),
			Endpoint:        v.GetString("S3_STORAGE_ENDPOINT"),
			Region:          v.GetString("S3_STORAGE_REGION"),
			PublicBaseURL:   v.GetString("S3_STORAGE_PUBLIC_BASE_URL"),
		},
		WhatsApp: WhatsAppConfig{
			DefaultNumber: v.GetString("WHATSAPP_DEFAULT_NUMBER"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			AlloyEndpoint:     v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_BE_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_BE_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
		Catalog: CatalogConfig{
			MirrorTTLSeconds: v.GetInt("MODULE_MIRROR_TTL"),
			WatchEnabled:     v.GetBool("CATALOG_WATCH_ENABLED"),
		},
		AdminSession: AdminSessionConfig{
			AdminEmail:        v.GetString("ADMIN_EMAIL"),
			AdminPasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
			AdminName:         v.GetString("ADMIN_NAME"),
			JWTSecret:         v.GetString("JWT_SECRET"),
			JWTIssuer:         v.GetString("JWT_ISSUER"),
			SessionTTLHours:   v.GetInt("SESSION_TTL_HOURS"),
			CookieDomain:      v.GetString("COOKIE_DOMAIN"),
			CookieSecure:      v.GetBool("COOKIE_SECURE"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	// Database configuration
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	// Server configuration
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Server.BaseURL == "" {
		return fmt.Errorf("BASE_URL is required")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_CORS_ORIGINS is required")
	}

	// Media storage backend
	switch c.Media.Backend {
	case "cloudinary":
		if c.Cloudinary.CloudName == "" {
			return fmt.Errorf("CLOUDINARY_CLOUD_NAME is required when MEDIA_BACKEND is cloudinary")
		}
		if c.Cloudinary.UploadPreset == "" {
			return fmt.Errorf("CLOUDINARY_UPLOAD_PRESET is required when MEDIA_BACKEND is cloudinary")
		}
	case "s3":
		if c.S3Storage.BucketName == "" {
			return fmt.Errorf("S3_STORAGE_BUCKET_NAME is required when MEDIA_BACKEND is s3")
		}
		if c.S3Storage.AccessKeyID == "" || c.S3Storage.SecretAccessKey == "" {
			return fmt.Errorf("S3 storage credentials are required when MEDIA_BACKEND is s3")
		}
	default:
		return fmt.Errorf("MEDIA_BACKEND must be either cloudinary or s3, got %q", c.Media.Backend)
	}

	// Admin session
	if c.AdminSession.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.AdminSession.AdminEmail == "" {
		return fmt.Errorf("ADMIN_EMAIL is required")
	}
	if c.AdminSession.AdminPasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD_HASH is required")
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("O11Y_PROFILING_ENDPOINT is required when profiling is enabled")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}
