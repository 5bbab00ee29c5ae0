package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/lambda-art/lambdaart-api/config"
	"github.com/lambda-art/lambdaart-api/internal/catalog"
	"github.com/lambda-art/lambdaart-api/internal/handlers"
	"github.com/lambda-art/lambdaart-api/internal/middleware"
	"github.com/lambda-art/lambdaart-api/internal/services"
	"github.com/lambda-art/lambdaart-api/internal/store"
	"github.com/lambda-art/lambdaart-api/pkg/cloudinary"
	"github.com/lambda-art/lambdaart-api/pkg/db"
	"github.com/lambda-art/lambdaart-api/pkg/httpclient"
	"github.com/lambda-art/lambdaart-api/pkg/jwt"
	"github.com/lambda-art/lambdaart-api/pkg/logger"
	"github.com/lambda-art/lambdaart-api/pkg/metrics"
	"github.com/lambda-art/lambdaart-api/pkg/profiling"
	"github.com/lambda-art/lambdaart-api/pkg/s3storage"
	"github.com/lambda-art/lambdaart-api/pkg/tracing"
)

// newMediaUploader builds the media gateway client selected by config
func newMediaUploader(cfg *config.Config) (services.MediaUploader, error) {
	switch cfg.Media.Backend {
	case "cloudinary":
		return cloudinary.NewClient(
			httpclient.NewStandardClient(),
			cfg.Cloudinary.CloudName,
			cfg.Cloudinary.UploadPreset,
			cfg.Cloudinary.Folder,
		), nil
	case "s3":
		return s3storage.NewStorageClient(
			cfg.S3Storage.AccessKeyID,
			cfg.S3Storage.SecretAccessKey,
			cfg.S3Storage.BucketName,
			cfg.S3Storage.Endpoint,
			cfg.S3Storage.Region,
			cfg.S3Storage.PublicBaseURL,
		)
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.Media.Backend)
	}
}

// registerPublicRoutes registers the public catalog and registration routes
func registerPublicRoutes(
	group *gin.RouterGroup,
	generalRateLimiter, registrationRateLimiter *middleware.RateLimiter,
	moduleHandler *handlers.ModuleHandler,
	registrationHandler *handlers.RegistrationHandler,
) {
	group.GET("/modules", generalRateLimiter.Middleware(), moduleHandler.GetPublicModules)
	group.GET("/modules/:slug", generalRateLimiter.Middleware(), moduleHandler.GetPublicModuleBySlug)
	group.GET("/contact", generalRateLimiter.Middleware(), registrationHandler.Contact)
	group.POST("/register", registrationRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(100*1024), registrationHandler.Register)
	group.POST("/comment", registrationRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(100*1024), registrationHandler.Comment)
}

// registerAdminRoutes registers the dashboard routes behind the session gate
func registerAdminRoutes(
	router *gin.Engine,
	cfg *config.Config,
	authRateLimiter, adminRateLimiter *middleware.RateLimiter,
	tokenManager *jwt.TokenManager,
	adminAuthHandler *handlers.AdminAuthHandler,
	adminModulesHandler *handlers.AdminModulesHandler,
	settingsHandler *handlers.SettingsHandler,
	uploadHandler *handlers.UploadHandler,
) {
	const loginPath = "/login"

	sessionGate := middleware.AdminSessionMiddleware(
		tokenManager,
		loginPath,
		cfg.AdminSession.CookieDomain,
		cfg.AdminSession.CookieSecure,
	)

	// Authentication routes (login itself is public)
	auth := router.Group("/api/v1/admin/auth")
	auth.POST("/login", authRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(10*1024), adminAuthHandler.Login)
	auth.POST("/logout", adminAuthHandler.Logout)
	auth.GET("/session", sessionGate, adminAuthHandler.Session)

	// Dashboard routes (protected, session checked on every request)
	admin := router.Group("/api/v1/admin")
	admin.Use(adminRateLimiter.Middleware(), sessionGate)

	admin.GET("/modules", adminModulesHandler.ListModules)
	admin.GET("/modules/:id", adminModulesHandler.GetModule)
	admin.POST("/modules", middleware.BodySizeLimitMiddleware(60*1024*1024), adminModulesHandler.CreateModule)
	admin.PUT("/modules/:id", middleware.BodySizeLimitMiddleware(60*1024*1024), adminModulesHandler.UpdateModule)
	admin.DELETE("/modules/:id", adminModulesHandler.DeleteModule)

	admin.GET("/settings", settingsHandler.GetSettings)
	admin.PUT("/settings", settingsHandler.UpdateSettings)

	admin.POST("/upload", middleware.BodySizeLimitMiddleware(12*1024*1024), uploadHandler.Upload)
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Lambda'Art API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceNamespace,
		cfg.Observability.ServiceVersion,
		cfg.Observability.ServiceInstanceID,
		cfg.Server.AppEnv,
		cfg.Observability.AlloyEndpoint,
	)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	// Continuous profiling (no-op unless enabled in config)
	stopProfiler, err := profiling.InitProfiler(
		cfg.Profiling,
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceNamespace,
		cfg.Observability.ServiceVersion,
		cfg.Observability.ServiceInstanceID,
		cfg.Server.AppEnv,
	)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer stopProfiler()

	// Start infrastructure metrics collection
	metrics.RecordInfrastructureMetrics()

	// Initialize PostgreSQL connection pool
	pool, err := db.NewPool(context.Background(), db.PoolConfig{
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		logger.Fatal("Failed to initialize database connection pool", zap.Error(err))
	}
	defer pool.Close()

	// NOTE: Database migrations are run separately via the migrate command
	// before starting the app: ./migrate or docker-compose run migrate

	catalogStore := store.NewPostgresStore(pool)

	// Catalog mirror: live watch by default, read-through fallback when
	// the watch is disabled
	var mirror services.CatalogMirror
	var stopMirror func()
	if cfg.Catalog.WatchEnabled {
		synchronizer := catalog.NewSynchronizer(catalog.StoreSource{Store: catalogStore})
		if err := synchronizer.Start(context.Background()); err != nil {
			logger.Fatal("Failed to start catalog synchronizer", zap.Error(err))
		}
		mirror = synchronizer
		stopMirror = synchronizer.Stop
	} else {
		logger.Warn("Catalog watch is DISABLED - serving from a TTL read-through mirror")
		mirror = catalog.NewStoreMirror(catalogStore, cfg.Catalog.MirrorTTLSeconds)
		stopMirror = func() {}
	}
	defer stopMirror()

	// Media gateway client (cloudinary or s3, selected by config)
	uploader, err := newMediaUploader(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize media gateway client", zap.Error(err))
	}

	// Initialize services
	editorService := services.NewEditorService(catalogStore, uploader)
	registrationService := services.NewRegistrationService(catalogStore, mirror, cfg.WhatsApp.DefaultNumber)
	settingsService := services.NewSettingsService(catalogStore, cfg.WhatsApp.DefaultNumber)
	authService := services.NewAuthService(cfg.AdminSession)

	// Initialize handlers
	moduleHandler := handlers.NewModuleHandler(mirror, catalogStore, cfg.Server.BaseURL)
	registrationHandler := handlers.NewRegistrationHandler(registrationService)
	adminModulesHandler := handlers.NewAdminModulesHandler(editorService, catalogStore)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	adminAuthHandler := handlers.NewAdminAuthHandler(authService)
	uploadHandler := handlers.NewUploadHandler(uploader)
	healthHandler := handlers.NewHealthHandler(mirror.IsReady, mirror.Err)

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName)) // OpenTelemetry tracing
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// CORS configuration - only allow the configured site origins
	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true, // Required for the admin session cookie
		MaxAge:           12 * time.Hour,
	}))

	// Rate limiters per endpoint class
	generalRateLimiter := middleware.NewRateLimiter(100, 200)  // catalog browsing
	registrationRateLimiter := middleware.NewRateLimiter(1, 5) // link composition (spam control)
	authRateLimiter := middleware.NewRateLimiter(0.0333, 3)    // ~2 login attempts per minute
	adminRateLimiter := middleware.NewRateLimiter(20, 40)      // dashboard usage
	defer generalRateLimiter.Stop()
	defer registrationRateLimiter.Stop()
	defer authRateLimiter.Stop()
	defer adminRateLimiter.Stop()

	// Utility endpoints (not versioned - operational endpoints)
	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	registerPublicRoutes(v1, generalRateLimiter, registrationRateLimiter, moduleHandler, registrationHandler)

	registerAdminRoutes(router, cfg, authRateLimiter, adminRateLimiter,
		jwt.NewTokenManager(cfg.AdminSession.JWTSecret, cfg.AdminSession.JWTIssuer, cfg.AdminSession.SessionTTLHours),
		adminAuthHandler, adminModulesHandler, settingsHandler, uploadHandler)

	// Create HTTP server
	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
