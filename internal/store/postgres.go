package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/lambda-art/lambdaart-api/internal/models"
	pkgerrors "github.com/lambda-art/lambdaart-api/pkg/errors"
	"github.com/lambda-art/lambdaart-api/pkg/logger"
	"github.com/lambda-art/lambdaart-api/pkg/metrics"
)

// PostgresStore implements Store on top of PostgreSQL, holding module
// records as jsonb documents and using LISTEN/NOTIFY for the watch.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store backed by the given connection pool
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// moduleDoc is the jsonb document body of a module row. The row id and
// timestamps live in dedicated columns.
type moduleDoc struct {
	Slug      string   `json:"slug"`
	Title     string   `json:"title"`
	ShortDesc string   `json:"shortDesc"`
	LongDesc  string   `json:"longDesc"`
	IconSrc   string   `json:"iconSrc"`
	Gallery   []string `json:"gallery"`
}

func toDoc(m *models.Module) moduleDoc {
	gallery := m.Gallery
	if gallery == nil {
		gallery = []string{}
	}
	return moduleDoc{
		Slug:      m.Slug,
		Title:     m.Title,
		ShortDesc: m.ShortDesc,
		LongDesc:  m.LongDesc,
		IconSrc:   m.IconSrc,
		Gallery:   gallery,
	}
}

func fromDoc(id string, raw []byte, createdAt, updatedAt time.Time) (*models.Module, error) {
	var doc moduleDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode module document %s: %w", id, err)
	}

	gallery := doc.Gallery
	if gallery == nil {
		gallery = []string{}
	}

	return &models.Module{
		ID:        id,
		Slug:      doc.Slug,
		Title:     doc.Title,
		ShortDesc: doc.ShortDesc,
		LongDesc:  doc.LongDesc,
		IconSrc:   doc.IconSrc,
		Gallery:   gallery,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func recordMetrics(operation, status string, duration float64) {
	metrics.StoreRequestDuration.WithLabelValues(operation, status).Observe(duration)
	metrics.StoreRequestTotal.WithLabelValues(operation, status).Inc()
}

// ListModules fetches the full module collection
func (s *PostgresStore) ListModules(ctx context.Context) ([]*models.Module, error) {
	start := time.Now()
	operation := "listModules"

	rows, err := s.pool.Query(ctx, `
		SELECT id, doc, created_at, updated_at
		FROM modules
		ORDER BY created_at ASC
	`)
	if err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to query modules: %w", err)
	}
	defer rows.Close()

	modules := make([]*models.Module, 0)
	for rows.Next() {
		var (
			id                   string
			raw                  []byte
			createdAt, updatedAt time.Time
		)
		if err := rows.Scan(&id, &raw, &createdAt, &updatedAt); err != nil {
			duration := metrics.MeasureDuration(start)
			recordMetrics(operation, "error", duration)
			logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
			return nil, fmt.Errorf("failed to scan module row: %w", err)
		}

		module, err := fromDoc(id, raw, createdAt, updatedAt)
		if err != nil {
			// A single undecodable document must not take down the
			// whole collection read
			logger.Warn("Skipping undecodable module document",
				zap.String("id", id),
				zap.Error(err))
			continue
		}
		modules = append(modules, module)
	}

	if err := rows.Err(); err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("error iterating module rows: %w", err)
	}

	duration := metrics.MeasureDuration(start)
	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration, zap.Int("count", len(modules)))

	return modules, nil
}

// GetModuleByID fetches a single module by its store id
func (s *PostgresStore) GetModuleByID(ctx context.Context, id string) (*models.Module, error) {
	return s.getModule(ctx, "getModuleByID", "id = $1", id)
}

// GetModuleBySlug fetches a single module by slug. Slug uniqueness is
// advisory: if two modules share a slug the oldest one wins.
func (s *PostgresStore) GetModuleBySlug(ctx context.Context, slug string) (*models.Module, error) {
	return s.getModule(ctx, "getModuleBySlug", "doc->>'slug' = $1", slug)
}

func (s *PostgresStore) getModule(ctx context.Context, operation, whereClause string, arg interface{}) (*models.Module, error) {
	start := time.Now()

	query := fmt.Sprintf(`
		SELECT id, doc, created_at, updated_at
		FROM modules
		WHERE %s
		ORDER BY created_at ASC
		LIMIT 1
	`, whereClause)

	var (
		id                   string
		raw                  []byte
		createdAt, updatedAt time.Time
	)
	err := s.pool.QueryRow(ctx, query, arg).Scan(&id, &raw, &createdAt, &updatedAt)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			recordMetrics(operation, "not_found", duration)
			return nil, pkgerrors.NotFoundError("module")
		}
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to query module: %w", err)
	}

	module, err := fromDoc(id, raw, createdAt, updatedAt)
	if err != nil {
		recordMetrics(operation, "error", duration)
		return nil, err
	}

	recordMetrics(operation, "success", duration)
	return module, nil
}

// CreateModule inserts a new module document and returns it with the
// store-assigned id
func (s *PostgresStore) CreateModule(ctx context.Context, module *models.Module) (*models.Module, error) {
	start := time.Now()
	operation := "createModule"

	docJSON, err := json.Marshal(toDoc(module))
	if err != nil {
		return nil, fmt.Errorf("failed to encode module document: %w", err)
	}

	var (
		id                   string
		createdAt, updatedAt time.Time
	)
	err = s.pool.QueryRow(ctx, `
		INSERT INTO modules (doc)
		VALUES ($1)
		RETURNING id, created_at, updated_at
	`, docJSON).Scan(&id, &createdAt, &updatedAt)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to create module: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration,
		zap.String("id", id),
		zap.String("slug", module.Slug))

	saved := *module
	saved.ID = id
	saved.CreatedAt = createdAt
	saved.UpdatedAt = updatedAt
	return &saved, nil
}

// UpdateModule replaces the document of an existing module, keyed by id
func (s *PostgresStore) UpdateModule(ctx context.Context, module *models.Module) (*models.Module, error) {
	start := time.Now()
	operation := "updateModule"

	if module.ID == "" {
		return nil, pkgerrors.InvalidInputError("id", "required for update")
	}

	docJSON, err := json.Marshal(toDoc(module))
	if err != nil {
		return nil, fmt.Errorf("failed to encode module document: %w", err)
	}

	var createdAt, updatedAt time.Time
	err = s.pool.QueryRow(ctx, `
		UPDATE modules
		SET doc = $2, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at
	`, module.ID, docJSON).Scan(&createdAt, &updatedAt)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			recordMetrics(operation, "not_found", duration)
			return nil, pkgerrors.NotFoundError("module")
		}
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to update module: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration,
		zap.String("id", module.ID),
		zap.String("slug", module.Slug))

	saved := *module
	saved.CreatedAt = createdAt
	saved.UpdatedAt = updatedAt
	return &saved, nil
}

// DeleteModule removes a module document by id
func (s *PostgresStore) DeleteModule(ctx context.Context, id string) error {
	start := time.Now()
	operation := "deleteModule"

	tag, err := s.pool.Exec(ctx, `DELETE FROM modules WHERE id = $1`, id)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to delete module: %w", err)
	}

	if tag.RowsAffected() == 0 {
		recordMetrics(operation, "not_found", duration)
		return pkgerrors.NotFoundError("module")
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration, zap.String("id", id))

	return nil
}

// GetSettings reads the global settings document. A missing document
// is not an error: callers receive zero values and apply their own
// defaults.
func (s *PostgresStore) GetSettings(ctx context.Context) (*models.Settings, error) {
	start := time.Now()
	operation := "getSettings"

	var raw []byte
	err := s.pool.QueryRow(ctx, `
		SELECT doc FROM settings WHERE key = $1
	`, models.SettingsKey).Scan(&raw)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			recordMetrics(operation, "not_found", duration)
			return &models.Settings{}, nil
		}
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}

	var settings models.Settings
	if err := json.Unmarshal(raw, &settings); err != nil {
		recordMetrics(operation, "error", duration)
		return nil, fmt.Errorf("failed to decode settings document: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return &settings, nil
}

// MergeSettings merge-writes the settings singleton: the document is
// created lazily on first save, and fields absent from the patch are
// preserved.
func (s *PostgresStore) MergeSettings(ctx context.Context, patch models.SettingsPatch) (*models.Settings, error) {
	start := time.Now()
	operation := "mergeSettings"

	patchJSON, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode settings patch: %w", err)
	}

	var raw []byte
	err = s.pool.QueryRow(ctx, `
		INSERT INTO settings (key, doc)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET doc = settings.doc || excluded.doc
		RETURNING doc
	`, models.SettingsKey, patchJSON).Scan(&raw)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to merge settings: %w", err)
	}

	var settings models.Settings
	if err := json.Unmarshal(raw, &settings); err != nil {
		recordMetrics(operation, "error", duration)
		return nil, fmt.Errorf("failed to decode settings document: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration)

	return &settings, nil
}

// Ping probes store connectivity
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
