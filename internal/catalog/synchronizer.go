package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/lambda-art/lambdaart-api/internal/models"
	"github.com/lambda-art/lambdaart-api/internal/store"
	"github.com/lambda-art/lambdaart-api/pkg/logger"
	"github.com/lambda-art/lambdaart-api/pkg/metrics"
)

const (
	moduleKeyPrefix  = "module:slug:"
	allModulesKey    = "module:all"
	cacheCheckPeriod = 10 * time.Second
	mirrorName       = "modules"
)

// Subscription is the live watch the synchronizer consumes
type Subscription interface {
	Snapshots() <-chan []*models.Module
	Errors() <-chan error
	Cancel()
}

// Source opens module watches. The catalog store satisfies it through
// StoreSource.
type Source interface {
	Watch(ctx context.Context) (Subscription, error)
}

// StoreSource adapts a store.Store to Source
type StoreSource struct {
	Store store.Store
}

// Watch opens a module watch on the underlying store
func (s StoreSource) Watch(ctx context.Context) (Subscription, error) {
	sub, err := s.Store.WatchModules(ctx)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Synchronizer keeps an in-memory mirror of the module collection fed
// by a live store watch. Every push replaces the whole mirror; records
// missing required display fields are dropped with a warning. On
// subscription error the mirror freezes at its last-known state and an
// error flag is raised; the synchronizer does not reconnect on its own.
type Synchronizer struct {
	cache   *gocache.Cache
	source  Source
	sub     Subscription
	wg      sync.WaitGroup
	mu      sync.RWMutex
	ready   bool
	lastErr error
}

// NewSynchronizer creates a synchronizer for the given source
func NewSynchronizer(source Source) *Synchronizer {
	return &Synchronizer{
		cache:  gocache.New(gocache.NoExpiration, cacheCheckPeriod),
		source: source,
	}
}

// Start opens the watch and blocks until the initial snapshot has been
// applied, so callers can serve the catalog as soon as Start returns.
func (s *Synchronizer) Start(ctx context.Context) error {
	logger.Info("Starting catalog synchronizer...")
	startTime := time.Now()

	sub, err := s.source.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to open module watch: %w", err)
	}
	s.sub = sub

	// The first delivery is the collection state at subscription time
	select {
	case modules, ok := <-sub.Snapshots():
		if !ok {
			return fmt.Errorf("module watch closed before initial snapshot")
		}
		s.applySnapshot(modules)
	case err, ok := <-sub.Errors():
		if ok && err != nil {
			return fmt.Errorf("module watch failed before initial snapshot: %w", err)
		}
		return fmt.Errorf("module watch closed before initial snapshot")
	case <-ctx.Done():
		sub.Cancel()
		return ctx.Err()
	}

	s.mu.Lock()
	s.ready = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.consume()

	logger.Info("Catalog synchronizer started",
		zap.Duration("duration", time.Since(startTime)))

	return nil
}

// Stop cancels the watch and waits for the delivery loop to exit.
// After Stop returns, no further snapshot mutates the mirror.
func (s *Synchronizer) Stop() {
	if s.sub == nil {
		return
	}

	s.sub.Cancel()
	s.wg.Wait()
	logger.Info("Catalog synchronizer stopped")
}

// consume applies watch deliveries until the subscription ends
func (s *Synchronizer) consume() {
	defer s.wg.Done()

	snapshots := s.sub.Snapshots()
	errs := s.sub.Errors()

	for snapshots != nil || errs != nil {
		select {
		case modules, ok := <-snapshots:
			if !ok {
				snapshots = nil
				continue
			}
			s.applySnapshot(modules)

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err == nil {
				continue
			}

			// Mirror stays at its last-known state; the only
			// recovery path is a full restart by the caller
			metrics.MirrorErrors.WithLabelValues(mirrorName).Inc()
			logger.Error("Module watch failed, mirror frozen at last-known state",
				zap.Error(err))

			s.mu.Lock()
			s.lastErr = err
			s.mu.Unlock()
		}
	}
}

// applySnapshot replaces the whole mirror with the filtered snapshot
func (s *Synchronizer) applySnapshot(modules []*models.Module) {
	kept := make([]*models.Module, 0, len(modules))
	dropped := 0

	for _, module := range modules {
		if !module.HasRequiredFields() {
			dropped++
			logger.Warn("Dropping module with missing required fields",
				zap.String("id", module.ID),
				zap.String("slug", module.Slug))
			continue
		}
		kept = append(kept, module)
	}

	if dropped > 0 {
		metrics.MirrorDroppedModules.WithLabelValues(mirrorName).Add(float64(dropped))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Full replace: stale entries from the previous snapshot must not
	// survive
	s.cache.Flush()

	slugs := make([]string, 0, len(kept))
	for _, module := range kept {
		s.cache.Set(moduleKeyPrefix+module.Slug, module, gocache.NoExpiration)
		slugs = append(slugs, module.Slug)
	}

	s.cache.Set(allModulesKey, slugs, gocache.NoExpiration)

	metrics.MirrorModules.WithLabelValues(mirrorName).Set(float64(len(kept)))
	metrics.MirrorSnapshots.WithLabelValues(mirrorName).Inc()

	logger.Info("Catalog mirror replaced",
		zap.Int("count", len(kept)),
		zap.Int("dropped", dropped))
}

// IsReady returns true once the initial snapshot has been applied
func (s *Synchronizer) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Err returns the subscription error that froze the mirror, if any
func (s *Synchronizer) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// GetBySlug retrieves a single module from the mirror
func (s *Synchronizer) GetBySlug(slug string) (*models.Module, error) {
	if !s.IsReady() {
		return nil, fmt.Errorf("catalog mirror not initialized")
	}

	data, found := s.cache.Get(moduleKeyPrefix + slug)
	if !found {
		return nil, fmt.Errorf("module not found")
	}

	module, ok := data.(*models.Module)
	if !ok {
		logger.Error("Invalid mirror data type", zap.String("slug", slug))
		return nil, fmt.Errorf("invalid mirror data")
	}

	return module, nil
}

// Get returns all mirrored modules in snapshot order
func (s *Synchronizer) Get() ([]*models.Module, error) {
	if !s.IsReady() {
		return nil, fmt.Errorf("catalog mirror not initialized")
	}

	slugsData, found := s.cache.Get(allModulesKey)
	if !found {
		logger.Warn("Module list missing from mirror, returning empty")
		return []*models.Module{}, nil
	}

	slugs, ok := slugsData.([]string)
	if !ok {
		logger.Error("Invalid mirror data type for module list")
		return []*models.Module{}, nil
	}

	modules := make([]*models.Module, 0, len(slugs))
	for _, slug := range slugs {
		module, err := s.GetBySlug(slug)
		if err != nil {
			continue
		}
		modules = append(modules, module)
	}

	return modules, nil
}

// TitlesFor resolves module slugs to display titles against the
// mirror. An unresolved slug falls back to the raw slug string.
func (s *Synchronizer) TitlesFor(slugs []string) []string {
	titles := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		if module, err := s.GetBySlug(slug); err == nil {
			titles = append(titles, module.Title)
		} else {
			titles = append(titles, slug)
		}
	}
	return titles
}
