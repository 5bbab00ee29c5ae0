package catalog

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/lambda-art/lambdaart-api/internal/models"
	"github.com/lambda-art/lambdaart-api/internal/store"
	"github.com/lambda-art/lambdaart-api/pkg/logger"
)

const storeMirrorReadTimeout = 10 * time.Second

// StoreMirror is the watch-less fallback mirror used when the live
// subscription is disabled. It reads through to the store and caches
// the filtered collection for a TTL, so the catalog stays servable
// without holding a LISTEN connection. It applies the same
// required-field filter as the synchronizer.
type StoreMirror struct {
	cache *gocache.Cache
	store store.Store
	ttl   time.Duration
}

// NewStoreMirror creates a read-through mirror with the given entry TTL
func NewStoreMirror(catalogStore store.Store, ttlSeconds int) *StoreMirror {
	ttl := time.Duration(ttlSeconds) * time.Second
	return &StoreMirror{
		cache: gocache.New(ttl, cacheCheckPeriod),
		store: catalogStore,
		ttl:   ttl,
	}
}

// Get returns the filtered module collection, from cache when fresh
func (m *StoreMirror) Get() ([]*models.Module, error) {
	if data, found := m.cache.Get(allModulesKey); found {
		if modules, ok := data.([]*models.Module); ok {
			return modules, nil
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeMirrorReadTimeout)
	defer cancel()

	all, err := m.store.ListModules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh catalog mirror: %w", err)
	}

	kept := make([]*models.Module, 0, len(all))
	for _, module := range all {
		if !module.HasRequiredFields() {
			logger.Warn("Dropping module with missing required fields",
				zap.String("id", module.ID),
				zap.String("slug", module.Slug))
			continue
		}
		kept = append(kept, module)
	}

	m.cache.Set(allModulesKey, kept, m.ttl)
	return kept, nil
}

// GetBySlug retrieves a single module from the mirrored collection
func (m *StoreMirror) GetBySlug(slug string) (*models.Module, error) {
	modules, err := m.Get()
	if err != nil {
		return nil, err
	}

	for _, module := range modules {
		if module.Slug == slug {
			return module, nil
		}
	}

	return nil, fmt.Errorf("module not found")
}

// TitlesFor resolves module slugs to display titles; an unresolved
// slug falls back to the raw slug string.
func (m *StoreMirror) TitlesFor(slugs []string) []string {
	titles := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		if module, err := m.GetBySlug(slug); err == nil {
			titles = append(titles, module.Title)
		} else {
			titles = append(titles, slug)
		}
	}
	return titles
}

// IsReady always reports true: there is no warm-up phase, the first
// read populates the cache.
func (m *StoreMirror) IsReady() bool {
	return true
}

// Err always reports nil: read errors surface per call instead of
// freezing the mirror.
func (m *StoreMirror) Err() error {
	return nil
}
