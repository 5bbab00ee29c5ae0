package store

import (
	"context"

	"github.com/lambda-art/lambdaart-api/internal/models"
)

// Store is the catalog document store: module records plus the global
// settings singleton. It supports point reads, full-collection reads,
// a live watch, inserts, updates and deletes.
type Store interface {
	ListModules(ctx context.Context) ([]*models.Module, error)
	GetModuleByID(ctx context.Context, id string) (*models.Module, error)
	GetModuleBySlug(ctx context.Context, slug string) (*models.Module, error)
	CreateModule(ctx context.Context, module *models.Module) (*models.Module, error)
	UpdateModule(ctx context.Context, module *models.Module) (*models.Module, error)
	DeleteModule(ctx context.Context, id string) error

	GetSettings(ctx context.Context) (*models.Settings, error)
	MergeSettings(ctx context.Context, patch models.SettingsPatch) (*models.Settings, error)

	// WatchModules opens a standing subscription on the module
	// collection. Each push delivers a full-collection snapshot.
	WatchModules(ctx context.Context) (*Subscription, error)

	// Ping probes store connectivity
	Ping(ctx context.Context) error
}

// Subscription is a live watch on the module collection.
//
// Snapshots delivers full-collection states, starting with the current
// state at subscription time. Errors delivers at most one terminal
// error; after an error no further snapshots are sent and the caller
// must open a new subscription to recover. Cancel tears the watch
// down; both channels are closed once the watch goroutine exits, so no
// delivery happens after Cancel returns control via channel close.
type Subscription struct {
	snapshots chan []*models.Module
	errs      chan error
	cancel    context.CancelFunc
	done      chan struct{}
}

// Snapshots returns the snapshot delivery channel
func (s *Subscription) Snapshots() <-chan []*models.Module {
	return s.snapshots
}

// Errors returns the terminal error channel
func (s *Subscription) Errors() <-chan error {
	return s.errs
}

// Cancel stops the subscription and waits for the delivery goroutine
// to exit. No snapshot or error is delivered after Cancel returns.
func (s *Subscription) Cancel() {
	s.cancel()
	<-s.done
}
