package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/lambda-art/lambdaart-api/internal/models"
	"github.com/lambda-art/lambdaart-api/pkg/logger"
)

// moduleNotifyChannel is the NOTIFY channel raised by the modules
// table trigger on every insert, update or delete.
const moduleNotifyChannel = "modules_changed"

// WatchModules opens a live watch on the module collection. A
// dedicated connection LISTENs for change notifications; every change
// triggers a fresh full-collection read that is delivered as one
// snapshot. The current state is delivered immediately on open.
//
// The watch does not reconnect on its own. Any failure after open is
// delivered once on Errors and the watch shuts down; recovery is the
// caller's responsibility.
func (s *PostgresStore) WatchModules(ctx context.Context) (*Subscription, error) {
	watchCtx, cancel := context.WithCancel(ctx)

	conn, err := s.pool.Acquire(watchCtx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to acquire watch connection: %w", err)
	}

	if _, err := conn.Exec(watchCtx, "LISTEN "+moduleNotifyChannel); err != nil {
		conn.Release()
		cancel()
		return nil, fmt.Errorf("failed to listen on %s: %w", moduleNotifyChannel, err)
	}

	sub := &Subscription{
		snapshots: make(chan []*models.Module, 1),
		errs:      make(chan error, 1),
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	go func() {
		defer close(sub.done)
		defer close(sub.snapshots)
		defer close(sub.errs)
		defer conn.Release()

		// Initial snapshot: the collection state at subscription time
		if !s.deliverSnapshot(watchCtx, sub) {
			return
		}

		for {
			_, err := conn.Conn().WaitForNotification(watchCtx)
			if err != nil {
				if errors.Is(watchCtx.Err(), context.Canceled) {
					return
				}

				logger.Error("Module watch connection lost", zap.Error(err))
				sub.errs <- fmt.Errorf("module watch failed: %w", err)
				return
			}

			if !s.deliverSnapshot(watchCtx, sub) {
				return
			}
		}
	}()

	logger.Info("Module watch opened")
	return sub, nil
}

// deliverSnapshot reads the full collection and pushes it to the
// subscriber. Returns false when the watch must shut down.
func (s *PostgresStore) deliverSnapshot(ctx context.Context, sub *Subscription) bool {
	modules, err := s.ListModules(ctx)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return false
		}

		logger.Error("Module watch snapshot read failed", zap.Error(err))
		sub.errs <- fmt.Errorf("module watch snapshot failed: %w", err)
		return false
	}

	select {
	case sub.snapshots <- modules:
		return true
	case <-ctx.Done():
		return false
	}
}
