package sync

import (
	"context"

	"world-sync/core/scheduler"

	"go.uber.org/zap"
)

// Controller is the command surface of the scheduler.
type Controller interface {
	SyncWorld(ctx context.Context, typ scheduler.SyncType, worldID string) (bool, error)
	SyncAll(ctx context.Context, typ scheduler.SyncType) (int, error)
	ToggleWorld(ctx context.Context, typ scheduler.SyncType, worldID string) (bool, error)
	ResetQueue(ctx context.Context, typ scheduler.SyncType) error
	Status(ctx context.Context) (*scheduler.Status, error)
}

// Service handles sync commands.
type Service struct {
	controller Controller
	logger     *zap.Logger
}

// NewService creates a new sync service.
func NewService(controller Controller, logger *zap.Logger) *Service {
	return &Service{controller: controller, logger: logger}
}

// SyncWorld queues one world and reports whether it was not queued already.
func (s *Service) SyncWorld(ctx context.Context, typ, worldID string) (bool, error) {
	t, err := scheduler.ParseSyncType(typ)
	if err != nil {
		return false, err
	}
	return s.controller.SyncWorld(ctx, t, worldID)
}

// SyncAll queues every eligible world and returns how many were queued.
func (s *Service) SyncAll(ctx context.Context, typ string) (int, error) {
	t, err := scheduler.ParseSyncType(typ)
	if err != nil {
		return 0, err
	}
	return s.controller.SyncAll(ctx, t)
}

// ToggleWorld flips the sync switch of a world. An empty type means data.
func (s *Service) ToggleWorld(ctx context.Context, typ, worldID string) (bool, error) {
	if typ == "" {
		typ = string(scheduler.TypeData)
	}
	t, err := scheduler.ParseSyncType(typ)
	if err != nil {
		return false, err
	}
	return s.controller.ToggleWorld(ctx, t, worldID)
}

// ResetQueue resets one pool.
func (s *Service) ResetQueue(ctx context.Context, typ string) error {
	t, err := scheduler.ParseSyncType(typ)
	if err != nil {
		return err
	}
	return s.controller.ResetQueue(ctx, t)
}

// Status returns the scheduler status.
func (s *Service) Status(ctx context.Context) (*scheduler.Status, error) {
	return s.controller.Status(ctx)
}
