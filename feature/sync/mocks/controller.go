package mocks

import (
	"context"

	"world-sync/core/scheduler"

	"github.com/stretchr/testify/mock"
)

// Controller is a mock implementation of sync.Controller
type Controller struct {
	mock.Mock
}

func (m *Controller) SyncWorld(ctx context.Context, typ scheduler.SyncType, worldID string) (bool, error) {
	args := m.Called(ctx, typ, worldID)
	return args.Bool(0), args.Error(1)
}

func (m *Controller) SyncAll(ctx context.Context, typ scheduler.SyncType) (int, error) {
	args := m.Called(ctx, typ)
	return args.Int(0), args.Error(1)
}

func (m *Controller) ToggleWorld(ctx context.Context, typ scheduler.SyncType, worldID string) (bool, error) {
	args := m.Called(ctx, typ, worldID)
	return args.Bool(0), args.Error(1)
}

func (m *Controller) ResetQueue(ctx context.Context, typ scheduler.SyncType) error {
	args := m.Called(ctx, typ)
	return args.Error(0)
}

func (m *Controller) Status(ctx context.Context) (*scheduler.Status, error) {
	args := m.Called(ctx)
	status, _ := args.Get(0).(*scheduler.Status)
	return status, args.Error(1)
}
