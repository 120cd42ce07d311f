package loader

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

type stubFeature struct {
	name    string
	enabled bool
	err     error
	loaded  bool
}

func (f *stubFeature) Name() string    { return f.name }
func (f *stubFeature) IsEnabled() bool { return f.enabled }
func (f *stubFeature) Load(app fiber.Router) error {
	f.loaded = true
	return f.err
}

func TestManager_LoadAll(t *testing.T) {
	enabled := &stubFeature{name: "sync", enabled: true}
	disabled := &stubFeature{name: "maps"}

	mgr := NewManager()
	mgr.Register(enabled)
	mgr.Register(disabled)
	assert.Len(t, mgr.Features(), 2)

	assert.NoError(t, mgr.LoadAll(fiber.New()))
	assert.True(t, enabled.loaded)
	assert.False(t, disabled.loaded)
}

func TestManager_LoadAllFailure(t *testing.T) {
	broken := &stubFeature{name: "sync", enabled: true, err: errors.New("boom")}
	next := &stubFeature{name: "status", enabled: true}

	mgr := NewManager()
	mgr.Register(broken)
	mgr.Register(next)

	err := mgr.LoadAll(fiber.New())
	assert.ErrorContains(t, err, "feature sync")
	assert.False(t, next.loaded)
}
