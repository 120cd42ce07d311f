package session

import (
	"context"
	"testing"
	"time"

	"world-sync/core/session/sessiontest"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() Config {
	return Config{
		RequestTimeoutSeconds:   10,
		HandshakeTimeoutSeconds: 5,
		ClientVersion:           "10.*.*",
		UserAgent:               "test-agent",
	}
}

// connectFake returns a client identified against a fresh fake game.
func connectFake(t *testing.T) (*Client, *sessiontest.Game) {
	t.Helper()

	game := sessiontest.NewGame()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := Connect(ctx, game.Connect(true), testConfig(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(c.Kill)
	return c, game
}

func setRequestTimeout(c *Client, d time.Duration) {
	c.pending.mu.Lock()
	c.pending.timeout = d
	c.pending.mu.Unlock()
}
