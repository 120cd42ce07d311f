package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"world-sync/core/utils"

	"go.uber.org/zap"
)

// Client is one game session bound to one duplex connection.
// Emit is safe for concurrent use once Connect has returned.
type Client struct {
	transport Transport
	cfg       Config
	logger    *zap.Logger
	pending   *pendingTable
	nextID    atomic.Int64

	opened     chan time.Duration
	openedOnce sync.Once
	ready      chan struct{}
	done       chan struct{}

	mu       sync.Mutex
	killed   bool
	killErr  error
	onKill   []func(error)
	identity *Identity
}

// Connect performs the handshake over transport: it waits for the open frame,
// starts the keep-alive pinger and identifies the client. The returned client
// accepts domain requests immediately.
func Connect(ctx context.Context, transport Transport, cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		transport: transport,
		cfg:       cfg,
		logger:    logger,
		pending:   newPendingTable(cfg.RequestTimeout()),
		opened:    make(chan time.Duration, 1),
		ready:     make(chan struct{}),
		done:      make(chan struct{}),
	}
	go c.readLoop()

	hctx, cancel := context.WithTimeout(ctx, cfg.HandshakeTimeout())
	defer cancel()

	var interval time.Duration
	select {
	case interval = <-c.opened:
	case <-c.done:
		return nil, fmt.Errorf("%w: %w", ErrHandshake, c.Err())
	case <-hctx.Done():
		c.Kill()
		return nil, fmt.Errorf("%w: no open frame: %w", ErrHandshake, hctx.Err())
	}

	go c.pinger(interval)

	if _, err := c.send(hctx, "System/identify", map[string]any{
		"platform":    "browser",
		"device":      cfg.UserAgent,
		"api_version": cfg.ClientVersion,
	}); err != nil {
		c.Kill()
		return nil, fmt.Errorf("%w: identify: %w", ErrHandshake, err)
	}

	close(c.ready)
	logger.Debug("Session identified", zap.Duration("ping_interval", interval))
	return c, nil
}

// Dial opens a transport for market with d and connects over it.
func Dial(ctx context.Context, d Dialer, market string, cfg Config, logger *zap.Logger) (*Client, error) {
	transport, err := d.Dial(ctx, market)
	if err != nil {
		return nil, err
	}
	c, err := Connect(ctx, transport, cfg, logger)
	if err != nil {
		transport.Close()
		return nil, err
	}
	return c, nil
}

// Emit sends a request and waits for its correlated response.
// It fails with ErrProtocolTimeout when no response arrives within the
// request timeout, and with a *RemoteError when the game answers with an error.
func (c *Client) Emit(ctx context.Context, msgType string, data any) (*Message, error) {
	select {
	case <-c.ready:
	case <-c.done:
		return nil, ErrConnectionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return c.send(ctx, msgType, data)
}

func (c *Client) send(ctx context.Context, msgType string, data any) (*Message, error) {
	id := c.nextID.Add(1)
	ch := c.pending.insert(id)

	raw, err := encodeRequest(id, msgType, data, time.Now())
	if err != nil {
		c.pending.expire(id, err)
		return nil, err
	}
	if err := c.transport.Send(raw); err != nil {
		c.pending.expire(id, err)
		return nil, fmt.Errorf("failed to send %s: %w", msgType, err)
	}

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, fmt.Errorf("%s: %w", msgType, res.err)
		}
		if isErrorType(res.msg.Type) {
			return nil, &RemoteError{Type: res.msg.Type, Message: utils.ToString(res.msg.Data["message"])}
		}
		return res.msg, nil
	case <-ctx.Done():
		c.pending.expire(id, ctx.Err())
		return nil, ctx.Err()
	}
}

// Kill closes the connection, fails every pending request with
// ErrConnectionClosed and runs the kill handlers. Only the first call has an effect.
func (c *Client) Kill() {
	c.kill(ErrConnectionClosed)
}

func (c *Client) kill(reason error) {
	c.mu.Lock()
	if c.killed {
		c.mu.Unlock()
		return
	}
	c.killed = true
	c.killErr = reason
	handlers := c.onKill
	c.onKill = nil
	c.mu.Unlock()

	close(c.done)
	c.transport.Close()
	c.pending.failAll(ErrConnectionClosed)

	for _, fn := range handlers {
		fn(reason)
	}
}

// OnKill registers fn to run once the session is killed. If the session is
// already dead fn runs immediately.
func (c *Client) OnKill(fn func(error)) {
	c.mu.Lock()
	if c.killed {
		reason := c.killErr
		c.mu.Unlock()
		fn(reason)
		return
	}
	c.onKill = append(c.onKill, fn)
	c.mu.Unlock()
}

// Done is closed once the session has been killed.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns why the session was killed, or nil while it is alive.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.killErr
}

// Identity returns the authenticated identity of the session, if any.
func (c *Client) Identity() *Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity
}

func (c *Client) setIdentity(id *Identity) {
	c.mu.Lock()
	c.identity = id
	c.mu.Unlock()
}

func (c *Client) readLoop() {
	for {
		raw, err := c.transport.Receive()
		if err != nil {
			c.kill(fmt.Errorf("%w: %w", ErrConnectionClosed, err))
			return
		}

		f, err := decodeFrame(raw)
		if err != nil {
			c.logger.Warn("Dropping malformed frame", zap.Error(err))
			continue
		}

		switch f.kind {
		case packetOpen:
			interval := time.Duration(f.open.PingInterval) * time.Millisecond
			c.openedOnce.Do(func() { c.opened <- interval })
		case packetPing:
			if err := c.transport.Send(string(packetPong)); err != nil {
				c.kill(fmt.Errorf("%w: %w", ErrConnectionClosed, err))
				return
			}
		case packetClose:
			c.kill(ErrConnectionClosed)
			return
		case packetMessage:
			if f.message == nil {
				continue
			}
			if f.message.ID == 0 || !c.pending.resolve(f.message.ID, f.message) {
				c.logger.Debug("Ignoring uncorrelated message",
					zap.String("type", f.message.Type),
					zap.Int64("id", f.message.ID))
			}
		}
	}
}

func (c *Client) pinger(interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.transport.Send(string(packetPing)); err != nil {
				c.kill(fmt.Errorf("%w: %w", ErrConnectionClosed, err))
				return
			}
		case <-c.done:
			return
		}
	}
}
