package session

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Transport carries raw frames over one duplex connection.
// Send may be called concurrently; Receive is only called by the read loop.
type Transport interface {
	Send(frame string) error
	Receive() (string, error)
	Close() error
}

// Dialer opens a transport to the game endpoint of a market.
type Dialer interface {
	Dial(ctx context.Context, market string) (Transport, error)
}

// WebsocketDialer dials the socket.io websocket endpoint of the game.
type WebsocketDialer struct {
	// Endpoint is a URL template where %s is replaced by the market id.
	Endpoint  string
	UserAgent string
	Dialer    *websocket.Dialer
}

// NewWebsocketDialer creates a dialer from the session configuration.
func NewWebsocketDialer(cfg Config) *WebsocketDialer {
	return &WebsocketDialer{
		Endpoint:  cfg.Endpoint,
		UserAgent: cfg.UserAgent,
		Dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.HandshakeTimeout(),
		},
	}
}

// URL returns the endpoint of market.
func (d *WebsocketDialer) URL(market string) string {
	if strings.Contains(d.Endpoint, "%s") {
		return fmt.Sprintf(d.Endpoint, market)
	}
	return d.Endpoint
}

// Dial implements Dialer.
func (d *WebsocketDialer) Dial(ctx context.Context, market string) (Transport, error) {
	header := http.Header{}
	if d.UserAgent != "" {
		header.Set("User-Agent", d.UserAgent)
	}

	dialer := d.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	conn, resp, err := dialer.DialContext(ctx, d.URL(market), header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", market, err)
	}
	return &websocketTransport{conn: conn}, nil
}

type websocketTransport struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	once    sync.Once
}

func (t *websocketTransport) Send(frame string) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	return t.conn.WriteMessage(websocket.TextMessage, []byte(frame))
}

func (t *websocketTransport) Receive() (string, error) {
	for {
		kind, data, err := t.conn.ReadMessage()
		if err != nil {
			return "", err
		}
		if kind == websocket.TextMessage {
			return string(data), nil
		}
	}
}

func (t *websocketTransport) Close() error {
	var err error
	t.once.Do(func() {
		t.writeMu.Lock()
		_ = t.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		t.writeMu.Unlock()
		err = t.conn.Close()
	})
	return err
}
