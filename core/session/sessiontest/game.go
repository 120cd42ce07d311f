// Package sessiontest provides an in-memory game server for session tests.
//
// A Game answers requests on any number of Pipe connections. Requests
// without a registered handler are echoed back with an empty payload; a
// handler returning nil leaves the request unanswered.
package sessiontest

import (
	"encoding/json"
	"io"
	"strings"
	"sync"
)

// OpenFrame is the engine.io open frame sent on connect.
const OpenFrame = `0{"sid":"test","pingInterval":25000,"pingTimeout":60000}`

// Request is a request received by the game.
type Request struct {
	ID   int64
	Type string
	Data map[string]any
}

// Reply is the answer to a request.
type Reply struct {
	Type string
	Data any
}

// Handler answers one request type.
type Handler func(req Request) *Reply

// Game is a fake game server.
type Game struct {
	mu       sync.Mutex
	handlers map[string]Handler
	requests []Request
	pongs    int
	conns    []*Pipe
}

// NewGame creates a game without handlers.
func NewGame() *Game {
	return &Game{handlers: make(map[string]Handler)}
}

// Handle registers fn for msgType.
func (g *Game) Handle(msgType string, fn Handler) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.handlers[msgType] = fn
}

// Connect opens a new connection. With open set the engine.io open frame is
// queued right away, otherwise the client never completes its handshake.
func (g *Game) Connect(open bool) *Pipe {
	p := &Pipe{
		game:     g,
		toClient: make(chan string, 256),
		toServer: make(chan string, 256),
		closed:   make(chan struct{}),
	}
	if open {
		p.toClient <- OpenFrame
		p.toClient <- "40"
	}

	g.mu.Lock()
	g.conns = append(g.conns, p)
	g.mu.Unlock()

	go p.serve()
	return p
}

// Last returns the most recent connection.
func (g *Game) Last() *Pipe {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.conns) == 0 {
		return nil
	}
	return g.conns[len(g.conns)-1]
}

// Connections returns the number of connections opened so far.
func (g *Game) Connections() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.conns)
}

// Types returns the types of all requests received, in arrival order.
func (g *Game) Types() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, len(g.requests))
	for _, r := range g.requests {
		out = append(out, r.Type)
	}
	return out
}

// Requests returns the received requests of msgType.
func (g *Game) Requests(msgType string) []Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []Request
	for _, r := range g.requests {
		if r.Type == msgType {
			out = append(out, r)
		}
	}
	return out
}

// Pongs returns the number of pong frames received.
func (g *Game) Pongs() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pongs
}

// Pipe is one in-memory connection. It implements session.Transport.
type Pipe struct {
	game     *Game
	toClient chan string
	toServer chan string
	closed   chan struct{}
	once     sync.Once
}

// Send implements session.Transport.
func (p *Pipe) Send(frame string) error {
	select {
	case <-p.closed:
		return io.ErrClosedPipe
	case p.toServer <- frame:
		return nil
	}
}

// Receive implements session.Transport.
func (p *Pipe) Receive() (string, error) {
	select {
	case <-p.closed:
		return "", io.EOF
	case f := <-p.toClient:
		return f, nil
	}
}

// Close implements session.Transport. Closing from the test simulates the
// server dropping the connection.
func (p *Pipe) Close() error {
	p.once.Do(func() { close(p.closed) })
	return nil
}

// Closed reports whether the connection was closed.
func (p *Pipe) Closed() bool {
	select {
	case <-p.closed:
		return true
	default:
		return false
	}
}

// Push sends a raw frame to the client.
func (p *Pipe) Push(frame string) {
	select {
	case <-p.closed:
	case p.toClient <- frame:
	}
}

// Respond sends a correlated response to the client.
func (p *Pipe) Respond(id int64, msgType string, data any) {
	payload, _ := json.Marshal([]any{"msg", map[string]any{"type": msgType, "data": data, "id": id}})
	p.Push("42" + string(payload))
}

func (p *Pipe) serve() {
	g := p.game
	for {
		var raw string
		select {
		case <-p.closed:
			return
		case raw = <-p.toServer:
		}

		switch {
		case raw == "3":
			g.mu.Lock()
			g.pongs++
			g.mu.Unlock()
		case raw == "2":
			p.Push("3")
		case strings.HasPrefix(raw, "42"):
			req := ParseRequest(raw[2:])
			g.mu.Lock()
			g.requests = append(g.requests, req)
			fn := g.handlers[req.Type]
			g.mu.Unlock()

			r := &Reply{Type: req.Type, Data: map[string]any{}}
			if fn != nil {
				r = fn(req)
			}
			if r != nil {
				p.Respond(req.ID, r.Type, r.Data)
			}
		}
	}
}

// ParseRequest decodes the JSON array of a socket.io event frame.
func ParseRequest(body string) Request {
	var parts []json.RawMessage
	_ = json.Unmarshal([]byte(body), &parts)
	var env struct {
		ID   int64          `json:"id"`
		Type string         `json:"type"`
		Data map[string]any `json:"data"`
	}
	if len(parts) > 1 {
		_ = json.Unmarshal(parts[1], &env)
	}
	return Request{ID: env.ID, Type: env.Type, Data: env.Data}
}
