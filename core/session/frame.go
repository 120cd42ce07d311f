package session

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// engine.io packet types
const (
	packetOpen    = '0'
	packetClose   = '1'
	packetPing    = '2'
	packetPong    = '3'
	packetMessage = '4'
)

// socket.io packet types, carried inside an engine.io message
const (
	socketConnect    = '0'
	socketDisconnect = '1'
	socketEvent      = '2'
)

const eventName = "msg"

// Message is one request or response exchanged with the game.
type Message struct {
	ID   int64
	Type string
	Data map[string]any
}

type envelope struct {
	Type    string         `json:"type"`
	Data    any            `json:"data,omitempty"`
	ID      int64          `json:"id,omitempty"`
	Headers map[string]any `json:"headers,omitempty"`
}

type openPacket struct {
	SID          string `json:"sid"`
	PingInterval int    `json:"pingInterval"`
	PingTimeout  int    `json:"pingTimeout"`
}

type frame struct {
	kind    byte
	open    *openPacket
	message *Message
}

// encodeRequest frames an outbound request as a socket.io event.
func encodeRequest(id int64, msgType string, data any, sentAt time.Time) (string, error) {
	env := envelope{
		Type: msgType,
		Data: data,
		ID:   id,
		Headers: map[string]any{
			"traveltimes": [][]any{{"browser_send", sentAt.UnixMilli()}},
		},
	}
	payload, err := json.Marshal([]any{eventName, env})
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", msgType, err)
	}
	return string(packetMessage) + string(socketEvent) + string(payload), nil
}

// decodeFrame parses one inbound engine.io text frame.
func decodeFrame(raw string) (frame, error) {
	if raw == "" {
		return frame{}, fmt.Errorf("empty frame")
	}

	f := frame{kind: raw[0]}
	body := raw[1:]

	switch f.kind {
	case packetOpen:
		var open openPacket
		if err := json.Unmarshal([]byte(body), &open); err != nil {
			return frame{}, fmt.Errorf("invalid open frame: %w", err)
		}
		f.open = &open
	case packetPing, packetPong, packetClose:
	case packetMessage:
		if body == "" || body[0] != socketEvent {
			// connect/disconnect acknowledgements carry nothing we use
			return f, nil
		}
		msg, err := decodeEvent(body[1:])
		if err != nil {
			return frame{}, err
		}
		f.message = msg
	default:
		return frame{}, fmt.Errorf("unknown packet type %q", f.kind)
	}

	return f, nil
}

func decodeEvent(body string) (*Message, error) {
	// A namespace or ack id may precede the JSON array.
	if i := strings.IndexByte(body, '['); i > 0 {
		body = body[i:]
	}

	var parts []json.RawMessage
	if err := json.Unmarshal([]byte(body), &parts); err != nil {
		return nil, fmt.Errorf("invalid event frame: %w", err)
	}
	if len(parts) < 2 {
		return nil, fmt.Errorf("event frame without payload")
	}

	var env struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
		ID   int64           `json:"id"`
	}
	if err := json.Unmarshal(parts[1], &env); err != nil {
		return nil, fmt.Errorf("invalid event payload: %w", err)
	}

	msg := &Message{ID: env.ID, Type: env.Type, Data: map[string]any{}}
	if len(env.Data) > 0 && string(env.Data) != "null" {
		var data any
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, fmt.Errorf("invalid event data: %w", err)
		}
		switch d := data.(type) {
		case map[string]any:
			msg.Data = d
		default:
			// Arrays and scalars are exposed under a single key.
			msg.Data["value"] = d
		}
	}
	return msg, nil
}

// isErrorType reports whether a response type signals a failed request.
func isErrorType(t string) bool {
	return t == "System/error" || strings.HasSuffix(t, "/error") || strings.HasPrefix(t, "Exception/")
}
