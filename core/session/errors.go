package session

import (
	"errors"
	"fmt"
)

var (
	// ErrProtocolTimeout is returned when no correlated response arrives in time.
	ErrProtocolTimeout = errors.New("protocol timeout")
	// ErrConnectionClosed is returned for requests pending or issued after Kill.
	ErrConnectionClosed = errors.New("connection closed")
	// ErrAuthenticationFailed is returned once every credential has been rejected.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrCharacterSelectionFailed is returned when a character cannot be selected or bootstrapped.
	ErrCharacterSelectionFailed = errors.New("character selection failed")
	// ErrHandshake is returned when the connection never becomes ready.
	ErrHandshake = errors.New("handshake failed")
)

// RemoteError is an error response sent by the game for a request.
type RemoteError struct {
	Type    string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote error %s", e.Type)
	}
	return fmt.Sprintf("remote error %s: %s", e.Type, e.Message)
}
