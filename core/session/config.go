package session

import "time"

// Config holds configuration for remote game sessions.
type Config struct {
	// Endpoint is the socket URL template; %s is replaced by the market id.
	Endpoint string `mapstructure:"endpoint" default:"wss://%s.tribalwars2.com/socket.io/?platform=desktop&EIO=3&transport=websocket"`
	// RequestTimeoutSeconds is the loading timeout of a single request.
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds" default:"10"`
	// HandshakeTimeoutSeconds bounds the wait for the open frame and identification.
	HandshakeTimeoutSeconds int `mapstructure:"handshake_timeout_seconds" default:"15"`
	// ClientVersion is announced in System/identify.
	ClientVersion string `mapstructure:"client_version" default:"10.*.*"`
	// UserAgent is announced in System/identify and sent on dial.
	UserAgent string `mapstructure:"user_agent" default:"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"`
}

// RequestTimeout returns the per-request loading timeout.
func (c Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// HandshakeTimeout returns the handshake timeout.
func (c Config) HandshakeTimeout() time.Duration {
	if c.HandshakeTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.HandshakeTimeoutSeconds) * time.Second
}
