package server

import "strings"

// Config holds configuration for the control HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the control API.
	ApiKey string `mapstructure:"api_key" default:""`
	// Docs enables the swagger UI under /swagger.
	Docs bool `mapstructure:"docs" default:"true"`
}

// Address returns the listen address for the configured port.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// IsProtected reports whether requests must carry the API key.
func (c Config) IsProtected() bool {
	return c.ApiKey != ""
}
