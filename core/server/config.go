package server

import "time"

// Backend kinds accepted in Config.Backend.
const (
	BackendAppwrite = "appwrite"
	BackendSQL      = "sql"
)

// Config holds configuration for the HTTP server.
type Config struct {
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey guards every route except /swagger and /metrics. Empty disables the check.
	ApiKey string `mapstructure:"api_key" default:""`
	// Backend selects where profiles and accounts live: appwrite or sql.
	Backend string `mapstructure:"backend" default:"appwrite"`
	// ShutdownSeconds bounds the graceful shutdown of in-flight requests.
	ShutdownSeconds int `mapstructure:"shutdown_seconds" default:"10"`
}

// IsValidBackend checks if the configured backend is supported.
func (c Config) IsValidBackend() bool {
	return c.Backend == BackendAppwrite || c.Backend == BackendSQL
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return ":" + c.Port
}

// ShutdownTimeout returns ShutdownSeconds as a duration, defaulting to 10s.
func (c Config) ShutdownTimeout() time.Duration {
	if c.ShutdownSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ShutdownSeconds) * time.Second
}
