package server

// Config holds configuration for the HTTP status server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8750"`
	// ApiKey is the secret key required to access the API. Empty leaves
	// the API open, which is fine when it only binds to localhost.
	ApiKey string `mapstructure:"api_key" default:""`
}

// Addr returns the listen address for the configured port.
func (c Config) Addr() string {
	return ":" + c.Port
}
