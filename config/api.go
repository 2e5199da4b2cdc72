package config

import (
	"strings"
	"time"
)

// APIConfig describes the remote authentication API endpoint.
type APIConfig struct {
	// BaseURL is the root of the remote API, e.g. http://localhost:3001/api.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:3001/api"`

	// Timeout bounds each outbound request.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`

	// EnableMock swaps the HTTP boundary for the in-process mock provider.
	EnableMock bool `env:"ENABLE_MOCK" envDefault:"false"`
}

// Sanitize normalises the endpoint configuration.
func (c *APIConfig) Sanitize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:3001/api"
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
}
