package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - api.go: Remote API endpoint configuration
//   - auth.go: Authentication and token storage configuration
//   - database.go: Redis-backed storage configuration
//   - observability.go: Notification fan-out configuration
type AppConfig struct {
	// IsDev controls development mode behavior (mock boundary defaults,
	// verbose logging). Set DEV=true or NODE_ENV=development for
	// development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Remote API configuration
	API APIConfig `envPrefix:"API_"`

	// Authentication configuration
	Auth AuthConfig

	// Storage configuration
	Redis RedisConfig `envPrefix:"REDIS_"`

	// UI configuration
	UI UIConfig `envPrefix:"UI_"`

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.API.Sanitize()
	c.Auth.Sanitize()
	c.Redis.Sanitize()
	c.UI.Sanitize()
	c.Observability.Sanitize()

	// Check NODE_ENV for dev mode
	c.detectDevMode()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// This is called by Sanitize() to ensure IsDev is set correctly.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// UIConfig carries presentation defaults.
type UIConfig struct {
	// DefaultTheme is the color mode used before a persisted preference
	// is found. Valid values: light, dark.
	DefaultTheme string `env:"DEFAULT_THEME" envDefault:"light"`

	// ThemeStorageKey names the persisted theme entry.
	ThemeStorageKey string `env:"THEME_STORAGE_KEY" envDefault:"theme-mode"`

	// MaxNotifications caps the notification center.
	MaxNotifications int `env:"MAX_NOTIFICATIONS" envDefault:"50"`
}

// Sanitize normalises UI configuration values.
func (c *UIConfig) Sanitize() {
	c.DefaultTheme = strings.ToLower(strings.TrimSpace(c.DefaultTheme))
	if c.DefaultTheme != "dark" {
		c.DefaultTheme = "light"
	}
	if c.ThemeStorageKey = strings.TrimSpace(c.ThemeStorageKey); c.ThemeStorageKey == "" {
		c.ThemeStorageKey = "theme-mode"
	}
	if c.MaxNotifications <= 0 {
		c.MaxNotifications = 50
	}
}
