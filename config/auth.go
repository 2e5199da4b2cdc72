package config

import "strings"

// TokenKeysConfig names the persisted token entries.
type TokenKeysConfig struct {
	Access  string `env:"ACCESS_KEY"  envDefault:"authToken"`
	Refresh string `env:"REFRESH_KEY" envDefault:"refreshToken"`
}

// MockIdentityConfig controls the identity handed out by the mock boundary.
// Used when API_ENABLE_MOCK=true for development and testing.
type MockIdentityConfig struct {
	Email       string   `env:"EMAIL"        envDefault:"admin@example.com"`
	Password    string   `env:"PASSWORD"     envDefault:"password"`
	UserID      string   `env:"USER_ID"      envDefault:"1"`
	DisplayName string   `env:"DISPLAY_NAME" envDefault:"Admin User"`
	Role        string   `env:"ROLE"         envDefault:"admin"`
	Permissions []string `env:"PERMISSIONS"  envDefault:"read;write;delete" envSeparator:";"`
	SigningKey  string   `env:"SIGNING_KEY"  envDefault:"dev-signing-key"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// TokenKeys names the entries the token store persists under.
	TokenKeys TokenKeysConfig `envPrefix:"AUTH_TOKEN_"`

	// LoginPath is where the navigator sends callers after the session
	// is lost.
	LoginPath string `env:"AUTH_LOGIN_PATH" envDefault:"/login"`

	// Mock identity configuration (used when API_ENABLE_MOCK=true).
	Mock MockIdentityConfig `envPrefix:"AUTH_MOCK_"`
}

// Sanitize applies guardrails to auth configuration values.
func (c *AuthConfig) Sanitize() {
	if c.TokenKeys.Access = strings.TrimSpace(c.TokenKeys.Access); c.TokenKeys.Access == "" {
		c.TokenKeys.Access = "authToken"
	}
	if c.TokenKeys.Refresh = strings.TrimSpace(c.TokenKeys.Refresh); c.TokenKeys.Refresh == "" {
		c.TokenKeys.Refresh = "refreshToken"
	}
	// The two keys must stay distinct or Clear would race itself.
	if c.TokenKeys.Access == c.TokenKeys.Refresh {
		c.TokenKeys.Access = "authToken"
		c.TokenKeys.Refresh = "refreshToken"
	}
	if c.LoginPath = strings.TrimSpace(c.LoginPath); c.LoginPath == "" {
		c.LoginPath = "/login"
	}
	if !strings.HasPrefix(c.LoginPath, "/") {
		c.LoginPath = "/" + c.LoginPath
	}
}
