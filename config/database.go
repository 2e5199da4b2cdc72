package config

import "strings"

// RedisConfig contains Redis configuration for durable token and
// preference storage. When Enabled is false the in-memory adapters are
// used instead.
type RedisConfig struct {
	Enabled   bool   `env:"ENABLED"    envDefault:"false"`
	Addr      string `env:"ADDR"       envDefault:"localhost:6379"`
	Password  string `env:"PASSWORD"   envDefault:""`
	DB        int    `env:"DB"         envDefault:"0"`
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"sessionkit"`
}

// Sanitize normalises Redis configuration values.
func (c *RedisConfig) Sanitize() {
	c.Addr = strings.TrimSpace(c.Addr)
	if c.Addr == "" {
		c.Enabled = false
		c.Addr = "localhost:6379"
	}
	if c.DB < 0 {
		c.DB = 0
	}
	if c.KeyPrefix = strings.TrimSpace(c.KeyPrefix); c.KeyPrefix == "" {
		c.KeyPrefix = "sessionkit"
	}
}
