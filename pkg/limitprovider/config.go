package limitprovider

import "time"

// Config holds provider settings loaded from the environment.
type Config struct {
	// LoadTimeout bounds each loading phase. Zero or negative falls back to the default.
	LoadTimeout time.Duration `env:"QUOTA_PROVIDER_LOAD_TIMEOUT" envDefault:"10s"`
}

// DefaultConfig returns the values used when the environment sets nothing.
func DefaultConfig() Config {
	return Config{LoadTimeout: 10 * time.Second}
}

func (c Config) withDefaults() Config {
	if c.LoadTimeout <= 0 {
		c.LoadTimeout = DefaultConfig().LoadTimeout
	}
	return c
}
