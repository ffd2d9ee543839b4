package usagecache

import "time"

// Config holds TTLs and bounds of the three cache buckets.
type Config struct {
	LimitsTTL     time.Duration `env:"QUOTA_CACHE_LIMITS_TTL" envDefault:"24h"`
	UsageTTL      time.Duration `env:"QUOTA_CACHE_USAGE_TTL" envDefault:"5m"`
	HistoryTTL    time.Duration `env:"QUOTA_CACHE_HISTORY_TTL" envDefault:"30m"`
	PurgeInterval time.Duration `env:"QUOTA_CACHE_PURGE_INTERVAL" envDefault:"1m"`
	MaxEntries    int           `env:"QUOTA_CACHE_MAX_ENTRIES" envDefault:"10000"`
}

// DefaultConfig returns the values used when the environment sets nothing.
func DefaultConfig() Config {
	return Config{
		LimitsTTL:     24 * time.Hour,
		UsageTTL:      5 * time.Minute,
		HistoryTTL:    30 * time.Minute,
		PurgeInterval: time.Minute,
		MaxEntries:    10000,
	}
}

// withDefaults fills zero or negative durations from DefaultConfig.
// MaxEntries <= 0 keeps the buckets unbounded.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.LimitsTTL <= 0 {
		c.LimitsTTL = d.LimitsTTL
	}
	if c.UsageTTL <= 0 {
		c.UsageTTL = d.UsageTTL
	}
	if c.HistoryTTL <= 0 {
		c.HistoryTTL = d.HistoryTTL
	}
	if c.PurgeInterval <= 0 {
		c.PurgeInterval = d.PurgeInterval
	}
	return c
}
