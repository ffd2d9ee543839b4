package governor

import (
	"errors"

	"github.com/teamarena/quotakit/pkg/billing"
	"github.com/teamarena/quotakit/pkg/config"
	"github.com/teamarena/quotakit/pkg/email"
	"github.com/teamarena/quotakit/pkg/limitprovider"
	"github.com/teamarena/quotakit/pkg/meter"
	"github.com/teamarena/quotakit/pkg/usagecache"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
)

// Config selects the store backend and carries the settings of every
// component the Kit builds. Backend connection settings are read from the
// backend package's own Config only when that backend is selected.
type Config struct {
	Backend    string `env:"QUOTA_BACKEND" envDefault:"memory"`
	LimitsFile string `env:"QUOTA_LIMITS_FILE"` // Optional YAML limit table; the built-in table otherwise.
	UpgradeURL string `env:"QUOTA_UPGRADE_URL"`

	RedisKeyPrefix        string `env:"QUOTA_REDIS_KEY_PREFIX" envDefault:"quota"`
	RedisHistoryRetention int64  `env:"QUOTA_REDIS_HISTORY_RETENTION" envDefault:"0"` // 0 keeps every sample.

	Cache    usagecache.Config
	Provider limitprovider.Config
	Email    email.Config
	S3       meter.S3Config
	Billing  billing.Config
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, errors.Join(ErrConfig, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Backend {
	case BackendMemory, BackendPostgres, BackendRedis, BackendMongo:
		return nil
	case "":
		return errors.Join(ErrUnknownBackend, errors.New("backend is empty"))
	default:
		return errors.Join(ErrUnknownBackend, errors.New(c.Backend))
	}
}
