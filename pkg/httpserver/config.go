package httpserver

import "time"

// Config holds the ops listener settings.
type Config struct {
	Addr               string        `env:"QUOTA_HTTP_ADDR" envDefault:":9090"`
	ReadTimeout        time.Duration `env:"QUOTA_HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout       time.Duration `env:"QUOTA_HTTP_WRITE_TIMEOUT" envDefault:"30s"` // Reconcile requests call every meter.
	IdleTimeout        time.Duration `env:"QUOTA_HTTP_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout    time.Duration `env:"QUOTA_HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	HealthcheckTimeout time.Duration `env:"QUOTA_HTTP_HEALTHCHECK_TIMEOUT" envDefault:"2s"`
}

// NewFromConfig creates a new Server from the provided Config.
// Only non-zero values from the config are applied.
func NewFromConfig(cfg Config, opts ...Option) *Server {
	configOpts := make([]Option, 0, 5)

	if cfg.Addr != "" {
		configOpts = append(configOpts, WithAddr(cfg.Addr))
	}
	if cfg.ReadTimeout > 0 {
		configOpts = append(configOpts, WithReadTimeout(cfg.ReadTimeout))
	}
	if cfg.WriteTimeout > 0 {
		configOpts = append(configOpts, WithWriteTimeout(cfg.WriteTimeout))
	}
	if cfg.IdleTimeout > 0 {
		configOpts = append(configOpts, WithIdleTimeout(cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout > 0 {
		configOpts = append(configOpts, WithShutdownTimeout(cfg.ShutdownTimeout))
	}

	configOpts = append(configOpts, opts...)

	return New(configOpts...)
}
