// Package config loads env-tagged structs with github.com/caarlos0/env/v11.
//
// Load parses the environment into a struct once per type and serves later
// calls from a cache; Reload re-parses and ResetCache clears everything, which
// tests use after changing variables. The first Load also reads a .env file
// from the working directory when present (github.com/joho/godotenv); LoadEnv
// reads explicit files instead and disables that lookup.
//
//	var cfg usagecache.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// Errors wrap ErrParsingConfig, ErrLoadingEnvFile or ErrNilPointer.
package config
