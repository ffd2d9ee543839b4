package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// entry holds the parsed value of one config type.
type entry struct {
	once  sync.Once
	value any
	err   error
}

var (
	mu      sync.Mutex
	entries = make(map[reflect.Type]*entry)

	dotenvOnce sync.Once
)

func entryFor(t reflect.Type) *entry {
	mu.Lock()
	defer mu.Unlock()
	e, ok := entries[t]
	if !ok {
		e = &entry{}
		entries[t] = e
	}
	return e
}

// forget drops e unless it was already replaced, so the next Load parses again.
func forget(t reflect.Type, e *entry) {
	mu.Lock()
	defer mu.Unlock()
	if entries[t] == e {
		delete(entries, t)
	}
}

// Load parses the environment into v. Each type is parsed once per process;
// later calls copy the cached value. The first call also reads ./.env when it
// exists, unless LoadEnv ran before. Values already in v act as defaults for
// fields without an envDefault. A failed parse is not cached.
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	dotenvOnce.Do(func() { _ = godotenv.Load() })

	t := reflect.TypeFor[T]()
	e := entryFor(t)
	e.once.Do(func() {
		cfg := *v
		if err := env.Parse(&cfg); err != nil {
			e.err = errors.Join(ErrParsingConfig, err)
			return
		}
		e.value = cfg
	})
	if e.err != nil {
		forget(t, e)
		return e.err
	}

	*v = e.value.(T)
	return nil
}

// MustLoad is Load that panics on failure.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}

// LoadEnv reads the given .env files into the process environment and turns
// off the implicit ./.env lookup of Load. Variables already set win, and
// earlier files win over later ones.
func LoadEnv(paths ...string) error {
	dotenvOnce.Do(func() {})
	if err := godotenv.Load(paths...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}

// MustLoadEnv is LoadEnv that panics on failure.
func MustLoadEnv(paths ...string) {
	if err := LoadEnv(paths...); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}

// Reload parses the environment into v again and replaces the cached value.
func Reload[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	cfg := *v
	if err := env.Parse(&cfg); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	e := &entry{value: cfg}
	e.once.Do(func() {})

	mu.Lock()
	entries[reflect.TypeFor[T]()] = e
	mu.Unlock()

	*v = cfg
	return nil
}

// ResetCache forgets every parsed type and re-enables the ./.env lookup.
func ResetCache() {
	mu.Lock()
	entries = make(map[reflect.Type]*entry)
	dotenvOnce = sync.Once{}
	mu.Unlock()
}
