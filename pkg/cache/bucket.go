package cache

import (
	"sync"
	"time"
)

// Observer receives cache events, typically to feed metrics.
type Observer interface {
	Hit()
	Miss()
	Expired(n int)
	Evicted()
}

type noopObserver struct{}

func (noopObserver) Hit()        {}
func (noopObserver) Miss()       {}
func (noopObserver) Expired(int) {}
func (noopObserver) Evicted()    {}

// entry is a cached value with the time it was written and how long it stays valid.
type entry[V any] struct {
	data      V
	timestamp time.Time
	ttl       time.Duration
}

// valid reports now - timestamp <= ttl.
func (e entry[V]) valid(now time.Time) bool {
	return now.Sub(e.timestamp) <= e.ttl
}

// Bucket is a thread-safe string-keyed cache whose entries expire after a TTL.
// Expired entries are evicted lazily on read; PurgeExpired sweeps them proactively.
// An optional capacity bounds memory by evicting the least recently used entry.
type Bucket[V any] struct {
	mu         sync.Mutex
	items      *lru[string, entry[V]]
	defaultTTL time.Duration
	now        func() time.Time
	observer   Observer
}

// BucketOption configures a Bucket.
type BucketOption func(*bucketConfig)

type bucketConfig struct {
	capacity int
	now      func() time.Time
	observer Observer
}

// WithCapacity bounds the number of entries. Values <= 0 mean unbounded.
func WithCapacity(n int) BucketOption {
	return func(c *bucketConfig) { c.capacity = n }
}

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) BucketOption {
	return func(c *bucketConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithObserver registers an Observer for hit/miss/expiry/eviction events.
func WithObserver(o Observer) BucketOption {
	return func(c *bucketConfig) {
		if o != nil {
			c.observer = o
		}
	}
}

// NewBucket creates a Bucket whose entries live for defaultTTL unless Set says otherwise.
// Panics if defaultTTL is not positive.
func NewBucket[V any](defaultTTL time.Duration, opts ...BucketOption) *Bucket[V] {
	if defaultTTL <= 0 {
		panic("cache: bucket default TTL must be positive")
	}

	cfg := &bucketConfig{now: time.Now, observer: noopObserver{}}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Bucket[V]{
		items:      newLRU[string, entry[V]](cfg.capacity),
		defaultTTL: defaultTTL,
		now:        cfg.now,
		observer:   cfg.observer,
	}
}

// DefaultTTL returns the TTL applied when Set receives a non-positive ttl.
func (b *Bucket[V]) DefaultTTL() time.Duration {
	return b.defaultTTL
}

// Get returns the value only while it is valid. An expired entry is evicted and reported absent.
func (b *Bucket[V]) Get(key string) (V, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var zero V
	e, ok := b.items.get(key)
	if !ok {
		b.observer.Miss()
		return zero, false
	}
	if !e.valid(b.now()) {
		b.items.remove(key)
		b.observer.Expired(1)
		b.observer.Miss()
		return zero, false
	}

	b.observer.Hit()
	return e.data, true
}

// Set stores value under key, overwriting unconditionally and resetting the timestamp.
// A non-positive ttl selects the bucket default.
func (b *Bucket[V]) Set(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = b.defaultTTL
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.items.put(key, entry[V]{data: value, timestamp: b.now(), ttl: ttl}) {
		b.observer.Evicted()
	}
}

// Update applies fn to a valid cached value and stores the result, keeping the
// entry's timestamp and TTL. fn returning false leaves the entry untouched.
// Update reports whether a value was replaced; it never creates an entry.
func (b *Bucket[V]) Update(key string, fn func(V) (V, bool)) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.items.peek(key)
	if !ok {
		return false
	}
	if !e.valid(b.now()) {
		b.items.remove(key)
		b.observer.Expired(1)
		return false
	}

	next, ok := fn(e.data)
	if !ok {
		return false
	}
	e.data = next
	return b.items.replace(key, e)
}

// Delete removes key and reports whether it was present.
func (b *Bucket[V]) Delete(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.items.remove(key)
}

// PurgeExpired removes every expired entry and returns how many were dropped.
func (b *Bucket[V]) PurgeExpired() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	purged := 0
	for _, key := range b.items.keys() {
		if e, ok := b.items.peek(key); ok && !e.valid(now) {
			b.items.remove(key)
			purged++
		}
	}
	if purged > 0 {
		b.observer.Expired(purged)
	}
	return purged
}

// Clear drops all entries.
func (b *Bucket[V]) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items.clear()
}

// Len returns the number of stored entries, including ones not yet evicted after expiry.
func (b *Bucket[V]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.items.len()
}
