package usagecache

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/teamarena/quotakit/pkg/cache"
)

const (
	metricsNamespace = "quotakit"
	metricsSubsystem = "usage_cache"
)

type metrics struct {
	hits         *prometheus.CounterVec
	misses       *prometheus.CounterVec
	expired      *prometheus.CounterVec
	evicted      *prometheus.CounterVec
	pointUpdates *prometheus.CounterVec
}

func newMetrics() *metrics {
	vec := func(name, help string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      name,
				Help:      help,
			},
			[]string{"bucket"},
		)
	}

	return &metrics{
		hits:         vec("hits_total", "Cache reads that returned a valid entry."),
		misses:       vec("misses_total", "Cache reads that found no valid entry."),
		expired:      vec("expired_total", "Entries dropped because their TTL elapsed."),
		evicted:      vec("evicted_total", "Entries dropped to stay within the capacity bound."),
		pointUpdates: vec("point_updates_total", "Successful targeted usage entry updates."),
	}
}

func (m *metrics) register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.hits, m.misses, m.expired, m.evicted, m.pointUpdates} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// observer binds the counters of one bucket to the cache.Observer hooks.
func (m *metrics) observer(b Bucket) cache.Observer {
	label := string(b)
	return &bucketObserver{
		hits:    m.hits.WithLabelValues(label),
		misses:  m.misses.WithLabelValues(label),
		expired: m.expired.WithLabelValues(label),
		evicted: m.evicted.WithLabelValues(label),
	}
}

type bucketObserver struct {
	hits, misses, expired, evicted prometheus.Counter
}

func (o *bucketObserver) Hit()          { o.hits.Inc() }
func (o *bucketObserver) Miss()         { o.misses.Inc() }
func (o *bucketObserver) Expired(n int) { o.expired.Add(float64(n)) }
func (o *bucketObserver) Evicted()      { o.evicted.Inc() }
