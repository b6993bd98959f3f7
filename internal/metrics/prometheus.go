package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const promNamespace = "coindash"

type promCounter struct {
	counter prometheus.Counter
}

func (p promCounter) Inc() {
	p.counter.Inc()
}

type Prometheus struct {
	Metrics *Metrics

	registry *prometheus.Registry
}

func NewPrometheus() *Prometheus {
	registry := prometheus.NewRegistry()
	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "cache_hits_total",
		Help:      "Total number of candle cache hits.",
	})
	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "cache_misses_total",
		Help:      "Total number of candle cache misses.",
	})
	fetchErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "fetch_errors_total",
		Help:      "Total number of failed exchange fetches.",
	})
	snapshotsServed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "snapshots_served_total",
		Help:      "Total number of dashboard snapshots assembled.",
	})
	refreshesTriggered := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: promNamespace,
		Name:      "refreshes_triggered_total",
		Help:      "Total number of manual cache invalidations.",
	})

	registry.MustRegister(cacheHits, cacheMisses, fetchErrors, snapshotsServed, refreshesTriggered)

	m := &Metrics{
		CacheHits:          promCounter{cacheHits},
		CacheMisses:        promCounter{cacheMisses},
		FetchErrors:        promCounter{fetchErrors},
		SnapshotsServed:    promCounter{snapshotsServed},
		RefreshesTriggered: promCounter{refreshesTriggered},
	}

	return &Prometheus{
		Metrics:  m,
		registry: registry,
	}
}

func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
