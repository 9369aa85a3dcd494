package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "coffee"

// PrometheusRecorder implements Recorder on a dedicated Prometheus registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	registrations *prometheus.CounterVec
	coffeeAdded   prometheus.Counter
	coffeeReject  prometheus.Counter
	coffeeListed  prometheus.Counter
	authFailures  *prometheus.CounterVec
	keyCache      *prometheus.CounterVec
	storeDuration *prometheus.HistogramVec
}

// NewPrometheus creates a recorder with its own registry, including Go runtime
// and process collectors.
func NewPrometheus() *PrometheusRecorder {
	reg := prometheus.NewRegistry()

	p := &PrometheusRecorder{
		registry: reg,
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Registration requests by outcome.",
		}, []string{"outcome"}),
		coffeeAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_added_total",
			Help:      "Coffee events recorded.",
		}),
		coffeeReject: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_rejected_total",
			Help:      "Coffee events rejected for invalid arguments.",
		}),
		coffeeListed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "list_requests_total",
			Help:      "Successful list requests.",
		}),
		authFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_failures_total",
			Help:      "Rejected API keys by reason.",
		}, []string{"reason"}),
		keyCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "key_cache_lookups_total",
			Help:      "API key cache lookups by result.",
		}, []string{"result"}),
		storeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_duration_seconds",
			Help:      "Latency of store calls by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		p.registrations,
		p.coffeeAdded,
		p.coffeeReject,
		p.coffeeListed,
		p.authFailures,
		p.keyCache,
		p.storeDuration,
	)

	return p
}

// Registry returns the registry backing this recorder.
func (p *PrometheusRecorder) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// IncRegistration counts a registration by outcome.
func (p *PrometheusRecorder) IncRegistration(outcome string) {
	p.registrations.WithLabelValues(outcome).Inc()
}

// IncCoffeeAdded increments the added counter.
func (p *PrometheusRecorder) IncCoffeeAdded() {
	p.coffeeAdded.Inc()
}

// IncCoffeeRejected increments the rejected counter.
func (p *PrometheusRecorder) IncCoffeeRejected() {
	p.coffeeReject.Inc()
}

// IncCoffeeListed increments the listed counter.
func (p *PrometheusRecorder) IncCoffeeListed() {
	p.coffeeListed.Inc()
}

// IncAuthFailure counts an auth failure by reason.
func (p *PrometheusRecorder) IncAuthFailure(reason string) {
	p.authFailures.WithLabelValues(reason).Inc()
}

// IncKeyCacheHit increments cache hit counter.
func (p *PrometheusRecorder) IncKeyCacheHit() {
	p.keyCache.WithLabelValues("hit").Inc()
}

// IncKeyCacheMiss increments cache miss counter.
func (p *PrometheusRecorder) IncKeyCacheMiss() {
	p.keyCache.WithLabelValues("miss").Inc()
}

// ObserveStoreDuration records store call duration.
func (p *PrometheusRecorder) ObserveStoreDuration(op string, duration time.Duration) {
	p.storeDuration.WithLabelValues(op).Observe(duration.Seconds())
}
