// Package metrics exposes the Prometheus collectors shared by the binaries.
// Every method is safe on a nil *Metrics, which records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "finanzy"

type Metrics struct {
	registry *prometheus.Registry

	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	mutations   *prometheus.CounterVec
	events      *prometheus.CounterVec
	rateLimited prometheus.Counter
	suspicious  prometheus.Counter
}

// New builds a private registry labelled with the service name, plus the
// Go runtime and process collectors.
func New(service string) *Metrics {
	reg := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"service": service}

	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "http_requests_total",
			Help:        "HTTP requests by method and status code.",
			ConstLabels: constLabels,
		}, []string{"method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency.",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "store_mutations_total",
			Help:        "Transaction mutations by operation and result.",
			ConstLabels: constLabels,
		}, []string{"op", "result"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "change_events_total",
			Help:        "Change events handled by action and result.",
			ConstLabels: constLabels,
		}, []string{"action", "result"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "rate_limited_requests_total",
			Help:        "Requests rejected by the rate limiter.",
			ConstLabels: constLabels,
		}),
		suspicious: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "suspicious_requests_total",
			Help:        "Requests matching a known attack pattern.",
			ConstLabels: constLabels,
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.duration, m.mutations, m.events, m.rateLimited, m.suspicious,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveRequest(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveMutation implements store.Observer.
func (m *Metrics) ObserveMutation(op string, err error) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op, result(err)).Inc()
}

func (m *Metrics) ObserveEvent(action string, err error) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(action, result(err)).Inc()
}

func (m *Metrics) ObserveRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

func (m *Metrics) ObserveSuspicious() {
	if m == nil {
		return
	}
	m.suspicious.Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
