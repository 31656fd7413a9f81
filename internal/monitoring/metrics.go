package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the prometheus registry for the process. All methods are
// nil-safe so handlers can run without metrics wired (tests mostly do).
type Metrics struct {
	registry *prometheus.Registry

	requests             *prometheus.CounterVec
	requestDuration      *prometheus.HistogramVec
	observationMutations *prometheus.CounterVec
	locationAcquisitions *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wildwatch_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wildwatch_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		observationMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wildwatch_observation_mutations_total",
			Help: "Observation mutations by operation.",
		}, []string{"op"}),
		locationAcquisitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wildwatch_location_acquisitions_total",
			Help: "Location acquisition attempts by result.",
		}, []string{"result"}),
	}

	registry.MustRegister(m.requests, m.requestDuration, m.observationMutations, m.locationAcquisitions)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) RecordObservationMutation(op string) {
	if m == nil {
		return
	}
	m.observationMutations.WithLabelValues(op).Inc()
}

func (m *Metrics) RecordLocationAcquisition(result string) {
	if m == nil {
		return
	}
	m.locationAcquisitions.WithLabelValues(result).Inc()
}
