// Package metrics exposes Prometheus collectors for the session engines.
// Every recorder is safe to call on a nil *Metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the jukebox collectors.
type Metrics struct {
	GatewayRequests   *prometheus.CounterVec
	GatewayDuration   *prometheus.HistogramVec
	Polls             *prometheus.CounterVec
	SearchLookups     *prometheus.CounterVec
	SearchRequests    *prometheus.CounterVec
	HistoryUpserts    prometheus.Counter
	HistorySize       prometheus.Gauge
	PersistenceErrors *prometheus.CounterVec
	CacheEntries      prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		GatewayRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jukebox_gateway_requests_total",
				Help: "Total number of remote API requests",
			},
			[]string{"method", "status"},
		),
		GatewayDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jukebox_gateway_request_duration_seconds",
				Help:    "Time spent waiting on the remote API",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		Polls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jukebox_polls_total",
				Help: "Total number of playback state polls",
			},
			[]string{"result"},
		),
		SearchLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jukebox_search_lookups_total",
				Help: "Search cache lookups by outcome",
			},
			[]string{"result"},
		),
		SearchRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jukebox_search_requests_total",
				Help: "Search requests sent to audio sources",
			},
			[]string{"source", "result"},
		),
		HistoryUpserts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "jukebox_history_upserts_total",
				Help: "Total number of recently played upserts",
			},
		),
		HistorySize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "jukebox_history_entries",
				Help: "Current number of recently played entries",
			},
		),
		PersistenceErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jukebox_persistence_errors_total",
				Help: "Failed reads and writes against the local store",
			},
			[]string{"op"},
		),
		CacheEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "jukebox_search_cache_entries",
				Help: "Current number of cached search results",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.GatewayRequests,
			m.GatewayDuration,
			m.Polls,
			m.SearchLookups,
			m.SearchRequests,
			m.HistoryUpserts,
			m.HistorySize,
			m.PersistenceErrors,
			m.CacheEntries,
		)
	}

	return m
}

// RecordGatewayRequest records one remote API call. status 0 means the
// request never got a response.
func (m *Metrics) RecordGatewayRequest(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.GatewayRequests.WithLabelValues(method, label).Inc()
	m.GatewayDuration.WithLabelValues(method).Observe(d.Seconds())
}

// RecordPoll records a poll outcome: ok, error, stale or unauthenticated.
func (m *Metrics) RecordPoll(result string) {
	if m == nil {
		return
	}
	m.Polls.WithLabelValues(result).Inc()
}

// RecordLookup records a cache hit or miss.
func (m *Metrics) RecordLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.SearchLookups.WithLabelValues("hit").Inc()
	} else {
		m.SearchLookups.WithLabelValues("miss").Inc()
	}
}

// RecordSearch records a source request outcome: ok, error or canceled.
func (m *Metrics) RecordSearch(source, result string) {
	if m == nil {
		return
	}
	m.SearchRequests.WithLabelValues(source, result).Inc()
}

// RecordUpsert records a history upsert and the resulting list size.
func (m *Metrics) RecordUpsert(size int) {
	if m == nil {
		return
	}
	m.HistoryUpserts.Inc()
	m.HistorySize.Set(float64(size))
}

// RecordPersistenceError records a swallowed store failure.
func (m *Metrics) RecordPersistenceError(op string) {
	if m == nil {
		return
	}
	m.PersistenceErrors.WithLabelValues(op).Inc()
}

// SetCacheEntries records the current cache size.
func (m *Metrics) SetCacheEntries(n int) {
	if m == nil {
		return
	}
	m.CacheEntries.Set(float64(n))
}
