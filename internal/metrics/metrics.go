// Package metrics counts what padup does during one invocation. The samples
// live in a private registry that can be dumped in the node-exporter
// textfile format after each command.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/padup/padup/internal/errors"
)

const namespace = "padup"

type Metrics struct {
	CommandExecutions *prometheus.CounterVec   // command, success
	CommandDuration   *prometheus.HistogramVec // command
	Errors            *prometheus.CounterVec   // error_code, component

	APIRequests      *prometheus.CounterVec   // method, path, status
	APILatency       *prometheus.HistogramVec // method, path
	APINetworkErrors *prometheus.CounterVec   // method, path

	// SessionRejections counts 401 reactions: "cleared" for the first,
	// "absorbed" for the ones that follow it.
	SessionRejections *prometheus.CounterVec
	GuardDecisions    *prometheus.CounterVec // route, decision
	FlowOutcomes      *prometheus.CounterVec // flow, outcome

	CacheHits   *prometheus.CounterVec // cache
	CacheMisses *prometheus.CounterVec // cache
	LikeToggles *prometheus.CounterVec // result

	reg *prometheus.Registry
}

// API latency buckets run longer than the defaults since uploads go through
// the same client.
var apiBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// New registers every padup metric on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return f.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help}, labels)
	}
	histogram := func(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
		return f.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: name, Help: help, Buckets: buckets}, labels)
	}

	return &Metrics{
		CommandExecutions: counter("command_executions_total", "Commands run, by outcome.", "command", "success"),
		CommandDuration:   histogram("command_duration_seconds", "Wall time of a command.", prometheus.DefBuckets, "command"),
		Errors:            counter("errors_total", "Errors by code.", "error_code", "component"),

		APIRequests:      counter("api_requests_total", "API responses by method, path template and status class.", "method", "path", "status"),
		APILatency:       histogram("api_latency_seconds", "API round trip time.", apiBuckets, "method", "path"),
		APINetworkErrors: counter("api_network_errors_total", "API requests that got no response.", "method", "path"),

		SessionRejections: counter("session_rejections_total", "401 responses by reaction.", "reaction"),
		GuardDecisions:    counter("guard_decisions_total", "Route guard decisions.", "route", "decision"),
		FlowOutcomes:      counter("flow_outcomes_total", "Auth flow submissions by outcome.", "flow", "outcome"),

		CacheHits:   counter("cache_hits_total", "Local cache hits.", "cache"),
		CacheMisses: counter("cache_misses_total", "Local cache misses.", "cache"),
		LikeToggles: counter("community_like_toggles_total", "Optimistic like toggles by result.", "result"),

		reg: reg,
	}
}

// Registry exposes the private registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// ObserveCommand records one finished command. A coded error is also
// counted under its code.
func (m *Metrics) ObserveCommand(command string, err error, elapsed time.Duration) {
	m.CommandExecutions.WithLabelValues(command, strconv.FormatBool(err == nil)).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(elapsed.Seconds())
	if code := errors.CodeOf(err); code != "" {
		m.Errors.WithLabelValues(string(code), "cli").Inc()
	}
}

// WriteTextfile replaces path with the current samples. An empty path is a
// no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.reg)
}

// StatusClass buckets an HTTP status for the status label. 401 keeps its own
// class because it drives the session reaction.
func StatusClass(code int) string {
	switch {
	case code == 401:
		return "401"
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	case code >= 200:
		return "2xx"
	}
	return "other"
}
