package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the agent/daemon.
type Metrics struct {
	registry          *prometheus.Registry
	BackendRequests   *prometheus.CounterVec
	BackendDuration   prometheus.Histogram
	ToolCalls         *prometheus.CounterVec
	DelegationsActive prometheus.Gauge
	AgentRuns         *prometheus.CounterVec
}

// NewMetrics constructs a metrics registry with agent collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	backendReqs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "weaver_backend_requests_total",
		Help: "Backend chat requests by outcome (ok, error, timeout)",
	}, []string{"outcome"})

	backendDur := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "weaver_backend_request_duration_seconds",
		Help:    "Backend chat request latency in seconds",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	})

	toolCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "weaver_tool_calls_total",
		Help: "Tool invocations by tool and status",
	}, []string{"tool", "status"})

	active := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "weaver_delegations_active",
		Help: "Child agents currently running",
	})

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "weaver_agent_runs_total",
		Help: "Completed agent runs by outcome",
	}, []string{"outcome"})

	reg.MustRegister(backendReqs, backendDur, toolCalls, active, runs)

	return &Metrics{
		registry:          reg,
		BackendRequests:   backendReqs,
		BackendDuration:   backendDur,
		ToolCalls:         toolCalls,
		DelegationsActive: active,
		AgentRuns:         runs,
	}
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordBackendRequest records one backend round trip.
func (m *Metrics) RecordBackendRequest(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.BackendRequests.WithLabelValues(outcome).Inc()
	m.BackendDuration.Observe(duration.Seconds())
}

// RecordToolCall increments the tool counter.
func (m *Metrics) RecordToolCall(tool, status string) {
	if m == nil {
		return
	}
	if tool == "" {
		tool = "unknown"
	}
	m.ToolCalls.WithLabelValues(tool, status).Inc()
}

// IncDelegations increments the active child gauge.
func (m *Metrics) IncDelegations() {
	if m == nil {
		return
	}
	m.DelegationsActive.Inc()
}

// DecDelegations decrements the active child gauge.
func (m *Metrics) DecDelegations() {
	if m == nil {
		return
	}
	m.DelegationsActive.Dec()
}

// RecordAgentRun counts a finished agent run.
func (m *Metrics) RecordAgentRun(outcome string) {
	if m == nil {
		return
	}
	m.AgentRuns.WithLabelValues(outcome).Inc()
}
