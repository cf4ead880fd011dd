// Package metrics provides metrics collection and reporting for the MCP server.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const labelTool = "tool"

// Metrics tracks tool executions with both internal counters for fast access
// and Prometheus metrics for scraping.
type Metrics struct {
	totalCalls      atomic.Uint64
	successfulCalls atomic.Uint64
	failedCalls     atomic.Uint64

	// Latency tracking in microseconds
	totalLatency atomic.Int64
	latencyCount atomic.Uint64
	maxLatency   atomic.Int64

	toolsMu    sync.RWMutex
	toolUsage  map[string]uint64
	toolErrors map[string]uint64

	logger *zap.Logger

	promToolCalls   *prometheus.CounterVec
	promToolErrors  *prometheus.CounterVec
	promToolLatency *prometheus.HistogramVec
}

// New creates a new metrics tracker registered with the default Prometheus
// registry, which the health server's /metrics endpoint serves.
func New(logger *zap.Logger) *Metrics {
	return NewWithRegistry(logger, prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a metrics tracker against an explicit registry.
// Tests use this to avoid duplicate registration in the global registry.
func NewWithRegistry(logger *zap.Logger, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		toolUsage:  make(map[string]uint64),
		toolErrors: make(map[string]uint64),
		logger:     logger,

		promToolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "telescope_mcp",
			Name:      "tool_calls_total",
			Help:      "Total number of tool calls, labeled by tool name",
		}, []string{labelTool}),
		promToolErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "telescope_mcp",
			Name:      "tool_errors_total",
			Help:      "Total number of tool errors, labeled by tool name",
		}, []string{labelTool}),
		promToolLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "telescope_mcp",
			Name:      "tool_latency_seconds",
			Help:      "Tool execution latency in seconds, labeled by tool name",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
		}, []string{labelTool}),
	}
}

// RecordToolExecution records one tool invocation in both the internal
// counters and Prometheus.
func (m *Metrics) RecordToolExecution(toolName string, success bool, latency time.Duration) {
	m.totalCalls.Add(1)
	if success {
		m.successfulCalls.Add(1)
	} else {
		m.failedCalls.Add(1)
	}
	m.recordLatency(latency)

	m.toolsMu.Lock()
	m.toolUsage[toolName]++
	if !success {
		m.toolErrors[toolName]++
	}
	m.toolsMu.Unlock()

	m.promToolCalls.WithLabelValues(toolName).Inc()
	m.promToolLatency.WithLabelValues(toolName).Observe(latency.Seconds())
	if !success {
		m.promToolErrors.WithLabelValues(toolName).Inc()
	}
}

func (m *Metrics) recordLatency(latency time.Duration) {
	latencyUs := latency.Microseconds()
	m.totalLatency.Add(latencyUs)
	m.latencyCount.Add(1)

	for {
		currentMax := m.maxLatency.Load()
		if latencyUs <= currentMax {
			break
		}
		if m.maxLatency.CompareAndSwap(currentMax, latencyUs) {
			break
		}
	}
}

// Stats represents current metrics
type Stats struct {
	TotalCalls      uint64
	SuccessfulCalls uint64
	FailedCalls     uint64
	AverageLatency  time.Duration
	MaxLatency      time.Duration
	ToolUsage       map[string]uint64
	ToolErrors      map[string]uint64
}

// GetStats returns current statistics
func (m *Metrics) GetStats() Stats {
	m.toolsMu.RLock()
	toolUsage := make(map[string]uint64, len(m.toolUsage))
	toolErrors := make(map[string]uint64, len(m.toolErrors))
	for k, v := range m.toolUsage {
		toolUsage[k] = v
	}
	for k, v := range m.toolErrors {
		toolErrors[k] = v
	}
	m.toolsMu.RUnlock()

	var avgLatency time.Duration
	if count := m.latencyCount.Load(); count > 0 {
		avgLatency = time.Duration(float64(m.totalLatency.Load())/float64(count)) * time.Microsecond
	}

	return Stats{
		TotalCalls:      m.totalCalls.Load(),
		SuccessfulCalls: m.successfulCalls.Load(),
		FailedCalls:     m.failedCalls.Load(),
		AverageLatency:  avgLatency,
		MaxLatency:      time.Duration(m.maxLatency.Load()) * time.Microsecond,
		ToolUsage:       toolUsage,
		ToolErrors:      toolErrors,
	}
}

// LogStats logs current statistics
func (m *Metrics) LogStats() {
	stats := m.GetStats()

	var errorRate float64
	if stats.TotalCalls > 0 {
		errorRate = float64(stats.FailedCalls) / float64(stats.TotalCalls) * 100
	}

	m.logger.Info("Operational metrics",
		zap.Uint64("total_calls", stats.TotalCalls),
		zap.Uint64("successful_calls", stats.SuccessfulCalls),
		zap.Uint64("failed_calls", stats.FailedCalls),
		zap.Float64("error_rate_pct", errorRate),
		zap.Duration("avg_latency", stats.AverageLatency),
		zap.Duration("max_latency", stats.MaxLatency),
		zap.Any("tool_usage", stats.ToolUsage),
	)
}
