// Package metrics defines and registers all custom Prometheus metrics for the
// access-control API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "access_control"

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "issued", "reused", "invalid_credentials", "missing_credentials" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ActiveSessions is the number of live sessions after the last session write.
var ActiveSessions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Number of live bearer sessions.",
	},
)

// AdminGateDenialsTotal counts admin gate rejections.
// Label:
//   - cause: "missing token", "unknown token" or "insufficient role"
var AdminGateDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admin_gate_denials_total",
		Help:      "Total number of requests rejected by the admin gate, by cause.",
	},
	[]string{"cause"},
)

// ── Registry metrics ──────────────────────────────────────────────────────────

// AccountMutationsTotal counts registry mutations.
// Labels:
//   - op: "add", "update" or "delete"
//   - result: "ok" or a short failure reason (e.g. "not_found", "duplicate")
var AccountMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "account_mutations_total",
		Help:      "Total number of account registry mutations, by operation and result.",
	},
	[]string{"op", "result"},
)

// WriteQueueDepth tracks the number of mutations waiting for the single writer.
var WriteQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "write_queue_depth",
		Help:      "Current number of mutations pending in the write queue.",
	},
)

// ── HTTP metrics ──────────────────────────────────────────────────────────────

// HTTPRequestDuration measures request latency.
// Labels:
//   - method: HTTP method
//   - route: the matched route pattern (e.g. "/api/users/:username")
//   - code: response status code
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests by method, route and status code.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "code"},
)
