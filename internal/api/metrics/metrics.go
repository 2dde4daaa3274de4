// Package metrics defines and registers all custom Prometheus metrics for the
// second opinion API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry at package init; the
// /metrics endpoint exposes them alongside the HTTP middleware metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "secondopinion"

// ── Case lifecycle metrics ───────────────────────────────────────────────────

// CaseEventsRecordedTotal counts audit trail entries written, by event type
// (case_submitted, case_accepted, opinion_ready).
var CaseEventsRecordedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "case_events_recorded_total",
		Help:      "Total number of case lifecycle events written to the audit trail.",
	},
	[]string{"type"},
)

// AuditQueueDepth tracks the number of events waiting in each dispatcher
// worker channel.
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of case events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Request edge metrics ─────────────────────────────────────────────────────

// AuthRejectionsTotal counts requests rejected before reaching a handler.
// Label:
//   - reason: "missing_token", "invalid_token", or "forbidden"
var AuthRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_rejections_total",
		Help:      "Total number of requests rejected by the auth or RBAC middleware.",
	},
	[]string{"reason"},
)

// RateLimitedTotal counts requests rejected by the rate limiter.
var RateLimitedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected with 429 by the rate limiter.",
	},
)
