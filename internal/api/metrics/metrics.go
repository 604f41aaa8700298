// Package metrics defines and registers all custom Prometheus metrics for the
// portal API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics register with the default Prometheus registry via promauto at import
// time; the /metrics endpoint is mounted by the router.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Authentication metrics ────────────────────────────────────────────────────

// LoginsTotal counts login attempts by outcome.
// Label:
//   - result: "success", "failure", "locked", or "twofa_required"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"result"},
)

// LockoutsTotal counts login requests rejected by an active brute-force lockout.
var LockoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lockouts_total",
		Help:      "Total number of login requests rejected by an active lockout.",
	},
)

// TwoFAVerificationsTotal counts 2FA verification attempts by outcome.
// Label:
//   - result: "success" or "failure"
var TwoFAVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "twofa_verifications_total",
		Help:      "Total number of 2FA verification attempts, by outcome.",
	},
	[]string{"result"},
)

// CSRFRejectionsTotal counts requests rejected by the CSRF guard.
var CSRFRejectionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "csrf_rejections_total",
		Help:      "Total number of requests rejected for a missing or mismatched CSRF token.",
	},
)

// SessionAnomaliesTotal counts sessions terminated by the session guard.
// Label:
//   - reason: "idle_timeout", "ip_change", or "rapid_requests"
var SessionAnomaliesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_anomalies_total",
		Help:      "Total number of sessions terminated by anomaly detection, by reason.",
	},
	[]string{"reason"},
)

// ── Payment metrics ───────────────────────────────────────────────────────────

// PaymentsCreatedTotal counts newly submitted payments.
// Label:
//   - currency: "USD", "EUR", "ZAR", or "GBP"
var PaymentsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_created_total",
		Help:      "Total number of payments submitted, by currency.",
	},
	[]string{"currency"},
)

// PaymentTransitionsTotal counts approval-workflow transitions.
// Label:
//   - status: the target status ("verified", "sent", "denied")
var PaymentTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_transitions_total",
		Help:      "Total number of payment status transitions, by target status.",
	},
	[]string{"status"},
)

// ── Audit pipeline metrics ────────────────────────────────────────────────────

// AuditQueueDepth tracks the number of audit events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ObserveAuditQueueDepth records the current depth of a dispatcher worker channel.
func ObserveAuditQueueDepth(workerID, depth int) {
	AuditQueueDepth.WithLabelValues(strconv.Itoa(workerID)).Set(float64(depth))
}
