// Package metrics defines and registers the custom Prometheus metrics of the
// leadgate API. It is the single source of truth for metric names, labels
// and help strings.
//
// All metrics are registered with the default registry through promauto when
// the package is first imported.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "leadgate"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthLoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials" or "error"
var AuthLoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// AuthRegistrationsTotal counts registration attempts.
// Label:
//   - result: "success", "conflict" or "error"
var AuthRegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// GuardDenialsTotal counts requests rejected by the authorization guard.
// Label:
//   - reason: "unauthenticated" or "forbidden"
var GuardDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_denials_total",
		Help:      "Total number of requests denied by route policy.",
	},
	[]string{"reason"},
)

// ── Lead metrics ──────────────────────────────────────────────────────────────

// LeadsCreatedTotal counts contact form submissions that were persisted.
// Label:
//   - request_type: "INFO", "QUOTE", "SUPPORT", "PARTNERSHIP" or "OTHER"
var LeadsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "leads_created_total",
		Help:      "Total number of leads created, by request type.",
	},
	[]string{"request_type"},
)

// LeadStatusChangesTotal counts status updates applied by administrators.
var LeadStatusChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lead_status_changes_total",
		Help:      "Total number of lead status changes, by previous and new status.",
	},
	[]string{"from", "to"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsTotal counts notification outcomes.
// Labels:
//   - kind: "admin_notice", "visitor_confirmation" or "lead_event"
//   - result: "sent", "failed", "dropped", "duplicate" or "no_sender"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of notifications handled by the dispatcher, by kind and result.",
	},
	[]string{"kind", "result"},
)

// NotificationQueueDepth tracks pending notifications per dispatcher worker.
var NotificationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// NotificationSendDuration measures a single delivery attempt.
var NotificationSendDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_send_duration_seconds",
		Help:      "Duration of a single notification delivery attempt.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"kind"},
)
