package observability

import "github.com/prometheus/client_golang/prometheus"

// Workflow counters. Label values are bounded enums (status, action, kind,
// result), never request ids or emails.
var (
	// RequestsSubmitted counts intake submissions by resulting status and
	// whether the email was already on file ("new" or "repeat").
	RequestsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resumegate_requests_submitted_total",
			Help: "Download requests received, by record status and kind.",
		},
		[]string{"status", "kind"},
	)

	// Decisions counts owner decisions by action and outcome
	// (applied, unsaved, already_processed, not_found, invalid).
	Decisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resumegate_decisions_total",
			Help: "Owner decisions processed, by action and outcome.",
		},
		[]string{"action", "outcome"},
	)

	// Downloads counts resume download attempts by result
	// (served, denied, missing_file, invalid).
	Downloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resumegate_downloads_total",
			Help: "Resume download attempts, by result.",
		},
		[]string{"result"},
	)

	// Notifications counts outgoing emails by message kind and result
	// (sent, failed, skipped).
	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resumegate_notifications_total",
			Help: "Notification emails, by kind and result.",
		},
		[]string{"kind", "result"},
	)

	// StoreErrors counts swallowed store failures by operation (load, save).
	StoreErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resumegate_store_errors_total",
			Help: "Request store failures that degraded a response.",
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(RequestsSubmitted, Decisions, Downloads, Notifications, StoreErrors)
}
