package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Namespace = "moderation_engine"

var (
	BlockedMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "blocked_messages_total",
		Help:      "Total number of messages blocked, by filter",
	}, []string{"filter"})

	WarningsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "warnings_issued_total",
		Help:      "Total number of warnings issued",
	})

	Escalations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "escalations_total",
		Help:      "Total number of threshold escalations, by action",
	}, []string{"action"})

	AdminCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "admin_cache_lookups_total",
		Help:      "Admin permission cache lookups, by outcome",
	}, []string{"outcome"})

	MediaDedupHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "media_dedup_hits_total",
		Help:      "Uploads resolved from the content-addressed store",
	})

	ActiveWarnings = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "active_warnings",
		Help:      "Number of currently active warnings across all chats",
	})

	DecisionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "decision_duration_seconds",
		Help:      "Duration of moderation decisions",
		Buckets:   prometheus.DefBuckets,
	}, []string{"status"})
)

func IncBlockedMessages(filter string) {
	BlockedMessages.WithLabelValues(filter).Inc()
}

func IncEscalations(action string) {
	Escalations.WithLabelValues(action).Inc()
}

func IncAdminCacheLookup(outcome string) {
	AdminCacheLookups.WithLabelValues(outcome).Inc()
}

func ObserveDecision(duration float64, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	DecisionDuration.WithLabelValues(status).Observe(duration)
}
