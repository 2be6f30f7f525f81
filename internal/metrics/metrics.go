package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Archive metrics
	SegmentsInserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatrelic_segments_inserted_total",
			Help: "Total message segments inserted",
		},
		[]string{"kind"},
	)

	SegmentInsertFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatrelic_segment_inserts_failed_total",
			Help: "Total segment inserts that failed",
		},
	)

	Recalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatrelic_recalls_total",
			Help: "Total recall reconciliations",
		},
		[]string{"outcome"}, // "replayed", "missing" or "error"
	)

	// Presence metrics
	PollTicks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatrelic_poll_ticks_total",
			Help: "Total live-status poll ticks",
		},
		[]string{"room", "outcome"}, // "ok", "probe_error", "missing" or "trap"
	)

	Notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatrelic_notifications_total",
			Help: "Total presence notifications sent",
		},
		[]string{"room", "event"}, // "online" or "offline"
	)

	// Infrastructure metrics
	LogFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatrelic_log_fallbacks_total",
			Help: "Total log entries that fell back to console after a database write failure",
		},
	)
)
