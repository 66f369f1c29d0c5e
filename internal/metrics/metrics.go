// Package metrics holds the Prometheus collectors exported by the bot.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RelayTotal counts relay attempts by content kind and result.
	RelayTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relaybot_relay_total",
		Help: "Relayed messages by content kind and result",
	}, []string{"kind", "result"})

	// ReportTotal counts report attempts by result.
	ReportTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relaybot_report_total",
		Help: "Reports by result",
	}, []string{"result"})

	// MatchTotal counts chat requests by outcome.
	MatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relaybot_match_total",
		Help: "Chat requests by outcome",
	}, []string{"outcome"})

	// Sessions tracks users per matchmaking state.
	Sessions = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "relaybot_sessions",
		Help: "Users currently waiting or chatting",
	}, []string{"state"})

	// ProvenanceRecords tracks the size of the provenance store.
	ProvenanceRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relaybot_provenance_records",
		Help: "Relayed messages that can be traced for reports",
	})

	// EventDuration tracks event handling latency by event kind.
	EventDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "relaybot_event_duration_seconds",
		Help:    "Inbound event handling duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~2.5s
	}, []string{"event"})

	// DroppedEvents counts inbound events the dispatcher refused.
	DroppedEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relaybot_dropped_events_total",
		Help: "Inbound events rejected by the dispatcher",
	})

	// WorkerPanics counts panics recovered in dispatcher workers.
	WorkerPanics = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relaybot_worker_panics_total",
		Help: "Panics recovered in dispatcher workers",
	})

	// ConsistencyViolations counts broken pairing invariants.
	ConsistencyViolations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relaybot_consistency_violations_total",
		Help: "Session registry invariant violations",
	})
)

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
