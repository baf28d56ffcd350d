package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	txAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flightbooking_tx_attempts_total",
			Help: "Transaction attempts by operation and outcome",
		},
		[]string{"op", "outcome"},
	)

	txExhausted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flightbooking_tx_retries_exhausted_total",
			Help: "Operations that gave up after repeated serialization conflicts",
		},
		[]string{"op"},
	)

	txDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flightbooking_tx_attempt_duration_seconds",
			Help:    "Duration of a single transaction attempt",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"op"},
	)

	commandResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flightbooking_commands_total",
			Help: "Session commands by name and result",
		},
		[]string{"command", "result"},
	)

	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flightbooking_active_sessions",
			Help: "Currently connected sessions",
		},
	)
)

// Transaction attempt outcomes.
const (
	OutcomeCommitted = "committed"
	OutcomeConflict  = "conflict"
	OutcomeAborted   = "aborted"
)

func TrackTxAttempt(op, outcome string, d time.Duration) {
	txAttempts.WithLabelValues(op, outcome).Inc()
	txDuration.WithLabelValues(op).Observe(d.Seconds())
}

func TrackTxExhausted(op string) {
	txExhausted.WithLabelValues(op).Inc()
}

func TrackCommand(command, result string) {
	commandResults.WithLabelValues(command, result).Inc()
}

func SessionOpened() {
	activeSessions.Inc()
}

func SessionClosed() {
	activeSessions.Dec()
}
