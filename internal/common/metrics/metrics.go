// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TurnsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialogue_turns_total",
			Help: "Total number of dialogue turns processed",
		},
		[]string{"intent", "stage"},
	)

	TurnsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialogue_turns_failed_total",
			Help: "Total number of dialogue turns that ended in a failure result",
		},
		[]string{"intent", "reason"},
	)

	ActionsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialogue_actions_dispatched_total",
			Help: "Total number of committed business actions",
		},
		[]string{"intent"},
	)

	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "dialogue_turn_duration_seconds",
			Help: "Duration of dialogue turn processing in seconds",
		},
		[]string{"intent"},
	)

	NormalizerFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "normalizer_fallbacks_total",
			Help: "Number of turns where the normalizer output was discarded",
		},
	)
)
