package overlay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "overlay_transitions_total",
			Help: "Overlay state transitions by resulting kind and origin.",
		},
		[]string{"kind", "origin"},
	)

	staleResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "overlay_stale_responses_total",
			Help: "Overlay fetch results discarded because a newer generation was current.",
		},
		[]string{"kind"},
	)

	fetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "overlay_fetch_duration_seconds",
			Help:    "Duration of overlay content fetches.",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"kind", "status"},
	)
)

const (
	originCall       = "call"
	originNavigation = "navigation"
)
