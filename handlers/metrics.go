package handlers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recomputeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "collisions_dashboard_recompute_duration_seconds",
		Help:    "Duration of one full dashboard recomputation.",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
	}, []string{"transport"})
	wsInteractions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collisions_ws_interactions_total",
		Help: "Total number of control messages received over websocket.",
	})
	wsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collisions_ws_rejected_total",
		Help: "Total number of websocket control messages rejected as invalid.",
	})
)
