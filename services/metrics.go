package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	datasetLoads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collisions_dataset_loads_total",
		Help: "Total number of times the collisions CSV was read.",
	})
	loadFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collisions_dataset_load_failures_total",
		Help: "Total number of failed dataset loads.",
	})
	memoHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collisions_dataset_memo_hits_total",
		Help: "Total number of loads served from the in-memory table.",
	})
	rowsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collisions_dataset_rows_dropped_total",
		Help: "Total number of rows dropped for missing coordinates.",
	})
	loadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "collisions_dataset_load_duration_seconds",
		Help:    "Duration of a full CSV read.",
		Buckets: []float64{0.1, 0.5, 1.0, 2.5, 5.0, 10.0},
	})
	responseCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collisions_response_cache_hits_total",
		Help: "Total number of responses served from Redis.",
	})
)
