package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Issuing metrics
	CodesIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowcode_codes_issued_total",
			Help: "Total number of codes issued",
		},
		[]string{"sequence", "tier"}, // tier "0" is the plain digit range
	)

	EncodeFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowcode_encode_failures_total",
			Help: "Total number of rejected encode requests",
		},
		[]string{"reason"}, // "length", "range" or "sequence"
	)

	SequenceRemaining = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "flowcode_sequence_remaining",
			Help: "Codes left before a sequence exhausts its length",
		},
		[]string{"sequence", "length"},
	)

	// Cache metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowcode_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"layer"}, // "l1" or "l2"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowcode_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"layer"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "flowcode_cache_size",
			Help: "Current number of items in cache",
		},
		[]string{"layer"},
	)

	// Request metrics
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flowcode_request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "route", "status"},
	)

	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowcode_requests_total",
			Help: "Total number of requests",
		},
		[]string{"method", "route", "status"},
	)

	// Database metrics
	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flowcode_database_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)
)
