package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline metrics, registered with the default registry and exposed on
// the operational API's /metrics endpoint.
var (
	probesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetchbot_probes_total",
			Help: "URL analysis probes by outcome",
		},
		[]string{"outcome"},
	)

	downloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetchbot_downloads_total",
			Help: "Download requests by modality and outcome",
		},
		[]string{"modality", "outcome"},
	)

	downloadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fetchbot_download_duration_seconds",
			Help:    "Wall time of the fetch-and-deliver pipeline",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	artifactBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "fetchbot_artifact_size_bytes",
			Help: "Size of delivered artifacts",
			Buckets: []float64{
				102400,    // 100KB
				1048576,   // 1MB
				10485760,  // 10MB
				52428800,  // 50MB
				104857600, // 100MB
			},
		},
	)
)
