package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	alignmentRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flowalign_alignment_runs_total",
		Help: "Alignment runs by result (ok, dry_run, error)",
	}, []string{"result"})

	alignmentItemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flowalign_alignment_items_total",
		Help: "Classified prompt nodes by coverage status",
	}, []string{"status"})

	alignmentDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "flowalign_alignment_duration_seconds",
		Help:    "Alignment run duration",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	})

	canonicalBuildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flowalign_canonical_builds_total",
		Help: "Canonical graph builds by result (built, cached, error)",
	}, []string{"result"})

	canonicalBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "flowalign_canonical_build_duration_seconds",
		Help:    "Canonical graph build duration",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	})

	skippedRecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flowalign_skipped_records_total",
		Help: "Malformed flow records skipped during canonicalization",
	}, []string{"kind"})
)

func RecordAlignmentRun(result string, d time.Duration) {
	alignmentRunsTotal.WithLabelValues(result).Inc()
	alignmentDuration.Observe(d.Seconds())
}

func RecordAlignmentItems(counts map[string]int) {
	for status, n := range counts {
		alignmentItemsTotal.WithLabelValues(status).Add(float64(n))
	}
}

func RecordCanonicalBuild(result string, d time.Duration) {
	canonicalBuildsTotal.WithLabelValues(result).Inc()
	if result == "built" {
		canonicalBuildDuration.Observe(d.Seconds())
	}
}

func RecordSkipped(nodes, connections int) {
	if nodes > 0 {
		skippedRecordsTotal.WithLabelValues("node").Add(float64(nodes))
	}
	if connections > 0 {
		skippedRecordsTotal.WithLabelValues("connection").Add(float64(connections))
	}
}
