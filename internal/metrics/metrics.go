// Package metrics provides Prometheus metrics for monitoring the batch
// progress engine and its HTTP surface.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Hendyvelarius/lapidashboard-sub000/internal/stage"
)

var (
	BatchesByStage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wip_batches",
			Help: "Current number of batches by department, stage, and status",
		},
		[]string{"department", "stage", "status"},
	)
	AverageDaysInStage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wip_average_days_in_stage",
			Help: "Average calendar days in-progress batches have sat in each stage",
		},
		[]string{"department", "stage"},
	)
	SnapshotRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wip_snapshot_refreshes_total",
			Help: "Total number of snapshot refresh passes by result",
		},
		[]string{"result"},
	)
	SnapshotRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wip_snapshot_refresh_duration_seconds",
			Help:    "Snapshot refresh duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
	SnapshotBatches = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wip_snapshot_batches",
			Help: "Distinct batches in the most recent snapshot",
		},
	)
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wip_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wip_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// UpdateSnapshotGauges replaces the per-stage gauges with the counts from a
// freshly computed snapshot.
func UpdateSnapshotGauges(snap *stage.Snapshot) {
	BatchesByStage.Reset()
	AverageDaysInStage.Reset()

	for _, agg := range snap.Departments {
		BatchesByStage.WithLabelValues(agg.Department, agg.Stage, string(stage.StatusInProgress)).Set(float64(agg.InProgressCount))
		BatchesByStage.WithLabelValues(agg.Department, agg.Stage, string(stage.StatusWaiting)).Set(float64(agg.WaitingCount))
		AverageDaysInStage.WithLabelValues(agg.Department, agg.Stage).Set(float64(agg.AverageDaysInProgress))
	}

	SnapshotBatches.Set(float64(snap.BatchCount))
}

func RecordRefreshSuccess(duration time.Duration) {
	SnapshotRefreshes.WithLabelValues("success").Inc()
	SnapshotRefreshDuration.Observe(duration.Seconds())
}

func RecordRefreshFailure() {
	SnapshotRefreshes.WithLabelValues("failure").Inc()
}

func RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
