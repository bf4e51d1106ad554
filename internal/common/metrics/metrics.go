// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	CRSAssessments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crs_assessments_total",
			Help: "CRS assessments scored, by verdict",
		},
		[]string{"verdict"},
	)

	CRSAssessmentScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crs_assessment_score",
			Help:    "Distribution of CRS totals",
			Buckets: prometheus.LinearBuckets(0, 100, 13),
		},
	)

	CRSCutoffCurrent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crs_cutoff_current",
			Help: "Most recent Express Entry cutoff score",
		},
	)

	CRSCutoffRefresh = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crs_cutoff_refresh_total",
			Help: "Draw feed refresh attempts, by status",
		},
		[]string{"status"},
	)
)

// ObserveJob records the outcome of a single job. An empty errorCode counts
// as success.
func ObserveJob(taskType string, started time.Time, errorCode string) {
	WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(started).Seconds())
	if errorCode == "" {
		WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		return
	}
	WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
}

// TrackActive marks a job of taskType as in flight. Call the returned func
// when the job finishes.
func TrackActive(taskType string) func() {
	g := WorkerJobsActive.WithLabelValues(taskType)
	g.Inc()
	return g.Dec
}

// ObserveAssessment records a scored assessment.
func ObserveAssessment(verdict string, total int) {
	CRSAssessments.WithLabelValues(verdict).Inc()
	CRSAssessmentScore.Observe(float64(total))
}
