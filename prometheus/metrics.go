package prometheus

import (
	"sync"
	"time"

	"supplier-kpi-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthSuccessCounter  prometheus.Counter
	AuthErrorsCounter   prometheus.Counter

	// Database operation metrics
	DbOperationDuration *prometheus.HistogramVec

	// KPI computations by kind (overall, suppliers, trends, ...)
	KPIComputationsCounter *prometheus.CounterVec

	// Exports by kind and format
	ExportsCounter *prometheus.CounterVec

	// Last computed overall KPIs, one series per metric
	OverallKPIGauge *prometheus.GaugeVec

	initOnce sync.Once
)

// InitMetrics initializes Prometheus metrics with configuration.
// Only the first call registers collectors.
func InitMetrics(config *config.Config) {
	initOnce.Do(func() {
		prefix := config.Metrics.Prefix

		AuthAttemptsCounter = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_auth_attempts_total",
				Help: "Total number of authentication attempts",
			},
		)

		AuthSuccessCounter = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_auth_success_total",
				Help: "Total number of successful authentications",
			},
		)

		AuthErrorsCounter = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_auth_errors_total",
				Help: "Total number of authentication errors",
			},
		)

		DbOperationDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_db_operation_duration_seconds",
				Help:    "Duration of database operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation_type"},
		)

		KPIComputationsCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_computations_total",
				Help: "Total number of KPI computations",
			},
			[]string{"kind"},
		)

		ExportsCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_exports_total",
				Help: "Total number of KPI exports",
			},
			[]string{"kind", "format"},
		)

		OverallKPIGauge = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: prefix + "_overall",
				Help: "Most recently computed overall supplier KPIs",
			},
			[]string{"metric"},
		)
	})
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		if DbOperationDuration == nil {
			return
		}
		DbOperationDuration.WithLabelValues(operationType).Observe(time.Since(startTime).Seconds())
	}
}

// RecordComputation increments the counter for KPI computations
func RecordComputation(kind string) {
	if KPIComputationsCounter == nil {
		return
	}
	KPIComputationsCounter.WithLabelValues(kind).Inc()
}

// RecordExport increments the export counter
func RecordExport(kind, format string) {
	if ExportsCounter == nil {
		return
	}
	ExportsCounter.WithLabelValues(kind, format).Inc()
}

// UpdateOverallKPIs publishes the latest overall values
func UpdateOverallKPIs(values map[string]float64) {
	if OverallKPIGauge == nil {
		return
	}
	for metric, v := range values {
		OverallKPIGauge.WithLabelValues(metric).Set(v)
	}
}

// RecordAuthAttempt counts an authentication attempt and its outcome
func RecordAuthAttempt(success bool) {
	if AuthAttemptsCounter == nil {
		return
	}
	AuthAttemptsCounter.Inc()
	if success {
		AuthSuccessCounter.Inc()
	} else {
		AuthErrorsCounter.Inc()
	}
}
