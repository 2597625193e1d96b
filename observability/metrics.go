package observability

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kubex/rubix-dirsync/dirsync"
)

var (
	registerOnce sync.Once

	passesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dirsync",
			Subsystem: "engine",
			Name:      "passes_total",
			Help:      "Completed reconciliation passes.",
		},
	)
	passDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "dirsync",
			Subsystem: "engine",
			Name:      "pass_duration_seconds",
			Help:      "Reconciliation pass duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	recordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dirsync",
			Subsystem: "engine",
			Name:      "records_total",
			Help:      "Mapping records processed, by outcome.",
		},
		[]string{"outcome"},
	)
	devicesAdded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dirsync",
			Subsystem: "engine",
			Name:      "devices_added_total",
			Help:      "Devices bound into device groups.",
		},
	)
	devicesRemoved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dirsync",
			Subsystem: "engine",
			Name:      "devices_removed_total",
			Help:      "Devices removed from device groups.",
		},
	)
	remoteFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dirsync",
			Subsystem: "engine",
			Name:      "remote_failures_total",
			Help:      "Directory calls that failed and were skipped.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(passesTotal, passDuration, recordsTotal, devicesAdded, devicesRemoved, remoteFailures)
	})
}

// ObservePass folds a finished reconciliation pass into the engine
// metrics.
func ObservePass(report dirsync.PassReport) {
	RegisterMetrics()
	passesTotal.Inc()
	passDuration.Observe(report.Duration.Seconds())
	for _, record := range report.Records {
		recordsTotal.WithLabelValues(string(record.Outcome)).Inc()
		devicesAdded.Add(float64(record.Added))
		devicesRemoved.Add(float64(record.Removed))
		remoteFailures.Add(float64(record.Failures))
	}
}

func MetricsHandler() http.Handler {
	RegisterMetrics()
	return promhttp.Handler()
}
