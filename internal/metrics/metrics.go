package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"bankmetrics/internal/domain"
)

const namespace = "bankmetrics"

// BatchMetrics holds the Prometheus collectors for batch processing.
// All methods are safe on a nil receiver so metrics stay optional.
type BatchMetrics struct {
	itemsTotal        *prometheus.CounterVec
	itemDuration      prometheus.Histogram
	runsTotal         *prometheus.CounterVec
	banksSkipped      prometheus.Counter
	consolidatedBanks *prometheus.GaugeVec
	inFlight          prometheus.Gauge
}

// New registers the batch collectors with reg.
func New(reg prometheus.Registerer) *BatchMetrics {
	f := promauto.With(reg)
	return &BatchMetrics{
		itemsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_total",
			Help:      "Work items processed, by outcome.",
		}, []string{"status"}),
		itemDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "item_duration_seconds",
			Help:      "Time spent extracting one bank's metrics.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		runsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Batch runs, by final status.",
		}, []string{"status"}),
		banksSkipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "banks_skipped_total",
			Help:      "Requested banks without an eligible document.",
		}),
		consolidatedBanks: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "consolidated_banks",
			Help:      "Banks present in the latest consolidated result, by quarter.",
		}, []string{"quarter"}),
		inFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "items_in_flight",
			Help:      "Work items currently being processed.",
		}),
	}
}

// ItemStarted marks a work item as in flight.
func (m *BatchMetrics) ItemStarted() {
	if m == nil {
		return
	}
	m.inFlight.Inc()
}

// ObserveItem records a finished work item.
func (m *BatchMetrics) ObserveItem(status domain.ItemStatus, d time.Duration) {
	if m == nil {
		return
	}
	m.inFlight.Dec()
	m.itemsTotal.WithLabelValues(string(status)).Inc()
	m.itemDuration.Observe(d.Seconds())
}

// ObserveRun records a finished batch.
func (m *BatchMetrics) ObserveRun(report *domain.AnalysisReport) {
	if m == nil || report == nil {
		return
	}
	m.runsTotal.WithLabelValues(string(report.Status)).Inc()
	m.banksSkipped.Add(float64(len(report.Skipped)))
	banks := 0
	if report.Consolidated != nil {
		banks = report.Consolidated.Len()
	}
	m.consolidatedBanks.WithLabelValues(report.Quarter.String()).Set(float64(banks))
}
