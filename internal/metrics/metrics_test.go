package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"bankmetrics/internal/domain"
	"bankmetrics/internal/metrics"
)

func TestBatchMetrics_ObserveItem(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.ItemStarted()
	m.ObserveItem(domain.ItemStatusSucceeded, 2*time.Second)
	m.ItemStarted()
	m.ObserveItem(domain.ItemStatusFailed, time.Second)
	m.ItemStarted()
	m.ObserveItem(domain.ItemStatusFailed, time.Second)

	// One histogram series plus succeeded and failed counters.
	count, err := testutil.GatherAndCount(reg, "bankmetrics_item_duration_seconds", "bankmetrics_items_total")
	assert.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, float64(0), gaugeValue(t, reg, "bankmetrics_items_in_flight"))
}

func TestBatchMetrics_ObserveRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	res := domain.NewConsolidatedResult()
	res.Add("BankA", nil)
	m.ObserveRun(&domain.AnalysisReport{
		Quarter:      domain.Quarter{Number: 1, Year: 2025},
		Status:       domain.RunStatusPartial,
		Skipped:      []domain.SkippedBank{{Bank: "BankB"}},
		Consolidated: res,
	})

	assert.Equal(t, float64(1), gaugeValue(t, reg, "bankmetrics_banks_skipped_total"))
	assert.Equal(t, float64(1), gaugeValue(t, reg, "bankmetrics_consolidated_banks"))
}

func TestBatchMetrics_NilSafe(t *testing.T) {
	var m *metrics.BatchMetrics
	assert.NotPanics(t, func() {
		m.ItemStarted()
		m.ObserveItem(domain.ItemStatusSucceeded, time.Second)
		m.ObserveRun(&domain.AnalysisReport{})
	})
}

// gaugeValue returns the single sample of a counter or gauge family.
func gaugeValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		metric := f.GetMetric()[0]
		if metric.GetGauge() != nil {
			return metric.GetGauge().GetValue()
		}
		return metric.GetCounter().GetValue()
	}
	t.Fatalf("metric %s not found", name)
	return 0
}
