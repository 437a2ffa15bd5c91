package report

import (
	"github.com/shopspring/decimal"

	"bankmetrics/internal/domain"
)

// Well-known metric names produced by the extraction prompts.
const (
	MetricCoverageRatio     = "Coverage Ratio (%)"
	MetricNCLCoverage       = "Net Credit Loss Coverage"
	MetricNetCreditLossRate = "Net Credit Loss Rate (%)"
	MetricDelinquency30Plus = "30+ Delinquency Rate (%)"
	MetricDelinquency90Plus = "90+ Delinquency Rate (%)"

	ChangeColumnQuarterBps = "Δ Qtr (bps)"
	ChangeColumnBps        = "Change (bps)"

	coverageQuarterCount    = 6
	changeTableQuarterCount = 2
)

// ChangeMode selects how the basis-point change column is derived.
type ChangeMode int

const (
	NoChange ChangeMode = iota
	// ChangeTruncate truncates (latest - previous) * 100 toward zero.
	ChangeTruncate
	// ChangeRound rounds (latest - previous) * 100 to the nearest integer.
	ChangeRound
)

// Table is a bank-by-quarter view of one metric.
type Table struct {
	Title   string
	Section string
	Metric  string
	// Quarters are the quarter labels of the value columns.
	Quarters []string
	// ChangeColumn is empty when the table has no change column.
	ChangeColumn string
	Rows         []Row
}

// Row holds one bank's values aligned with Table.Quarters, plus the optional change.
type Row struct {
	Bank   string
	Values []decimal.NullDecimal
	Change decimal.NullDecimal
}

// Columns returns the header row: "Bank", the quarter labels, and the change column if any.
func (t *Table) Columns() []string {
	cols := append([]string{"Bank"}, t.Quarters...)
	if t.ChangeColumn != "" {
		cols = append(cols, t.ChangeColumn)
	}
	return cols
}

// QuarterLabels returns the quarter order of a consolidated result: the keys of the first
// non-empty metric series of the first bank that has one, in document order.
func QuarterLabels(result *domain.ConsolidatedResult) []string {
	for _, bank := range result.Banks() {
		bm, _ := result.Bank(bank)
		if labels := bm.QuarterLabels(); len(labels) > 0 {
			return labels
		}
	}
	return nil
}

// MetricTable builds a table for section/metric over the last lastN quarters of the result.
// Banks without the metric are left out.
func MetricTable(result *domain.ConsolidatedResult, title, section, metric string, lastN int, mode ChangeMode, changeColumn string) *Table {
	quarters := lastQuarters(QuarterLabels(result), lastN)
	t := &Table{
		Title:    title,
		Section:  section,
		Metric:   metric,
		Quarters: quarters,
	}
	if mode != NoChange {
		t.ChangeColumn = changeColumn
	}

	for _, bank := range result.Banks() {
		bm, _ := result.Bank(bank)
		if bm.Series(section, metric) == nil {
			continue
		}
		row := Row{Bank: bank, Values: make([]decimal.NullDecimal, len(quarters))}
		for i, q := range quarters {
			row.Values[i] = bm.Value(section, metric, q)
		}
		if mode != NoChange && len(quarters) >= 2 {
			row.Change = bpsChange(row.Values[len(quarters)-1], row.Values[len(quarters)-2], mode)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// CoverageTable is the coverage-rate table: last six quarters and the quarter-on-quarter change in bps.
func CoverageTable(result *domain.ConsolidatedResult) *Table {
	return MetricTable(result, "Coverage Rates", domain.SectionComputedMetrics, MetricCoverageRatio,
		coverageQuarterCount, ChangeTruncate, ChangeColumnQuarterBps)
}

// NCLCoverageTable is the net-credit-loss coverage table over the last six quarters.
func NCLCoverageTable(result *domain.ConsolidatedResult) *Table {
	return MetricTable(result, "NCL Coverage", domain.SectionComputedMetrics, MetricNCLCoverage,
		coverageQuarterCount, NoChange, "")
}

// StandardTables returns every summary table of the quarterly review, in display order.
func StandardTables(result *domain.ConsolidatedResult) []*Table {
	return []*Table{
		CoverageTable(result),
		NCLCoverageTable(result),
		MetricTable(result, MetricNetCreditLossRate, domain.SectionMetrics, MetricNetCreditLossRate,
			changeTableQuarterCount, ChangeRound, ChangeColumnBps),
		MetricTable(result, MetricDelinquency30Plus, domain.SectionMetrics, MetricDelinquency30Plus,
			changeTableQuarterCount, ChangeRound, ChangeColumnBps),
		MetricTable(result, MetricDelinquency90Plus, domain.SectionMetrics, MetricDelinquency90Plus,
			changeTableQuarterCount, ChangeRound, ChangeColumnBps),
	}
}

func lastQuarters(labels []string, n int) []string {
	if n <= 0 || len(labels) <= n {
		return labels
	}
	return labels[len(labels)-n:]
}

var hundred = decimal.NewFromInt(100)

func bpsChange(latest, prev decimal.NullDecimal, mode ChangeMode) decimal.NullDecimal {
	if !latest.Valid || !prev.Valid {
		return decimal.NullDecimal{}
	}
	bps := latest.Decimal.Sub(prev.Decimal).Mul(hundred)
	if mode == ChangeRound {
		return decimal.NewNullDecimal(bps.Round(0))
	}
	return decimal.NewNullDecimal(bps.Truncate(0))
}
