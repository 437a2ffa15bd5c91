package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Known top-level sections of a bank's metrics document.
const (
	SectionMetrics         = "metrics"
	SectionComputedMetrics = "computed_metrics"

	// RawOutputKey holds the interpreter's text when it did not return a JSON object.
	RawOutputKey = "raw_output"
)

// BankMetrics is one bank's extracted result. Only the metrics and computed_metrics
// sections have typed accessors; everything else is passed through unchanged.
type BankMetrics struct {
	root *OrderedMap
}

// NewBankMetrics wraps an already decoded object.
func NewBankMetrics(root *OrderedMap) *BankMetrics {
	if root == nil {
		root = NewOrderedMap()
	}
	return &BankMetrics{root: root}
}

// RawBankMetrics wraps text that could not be decoded as a JSON object.
func RawBankMetrics(text string) *BankMetrics {
	root := NewOrderedMap()
	root.Set(RawOutputKey, text)
	return &BankMetrics{root: root}
}

// ParseBankMetrics decodes data, which must be a JSON object.
func ParseBankMetrics(data []byte) (*BankMetrics, error) {
	root := NewOrderedMap()
	if err := json.Unmarshal(data, root); err != nil {
		if errors.Is(err, ErrParse) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return &BankMetrics{root: root}, nil
}

// Root exposes the underlying ordered tree.
func (b *BankMetrics) Root() *OrderedMap {
	return b.root
}

// Section returns a top-level object section, or nil when absent or not an object.
func (b *BankMetrics) Section(name string) *OrderedMap {
	return b.root.Object(name)
}

// Metrics returns the "metrics" section.
func (b *BankMetrics) Metrics() *OrderedMap {
	return b.Section(SectionMetrics)
}

// ComputedMetrics returns the "computed_metrics" section.
func (b *BankMetrics) ComputedMetrics() *OrderedMap {
	return b.Section(SectionComputedMetrics)
}

// Series returns the quarter-label to value mapping for one metric.
func (b *BankMetrics) Series(section, metric string) *OrderedMap {
	return b.Section(section).Object(metric)
}

// Value returns the cleaned value of a metric for a quarter label.
// Absent sections, metrics and quarters all yield the missing sentinel.
func (b *BankMetrics) Value(section, metric, quarter string) decimal.NullDecimal {
	v, _ := b.Series(section, metric).Get(quarter)
	return ParseMetricValue(v)
}

// QuarterLabels returns the quarter keys of the first non-empty metric series,
// looking at metrics before computed_metrics. Order is the source document's order.
func (b *BankMetrics) QuarterLabels() []string {
	for _, section := range []string{SectionMetrics, SectionComputedMetrics} {
		sec := b.Section(section)
		for _, name := range sec.Keys() {
			if series := sec.Object(name); series.Len() > 0 {
				return series.Keys()
			}
		}
	}
	return nil
}

// RawOutput returns the preserved interpreter text for degraded results.
func (b *BankMetrics) RawOutput() (string, bool) {
	v, ok := b.root.Get(RawOutputKey)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Degraded reports whether the document only carries raw interpreter output.
func (b *BankMetrics) Degraded() bool {
	_, ok := b.RawOutput()
	return ok && b.root.Len() == 1
}

func (b *BankMetrics) MarshalJSON() ([]byte, error) {
	return b.root.MarshalJSON()
}

func (b *BankMetrics) UnmarshalJSON(data []byte) error {
	root := NewOrderedMap()
	if err := root.UnmarshalJSON(data); err != nil {
		return err
	}
	b.root = root
	return nil
}

// ConsolidatedResult is the all-banks view: {"banks": {bank: metrics}} with banks in insertion order.
type ConsolidatedResult struct {
	banks  []string
	byBank map[string]*BankMetrics
}

// NewConsolidatedResult creates an empty result.
func NewConsolidatedResult() *ConsolidatedResult {
	return &ConsolidatedResult{byBank: make(map[string]*BankMetrics)}
}

// Add stores metrics for bank, replacing any earlier entry while keeping its position.
func (r *ConsolidatedResult) Add(bank string, metrics *BankMetrics) {
	if r.byBank == nil {
		r.byBank = make(map[string]*BankMetrics)
	}
	if metrics == nil {
		metrics = NewBankMetrics(nil)
	}
	if _, ok := r.byBank[bank]; !ok {
		r.banks = append(r.banks, bank)
	}
	r.byBank[bank] = metrics
}

// Bank returns the metrics stored for bank.
func (r *ConsolidatedResult) Bank(bank string) (*BankMetrics, bool) {
	m, ok := r.byBank[bank]
	return m, ok
}

// Banks returns bank names in insertion order.
func (r *ConsolidatedResult) Banks() []string {
	out := make([]string, len(r.banks))
	copy(out, r.banks)
	return out
}

// Len returns the number of banks.
func (r *ConsolidatedResult) Len() int {
	return len(r.banks)
}

func (r *ConsolidatedResult) MarshalJSON() ([]byte, error) {
	banks := NewOrderedMap()
	for _, name := range r.banks {
		banks.Set(name, r.byBank[name].Root())
	}
	var buf bytes.Buffer
	buf.WriteString(`{"banks":`)
	b, err := banks.MarshalJSON()
	if err != nil {
		return nil, err
	}
	buf.Write(b)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *ConsolidatedResult) UnmarshalJSON(data []byte) error {
	root := NewOrderedMap()
	if err := root.UnmarshalJSON(data); err != nil {
		return err
	}
	banks := root.Object("banks")
	if banks == nil {
		return fmt.Errorf("%w: consolidated result has no banks object", ErrParse)
	}
	out := NewConsolidatedResult()
	for _, name := range banks.Keys() {
		obj := banks.Object(name)
		if obj == nil {
			return fmt.Errorf("%w: bank %q is not an object", ErrParse, name)
		}
		out.Add(name, NewBankMetrics(obj))
	}
	*r = *out
	return nil
}
