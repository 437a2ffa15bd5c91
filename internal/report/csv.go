package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// csvColumns is the long-form header shared by every table.
var csvColumns = []string{"Table", "Section", "Metric", "Bank", "Column", "Value"}

// CSVWriter wraps csv.Writer for exporting report tables in long form.
type CSVWriter struct {
	csv *csv.Writer
}

// NewCSVWriter creates a CSVWriter that writes CSV to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *CSVWriter) WriteHeader() error {
	return w.csv.Write(csvColumns)
}

// WriteTable writes one row per bank and column. Missing values are left empty.
func (w *CSVWriter) WriteTable(t *Table) error {
	for _, row := range t.Rows {
		for i, q := range t.Quarters {
			if err := w.csv.Write([]string{t.Title, t.Section, t.Metric, row.Bank, q, formatValue(row.Values[i])}); err != nil {
				return err
			}
		}
		if t.ChangeColumn == "" {
			continue
		}
		if err := w.csv.Write([]string{t.Title, t.Section, t.Metric, row.Bank, t.ChangeColumn, formatValue(row.Change)}); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *CSVWriter) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *CSVWriter) Error() error {
	return w.csv.Error()
}

// WriteCSV writes the BOM, the header and every table to out.
func WriteCSV(out io.Writer, tables []*Table) error {
	if _, err := out.Write(BOM); err != nil {
		return err
	}
	w := NewCSVWriter(out)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	for _, t := range tables {
		if err := w.WriteTable(t); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatValue(v decimal.NullDecimal) string {
	if !v.Valid {
		return ""
	}
	return v.Decimal.String()
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename replaces non-alphanumeric chars (except - _) with _,
// collapses consecutive underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns the Content-Disposition filename for a quarter export.
// Format: bank_metrics_{quarter}.{ext}
func BuildFilename(quarter, ext string) string {
	return fmt.Sprintf("bank_metrics_%s.%s", SanitizeFilename(quarter), ext)
}
