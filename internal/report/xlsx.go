package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	defaultSheet       = "Sheet1"
	maxSheetNameLength = 31
)

var sheetNameReplacer = strings.NewReplacer(
	":", "-", "\\", "-", "/", "-", "?", "", "*", "", "[", "(", "]", ")",
)

// WriteXLSX writes a workbook with one sheet per table to out.
func WriteXLSX(out io.Writer, tables []*Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	used := make(map[string]bool, len(tables))
	for i, t := range tables {
		sheet := uniqueSheetName(t.Title, used)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet); err != nil {
				return fmt.Errorf("renaming sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("creating sheet %q: %w", sheet, err)
		}
		if err := writeSheet(f, sheet, t); err != nil {
			return err
		}
	}
	if len(tables) > 0 {
		f.SetActiveSheet(0)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	_, err = buf.WriteTo(out)
	return err
}

func writeSheet(f *excelize.File, sheet string, t *Table) error {
	for i, h := range t.Columns() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for r, row := range t.Rows {
		rowNum := r + 2
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := f.SetCellValue(sheet, cell, row.Bank); err != nil {
			return err
		}
		values := row.Values
		if t.ChangeColumn != "" {
			values = append(values[:len(values):len(values)], row.Change)
		}
		for c, v := range values {
			if !v.Valid {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+2, rowNum)
			if err := f.SetCellValue(sheet, cell, v.Decimal.InexactFloat64()); err != nil {
				return err
			}
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 28)
	if n := len(t.Columns()); n > 1 {
		last, _ := excelize.ColumnNumberToName(n)
		_ = f.SetColWidth(sheet, "B", last, 14)
	}
	return nil
}

func uniqueSheetName(title string, used map[string]bool) string {
	base := strings.TrimSpace(sheetNameReplacer.Replace(title))
	if base == "" {
		base = "Table"
	}
	base = truncateRunes(base, maxSheetNameLength)

	name := base
	for i := 2; used[name]; i++ {
		suffix := fmt.Sprintf(" %d", i)
		name = truncateRunes(base, maxSheetNameLength-len(suffix)) + suffix
	}
	used[name] = true
	return name
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
