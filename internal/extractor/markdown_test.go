package extractor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bankmetrics/internal/extractor"
	"bankmetrics/internal/port"
)

func TestTablesToMarkdown(t *testing.T) {
	tables := []port.Table{
		{
			RowCount:    3,
			ColumnCount: 2,
			Cells: []port.TableCell{
				{RowIndex: 1, ColumnIndex: 1, Content: " $1,234 "},
				{RowIndex: 0, ColumnIndex: 0, Content: "Metric"},
				{RowIndex: 0, ColumnIndex: 1, Content: "Q1'25"},
				{RowIndex: 1, ColumnIndex: 0, Content: "Net\nIncome"},
				{RowIndex: 2, ColumnIndex: 0, Content: "A|B"},
			},
		},
		{
			RowCount:    1,
			ColumnCount: 1,
			Cells:       []port.TableCell{{RowIndex: 0, ColumnIndex: 0, Content: "Only"}},
		},
	}

	want := "### Table 1\n\n" +
		"| Metric | Q1'25 |\n" +
		"| --- | --- |\n" +
		"| Net Income | $1,234 |\n" +
		"| A\\|B |  |" +
		"\n\n" +
		"### Table 2\n\n" +
		"| Only |\n" +
		"| --- |"

	assert.Equal(t, want, extractor.TablesToMarkdown(tables))
}

func TestTablesToMarkdown_SkipsEmptyAndOutOfRange(t *testing.T) {
	tables := []port.Table{
		{RowCount: 0, ColumnCount: 3},
		{
			RowCount:    1,
			ColumnCount: 1,
			Cells: []port.TableCell{
				{RowIndex: 0, ColumnIndex: 0, Content: "x"},
				{RowIndex: 5, ColumnIndex: 0, Content: "ignored"},
			},
		},
	}

	assert.Equal(t, "### Table 2\n\n| x |\n| --- |", extractor.TablesToMarkdown(tables))
}

func TestTablesToMarkdown_NoTables(t *testing.T) {
	assert.Equal(t, "", extractor.TablesToMarkdown(nil))
}
