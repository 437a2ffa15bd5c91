package extractor

import (
	"fmt"
	"strings"

	"bankmetrics/internal/port"
)

var cellEscaper = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ", "\r", " ")

// TablesToMarkdown renders extracted tables as markdown, one "### Table N" block per table,
// the first row as header. Tables without rows or columns are left out but keep their number.
func TablesToMarkdown(tables []port.Table) string {
	blocks := make([]string, 0, len(tables))
	for i, t := range tables {
		if t.RowCount <= 0 || t.ColumnCount <= 0 {
			continue
		}
		blocks = append(blocks, renderTable(i+1, t))
	}
	return strings.Join(blocks, "\n\n")
}

func renderTable(n int, t port.Table) string {
	grid := make([][]string, t.RowCount)
	for r := range grid {
		grid[r] = make([]string, t.ColumnCount)
	}
	for _, c := range t.Cells {
		if c.RowIndex < 0 || c.RowIndex >= t.RowCount || c.ColumnIndex < 0 || c.ColumnIndex >= t.ColumnCount {
			continue
		}
		grid[c.RowIndex][c.ColumnIndex] = cellEscaper.Replace(strings.TrimSpace(c.Content))
	}

	separator := make([]string, t.ColumnCount)
	for i := range separator {
		separator[i] = "---"
	}

	lines := make([]string, 0, t.RowCount+1)
	lines = append(lines, markdownRow(grid[0]), markdownRow(separator))
	for _, row := range grid[1:] {
		lines = append(lines, markdownRow(row))
	}
	return fmt.Sprintf("### Table %d\n\n%s", n, strings.Join(lines, "\n"))
}

func markdownRow(cells []string) string {
	return "| " + strings.Join(cells, " | ") + " |"
}
