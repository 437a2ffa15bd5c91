package port

import "context"

// ExtractInput carries the raw document handed to a layout extraction service.
type ExtractInput struct {
	FileBytes   []byte
	ContentType string
}

// TableCell is one cell of an extracted table grid.
type TableCell struct {
	RowIndex    int
	ColumnIndex int
	Content     string
}

// Table is an extracted table. Cells are not guaranteed to be sorted.
type Table struct {
	RowCount    int
	ColumnCount int
	Cells       []TableCell
}

// ExtractOutput contains the tables found in a document, in document order.
type ExtractOutput struct {
	Tables    []Table
	ModelUsed string
}

// DocumentExtractor abstracts a document layout extraction service.
type DocumentExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (*ExtractOutput, error)
}
