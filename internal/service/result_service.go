package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"bankmetrics/internal/domain"
	"bankmetrics/internal/port"
	"bankmetrics/internal/report"
	"bankmetrics/internal/workspace"
)

// Export formats.
const (
	ExportFormatXLSX = "xlsx"
	ExportFormatCSV  = "csv"
)

// Content types returned by Export.
const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv; charset=utf-8"
)

// ExportFile is a rendered export ready for download.
type ExportFile struct {
	Body        []byte
	ContentType string
	Filename    string
}

// ResultService reads persisted consolidated results and the run ledger.
type ResultService interface {
	Get(ctx context.Context, quarter string) (*domain.ConsolidatedResult, error)
	Tables(ctx context.Context, quarter string) ([]*report.Table, error)
	Export(ctx context.Context, quarter, format string) (*ExportFile, error)
	Window(quarter string, count int) ([]string, error)
	ListRuns(ctx context.Context, quarter string, offset, limit int) ([]domain.BatchRun, int, error)
	GetRun(ctx context.Context, id uuid.UUID) (*domain.BatchRun, []domain.BatchRunItem, error)
}

type resultService struct {
	fs     afero.Fs
	layout *workspace.Layout
	runs   port.BatchRunRepository
}

// NewResultService creates a ResultService. runs may be nil when no ledger is configured.
func NewResultService(fsys afero.Fs, layout *workspace.Layout, runs port.BatchRunRepository) ResultService {
	return &resultService{fs: fsys, layout: layout, runs: runs}
}

func (s *resultService) Get(ctx context.Context, quarter string) (*domain.ConsolidatedResult, error) {
	q, err := parseQuarterArg(quarter)
	if err != nil {
		return nil, err
	}
	path := s.layout.ConsolidatedPath(q)
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrResultNotFound, q.String())
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var result domain.ConsolidatedResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &result, nil
}

func (s *resultService) Tables(ctx context.Context, quarter string) ([]*report.Table, error) {
	result, err := s.Get(ctx, quarter)
	if err != nil {
		return nil, err
	}
	return report.StandardTables(result), nil
}

// Export renders the standard tables of a quarter as xlsx or csv.
func (s *resultService) Export(ctx context.Context, quarter, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatXLSX
	}
	if format != ExportFormatXLSX && format != ExportFormatCSV {
		return nil, fmt.Errorf("%w: unsupported export format %q", domain.ErrInvalidArgument, format)
	}

	tables, err := s.Tables(ctx, quarter)
	if err != nil {
		return nil, err
	}
	q, _ := domain.ParseQuarter(quarter)

	var buf bytes.Buffer
	out := &ExportFile{Filename: report.BuildFilename(q.String(), format)}
	switch format {
	case ExportFormatCSV:
		err = report.WriteCSV(&buf, tables)
		out.ContentType = ContentTypeCSV
	default:
		err = report.WriteXLSX(&buf, tables)
		out.ContentType = ContentTypeXLSX
	}
	if err != nil {
		return nil, fmt.Errorf("rendering %s export: %w", format, err)
	}
	out.Body = buf.Bytes()
	return out, nil
}

// Window returns the canonical labels of the count quarters ending at quarter.
func (s *resultService) Window(quarter string, count int) ([]string, error) {
	labels, err := domain.PastQuarterLabels(quarter, count)
	if err != nil {
		if errors.Is(err, domain.ErrParse) {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
		}
		return nil, err
	}
	return labels, nil
}

func (s *resultService) ListRuns(ctx context.Context, quarter string, offset, limit int) ([]domain.BatchRun, int, error) {
	if s.runs == nil {
		return []domain.BatchRun{}, 0, nil
	}
	if quarter != "" {
		q, err := parseQuarterArg(quarter)
		if err != nil {
			return nil, 0, err
		}
		quarter = q.String()
	}
	return s.runs.ListByQuarter(ctx, quarter, offset, limit)
}

func (s *resultService) GetRun(ctx context.Context, id uuid.UUID) (*domain.BatchRun, []domain.BatchRunItem, error) {
	if s.runs == nil {
		return nil, nil, fmt.Errorf("%w: batch run %s", domain.ErrNotFound, id)
	}
	run, err := s.runs.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.runs.ListItems(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return run, items, nil
}

func parseQuarterArg(quarter string) (domain.Quarter, error) {
	q, err := domain.ParseQuarter(quarter)
	if err != nil {
		return domain.Quarter{}, fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
	}
	return q, nil
}
