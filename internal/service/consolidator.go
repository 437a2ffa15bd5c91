package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/afero"

	"bankmetrics/internal/domain"
	"bankmetrics/internal/workspace"
)

const bankMetricsSchemaURL = "bank_metrics.json"

// bankMetricsSchema accepts any object whose metric sections, when present, are objects.
// Entries inside a section pass through; the typed accessors skip non-object ones.
const bankMetricsSchema = `{
  "type": "object",
  "properties": {
    "metrics": {"$ref": "#/$defs/section"},
    "computed_metrics": {"$ref": "#/$defs/section"}
  },
  "$defs": {
    "section": {"type": "object"}
  }
}`

// Consolidator merges per-bank result files into one consolidated result.
type Consolidator interface {
	Consolidate(ctx context.Context, q domain.Quarter, items []domain.WorkItem) (*domain.ConsolidatedResult, string, error)
}

type consolidator struct {
	fs     afero.Fs
	layout *workspace.Layout
	schema *jsonschema.Schema
	logger *slog.Logger
}

// NewConsolidator creates a Consolidator.
func NewConsolidator(fsys afero.Fs, layout *workspace.Layout, logger *slog.Logger) (Consolidator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(bankMetricsSchemaURL, strings.NewReader(bankMetricsSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(bankMetricsSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &consolidator{
		fs:     fsys,
		layout: layout,
		schema: schema,
		logger: logger.With("component", "consolidator"),
	}, nil
}

// Consolidate reads each item's output file in item order. Missing, unreadable or
// malformed files are logged and left out. The result is written atomically to the
// quarter's consolidated path, which is returned. Running it twice over the same
// files produces identical bytes.
func (c *consolidator) Consolidate(ctx context.Context, q domain.Quarter, items []domain.WorkItem) (*domain.ConsolidatedResult, string, error) {
	result := domain.NewConsolidatedResult()
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}
		metrics, err := c.readBank(item.OutputPath)
		if err != nil {
			c.logger.Warn("omitting bank from consolidated result", "bank", item.Bank, "path", item.OutputPath, "error", err)
			continue
		}
		result.Add(item.Bank, metrics)
	}

	body, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("encoding consolidated result: %w", err)
	}
	path := c.layout.ConsolidatedPath(q)
	if err := workspace.WriteFileAtomic(c.fs, path, body); err != nil {
		return nil, "", err
	}

	c.logger.Info("consolidated result written", "quarter", q.String(), "banks", result.Len(), "requested", len(items), "path", path)
	return result, path, nil
}

func (c *consolidator) readBank(path string) (*domain.BankMetrics, error) {
	data, err := afero.ReadFile(c.fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := c.validate(data); err != nil {
		return nil, err
	}
	return domain.ParseBankMetrics(data)
}

func (c *consolidator) validate(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrParse, err)
	}
	if err := c.schema.Validate(v); err != nil {
		return fmt.Errorf("%w: metrics file does not match schema: %v", domain.ErrParse, err)
	}
	return nil
}
