package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/afero"

	"bankmetrics/internal/domain"
	"bankmetrics/internal/port"
	"bankmetrics/internal/workspace"
)

// Skip reasons recorded on domain.SkippedBank.
const (
	SkipReasonDirMissing = "document directory missing"
	SkipReasonNoDocument = "no matching document"
)

// PlanBuilder turns a list of banks and a quarter into work items.
type PlanBuilder interface {
	Build(ctx context.Context, banks []string, quarter string) (*domain.Plan, error)
}

type planBuilder struct {
	fs      afero.Fs
	layout  *workspace.Layout
	locator DocumentLocator
	paths   port.PathEnsurer
	logger  *slog.Logger
}

// NewPlanBuilder creates a PlanBuilder.
func NewPlanBuilder(fsys afero.Fs, layout *workspace.Layout, locator DocumentLocator, paths port.PathEnsurer, logger *slog.Logger) PlanBuilder {
	return &planBuilder{
		fs:      fsys,
		layout:  layout,
		locator: locator,
		paths:   paths,
		logger:  logger.With("component", "plan_builder"),
	}
}

// Build validates the request, then locates one document per bank in request order.
// Banks without an eligible document are recorded in Plan.Skipped. An empty plan is not an error.
func (b *planBuilder) Build(ctx context.Context, banks []string, quarter string) (*domain.Plan, error) {
	if err := validateBanks(banks); err != nil {
		return nil, err
	}
	q, err := domain.ParseQuarter(quarter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
	}

	root := b.layout.Root()
	if _, err := b.fs.Stat(root); err != nil {
		return nil, fmt.Errorf("workspace root %s: %w", root, err)
	}

	plan := &domain.Plan{Quarter: q, Items: []domain.WorkItem{}, Skipped: []domain.SkippedBank{}}
	for _, bank := range banks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := b.locator.Locate(q, bank)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("locating document for %s: %w", bank, err)
			}
			skip := domain.SkippedBank{Bank: bank, Reason: skipReason(err), Path: b.layout.DocumentDir(q, bank)}
			b.logger.Warn("skipping bank", "bank", bank, "quarter", q.String(), "reason", skip.Reason, "path", skip.Path)
			plan.Skipped = append(plan.Skipped, skip)
			continue
		}

		item := domain.WorkItem{
			Bank:              bank,
			Quarter:           q,
			InputDocumentPath: doc,
			UserPromptPath:    b.layout.UserPromptPath(bank),
			SystemPromptPath:  b.layout.SystemPromptPath(),
			OutputPath:        b.layout.OutputPath(q, bank),
		}
		if err := b.paths.EnsureParent(item.OutputPath); err != nil {
			return nil, fmt.Errorf("preparing output for %s: %w", bank, err)
		}
		plan.Items = append(plan.Items, item)
	}

	b.logger.Info("plan built", "quarter", q.String(), "items", len(plan.Items), "skipped", len(plan.Skipped))
	return plan, nil
}

func validateBanks(banks []string) error {
	if len(banks) == 0 {
		return fmt.Errorf("%w: at least one bank is required", domain.ErrInvalidArgument)
	}
	seen := make(map[string]bool, len(banks))
	for _, bank := range banks {
		switch {
		case strings.TrimSpace(bank) == "":
			return fmt.Errorf("%w: bank name must not be blank", domain.ErrInvalidArgument)
		case strings.ContainsAny(bank, `/\`) || bank == "." || bank == "..":
			return fmt.Errorf("%w: bank name %q is not a plain directory name", domain.ErrInvalidArgument, bank)
		case seen[bank]:
			return fmt.Errorf("%w: duplicate bank %q", domain.ErrInvalidArgument, bank)
		}
		seen[bank] = true
	}
	return nil
}

func skipReason(err error) string {
	if errors.Is(err, domain.ErrDocumentDirMissing) {
		return SkipReasonDirMissing
	}
	return SkipReasonNoDocument
}
