package workspace

import (
	"path/filepath"

	"bankmetrics/internal/config"
	"bankmetrics/internal/domain"
)

// Directory names under the workspace root.
const (
	DocumentsDir = "documents"
	PromptsDir   = "prompts"
	ResultsDir   = "results"

	ConsolidatedFileName = "consolidated_results.json"
)

// Layout resolves the persisted file layout under a workspace root.
type Layout struct {
	cfg config.WorkspaceConfig
}

// NewLayout creates a Layout for the given workspace settings.
func NewLayout(cfg config.WorkspaceConfig) *Layout {
	return &Layout{cfg: cfg}
}

// Root returns the workspace root directory.
func (l *Layout) Root() string {
	return l.cfg.RootDir
}

// DocumentDir is <root>/documents/<quarter>/<bank>.
func (l *Layout) DocumentDir(q domain.Quarter, bank string) string {
	return filepath.Join(l.cfg.RootDir, DocumentsDir, q.String(), bank)
}

// UserPromptPath is <root>/prompts/<bank>/<user prompt file>.
func (l *Layout) UserPromptPath(bank string) string {
	return filepath.Join(l.cfg.RootDir, PromptsDir, bank, l.cfg.UserPromptFile)
}

// SystemPromptPath is <root>/prompts/<system prompt dir>/<system prompt file>, shared by all banks.
func (l *Layout) SystemPromptPath() string {
	return filepath.Join(l.cfg.RootDir, PromptsDir, l.cfg.SystemPromptDir, l.cfg.SystemPromptFile)
}

// QuarterResultsDir is <root>/results/<quarter>.
func (l *Layout) QuarterResultsDir(q domain.Quarter) string {
	return filepath.Join(l.cfg.RootDir, ResultsDir, q.String())
}

// OutputPath is <root>/results/<quarter>/<bank>/<bank>.json. It is unique per (quarter, bank).
func (l *Layout) OutputPath(q domain.Quarter, bank string) string {
	return filepath.Join(l.QuarterResultsDir(q), bank, bank+".json")
}

// ConsolidatedPath is <root>/results/<quarter>/consolidated_results.json.
func (l *Layout) ConsolidatedPath(q domain.Quarter) string {
	return filepath.Join(l.QuarterResultsDir(q), ConsolidatedFileName)
}
