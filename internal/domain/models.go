package domain

import (
	"time"

	"github.com/google/uuid"
)

// WorkItem is one bank's unit of extraction for a quarter. It lives for one batch invocation.
type WorkItem struct {
	Bank              string  `json:"bank"`
	Quarter           Quarter `json:"quarter"`
	InputDocumentPath string  `json:"input_document_path"`
	UserPromptPath    string  `json:"user_prompt_path"`
	SystemPromptPath  string  `json:"system_prompt_path"`
	OutputPath        string  `json:"output_path"`
}

// SkippedBank records a requested bank that produced no work item.
type SkippedBank struct {
	Bank   string `json:"bank"`
	Reason string `json:"reason"`
	Path   string `json:"path"`
}

// Plan is the outcome of batch planning. An empty Items slice is a valid plan.
type Plan struct {
	Quarter Quarter       `json:"quarter"`
	Items   []WorkItem    `json:"items"`
	Skipped []SkippedBank `json:"skipped"`
}

// Empty reports whether no requested bank had an eligible document.
func (p *Plan) Empty() bool {
	return len(p.Items) == 0
}

// ItemResult is the outcome of processing one work item.
type ItemResult struct {
	Item     WorkItem      `json:"item"`
	Metrics  *BankMetrics  `json:"-"`
	Err      error         `json:"-"`
	Degraded bool          `json:"degraded"`
	Duration time.Duration `json:"duration"`
}

// Succeeded reports whether the item produced metrics.
func (r *ItemResult) Succeeded() bool {
	return r.Err == nil
}

// ItemSummary is the caller-facing view of an ItemResult.
type ItemSummary struct {
	Bank       string     `json:"bank"`
	Status     ItemStatus `json:"status"`
	Error      string     `json:"error,omitempty"`
	OutputPath string     `json:"output_path"`
	DurationMs int64      `json:"duration_ms"`
}

// Summary converts the result for API responses and the run ledger.
func (r *ItemResult) Summary() ItemSummary {
	s := ItemSummary{
		Bank:       r.Item.Bank,
		Status:     ItemStatusSucceeded,
		OutputPath: r.Item.OutputPath,
		DurationMs: r.Duration.Milliseconds(),
	}
	switch {
	case r.Err != nil:
		s.Status = ItemStatusFailed
		s.Error = r.Err.Error()
	case r.Degraded:
		s.Status = ItemStatusDegraded
	}
	return s
}

// AnalyzeRequest carries the per-request parameters of a batch.
type AnalyzeRequest struct {
	Banks   []string
	Quarter string
}

// AnalysisReport describes one batch invocation end to end.
type AnalysisReport struct {
	RunID            uuid.UUID           `json:"run_id"`
	Quarter          Quarter             `json:"quarter"`
	Window           []Quarter           `json:"window"`
	RequestedBanks   []string            `json:"requested_banks"`
	Status           RunStatus           `json:"status"`
	Planned          int                 `json:"planned"`
	Succeeded        int                 `json:"succeeded"`
	Failed           int                 `json:"failed"`
	Skipped          []SkippedBank       `json:"skipped"`
	Items            []ItemSummary       `json:"items"`
	Consolidated     *ConsolidatedResult `json:"consolidated"`
	ConsolidatedPath string              `json:"consolidated_path"`
	PublishedURI     string              `json:"published_uri,omitempty"`
	StartedAt        time.Time           `json:"started_at"`
	FinishedAt       time.Time           `json:"finished_at"`
}

// BatchRun is the persisted ledger row for a batch invocation.
type BatchRun struct {
	ID               uuid.UUID `db:"id" json:"id"`
	Quarter          string    `db:"quarter" json:"quarter"`
	Banks            string    `db:"banks" json:"banks"`
	Status           RunStatus `db:"status" json:"status"`
	Planned          int       `db:"planned" json:"planned"`
	Succeeded        int       `db:"succeeded" json:"succeeded"`
	Failed           int       `db:"failed" json:"failed"`
	Skipped          int       `db:"skipped" json:"skipped"`
	ConsolidatedPath string    `db:"consolidated_path" json:"consolidated_path"`
	StartedAt        time.Time `db:"started_at" json:"started_at"`
	FinishedAt       time.Time `db:"finished_at" json:"finished_at"`
}

// BatchRunItem is the persisted per-bank outcome of a batch run.
type BatchRunItem struct {
	RunID      uuid.UUID  `db:"run_id" json:"run_id"`
	Bank       string     `db:"bank" json:"bank"`
	Status     ItemStatus `db:"status" json:"status"`
	Error      string     `db:"error" json:"error"`
	OutputPath string     `db:"output_path" json:"output_path"`
	DurationMs int64      `db:"duration_ms" json:"duration_ms"`
}
