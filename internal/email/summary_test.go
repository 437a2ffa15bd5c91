package email

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"bankmetrics/internal/domain"
)

func TestBuildBatchSummary(t *testing.T) {
	result := domain.NewConsolidatedResult()
	result.Add("BankA", nil)
	report := &domain.AnalysisReport{
		RunID:            uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		Quarter:          domain.Quarter{Number: 1, Year: 2025},
		RequestedBanks:   []string{"BankA", "BankB", "<Bank&C>"},
		Status:           domain.RunStatusPartial,
		Planned:          2,
		Succeeded:        1,
		Failed:           1,
		Skipped:          []domain.SkippedBank{{Bank: "<Bank&C>", Reason: "no matching document"}},
		Items:            []domain.ItemSummary{{Bank: "BankA", Status: domain.ItemStatusSucceeded}, {Bank: "BankB", Status: domain.ItemStatusFailed, Error: "timeout"}},
		Consolidated:     result,
		ConsolidatedPath: "/ws/results/Q12025/consolidated_results.json",
		PublishedURI:     "s3://bucket/Q12025/consolidated_results.json",
	}

	msg := BuildBatchSummary(report)

	assert.Equal(t, "Bank metrics Q12025: partial (1/3 banks)", msg.Subject)
	assert.Contains(t, msg.Text, "Failed: 1")
	assert.Contains(t, msg.Text, "- BankB: failed (timeout)")
	assert.Contains(t, msg.Text, "- <Bank&C>: skipped (no matching document)")
	assert.Contains(t, msg.Text, "Published to: s3://bucket/Q12025/consolidated_results.json")
	assert.Contains(t, msg.HTML, "&lt;Bank&amp;C&gt;")
	assert.NotContains(t, msg.HTML, "<Bank&C>")
	assert.Contains(t, msg.HTML, "width: 100%;")
}
