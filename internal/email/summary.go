package email

import (
	"fmt"
	"html"
	"strings"

	"bankmetrics/internal/domain"
)

// Message is a rendered notification.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

// BuildBatchSummary renders the completion notice for a finished batch.
func BuildBatchSummary(report *domain.AnalysisReport) Message {
	consolidated := 0
	if report.Consolidated != nil {
		consolidated = report.Consolidated.Len()
	}

	subject := fmt.Sprintf("Bank metrics %s: %s (%d/%d banks)",
		report.Quarter.String(), report.Status, consolidated, len(report.RequestedBanks))

	var text strings.Builder
	fmt.Fprintf(&text, "Run %s finished with status %s.\n\n", report.RunID, report.Status)
	fmt.Fprintf(&text, "Quarter: %s\nPlanned: %d\nSucceeded: %d\nFailed: %d\nSkipped: %d\n",
		report.Quarter.String(), report.Planned, report.Succeeded, report.Failed, len(report.Skipped))
	fmt.Fprintf(&text, "Consolidated result: %s\n", report.ConsolidatedPath)
	if report.PublishedURI != "" {
		fmt.Fprintf(&text, "Published to: %s\n", report.PublishedURI)
	}

	var rows strings.Builder
	for _, it := range report.Items {
		line := fmt.Sprintf("%s: %s", it.Bank, it.Status)
		if it.Error != "" {
			line += " (" + it.Error + ")"
		}
		fmt.Fprintf(&text, "\n- %s", line)
		fmt.Fprintf(&rows, "<tr><td>%s</td><td>%s</td><td>%s</td></tr>",
			html.EscapeString(it.Bank), html.EscapeString(string(it.Status)), html.EscapeString(it.Error))
	}
	for _, sk := range report.Skipped {
		fmt.Fprintf(&text, "\n- %s: skipped (%s)", sk.Bank, sk.Reason)
		fmt.Fprintf(&rows, "<tr><td>%s</td><td>skipped</td><td>%s</td></tr>",
			html.EscapeString(sk.Bank), html.EscapeString(sk.Reason))
	}

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Bank metrics %s: %s</h2>
  <p>Run <code>%s</code> consolidated %d of %d requested banks.</p>
  <table style="border-collapse: collapse; width: 100%%;">
    <tr><th align="left">Bank</th><th align="left">Status</th><th align="left">Detail</th></tr>
    %s
  </table>
  <p style="color: #999; font-size: 12px;">%s</p>
</body>
</html>`,
		html.EscapeString(report.Quarter.String()), html.EscapeString(string(report.Status)),
		report.RunID, consolidated, len(report.RequestedBanks), rows.String(),
		html.EscapeString(report.ConsolidatedPath))

	return Message{Subject: subject, Text: text.String(), HTML: htmlBody}
}
