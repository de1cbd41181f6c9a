package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/claimcheck/internal/model"
	"github.com/ppiankov/claimcheck/internal/util"
)

// Renderer writes reports as JSON, Markdown and terminal summaries
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// JSON returns the indented JSON encoding of a report
func (r *Renderer) JSON(report *model.Report) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return append(data, '\n'), nil
}

// RenderJSON writes the JSON report to path
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := r.JSON(report)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// RenderMarkdown writes the Markdown report to path
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeFile(path, []byte(r.Markdown(report)))
}

// Markdown formats a report as Markdown
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder

	b.WriteString("# Fact Check Report\n\n")
	if report.ID != "" {
		fmt.Fprintf(&b, "**Post:** %s", report.ID)
		if report.Author != nil && report.Author.ScreenName != "" {
			fmt.Fprintf(&b, " by @%s", report.Author.ScreenName)
		}
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "> %s\n\n", strings.ReplaceAll(strings.TrimSpace(report.Text), "\n", "\n> "))
	fmt.Fprintf(&b, "**Sentiment:** %s (%.2f)\n\n", report.Sentiment.Label, report.Sentiment.Confidence)

	fc := report.FactCheck
	if fc == nil {
		return b.String()
	}

	fmt.Fprintf(&b, "## Verdict: %s\n\n", fc.Verdict)
	if fc.Verdict == model.VerdictNotAClaim {
		b.WriteString("The post does not make a checkable factual claim.\n")
		r.footer(&b)
		return b.String()
	}

	fmt.Fprintf(&b, "- **Confidence:** %.3f\n", fc.Confidence)
	fmt.Fprintf(&b, "- **Results considered:** %d\n", fc.ResultsConsidered)
	fmt.Fprintf(&b, "- **Checked at:** %s\n\n", fc.TimestampUTC.Format("2006-01-02 15:04:05 UTC"))

	if len(fc.SearchedQueries) > 0 {
		b.WriteString("### Searched claims\n\n")
		for i, q := range fc.SearchedQueries {
			fmt.Fprintf(&b, "%d. %s\n", i+1, q)
		}
		b.WriteString("\n")
	}

	writeEvidenceSection(&b, "Supporting evidence", fc.Support)
	writeEvidenceSection(&b, "Refuting evidence", fc.Refute)
	writeEvidenceSection(&b, "Neutral evidence", fc.Neutral)

	if fc.Notes != "" {
		fmt.Fprintf(&b, "_%s_\n", fc.Notes)
	}
	r.footer(&b)
	return b.String()
}

func writeEvidenceSection(b *strings.Builder, title string, records []model.EvidenceRecord) {
	if len(records) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", title)
	b.WriteString("| Source | Authority | Score | Evidence |\n")
	b.WriteString("|--------|-----------|-------|----------|\n")
	for _, rec := range records {
		name := rec.Title
		if name == "" {
			name = rec.URL
		}
		fmt.Fprintf(b, "| [%s](%s) | %s | %.3f | %s |\n",
			escapeCell(name), rec.URL, rec.Authority, rec.Score, escapeCell(rec.Evidence))
	}
	b.WriteString("\n")
}

func escapeCell(s string) string {
	s = util.NormalizeSpace(s)
	return strings.ReplaceAll(s, "|", "\\|")
}

func (r *Renderer) footer(b *strings.Builder) {
	if r.includeFooter {
		b.WriteString("\n---\n\n_Generated by claimcheck. Verdicts are automated and may be wrong._\n")
	}
}

// RenderSummary prints a short human-readable summary
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	fmt.Fprintf(w, "Post:       %s\n", util.Trim(util.NormalizeSpace(report.Text), 100))
	fmt.Fprintf(w, "Sentiment:  %s (%.2f)\n", report.Sentiment.Label, report.Sentiment.Confidence)

	fc := report.FactCheck
	if fc == nil {
		return
	}
	if fc.Verdict == model.VerdictNotAClaim {
		fmt.Fprintf(w, "Verdict:    %s\n", fc.Verdict)
		return
	}
	fmt.Fprintf(w, "Verdict:    %s (confidence %.3f)\n", fc.Verdict, fc.Confidence)
	fmt.Fprintf(w, "Claims:     %d searched, %d results considered\n", len(fc.SearchedQueries), fc.ResultsConsidered)
	fmt.Fprintf(w, "Evidence:   %d support, %d refute, %d neutral\n", len(fc.Support), len(fc.Refute), len(fc.Neutral))
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
