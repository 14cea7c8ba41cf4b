package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

var reportSeparator = strings.Repeat("=", 50)

// FileSink writes each successful blog as a plain-text report into the
// output directory. The report header is line-oriented so downstream
// tooling can scrape it with simple patterns.
type FileSink struct {
	dir string
}

// NewFileSink creates the output directory if needed.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &FileSink{dir: dir}, nil
}

func (s *FileSink) Name() string { return "file" }

// Store writes the result's report file.
func (s *FileSink) Store(result *BlogResult) error {
	filename := filepath.Join(s.dir, reportFilename(result.Index, result.Topic))
	if err := os.WriteFile(filename, []byte(formatReport(result)), 0644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	log.Printf("  → Saved: %s", filename)
	return nil
}

// reportFilename builds a filesystem-safe name like blog_03_Edge_AI.txt.
func reportFilename(index int, topic string) string {
	safe := strings.NewReplacer(" ", "_", "/", "_").Replace(topic)
	if len(safe) > 30 {
		safe = safe[:30]
	}
	return fmt.Sprintf("blog_%02d_%s.txt", index, safe)
}

// formatReport renders the report header and content for one result.
func formatReport(result *BlogResult) string {
	var b strings.Builder
	b.WriteString("BLOG GENERATION REPORT\n")
	b.WriteString(reportSeparator + "\n")
	fmt.Fprintf(&b, "Topic: %s\n", result.Topic)
	fmt.Fprintf(&b, "Generated: %s\n", result.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Model Used: %s\n", result.ModelUsed)
	fmt.Fprintf(&b, "Input Tokens: %s\n", humanize.Comma(int64(result.InputTokens)))
	fmt.Fprintf(&b, "Output Tokens: %s\n", humanize.Comma(int64(result.OutputTokens)))
	fmt.Fprintf(&b, "Total Tokens: %s\n", humanize.Comma(int64(result.TotalTokens)))
	fmt.Fprintf(&b, "Cost: $%.4f\n", result.Cost)
	fmt.Fprintf(&b, "Word Count: %d\n", result.WordCount)
	fmt.Fprintf(&b, "SEO Keywords: %s\n", strings.Join(result.SEOKeywordsUsed, ", "))
	fmt.Fprintf(&b, "LLM Keywords: %s\n", strings.Join(result.LLMKeywordsUsed, ", "))
	fmt.Fprintf(&b, "Links Used: %s\n", strings.Join(result.LinksUsed, ", "))
	b.WriteString("\n" + reportSeparator + "\n\n")
	b.WriteString(result.Content)
	return b.String()
}

// summaryDetail is the per-blog entry in the JSON summary.
type summaryDetail struct {
	Index       int     `json:"index"`
	Topic       string  `json:"topic"`
	Status      string  `json:"status"`
	WordCount   int     `json:"word_count"`
	TotalTokens int     `json:"total_tokens"`
	Cost        float64 `json:"cost"`
	Error       string  `json:"error,omitempty"`
}

// summaryDocument is the JSON summary written after every batch.
type summaryDocument struct {
	GeneratedAt string          `json:"generated_at"`
	Summary     RunSummary      `json:"summary"`
	Blogs       []summaryDetail `json:"blogs"`
}

// WriteSummary writes the batch summary next to the reports, once as JSON
// and once as plain text.
func (s *FileSink) WriteSummary(results []BlogResult, summary RunSummary) error {
	now := time.Now()
	stem := filepath.Join(s.dir, "SUMMARY_"+now.Format("20060102_150405"))

	doc := summaryDocument{
		GeneratedAt: now.Format(time.RFC3339),
		Summary:     summary,
		Blogs:       make([]summaryDetail, 0, len(results)),
	}
	for _, r := range results {
		doc.Blogs = append(doc.Blogs, summaryDetail{
			Index:       r.Index,
			Topic:       r.Topic,
			Status:      string(r.Status),
			WordCount:   r.WordCount,
			TotalTokens: r.TotalTokens,
			Cost:        r.Cost,
			Error:       r.Error,
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}
	if err := os.WriteFile(stem+".json", data, 0644); err != nil {
		return fmt.Errorf("writing summary JSON: %w", err)
	}

	text := formatSummaryText(results, summary, now)
	if err := os.WriteFile(stem+".txt", []byte(text), 0644); err != nil {
		return fmt.Errorf("writing summary text: %w", err)
	}

	log.Printf("→ Summary saved: %s", stem+".json")
	return nil
}

// formatSummaryText renders the human-readable batch summary.
func formatSummaryText(results []BlogResult, summary RunSummary, now time.Time) string {
	var b strings.Builder
	b.WriteString("BLOG GENERATION SUMMARY\n")
	b.WriteString(reportSeparator + "\n")
	fmt.Fprintf(&b, "Generation Date: %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Total Blogs Attempted: %d\n", summary.Attempted)
	fmt.Fprintf(&b, "Successfully Generated: %d\n", summary.Succeeded)
	fmt.Fprintf(&b, "Failed: %d\n", summary.Failed)
	fmt.Fprintf(&b, "Total Input Tokens: %s\n", humanize.Comma(int64(summary.TotalInputTokens)))
	fmt.Fprintf(&b, "Total Output Tokens: %s\n", humanize.Comma(int64(summary.TotalOutputTokens)))
	fmt.Fprintf(&b, "Total Tokens: %s\n", humanize.Comma(int64(summary.TotalTokens)))
	fmt.Fprintf(&b, "Total Cost: $%.4f\n", summary.TotalCost)
	fmt.Fprintf(&b, "Average Cost per Blog: $%.4f\n", summary.AvgCostPerBlog)
	fmt.Fprintf(&b, "Cost per 1,000 tokens: $%.4f\n", summary.CostPer1KTokens)

	b.WriteString("\nBLOG DETAILS:\n")
	b.WriteString(strings.Repeat("-", 30) + "\n")
	for _, r := range results {
		fmt.Fprintf(&b, "\nBlog %d: %s\n", r.Index, r.Topic)
		fmt.Fprintf(&b, "Status: %s\n", r.Status)
		if r.Status == StatusSuccess {
			fmt.Fprintf(&b, "Word Count: %d\n", r.WordCount)
			fmt.Fprintf(&b, "Tokens: %s\n", humanize.Comma(int64(r.TotalTokens)))
			fmt.Fprintf(&b, "Cost: $%.4f\n", r.Cost)
		} else {
			fmt.Fprintf(&b, "Error: %s\n", r.Error)
		}
		b.WriteString(strings.Repeat("-", 20) + "\n")
	}
	return b.String()
}

// extractMeta scans blog content for the META_TITLE and META_DESCRIPTION
// lines the prompt asks the model to emit. The first occurrence of each
// wins; missing lines yield empty strings.
func extractMeta(content string) (title, description string) {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if title == "" && strings.HasPrefix(trimmed, "META_TITLE:") {
			title = strings.TrimSpace(strings.TrimPrefix(trimmed, "META_TITLE:"))
		} else if description == "" && strings.HasPrefix(trimmed, "META_DESCRIPTION:") {
			description = strings.TrimSpace(strings.TrimPrefix(trimmed, "META_DESCRIPTION:"))
		}
	}
	return title, description
}
