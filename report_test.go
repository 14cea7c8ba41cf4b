package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func sampleResult() *BlogResult {
	return &BlogResult{
		Topic:           "Edge AI",
		Content:         "META_TITLE: Edge AI Explained\nMETA_DESCRIPTION: A practical guide\n\n# Edge AI\n\nBody text here.",
		Status:          StatusSuccess,
		ModelUsed:       "gpt-4o",
		InputTokens:     1234,
		OutputTokens:    5678,
		TotalTokens:     6912,
		Cost:            0.0912,
		WordCount:       1520,
		SEOKeywordsUsed: []string{"ai tools", "machine learning"},
		LLMKeywordsUsed: []string{"what is edge ai"},
		LinksUsed:       []string{"Docs", "Blog"},
		Index:           3,
		GeneratedAt:     time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC),
	}
}

func TestFormatReport(t *testing.T) {
	report := formatReport(sampleResult())

	wantLines := []string{
		"BLOG GENERATION REPORT\n",
		"Topic: Edge AI\n",
		"Generated: 2025-06-01 14:30:00\n",
		"Model Used: gpt-4o\n",
		"Input Tokens: 1,234\n",
		"Output Tokens: 5,678\n",
		"Total Tokens: 6,912\n",
		"Cost: $0.0912\n",
		"Word Count: 1520\n",
		"SEO Keywords: ai tools, machine learning\n",
		"LLM Keywords: what is edge ai\n",
		"Links Used: Docs, Blog\n",
	}
	for _, line := range wantLines {
		if !strings.Contains(report, line) {
			t.Errorf("formatReport() missing %q", strings.TrimRight(line, "\n"))
		}
	}

	// Content follows the closing separator.
	if !strings.HasSuffix(report, reportSeparator+"\n\n"+sampleResult().Content) {
		t.Error("formatReport() content not separated from header")
	}
	if !strings.HasPrefix(report, "BLOG GENERATION REPORT\n"+reportSeparator+"\n") {
		t.Error("formatReport() header not delimited")
	}
}

func TestReportFilename(t *testing.T) {
	tests := []struct {
		name  string
		index int
		topic string
		want  string
	}{
		{
			name:  "plain topic",
			index: 1,
			topic: "Edge AI",
			want:  "blog_01_Edge_AI.txt",
		},
		{
			name:  "slashes replaced",
			index: 2,
			topic: "AI/ML Trends",
			want:  "blog_02_AI_ML_Trends.txt",
		},
		{
			name:  "long topic truncated",
			index: 10,
			topic: "A Very Long Topic Name That Exceeds The Limit",
			want:  "blog_10_A_Very_Long_Topic_Name_That_Ex.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reportFilename(tt.index, tt.topic); got != tt.want {
				t.Errorf("reportFilename() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFileSinkStore(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(filepath.Join(dir, "out"))
	if err != nil {
		t.Fatalf("NewFileSink() unexpected error: %v", err)
	}

	if sink.Name() != "file" {
		t.Errorf("Name() = %q, want file", sink.Name())
	}

	result := sampleResult()
	if err := sink.Store(result); err != nil {
		t.Fatalf("Store() unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "out", "blog_03_Edge_AI.txt"))
	if err != nil {
		t.Fatalf("reading report file: %v", err)
	}
	if string(data) != formatReport(result) {
		t.Error("Store() wrote content that differs from formatReport()")
	}
}

func TestWriteSummary(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(dir)
	if err != nil {
		t.Fatalf("NewFileSink() unexpected error: %v", err)
	}

	results := []BlogResult{
		*sampleResult(),
		{Topic: "Failed Topic", Status: StatusFailed, Error: "all 2 models failed: boom", Index: 4},
	}
	summary := RunSummary{
		Attempted:         2,
		Succeeded:         1,
		Failed:            1,
		TotalInputTokens:  1234,
		TotalOutputTokens: 5678,
		TotalTokens:       6912,
		TotalCost:         0.0912,
		AvgCostPerBlog:    0.0912,
		CostPer1KTokens:   0.0132,
	}

	if err := sink.WriteSummary(results, summary); err != nil {
		t.Fatalf("WriteSummary() unexpected error: %v", err)
	}

	jsonFiles, _ := filepath.Glob(filepath.Join(dir, "SUMMARY_*.json"))
	if len(jsonFiles) != 1 {
		t.Fatalf("WriteSummary() wrote %d JSON files, want 1", len(jsonFiles))
	}
	txtFiles, _ := filepath.Glob(filepath.Join(dir, "SUMMARY_*.txt"))
	if len(txtFiles) != 1 {
		t.Fatalf("WriteSummary() wrote %d text files, want 1", len(txtFiles))
	}

	data, err := os.ReadFile(jsonFiles[0])
	if err != nil {
		t.Fatalf("reading summary JSON: %v", err)
	}
	var doc summaryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("parsing summary JSON: %v", err)
	}
	if doc.Summary != summary {
		t.Errorf("WriteSummary() summary = %+v, want %+v", doc.Summary, summary)
	}
	if len(doc.Blogs) != 2 {
		t.Fatalf("WriteSummary() blogs = %d, want 2", len(doc.Blogs))
	}
	if doc.Blogs[1].Error == "" || doc.Blogs[1].Status != "failed" {
		t.Errorf("WriteSummary() failed entry = %+v", doc.Blogs[1])
	}

	text, err := os.ReadFile(txtFiles[0])
	if err != nil {
		t.Fatalf("reading summary text: %v", err)
	}
	for _, line := range []string{
		"BLOG GENERATION SUMMARY",
		"Total Blogs Attempted: 2",
		"Successfully Generated: 1",
		"Failed: 1",
		"Total Cost: $0.0912",
		"Blog 3: Edge AI",
		"Blog 4: Failed Topic",
		"Error: all 2 models failed: boom",
	} {
		if !strings.Contains(string(text), line) {
			t.Errorf("WriteSummary() text missing %q", line)
		}
	}
}

func TestExtractMeta(t *testing.T) {
	tests := []struct {
		name            string
		content         string
		wantTitle       string
		wantDescription string
	}{
		{
			name:            "both present",
			content:         "META_TITLE: Edge AI Explained\nMETA_DESCRIPTION: A practical guide\n\n# Body",
			wantTitle:       "Edge AI Explained",
			wantDescription: "A practical guide",
		},
		{
			name:            "first occurrence wins",
			content:         "META_TITLE: First\nMETA_TITLE: Second\nMETA_DESCRIPTION: Only",
			wantTitle:       "First",
			wantDescription: "Only",
		},
		{
			name:      "missing description",
			content:   "META_TITLE: Only Title\n\n# Body",
			wantTitle: "Only Title",
		},
		{
			name:    "no meta lines",
			content: "# Just a blog\n\nNo meta lines here.",
		},
		{
			name:            "indented lines still match",
			content:         "  META_TITLE: Padded\n\tMETA_DESCRIPTION: Tabbed",
			wantTitle:       "Padded",
			wantDescription: "Tabbed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, description := extractMeta(tt.content)
			if title != tt.wantTitle {
				t.Errorf("extractMeta() title = %q, want %q", title, tt.wantTitle)
			}
			if description != tt.wantDescription {
				t.Errorf("extractMeta() description = %q, want %q", description, tt.wantDescription)
			}
		})
	}
}
