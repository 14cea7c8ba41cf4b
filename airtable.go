package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	airtableBaseURL = "https://api.airtable.com/v0"

	// Airtable caps long-text fields, so blog content is truncated.
	airtableContentLimit = 50000
)

// AirtableSink appends each successful blog as a record in an Airtable
// table. In minimal mode only the Name and Notes columns are written, for
// bases that keep the default table layout.
type AirtableSink struct {
	apiKey  string
	baseURL string
	minimal bool
	client  *http.Client
}

// NewAirtableSink targets one table in one base.
func NewAirtableSink(apiKey, baseID, table string, minimal bool) *AirtableSink {
	return &AirtableSink{
		apiKey:  apiKey,
		baseURL: fmt.Sprintf("%s/%s/%s", airtableBaseURL, baseID, url.PathEscape(table)),
		minimal: minimal,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *AirtableSink) Name() string { return "airtable" }

type airtableRecord struct {
	Fields map[string]interface{} `json:"fields"`
}

type airtableRecords struct {
	Records []airtableRecord `json:"records"`
}

// Store appends one record for the result.
func (s *AirtableSink) Store(result *BlogResult) error {
	payload := airtableRecords{
		Records: []airtableRecord{{Fields: s.fields(result)}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}

	req, err := http.NewRequest("POST", s.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting record: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("airtable API error %d: %s", resp.StatusCode, snippet)
	}
	return nil
}

// fields maps a result onto the table's columns.
func (s *AirtableSink) fields(result *BlogResult) map[string]interface{} {
	notes := fmt.Sprintf("Generated: %s | Model: %s | Tokens: %s | Cost: $%.4f",
		result.GeneratedAt.Format("2006-01-02 15:04:05"),
		result.ModelUsed,
		humanize.Comma(int64(result.TotalTokens)),
		result.Cost)

	if s.minimal {
		return map[string]interface{}{
			"Name":  result.Topic,
			"Notes": notes,
		}
	}

	metaTitle, metaDescription := extractMeta(result.Content)
	content := result.Content
	if len(content) > airtableContentLimit {
		content = content[:airtableContentLimit]
	}

	status := "Failed"
	if result.Status == StatusSuccess {
		status = "Success"
	}

	return map[string]interface{}{
		"Name":              result.Topic,
		"Notes":             notes,
		"Meta Title":        metaTitle,
		"Meta Description":  metaDescription,
		"Blog Content":      content,
		"Word Count":        result.WordCount,
		"Model Used":        result.ModelUsed,
		"Input Tokens":      result.InputTokens,
		"Output Tokens":     result.OutputTokens,
		"Cost":              result.Cost,
		"Generation Status": status,
		"SEO Keywords":      strings.Join(result.SEOKeywordsUsed, ", "),
		"LLM Keywords":      strings.Join(result.LLMKeywordsUsed, ", "),
		"Links Used":        strings.Join(result.LinksUsed, ", "),
	}
}

// TestConnection lists the table to confirm credentials and table name.
func (s *AirtableSink) TestConnection() error {
	req, err := http.NewRequest("GET", s.baseURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("reaching airtable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("airtable connection failed: HTTP %d", resp.StatusCode)
	}
	return nil
}
