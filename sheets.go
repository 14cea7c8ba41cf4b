package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const sheetsBaseURL = "https://sheets.googleapis.com/v4/spreadsheets"

// sheetHeaders is the column layout of the tracking spreadsheet. rowFor
// must produce values in this order.
var sheetHeaders = []interface{}{
	"Timestamp",
	"Topic",
	"Meta Title",
	"Meta Description",
	"Blog Content",
	"Word Count",
	"SEO Keywords Used",
	"LLM Keywords Used",
	"Website Links Used",
	"Generation Status",
	"Notes",
}

// SheetsSink appends each successful blog as a row in a Google Sheet via
// the values API, authenticated with an OAuth bearer token.
type SheetsSink struct {
	token   string
	sheetID string
	baseURL string
	client  *http.Client
}

func NewSheetsSink(token, sheetID string) *SheetsSink {
	return &SheetsSink{
		token:   token,
		sheetID: sheetID,
		baseURL: sheetsBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *SheetsSink) Name() string { return "sheets" }

type sheetsAppendBody struct {
	Values [][]interface{} `json:"values"`
}

// rowFor maps a result onto the sheet's columns.
func rowFor(result *BlogResult) []interface{} {
	metaTitle, metaDescription := extractMeta(result.Content)
	return []interface{}{
		result.GeneratedAt.Format("2006-01-02 15:04:05"),
		result.Topic,
		metaTitle,
		metaDescription,
		result.Content,
		result.WordCount,
		strings.Join(result.SEOKeywordsUsed, ", "),
		strings.Join(result.LLMKeywordsUsed, ", "),
		strings.Join(result.LinksUsed, ", "),
		string(result.Status),
		result.Error,
	}
}

// Store appends one row below the header.
func (s *SheetsSink) Store(result *BlogResult) error {
	endpoint := fmt.Sprintf("%s/%s/values/A2:append?valueInputOption=RAW&insertDataOption=INSERT_ROWS", s.baseURL, s.sheetID)
	return s.post("POST", endpoint, sheetsAppendBody{Values: [][]interface{}{rowFor(result)}})
}

// WriteHeaders writes the header row, replacing whatever is in row 1.
func (s *SheetsSink) WriteHeaders() error {
	endpoint := fmt.Sprintf("%s/%s/values/A1?valueInputOption=RAW", s.baseURL, s.sheetID)
	return s.post("PUT", endpoint, sheetsAppendBody{Values: [][]interface{}{sheetHeaders}})
}

func (s *SheetsSink) post(method, endpoint string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding values: %w", err)
	}

	req, err := http.NewRequest(method, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("reaching sheets API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sheets API error %d: %s", resp.StatusCode, snippet)
	}
	return nil
}

// TestConnection reads the spreadsheet metadata to confirm the token and
// sheet ID.
func (s *SheetsSink) TestConnection() error {
	req, err := http.NewRequest("GET", fmt.Sprintf("%s/%s", s.baseURL, s.sheetID), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("reaching sheets API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sheets connection failed: HTTP %d", resp.StatusCode)
	}
	return nil
}
