package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// HTTPError represents an HTTP error with status code
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
}

// ResearchFetcher pulls a topic's source page and converts it to markdown
// so it can be fed to the model as reference context.
type ResearchFetcher struct {
	client    *http.Client
	converter *md.Converter
	maxTokens int
}

// NewResearchFetcher creates a fetcher whose output is capped at roughly
// maxTokens tokens.
func NewResearchFetcher(maxTokens int) *ResearchFetcher {
	return &ResearchFetcher{
		client:    &http.Client{Timeout: 30 * time.Second},
		converter: md.NewConverter("", true, nil),
		maxTokens: maxTokens,
	}
}

// Fetch downloads url and returns its content as markdown.
func (rf *ResearchFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request for %s: %w", url, err)
	}

	resp, err := rf.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &HTTPError{StatusCode: resp.StatusCode, URL: url}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}

	markdown, err := rf.converter.ConvertString(string(body))
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}

	return limitTokens(markdown, rf.maxTokens), nil
}

// limitTokens limits text to approximately N tokens (using 4 chars ≈ 1 token)
func limitTokens(text string, maxTokens int) string {
	maxChars := maxTokens * 4
	if len(text) <= maxChars {
		return text
	}
	return text[:maxChars] + "..."
}
