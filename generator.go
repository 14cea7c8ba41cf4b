package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
)

// CompletionRequest is one call to a completion backend.
type CompletionRequest struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// TokenUsage is the usage block a backend may report.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
}

// CompletionResponse is a successful completion. Usage is nil when the
// backend does not report token counts.
type CompletionResponse struct {
	Content string
	Usage   *TokenUsage
}

// Completer is the external completion capability behind the engine.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// FailureKind classifies completion failures into the closed set the
// engine reports.
type FailureKind int

const (
	FailureTransport FailureKind = iota
	FailureAuth
	FailureQuota
	FailureEmpty
)

func (k FailureKind) String() string {
	switch k {
	case FailureAuth:
		return "authentication failed"
	case FailureQuota:
		return "rate or quota exceeded"
	case FailureEmpty:
		return "empty response"
	}
	return "transport error"
}

// CompletionError is a classified failure from one candidate model.
type CompletionError struct {
	Kind   FailureKind
	Model  string
	Status int // HTTP status when the failure came from a response
	Err    error
}

func (e *CompletionError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Model, e.Kind)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *CompletionError) Unwrap() error { return e.Err }

// ModelCandidate binds a model name to the backend serving it and its
// output-length cap. Candidates are tried in slice order.
type ModelCandidate struct {
	Model     string
	MaxTokens int
	Client    Completer
}

// ModelRate is the per-1K-token price pair for one model.
type ModelRate struct {
	InputPer1K  float64
	OutputPer1K float64
}

// PriceTable maps model names to rates. Models missing from the table bill
// at the primary model's rates.
type PriceTable struct {
	rates   map[string]ModelRate
	primary string
}

// NewPriceTable builds a price table with the named primary fallback entry.
func NewPriceTable(rates map[string]ModelRate, primary string) PriceTable {
	return PriceTable{rates: rates, primary: primary}
}

// Rate returns the rate pair for model, falling back to the primary entry.
func (t PriceTable) Rate(model string) ModelRate {
	if r, ok := t.rates[model]; ok {
		return r
	}
	return t.rates[t.primary]
}

// Engine drives candidate models in fallback order and accounts tokens and
// cost for every generation it serves.
type Engine struct {
	composer    *PromptComposer
	candidates  []ModelCandidate
	prices      PriceTable
	system      string
	temperature float64
	research    *ResearchFetcher

	mu     sync.Mutex
	totals RunningTotals
}

// NewEngine builds an engine over the candidate models, tried in order.
func NewEngine(composer *PromptComposer, candidates []ModelCandidate, prices PriceTable, systemPrompt string, temperature float64) *Engine {
	return &Engine{
		composer:    composer,
		candidates:  candidates,
		prices:      prices,
		system:      systemPrompt,
		temperature: temperature,
	}
}

// SetResearch enables fetching a topic's source page as reference context.
func (e *Engine) SetResearch(rf *ResearchFetcher) {
	e.research = rf
}

// PrimaryModel returns the first candidate's name.
func (e *Engine) PrimaryModel() string {
	if len(e.candidates) == 0 {
		return ""
	}
	return e.candidates[0].Model
}

// Generate produces a blog for one topic. It never returns an error; every
// failure mode is captured in the failed result. Candidates are tried once
// each, in order, and on total failure the error reflects the last
// candidate's failure.
func (e *Engine) Generate(ctx context.Context, topic TopicRecord, seoKeywords, llmKeywords KeywordSet, links []LinkRecord) BlogResult {
	result := BlogResult{Topic: topic.Topic, Status: StatusFailed}

	if len(e.candidates) == 0 {
		result.Error = "no candidate models configured"
		return result
	}

	prompt, sel, err := e.composer.Compose(topic, seoKeywords, llmKeywords, links)
	if err != nil {
		result.Error = fmt.Sprintf("composing prompt: %v", err)
		return result
	}
	result.SEOKeywordsUsed = sel.SEOKeywords
	result.LLMKeywordsUsed = sel.LLMKeywords
	result.LinksUsed = sel.LinkNames

	if e.research != nil && strings.HasPrefix(topic.SourceURL, "http") {
		reference, err := e.research.Fetch(ctx, topic.SourceURL)
		if err != nil {
			log.Printf("  ✗ Research fetch failed for %s: %v", topic.SourceURL, err)
		} else if reference != "" {
			prompt = prompt + "\n\nREFERENCE CONTEXT:\n" + reference
		}
	}

	var lastErr error
	for _, cand := range e.candidates {
		resp, err := cand.Client.Complete(ctx, CompletionRequest{
			Model:       cand.Model,
			System:      e.system,
			Prompt:      prompt,
			MaxTokens:   cand.MaxTokens,
			Temperature: e.temperature,
		})
		if err != nil {
			log.Printf("  ✗ Model %s: %v", cand.Model, err)
			lastErr = err
			continue
		}
		if resp == nil || strings.TrimSpace(resp.Content) == "" {
			lastErr = &CompletionError{Kind: FailureEmpty, Model: cand.Model}
			log.Printf("  ✗ Model %s: %v", cand.Model, lastErr)
			continue
		}

		in, out := 0, 0
		if resp.Usage != nil {
			in, out = resp.Usage.InputTokens, resp.Usage.OutputTokens
		} else {
			// Backend reported no usage; estimate the input side locally
			// and leave output at zero.
			in = estimateTokens(e.system) + estimateTokens(prompt)
		}

		rate := e.prices.Rate(cand.Model)
		cost := float64(in)*rate.InputPer1K/1000 + float64(out)*rate.OutputPer1K/1000

		result.Status = StatusSuccess
		result.Content = resp.Content
		result.ModelUsed = cand.Model
		result.InputTokens = in
		result.OutputTokens = out
		result.TotalTokens = in + out
		result.Cost = cost
		result.WordCount = len(strings.Fields(resp.Content))

		e.mu.Lock()
		e.totals.InputTokens += in
		e.totals.OutputTokens += out
		e.totals.Cost += cost
		e.mu.Unlock()

		return result
	}

	result.Error = fmt.Sprintf("all %d models failed: %v", len(e.candidates), lastErr)
	return result
}

// Totals returns a snapshot of the engine's lifetime counters.
func (e *Engine) Totals() RunningTotals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totals
}

// TestConnection issues a minimal completion against the primary model.
// The call does not count toward the engine's lifetime totals.
func (e *Engine) TestConnection(ctx context.Context) error {
	if len(e.candidates) == 0 {
		return fmt.Errorf("no candidate models configured")
	}

	cand := e.candidates[0]
	resp, err := cand.Client.Complete(ctx, CompletionRequest{
		Model:     cand.Model,
		Prompt:    "Say 'Connection successful!'",
		MaxTokens: 10,
	})
	if err != nil {
		return fmt.Errorf("completion check: %w", err)
	}
	if resp == nil || resp.Content == "" {
		return fmt.Errorf("completion check: empty response")
	}
	return nil
}

// estimateTokens approximates the token count of text (4 chars ≈ 1 token).
func estimateTokens(text string) int {
	return len(text) / 4
}
