package main

import "time"

// GenerationStatus represents the outcome status of one blog attempt
type GenerationStatus string

const (
	StatusSuccess GenerationStatus = "success"
	StatusFailed  GenerationStatus = "failed"
)

// TopicRecord is one row of the topic sheet. Missing cells default to ""
// at load time; records are never mutated after loading.
type TopicRecord struct {
	Topic       string `json:"topic"`
	Description string `json:"description"`
	SourceURL   string `json:"source_url"`
}

// LinkRecord is one row of the website sheet. A row without a name is
// labeled "Link" at load time.
type LinkRecord struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// KeywordCategory is one named column of a keyword sheet.
type KeywordCategory struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// KeywordSet holds the ordered categories of one keyword sheet. The first
// category feeds prompt composition; the rest are exposed through the API.
type KeywordSet struct {
	Categories []KeywordCategory
}

// Primary returns the keywords of the first category.
func (s KeywordSet) Primary() []string {
	if len(s.Categories) == 0 {
		return nil
	}
	return s.Categories[0].Keywords
}

// BlogResult tracks the outcome of generating one blog post
type BlogResult struct {
	Topic           string           `json:"topic"`
	Content         string           `json:"content"`
	Status          GenerationStatus `json:"status"`
	Error           string           `json:"error,omitempty"`
	ModelUsed       string           `json:"model_used"`
	InputTokens     int              `json:"input_tokens"`
	OutputTokens    int              `json:"output_tokens"`
	TotalTokens     int              `json:"total_tokens"`
	Cost            float64          `json:"cost"`
	WordCount       int              `json:"word_count"`
	SEOKeywordsUsed []string         `json:"seo_keywords_used"`
	LLMKeywordsUsed []string         `json:"llm_keywords_used"`
	LinksUsed       []string         `json:"links_used"`
	Index           int              `json:"index"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// RunningTotals accumulates token and cost figures across successful
// generations. The batch pipeline owns one instance; the engine owns
// another for its lifetime traffic.
type RunningTotals struct {
	InputTokens  int     `json:"total_input_tokens"`
	OutputTokens int     `json:"total_output_tokens"`
	Cost         float64 `json:"total_cost"`
}

// RunSummary is the aggregate produced once per batch execution.
type RunSummary struct {
	Attempted         int     `json:"attempted"`
	Succeeded         int     `json:"succeeded"`
	Failed            int     `json:"failed"`
	TotalInputTokens  int     `json:"total_input_tokens"`
	TotalOutputTokens int     `json:"total_output_tokens"`
	TotalTokens       int     `json:"total_tokens"`
	TotalCost         float64 `json:"total_cost"`
	AvgCostPerBlog    float64 `json:"average_cost_per_blog"`
	CostPer1KTokens   float64 `json:"cost_per_1k_tokens"`
}
