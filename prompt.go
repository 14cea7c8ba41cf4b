package main

import (
	"bytes"
	"fmt"
	"math/rand"
	"strings"
	"text/template"
)

// promptKeywordLimit caps how many keywords from each set a prompt embeds.
const promptKeywordLimit = 5

// maxPromptLinks caps the sampled internal-link block.
const maxPromptLinks = 3

// LinkSampler picks up to n links from the collection without replacement.
// The composer calls it exactly once per prompt so the rendered link block
// and the result's links_used field always agree.
type LinkSampler func(links []LinkRecord, n int) []LinkRecord

// randomLinkSample is the default sampler.
func randomLinkSample(links []LinkRecord, n int) []LinkRecord {
	if n > len(links) {
		n = len(links)
	}
	picked := make([]LinkRecord, len(links))
	copy(picked, links)
	rand.Shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
	return picked[:n]
}

// PromptSelection records exactly which keywords and links a composed
// prompt embedded.
type PromptSelection struct {
	SEOKeywords []string
	LLMKeywords []string
	LinkNames   []string
}

// promptData is what the blog prompt template renders.
type promptData struct {
	Topic       string
	Description string
	Source      string
	SEOKeywords string
	LLMKeywords string
	LinksBlock  string
}

// PromptComposer renders the blog-generation prompt from corpus records.
type PromptComposer struct {
	tmpl    *template.Template
	sampler LinkSampler
}

// NewPromptComposer parses the prompt template once. A nil sampler selects
// the default pseudorandom one.
func NewPromptComposer(templateText string, sampler LinkSampler) (*PromptComposer, error) {
	tmpl, err := template.New("blog-prompt").Parse(templateText)
	if err != nil {
		return nil, fmt.Errorf("parsing blog prompt template: %w", err)
	}
	if sampler == nil {
		sampler = randomLinkSample
	}
	return &PromptComposer{tmpl: tmpl, sampler: sampler}, nil
}

// Compose renders the prompt for one topic. It takes the first five
// keywords of each set and one link sample, and returns them alongside the
// prompt so result bookkeeping cannot diverge from the prompt text.
func (c *PromptComposer) Compose(topic TopicRecord, seo, llm KeywordSet, links []LinkRecord) (string, PromptSelection, error) {
	sel := PromptSelection{
		SEOKeywords: firstN(seo.Primary(), promptKeywordLimit),
		LLMKeywords: firstN(llm.Primary(), promptKeywordLimit),
	}

	var linksBlock strings.Builder
	for _, link := range c.sampler(links, maxPromptLinks) {
		fmt.Fprintf(&linksBlock, "- %s: %s\n", link.Name, link.URL)
		sel.LinkNames = append(sel.LinkNames, link.Name)
	}

	data := promptData{
		Topic:       topic.Topic,
		Description: topic.Description,
		Source:      topic.SourceURL,
		SEOKeywords: strings.Join(sel.SEOKeywords, ", "),
		LLMKeywords: strings.Join(sel.LLMKeywords, ", "),
		LinksBlock:  linksBlock.String(),
	}

	var buf bytes.Buffer
	if err := c.tmpl.Execute(&buf, data); err != nil {
		return "", PromptSelection{}, fmt.Errorf("rendering blog prompt: %w", err)
	}
	return buf.String(), sel, nil
}

// firstN returns the first n entries, or the whole list when shorter.
func firstN(list []string, n int) []string {
	if len(list) <= n {
		return list
	}
	return list[:n]
}
