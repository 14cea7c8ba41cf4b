package main

import (
	"context"
	"strings"

	"github.com/aktagon/llmkit/anthropic"
	"github.com/aktagon/llmkit/anthropic/types"
)

// AnthropicClient serves completions through the Anthropic API. It reports
// no usage block, so generations billed through it fall back to estimated
// input tokens.
type AnthropicClient struct {
	apiKey string
}

func NewAnthropicClient(apiKey string) *AnthropicClient {
	return &AnthropicClient{apiKey: apiKey}
}

func (c *AnthropicClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	settings := types.RequestSettings{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	response, err := anthropic.PromptWithSettings(req.System, req.Prompt, "", c.apiKey, settings)
	if err != nil {
		return nil, &CompletionError{Kind: classifyAnthropicErr(err), Model: req.Model, Err: err}
	}
	if len(response.Content) == 0 || response.Content[0].Text == "" {
		return nil, &CompletionError{Kind: FailureEmpty, Model: req.Model}
	}
	return &CompletionResponse{Content: response.Content[0].Text}, nil
}

// classifyAnthropicErr maps the client library's flat error strings onto
// the engine's failure kinds.
func classifyAnthropicErr(err error) FailureKind {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "401") || strings.Contains(msg, "authentication"):
		return FailureAuth
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit"):
		return FailureQuota
	}
	return FailureTransport
}
