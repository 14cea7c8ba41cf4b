package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const openAIEndpoint = "https://api.openai.com/v1/chat/completions"

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// OpenAIClient talks to the OpenAI chat completions API.
type OpenAIClient struct {
	apiKey   string
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

// NewOpenAIClient builds a client with a modest request rate so batch runs
// stay under the API's limits.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{
		apiKey:   apiKey,
		endpoint: openAIEndpoint,
		client:   &http.Client{Timeout: 60 * time.Second},
		limiter:  rate.NewLimiter(rate.Limit(1), 3),
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &CompletionError{Kind: FailureTransport, Model: req.Model, Err: err}
		}
	}

	messages := []chatMessage{}
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body, err := json.Marshal(chatRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, &CompletionError{Kind: FailureTransport, Model: req.Model, Err: fmt.Errorf("encoding request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &CompletionError{Kind: FailureTransport, Model: req.Model, Err: fmt.Errorf("creating request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &CompletionError{Kind: FailureTransport, Model: req.Model, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &CompletionError{Kind: FailureTransport, Model: req.Model, Status: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		kind := FailureTransport
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			kind = FailureAuth
		case http.StatusTooManyRequests:
			kind = FailureQuota
		}
		return nil, &CompletionError{Kind: kind, Model: req.Model, Status: resp.StatusCode, Err: fmt.Errorf("%s", errSnippet(respBody))}
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &CompletionError{Kind: FailureTransport, Model: req.Model, Err: fmt.Errorf("decoding response: %w", err)}
	}
	if parsed.Error != nil {
		return nil, &CompletionError{Kind: FailureTransport, Model: req.Model, Err: fmt.Errorf("%s", parsed.Error.Message)}
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return nil, &CompletionError{Kind: FailureEmpty, Model: req.Model}
	}

	out := &CompletionResponse{Content: parsed.Choices[0].Message.Content}
	if parsed.Usage != nil {
		out.Usage = &TokenUsage{
			InputTokens:  parsed.Usage.PromptTokens,
			OutputTokens: parsed.Usage.CompletionTokens,
		}
	}
	return out, nil
}

// errSnippet trims an error body to a loggable size.
func errSnippet(body []byte) string {
	const limit = 512
	s := string(body)
	if len(s) > limit {
		s = s[:limit] + "..."
	}
	return s
}
