// Package llm provides the HTTP client for Ollama-compatible model servers.
// It is transport only: prompt construction and output interpretation belong
// to the callers.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTemperature is used when a caller passes a negative temperature.
const DefaultTemperature = 0.7

// Usage reports token consumption for a single completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Total returns the combined prompt and completion token count.
func (u Usage) Total() int {
	return u.PromptTokens + u.CompletionTokens
}

// Completion is the raw output of one model call plus its usage metadata.
type Completion struct {
	Content string `json:"content"`
	Model   string `json:"model"`
	Usage   Usage  `json:"usage"`
}

// GenerateParams describes one model call.
type GenerateParams struct {
	Model        string  // server-side model name, e.g. "llama3.1:8b"
	Prompt       string  // user prompt
	SystemPrompt string  // optional, prepended to the prompt
	Temperature  float64 // negative means DefaultTemperature
}

// Client talks to an Ollama-compatible generate API.
// Safe for concurrent use: agents in one round share a single client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *ResponseCache
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client (useful for tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithCache attaches a response cache. Cached completions are returned
// without touching the network, keyed on model, prompts and temperature.
func WithCache(cache *ResponseCache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithTimeout sets the per-call HTTP timeout.
// Model servers routinely take minutes on large prompts; the default is 5m.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// NewClient creates a client for the given base URL, e.g. "http://localhost:11434".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// generateRequest mirrors the Ollama /api/generate request body.
type generateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

// generateResponse mirrors the fields of the Ollama response we consume.
type generateResponse struct {
	Response        string `json:"response"`
	EvalCount       int    `json:"eval_count"`
	PromptEvalCount int    `json:"prompt_eval_count"`
}

// Generate performs one model call and returns the completion.
// A failed call returns an error; callers treat it as an agent error for the
// round, never as fatal to the whole run.
func (c *Client) Generate(ctx context.Context, params GenerateParams) (*Completion, error) {
	if params.Model == "" {
		return nil, fmt.Errorf("model name cannot be empty")
	}

	if params.Temperature < 0 {
		params.Temperature = DefaultTemperature
	}

	fullPrompt := params.Prompt
	if params.SystemPrompt != "" {
		fullPrompt = params.SystemPrompt + "\n\n" + params.Prompt
	}

	if c.cache != nil {
		if hit, ok := c.cache.Get(cacheKey(params.Model, fullPrompt, params.Temperature)); ok {
			return hit, nil
		}
	}

	reqBody, err := json.Marshal(generateRequest{
		Model:  params.Model,
		Prompt: fullPrompt,
		Stream: false,
		Options: map[string]interface{}{
			"temperature": params.Temperature,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model call failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("model API error %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	var gr generateResponse
	if err := json.Unmarshal(data, &gr); err != nil {
		return nil, fmt.Errorf("unmarshal generate response: %w", err)
	}

	completion := &Completion{
		Content: gr.Response,
		Model:   params.Model,
		Usage: Usage{
			PromptTokens:     gr.PromptEvalCount,
			CompletionTokens: gr.EvalCount,
		},
	}

	if c.cache != nil {
		c.cache.Set(cacheKey(params.Model, fullPrompt, params.Temperature), completion)
	}

	return completion, nil
}

// Ping checks that the model server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("model server unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("model server returned %d", resp.StatusCode)
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
