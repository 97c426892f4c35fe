// Package llm provides an HTTP client for an OpenAI-compatible chat
// completions endpoint. The client performs one request per call; there are
// no retries and no fallback — callers treat any failure as fatal.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const _defaultTimeout = 2 * time.Minute

// DefaultEndpoint is the API root used when no custom endpoint is configured.
const DefaultEndpoint = "https://api.openai.com/v1"

// ErrUnreachable indicates the generation service could not be reached
// (connection refused, timeout, DNS failure).
var ErrUnreachable = errors.New("generation service unreachable")

// ErrRequestFailed indicates the service responded with a non-2xx status.
var ErrRequestFailed = errors.New("generation request failed")

// ErrEmptyResponse indicates the service returned no choices.
var ErrEmptyResponse = errors.New("generation service returned no text")

// Client calls the chat completions API. Zero value is not valid; use NewClient.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// CompleteOptions configures one generation request.
type CompleteOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Usage is the token accounting the service reports for one request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is the result of one generation request.
type Completion struct {
	Text  string
	Usage Usage
}

// NewClient builds a client. endpoint is the API root (e.g.
// https://api.openai.com/v1); trailing slashes are trimmed. token is sent as
// a bearer credential. If httpClient is nil, a default client with a 2m
// timeout is used.
func NewClient(endpoint, token string, httpClient *http.Client) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: _defaultTimeout}
	}
	return &Client{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	// Always sent: 0 is a deliberate setting (deterministic sampling), not
	// "use the service default".
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

// Complete sends prompt as a single user message and returns the generated
// text with token-usage metadata. opts must carry a model name. Transport
// errors wrap ErrUnreachable; non-2xx responses wrap ErrRequestFailed with a
// snippet of the response body.
func (c *Client) Complete(ctx context.Context, prompt string, opts *CompleteOptions) (*Completion, error) {
	if opts == nil || opts.Model == "" {
		return nil, errors.New("llm: model required")
	}
	payload := chatRequest{
		Model:       opts.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("llm: encode request: %w", err)
	}
	url := c.endpoint + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("llm: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llm: %w", errors.Join(ErrUnreachable, err))
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("llm: %w: HTTP %d: %s", ErrRequestFailed, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("llm: parse response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, ErrEmptyResponse
	}
	return &Completion{
		Text:  parsed.Choices[0].Message.Content,
		Usage: parsed.Usage,
	}, nil
}
