// Package ai talks to the Anthropic Messages API.
package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dcode-ide/apiserver/config"
	"github.com/dcode-ide/apiserver/internal/upstream"
	"github.com/dcode-ide/apiserver/internal/urlx"
	"github.com/go-resty/resty/v2"
)

const (
	serviceName      = "anthropic"
	messagesEndpoint = "/v1/messages"
	apiVersion       = "2023-06-01"
	defaultModel     = "claude-3-5-sonnet-20241022"
	defaultMaxTokens = 2000
	temperature      = 0.3

	// NoResponse is returned when the model produced no text block.
	NoResponse = "No response generated"
)

// ErrNotConfigured is returned when no API key is configured.
var ErrNotConfigured = errors.New("ai api key not configured")

// Client sends single-turn prompts to the completion API.
type Client struct {
	http      *resty.Client
	url       string
	apiKey    string
	model     string
	maxTokens int
}

// NewClient constructs a Client from config. A blank API key yields a client
// whose Complete always fails with ErrNotConfigured.
func NewClient(cfg config.AIConfig) *Client {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	httpClient := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("anthropic-version", apiVersion)

	return &Client{
		http:      httpClient,
		url:       urlx.Join(cfg.BaseURL, messagesEndpoint),
		apiKey:    strings.TrimSpace(cfg.APIKey),
		model:     model,
		maxTokens: maxTokens,
	}
}

// Configured reports whether the client has an API key.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Model returns the model identifier sent upstream.
func (c *Client) Model() string {
	return c.model
}

// Complete sends prompt as a single user message and returns the first text
// block of the reply. Failures are classified by the upstream package.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	var result messagesResponse
	var apiErr errorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("x-api-key", c.apiKey).
		SetBody(messagesRequest{
			Model:       c.model,
			MaxTokens:   c.maxTokens,
			Temperature: temperature,
			Messages:    []message{{Role: "user", Content: prompt}},
		}).
		SetResult(&result).
		SetError(&apiErr).
		Post(c.url)
	if err := upstream.Check(serviceName, resp, err, apiErr.Error.Message); err != nil {
		return "", err
	}

	for _, block := range result.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return NoResponse, nil
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type errorResponse struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
