// Package llm provides a minimal client for OpenAI-compatible chat
// completion APIs, including vision requests that attach image references.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/repa-ch/repa-api/internal/models"
)

// ServiceName identifies the completion service in error values.
const ServiceName = "completion"

// Message is a role-tagged chat message. Content is either a plain string or
// a []ContentPart for vision requests.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// ContentPart is one element of a multi-part user message.
type ContentPart struct {
	Type     string    `json:"type"` // "text" or "image_url"
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageRef `json:"image_url,omitempty"`
}

// ImageRef is an image reference with a processing detail hint.
type ImageRef struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"` // "low", "high", or "auto"
}

// TextMessage builds a plain text message.
func TextMessage(role, content string) Message {
	return Message{Role: role, Content: content}
}

// VisionMessage builds a user message pairing a prompt with an image URL at
// the given detail level.
func VisionMessage(prompt, imageURL, detail string) Message {
	return Message{
		Role: "user",
		Content: []ContentPart{
			{Type: "text", Text: prompt},
			{Type: "image_url", ImageURL: &ImageRef{URL: imageURL, Detail: detail}},
		},
	}
}

// CallOptions configures a completion call.
type CallOptions struct {
	Temperature float64       // sampling temperature, 0 means the API default
	MaxTokens   int           // 0 means no explicit output bound
	Timeout     time.Duration // Default: 30s
}

// Client issues chat completion requests against one configured model.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	logger  *slog.Logger
}

// NewClient creates a completion client. baseURL is the API root without the
// /chat/completions suffix (e.g. "https://api.openai.com/v1").
func NewClient(apiKey, baseURL, model string, logger *slog.Logger) *Client {
	return &Client{apiKey: apiKey, baseURL: baseURL, model: model, logger: logger}
}

// HasCredential reports whether an API key is configured.
func (c *Client) HasCredential() bool {
	return c.apiKey != ""
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// Complete sends the messages to the completion API and returns the first
// choice's message content. One call, no retries; a timeout fails exactly as
// any other transport error.
func (c *Client) Complete(ctx context.Context, messages []Message, opts CallOptions) (string, error) {
	if !c.HasCredential() {
		return "", &models.ConfigError{Service: ServiceName}
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	reqBody := map[string]any{
		"model":    c.model,
		"messages": messages,
	}
	if opts.Temperature != 0 {
		reqBody["temperature"] = opts.Temperature
	}
	if opts.MaxTokens != 0 {
		reqBody["max_tokens"] = opts.MaxTokens
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	apiURL := c.baseURL + "/chat/completions"

	if c.logger != nil {
		c.logger.Debug("making completion request",
			"model", c.model,
			"api_url", apiURL,
			"messages", len(messages),
			"temperature", opts.Temperature,
			"max_tokens", opts.MaxTokens,
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	client := &http.Client{Timeout: opts.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Error("completion request failed", "model", c.model, "error", err)
		}
		return "", &models.UpstreamError{Service: ServiceName, Message: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &models.UpstreamError{Service: ServiceName, Message: "failed to read response: " + err.Error()}
	}

	if c.logger != nil {
		c.logger.Debug("completion response received",
			"model", c.model,
			"status_code", resp.StatusCode,
			"response_length", len(body),
		)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if c.logger != nil {
			c.logger.Error("completion API error",
				"model", c.model,
				"status_code", resp.StatusCode,
				"response", string(body),
			)
		}
		return "", &models.UpstreamError{Service: ServiceName, StatusCode: resp.StatusCode, Message: string(body)}
	}

	return parseCompletion(body)
}

// parseCompletion extracts the first choice's message content from an
// OpenAI-format response.
func parseCompletion(body []byte) (string, error) {
	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &models.UpstreamError{Service: ServiceName, Message: "failed to parse response: " + err.Error()}
	}
	if len(resp.Choices) == 0 {
		return "", &models.UpstreamError{Service: ServiceName, Message: "empty response from completion service"}
	}
	return resp.Choices[0].Message.Content, nil
}
