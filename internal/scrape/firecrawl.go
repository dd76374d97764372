// Package scrape provides the client for the external content-extraction
// service that fetches a listing page and normalizes it into markdown/HTML
// plus metadata.
package scrape

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

// ServiceName identifies the content-extraction service in error values.
const ServiceName = "content-extraction"

// Client issues scrape requests against a Firecrawl-compatible API.
type Client struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	logger  *slog.Logger
}

// NewClient creates a scrape client. baseURL is the API root
// (e.g. "https://api.firecrawl.dev").
func NewClient(apiKey, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{apiKey: apiKey, baseURL: baseURL, timeout: timeout, logger: logger}
}

// HasCredential reports whether an API key is configured.
func (c *Client) HasCredential() bool {
	return c.apiKey != ""
}

type scrapeRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats"`
}

type scrapeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    struct {
		Markdown string         `json:"markdown"`
		HTML     string         `json:"html"`
		Metadata map[string]any `json:"metadata"`
	} `json:"data"`
}

// Scrape fetches the listing page and returns the normalized document.
// Markdown is preferred over HTML; title, description and the primary image
// URL come from the returned metadata. One call, no retries, no backoff.
func (c *Client) Scrape(ctx context.Context, url string) (*models.ListingDocument, error) {
	if !c.HasCredential() {
		return nil, &models.ConfigError{Service: ServiceName}
	}

	jsonBody, err := json.Marshal(scrapeRequest{
		URL:     url,
		Formats: []string{"markdown", "html"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	apiURL := c.baseURL + "/v1/scrape"

	if c.logger != nil {
		c.logger.Debug("scraping listing", "url", url, "api_url", apiURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	client := &http.Client{Timeout: c.timeout}
	resp, err := client.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Error("scrape request failed", "url", url, "error", err)
		}
		return nil, &models.UpstreamError{Service: ServiceName, Message: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.UpstreamError{Service: ServiceName, Message: "failed to read response: " + err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if c.logger != nil {
			c.logger.Error("scrape API error",
				"url", url,
				"status_code", resp.StatusCode,
				"response", string(body),
			)
		}
		return nil, &models.UpstreamError{Service: ServiceName, StatusCode: resp.StatusCode, Message: string(body)}
	}

	var sr scrapeResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, &models.UpstreamError{Service: ServiceName, Message: "failed to parse response: " + err.Error()}
	}

	if !sr.Success {
		msg := sr.Error
		if msg == "" {
			msg = "unknown error"
		}
		return nil, &models.UpstreamError{Service: ServiceName, Message: msg}
	}

	content := sr.Data.Markdown
	if content == "" {
		content = sr.Data.HTML
	}

	doc := &models.ListingDocument{
		URL:             url,
		Content:         content,
		Metadata:        sr.Data.Metadata,
		Title:           metadataString(sr.Data.Metadata, "title"),
		Description:     metadataString(sr.Data.Metadata, "description"),
		PrimaryImageURL: primaryImage(sr.Data.Metadata),
	}

	if c.logger != nil {
		c.logger.Info("listing scraped",
			"url", url,
			"content_length", len(doc.Content),
			"title", doc.Title,
		)
	}

	return doc, nil
}

// metadataString reads a string value from scrape metadata, tolerating
// missing keys and non-string values.
func metadataString(metadata map[string]any, key string) string {
	if metadata == nil {
		return ""
	}
	if s, ok := metadata[key].(string); ok {
		return s
	}
	return ""
}

// primaryImage returns the listing's main image URL from metadata. Firecrawl
// reports it as ogImage; the raw og:image key is accepted as a fallback.
func primaryImage(metadata map[string]any) string {
	if s := metadataString(metadata, "ogImage"); s != "" {
		return s
	}
	return metadataString(metadata, "og:image")
}
