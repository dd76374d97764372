package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/repa-ch/repa-api/internal/llm"
	"github.com/repa-ch/repa-api/internal/models"
)

func f64(v float64) *float64 { return &v }

func testListing() *models.ListingDocument {
	return &models.ListingDocument{
		URL:     "https://example.com/listing",
		Content: "# 3.5 room flat in Bern\nCHF 2400/month, 85 m²",
		Title:   "3.5 room flat in Bern",
	}
}

func TestBuildReportPrompt(t *testing.T) {
	criteria := &models.RentalCriteria{Location: "Bern", MaxRent: f64(2500)}
	listing := testListing()
	analysis := &models.ImageAnalysis{Blocks: []models.ImageBlock{
		{URL: "https://m.example.com/1.jpg", Analysis: "Bright living room, 8/10"},
	}}

	prompt, err := buildReportPrompt(criteria, listing, analysis)
	if err != nil {
		t.Fatalf("buildReportPrompt() error = %v", err)
	}

	if !strings.Contains(prompt, "\"location\": \"Bern\"") || !strings.Contains(prompt, "\"max_rent\": 2500") {
		t.Errorf("prompt missing indented criteria JSON:\n%s", prompt[:400])
	}
	if !strings.Contains(prompt, "<listing>\n"+listing.Content+"\n</listing>") {
		t.Error("prompt must embed the listing content verbatim in listing tags")
	}
	if !strings.Contains(prompt, "## Image Analysis Results:") {
		t.Error("prompt missing image analysis section")
	}
	if !strings.Contains(prompt, "https://m.example.com/1.jpg") {
		t.Error("prompt missing analyzed image URL")
	}
	if !strings.Contains(prompt, "📸 Photo Analysis") {
		t.Error("prompt missing photo gallery instruction")
	}
	if !strings.Contains(prompt, "match report with photo gallery.") {
		t.Error("task line should mention the photo gallery")
	}
	if !strings.Contains(prompt, "Match Score: [X]%") {
		t.Error("output template must keep the literal percent sign")
	}
	if strings.Contains(prompt, "%!") {
		t.Errorf("template formatting artifact in prompt")
	}
}

func TestBuildReportPrompt_NoImages(t *testing.T) {
	criteria := &models.RentalCriteria{Location: "Bern"}

	for _, analysis := range []*models.ImageAnalysis{
		{},              // no candidate URLs
		{Skipped: true}, // credential absent
	} {
		prompt, err := buildReportPrompt(criteria, testListing(), analysis)
		if err != nil {
			t.Fatalf("buildReportPrompt() error = %v", err)
		}
		if strings.Contains(prompt, "## Image Analysis Results:") {
			t.Error("sentinel analysis must not produce an analysis section")
		}
		if strings.Contains(prompt, "📸 Photo Analysis") {
			t.Error("sentinel analysis must not produce a gallery instruction")
		}
		if strings.Contains(prompt, noImagesMarker) || strings.Contains(prompt, analysisSkippedNote) {
			t.Error("sentinel markers must never leak into the prompt")
		}
		if strings.Contains(prompt, "with photo gallery.") {
			t.Error("task line must not mention a gallery without images")
		}
	}
}

func TestBuildReportPrompt_PrimaryImage(t *testing.T) {
	criteria := &models.RentalCriteria{Location: "Bern"}
	listing := testListing()
	listing.PrimaryImageURL = "https://media.example.com/main.jpg"

	prompt, err := buildReportPrompt(criteria, listing, &models.ImageAnalysis{})
	if err != nil {
		t.Fatalf("buildReportPrompt() error = %v", err)
	}

	if !strings.Contains(prompt, "**LISTING_IMAGE_URL:** https://media.example.com/main.jpg") {
		t.Error("primary image URL must be prefixed to the listing content")
	}
	if !strings.Contains(prompt, "CRITICAL IMAGE INSTRUCTION") {
		t.Error("prompt missing primary image instruction")
	}

	// Without a primary image neither the field nor the instruction appear.
	plain, err := buildReportPrompt(criteria, testListing(), &models.ImageAnalysis{})
	if err != nil {
		t.Fatalf("buildReportPrompt() error = %v", err)
	}
	if strings.Contains(plain, "LISTING_IMAGE_URL") || strings.Contains(plain, "CRITICAL IMAGE INSTRUCTION") {
		t.Error("image instruction must be conditional on a known primary image")
	}
}

func TestGenerate(t *testing.T) {
	var gotSystem string
	var gotTemp float64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
			Temperature float64 `json:"temperature"`
		}
		_ = json.Unmarshal(body, &req)
		gotTemp = req.Temperature
		for _, m := range req.Messages {
			if m.Role == "system" {
				gotSystem = m.Content
			}
		}
		resp := map[string]any{"choices": []map[string]any{
			{"message": map[string]any{"content": "# 🏠 Apartment Match Analysis\n\nMatch Score: 92%"}},
		}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer ts.Close()

	svc := NewReportService(llm.NewClient("key", ts.URL, "gpt-4o-mini", nil), 60*time.Second, nil)
	report, err := svc.Generate(context.Background(), &models.RentalCriteria{Location: "Bern"}, testListing(), &models.ImageAnalysis{})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if !strings.Contains(report, "Match Score: 92%") {
		t.Errorf("report = %q, want model output passed through", report)
	}
	if !strings.Contains(gotSystem, "apartment rental advisor for the Swiss market") {
		t.Error("system prompt not sent")
	}
	if gotTemp != 0.1 {
		t.Errorf("temperature = %v, want 0.1", gotTemp)
	}
}

func TestGenerate_UpstreamFailurePropagates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	svc := NewReportService(llm.NewClient("key", ts.URL, "gpt-4o-mini", nil), 60*time.Second, nil)
	_, err := svc.Generate(context.Background(), &models.RentalCriteria{}, testListing(), &models.ImageAnalysis{})
	if !models.IsUpstreamError(err) {
		t.Fatalf("error = %v, want UpstreamError", err)
	}
}

func TestGenerate_MissingCredential(t *testing.T) {
	svc := NewReportService(llm.NewClient("", "http://unused", "gpt-4o-mini", nil), 60*time.Second, nil)
	_, err := svc.Generate(context.Background(), &models.RentalCriteria{}, testListing(), &models.ImageAnalysis{})
	if !models.IsConfigError(err) {
		t.Fatalf("error = %v, want ConfigError", err)
	}
}
