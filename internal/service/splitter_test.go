package service

import (
	"strings"
	"testing"
)

func TestSplitMessage(t *testing.T) {
	tests := []struct {
		name         string
		message      string
		wantURL      string
		wantResidual string
	}{
		{
			"no URL",
			"3 rooms in Bern, max CHF 2500",
			"",
			"3 rooms in Bern, max CHF 2500",
		},
		{
			"single URL",
			"3 rooms in Bern, max CHF 2500 https://example.com/listing",
			"https://example.com/listing",
			"3 rooms in Bern, max CHF 2500",
		},
		{
			"URL in the middle",
			"check https://example.com/listing please, 2 rooms",
			"https://example.com/listing",
			"check  please, 2 rooms",
		},
		{
			"http scheme",
			"flat http://example.com/a",
			"http://example.com/a",
			"flat",
		},
		{
			"empty message",
			"",
			"",
			"",
		},
		{
			"only a URL",
			"https://example.com/listing",
			"https://example.com/listing",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitMessage(tt.message)
			if got.ListingURL != tt.wantURL {
				t.Errorf("ListingURL = %q, want %q", got.ListingURL, tt.wantURL)
			}
			if got.ResidualText != tt.wantResidual {
				t.Errorf("ResidualText = %q, want %q", got.ResidualText, tt.wantResidual)
			}
		})
	}
}

func TestSplitMessage_MultipleURLs(t *testing.T) {
	got := SplitMessage("compare https://first.example.com/a with https://second.example.com/b in Zürich")

	// Only the first URL is the listing URL.
	if got.ListingURL != "https://first.example.com/a" {
		t.Errorf("ListingURL = %q, want first URL", got.ListingURL)
	}

	// All URL-shaped tokens are removed from the residual text.
	if strings.Contains(got.ResidualText, "http") {
		t.Errorf("ResidualText = %q, should contain no URLs", got.ResidualText)
	}
	if !strings.Contains(got.ResidualText, "Zürich") {
		t.Errorf("ResidualText = %q, should keep surrounding text", got.ResidualText)
	}
}

func TestSplitMessage_HasURL(t *testing.T) {
	if SplitMessage("no link here").HasURL() {
		t.Error("HasURL() = true for message without URL")
	}
	if !SplitMessage("see https://example.com").HasURL() {
		t.Error("HasURL() = false for message with URL")
	}
}
