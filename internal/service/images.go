package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/repa-ch/repa-api/internal/llm"
	"github.com/repa-ch/repa-api/internal/models"
)

// Sentinel markers for the degenerate analysis outcomes. Distinguishable from
// any genuine analysis text so downstream rendering can tell them apart.
const (
	noImagesMarker      = "No images found to analyze"
	analysisSkippedNote = "Image analysis skipped (no API key)"
)

// visionPrompt is the fixed per-image rubric.
const visionPrompt = `Analyze this apartment/property image. Identify:
1. Room type (living room, bedroom, kitchen, bathroom, exterior, view, etc.)
2. Key features and condition (modern, renovated, spacious, natural light, etc.)
3. Furnishing status (furnished, unfurnished, partially furnished)
4. Notable amenities or highlights
5. Overall impression (scale 1-10)

Be concise but specific. Focus on details that would matter to a renter.`

// markdownImagePattern matches markdown image syntax whose target has a
// common raster extension. bareImagePattern is the fallback for plain URLs
// embedded in the content without markdown syntax.
var (
	markdownImagePattern = regexp.MustCompile(`(?i)!\[.*?\]\((https://[^\)]+\.(?:jpg|jpeg|png|webp))\)`)
	bareImagePattern     = regexp.MustCompile(`(?i)https://[^\s<>"]+\.(?:jpg|jpeg|png|webp)`)
)

// ImageService analyzes listing images through the vision-capable completion
// endpoint.
type ImageService struct {
	client    *llm.Client
	maxImages int
	timeout   time.Duration
	logger    *slog.Logger
}

// NewImageService creates the image analysis stage. maxImages caps how many
// listing images are analyzed per request.
func NewImageService(client *llm.Client, maxImages int, timeout time.Duration, logger *slog.Logger) *ImageService {
	return &ImageService{client: client, maxImages: maxImages, timeout: timeout, logger: logger}
}

// Analyze extracts image URLs from the listing content and analyzes each one
// with a vision call. The stage never fails: a missing credential degrades to
// a skipped analysis, zero candidates yield an empty analysis, and a
// per-image failure produces a failure block while the remaining images are
// still processed.
func (s *ImageService) Analyze(ctx context.Context, content string) *models.ImageAnalysis {
	if !s.client.HasCredential() {
		if s.logger != nil {
			s.logger.Info("image analysis skipped, no credential configured")
		}
		return &models.ImageAnalysis{Skipped: true}
	}

	urls := extractImageURLs(content, s.maxImages)
	if len(urls) == 0 {
		if s.logger != nil {
			s.logger.Info("no image URLs found in listing content")
		}
		return &models.ImageAnalysis{}
	}

	if s.logger != nil {
		s.logger.Info("analyzing listing images", "count", len(urls))
	}

	analysis := &models.ImageAnalysis{Blocks: make([]models.ImageBlock, 0, len(urls))}
	for _, url := range urls {
		reply, err := s.client.Complete(ctx, []llm.Message{
			llm.VisionMessage(visionPrompt, url, "low"),
		}, llm.CallOptions{
			MaxTokens: 300,
			Timeout:   s.timeout,
		})
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("image analysis failed", "url", url, "error", err)
			}
			analysis.Blocks = append(analysis.Blocks, models.ImageBlock{URL: url, FailureNote: err.Error()})
			continue
		}
		analysis.Blocks = append(analysis.Blocks, models.ImageBlock{URL: url, Analysis: reply})
	}

	return analysis
}

// extractImageURLs collects candidate image URLs from the content: markdown
// image syntax first, bare URLs only when no markdown images exist. The
// result is deduplicated preserving first-encountered order and truncated to
// the cap.
func extractImageURLs(content string, max int) []string {
	var urls []string
	for _, m := range markdownImagePattern.FindAllStringSubmatch(content, -1) {
		urls = append(urls, m[1])
	}
	if len(urls) == 0 {
		urls = bareImagePattern.FindAllString(content, -1)
	}

	seen := make(map[string]struct{}, len(urls))
	unique := urls[:0]
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		unique = append(unique, u)
	}

	if len(unique) > max {
		unique = unique[:max]
	}
	return unique
}

// imageAnalysisText renders the analysis into the text form consumed by the
// synthesis prompt: one block per image, prefixed with its index and exact
// source URL, in retained order. Degenerate outcomes render as their sentinel
// markers.
func imageAnalysisText(a *models.ImageAnalysis) string {
	if a == nil || a.Skipped {
		return analysisSkippedNote
	}
	if len(a.Blocks) == 0 {
		return noImagesMarker
	}

	blocks := make([]string, 0, len(a.Blocks))
	for i, b := range a.Blocks {
		if b.FailureNote != "" {
			blocks = append(blocks, fmt.Sprintf("### Image %d\n**Image URL:** %s\n❌ Analysis failed: %s\n\n---\n\n", i+1, b.URL, b.FailureNote))
			continue
		}
		blocks = append(blocks, fmt.Sprintf("### Image %d\n**Image URL:** %s\n\n%s\n\n---\n\n", i+1, b.URL, b.Analysis))
	}
	return strings.Join(blocks, "\n")
}
