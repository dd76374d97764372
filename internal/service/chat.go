package service

import (
	"context"
	"log/slog"

	"github.com/oklog/ulid/v2"

	"github.com/repa-ch/repa-api/internal/logging"
	"github.com/repa-ch/repa-api/internal/models"
)

// State tracks the pipeline stage a chat request is in. Transitions are
// strictly linear; AnalyzingImages can never transition to Failed.
type State string

const (
	StateParsingMessage     State = "parsing_message"
	StateExtractingCriteria State = "extracting_criteria"
	StateFetchingListing    State = "fetching_listing"
	StateAnalyzingImages    State = "analyzing_images"
	StateSynthesizingReport State = "synthesizing_report"
	StateDone               State = "done"
	StateFailed             State = "failed"
)

// missingURLResponse is returned when the message contains no listing URL.
// It is a normal response with an error status, not a pipeline failure.
const missingURLResponse = "Please provide both your apartment criteria and a listing URL from Homegate.ch or similar sites."

// ChatResult is the terminal outcome of a pipeline run.
type ChatResult struct {
	Response string
	Status   string // "success" or "error"
}

// ChatService sequences the pipeline stages for one request. Stages run
// strictly in order; a stage error aborts the run except for image analysis,
// which degrades instead of failing.
type ChatService struct {
	criteria *CriteriaService
	scraper  ListingFetcher
	images   *ImageService
	report   *ReportService
	logger   *slog.Logger
}

// ListingFetcher fetches and normalizes a listing document from a URL.
// Implemented by the content-extraction client.
type ListingFetcher interface {
	Scrape(ctx context.Context, url string) (*models.ListingDocument, error)
}

// NewChatService wires the pipeline stages into an orchestrator.
func NewChatService(criteria *CriteriaService, scraper ListingFetcher, images *ImageService, report *ReportService, logger *slog.Logger) *ChatService {
	return &ChatService{
		criteria: criteria,
		scraper:  scraper,
		images:   images,
		report:   report,
		logger:   logger,
	}
}

// Process runs a rental request through the full pipeline and returns the
// match report. A message without a listing URL short-circuits to a
// status="error" result without touching any upstream service. Any stage
// error other than image analysis aborts the run.
func (s *ChatService) Process(ctx context.Context, message string) (*ChatResult, error) {
	requestID := ulid.Make().String()
	ctx = logging.WithRequestID(ctx, requestID)
	logger := s.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logging.FromContext(ctx, logger)

	logger.Info("processing chat message", "state", StateParsingMessage, "message_length", len(message))
	split := SplitMessage(message)
	if !split.HasURL() {
		logger.Info("no listing URL in message", "state", StateDone)
		return &ChatResult{Response: missingURLResponse, Status: "error"}, nil
	}

	logger.Info("extracting criteria", "state", StateExtractingCriteria)
	criteria, err := s.criteria.Extract(ctx, split.ResidualText)
	if err != nil {
		logger.Error("criteria extraction failed", "state", StateFailed, "error", err)
		return nil, err
	}

	logger.Info("fetching listing", "state", StateFetchingListing, "url", split.ListingURL)
	listing, err := s.scraper.Scrape(ctx, split.ListingURL)
	if err != nil {
		logger.Error("listing fetch failed", "state", StateFailed, "error", err)
		return nil, err
	}

	// This stage degrades instead of failing: skipped or empty analyses
	// still produce a report.
	logger.Info("analyzing images", "state", StateAnalyzingImages)
	analysis := s.images.Analyze(ctx, listing.Content)

	logger.Info("synthesizing report", "state", StateSynthesizingReport,
		"criteria_empty", criteria.IsEmpty(),
		"images_analyzed", len(analysis.Blocks),
		"images_skipped", analysis.Skipped,
	)
	report, err := s.report.Generate(ctx, criteria, listing, analysis)
	if err != nil {
		logger.Error("report synthesis failed", "state", StateFailed, "error", err)
		return nil, err
	}

	logger.Info("chat message processed", "state", StateDone, "report_length", len(report))
	return &ChatResult{Response: report, Status: "success"}, nil
}
