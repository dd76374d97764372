package service

import (
	"log/slog"

	"github.com/repa-ch/repa-api/internal/config"
	"github.com/repa-ch/repa-api/internal/llm"
	"github.com/repa-ch/repa-api/internal/scrape"
)

// Services bundles the pipeline stages behind a single construction point.
type Services struct {
	Criteria *CriteriaService
	Images   *ImageService
	Report   *ReportService
	Chat     *ChatService
}

// NewServices wires the upstream clients and pipeline stages from config.
// Credentials are injected here once; no stage reads the environment.
func NewServices(cfg *config.Config, logger *slog.Logger) *Services {
	completion := llm.NewClient(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, logger)
	scraper := scrape.NewClient(cfg.FirecrawlKey, cfg.FirecrawlBaseURL, cfg.ScrapeTimeout, logger)

	criteria := NewCriteriaService(completion, cfg.ExtractTimeout, logger)
	images := NewImageService(completion, cfg.MaxImages, cfg.ImageTimeout, logger)
	report := NewReportService(completion, cfg.SynthesisTimeout, logger)

	return &Services{
		Criteria: criteria,
		Images:   images,
		Report:   report,
		Chat:     NewChatService(criteria, scraper, images, report, logger),
	}
}
