package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/repa-ch/repa-api/internal/llm"
	"github.com/repa-ch/repa-api/internal/models"
)

// criteriaSystemPrompt is the fixed extraction policy with worked examples.
// The model must return a sparse JSON object: fields appear only when the
// user stated them.
const criteriaSystemPrompt = `You are an expert at extracting structured apartment rental criteria from natural language.

Extract information from the user's request and return it as valid JSON.

IMPORTANT: Only include fields that the user explicitly mentions. Do NOT include fields with null values.

Available field names you may use (only if mentioned):
- location: The city, postal code, area, or proximity requirement (string)
- min_rooms: Minimum number of rooms (number)
- max_rooms: Maximum number of rooms (number)
- min_living_space: Minimum living space in square meters (number)
- max_living_space: Maximum living space in square meters (number)
- min_rent: Minimum rent in CHF (number)
- max_rent: Maximum rent in CHF (number)
- occupants: Number of people who will live there (number)
- duration: How long they need it (string, e.g., "ski season", "6 months", "long-term")

For ANY other requirements (pet-friendly, balcony, parking, proximity to amenities, etc.), add them to an "additional_requirements" array.

Extraction Rules:
1. If "for X persons/people" → use "occupants": X
2. If "ski season" or temporary → use "duration": "ski season" or appropriate period
3. If "price is not a problem" or "budget flexible" → do NOT include min_rent or max_rent
4. If "more than X rooms" → use "min_rooms": X
5. If "less than CHF Y" → use "max_rent": Y
6. If "about X square meters" → use both "min_living_space" and "max_living_space" with ±10% range
7. Location can be specific (city/postal code) OR proximity-based ("close to ski", "near train station")
8. Extract EACH specific requirement as a separate item in additional_requirements
9. Preserve the user's exact wording and intent
10. Infer room requirements from occupancy if helpful (e.g., 5 persons might suggest larger apartment)
11. Return ONLY valid JSON, no explanations

Example 1 - Full numeric criteria:
Input: "I am looking for an apartment in 8008 Zürich, more than 4 rooms, living space about 100 square meters, and rent less than CHF 5000."
Output:
{
  "location": "8008 Zürich",
  "min_rooms": 4,
  "min_living_space": 90,
  "max_living_space": 110,
  "max_rent": 5000
}

Example 2 - Seasonal/proximity focused:
Input: "I'm visiting Switzerland for a ski season and need an apartment for 5 persons, need it to be super close to the ski action. Price is not a problem."
Output:
{
  "occupants": 5,
  "duration": "ski season",
  "location": "ski resort area",
  "additional_requirements": ["close to ski slopes", "ski-in/ski-out preferred", "suitable for 5 people"]
}

Example 3 - Mixed criteria:
Input: "Looking for 3 rooms in Zürich, max CHF 3000, with parking space, balcony, and modern kitchen"
Output:
{
  "location": "Zürich",
  "min_rooms": 3,
  "max_rent": 3000,
  "additional_requirements": ["parking space", "balcony", "modern kitchen"]
}

Example 4 - Only location:
Input: "I need an apartment in Bern"
Output:
{
  "location": "Bern"
}

Now extract the criteria:`

// fencedJSONPattern matches a fenced code block labeled as JSON and captures
// its interior. Models sometimes wrap replies this way despite instructions.
var fencedJSONPattern = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// CriteriaService extracts rental criteria from free text using the
// completion service.
type CriteriaService struct {
	client  *llm.Client
	timeout time.Duration
	logger  *slog.Logger
}

// NewCriteriaService creates the criteria extraction stage.
func NewCriteriaService(client *llm.Client, timeout time.Duration, logger *slog.Logger) *CriteriaService {
	return &CriteriaService{client: client, timeout: timeout, logger: logger}
}

// Extract runs one low-temperature completion over the residual request text
// and parses the reply into a sparse criteria record. Fails with ConfigError
// when the credential is absent, UpstreamError on service failure, and
// ParseError when the reply is not valid JSON by either parse strategy.
func (s *CriteriaService) Extract(ctx context.Context, text string) (*models.RentalCriteria, error) {
	userPrompt := fmt.Sprintf("Now extract the criteria from the User's Request:\n<user_request>\n%s\n</user_request>", text)

	reply, err := s.client.Complete(ctx, []llm.Message{
		llm.TextMessage("system", criteriaSystemPrompt),
		llm.TextMessage("user", userPrompt),
	}, llm.CallOptions{
		Temperature: 0.1,
		Timeout:     s.timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("extracting criteria: %w", err)
	}

	criteria, err := parseCriteriaReply(reply)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("criteria extracted",
			"location", criteria.Location,
			"has_rent_bound", criteria.MinRent != nil || criteria.MaxRent != nil,
			"additional_requirements", len(criteria.AdditionalRequirements),
		)
	}

	return criteria, nil
}

// parseCriteriaReply is the explicit two-stage parser for model replies:
// strict JSON first, then the interior of a fenced json block. Both failing
// yields a ParseError carrying the raw reply.
func parseCriteriaReply(reply string) (*models.RentalCriteria, error) {
	var criteria models.RentalCriteria
	if err := json.Unmarshal([]byte(reply), &criteria); err == nil {
		return &criteria, nil
	}

	if m := fencedJSONPattern.FindStringSubmatch(reply); m != nil {
		if err := json.Unmarshal([]byte(m[1]), &criteria); err == nil {
			return &criteria, nil
		}
	}

	return nil, &models.ParseError{
		RawReply: reply,
		Err:      fmt.Errorf("reply is neither raw JSON nor a fenced json block"),
	}
}
