package service

import (
	"regexp"
	"strings"

	"github.com/repa-ch/repa-api/internal/models"
)

// urlPattern matches http(s) URL tokens: the scheme followed by a run of
// non-whitespace characters.
var urlPattern = regexp.MustCompile(`https?://\S+`)

// SplitMessage isolates the listing URL from a free-text rental request.
// The first URL token becomes the listing URL; all URL-shaped tokens are
// stripped from the residual text, which is then trimmed. Additional URLs
// beyond the first are silently discarded. Pure function, no network calls.
func SplitMessage(message string) models.SplitMessage {
	urls := urlPattern.FindAllString(message, -1)
	if len(urls) == 0 {
		return models.SplitMessage{ResidualText: strings.TrimSpace(message)}
	}

	residual := urlPattern.ReplaceAllString(message, "")
	return models.SplitMessage{
		ResidualText: strings.TrimSpace(residual),
		ListingURL:   urls[0],
	}
}
