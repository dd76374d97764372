package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/repa-ch/repa-api/internal/llm"
	"github.com/repa-ch/repa-api/internal/models"
)

// reportSystemPrompt fixes the advisor persona and evaluation policy for the
// synthesis call.
const reportSystemPrompt = `You are a helpful apartment rental advisor for the Swiss market. Your job is to analyze apartment listings and help users determine if they're a good match for their needs.

## Your Approach:
- Be friendly, conversational, and encouraging
- Extract all relevant details accurately from listings
- Compare listings objectively against the user's specific criteria
- Only evaluate criteria the user explicitly mentioned - don't penalize for unspecified requirements
- Be realistic about "close enough" matches (e.g., 95m² ≈ 100m², Zürich City ≈ 8008 Zürich)
- Distinguish between deal-breakers and nice-to-haves
- Provide honest, actionable recommendations

## Swiss Rental Context:
- Understand Swiss room counting (e.g., 3.5 rooms = 2 bedrooms + living room + half room)
- Know typical Zürich pricing and neighborhoods
- Recognize common Swiss rental terms and amenities
- Consider public transport accessibility and local area quality

## Tone:
- Professional yet warm
- Clear and direct
- Helpful and supportive
- Honest about both positives and concerns

Follow the exact output format provided in the user's request.`

// galleryInstruction tells the model to build a photo gallery out of the
// analyzed image URLs. Included only when real analyses exist.
const galleryInstruction = `## 📸 Photo Analysis

**INSTRUCTION:** Extract all image URLs from the Image Analysis section and create a beautiful photo gallery here. For each analyzed image:
1. Display the image using: ![Room Name](image_url)
2. Add a brief caption based on the analysis

Example format:
### Living Room
![Living Room](https://media2.homegate.ch/.../image1.jpg)
*Modern, spacious living area with natural light and contemporary furnishing.*

### Kitchen
![Kitchen](https://media2.homegate.ch/.../image2.jpg)
*Fully equipped kitchen with modern appliances and ample counter space.*

Continue for all analyzed images...`

// primaryImageInstruction tells the model to hoist the listing's main image
// to the top of the report. Included only when the listing metadata carried
// one.
const primaryImageInstruction = `**CRITICAL IMAGE INSTRUCTION:**
The listing data contains a **LISTING_IMAGE_URL:** field. You MUST extract the COMPLETE URL (do not truncate it) and insert it at the very top of your response using this EXACT format:
![Apartment](COMPLETE_URL_HERE)

Make sure to copy the entire URL exactly as provided, including all characters after the last slash.`

// reportOutputTemplate is the strict output format the model must follow.
const reportOutputTemplate = `### Output Format (use emojis and clear formatting):

` + "```" + `
# 🏠 Apartment Match Analysis

![Apartment](INSERT_COMPLETE_LISTING_IMAGE_URL_HERE)

## 📋 Listing Summary
**Title:** [listing title]
**Location:** [full address/area]
**Price:** CHF [amount]/month
**Rooms:** [number] rooms
**Living Space:** [size] m²
**Available:** [date or immediately]

---

## 🎯 Match Score: [X]%%

[One sentence overall assessment]

---

## ✅ What Matches Your Criteria

[For EACH criterion that matches, use this format:]
**✓ [Criterion Name]**
• Your requirement: [what user asked for]
• Listing offers: [what listing has]
• Assessment: [brief positive note]

---

## ⚠️ Points to Consider

[For EACH criterion that doesn't match or is unclear:]
**⚠ [Criterion Name]**
• Your requirement: [what user asked for]
• Listing offers: [what listing has]
• Impact: [why this matters - deal-breaker or negotiable?]

[If no concerns: *No significant concerns - all criteria met!*]

---

## 💡 Key Highlights

• [Standout feature 1]
• [Standout feature 2]
• [Standout feature 3]
• [Other notable amenities]

---

%s

---

## 🤔 Our Recommendation

**[HIGHLY RECOMMENDED / WORTH CONSIDERING / NOT A GOOD FIT]**

[2-3 sentences explaining why, considering the user's priorities and the listing's strengths/weaknesses. Be honest and helpful.]

---

## 📌 Next Steps

[If recommended: Suggest they contact the landlord, schedule viewing, etc.]
[If not recommended: Suggest what to look for instead]

---

[ONLY IF HIGHLY RECOMMENDED OR WORTH CONSIDERING:]

## ✉️ Personalized Contact Message

Ready to send! Copy this message for the "Contact Advertiser" form on Homegate.ch:

---
**Subject:** Interest in [Room count]-Room Apartment at [Location]

Dear Sir/Madam,

I am writing to express my strong interest in the [room count]-room apartment at [address/location] listed for CHF [price]/month.

[Include 2-3 sentences about why this apartment is perfect for them based on their criteria - be specific! Reference actual matches like "The 105m² living space and location in 8008 Zürich are exactly what I've been searching for."]

About me:
• [Infer likely tenant profile based on their search - e.g., "Professional working in Zürich" or "Small family" based on room requirements]
• Reliable, non-smoking tenant with excellent references
• Available to move in [reference availability date from listing or say "immediately"]
• Long-term rental desired

I am very interested in scheduling a viewing at your earliest convenience. I am flexible with timing and can meet this week if possible.

I have prepared all necessary documents (employment contract, salary statements, references) and am ready to proceed quickly given the competitive Zürich rental market.

Looking forward to hearing from you.

Best regards,
[Your Name]
[Your Phone]
[Your Email]
---

**Tip:** Personalize further by adding:
- Your current situation (relocating, growing family, etc.)
- Why you chose this specific listing
- Your move-in timeline
- Any relevant lifestyle details (quiet, respectful neighbor, etc.)

Good apartments in Zürich get many applications - send this today! ⚡
` + "```" + `

### Important Instructions:
1. **Be conversational and friendly** - write like you're helping a friend
2. **Use emojis** to make it visually appealing and scannable
3. **Be honest** - if something doesn't match, say so clearly
4. **Prioritize** - focus on what matters most (deal-breakers vs nice-to-haves)
5. **Only compare specified criteria** - don't penalize for unspecified requirements
6. **Extract all listing details** - even if not in criteria (they're useful to see)
7. **Be realistic** - 95m² is close enough to 100m², Zürich City ≈ 8008 Zürich
8. **Consider Swiss context** - room counting, pricing norms, etc.
9. **Make it actionable** - give clear next steps
10. **Generate contact message ONLY for recommended listings** - skip this section if "NOT A GOOD FIT"
11. **Personalize the contact message** based on the user's actual criteria matches (be specific about what matched!)
12. **Make the contact message professional yet warm** - increase their chances in competitive market

Return ONLY the formatted match analysis, ready to display to the user.`

// ReportService synthesizes the final match report from all earlier stage
// outputs.
type ReportService struct {
	client  *llm.Client
	timeout time.Duration
	logger  *slog.Logger
}

// NewReportService creates the report synthesis stage.
func NewReportService(client *llm.Client, timeout time.Duration, logger *slog.Logger) *ReportService {
	return &ReportService{client: client, timeout: timeout, logger: logger}
}

// Generate issues the synthesis completion and returns the formatted match
// report. Fails with the same error taxonomy as every other completion stage.
func (s *ReportService) Generate(ctx context.Context, criteria *models.RentalCriteria, listing *models.ListingDocument, analysis *models.ImageAnalysis) (string, error) {
	prompt, err := buildReportPrompt(criteria, listing, analysis)
	if err != nil {
		return "", err
	}

	report, err := s.client.Complete(ctx, []llm.Message{
		llm.TextMessage("system", reportSystemPrompt),
		llm.TextMessage("user", prompt),
	}, llm.CallOptions{
		Temperature: 0.1,
		Timeout:     s.timeout,
	})
	if err != nil {
		return "", fmt.Errorf("generating match report: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("match report generated", "length", len(report))
	}

	return report, nil
}

// buildReportPrompt assembles the synthesis user prompt: criteria as
// indented JSON, listing content verbatim inside listing tags (prefixed with
// the primary image URL when known), and the image analysis and gallery
// sections only when real analyses exist.
func buildReportPrompt(criteria *models.RentalCriteria, listing *models.ListingDocument, analysis *models.ImageAnalysis) (string, error) {
	criteriaJSON, err := json.MarshalIndent(criteria, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding criteria: %w", err)
	}

	listingContent := listing.Content
	if listing.PrimaryImageURL != "" {
		listingContent = fmt.Sprintf("**LISTING_IMAGE_URL:** %s\n\n%s", listing.PrimaryImageURL, listingContent)
	}

	hasImages := analysis.HasResults()

	analysisSection := ""
	gallerySection := ""
	withImages := ""
	if hasImages {
		analysisSection = fmt.Sprintf("## Image Analysis Results:\n%s\n", imageAnalysisText(analysis))
		gallerySection = galleryInstruction
		withImages = " with photo gallery"
	}

	imageInstruction := ""
	if listing.PrimaryImageURL != "" {
		imageInstruction = primaryImageInstruction
	}

	var b strings.Builder
	fmt.Fprintf(&b, "User's criteria:\n```json\n%s\n```\n\n", criteriaJSON)
	fmt.Fprintf(&b, "Listing data:\n<listing>\n%s\n</listing>\n\n", listingContent)
	if analysisSection != "" {
		b.WriteString(analysisSection)
		b.WriteString("\n")
	}
	b.WriteString("---\n\n## Your Task:\n\n")
	fmt.Fprintf(&b, "Analyze this apartment listing and create a beautiful, user-friendly match report%s.\n\n", withImages)
	if imageInstruction != "" {
		b.WriteString(imageInstruction)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, reportOutputTemplate, gallerySection)

	return b.String(), nil
}
