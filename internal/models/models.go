// Package models defines the entities passed between pipeline stages.
// Each stage produces exactly one of these and never mutates its input.
package models

// SplitMessage is the result of isolating the listing URL from a raw request.
// ListingURL is empty when the message contained no URL token.
type SplitMessage struct {
	ResidualText string
	ListingURL   string
}

// HasURL reports whether a listing URL was found in the message.
func (m SplitMessage) HasURL() bool {
	return m.ListingURL != ""
}

// RentalCriteria is the sparse record of user requirements extracted from
// free text. A field is set only when the user explicitly stated it or it is
// unambiguously inferable; absent fields mean "unconstrained". Numeric fields
// are pointers so omitted values never serialize as zero.
type RentalCriteria struct {
	Location               string   `json:"location,omitempty"`
	MinRooms               *float64 `json:"min_rooms,omitempty"`
	MaxRooms               *float64 `json:"max_rooms,omitempty"`
	MinLivingSpace         *float64 `json:"min_living_space,omitempty"`
	MaxLivingSpace         *float64 `json:"max_living_space,omitempty"`
	MinRent                *float64 `json:"min_rent,omitempty"`
	MaxRent                *float64 `json:"max_rent,omitempty"`
	Occupants              *int     `json:"occupants,omitempty"`
	Duration               string   `json:"duration,omitempty"`
	AdditionalRequirements []string `json:"additional_requirements,omitempty"`
}

// IsEmpty reports whether no criteria fields are set at all.
func (c *RentalCriteria) IsEmpty() bool {
	return c.Location == "" &&
		c.MinRooms == nil && c.MaxRooms == nil &&
		c.MinLivingSpace == nil && c.MaxLivingSpace == nil &&
		c.MinRent == nil && c.MaxRent == nil &&
		c.Occupants == nil && c.Duration == "" &&
		len(c.AdditionalRequirements) == 0
}

// ListingDocument is the normalized rental advertisement fetched from the
// user-provided URL. Content is markdown when available, HTML otherwise, and
// is the sole substrate the image and synthesis stages operate on.
type ListingDocument struct {
	URL         string
	Content     string
	Metadata    map[string]any
	Title       string
	Description string

	// PrimaryImageURL is the listing's og:image, when the content-extraction
	// service reported one. Made available to synthesis for embedding.
	PrimaryImageURL string
}

// ImageBlock is the analysis outcome for a single listing image. Exactly one
// of Analysis and FailureNote is set.
type ImageBlock struct {
	URL         string
	Analysis    string
	FailureNote string
}

// ImageAnalysis aggregates the per-image blocks produced for a listing.
// Blocks preserve the order in which image URLs appear in the listing content
// and never exceed the configured image cap. Skipped is set when the vision
// credential is absent and analysis was bypassed entirely.
type ImageAnalysis struct {
	Blocks  []ImageBlock
	Skipped bool
}

// HasResults reports whether at least one image was actually analyzed or
// attempted. Sentinel states (no images, analysis skipped) return false so
// synthesis can omit the photo-gallery section.
func (a *ImageAnalysis) HasResults() bool {
	return a != nil && !a.Skipped && len(a.Blocks) > 0
}
