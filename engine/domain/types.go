// Package domain defines the core record types of the review pipeline
// (Review, Restaurant, Document) together with their defaults and the
// validation applied at every pipeline entry point.
package domain

// Review is a single customer review as it flows through the pipeline.
// Collectors create it, the cleaner rewrites its text, everything
// downstream treats it as read-only.
type Review struct {
	Text   string `json:"text"`
	Rating int    `json:"rating"`
	Author string `json:"author"`
	Date   string `json:"date"`
	Source string `json:"source"`
}

// Restaurant groups reviews under one venue. Name is the merge identity:
// two records describe the same restaurant iff NameKey of both is equal.
type Restaurant struct {
	Name       string   `json:"name"`
	Rating     float64  `json:"rating"`
	Cuisine    []string `json:"cuisine"`
	PriceRange string   `json:"price_range"`
	Address    string   `json:"address,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	Reviews    []Review `json:"reviews"`
	Sources    []string `json:"sources,omitempty"`
}

// Document is the atomic retrievable unit: one review (or one chunk of a
// long review) plus the restaurant context it came from.
type Document struct {
	PageContent string   `json:"page_content"`
	Metadata    Metadata `json:"metadata"`
}

// Metadata carries the restaurant context attached to every document.
// ChunkIndex/TotalChunks are only set on documents produced by splitting
// a long review; short reviews yield documents without them.
type Metadata struct {
	Restaurant       string  `json:"restaurant"`
	Rating           int     `json:"rating"`
	Author           string  `json:"author"`
	Date             string  `json:"date"`
	Source           string  `json:"source"`
	Cuisine          string  `json:"cuisine"`
	PriceRange       string  `json:"price_range"`
	RestaurantRating float64 `json:"restaurant_rating"`
	ChunkIndex       *int    `json:"chunk_index,omitempty"`
	TotalChunks      *int    `json:"total_chunks,omitempty"`
}

// Review sources.
const (
	SourceManual          = "manual"
	SourceBlog            = "blog"
	SourceZomato          = "zomato"
	SourceZomatoSynthetic = "zomato_synthetic"
)

// ValidSources enumerates accepted review sources.
var ValidSources = map[string]bool{
	SourceManual:          true,
	SourceBlog:            true,
	SourceZomato:          true,
	SourceZomatoSynthetic: true,
}

// Price ranges.
const (
	PriceBudget = "₹"
	PriceMid    = "₹₹"
	PriceHigh   = "₹₹₹"
)

// ValidPriceRanges enumerates accepted price ranges.
var ValidPriceRanges = map[string]bool{
	PriceBudget: true,
	PriceMid:    true,
	PriceHigh:   true,
}

// Chunked reports whether the document was produced by splitting a long
// review.
func (d Document) Chunked() bool {
	return d.Metadata.ChunkIndex != nil
}
