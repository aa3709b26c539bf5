package semantic

import "github.com/rasoi-labs/rasoi/engine/domain"

// VectorRecord is a single embedded document ready for upsert.
type VectorRecord struct {
	ID        string
	Embedding []float32
	Document  domain.Document
}

// SearchResult is one similarity hit. Vector is populated only when the
// search asked for vectors back (the diversified retriever needs them).
type SearchResult struct {
	ID       string
	Score    float32
	Document domain.Document
	Vector   []float32
}

// Filter restricts a search by document metadata. Both conditions are
// expressed natively to the index; a nil filter matches everything.
type Filter struct {
	// MinRating keeps only documents whose review rating is >= the value.
	MinRating *float64
	// PriceRange keeps only documents with this exact price range.
	PriceRange string
}

func (f *Filter) empty() bool {
	return f == nil || (f.MinRating == nil && f.PriceRange == "")
}
