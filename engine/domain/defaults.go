package domain

import "strings"

// Defaults are the fallback values applied once at ingestion for fields a
// collector left empty. Downstream stages never re-derive them.
type Defaults struct {
	Name       string
	PriceRange string
	Author     string
	Source     string
}

// StandardDefaults mirrors the fallbacks the raw datasets were collected
// with.
var StandardDefaults = Defaults{
	Name:       "Unknown",
	PriceRange: PriceMid,
	Author:     "Anonymous",
	Source:     SourceManual,
}

// ApplyRestaurant fills empty restaurant fields in place, including the
// fields of every review.
func (d Defaults) ApplyRestaurant(r *Restaurant) {
	if strings.TrimSpace(r.Name) == "" {
		r.Name = d.Name
	}
	if r.PriceRange == "" {
		r.PriceRange = d.PriceRange
	}
	for i := range r.Reviews {
		d.ApplyReview(&r.Reviews[i])
	}
}

// ApplyReview fills empty review fields in place.
func (d Defaults) ApplyReview(rev *Review) {
	if rev.Author == "" {
		rev.Author = d.Author
	}
	if rev.Source == "" {
		rev.Source = d.Source
	}
}

// NameKey normalizes a restaurant name into its merge identity: lowercase
// with internal whitespace collapsed to single spaces.
func NameKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
