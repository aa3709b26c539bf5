// Package clean normalizes review text and filters out reviews too thin to
// ground a recommendation. Every rejection path is counted in the stats
// block; nothing is silently dropped.
package clean

import (
	"errors"
	"math"
	"strings"

	"github.com/rasoi-labs/rasoi/engine/domain"
)

// ErrNoValidReviews signals that cleaning rejected every review, which
// leaves nothing for the downstream stages to index.
var ErrNoValidReviews = errors.New("clean: no valid reviews")

// RejectReason classifies why a review was excluded.
type RejectReason string

const (
	ReasonTooShort    RejectReason = "too_short"
	ReasonTooGeneric  RejectReason = "too_generic"
	ReasonTooFewWords RejectReason = "too_few_words"
	ReasonValid       RejectReason = "valid"
)

// Options are the cleaning heuristics. The thresholds were tuned on the
// reference dataset and make no claim to generality.
type Options struct {
	MinChars       int
	MinWords       int
	GenericPhrases []string
	FingerprintLen int
}

// DefaultOptions returns the reference heuristics.
func DefaultOptions() Options {
	return Options{
		MinChars:       30,
		MinWords:       5,
		GenericPhrases: []string{"good", "nice", "ok", "fine", "average"},
		FingerprintLen: 100,
	}
}

// Stats reports what cleaning kept and what it removed.
type Stats struct {
	OriginalRestaurants   int     `json:"original_restaurants"`
	OriginalReviews       int     `json:"original_reviews"`
	CleanedRestaurants    int     `json:"cleaned_restaurants"`
	CleanedReviews        int     `json:"cleaned_reviews"`
	DuplicatesRemoved     int     `json:"duplicates_removed"`
	ShortReviewsRemoved   int     `json:"short_reviews_removed"`
	GenericReviewsRemoved int     `json:"generic_reviews_removed"`
	SparseReviewsRemoved  int     `json:"sparse_reviews_removed"`
	RetentionRate         float64 `json:"retention_rate"`
}

// Cleaner applies the cleaning pipeline with a fixed set of options.
type Cleaner struct {
	opts    Options
	generic map[string]bool
}

// New creates a Cleaner. Zero-valued options fall back to the defaults.
func New(opts Options) *Cleaner {
	def := DefaultOptions()
	if opts.MinChars <= 0 {
		opts.MinChars = def.MinChars
	}
	if opts.MinWords <= 0 {
		opts.MinWords = def.MinWords
	}
	if len(opts.GenericPhrases) == 0 {
		opts.GenericPhrases = def.GenericPhrases
	}
	if opts.FingerprintLen <= 0 {
		opts.FingerprintLen = def.FingerprintLen
	}
	generic := make(map[string]bool, len(opts.GenericPhrases))
	for _, p := range opts.GenericPhrases {
		generic[p] = true
	}
	return &Cleaner{opts: opts, generic: generic}
}

// Validate applies the validity predicate to already-normalized text.
func (c *Cleaner) Validate(text string) (bool, RejectReason) {
	if len(text) < c.opts.MinChars {
		return false, ReasonTooShort
	}
	if c.generic[strings.TrimSpace(strings.ToLower(text))] {
		return false, ReasonTooGeneric
	}
	if len(strings.Fields(text)) < c.opts.MinWords {
		return false, ReasonTooFewWords
	}
	return true, ReasonValid
}

// Clean runs the full pipeline over a restaurant list: normalize each
// review's text, reject invalid reviews, deduplicate by fingerprint within
// each restaurant, and drop restaurants left with no reviews. The input is
// not mutated. Cleaning is a stable fixpoint: running Clean on its own
// output changes nothing.
func (c *Cleaner) Clean(restaurants []domain.Restaurant) ([]domain.Restaurant, Stats) {
	stats := Stats{OriginalRestaurants: len(restaurants)}

	cleaned := make([]domain.Restaurant, 0, len(restaurants))
	for _, r := range restaurants {
		stats.OriginalReviews += len(r.Reviews)

		out := r
		out.Reviews = nil
		seen := make(map[string]bool)

		for _, rev := range r.Reviews {
			text := NormalizeText(rev.Text)
			if text == "" {
				stats.ShortReviewsRemoved++
				continue
			}
			ok, reason := c.Validate(text)
			if !ok {
				switch reason {
				case ReasonTooShort:
					stats.ShortReviewsRemoved++
				case ReasonTooGeneric:
					stats.GenericReviewsRemoved++
				case ReasonTooFewWords:
					stats.SparseReviewsRemoved++
				}
				continue
			}

			fp := Fingerprint(text, c.opts.FingerprintLen)
			if seen[fp] {
				stats.DuplicatesRemoved++
				continue
			}
			seen[fp] = true

			rev.Text = text
			out.Reviews = append(out.Reviews, rev)
		}

		if len(out.Reviews) > 0 {
			cleaned = append(cleaned, out)
			stats.CleanedReviews += len(out.Reviews)
		}
	}

	stats.CleanedRestaurants = len(cleaned)
	if stats.OriginalReviews > 0 {
		stats.RetentionRate = math.Round(float64(stats.CleanedReviews)/float64(stats.OriginalReviews)*100*10) / 10
	}
	return cleaned, stats
}
