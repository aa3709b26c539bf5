// Package combine merges raw restaurant collections from multiple sources
// into a single deduplicated list. The merge is a pure fold over the source
// list so the collision policy is testable without file I/O.
package combine

import (
	"errors"
	"math"

	"github.com/rasoi-labs/rasoi/engine/domain"
)

// ErrNoInputData is returned when every source is empty. The combiner
// refuses to produce an empty dataset.
var ErrNoInputData = errors.New("combine: no input data")

// Source is one named raw collection. The name ends up in the per-source
// stats and in each restaurant's sources list.
type Source struct {
	Name        string
	Restaurants []domain.Restaurant
}

// SourceStats counts what one source contributed.
type SourceStats struct {
	Restaurants int `json:"restaurants"`
	Reviews     int `json:"reviews"`
}

// Stats is the aggregate stats block emitted with the merged dataset.
type Stats struct {
	TotalRestaurants        int                    `json:"total_restaurants"`
	TotalReviews            int                    `json:"total_reviews"`
	AvgReviewsPerRestaurant float64                `json:"avg_reviews_per_restaurant"`
	AvgRating               float64                `json:"avg_rating"`
	SourceDistribution      map[string]int         `json:"source_distribution"`
	PerSource               map[string]SourceStats `json:"per_source"`
}

// Merge folds all sources into one restaurant list keyed by the normalized
// name. On collision: review lists concatenate, the higher rating wins,
// cuisines union with first-seen casing, and the first-seen price range is
// kept. Restaurants keep first-seen order across sources.
func Merge(sources []Source) ([]domain.Restaurant, Stats, error) {
	stats := Stats{
		SourceDistribution: make(map[string]int),
		PerSource:          make(map[string]SourceStats),
	}

	byKey := make(map[string]*domain.Restaurant)
	var order []string

	for _, src := range sources {
		ss := SourceStats{Restaurants: len(src.Restaurants)}
		for _, incoming := range src.Restaurants {
			ss.Reviews += len(incoming.Reviews)
			key := domain.NameKey(incoming.Name)

			existing, ok := byKey[key]
			if !ok {
				merged := incoming
				merged.Cuisine = append([]string(nil), incoming.Cuisine...)
				merged.Reviews = append([]domain.Review(nil), incoming.Reviews...)
				merged.Sources = []string{src.Name}
				byKey[key] = &merged
				order = append(order, key)
				continue
			}

			existing.Reviews = append(existing.Reviews, incoming.Reviews...)
			if incoming.Rating > existing.Rating {
				existing.Rating = incoming.Rating
			}
			existing.Cuisine = unionCuisine(existing.Cuisine, incoming.Cuisine)
			if !contains(existing.Sources, src.Name) {
				existing.Sources = append(existing.Sources, src.Name)
			}
		}
		stats.PerSource[src.Name] = ss
	}

	if len(order) == 0 {
		return nil, Stats{}, ErrNoInputData
	}

	merged := make([]domain.Restaurant, 0, len(order))
	var ratingSum float64
	for _, key := range order {
		r := *byKey[key]
		merged = append(merged, r)
		stats.TotalReviews += len(r.Reviews)
		ratingSum += r.Rating
		for _, s := range r.Sources {
			stats.SourceDistribution[s]++
		}
	}
	stats.TotalRestaurants = len(merged)
	stats.AvgReviewsPerRestaurant = round2(float64(stats.TotalReviews) / float64(len(merged)))
	stats.AvgRating = round2(ratingSum / float64(len(merged)))

	return merged, stats, nil
}

// unionCuisine appends cuisines not already present. Matching is
// case-sensitive and exact; the first-seen casing wins.
func unionCuisine(existing, incoming []string) []string {
	for _, c := range incoming {
		if c != "" && !contains(existing, c) {
			existing = append(existing, c)
		}
	}
	return existing
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
