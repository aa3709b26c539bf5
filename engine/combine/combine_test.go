package combine

import (
	"errors"
	"testing"

	"github.com/rasoi-labs/rasoi/engine/domain"
)

func rev(text string) domain.Review {
	return domain.Review{Text: text, Rating: 4, Author: "a", Source: domain.SourceManual}
}

func TestMerge_Collision(t *testing.T) {
	sources := []Source{
		{Name: "blog_scraping", Restaurants: []domain.Restaurant{{
			Name:       "Trio Restaurant",
			Rating:     4.2,
			Cuisine:    []string{"Rajasthani", "Continental"},
			PriceRange: domain.PriceHigh,
			Reviews:    []domain.Review{rev("first review")},
		}}},
		{Name: "manual_collection", Restaurants: []domain.Restaurant{{
			Name:       "  trio   RESTAURANT ",
			Rating:     4.6,
			Cuisine:    []string{"rajasthani", "Continental", "Italian"},
			PriceRange: domain.PriceMid,
			Reviews:    []domain.Review{rev("second review"), rev("third review")},
		}}},
	}

	merged, stats, err := Merge(sources)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(merged) != 1 {
		t.Fatalf("expected 1 restaurant after merge, got %d", len(merged))
	}

	r := merged[0]
	if r.Name != "Trio Restaurant" {
		t.Errorf("expected first-seen name kept, got %q", r.Name)
	}
	if len(r.Reviews) != 3 {
		t.Errorf("expected 3 reviews, got %d", len(r.Reviews))
	}
	if r.Rating != 4.6 {
		t.Errorf("expected max rating 4.6, got %g", r.Rating)
	}
	// Case-sensitive union: "rajasthani" differs from "Rajasthani".
	wantCuisine := []string{"Rajasthani", "Continental", "rajasthani", "Italian"}
	if len(r.Cuisine) != len(wantCuisine) {
		t.Fatalf("cuisine = %v, want %v", r.Cuisine, wantCuisine)
	}
	for i := range wantCuisine {
		if r.Cuisine[i] != wantCuisine[i] {
			t.Errorf("cuisine[%d] = %q, want %q", i, r.Cuisine[i], wantCuisine[i])
		}
	}
	if r.PriceRange != domain.PriceHigh {
		t.Errorf("expected first-seen price range kept, got %q", r.PriceRange)
	}
	if len(r.Sources) != 2 {
		t.Errorf("expected both sources recorded, got %v", r.Sources)
	}

	if stats.TotalRestaurants != 1 || stats.TotalReviews != 3 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.PerSource["blog_scraping"].Reviews != 1 {
		t.Errorf("per-source stats wrong: %+v", stats.PerSource)
	}
}

func TestMerge_CommutativeUpToOrder(t *testing.T) {
	a := Source{Name: "a", Restaurants: []domain.Restaurant{
		{Name: "Trio", Rating: 4.0, Reviews: []domain.Review{rev("r1")}},
		{Name: "Saffron", Rating: 3.8, Reviews: []domain.Review{rev("r2")}},
	}}
	b := Source{Name: "b", Restaurants: []domain.Restaurant{
		{Name: "trio", Rating: 4.4, Reviews: []domain.Review{rev("r3")}},
	}}
	c := Source{Name: "c", Restaurants: []domain.Restaurant{
		{Name: "Jaisal Italy", Rating: 4.1, Reviews: []domain.Review{rev("r4")}},
	}}

	m1, s1, err := Merge([]Source{a, b, c})
	if err != nil {
		t.Fatal(err)
	}
	m2, s2, err := Merge([]Source{b, a, c})
	if err != nil {
		t.Fatal(err)
	}

	if s1.TotalRestaurants != s2.TotalRestaurants || s1.TotalReviews != s2.TotalReviews {
		t.Errorf("merge not commutative: %+v vs %+v", s1, s2)
	}

	keys1 := make(map[string]int)
	for _, r := range m1 {
		keys1[domain.NameKey(r.Name)] = len(r.Reviews)
	}
	for _, r := range m2 {
		if keys1[domain.NameKey(r.Name)] != len(r.Reviews) {
			t.Errorf("restaurant %q review count differs between orders", r.Name)
		}
	}
}

func TestMerge_AllEmpty(t *testing.T) {
	_, _, err := Merge([]Source{{Name: "a"}, {Name: "b"}})
	if !errors.Is(err, ErrNoInputData) {
		t.Fatalf("expected ErrNoInputData, got %v", err)
	}
}

func TestMerge_DoesNotMutateInput(t *testing.T) {
	src := []Source{
		{Name: "a", Restaurants: []domain.Restaurant{{
			Name: "Trio", Cuisine: []string{"Rajasthani"}, Reviews: []domain.Review{rev("r1")},
		}}},
		{Name: "b", Restaurants: []domain.Restaurant{{
			Name: "Trio", Cuisine: []string{"Italian"}, Reviews: []domain.Review{rev("r2")},
		}}},
	}
	if _, _, err := Merge(src); err != nil {
		t.Fatal(err)
	}
	if len(src[0].Restaurants[0].Reviews) != 1 || len(src[0].Restaurants[0].Cuisine) != 1 {
		t.Error("merge mutated a source collection")
	}
}
