package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rasoi-labs/rasoi/engine/domain"
	"github.com/rasoi-labs/rasoi/pkg/fn"
	"github.com/rasoi-labs/rasoi/pkg/resilience"
)

const blogPage = `<!DOCTYPE html>
<html>
<head><title>Eating in Jaisalmer</title><style>p { margin: 0 }</style></head>
<body>
<nav><p>Home | About | Contact with a long navigation paragraph to ignore</p></nav>
<article>
<p>Short intro.</p>
<p>The food at <b>Trio</b> restaurant is simply amazing, we recommend the dal baati and the authentic thali menu.</p>
<p>Jaisalmer weather in January is pleasant with cool evenings and warm days across the desert region of Rajasthan.</p>
<p>For a great dinner with a view, visit the rooftop cafe near the fort and try the delicious paneer dishes on the menu.</p>
</article>
<footer><p>Copyright notice with plenty of text that must never appear in results</p></footer>
</body>
</html>`

func testScraper(t *testing.T) *BlogScraper {
	t.Helper()
	s := NewBlogScraper(BlogOptions{
		DelayMin: time.Millisecond,
		DelayMax: 2 * time.Millisecond,
		Retry:    fn.RetryOpts{MaxAttempts: 2, InitialWait: time.Millisecond, MaxWait: time.Millisecond},
	}, nil)
	s.sleep = func(time.Duration) {}
	return s
}

func TestScrapeURLExtractsSnippets(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(blogPage))
	}))
	defer srv.Close()

	s := testScraper(t)
	s.SetRestaurantNames([]string{"Trio"})

	snippets, err := s.ScrapeURL(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("ScrapeURL: %v", err)
	}
	if gotUA != DefaultBlogOptions.UserAgent {
		t.Errorf("user agent = %q", gotUA)
	}
	if len(snippets) != 2 {
		t.Fatalf("got %d snippets, want 2: %+v", len(snippets), snippets)
	}
	if snippets[0].Restaurant != "Trio" {
		t.Errorf("first snippet restaurant = %q, want Trio", snippets[0].Restaurant)
	}
	// Rooftop paragraph names no known restaurant.
	if snippets[1].Restaurant != GeneralRestaurant {
		t.Errorf("second snippet restaurant = %q, want %q", snippets[1].Restaurant, GeneralRestaurant)
	}
	for _, sn := range snippets {
		if sn.Review.Source != domain.SourceBlog || sn.Review.Rating != 0 {
			t.Errorf("snippet review = %+v", sn.Review)
		}
	}
}

func TestScrapeURLRetriesThenFails(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := testScraper(t)
	if _, err := s.ScrapeURL(context.Background(), srv.URL); err == nil {
		t.Fatal("expected fetch error")
	}
	if calls != 2 {
		t.Errorf("made %d attempts, want 2", calls)
	}
}

func TestScrapeAllGroupsAndSkipsFailures(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(blogPage))
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer bad.Close()

	s := testScraper(t)
	s.SetRestaurantNames([]string{"Trio"})
	var slept int
	s.sleep = func(time.Duration) { slept++ }

	restaurants := s.ScrapeAll(context.Background(), []string{good.URL, bad.URL, good.URL})
	if slept != 2 {
		t.Errorf("slept %d times between 3 urls, want 2", slept)
	}
	if len(restaurants) != 2 {
		t.Fatalf("got %d restaurants, want 2 (Trio, General)", len(restaurants))
	}
	if restaurants[0].Name != "Trio" || len(restaurants[0].Reviews) != 2 {
		t.Errorf("restaurants[0] = %s with %d reviews", restaurants[0].Name, len(restaurants[0].Reviews))
	}
}

func TestScrapeAllStopsWhenBreakerTrips(t *testing.T) {
	var hits int
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer bad.Close()

	s := NewBlogScraper(BlogOptions{
		DelayMin: time.Millisecond,
		DelayMax: 2 * time.Millisecond,
		Retry:    fn.RetryOpts{MaxAttempts: 1, InitialWait: time.Millisecond, MaxWait: time.Millisecond},
		Breaker:  resilience.BreakerOpts{FailThreshold: 2, Cooldown: time.Hour, HalfOpenMax: 1},
	}, nil)
	s.sleep = func(time.Duration) {}

	restaurants := s.ScrapeAll(context.Background(), []string{bad.URL, bad.URL, bad.URL, bad.URL})
	if len(restaurants) != 0 {
		t.Fatalf("got %d restaurants from failing host", len(restaurants))
	}
	if hits != 2 {
		t.Errorf("host hit %d times, want 2 (breaker trips, remaining urls abandoned)", hits)
	}
}

func TestLoadRestaurantNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "restaurants.txt")
	content := "# curated list\nTrio | famous rooftop\n\nSaffron\n  # comment\nDesert Boys Dhani|local\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s := testScraper(t)
	if err := s.LoadRestaurantNames(path); err != nil {
		t.Fatalf("LoadRestaurantNames: %v", err)
	}
	want := []string{"trio", "saffron", "desert boys dhani"}
	if len(s.names) != len(want) {
		t.Fatalf("names = %v, want %v", s.names, want)
	}
	for i := range want {
		if s.names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, s.names[i], want[i])
		}
	}
}

func TestParagraphExtraction(t *testing.T) {
	paras := paragraphs(mainContent(blogPage))
	if len(paras) != 3 {
		t.Fatalf("got %d paragraphs, want 3: %v", len(paras), paras)
	}
	for _, p := range paras {
		if len(p) <= minParagraphChars {
			t.Errorf("kept short paragraph %q", p)
		}
		if strings.ContainsAny(p, "<>") {
			t.Errorf("paragraph still has markup: %q", p)
		}
	}
}

func TestLooksLikeReview(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"The restaurant serves delicious food", true},
		{"The weather is nice in winter", false},
		{"One keyword only: restaurant", false},
	}
	for _, tt := range tests {
		if got := looksLikeReview(tt.text); got != tt.want {
			t.Errorf("looksLikeReview(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
