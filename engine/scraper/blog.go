// Package scraper collects raw restaurant reviews from outside sources:
// travel blog posts and the public Zomato dataset dump.
package scraper

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rasoi-labs/rasoi/engine/domain"
	"github.com/rasoi-labs/rasoi/pkg/fn"
	"github.com/rasoi-labs/rasoi/pkg/resilience"
)

// GeneralRestaurant collects blog paragraphs about the food scene that
// mention no specific restaurant.
const GeneralRestaurant = "General"

// reviewKeywords mark a paragraph as food-related. A paragraph needs at
// least two hits to count as a review snippet.
var reviewKeywords = []string{
	"restaurant", "food", "dish", "menu", "delicious",
	"tasty", "authentic", "recommend", "must try",
	"best", "excellent", "amazing", "great", "good",
	"try", "visit", "eat", "dining", "cafe",
}

const minKeywordHits = 2

// BlogOptions configures the blog scraper.
type BlogOptions struct {
	UserAgent string
	DelayMin  time.Duration
	DelayMax  time.Duration
	Timeout   time.Duration
	Retry     fn.RetryOpts
	Breaker   resilience.BreakerOpts
}

// DefaultBlogOptions are polite crawl settings.
var DefaultBlogOptions = BlogOptions{
	UserAgent: "Mozilla/5.0 (compatible; RasoiBot/1.0; educational project)",
	DelayMin:  2 * time.Second,
	DelayMax:  4 * time.Second,
	Timeout:   15 * time.Second,
	Retry:     fn.DefaultRetry,
	Breaker:   resilience.DefaultBreakerOpts,
}

// BlogScraper fetches blog posts and extracts review snippets for known
// restaurant names.
type BlogScraper struct {
	opts    BlogOptions
	names   []string // lowercased known restaurant names
	client  *http.Client
	breaker *resilience.Breaker
	log     *slog.Logger
	sleep   func(time.Duration)
	jitter  func() float64
	titler  cases.Caser
}

// NewBlogScraper builds a scraper. A nil logger falls back to
// slog.Default.
func NewBlogScraper(opts BlogOptions, log *slog.Logger) *BlogScraper {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultBlogOptions.UserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultBlogOptions.Timeout
	}
	if opts.DelayMin <= 0 {
		opts.DelayMin = DefaultBlogOptions.DelayMin
	}
	if opts.DelayMax < opts.DelayMin {
		opts.DelayMax = opts.DelayMin
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry = DefaultBlogOptions.Retry
	}
	if log == nil {
		log = slog.Default()
	}
	return &BlogScraper{
		opts: opts,
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: resilience.NewBreaker(opts.Breaker),
		log:     log,
		sleep:   time.Sleep,
		jitter:  rand.Float64,
		titler:  cases.Title(language.English),
	}
}

// LoadRestaurantNames reads one name per line, ignoring blank lines and
// # comments. Anything after a | separator is dropped.
func (s *BlogScraper) LoadRestaurantNames(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("scraper: restaurant list: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, _, _ := strings.Cut(line, "|")
		s.names = append(s.names, strings.ToLower(strings.TrimSpace(name)))
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("scraper: restaurant list: %w", err)
	}
	s.log.Info("scraper: restaurant names loaded", "count", len(s.names))
	return nil
}

// SetRestaurantNames replaces the known-name list.
func (s *BlogScraper) SetRestaurantNames(names []string) {
	s.names = fn.Map(names, strings.ToLower)
}

// ScrapeAll scrapes every URL in order, sleeping a jittered interval
// between requests, and groups the snippets by restaurant. A URL that
// cannot be fetched is skipped with a warning; an all-failed run still
// returns an empty slice, not an error. A run whose fetches keep failing
// trips the circuit breaker and abandons the remaining URLs.
func (s *BlogScraper) ScrapeAll(ctx context.Context, urls []string) []domain.Restaurant {
	byName := make(map[string]*domain.Restaurant)
	var order []string

	for i, url := range urls {
		reviews, err := s.ScrapeURL(ctx, url)
		if errors.Is(err, resilience.ErrOpen) {
			s.log.Warn("scraper: circuit open, abandoning remaining urls",
				"url", url, "remaining", len(urls)-i)
			break
		}
		if err != nil {
			s.log.Warn("scraper: url skipped", "url", url, "error", err)
		}
		for _, rev := range reviews {
			r, ok := byName[rev.Restaurant]
			if !ok {
				r = &domain.Restaurant{Name: rev.Restaurant, Sources: []string{"blog"}}
				byName[rev.Restaurant] = r
				order = append(order, rev.Restaurant)
			}
			r.Reviews = append(r.Reviews, rev.Review)
		}

		if i < len(urls)-1 {
			delay := s.opts.DelayMin + time.Duration(s.jitter()*float64(s.opts.DelayMax-s.opts.DelayMin))
			s.log.Debug("scraper: waiting before next request", "delay", delay)
			s.sleep(delay)
		}
	}

	out := make([]domain.Restaurant, len(order))
	for i, name := range order {
		out[i] = *byName[name]
	}
	return out
}

// Snippet is one paragraph attributed to a restaurant.
type Snippet struct {
	Restaurant string
	Review     domain.Review
}

// ScrapeURL fetches one page and extracts its review snippets.
func (s *BlogScraper) ScrapeURL(ctx context.Context, url string) ([]Snippet, error) {
	page, err := s.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	paras := paragraphs(mainContent(page))
	s.log.Info("scraper: page fetched", "url", url, "paragraphs", len(paras))

	var snippets []Snippet
	for _, para := range paras {
		if !looksLikeReview(para) {
			continue
		}
		review := domain.Review{
			Text:   para,
			Rating: 0, // blogs carry no explicit rating
			Author: "Travel Blogger",
			Date:   time.Now().Format("2006-01-02"),
			Source: domain.SourceBlog,
		}
		mentioned := s.mentions(para)
		if len(mentioned) == 0 {
			snippets = append(snippets, Snippet{Restaurant: GeneralRestaurant, Review: review})
			continue
		}
		for _, name := range mentioned {
			snippets = append(snippets, Snippet{Restaurant: name, Review: review})
		}
	}
	return snippets, nil
}

// fetch retrieves one page through the retry policy and the circuit
// breaker. Once the breaker trips, further fetches fail immediately
// with resilience.ErrOpen until the cooldown passes.
func (s *BlogScraper) fetch(ctx context.Context, url string) (string, error) {
	var page string
	err := s.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		page, err = s.fetchOnce(ctx, url)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("scraper: fetch %s: %w", url, err)
	}
	return page, nil
}

func (s *BlogScraper) fetchOnce(ctx context.Context, url string) (string, error) {
	result := fn.Retry(ctx, s.opts.Retry, func(ctx context.Context) fn.Result[string] {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fn.Err[string](err)
		}
		req.Header.Set("User-Agent", s.opts.UserAgent)

		resp, err := s.client.Do(req)
		if err != nil {
			return fn.Err[string](err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fn.Errf[string]("status %d", resp.StatusCode)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fn.Err[string](err)
		}
		return fn.Ok(string(body))
	})
	return result.Unwrap()
}

// mentions returns the known restaurant names appearing in the text,
// title-cased for display.
func (s *BlogScraper) mentions(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, name := range s.names {
		if strings.Contains(lower, name) {
			found = append(found, s.titler.String(name))
		}
	}
	return found
}

func looksLikeReview(para string) bool {
	lower := strings.ToLower(para)
	hits := 0
	for _, kw := range reviewKeywords {
		if strings.Contains(lower, kw) {
			hits++
			if hits >= minKeywordHits {
				return true
			}
		}
	}
	return false
}
