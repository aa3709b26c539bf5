// Command scrape-blog collects restaurant review snippets from a list
// of travel blog URLs and writes the raw collection file.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/rasoi-labs/rasoi/engine/dataset"
	"github.com/rasoi-labs/rasoi/engine/scraper"
	"github.com/rasoi-labs/rasoi/pkg/config"
	"github.com/rasoi-labs/rasoi/pkg/fn"
	"github.com/rasoi-labs/rasoi/pkg/metrics"
)

var met = metrics.New()

var (
	mPagesTotal   = met.Counter("rasoi_scrape_pages_total", "Blog pages fetched")
	mReviewsTotal = met.Counter("rasoi_scrape_reviews_total", "Review snippets extracted")
	mScrapeDur    = met.Histogram("rasoi_scrape_duration_seconds", "Whole-run duration", nil)
)

func main() {
	var (
		configPath  = flag.String("config", config.DefaultPath, "config file")
		urlsPath    = flag.String("urls", "data/raw/blog_urls.txt", "file with one blog URL per line")
		namesPath   = flag.String("names", "data/raw/restaurant_names.txt", "known restaurant names, one per line")
		outPath     = flag.String("out", "", "output file (default from config)")
		metricsPort = flag.Int("metrics-port", 0, "serve /metrics on this port (0 = off)")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("config load failed", "error", err)
		os.Exit(1)
	}
	if *outPath == "" {
		*outPath = cfg.Paths.BlogFile
	}
	met.ServeAsync(*metricsPort)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	urls, err := readLines(*urlsPath)
	if err != nil {
		log.Info("no blog URL list, nothing to scrape", "path", *urlsPath, "error", err)
		return
	}
	if len(urls) == 0 {
		log.Info("blog URL list is empty, nothing to scrape", "path", *urlsPath)
		return
	}

	s := scraper.NewBlogScraper(scraper.BlogOptions{
		UserAgent: cfg.Scraper.UserAgent,
		DelayMin:  time.Duration(cfg.Scraper.DelayMinSecs) * time.Second,
		DelayMax:  time.Duration(cfg.Scraper.DelayMaxSecs) * time.Second,
		Timeout:   time.Duration(cfg.Scraper.TimeoutSecs) * time.Second,
		Retry:     fn.RetryOpts{MaxAttempts: cfg.Scraper.MaxRetries, InitialWait: time.Second, MaxWait: 30 * time.Second, Jitter: true},
	}, log)
	if err := s.LoadRestaurantNames(*namesPath); err != nil {
		log.Warn("no restaurant name list, all snippets will be general", "error", err)
	}

	start := time.Now()
	restaurants := s.ScrapeAll(ctx, urls)
	mPagesTotal.Add(int64(len(urls)))
	mScrapeDur.Since(start)

	totalReviews := 0
	for _, r := range restaurants {
		totalReviews += len(r.Reviews)
	}
	mReviewsTotal.Add(int64(totalReviews))

	file := &dataset.RestaurantFile{
		Metadata: dataset.Meta{
			Source:           "blog",
			GeneratedAt:      dataset.Timestamp(time.Now()),
			TotalRestaurants: len(restaurants),
			TotalReviews:     totalReviews,
		},
		Restaurants: restaurants,
	}
	if err := dataset.SaveRestaurants(*outPath, file); err != nil {
		log.Error("save failed", "error", err)
		os.Exit(1)
	}
	log.Info("blog collection written",
		"path", *outPath, "restaurants", len(restaurants), "reviews", totalReviews)
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			out = append(out, line)
		}
	}
	return out, sc.Err()
}
