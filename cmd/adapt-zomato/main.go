// Command adapt-zomato converts the public Zomato restaurant CSV dump
// into the raw collection format, filtered to relevant cuisine and
// rating ranges.
package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/rasoi-labs/rasoi/engine/dataset"
	"github.com/rasoi-labs/rasoi/engine/scraper"
	"github.com/rasoi-labs/rasoi/pkg/config"
)

func main() {
	var (
		configPath = flag.String("config", config.DefaultPath, "config file")
		csvPath    = flag.String("csv", "data/raw/zomato.csv", "Zomato dataset CSV")
		outPath    = flag.String("out", "", "output file (default from config)")
		maxCount   = flag.Int("max", 30, "restaurants to keep after filtering")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("config load failed", "error", err)
		os.Exit(1)
	}
	if *outPath == "" {
		*outPath = cfg.Paths.ZomatoFile
	}

	if _, err := os.Stat(*csvPath); err != nil {
		log.Info("no Zomato CSV, skipping this source", "path", *csvPath)
		return
	}

	adapter := scraper.NewZomatoAdapter(scraper.ZomatoOptions{MaxRestaurants: *maxCount}, log)
	result, err := adapter.AdaptFile(*csvPath)
	if err != nil {
		log.Error("adapt failed", "error", err)
		os.Exit(1)
	}

	totalReviews := 0
	for _, r := range result.Restaurants {
		totalReviews += len(r.Reviews)
	}

	file := &dataset.RestaurantFile{
		Metadata: dataset.Meta{
			Source:           "zomato_dataset",
			GeneratedAt:      dataset.Timestamp(time.Now()),
			SourceFile:       *csvPath,
			TotalRestaurants: len(result.Restaurants),
			TotalReviews:     totalReviews,
			Stats: map[string]int{
				"original_records": result.OriginalRecords,
				"filtered_records": result.FilteredRecords,
			},
		},
		Restaurants: result.Restaurants,
	}
	if err := dataset.SaveRestaurants(*outPath, file); err != nil {
		log.Error("save failed", "error", err)
		os.Exit(1)
	}
	log.Info("zomato collection written",
		"path", *outPath,
		"original", result.OriginalRecords,
		"kept", len(result.Restaurants),
		"reviews", totalReviews)
}
