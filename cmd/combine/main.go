// Command combine merges the raw collection files into one dataset with
// no duplicate restaurants.
package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/rasoi-labs/rasoi/engine/combine"
	"github.com/rasoi-labs/rasoi/engine/dataset"
	"github.com/rasoi-labs/rasoi/pkg/config"
)

func main() {
	var (
		configPath = flag.String("config", config.DefaultPath, "config file")
		outPath    = flag.String("out", "", "output file (default from config)")
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
		*outPath = cfg.Paths.CombinedFile
	}

	inputs := []struct{ name, path string }{
		{"manual", cfg.Paths.ManualFile},
		{"blog", cfg.Paths.BlogFile},
		{"zomato", cfg.Paths.ZomatoFile},
	}

	var sources []combine.Source
	for _, in := range inputs {
		file, err := dataset.LoadRestaurants(in.path)
		if err != nil {
			// A single bad source is a warning, not a failure.
			log.Warn("source skipped", "source", in.name, "path", in.path, "error", err)
			continue
		}
		log.Info("source loaded", "source", in.name, "restaurants", len(file.Restaurants))
		sources = append(sources, combine.Source{Name: in.name, Restaurants: file.Restaurants})
	}

	merged, stats, err := combine.Merge(sources)
	if err != nil {
		if errors.Is(err, combine.ErrNoInputData) {
			log.Error("all sources empty, nothing to combine")
		} else {
			log.Error("merge failed", "error", err)
		}
		os.Exit(1)
	}

	file := &dataset.RestaurantFile{
		Metadata: dataset.Meta{
			Source:           "combined",
			GeneratedAt:      dataset.Timestamp(time.Now()),
			TotalRestaurants: stats.TotalRestaurants,
			TotalReviews:     stats.TotalReviews,
			Stats:            stats,
		},
		Restaurants: merged,
	}
	if err := dataset.SaveRestaurants(*outPath, file); err != nil {
		log.Error("save failed", "error", err)
		os.Exit(1)
	}
	log.Info("combined dataset written",
		"path", *outPath,
		"restaurants", stats.TotalRestaurants,
		"reviews", stats.TotalReviews,
		"avg_rating", stats.AvgRating)
}
