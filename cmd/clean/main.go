// Command clean normalizes and filters the combined dataset, dropping
// reviews too thin to ground a recommendation.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/rasoi-labs/rasoi/engine/clean"
	"github.com/rasoi-labs/rasoi/engine/dataset"
	"github.com/rasoi-labs/rasoi/engine/domain"
	"github.com/rasoi-labs/rasoi/pkg/config"
	"github.com/rasoi-labs/rasoi/pkg/fn"
)

type cleaned struct {
	restaurants []domain.Restaurant
	stats       clean.Stats
}

func main() {
	var (
		configPath = flag.String("config", config.DefaultPath, "config file")
		inPath     = flag.String("in", "", "input file (default from config)")
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
	if *inPath == "" {
		*inPath = cfg.Paths.CombinedFile
	}
	if *outPath == "" {
		*outPath = cfg.Paths.CleanedFile
	}

	cleaner := clean.New(clean.Options{
		MinChars:       cfg.Cleaner.MinChars,
		MinWords:       cfg.Cleaner.MinWords,
		GenericPhrases: cfg.Cleaner.GenericPhrases,
		FingerprintLen: cfg.Cleaner.FingerprintLen,
	})

	load := fn.Traced("clean.load", fn.Lift(dataset.LoadRestaurants))
	run := fn.Traced("clean.reviews", func(_ context.Context, file *dataset.RestaurantFile) fn.Result[cleaned] {
		restaurants, stats := cleaner.Clean(file.Restaurants)
		if len(restaurants) == 0 {
			return fn.Err[cleaned](clean.ErrNoValidReviews)
		}
		return fn.Ok(cleaned{restaurants: restaurants, stats: stats})
	})

	result := fn.Then(load, run)(context.Background(), *inPath)
	out, err := result.Unwrap()
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Info("combined dataset not found, run combine first", "path", *inPath)
		return
	case errors.Is(err, clean.ErrNoValidReviews):
		log.Error("every review was rejected, cannot proceed", "path", *inPath)
		os.Exit(1)
	case err != nil:
		log.Error("clean failed", "error", err)
		os.Exit(1)
	}

	file := &dataset.RestaurantFile{
		Metadata: dataset.Meta{
			Source:           "cleaned",
			GeneratedAt:      dataset.Timestamp(time.Now()),
			SourceFile:       *inPath,
			TotalRestaurants: out.stats.CleanedRestaurants,
			TotalReviews:     out.stats.CleanedReviews,
			Stats:            out.stats,
		},
		Restaurants: out.restaurants,
	}
	if err := dataset.SaveRestaurants(*outPath, file); err != nil {
		log.Error("save failed", "error", err)
		os.Exit(1)
	}
	log.Info("cleaned dataset written",
		"path", *outPath,
		"restaurants", out.stats.CleanedRestaurants,
		"reviews", out.stats.CleanedReviews,
		"retention_rate", out.stats.RetentionRate)
}
