// Command build-docs turns the cleaned dataset into the flat document
// list the indexer embeds, chunking long reviews.
package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/rasoi-labs/rasoi/engine/chunk"
	"github.com/rasoi-labs/rasoi/engine/dataset"
	"github.com/rasoi-labs/rasoi/pkg/config"
)

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
		*inPath = cfg.Paths.CleanedFile
	}
	if *outPath == "" {
		*outPath = cfg.Paths.DocumentsFile
	}

	in, err := dataset.LoadRestaurants(*inPath)
	if errors.Is(err, os.ErrNotExist) {
		log.Info("cleaned dataset not found, run clean first", "path", *inPath)
		return
	}
	if err != nil {
		log.Error("load failed", "error", err)
		os.Exit(1)
	}

	builder := chunk.NewBuilder(chunk.Options{
		ChunkSize:      cfg.Chunker.ChunkSize,
		ChunkOverlap:   cfg.Chunker.ChunkOverlap,
		SplitThreshold: cfg.Chunker.SplitThreshold,
	})
	docs, stats := builder.Build(in.Restaurants)

	file := &dataset.DocumentFile{
		Metadata: dataset.Meta{
			Source:         "documents",
			GeneratedAt:    dataset.Timestamp(time.Now()),
			SourceFile:     *inPath,
			TotalDocuments: stats.TotalDocuments,
			Stats:          stats,
		},
		Documents: docs,
	}
	if err := dataset.SaveDocuments(*outPath, file); err != nil {
		log.Error("save failed", "error", err)
		os.Exit(1)
	}
	log.Info("documents written",
		"path", *outPath,
		"reviews", stats.TotalReviews,
		"documents", stats.TotalDocuments,
		"chunked_reviews", stats.ChunkedReviews,
		"extra_documents", stats.ExtraDocuments)
}
