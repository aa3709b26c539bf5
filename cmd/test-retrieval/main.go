// Command test-retrieval runs the retrieval quality battery against the
// built index and prints a relevance and diversity summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/rasoi-labs/rasoi/engine/evaluate"
	"github.com/rasoi-labs/rasoi/engine/retrieve"
	"github.com/rasoi-labs/rasoi/engine/semantic"
	"github.com/rasoi-labs/rasoi/pkg/config"
	"github.com/rasoi-labs/rasoi/pkg/ollama"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "config file")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("config load failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := semantic.New(cfg.Qdrant.Addr, cfg.Qdrant.Collection)
	if err != nil {
		log.Error("qdrant connect failed", "addr", cfg.Qdrant.Addr, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	exists, err := store.Exists(ctx)
	if err != nil {
		log.Error("collection check failed", "error", err)
		os.Exit(1)
	}
	if !exists {
		log.Info("collection not found, run build-index first", "collection", store.Collection())
		return
	}

	embedder := ollama.NewEmbedClient(
		cfg.Embedder.BaseURL,
		cfg.Embedder.Model,
		time.Duration(cfg.Embedder.TimeoutSecs)*time.Second,
	)
	retriever := retrieve.New(embedder, store, retrieve.Options{
		TopK:            cfg.Retriever.TopK,
		FetchMultiplier: cfg.Retriever.FetchMultiplier,
		Lambda:          cfg.Retriever.Lambda,
	}, log)

	evaluator := evaluate.New(retriever, evaluate.Options{TopK: cfg.Retriever.TopK})
	summary, err := evaluator.Run(ctx)
	if err != nil {
		log.Error("evaluation failed", "error", err)
		os.Exit(1)
	}
	fmt.Print(summary.Render())
}
