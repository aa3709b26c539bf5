// Command ask answers a restaurant question over the built index. With a
// question on the command line it answers once and exits; without one it
// reads questions from stdin until "exit".
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/rasoi-labs/rasoi/engine/answer"
	"github.com/rasoi-labs/rasoi/engine/retrieve"
	"github.com/rasoi-labs/rasoi/engine/semantic"
	"github.com/rasoi-labs/rasoi/pkg/config"
	"github.com/rasoi-labs/rasoi/pkg/groq"
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

	llm, err := groq.NewClient(groq.Config{
		BaseURL:           cfg.LLM.BaseURL,
		Model:             cfg.LLM.Model,
		APIKeyEnv:         cfg.LLM.APIKeyEnv,
		Temperature:       cfg.LLM.Temperature,
		MaxTokens:         cfg.LLM.MaxTokens,
		Timeout:           time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
		RequestsPerMinute: cfg.LLM.RequestsPerMinute,
	})
	if errors.Is(err, groq.ErrMissingAPIKey) {
		log.Error("no API key, set it in the environment or .env", "env", cfg.LLM.APIKeyEnv)
		os.Exit(1)
	}
	if err != nil {
		log.Error("llm client failed", "error", err)
		os.Exit(1)
	}

	svc := answer.New(retriever, llm, log)

	if question := strings.Join(flag.Args(), " "); strings.TrimSpace(question) != "" {
		if err := askOnce(ctx, svc, question); err != nil {
			log.Error("ask failed", "error", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println("Ask about restaurants in Jaisalmer. Type \"exit\" to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if strings.EqualFold(question, "exit") {
			break
		}
		if err := askOnce(ctx, svc, question); err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Error("ask failed", "error", err)
		}
	}
}

func askOnce(ctx context.Context, svc *answer.Service, question string) error {
	ans, err := svc.Ask(ctx, question)
	if err != nil {
		return err
	}
	fmt.Println(ans.Text)
	if len(ans.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, src := range ans.Sources {
			fmt.Printf("  [%d] %s (%s)\n", src.Index, src.Document.Metadata.Restaurant, src.Document.Metadata.Cuisine)
		}
	}
	fmt.Println()
	return nil
}
