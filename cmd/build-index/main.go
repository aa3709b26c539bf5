// Command build-index embeds the document list with Ollama and loads the
// vectors into Qdrant. A build report is written whether or not the build
// succeeds, so a failed run is still diagnosable from disk.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/rasoi-labs/rasoi/engine/dataset"
	"github.com/rasoi-labs/rasoi/engine/index"
	"github.com/rasoi-labs/rasoi/engine/semantic"
	"github.com/rasoi-labs/rasoi/pkg/config"
	"github.com/rasoi-labs/rasoi/pkg/metrics"
	"github.com/rasoi-labs/rasoi/pkg/ollama"
)

var met = metrics.New()

var (
	mDocsTotal  = met.Counter("rasoi_index_documents_total", "Documents submitted for embedding")
	mEmbedFails = met.Counter("rasoi_index_embed_failures_total", "Documents that failed to embed")
	mBuildDur   = met.Histogram("rasoi_index_build_duration_seconds", "Whole-build duration", nil)
)

func main() {
	var (
		configPath  = flag.String("config", config.DefaultPath, "config file")
		inPath      = flag.String("in", "", "input file (default from config)")
		reportPath  = flag.String("report", "", "build report file (default from config)")
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
	if *inPath == "" {
		*inPath = cfg.Paths.DocumentsFile
	}
	if *reportPath == "" {
		*reportPath = cfg.Paths.ReportFile
	}
	met.ServeAsync(*metricsPort)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	in, err := dataset.LoadDocuments(*inPath)
	if errors.Is(err, os.ErrNotExist) {
		log.Info("document file not found, run build-docs first", "path", *inPath)
		return
	}
	if err != nil {
		log.Error("load failed", "error", err)
		os.Exit(1)
	}
	mDocsTotal.Add(int64(len(in.Documents)))

	embedder := ollama.NewEmbedClient(
		cfg.Embedder.BaseURL,
		cfg.Embedder.Model,
		time.Duration(cfg.Embedder.TimeoutSecs)*time.Second,
	)
	store, err := semantic.New(cfg.Qdrant.Addr, cfg.Qdrant.Collection)
	if err != nil {
		log.Error("qdrant connect failed", "addr", cfg.Qdrant.Addr, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	builder := index.NewBuilder(embedder, store, index.Options{
		Dims:      cfg.Embedder.Dimensions,
		BatchSize: cfg.Embedder.BatchSize,
	}, log)

	start := time.Now()
	report, err := builder.Build(ctx, in.Documents)
	mBuildDur.Since(start)
	mEmbedFails.Add(int64(report.Statistics.FailedEmbeddings))

	if werr := report.Write(*reportPath); werr != nil {
		log.Error("report write failed", "path", *reportPath, "error", werr)
	}
	if err != nil {
		log.Error("index build failed", "error", err)
		os.Exit(1)
	}
	log.Info("index built",
		"collection", store.Collection(),
		"documents", report.Statistics.TotalDocuments,
		"embedded", report.Statistics.SuccessfulEmbeddings,
		"duration", time.Since(start).Round(time.Millisecond),
		"report", *reportPath)
}
