// Package index builds the review vector index: it embeds prepared
// documents, normalizes the vectors, and loads them into the vector
// store in a single all-or-nothing pass.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/rasoi-labs/rasoi/engine/domain"
	"github.com/rasoi-labs/rasoi/engine/semantic"
	"github.com/rasoi-labs/rasoi/pkg/fn"
)

// ErrNoDocuments is returned when the builder is given nothing to index.
var ErrNoDocuments = errors.New("index: no documents to index")

// Embedder produces fixed-length vectors for a batch of texts.
type Embedder interface {
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}

// Store is the slice of the vector store the builder needs.
type Store interface {
	Collection() string
	Recreate(ctx context.Context, dims int) error
	Upsert(ctx context.Context, records []semantic.VectorRecord) error
	Drop(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

// Options configures an index build.
type Options struct {
	Dims      int
	BatchSize int
	Retry     fn.RetryOpts
}

// DefaultOptions match the all-minilm embedding model.
var DefaultOptions = Options{Dims: 384, BatchSize: 32, Retry: fn.DefaultRetry}

// Builder embeds documents and loads them into a fresh collection.
type Builder struct {
	embedder Embedder
	store    Store
	opts     Options
	log      *slog.Logger
}

// NewBuilder wires a builder. A nil logger falls back to slog.Default.
func NewBuilder(embedder Embedder, store Store, opts Options, log *slog.Logger) *Builder {
	if opts.Dims <= 0 {
		opts.Dims = DefaultOptions.Dims
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultOptions.BatchSize
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry = DefaultOptions.Retry
	}
	if log == nil {
		log = slog.Default()
	}
	return &Builder{embedder: embedder, store: store, opts: opts, log: log}
}

// Build recreates the collection and indexes all documents. The
// returned report is always non-nil; on failure the collection is
// dropped so a half-built index never survives.
func (b *Builder) Build(ctx context.Context, docs []domain.Document) (*Report, error) {
	report := newReport(b.store.Collection(), b.embedder.Model(), b.opts.Dims)
	report.Statistics.TotalDocuments = len(docs)

	if len(docs) == 0 {
		report.Error = ErrNoDocuments.Error()
		return report, ErrNoDocuments
	}

	if err := b.store.Recreate(ctx, b.opts.Dims); err != nil {
		err = fmt.Errorf("index: recreate collection: %w", err)
		report.Error = err.Error()
		return report, err
	}

	start := time.Now()
	indexed := 0
	for _, batch := range fn.Chunk(docs, b.opts.BatchSize) {
		records, err := b.embedBatch(ctx, batch)
		if err != nil {
			report.Statistics.SuccessfulEmbeddings = indexed
			report.Statistics.FailedEmbeddings = len(docs) - indexed
			report.Statistics.EmbeddingTime = time.Since(start).Seconds()
			report.Error = err.Error()
			b.abort(ctx)
			return report, err
		}
		if err := b.store.Upsert(ctx, records); err != nil {
			err = fmt.Errorf("index: upsert batch: %w", err)
			report.Statistics.SuccessfulEmbeddings = indexed
			report.Statistics.FailedEmbeddings = len(docs) - indexed
			report.Statistics.EmbeddingTime = time.Since(start).Seconds()
			report.Error = err.Error()
			b.abort(ctx)
			return report, err
		}
		indexed += len(batch)
		b.log.Info("index: batch stored", "indexed", indexed, "total", len(docs))
	}

	report.Statistics.SuccessfulEmbeddings = indexed
	report.Statistics.EmbeddingTime = time.Since(start).Seconds()
	report.Success = true

	if count, err := b.store.Count(ctx); err != nil {
		b.log.Warn("index: count verification failed", "error", err)
	} else if count != indexed {
		b.log.Warn("index: stored count mismatch", "stored", count, "indexed", indexed)
	}

	return report, nil
}

func (b *Builder) embedBatch(ctx context.Context, docs []domain.Document) ([]semantic.VectorRecord, error) {
	texts := fn.Map(docs, func(d domain.Document) string { return d.PageContent })

	result := fn.Retry(ctx, b.opts.Retry, func(ctx context.Context) fn.Result[[][]float32] {
		return fn.FromPair(b.embedder.EmbedMany(ctx, texts))
	})
	vectors, err := result.Unwrap()
	if err != nil {
		return nil, fmt.Errorf("index: embed batch: %w", err)
	}
	if len(vectors) != len(docs) {
		return nil, fmt.Errorf("index: embedder returned %d vectors for %d texts", len(vectors), len(docs))
	}

	records := make([]semantic.VectorRecord, len(docs))
	for i, doc := range docs {
		if len(vectors[i]) != b.opts.Dims {
			return nil, fmt.Errorf("index: embedding has %d dims, want %d", len(vectors[i]), b.opts.Dims)
		}
		records[i] = semantic.VectorRecord{
			ID:        pointID(doc),
			Embedding: Normalize(vectors[i]),
			Document:  doc,
		}
	}
	return records, nil
}

// abort drops the collection after a failed build.
func (b *Builder) abort(ctx context.Context) {
	if err := b.store.Drop(ctx); err != nil {
		b.log.Error("index: drop after failed build", "error", err)
	}
}

// pointID derives a stable UUID from the document's identity, so
// rebuilding over identical data produces identical point IDs.
func pointID(doc domain.Document) string {
	chunk := -1
	if doc.Metadata.ChunkIndex != nil {
		chunk = *doc.Metadata.ChunkIndex
	}
	key := doc.Metadata.Restaurant + "#" + strconv.Itoa(chunk) + "#" + doc.PageContent
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

// Normalize scales a vector to unit L2 length. Zero vectors are
// returned unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
