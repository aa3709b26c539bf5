// Package retrieve answers similarity queries against the review index,
// plainly ranked or diversified with maximal marginal relevance.
package retrieve

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/rasoi-labs/rasoi/engine/domain"
	"github.com/rasoi-labs/rasoi/engine/semantic"
)

// Strategy selects the ranking behavior of a query.
type Strategy string

const (
	// StrategySimilarity ranks by cosine similarity, descending.
	StrategySimilarity Strategy = "similarity"
	// StrategyMMR fetches a larger pool and greedily balances query
	// relevance against dissimilarity to already-picked results.
	StrategyMMR Strategy = "mmr"
)

// Searcher is the read side of the vector store.
type Searcher interface {
	Search(ctx context.Context, embedding []float32, topK int, filter *semantic.Filter, withVectors bool) ([]semantic.SearchResult, error)
}

// Embedder embeds a single query text.
type Embedder interface {
	EmbedOne(ctx context.Context, text string) ([]float32, error)
}

// Options tunes retrieval.
type Options struct {
	TopK int
	// FetchMultiplier sizes the MMR candidate pool as TopK times this.
	FetchMultiplier int
	// Lambda weighs relevance against diversity in MMR. 1 is pure
	// similarity, 0 is pure diversity.
	Lambda float64
}

// DefaultOptions mirror the production retriever configuration.
var DefaultOptions = Options{TopK: 5, FetchMultiplier: 4, Lambda: 0.5}

// Query is one retrieval request. Filter is pushed down to the store;
// Keep, when set, excludes documents post-hoc. Results filtered below
// TopK are returned as fewer results, never padded.
type Query struct {
	Text     string
	Strategy Strategy
	Filter   *semantic.Filter
	Keep     func(domain.Document) bool
	// K overrides Options.TopK for this query when positive.
	K int
}

// Retriever runs queries against the index. It never mutates the index.
type Retriever struct {
	embedder Embedder
	searcher Searcher
	opts     Options
	log      *slog.Logger
}

// New wires a retriever. A nil logger falls back to slog.Default.
func New(embedder Embedder, searcher Searcher, opts Options, log *slog.Logger) *Retriever {
	if opts.TopK <= 0 {
		opts.TopK = DefaultOptions.TopK
	}
	if opts.FetchMultiplier <= 0 {
		opts.FetchMultiplier = DefaultOptions.FetchMultiplier
	}
	if opts.Lambda <= 0 || opts.Lambda > 1 {
		opts.Lambda = DefaultOptions.Lambda
	}
	if log == nil {
		log = slog.Default()
	}
	return &Retriever{embedder: embedder, searcher: searcher, opts: opts, log: log}
}

// Retrieve runs one query and returns up to TopK documents in rank order.
func (r *Retriever) Retrieve(ctx context.Context, q Query) ([]domain.Document, error) {
	embedding, err := r.embedder.EmbedOne(ctx, q.Text)
	if err != nil {
		return nil, fmt.Errorf("retrieve: embed query: %w", err)
	}

	k := r.opts.TopK
	if q.K > 0 {
		k = q.K
	}

	switch q.Strategy {
	case StrategyMMR:
		return r.mmr(ctx, embedding, q, k)
	case StrategySimilarity, "":
		return r.similarity(ctx, embedding, q, k)
	default:
		return nil, fmt.Errorf("retrieve: unknown strategy %q", q.Strategy)
	}
}

func (r *Retriever) similarity(ctx context.Context, embedding []float32, q Query, k int) ([]domain.Document, error) {
	results, err := r.searcher.Search(ctx, embedding, k, q.Filter, false)
	if err != nil {
		return nil, fmt.Errorf("retrieve: search: %w", err)
	}
	docs := make([]domain.Document, 0, len(results))
	for _, res := range results {
		if q.Keep != nil && !q.Keep(res.Document) {
			continue
		}
		docs = append(docs, res.Document)
	}
	return docs, nil
}

func (r *Retriever) mmr(ctx context.Context, embedding []float32, q Query, k int) ([]domain.Document, error) {
	fetch := k * r.opts.FetchMultiplier
	results, err := r.searcher.Search(ctx, embedding, fetch, q.Filter, true)
	if err != nil {
		return nil, fmt.Errorf("retrieve: search: %w", err)
	}

	pool := results[:0:0]
	for _, res := range results {
		if q.Keep != nil && !q.Keep(res.Document) {
			continue
		}
		pool = append(pool, res)
	}

	selected := selectMMR(pool, k, r.opts.Lambda)
	docs := make([]domain.Document, len(selected))
	for i, res := range selected {
		docs[i] = res.Document
	}
	return docs, nil
}

// selectMMR greedily picks up to k candidates, each round taking the
// one maximizing lambda*relevance - (1-lambda)*max-similarity-to-picked.
// Ties keep the earlier candidate, so the ranking is stable.
func selectMMR(pool []semantic.SearchResult, k int, lambda float64) []semantic.SearchResult {
	if len(pool) <= k {
		return pool
	}

	selected := make([]semantic.SearchResult, 0, k)
	remaining := make([]semantic.SearchResult, len(pool))
	copy(remaining, pool)

	for len(selected) < k && len(remaining) > 0 {
		best, bestScore := 0, math.Inf(-1)
		for i, cand := range remaining {
			redundancy := 0.0
			for _, s := range selected {
				if sim := cosine(cand.Vector, s.Vector); sim > redundancy {
					redundancy = sim
				}
			}
			score := lambda*float64(cand.Score) - (1-lambda)*redundancy
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		selected = append(selected, remaining[best])
		remaining = append(remaining[:best], remaining[best+1:]...)
	}
	return selected
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
