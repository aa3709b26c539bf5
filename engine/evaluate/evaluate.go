// Package evaluate scores retrieval quality against a fixed battery of
// keyword-annotated queries. Scoring is deterministic for a fixed index
// and embedding model.
package evaluate

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/rasoi-labs/rasoi/engine/domain"
	"github.com/rasoi-labs/rasoi/engine/retrieve"
)

// Retriever is the query surface the evaluator exercises.
type Retriever interface {
	Retrieve(ctx context.Context, q retrieve.Query) ([]domain.Document, error)
}

// QualityTest pairs a query with the keywords a relevant result should
// mention somewhere in its content or cuisine metadata.
type QualityTest struct {
	Name             string
	Query            string
	ExpectedKeywords []string
}

// Battery is the standard evaluation set.
var Battery = []QualityTest{
	{
		Name:             "Vegetarian Query",
		Query:            "vegetarian restaurants",
		ExpectedKeywords: []string{"veg", "vegetarian", "paneer", "dal"},
	},
	{
		Name:             "Cuisine Query",
		Query:            "Rajasthani traditional food",
		ExpectedKeywords: []string{"rajasthani", "dal baati", "traditional", "authentic"},
	},
	{
		Name:             "Experience Query",
		Query:            "rooftop dining",
		ExpectedKeywords: []string{"rooftop", "view", "terrace", "fort"},
	},
}

// DiversityQuery is the broad query used to measure result spread.
const DiversityQuery = "best restaurants in Jaisalmer"

// QueryResult is the outcome of one battery entry.
type QueryResult struct {
	Name      string
	Query     string
	Total     int
	Relevant  int
	Relevance float64 // percent
}

// Summary aggregates a full evaluation run.
type Summary struct {
	Results           []QueryResult
	AverageRelevance  float64 // percent
	UniqueRestaurants int
	DiversityResults  int
	DiversityScore    float64 // unique restaurants / results
}

// Options tunes the evaluation run.
type Options struct {
	TopK       int // per battery query
	DiversityK int // for the diversity probe
}

// DefaultOptions match the reference harness.
var DefaultOptions = Options{TopK: 5, DiversityK: 10}

// Evaluator runs the battery against a retriever.
type Evaluator struct {
	retriever Retriever
	opts      Options
}

// New builds an evaluator.
func New(retriever Retriever, opts Options) *Evaluator {
	if opts.TopK <= 0 {
		opts.TopK = DefaultOptions.TopK
	}
	if opts.DiversityK <= 0 {
		opts.DiversityK = DefaultOptions.DiversityK
	}
	return &Evaluator{retriever: retriever, opts: opts}
}

// Run executes every battery query plus the diversity probe.
func (e *Evaluator) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{}

	for _, test := range Battery {
		docs, err := e.retriever.Retrieve(ctx, retrieve.Query{Text: test.Query, K: e.opts.TopK})
		if err != nil {
			return nil, fmt.Errorf("evaluate: query %q: %w", test.Query, err)
		}
		result := scoreQuery(test, docs)
		summary.Results = append(summary.Results, result)
		summary.AverageRelevance += result.Relevance
	}
	if len(summary.Results) > 0 {
		summary.AverageRelevance /= float64(len(summary.Results))
	}

	docs, err := e.retriever.Retrieve(ctx, retrieve.Query{Text: DiversityQuery, K: e.opts.DiversityK})
	if err != nil {
		return nil, fmt.Errorf("evaluate: diversity query: %w", err)
	}
	unique := make(map[string]struct{})
	for _, doc := range docs {
		unique[doc.Metadata.Restaurant] = struct{}{}
	}
	summary.UniqueRestaurants = len(unique)
	summary.DiversityResults = len(docs)
	if len(docs) > 0 {
		summary.DiversityScore = float64(len(unique)) / float64(len(docs))
	}

	return summary, nil
}

// scoreQuery counts documents mentioning at least one expected keyword
// in their lowercased content plus cuisine metadata.
func scoreQuery(test QualityTest, docs []domain.Document) QueryResult {
	result := QueryResult{Name: test.Name, Query: test.Query, Total: len(docs)}
	for _, doc := range docs {
		text := strings.ToLower(doc.PageContent + " " + doc.Metadata.Cuisine)
		for _, kw := range test.ExpectedKeywords {
			if strings.Contains(text, kw) {
				result.Relevant++
				break
			}
		}
	}
	if result.Total > 0 {
		result.Relevance = float64(result.Relevant) / float64(result.Total) * 100
	}
	return result
}

// Render formats the summary as a plain-text report.
func (s *Summary) Render() string {
	var b strings.Builder
	b.WriteString("RETRIEVAL QUALITY SUMMARY\n\n")

	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Test\tQuery\tTotal\tRelevant\tRelevance")
	for _, r := range s.Results {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.1f%%\n", r.Name, r.Query, r.Total, r.Relevant, r.Relevance)
	}
	w.Flush()

	fmt.Fprintf(&b, "\nAverage relevance: %.1f%%\n", s.AverageRelevance)
	fmt.Fprintf(&b, "Diversity: %d unique restaurants in top %d (score %.1f%%)\n",
		s.UniqueRestaurants, s.DiversityResults, s.DiversityScore*100)
	return b.String()
}
