// Package answer turns a question into a grounded recommendation by
// stuffing retrieved reviews into a prompt and calling a language model.
package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rasoi-labs/rasoi/engine/domain"
	"github.com/rasoi-labs/rasoi/engine/retrieve"
	"github.com/rasoi-labs/rasoi/pkg/groq"
)

const promptTemplate = `You are a helpful and knowledgeable restaurant guide for Jaisalmer, India.
You help tourists find the best places to eat based on authentic customer reviews.

Context (Customer Reviews):
%s

Question: %s

Instructions for your answer:
1. Recommend 2-3 specific restaurants that best match the query
2. Mention specific dishes mentioned in the reviews
3. Include the price range (₹, ₹₹, or ₹₹₹) and cuisine type
4. Be concise but informative - aim for 3-5 sentences
5. Only use information from the reviews provided above
6. If the reviews don't contain relevant information, say "I don't have enough information about that in the available reviews."
7. Do not make up information or use knowledge not in the reviews

Answer format:
- Start with a direct answer to the question
- List restaurants with their key features
- Keep it natural and conversational

Answer:`

// Retriever fetches the context documents for a question.
type Retriever interface {
	Retrieve(ctx context.Context, q retrieve.Query) ([]domain.Document, error)
}

// Generator completes a chat prompt. *groq.Client satisfies it.
type Generator interface {
	Complete(ctx context.Context, messages []groq.Message) (string, error)
}

// Source is one document backing an answer, with its 1-based display
// index as cited to the user.
type Source struct {
	Index    int
	Document domain.Document
}

// Answer is a generated response with the exact documents it was
// grounded on, in retrieval order.
type Answer struct {
	Text    string
	Sources []Source
}

// Service answers questions over the review index.
type Service struct {
	retriever Retriever
	generator Generator
	log       *slog.Logger
}

// New wires an answer service. A nil logger falls back to slog.Default.
func New(retriever Retriever, generator Generator, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{retriever: retriever, generator: generator, log: log}
}

// Ask retrieves diversified context for the question and generates an
// answer. When retrieval comes back empty the model is never called.
func (s *Service) Ask(ctx context.Context, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, errors.New("answer: empty question")
	}

	docs, err := s.retriever.Retrieve(ctx, retrieve.Query{Text: question, Strategy: retrieve.StrategyMMR})
	if err != nil {
		return nil, fmt.Errorf("answer: retrieve: %w", err)
	}
	if len(docs) == 0 {
		return &Answer{Text: "I don't have enough information about that in the available reviews."}, nil
	}

	prompt := fmt.Sprintf(promptTemplate, renderContext(docs), question)
	s.log.Debug("answer: prompt built", "question", question, "sources", len(docs))

	text, err := s.generator.Complete(ctx, []groq.Message{{Role: "user", Content: prompt}})
	if err != nil {
		return nil, fmt.Errorf("answer: generate: %w", err)
	}

	sources := make([]Source, len(docs))
	for i, doc := range docs {
		sources[i] = Source{Index: i + 1, Document: doc}
	}
	return &Answer{Text: strings.TrimSpace(text), Sources: sources}, nil
}

// renderContext formats each document as a labeled review block.
func renderContext(docs []domain.Document) string {
	var b strings.Builder
	for i, doc := range docs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		m := doc.Metadata
		fmt.Fprintf(&b, "[%d] %s (%s, %s, rated %.1f)\n%s",
			i+1, m.Restaurant, m.Cuisine, m.PriceRange, m.RestaurantRating, doc.PageContent)
	}
	return b.String()
}
