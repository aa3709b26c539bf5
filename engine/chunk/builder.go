package chunk

import (
	"strings"

	"github.com/rasoi-labs/rasoi/engine/domain"
)

// Options configure the document builder.
type Options struct {
	// ChunkSize and ChunkOverlap are passed to the splitter.
	ChunkSize    int
	ChunkOverlap int
	// SplitThreshold is the review length above which splitting kicks in.
	// Reviews at or below it become exactly one document.
	SplitThreshold int
}

// DefaultOptions returns the reference chunking parameters.
func DefaultOptions() Options {
	return Options{ChunkSize: 500, ChunkOverlap: 50, SplitThreshold: 600}
}

// Stats reports how many documents chunking produced.
type Stats struct {
	TotalReviews   int `json:"total_reviews"`
	TotalDocuments int `json:"total_documents"`
	ChunkedReviews int `json:"chunked_reviews"`
	ExtraDocuments int `json:"extra_documents"`
}

// Builder turns cleaned restaurants into the flat document list.
type Builder struct {
	splitter  *Splitter
	threshold int
}

// NewBuilder creates a Builder. Zero-valued options fall back to defaults.
func NewBuilder(opts Options) *Builder {
	def := DefaultOptions()
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = def.ChunkSize
	}
	if opts.ChunkOverlap <= 0 {
		opts.ChunkOverlap = def.ChunkOverlap
	}
	if opts.SplitThreshold <= 0 {
		opts.SplitThreshold = def.SplitThreshold
	}
	return &Builder{
		splitter:  NewSplitter(opts.ChunkSize, opts.ChunkOverlap),
		threshold: opts.SplitThreshold,
	}
}

// Build produces one or more documents per review. A review within the
// split threshold yields a single document without chunk fields; a longer
// one is split, and every resulting document shares the parent metadata
// plus its chunk_index and total_chunks.
func (b *Builder) Build(restaurants []domain.Restaurant) ([]domain.Document, Stats) {
	var docs []domain.Document
	var stats Stats

	for _, r := range restaurants {
		for _, rev := range r.Reviews {
			stats.TotalReviews++
			meta := documentMetadata(r, rev)

			if len([]rune(rev.Text)) <= b.threshold {
				docs = append(docs, domain.Document{PageContent: rev.Text, Metadata: meta})
				stats.TotalDocuments++
				continue
			}

			chunks := b.splitter.Split(rev.Text)
			total := len(chunks)
			stats.ChunkedReviews++
			stats.ExtraDocuments += total - 1
			for i, c := range chunks {
				idx := i
				n := total
				m := meta
				m.ChunkIndex = &idx
				m.TotalChunks = &n
				docs = append(docs, domain.Document{PageContent: c, Metadata: m})
				stats.TotalDocuments++
			}
		}
	}
	return docs, stats
}

func documentMetadata(r domain.Restaurant, rev domain.Review) domain.Metadata {
	return domain.Metadata{
		Restaurant:       r.Name,
		Rating:           rev.Rating,
		Author:           rev.Author,
		Date:             rev.Date,
		Source:           rev.Source,
		Cuisine:          strings.Join(r.Cuisine, ", "),
		PriceRange:       r.PriceRange,
		RestaurantRating: r.Rating,
	}
}
