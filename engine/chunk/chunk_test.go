package chunk

import (
	"strings"
	"testing"

	"github.com/rasoi-labs/rasoi/engine/domain"
)

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	s := NewSplitter(500, 50)
	chunks := s.Split("a short review")
	if len(chunks) != 1 || chunks[0] != "a short review" {
		t.Fatalf("expected single identical chunk, got %v", chunks)
	}
}

func TestSplit_EmptyText(t *testing.T) {
	if chunks := NewSplitter(500, 50).Split(""); chunks != nil {
		t.Fatalf("expected no chunks, got %v", chunks)
	}
}

func TestSplit_1200CharsThreeChunks(t *testing.T) {
	text := strings.Repeat("a", 1200)
	chunks := NewSplitter(500, 50).Split(text)

	if len(chunks) != 3 {
		t.Fatalf("expected exactly 3 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 500 {
			t.Errorf("chunk %d has %d chars, want <= 500", i, len(c))
		}
	}
	// Consecutive chunks overlap by exactly 50 characters.
	for i := 1; i < len(chunks); i++ {
		prev, cur := chunks[i-1], chunks[i]
		if prev[len(prev)-50:] != cur[:50] {
			t.Errorf("chunks %d and %d do not overlap by 50 chars", i-1, i)
		}
	}
}

func TestSplit_PrefersSentenceBoundary(t *testing.T) {
	sentence := strings.Repeat("x", 120) + ". "
	text := strings.Repeat(sentence, 8) // ~976 chars
	chunks := NewSplitter(500, 50).Split(text)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if !strings.HasSuffix(chunks[0], ". ") {
		t.Errorf("first chunk should end at a sentence boundary, ends with %q",
			chunks[0][len(chunks[0])-10:])
	}
}

func TestSplit_PrefersParagraphBreak(t *testing.T) {
	para := strings.Repeat("y", 300)
	text := para + "\n\n" + para + "\n\n" + para
	chunks := NewSplitter(500, 50).Split(text)

	if !strings.HasSuffix(chunks[0], "\n\n") {
		t.Errorf("first chunk should end at the paragraph break")
	}
}

func TestSplit_ReconstructionBounds(t *testing.T) {
	texts := []string{
		strings.Repeat("a", 1200),
		strings.Repeat(strings.Repeat("w", 57)+" ", 30),
		strings.Repeat("The fort view from the rooftop was stunning. ", 40),
	}
	for _, text := range texts {
		chunks := NewSplitter(500, 50).Split(text)
		if len(chunks) < 2 {
			continue
		}
		reconstructed := len([]rune(chunks[0]))
		for i := 1; i < len(chunks); i++ {
			reconstructed += len([]rune(chunks[i])) - 50
		}
		orig := len([]rune(text))
		lower := orig - (len(chunks)-1)*50
		if reconstructed < lower || reconstructed > orig {
			t.Errorf("reconstructed length %d outside [%d, %d] for %d chunks",
				reconstructed, lower, orig, len(chunks))
		}
	}
}

func testRestaurant(reviewText string) domain.Restaurant {
	return domain.Restaurant{
		Name:       "Saffron Cafe",
		Rating:     4.2,
		Cuisine:    []string{"Rajasthani", "North Indian"},
		PriceRange: domain.PriceMid,
		Reviews: []domain.Review{{
			Text:   reviewText,
			Rating: 5,
			Author: "foodie82",
			Date:   "2024-10-12",
			Source: domain.SourceBlog,
		}},
	}
}

func TestBuild_ShortReviewSingleDocument(t *testing.T) {
	b := NewBuilder(DefaultOptions())
	docs, stats := b.Build([]domain.Restaurant{testRestaurant("Short but specific: the laal maas was perfectly spiced.")})

	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	d := docs[0]
	if d.Metadata.ChunkIndex != nil || d.Metadata.TotalChunks != nil {
		t.Error("short review document must not carry chunk fields")
	}
	if d.Metadata.Restaurant != "Saffron Cafe" || d.Metadata.Cuisine != "Rajasthani, North Indian" {
		t.Errorf("metadata wrong: %+v", d.Metadata)
	}
	if d.Metadata.Rating != 5 || d.Metadata.RestaurantRating != 4.2 {
		t.Errorf("ratings wrong: %+v", d.Metadata)
	}
	if stats.TotalDocuments != 1 || stats.ChunkedReviews != 0 || stats.ExtraDocuments != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestBuild_LongReviewChunked(t *testing.T) {
	long := strings.Repeat("The dal baati was rich and the service friendly. ", 25) // ~1225 chars
	b := NewBuilder(DefaultOptions())
	docs, stats := b.Build([]domain.Restaurant{testRestaurant(long)})

	if len(docs) < 2 {
		t.Fatalf("expected chunked documents, got %d", len(docs))
	}
	total := len(docs)
	for i, d := range docs {
		if d.Metadata.ChunkIndex == nil || *d.Metadata.ChunkIndex != i {
			t.Errorf("doc %d: bad chunk_index %v", i, d.Metadata.ChunkIndex)
		}
		if d.Metadata.TotalChunks == nil || *d.Metadata.TotalChunks != total {
			t.Errorf("doc %d: bad total_chunks %v", i, d.Metadata.TotalChunks)
		}
		if d.Metadata.Restaurant != "Saffron Cafe" {
			t.Errorf("doc %d lost restaurant metadata", i)
		}
		if len([]rune(d.PageContent)) > 500 {
			t.Errorf("doc %d content exceeds chunk size", i)
		}
	}
	if stats.ChunkedReviews != 1 {
		t.Errorf("expected 1 chunked review, stats: %+v", stats)
	}
	if stats.ExtraDocuments != total-1 {
		t.Errorf("expected %d extra documents, got %d", total-1, stats.ExtraDocuments)
	}
}

func TestBuild_ChunkIndexesIndependentPointers(t *testing.T) {
	long := strings.Repeat("z", 1200)
	docs, _ := NewBuilder(DefaultOptions()).Build([]domain.Restaurant{testRestaurant(long)})
	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(docs))
	}
	if *docs[0].Metadata.ChunkIndex == *docs[1].Metadata.ChunkIndex {
		t.Error("chunk indexes share state between documents")
	}
}

func TestBuild_ThresholdBoundary(t *testing.T) {
	exactly600 := strings.Repeat("b", 600)
	docs, _ := NewBuilder(DefaultOptions()).Build([]domain.Restaurant{testRestaurant(exactly600)})
	if len(docs) != 1 {
		t.Fatalf("600-char review must not be split, got %d docs", len(docs))
	}
	if docs[0].Metadata.ChunkIndex != nil {
		t.Error("600-char review document must not carry chunk fields")
	}
}
