// Package chunk splits long reviews into bounded, overlapping pieces and
// builds the flat document list the indexer consumes. Every document
// carries its restaurant's metadata so a retrieved chunk is meaningful on
// its own.
package chunk

// Splitter cuts text into chunks of at most Size characters with Overlap
// characters shared between consecutive chunks. Cut points prefer, in
// order: paragraph break, line break, sentence end, word boundary, and
// finally a hard character cut. Chunks are exact substrings of the input.
type Splitter struct {
	size    int
	overlap int
}

// NewSplitter creates a Splitter. Overlap is clamped below size to
// guarantee forward progress.
func NewSplitter(size, overlap int) *Splitter {
	if size <= 0 {
		size = 500
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size - 1
	}
	return &Splitter{size: size, overlap: overlap}
}

// Split returns the chunks of text. Text no longer than the chunk size
// comes back as a single chunk.
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(runes) <= s.size {
		if len(runes) == 0 {
			return nil
		}
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + s.size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		cut := s.findCut(runes, start, end)
		chunks = append(chunks, string(runes[start:cut]))

		next := cut - s.overlap
		if next <= start {
			next = cut
		}
		start = next
	}
	return chunks
}

// findCut picks the cut position in (start, end], scanning backwards for
// the highest-priority boundary inside the window.
func (s *Splitter) findCut(runes []rune, start, end int) int {
	// Paragraph break.
	for i := end - 2; i > start; i-- {
		if runes[i] == '\n' && runes[i+1] == '\n' {
			return i + 2
		}
	}
	// Line break.
	for i := end - 1; i > start; i-- {
		if runes[i] == '\n' {
			return i + 1
		}
	}
	// Sentence end.
	for i := end - 2; i > start; i-- {
		if runes[i] == '.' && runes[i+1] == ' ' {
			return i + 2
		}
	}
	// Word boundary.
	for i := end - 1; i > start; i-- {
		if runes[i] == ' ' {
			return i + 1
		}
	}
	// Hard cut.
	return end
}
