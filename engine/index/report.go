package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Stats tracks embedding progress for the build report.
type Stats struct {
	TotalDocuments       int     `json:"total_documents"`
	SuccessfulEmbeddings int     `json:"successful_embeddings"`
	FailedEmbeddings     int     `json:"failed_embeddings"`
	EmbeddingTime        float64 `json:"embedding_time"`
}

// Report records the outcome of an index build. It is written after
// every build, failed ones included, so a missing report means the
// builder never ran rather than ran and crashed.
type Report struct {
	CreationDate        string `json:"creation_date"`
	Collection          string `json:"collection"`
	EmbeddingModel      string `json:"embedding_model"`
	EmbeddingDimensions int    `json:"embedding_dimensions"`
	Statistics          Stats  `json:"statistics"`
	Success             bool   `json:"success"`
	Error               string `json:"error,omitempty"`
}

func newReport(collection, model string, dims int) *Report {
	return &Report{
		CreationDate:        time.Now().Format("2006-01-02 15:04:05"),
		Collection:          collection,
		EmbeddingModel:      model,
		EmbeddingDimensions: dims,
	}
}

// Write saves the report as indented JSON, creating parent directories
// as needed.
func (r *Report) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("report dir: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("report marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("report write: %w", err)
	}
	return nil
}
