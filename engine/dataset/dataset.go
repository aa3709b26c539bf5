// Package dataset reads and writes the JSON files handed from one pipeline
// stage to the next. Every file carries a top-level metadata object and a
// single primary array (restaurants or documents); loading validates each
// record and fails fast on the first violation.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rasoi-labs/rasoi/engine/domain"
)

// Meta is the metadata envelope written alongside the primary array. Stats
// holds the stage-specific stats block verbatim.
type Meta struct {
	Source           string `json:"source"`
	GeneratedAt      string `json:"generated_at"`
	SourceFile       string `json:"source_file,omitempty"`
	TotalRestaurants int    `json:"total_restaurants,omitempty"`
	TotalReviews     int    `json:"total_reviews,omitempty"`
	TotalDocuments   int    `json:"total_documents,omitempty"`
	Stats            any    `json:"stats,omitempty"`
}

// RestaurantFile is the on-disk shape of collector, combiner and cleaner
// output.
type RestaurantFile struct {
	Metadata    Meta                `json:"metadata"`
	Restaurants []domain.Restaurant `json:"restaurants"`
}

// DocumentFile is the on-disk shape of the document builder output.
type DocumentFile struct {
	Metadata  Meta              `json:"metadata"`
	Documents []domain.Document `json:"documents"`
}

// Timestamp formats t the way every stage stamps its output metadata.
func Timestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// LoadRestaurants reads and validates a restaurant file. Defaults are
// applied before validation so records collected with missing optional
// fields still load.
func LoadRestaurants(path string) (*RestaurantFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}
	var file RestaurantFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("dataset: parse %s: %w", path, err)
	}
	for i := range file.Restaurants {
		domain.StandardDefaults.ApplyRestaurant(&file.Restaurants[i])
		if err := domain.ValidateRestaurant(file.Restaurants[i]); err != nil {
			return nil, fmt.Errorf("dataset: %s: restaurants[%d]: %w", path, i, err)
		}
	}
	return &file, nil
}

// SaveRestaurants writes a restaurant file, creating parent directories as
// needed. Output is a single compact UTF-8 JSON document.
func SaveRestaurants(path string, file *RestaurantFile) error {
	return save(path, file)
}

// LoadDocuments reads and validates a document file.
func LoadDocuments(path string) (*DocumentFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}
	var file DocumentFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("dataset: parse %s: %w", path, err)
	}
	for i, doc := range file.Documents {
		if doc.PageContent == "" {
			return nil, fmt.Errorf("dataset: %s: documents[%d]: page_content is empty", path, i)
		}
	}
	return &file, nil
}

// SaveDocuments writes a document file.
func SaveDocuments(path string, file *DocumentFile) error {
	return save(path, file)
}

func save(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("dataset: mkdir for %s: %w", path, err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("dataset: encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("dataset: write %s: %w", path, err)
	}
	return nil
}
