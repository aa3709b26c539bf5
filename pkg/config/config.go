// Package config holds every tunable of the pipeline in one
// configuration-with-defaults structure. Each stage command loads it once;
// no stage re-derives a default at the point of use.
package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// Paths are the fixed relative file locations handed between stages.
type Paths struct {
	BlogFile      string `yaml:"blog_file"`
	ManualFile    string `yaml:"manual_file"`
	ZomatoFile    string `yaml:"zomato_file"`
	CombinedFile  string `yaml:"combined_file"`
	CleanedFile   string `yaml:"cleaned_file"`
	DocumentsFile string `yaml:"documents_file"`
	ReportFile    string `yaml:"report_file"`
}

// ScraperConfig configures the blog collector.
type ScraperConfig struct {
	UserAgent    string `yaml:"user_agent"`
	DelayMinSecs int    `yaml:"delay_min_secs"`
	DelayMaxSecs int    `yaml:"delay_max_secs"`
	TimeoutSecs  int    `yaml:"timeout_secs"`
	MaxRetries   int    `yaml:"max_retries"`
}

// CleanerConfig configures review validation and deduplication. The
// thresholds and phrase list are dataset heuristics, not universal truths;
// they are configurable for exactly that reason.
type CleanerConfig struct {
	MinChars       int      `yaml:"min_chars"`
	MinWords       int      `yaml:"min_words"`
	GenericPhrases []string `yaml:"generic_phrases"`
	FingerprintLen int      `yaml:"fingerprint_len"`
}

// ChunkerConfig configures long-review splitting.
type ChunkerConfig struct {
	ChunkSize      int `yaml:"chunk_size"`
	ChunkOverlap   int `yaml:"chunk_overlap"`
	SplitThreshold int `yaml:"split_threshold"`
}

// EmbedderConfig configures the Ollama embedding client. Dimensions is a
// contract shared by the indexer and the retriever; changing the model
// between build and query time breaks retrieval.
type EmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	Dimensions  int    `yaml:"dimensions"`
	BatchSize   int    `yaml:"batch_size"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// QdrantConfig configures the vector index connection.
type QdrantConfig struct {
	Addr       string `yaml:"addr"`
	Collection string `yaml:"collection"`
}

// RetrieverConfig configures query-time search.
type RetrieverConfig struct {
	TopK            int     `yaml:"top_k"`
	FetchMultiplier int     `yaml:"fetch_multiplier"`
	Lambda          float64 `yaml:"lambda"`
}

// LLMConfig configures the answer-generation model.
type LLMConfig struct {
	BaseURL           string  `yaml:"base_url"`
	Model             string  `yaml:"model"`
	Temperature       float64 `yaml:"temperature"`
	MaxTokens         int     `yaml:"max_tokens"`
	APIKeyEnv         string  `yaml:"api_key_env"`
	RequestsPerMinute int     `yaml:"requests_per_minute"`
	TimeoutSecs       int     `yaml:"timeout_secs"`
}

// Config is the root configuration.
type Config struct {
	Paths     Paths           `yaml:"paths"`
	Scraper   ScraperConfig   `yaml:"scraper"`
	Cleaner   CleanerConfig   `yaml:"cleaner"`
	Chunker   ChunkerConfig   `yaml:"chunker"`
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Qdrant    QdrantConfig    `yaml:"qdrant"`
	Retriever RetrieverConfig `yaml:"retriever"`
	LLM       LLMConfig       `yaml:"llm"`
}

// DefaultPath is where stage commands look for the config file.
const DefaultPath = "config.yaml"

// Load reads a config from path. A missing file yields the defaults; a
// present file has defaults applied to any field left unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

// Default returns the reference configuration.
func Default() *Config {
	return &Config{
		Paths: Paths{
			BlogFile:      "data/raw/blog_reviews.json",
			ManualFile:    "data/raw/manual_collection.json",
			ZomatoFile:    "data/raw/zomato_adapted.json",
			CombinedFile:  "data/processed/final_dataset.json",
			CleanedFile:   "data/processed/cleaned_dataset.json",
			DocumentsFile: "data/processed/documents.json",
			ReportFile:    "data/vector_db/build_report.json",
		},
		Scraper: ScraperConfig{
			UserAgent:    "Mozilla/5.0 (compatible; RasoiBot/1.0; educational project)",
			DelayMinSecs: 2,
			DelayMaxSecs: 4,
			TimeoutSecs:  15,
			MaxRetries:   3,
		},
		Cleaner: CleanerConfig{
			MinChars:       30,
			MinWords:       5,
			GenericPhrases: []string{"good", "nice", "ok", "fine", "average"},
			FingerprintLen: 100,
		},
		Chunker: ChunkerConfig{
			ChunkSize:      500,
			ChunkOverlap:   50,
			SplitThreshold: 600,
		},
		Embedder: EmbedderConfig{
			BaseURL:     "http://localhost:11434",
			Model:       "all-minilm",
			Dimensions:  384,
			BatchSize:   32,
			TimeoutSecs: 60,
		},
		Qdrant: QdrantConfig{
			Addr:       "localhost:6334",
			Collection: "jaisalmer_reviews",
		},
		Retriever: RetrieverConfig{
			TopK:            5,
			FetchMultiplier: 4,
			Lambda:          0.5,
		},
		LLM: LLMConfig{
			BaseURL:           "https://api.groq.com/openai/v1",
			Model:             "llama-3.3-70b-versatile",
			Temperature:       0.3,
			MaxTokens:         1000,
			APIKeyEnv:         "GROQ_API_KEY",
			RequestsPerMinute: 30,
			TimeoutSecs:       60,
		},
	}
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Cleaner.MinChars == 0 {
		cfg.Cleaner.MinChars = def.Cleaner.MinChars
	}
	if cfg.Cleaner.MinWords == 0 {
		cfg.Cleaner.MinWords = def.Cleaner.MinWords
	}
	if len(cfg.Cleaner.GenericPhrases) == 0 {
		cfg.Cleaner.GenericPhrases = def.Cleaner.GenericPhrases
	}
	if cfg.Cleaner.FingerprintLen == 0 {
		cfg.Cleaner.FingerprintLen = def.Cleaner.FingerprintLen
	}
	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker.ChunkSize = def.Chunker.ChunkSize
	}
	if cfg.Chunker.ChunkOverlap == 0 {
		cfg.Chunker.ChunkOverlap = def.Chunker.ChunkOverlap
	}
	if cfg.Chunker.SplitThreshold == 0 {
		cfg.Chunker.SplitThreshold = def.Chunker.SplitThreshold
	}
	if cfg.Embedder.BaseURL == "" {
		cfg.Embedder.BaseURL = def.Embedder.BaseURL
	}
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = def.Embedder.Model
	}
	if cfg.Embedder.Dimensions == 0 {
		cfg.Embedder.Dimensions = def.Embedder.Dimensions
	}
	if cfg.Embedder.BatchSize == 0 {
		cfg.Embedder.BatchSize = def.Embedder.BatchSize
	}
	if cfg.Embedder.TimeoutSecs == 0 {
		cfg.Embedder.TimeoutSecs = def.Embedder.TimeoutSecs
	}
	if cfg.Qdrant.Addr == "" {
		cfg.Qdrant.Addr = def.Qdrant.Addr
	}
	if cfg.Qdrant.Collection == "" {
		cfg.Qdrant.Collection = def.Qdrant.Collection
	}
	if cfg.Retriever.TopK == 0 {
		cfg.Retriever.TopK = def.Retriever.TopK
	}
	if cfg.Retriever.FetchMultiplier == 0 {
		cfg.Retriever.FetchMultiplier = def.Retriever.FetchMultiplier
	}
	if cfg.Retriever.Lambda == 0 {
		cfg.Retriever.Lambda = def.Retriever.Lambda
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = def.LLM.BaseURL
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = def.LLM.Model
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = def.LLM.MaxTokens
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = def.LLM.APIKeyEnv
	}
	if cfg.LLM.RequestsPerMinute == 0 {
		cfg.LLM.RequestsPerMinute = def.LLM.RequestsPerMinute
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = def.LLM.TimeoutSecs
	}
	if cfg.Scraper.UserAgent == "" {
		cfg.Scraper.UserAgent = def.Scraper.UserAgent
	}
	if cfg.Scraper.TimeoutSecs == 0 {
		cfg.Scraper.TimeoutSecs = def.Scraper.TimeoutSecs
	}
	if cfg.Scraper.MaxRetries == 0 {
		cfg.Scraper.MaxRetries = def.Scraper.MaxRetries
	}
	if cfg.Scraper.DelayMinSecs == 0 {
		cfg.Scraper.DelayMinSecs = def.Scraper.DelayMinSecs
	}
	if cfg.Scraper.DelayMaxSecs == 0 {
		cfg.Scraper.DelayMaxSecs = def.Scraper.DelayMaxSecs
	}
	if cfg.Paths.BlogFile == "" {
		cfg.Paths = def.Paths
	}
}
