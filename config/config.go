package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the pipeline.
type Config struct {
	Chunking    ChunkingConfig    `yaml:"chunking"`
	Quality     QualityConfig     `yaml:"quality"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Keyword     KeywordConfig     `yaml:"keyword"`
	Rerank      RerankConfig      `yaml:"rerank"`
	Retrieve    RetrieveConfig    `yaml:"retrieve"`
	Retry       RetryConfig       `yaml:"retry"`
	Breaker     BreakerConfig     `yaml:"breaker"`
	Cache       CacheConfig       `yaml:"cache"`
	Ingest      IngestConfig      `yaml:"ingest"`
}

// ChunkingConfig holds chunking defaults, overridable per ingestion call.
type ChunkingConfig struct {
	Strategy string `yaml:"strategy"` // "fixed", "sentence", "paragraph", "semantic"
	MaxSize  int    `yaml:"max_size"` // tokens
	MinSize  int    `yaml:"min_size"`
	Overlap  int    `yaml:"overlap"`
}

// QualityConfig holds the scoring thresholds and component weights.
type QualityConfig struct {
	Minimum      float64        `yaml:"minimum"`     // gate for indexing
	Recommended  float64        `yaml:"recommended"` // triggers recommendations below this
	Premium      float64        `yaml:"premium"`
	MinWordCount int            `yaml:"min_word_count"`
	Weights      QualityWeights `yaml:"weights"`
}

// QualityWeights are the composite-score component weights.
type QualityWeights struct {
	Readability  float64 `yaml:"readability"`
	Coherence    float64 `yaml:"coherence"`
	Completeness float64 `yaml:"completeness"`
	Formatting   float64 `yaml:"formatting"`
}

// EmbeddingConfig holds embedding service configuration.
type EmbeddingConfig struct {
	Provider    string `yaml:"provider"`    // "openai", "mock"
	Model       string `yaml:"model"`       // e.g. "text-embedding-3-small"
	APIKeyEnv   string `yaml:"api_key_env"` // environment variable for the API key
	BaseURL     string `yaml:"base_url"`    // empty for the provider default
	Dimension   int    `yaml:"dimension"`   // 0 uses the model's known dimension
	BatchSize   int    `yaml:"batch_size"`
	Concurrency int    `yaml:"concurrency"`
}

// VectorStoreConfig selects and configures the vector store.
type VectorStoreConfig struct {
	Provider   string `yaml:"provider"` // "bolt", "qdrant", "memory"
	URL        string `yaml:"url"`
	Collection string `yaml:"collection"`
	APIKeyEnv  string `yaml:"api_key_env"`
	Distance   string `yaml:"distance"` // "cosine", "dot", "euclidean"
	Path       string `yaml:"path"`     // bolt file, empty for the data dir default
}

// KeywordConfig configures the keyword index. An empty path keeps the index
// in memory.
type KeywordConfig struct {
	Path string `yaml:"path"`
}

// RerankConfig configures the reranking stage.
type RerankConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Provider  string `yaml:"provider"` // "cohere", "lexical"
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	BaseURL   string `yaml:"base_url"`
}

// RetrieveConfig holds retrieval defaults.
type RetrieveConfig struct {
	TopK       int     `yaml:"top_k"`
	MinQuality float64 `yaml:"min_quality"` // 0 = disabled
}

// RetryConfig bounds retries against external services.
type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
	BaseDelayMS int `yaml:"base_delay_ms"`
	MaxDelayMS  int `yaml:"max_delay_ms"`
}

// BreakerConfig configures the embedding circuit breaker. Threshold 0
// disables it.
type BreakerConfig struct {
	Threshold       int `yaml:"threshold"`
	CooldownSeconds int `yaml:"cooldown_seconds"`
}

// CacheConfig configures the retrieval query cache.
type CacheConfig struct {
	Enabled    bool `yaml:"enabled"`
	MaxSize    int  `yaml:"max_size"`
	TTLSeconds int  `yaml:"ttl_seconds"`
}

// IngestConfig holds multi-document ingestion settings and the CLI's file
// selection globs.
type IngestConfig struct {
	Concurrency int      `yaml:"concurrency"`
	Includes    []string `yaml:"includes"`
	Excludes    []string `yaml:"excludes"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Chunking: ChunkingConfig{
			Strategy: "paragraph",
			MaxSize:  1000,
			MinSize:  100,
			Overlap:  50,
		},
		Quality: QualityConfig{
			Minimum:      50,
			Recommended:  70,
			Premium:      85,
			MinWordCount: 100,
			Weights: QualityWeights{
				Readability:  0.3,
				Coherence:    0.3,
				Completeness: 0.2,
				Formatting:   0.2,
			},
		},
		Embedding: EmbeddingConfig{
			Provider:    "mock",
			Model:       "text-embedding-3-small",
			APIKeyEnv:   "OPENAI_API_KEY",
			BatchSize:   64,
			Concurrency: 5,
		},
		VectorStore: VectorStoreConfig{
			Provider:   "bolt",
			Collection: "chunks",
			APIKeyEnv:  "QDRANT_API_KEY",
			Distance:   "cosine",
		},
		Rerank: RerankConfig{
			Enabled:   false,
			Provider:  "lexical",
			APIKeyEnv: "COHERE_API_KEY",
		},
		Retrieve: RetrieveConfig{
			TopK: 10,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelayMS: 500,
			MaxDelayMS:  30000,
		},
		Breaker: BreakerConfig{
			Threshold:       5,
			CooldownSeconds: 30,
		},
		Cache: CacheConfig{
			Enabled:    true,
			MaxSize:    100,
			TTLSeconds: 300,
		},
		Ingest: IngestConfig{
			Concurrency: 4,
			Includes:    []string{"**/*.md", "**/*.txt", "**/*.html"},
			Excludes:    []string{"**/node_modules/**", "**/.git/**"},
		},
	}
}

// Validate rejects structurally broken configuration before any work starts.
func (c *Config) Validate() error {
	switch c.Chunking.Strategy {
	case "fixed", "sentence", "paragraph", "semantic":
	default:
		return fmt.Errorf("chunking.strategy: unknown strategy %q", c.Chunking.Strategy)
	}
	if c.Chunking.MaxSize <= 0 {
		return fmt.Errorf("chunking.max_size: must be positive")
	}
	if c.Chunking.MinSize < 0 || c.Chunking.MinSize > c.Chunking.MaxSize {
		return fmt.Errorf("chunking.min_size: must be in [0, max_size]")
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.MaxSize {
		return fmt.Errorf("chunking.overlap: must be in [0, max_size)")
	}

	q := c.Quality
	if q.Minimum < 0 || q.Recommended < q.Minimum || q.Premium < q.Recommended || q.Premium > 100 {
		return fmt.Errorf("quality: thresholds must satisfy 0 <= minimum <= recommended <= premium <= 100")
	}
	if q.Weights.Readability+q.Weights.Coherence+q.Weights.Completeness+q.Weights.Formatting <= 0 {
		return fmt.Errorf("quality.weights: must sum to a positive value")
	}

	if c.Embedding.BatchSize <= 0 {
		return fmt.Errorf("embedding.batch_size: must be positive")
	}
	if c.Embedding.Concurrency <= 0 {
		return fmt.Errorf("embedding.concurrency: must be positive")
	}
	switch c.Embedding.Provider {
	case "openai", "mock":
	default:
		return fmt.Errorf("embedding.provider: unknown provider %q", c.Embedding.Provider)
	}

	switch c.VectorStore.Provider {
	case "bolt", "qdrant", "memory":
	default:
		return fmt.Errorf("vector_store.provider: unknown provider %q", c.VectorStore.Provider)
	}
	switch c.VectorStore.Distance {
	case "cosine", "dot", "euclidean":
	default:
		return fmt.Errorf("vector_store.distance: unknown metric %q", c.VectorStore.Distance)
	}
	if c.VectorStore.Provider == "qdrant" && c.VectorStore.URL == "" {
		return fmt.Errorf("vector_store.url: required for the qdrant provider")
	}

	switch c.Rerank.Provider {
	case "cohere", "lexical":
	default:
		return fmt.Errorf("rerank.provider: unknown provider %q", c.Rerank.Provider)
	}

	if c.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("retry.max_attempts: must be positive")
	}
	if c.Retrieve.TopK <= 0 {
		return fmt.Errorf("retrieve.top_k: must be positive")
	}
	return nil
}

// Load loads configuration from a YAML file, falling back to defaults when
// the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for ragcore.yaml,
// then .ragcore/config.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "ragcore.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".ragcore", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// VectorDBPath returns the default local vector store file.
func VectorDBPath(dir string) string {
	return filepath.Join(dir, ".ragcore", "vectors.db")
}

// KeywordIndexPath returns the default keyword index directory.
func KeywordIndexPath(dir string) string {
	return filepath.Join(dir, ".ragcore", "keyword.bleve")
}

// EnsureDataDir ensures the .ragcore directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".ragcore"), 0755)
}
