package cli

import (
	"fmt"
	"os"
	"time"

	"go.etcd.io/bbolt"

	"ragcore/config"
	"ragcore/internal/adapter/cache"
	"ragcore/internal/adapter/chunker"
	"ragcore/internal/adapter/embedding"
	"ragcore/internal/adapter/keyword"
	"ragcore/internal/adapter/normalizer"
	"ragcore/internal/adapter/quality"
	"ragcore/internal/adapter/reranker"
	"ragcore/internal/adapter/vectorstore"
	"ragcore/internal/port"
	"ragcore/internal/retry"
	"ragcore/internal/usecase"
)

// App is the fully wired pipeline behind every command.
type App struct {
	Config   *config.Config
	Ingestor *usecase.Ingestor
	Engine   *usecase.RetrieveEngine
	Manager  *usecase.IndexManager
	Health   *usecase.HealthChecker

	closers []func() error
}

// BuildApp assembles the pipeline from configuration. rootDir anchors the
// default data directory for local stores.
func BuildApp(cfg *config.Config, rootDir string) (*App, error) {
	app := &App{Config: cfg}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	vector, err := app.buildVectorStore(cfg, rootDir)
	if err != nil {
		app.Close()
		return nil, err
	}

	kw, err := buildKeywordIndex(cfg, rootDir)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.closers = append(app.closers, kw.Close)

	rerank, err := buildReranker(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	policy := retry.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   time.Duration(cfg.Retry.BaseDelayMS) * time.Millisecond,
		MaxDelay:    time.Duration(cfg.Retry.MaxDelayMS) * time.Millisecond,
	}
	breaker := retry.NewBreaker(cfg.Breaker.Threshold, time.Duration(cfg.Breaker.CooldownSeconds)*time.Second)

	var queryCache *cache.QueryCache
	if cfg.Cache.Enabled {
		queryCache = cache.NewQueryCache(cfg.Cache.MaxSize, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
	}

	batchEmbedder := usecase.NewBatchEmbedder(embedder, policy, breaker, cfg.Embedding.BatchSize, cfg.Embedding.Concurrency)

	var invalidator usecase.Invalidator
	if queryCache != nil {
		invalidator = queryCache
	}
	app.Manager = usecase.NewIndexManager(vector, kw, policy, embedder.Dimension(), cfg.VectorStore.Distance, cfg.Embedding.BatchSize, invalidator)

	app.Ingestor = usecase.NewIngestor(
		normalizer.New(),
		buildAssessor(cfg),
		chunker.Options{
			MaxSize: cfg.Chunking.MaxSize,
			MinSize: cfg.Chunking.MinSize,
			Overlap: cfg.Chunking.Overlap,
		},
		batchEmbedder,
		app.Manager,
		cfg.Quality.Minimum,
		cfg.Ingest.Concurrency,
	)
	app.Engine = usecase.NewRetrieveEngine(batchEmbedder, vector, kw, rerank, queryCache)
	app.Health = usecase.NewHealthChecker(embedder, vector, kw, rerank)
	return app, nil
}

// Close releases all local resources in reverse order.
func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func buildAssessor(cfg *config.Config) *quality.Assessor {
	return quality.NewAssessor(
		quality.WithWeights(quality.Weights{
			Readability:  cfg.Quality.Weights.Readability,
			Coherence:    cfg.Quality.Weights.Coherence,
			Completeness: cfg.Quality.Weights.Completeness,
			Formatting:   cfg.Quality.Weights.Formatting,
		}),
		quality.WithMinWordCount(cfg.Quality.MinWordCount),
		quality.WithRecommendedThreshold(cfg.Quality.Recommended),
	)
}

func buildEmbedder(cfg *config.Config) (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "openai":
		apiKey := os.Getenv(cfg.Embedding.APIKeyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("embedding API key not set in %s", cfg.Embedding.APIKeyEnv)
		}
		return embedding.NewOpenAIEmbedder(apiKey, cfg.Embedding.Model, cfg.Embedding.BaseURL, cfg.Embedding.Dimension)
	case "mock":
		return embedding.NewMockEmbedder(cfg.Embedding.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
}

func (a *App) buildVectorStore(cfg *config.Config, rootDir string) (port.VectorStore, error) {
	switch cfg.VectorStore.Provider {
	case "qdrant":
		return vectorstore.NewQdrantStore(vectorstore.QdrantConfig{
			URL:        cfg.VectorStore.URL,
			Collection: cfg.VectorStore.Collection,
			APIKey:     os.Getenv(cfg.VectorStore.APIKeyEnv),
		})
	case "bolt":
		path := cfg.VectorStore.Path
		if path == "" {
			if err := config.EnsureDataDir(rootDir); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
			path = config.VectorDBPath(rootDir)
		}
		db, err := bbolt.Open(path, 0600, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to open vector database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		return vectorstore.NewBoltStore(db)
	case "memory":
		return vectorstore.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", cfg.VectorStore.Provider)
	}
}

func buildKeywordIndex(cfg *config.Config, rootDir string) (*keyword.BleveIndex, error) {
	path := cfg.Keyword.Path
	if path == "" && cfg.VectorStore.Provider == "bolt" {
		// Local setups persist the keyword index next to the vector store.
		if err := config.EnsureDataDir(rootDir); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		path = config.KeywordIndexPath(rootDir)
	}
	return keyword.NewBleveIndex(path)
}

func buildReranker(cfg *config.Config) (port.Reranker, error) {
	if !cfg.Rerank.Enabled {
		return nil, nil
	}
	switch cfg.Rerank.Provider {
	case "cohere":
		apiKey := os.Getenv(cfg.Rerank.APIKeyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("rerank API key not set in %s", cfg.Rerank.APIKeyEnv)
		}
		return reranker.NewCohereReranker(apiKey, cfg.Rerank.Model, cfg.Rerank.BaseURL)
	case "lexical":
		return reranker.NewLexicalReranker(), nil
	default:
		return nil, fmt.Errorf("unsupported rerank provider: %s", cfg.Rerank.Provider)
	}
}
