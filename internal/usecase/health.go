package usecase

import (
	"context"
	"sync"
	"time"

	"ragcore/internal/domain"
	"ragcore/internal/port"
)

// healthTimeout bounds each individual dependency probe.
const healthTimeout = 5 * time.Second

// HealthChecker probes every external service the core talks to.
type HealthChecker struct {
	embedder port.Embedder
	vector   port.VectorStore
	keyword  port.KeywordIndex
	reranker port.Reranker
}

// NewHealthChecker creates a HealthChecker. Any dependency may be nil and
// reports as not configured.
func NewHealthChecker(embedder port.Embedder, vector port.VectorStore, keyword port.KeywordIndex, reranker port.Reranker) *HealthChecker {
	return &HealthChecker{
		embedder: embedder,
		vector:   vector,
		keyword:  keyword,
		reranker: reranker,
	}
}

// Check probes all services in parallel and never returns an error: state is
// reported per service.
func (h *HealthChecker) Check(ctx context.Context) domain.HealthReport {
	report := domain.HealthReport{
		EmbeddingService: domain.StateNotConfigured,
		VectorStore:      domain.StateNotConfigured,
		KeywordIndex:     domain.StateNotConfigured,
		RerankService:    domain.StateNotConfigured,
	}

	var wg sync.WaitGroup
	probe := func(state *domain.ServiceState, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			probeCtx, cancel := context.WithTimeout(ctx, healthTimeout)
			defer cancel()
			if err := fn(probeCtx); err != nil {
				*state = domain.StateUnavailable
				return
			}
			*state = domain.StateOK
		}()
	}

	if h.embedder != nil {
		probe(&report.EmbeddingService, func(ctx context.Context) error {
			_, err := h.embedder.EmbedBatch(ctx, []string{"ping"})
			return err
		})
	}
	if h.vector != nil {
		probe(&report.VectorStore, h.vector.Ping)
	}
	if h.keyword != nil {
		probe(&report.KeywordIndex, h.keyword.Ping)
	}
	if h.reranker != nil {
		probe(&report.RerankService, func(ctx context.Context) error {
			_, err := h.reranker.Rerank(ctx, "ping", []string{"ping"})
			return err
		})
	}

	wg.Wait()
	return report
}
