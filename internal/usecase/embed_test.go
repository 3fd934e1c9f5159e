package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragcore/internal/domain"
	"ragcore/internal/retry"
)

func fastPolicy(attempts int) retry.Policy {
	return retry.Policy{
		MaxAttempts: attempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		Retryable:   domain.Retryable,
	}
}

func testChunks(n int) []domain.Chunk {
	chunks := make([]domain.Chunk, n)
	for i := range chunks {
		chunks[i] = domain.Chunk{
			ID:    string(rune('a' + i)),
			Index: i,
			Text:  "chunk text number " + string(rune('a'+i)),
		}
	}
	return chunks
}

func TestEmbedChunksBatchesAll(t *testing.T) {
	embedder := &stubEmbedder{dim: 4}
	be := NewBatchEmbedder(embedder, fastPolicy(1), nil, 2, 2)

	outcome, err := be.EmbedChunks(context.Background(), testChunks(5))
	require.NoError(t, err)
	assert.Empty(t, outcome.Failed)
	assert.Len(t, outcome.Vectors, 5)
	assert.Equal(t, 3, embedder.callCount(), "5 chunks at batch size 2 is 3 calls")
	for _, v := range outcome.Vectors {
		assert.Len(t, v, 4)
	}
}

func TestEmbedChunksIsolatesFailedBatch(t *testing.T) {
	chunks := testChunks(4)
	embedder := &stubEmbedder{dim: 4, failText: chunks[2].Text}
	be := NewBatchEmbedder(embedder, fastPolicy(2), nil, 2, 1)

	outcome, err := be.EmbedChunks(context.Background(), chunks)
	require.NoError(t, err)

	// Batch [c,d] fails, batch [a,b] succeeds.
	assert.ElementsMatch(t, []string{chunks[2].ID, chunks[3].ID}, outcome.Failed)
	assert.Contains(t, outcome.Vectors, chunks[0].ID)
	assert.Contains(t, outcome.Vectors, chunks[1].ID)
	assert.NotContains(t, outcome.Vectors, chunks[2].ID)
}

func TestEmbedChunksRetriesTransientFailure(t *testing.T) {
	embedder := &stubEmbedder{dim: 4, failFirst: 1}
	be := NewBatchEmbedder(embedder, fastPolicy(3), nil, 10, 1)

	outcome, err := be.EmbedChunks(context.Background(), testChunks(3))
	require.NoError(t, err)
	assert.Empty(t, outcome.Failed)
	assert.Len(t, outcome.Vectors, 3)
	assert.Equal(t, 2, embedder.callCount())
}

func TestEmbedChunksBreakerShortCircuits(t *testing.T) {
	embedder := &stubEmbedder{dim: 4, failFirst: 1000}
	breaker := retry.NewBreaker(1, time.Minute)
	be := NewBatchEmbedder(embedder, fastPolicy(1), breaker, 1, 1)

	outcome, err := be.EmbedChunks(context.Background(), testChunks(5))
	require.NoError(t, err)
	assert.Len(t, outcome.Failed, 5)
	assert.Empty(t, outcome.Vectors)
	// The first batch trips the breaker; the rest never reach the service.
	assert.Equal(t, 1, embedder.callCount())
}

func TestEmbedChunksStopsSchedulingOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	embedder := &stubEmbedder{dim: 4}
	be := NewBatchEmbedder(embedder, fastPolicy(1), nil, 1, 1)

	outcome, err := be.EmbedChunks(ctx, testChunks(3))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, outcome.Failed, 3)
	assert.Equal(t, 0, embedder.callCount())
}

func TestEmbedChunksEmptyInput(t *testing.T) {
	be := NewBatchEmbedder(&stubEmbedder{dim: 4}, fastPolicy(1), nil, 2, 2)
	outcome, err := be.EmbedChunks(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, outcome.Vectors)
	assert.Empty(t, outcome.Failed)
}
