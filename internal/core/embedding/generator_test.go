package embedding

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Sectora/internal/models"
)

// fakeProvider returns deterministic vectors derived from the input text
// so tests can verify ordering without a live model.
type fakeProvider struct {
	dim      int
	calls    int
	batches  [][]string
	tasks    []TaskType
	failnext int
	err      error
}

func (f *fakeProvider) EmbedBatch(_ context.Context, texts []string, task TaskType) ([][]float32, error) {
	f.calls++
	f.batches = append(f.batches, texts)
	f.tasks = append(f.tasks, task)
	if f.failnext > 0 {
		f.failnext--
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, f.dim)
		vec[0] = float32(len(text))
		out[i] = vec
	}
	return out, nil
}

func (f *fakeProvider) ModelName() string { return "fake-embed-001" }

func fastRetry(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:   maxRetries,
		InitialDelay: time.Millisecond,
		MaxDelay:     4 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func testChunks(n int) []models.Chunk {
	chunks := make([]models.Chunk, n)
	for i := range chunks {
		chunks[i] = models.Chunk{
			ID:   fmt.Sprintf("chunk-%03d", i),
			Text: fmt.Sprintf("chunk text number %d", i),
		}
	}
	return chunks
}

func TestParseTaskType(t *testing.T) {
	valid := []string{
		"RETRIEVAL_QUERY", "RETRIEVAL_DOCUMENT", "SEMANTIC_SIMILARITY",
		"CLASSIFICATION", "CLUSTERING", "QUESTION_ANSWERING",
		"FACT_VERIFICATION", "CODE_RETRIEVAL_QUERY",
	}
	for _, s := range valid {
		got, err := ParseTaskType(s)
		require.NoError(t, err)
		assert.Equal(t, TaskType(s), got)
	}

	// Case-insensitive with surrounding whitespace.
	got, err := ParseTaskType("  retrieval_document ")
	require.NoError(t, err)
	assert.Equal(t, TaskRetrievalDocument, got)

	for _, s := range []string{"", "SUMMARIZATION", "retrieval"} {
		_, err := ParseTaskType(s)
		require.ErrorIs(t, err, ErrInvalidTaskType, "input %q", s)
	}
}

func TestEmbedPreservesOrder(t *testing.T) {
	p := &fakeProvider{dim: 8}
	g := NewGenerator(p, Config{Dimension: 8, Retry: fastRetry(0)})
	chunks := testChunks(5)

	embs, err := g.Embed(context.Background(), chunks, TaskRetrievalDocument)
	require.NoError(t, err)
	require.Len(t, embs, len(chunks))

	for i, emb := range embs {
		assert.Equal(t, chunks[i].ID, emb.ChunkID)
		assert.Equal(t, float32(len(chunks[i].Text)), emb.Vector[0])
		assert.Equal(t, string(TaskRetrievalDocument), emb.TaskType)
		assert.Equal(t, "fake-embed-001", emb.ModelName)
	}
}

func TestEmbedBatchesBySize(t *testing.T) {
	p := &fakeProvider{dim: 4}
	g := NewGenerator(p, Config{Dimension: 4, BatchSize: 10, Retry: fastRetry(0)})
	chunks := testChunks(25)

	embs, err := g.Embed(context.Background(), chunks, TaskClustering)
	require.NoError(t, err)
	require.Len(t, embs, 25)

	require.Equal(t, 3, p.calls)
	assert.Len(t, p.batches[0], 10)
	assert.Len(t, p.batches[1], 10)
	assert.Len(t, p.batches[2], 5)
	for _, task := range p.tasks {
		assert.Equal(t, TaskClustering, task)
	}
}

func TestEmbedDimensionMismatch(t *testing.T) {
	p := &fakeProvider{dim: 5}
	g := NewGenerator(p, Config{Dimension: 768, Retry: fastRetry(0)})

	embs, err := g.Embed(context.Background(), testChunks(2), TaskRetrievalDocument)
	require.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Nil(t, embs)
}

func TestEmbedInvalidTaskBeforeProviderCall(t *testing.T) {
	p := &fakeProvider{dim: 8}
	g := NewGenerator(p, Config{Dimension: 8, Retry: fastRetry(0)})

	_, err := g.Embed(context.Background(), testChunks(2), TaskType("SUMMARIZATION"))
	require.ErrorIs(t, err, ErrInvalidTaskType)
	assert.Zero(t, p.calls, "provider must not be called for an invalid task type")
}

func TestEmbedRetriesTransientFailure(t *testing.T) {
	p := &fakeProvider{dim: 8, failnext: 2, err: fmt.Errorf("rate limited")}
	g := NewGenerator(p, Config{Dimension: 8, Retry: fastRetry(3)})

	embs, err := g.Embed(context.Background(), testChunks(3), TaskRetrievalQuery)
	require.NoError(t, err)
	assert.Len(t, embs, 3)
	assert.Equal(t, 3, p.calls, "two failures then one success")
}

func TestEmbedExhaustsRetries(t *testing.T) {
	p := &fakeProvider{dim: 8, failnext: 100, err: fmt.Errorf("backend down")}
	g := NewGenerator(p, Config{Dimension: 8, Retry: fastRetry(2)})

	_, err := g.Embed(context.Background(), testChunks(3), TaskRetrievalQuery)
	require.ErrorIs(t, err, ErrEmbeddingFailure)
	assert.Equal(t, 3, p.calls, "initial attempt plus two retries")
}

func TestEmbedEmptyInput(t *testing.T) {
	p := &fakeProvider{dim: 8}
	g := NewGenerator(p, Config{Dimension: 8, Retry: fastRetry(0)})

	embs, err := g.Embed(context.Background(), nil, TaskRetrievalDocument)
	require.NoError(t, err)
	assert.Nil(t, embs)
	assert.Zero(t, p.calls)
}

func TestEmbedContextCancelled(t *testing.T) {
	p := &fakeProvider{dim: 8, failnext: 100, err: fmt.Errorf("slow backend")}
	g := NewGenerator(p, Config{Dimension: 8, Retry: RetryConfig{
		MaxRetries: 5, InitialDelay: time.Hour, MaxDelay: time.Hour, Multiplier: 2,
	}})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := g.Embed(ctx, testChunks(1), TaskRetrievalDocument)
	require.ErrorIs(t, err, context.Canceled)
}
