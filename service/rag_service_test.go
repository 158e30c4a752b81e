package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abhishek-Jose7/CA-alternative/models"
)

// mockEmbedder lets each test dictate embedding behavior per call.
type mockEmbedder struct {
	embedFunc      func(ctx context.Context, text string) ([]float64, error)
	embedBatchFunc func(ctx context.Context, texts []string) ([][]float64, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	return m.embedFunc(ctx, text)
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	return m.embedBatchFunc(ctx, texts)
}

func testKnowledgeBase() []models.KnowledgeDoc {
	return []models.KnowledgeDoc{
		{ID: "GST-101", Title: "Doc A", Content: "alpha", Guidance: "do alpha"},
		{ID: "GST-102", Title: "Doc B", Content: "beta", Guidance: "do beta"},
		{ID: "GST-103", Title: "Doc C", Content: "gamma", Guidance: "do gamma"},
	}
}

// axisEmbedder maps each known text to a distinct basis vector so cosine
// similarity becomes an exact lookup.
func axisEmbedder(queryVec []float64) *mockEmbedder {
	axes := map[string][]float64{
		"alpha": {1, 0, 0},
		"beta":  {0, 1, 0},
		"gamma": {0, 0, 1},
	}
	return &mockEmbedder{
		embedFunc: func(ctx context.Context, text string) ([]float64, error) {
			return queryVec, nil
		},
		embedBatchFunc: func(ctx context.Context, texts []string) ([][]float64, error) {
			vectors := make([][]float64, len(texts))
			for i, t := range texts {
				vectors[i] = axes[t]
			}
			return vectors, nil
		},
	}
}

func TestQueryKnowledgeBase_BestMatchFirst(t *testing.T) {
	// Query vector closest to beta, some overlap with alpha
	embedder := axisEmbedder([]float64{0.5, 0.8, 0})
	svc := NewRAGService(
		RAGWithEmbedder(embedder),
		RAGWithKnowledgeBase(testKnowledgeBase()),
		RAGWithTopK(2),
		RAGWithMinScore(0.3),
	)
	require.NoError(t, svc.Init(context.Background()))

	matches := svc.QueryKnowledgeBase(context.Background(), "anything", 0)
	require.Len(t, matches, 2)
	assert.Equal(t, "GST-102", matches[0].Doc.ID)
	assert.Equal(t, "GST-101", matches[1].Doc.ID)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestQueryKnowledgeBase_ConfidenceFloor(t *testing.T) {
	// Equidistant from all three axes: similarity ~0.577 each, below 0.6
	embedder := axisEmbedder([]float64{1, 1, 1})
	svc := NewRAGService(
		RAGWithEmbedder(embedder),
		RAGWithKnowledgeBase(testKnowledgeBase()),
	)
	require.NoError(t, svc.Init(context.Background()))

	matches := svc.QueryKnowledgeBase(context.Background(), "anything", 3)
	assert.Nil(t, matches)
}

func TestQueryKnowledgeBase_TopKCap(t *testing.T) {
	embedder := axisEmbedder([]float64{0.9, 0.8, 0.7})
	svc := NewRAGService(
		RAGWithEmbedder(embedder),
		RAGWithKnowledgeBase(testKnowledgeBase()),
		RAGWithMinScore(0.1),
	)
	require.NoError(t, svc.Init(context.Background()))

	// Default topK is 1
	matches := svc.QueryKnowledgeBase(context.Background(), "anything", 0)
	require.Len(t, matches, 1)
	assert.Equal(t, "GST-101", matches[0].Doc.ID)

	// Explicit topK larger than the corpus returns everything above the floor
	matches = svc.QueryKnowledgeBase(context.Background(), "anything", 10)
	assert.Len(t, matches, 3)
}

func TestQueryKnowledgeBase_EmbedFailureIsSilent(t *testing.T) {
	calls := 0
	embedder := &mockEmbedder{
		embedFunc: func(ctx context.Context, text string) ([]float64, error) {
			calls++
			return nil, errors.New("embedding service down")
		},
		embedBatchFunc: func(ctx context.Context, texts []string) ([][]float64, error) {
			return [][]float64{{1, 0}, {0, 1}, {1, 1}}, nil
		},
	}
	svc := NewRAGService(
		RAGWithEmbedder(embedder),
		RAGWithKnowledgeBase(testKnowledgeBase()),
	)
	require.NoError(t, svc.Init(context.Background()))

	matches := svc.QueryKnowledgeBase(context.Background(), "anything", 1)
	assert.Nil(t, matches)
	assert.Equal(t, 1, calls)
}

func TestQueryKnowledgeBase_UninitializedCache(t *testing.T) {
	embedder := &mockEmbedder{
		embedFunc: func(ctx context.Context, text string) ([]float64, error) {
			t.Fatal("query embedding should never run with an empty cache")
			return nil, nil
		},
		embedBatchFunc: func(ctx context.Context, texts []string) ([][]float64, error) {
			return nil, errors.New("startup failure")
		},
	}
	svc := NewRAGService(
		RAGWithEmbedder(embedder),
		RAGWithKnowledgeBase(testKnowledgeBase()),
	)
	// Init failure leaves the cache empty but is non-fatal for queries
	assert.Error(t, svc.Init(context.Background()))

	matches := svc.QueryKnowledgeBase(context.Background(), "anything", 1)
	assert.Nil(t, matches)
}

func TestQueryKnowledgeBase_NoEmbedder(t *testing.T) {
	svc := NewRAGService(RAGWithKnowledgeBase(testKnowledgeBase()))
	require.NoError(t, svc.Init(context.Background()))
	assert.Nil(t, svc.QueryKnowledgeBase(context.Background(), "anything", 1))
}

func TestDefaultKnowledgeBase(t *testing.T) {
	docs := defaultKnowledgeBase()
	require.Len(t, docs, 4)
	for _, doc := range docs {
		assert.NotEmpty(t, doc.ID)
		assert.NotEmpty(t, doc.Content)
		assert.NotEmpty(t, doc.Guidance)
	}
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float64{1, 2, 3}, []float64{2, 4, 6}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float64{1, 0}, []float64{-1, 0}), 1e-9)

	// Degenerate inputs score 0 rather than NaN
	assert.Equal(t, 0.0, cosineSimilarity([]float64{0, 0}, []float64{1, 1}))
	assert.Equal(t, 0.0, cosineSimilarity([]float64{1}, []float64{1, 2}))
	assert.Equal(t, 0.0, cosineSimilarity(nil, nil))
}
