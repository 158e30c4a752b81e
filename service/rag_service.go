package service

import (
	"context"
	"log"
	"math"
	"sort"
	"sync"

	"github.com/Abhishek-Jose7/CA-alternative/models"
)

// RAGService answers "which circular is relevant to this notice" by cosine
// similarity over a small, immutable in-memory knowledge base. Documents are
// embedded once at startup; queries re-use the cached vectors. Retrieval is
// strictly best-effort: if the embedding collaborator is down or the cache is
// empty, callers get no guidance rather than an error.
type RAGService struct {
	embedder      Embedder
	knowledgeBase []models.KnowledgeDoc
	topK          int
	minScore      float64

	mu         sync.RWMutex // guards embeddings during Init; read-only afterwards
	embeddings [][]float64
}

// RAGServiceOption is a functional option for RAGService
type RAGServiceOption func(*RAGService)

// RAGWithEmbedder sets the embedding collaborator
func RAGWithEmbedder(e Embedder) RAGServiceOption {
	return func(s *RAGService) {
		s.embedder = e
	}
}

// RAGWithKnowledgeBase replaces the default knowledge base
func RAGWithKnowledgeBase(docs []models.KnowledgeDoc) RAGServiceOption {
	return func(s *RAGService) {
		s.knowledgeBase = docs
	}
}

// RAGWithTopK sets the default number of matches returned
func RAGWithTopK(k int) RAGServiceOption {
	return func(s *RAGService) {
		s.topK = k
	}
}

// RAGWithMinScore sets the similarity floor below which a match is treated as
// "no relevant guidance"
func RAGWithMinScore(score float64) RAGServiceOption {
	return func(s *RAGService) {
		s.minScore = score
	}
}

// NewRAGService creates a retrieval service with the curated GST knowledge
// base, topK=1 and a 0.6 confidence floor unless overridden.
func NewRAGService(opts ...RAGServiceOption) *RAGService {
	s := &RAGService{
		knowledgeBase: defaultKnowledgeBase(),
		topK:          1,
		minScore:      0.6,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init embeds the knowledge base once. A failure leaves the cache empty, which
// downgrades every later query to "no guidance" instead of failing the server.
func (s *RAGService) Init(ctx context.Context) error {
	if s.embedder == nil || len(s.knowledgeBase) == 0 {
		return nil
	}

	texts := make([]string, len(s.knowledgeBase))
	for i, doc := range s.knowledgeBase {
		texts[i] = doc.Content
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		log.Printf("Warning: Failed to initialize knowledge base embeddings: %v", err)
		return err
	}

	s.mu.Lock()
	s.embeddings = vectors
	s.mu.Unlock()
	return nil
}

// QueryKnowledgeBase embeds the query and returns up to topK matches above the
// confidence floor, best first. topK <= 0 uses the configured default. A nil
// result means no relevant guidance; that outcome is silent and non-fatal.
func (s *RAGService) QueryKnowledgeBase(ctx context.Context, text string, topK int) []models.GuidanceMatch {
	if topK <= 0 {
		topK = s.topK
	}

	s.mu.RLock()
	embeddings := s.embeddings
	s.mu.RUnlock()

	if s.embedder == nil || len(embeddings) == 0 {
		return nil
	}

	queryVec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		log.Printf("Warning: RAG query embedding failed: %v", err)
		return nil
	}

	matches := make([]models.GuidanceMatch, 0, len(embeddings))
	for i, docVec := range embeddings {
		score := cosineSimilarity(queryVec, docVec)
		if score > s.minScore {
			matches = append(matches, models.GuidanceMatch{
				Doc:   s.knowledgeBase[i],
				Score: score,
			})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	if len(matches) == 0 {
		return nil
	}
	return matches
}

// cosineSimilarity computes dot(a,b) / (||a||*||b||). Zero-norm vectors have
// undefined similarity and score 0, which the confidence floor excludes.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
