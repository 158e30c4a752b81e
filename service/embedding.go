package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"
)

// Embedder turns text into dense vectors. The production implementation calls
// the Gemini embedding API; tests substitute a fake.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

const (
	embeddingAPI      = "https://generativelanguage.googleapis.com/v1beta/models/gemini-embedding-001:embedContent"
	batchEmbeddingAPI = "https://generativelanguage.googleapis.com/v1beta/models/gemini-embedding-001:batchEmbedContents"
	embeddingDims     = 768
	maxRetries        = 3
	initialBackoff    = time.Second
)

// EmbeddingRequest represents an embedding API request
type EmbeddingRequest struct {
	Model                string       `json:"model"`
	Content              ContentInput `json:"content"`
	TaskType             string       `json:"task_type,omitempty"`
	OutputDimensionality int          `json:"output_dimensionality,omitempty"`
}

// ContentInput represents content for embedding
type ContentInput struct {
	Parts []PartInput `json:"parts"`
}

// PartInput represents a part of content
type PartInput struct {
	Text string `json:"text"`
}

// EmbeddingResponse represents a single embedding API response
type EmbeddingResponse struct {
	Embedding EmbeddingData `json:"embedding"`
}

// EmbeddingData contains the embedding values
type EmbeddingData struct {
	Values []float64 `json:"values"`
}

// BatchEmbeddingRequest represents a batch embedding API request
type BatchEmbeddingRequest struct {
	Requests []EmbeddingRequest `json:"requests"`
}

// BatchEmbeddingResponse represents a batch embedding API response.
// The batch API returns values directly, without the nested "embedding" key.
type BatchEmbeddingResponse struct {
	Embeddings []EmbeddingData `json:"embeddings"`
}

// GeminiEmbedder implements Embedder against the Gemini embedding REST API
type GeminiEmbedder struct {
	apiKey     string
	httpClient *http.Client
}

// NewGeminiEmbedder creates an embedder using the given API key
func NewGeminiEmbedder(apiKey string) *GeminiEmbedder {
	return &GeminiEmbedder{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Embed generates a query embedding for a single text
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	reqBody := EmbeddingRequest{
		Model: "models/gemini-embedding-001",
		Content: ContentInput{
			Parts: []PartInput{{Text: text}},
		},
		TaskType:             "RETRIEVAL_QUERY",
		OutputDimensionality: embeddingDims,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var apiResp EmbeddingResponse
	if err := e.post(ctx, embeddingAPI, jsonData, &apiResp); err != nil {
		return nil, err
	}

	return normalizeVector(apiResp.Embedding.Values), nil
}

// EmbedBatch generates document embeddings for multiple texts in one call
func (e *GeminiEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	batch := BatchEmbeddingRequest{Requests: make([]EmbeddingRequest, 0, len(texts))}
	for _, text := range texts {
		batch.Requests = append(batch.Requests, EmbeddingRequest{
			Model: "models/gemini-embedding-001",
			Content: ContentInput{
				Parts: []PartInput{{Text: text}},
			},
			TaskType:             "RETRIEVAL_DOCUMENT",
			OutputDimensionality: embeddingDims,
		})
	}

	jsonData, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal batch request: %w", err)
	}

	var apiResp BatchEmbeddingResponse
	if err := e.post(ctx, batchEmbeddingAPI, jsonData, &apiResp); err != nil {
		return nil, err
	}

	if len(apiResp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d embeddings", len(texts), len(apiResp.Embeddings))
	}

	vectors := make([][]float64, len(apiResp.Embeddings))
	for i, emb := range apiResp.Embeddings {
		vectors[i] = normalizeVector(emb.Values)
	}
	return vectors, nil
}

// post sends a request with retry and exponential backoff, decoding the
// response into out. 400/401 responses are not retried.
func (e *GeminiEmbedder) post(ctx context.Context, url string, body []byte, out interface{}) error {
	if e.apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY not set")
	}

	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", e.apiKey)

		resp, err := e.httpClient.Do(req)
		if err != nil {
			if attempt == maxRetries-1 {
				return fmt.Errorf("failed to send request after %d attempts: %w", maxRetries, err)
			}
			continue
		}

		if resp.StatusCode == http.StatusOK {
			err = json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				if attempt == maxRetries-1 {
					return fmt.Errorf("failed to decode response: %w", err)
				}
				continue
			}
			return nil
		}

		resp.Body.Close()

		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("API error: %d", resp.StatusCode)
		}

		if attempt == maxRetries-1 {
			return fmt.Errorf("API error after %d attempts: %d", maxRetries, resp.StatusCode)
		}
	}

	return ErrEmbeddingFailed
}

// normalizeVector scales a vector to unit length. Zero vectors pass through.
func normalizeVector(v []float64) []float64 {
	norm := 0.0
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range v {
			v[i] /= norm
		}
	}
	return v
}
