package service

import (
	"context"
	"fmt"
	"math"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// EmbeddingService wraps an OpenAI-compatible embedding endpoint. The model
// weights are fixed for the life of the process, so the handle is created
// once at startup and shared read-only across requests.
type EmbeddingService struct {
	embedder embeddings.Embedder
	logger   *zap.Logger
}

// NewEmbeddingService creates an embedder against the given host and model.
// "none" is used as the token for local services that skip authentication.
func NewEmbeddingService(host, model string, logger *zap.Logger) (*EmbeddingService, error) {
	client, err := openai.New(
		openai.WithBaseURL(host),
		openai.WithToken("none"),
		openai.WithEmbeddingModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	return &EmbeddingService{
		embedder: embedder,
		logger:   logger,
	}, nil
}

// EmbedText generates an embedding for a single text string.
func (s *EmbeddingService) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		s.logger.Error("failed to generate embedding", zap.Error(err))
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedder returned no vectors")
	}
	return vectors[0], nil
}

// EmbedTexts generates embeddings for multiple texts in one batch call.
func (s *EmbeddingService) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		s.logger.Error("failed to generate embeddings", zap.Int("count", len(texts)), zap.Error(err))
		return nil, err
	}
	return vectors, nil
}

// normalize scales v to unit length. The zero vector is returned unchanged.
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// dot computes the dot product of two vectors. With unit-normalized inputs
// this is the cosine similarity.
func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// cosineSimilarity computes the cosine similarity of two raw vectors.
func cosineSimilarity(a, b []float32) float32 {
	return dot(normalize(a), normalize(b))
}
