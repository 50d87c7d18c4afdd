package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/localflavor/recipebot/internal/models"
)

// DefaultRankTopK is the ranking cutoff used when no explicit size is given.
const DefaultRankTopK = 4

// SemanticRanker orders candidate recipes by embedding cosine similarity to
// the original query.
type SemanticRanker struct {
	embedder Embedder
	logger   *zap.Logger
}

// NewSemanticRanker creates a ranker backed by the given embedder.
func NewSemanticRanker(embedder Embedder, logger *zap.Logger) *SemanticRanker {
	return &SemanticRanker{
		embedder: embedder,
		logger:   logger,
	}
}

// Rank embeds the query and returns the min(topK, len(recipes)) candidates
// with the highest cosine similarity, in descending order. Ties are stable:
// the earlier index wins on numerically equal scores. Returns empty when
// recipes or embeddings are absent.
func (r *SemanticRanker) Rank(ctx context.Context, query string, recipes []models.Recipe, embeddings [][]float32, topK int) ([]models.Recipe, error) {
	if len(recipes) == 0 || len(embeddings) == 0 {
		return nil, nil
	}
	if topK <= 0 {
		topK = DefaultRankTopK
	}

	queryVec, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		r.logger.Error("failed to embed query for ranking", zap.Error(err))
		return nil, err
	}
	queryVec = normalize(queryVec)

	n := len(recipes)
	if len(embeddings) < n {
		n = len(embeddings)
	}

	scores := make([]float32, n)
	for i := 0; i < n; i++ {
		scores[i] = dot(queryVec, normalize(embeddings[i]))
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return scores[indices[a]] > scores[indices[b]]
	})

	if topK > n {
		topK = n
	}
	ranked := make([]models.Recipe, 0, topK)
	for _, idx := range indices[:topK] {
		ranked = append(ranked, recipes[idx])
	}
	return ranked, nil
}
