package service

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// FoodRelevanceThreshold is the minimum cosine similarity between a word and
// any food-category anchor for the word to count as food-related.
const FoodRelevanceThreshold = 0.4

// foodCategories are the anchor terms each candidate word is compared against.
var foodCategories = []string{
	"food", "ingredient", "vegetable", "fruit", "meat", "spice",
	"herb", "grain", "dairy", "seafood", "dish", "meal",
}

// FoodRelevanceClassifier decides whether a token is food-related by
// embedding it and taking the maximum cosine similarity against a fixed set
// of food-category anchors. Results are memoized by exact word; the
// classification is a pure function of the word and the embedder's fixed
// weights.
type FoodRelevanceClassifier struct {
	embedder  Embedder
	threshold float32
	logger    *zap.Logger

	mu      sync.Mutex
	anchors [][]float32
	cache   map[string]bool
}

// NewFoodRelevanceClassifier creates a classifier with the default threshold.
func NewFoodRelevanceClassifier(embedder Embedder, logger *zap.Logger) *FoodRelevanceClassifier {
	return &FoodRelevanceClassifier{
		embedder:  embedder,
		threshold: FoodRelevanceThreshold,
		logger:    logger,
		cache:     make(map[string]bool),
	}
}

// IsFoodRelated reports whether word is semantically close to any food
// category anchor. Embedding failures classify the word as not food-related.
func (c *FoodRelevanceClassifier) IsFoodRelated(ctx context.Context, word string) bool {
	c.mu.Lock()
	if cached, ok := c.cache[word]; ok {
		c.mu.Unlock()
		return cached
	}
	c.mu.Unlock()

	anchors, err := c.anchorVectors(ctx)
	if err != nil {
		c.logger.Error("failed to embed food category anchors", zap.Error(err))
		return false
	}

	vec, err := c.embedder.EmbedText(ctx, word)
	if err != nil {
		c.logger.Error("failed to embed word", zap.String("word", word), zap.Error(err))
		return false
	}
	vec = normalize(vec)

	var best float32
	for _, anchor := range anchors {
		if sim := dot(vec, anchor); sim > best {
			best = sim
		}
	}
	related := best > c.threshold

	c.mu.Lock()
	c.cache[word] = related
	c.mu.Unlock()

	return related
}

// anchorVectors embeds the category anchors once and reuses the normalized
// vectors for every subsequent classification.
func (c *FoodRelevanceClassifier) anchorVectors(ctx context.Context) ([][]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.anchors != nil {
		return c.anchors, nil
	}

	vectors, err := c.embedder.EmbedTexts(ctx, foodCategories)
	if err != nil {
		return nil, err
	}
	for i, v := range vectors {
		vectors[i] = normalize(v)
	}
	c.anchors = vectors
	return c.anchors, nil
}
