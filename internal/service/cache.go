package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/localflavor/recipebot/internal/models"
)

// RecipeCache holds the single most recent successful result set together
// with its embeddings. A new successful fetch atomically replaces the whole
// entry; recipes and embeddings are never mixed across generations.
type RecipeCache struct {
	embedder Embedder
	logger   *zap.Logger

	mu         sync.RWMutex
	recipes    []models.Recipe
	embeddings [][]float32
	capturedAt time.Time
}

// NewRecipeCache creates an empty cache backed by the given embedder.
func NewRecipeCache(embedder Embedder, logger *zap.Logger) *RecipeCache {
	return &RecipeCache{
		embedder: embedder,
		logger:   logger,
	}
}

// Store replaces the cache entry with the given recipes and their freshly
// computed embeddings, and returns those embeddings for immediate ranking.
// Empty input is a no-op. The embeddings for all recipes are computed in a
// single batch call before the swap, so readers observe either the old pair
// or the new pair, never a mix.
func (c *RecipeCache) Store(ctx context.Context, recipes []models.Recipe) ([][]float32, error) {
	if len(recipes) == 0 {
		return nil, nil
	}

	texts := make([]string, len(recipes))
	for i, r := range recipes {
		texts[i] = r.Name + " " + strings.Join(r.Ingredients, " ")
	}

	embeddings, err := c.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		c.logger.Error("failed to embed recipes for cache", zap.Error(err))
		return nil, err
	}

	c.mu.Lock()
	c.recipes = recipes
	c.embeddings = embeddings
	c.capturedAt = time.Now()
	c.mu.Unlock()

	c.logger.Debug("cached recipe embeddings", zap.Int("count", len(recipes)))
	return embeddings, nil
}

// Current returns the cached result set, or ok=false when the cache is
// empty. The returned slices are the immutable live entry and must not be
// modified by callers.
func (c *RecipeCache) Current() ([]models.Recipe, [][]float32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.recipes) == 0 {
		return nil, nil, false
	}
	return c.recipes, c.embeddings, true
}

// CapturedAt reports when the current entry was stored.
func (c *RecipeCache) CapturedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.capturedAt
}
