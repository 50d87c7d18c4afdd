package service

import (
	"context"

	"github.com/localflavor/recipebot/internal/models"
)

// Embedder generates vector embeddings from text for semantic similarity.
// Implementations must be safe for concurrent use.
type Embedder interface {
	// EmbedText generates an embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates embeddings for multiple texts in a single batch.
	// The returned slice is in the same order as the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatMessage is a single message in an LLM conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LLMClient is the single call contract shared by all chat backends.
// Exactly one implementation is active at a time, selected at startup.
type LLMClient interface {
	Call(ctx context.Context, messages []ChatMessage, temperature float64, maxTokens int) (string, error)
}

// RecipeSource fetches candidate recipes from an external catalog.
type RecipeSource interface {
	// Search returns recipes for searchQuery. originalQuery is the raw user
	// text, carried along for logging. Returns ErrQuotaExceeded when the
	// daily call budget is spent.
	Search(ctx context.Context, originalQuery, searchQuery string, count int) ([]models.Recipe, error)
}
