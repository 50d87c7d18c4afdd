package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/localflavor/recipebot/internal/models"
)

// foodLexicon drives the fake embedder: any text containing one of these
// words embeds close to the food-category anchors.
var foodLexicon = []string{
	"food", "ingredient", "vegetable", "fruit", "meat", "spice",
	"herb", "grain", "dairy", "seafood", "dish", "meal",
	"chicken", "rice", "pasta", "peanuts", "nuts", "milk", "cheese",
	"butter", "cream", "yogurt", "eggs", "dessert", "salad", "tomato",
	"beef", "curry", "noodles",
}

// fakeEmbedder is a deterministic in-memory embedder. Texts with a food word
// map near [1,0]; everything else maps to [0,1]. Explicit vectors can be
// pinned per text for ranking tests.
type fakeEmbedder struct {
	mu         sync.Mutex
	vectors    map[string][]float32
	failAll    bool
	textCalls  int
	batchCalls int
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{vectors: make(map[string][]float32)}
}

func (f *fakeEmbedder) pin(text string, vec []float32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vectors[text] = vec
}

func (f *fakeEmbedder) embed(text string) []float32 {
	if vec, ok := f.vectors[text]; ok {
		return vec
	}
	lower := strings.ToLower(text)
	for _, word := range foodLexicon {
		if strings.Contains(lower, word) {
			return []float32{1, 0}
		}
	}
	return []float32{0, 1}
}

func (f *fakeEmbedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, fmt.Errorf("embedder down")
	}
	f.textCalls++
	return f.embed(text), nil
}

func (f *fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, fmt.Errorf("embedder down")
	}
	f.batchCalls++
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = f.embed(text)
	}
	return out, nil
}

// fakeLLM returns a canned response or error and records calls.
type fakeLLM struct {
	mu       sync.Mutex
	response string
	err      error
	calls    int
}

func (f *fakeLLM) Call(context.Context, []ChatMessage, float64, int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeSource is a scripted RecipeSource that records the search queries it
// receives.
type fakeSource struct {
	mu      sync.Mutex
	recipes []models.Recipe
	err     error
	queries []string
}

func (f *fakeSource) Search(_ context.Context, _, searchQuery string, _ int) ([]models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, searchQuery)
	if f.err != nil {
		return nil, f.err
	}
	return f.recipes, nil
}

func (f *fakeSource) lastQuery() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queries) == 0 {
		return ""
	}
	return f.queries[len(f.queries)-1]
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func testClassifier() *FoodRelevanceClassifier {
	return NewFoodRelevanceClassifier(newFakeEmbedder(), testLogger())
}

func testRecipes() []models.Recipe {
	return []models.Recipe{
		{
			Name:           "Creamy Chicken Curry",
			Ingredients:    []string{"500g chicken breast", "200ml coconut cream"},
			Steps:          []string{"Brown the chicken.", "Simmer in sauce."},
			ReadyInMinutes: 35,
			Servings:       4,
			SourceURL:      "https://example.com/curry",
		},
		{
			Name:           "Tomato Rice Bowl",
			Ingredients:    []string{"1 cup rice", "2 tomatoes"},
			Steps:          []string{"Cook rice.", "Add tomatoes."},
			ReadyInMinutes: 20,
			Servings:       2,
			SourceURL:      "https://example.com/rice",
		},
		{
			Name:           "Pasta Primavera",
			Ingredients:    []string{"250g pasta", "mixed vegetables"},
			Steps:          []string{"Boil pasta.", "Toss with vegetables."},
			ReadyInMinutes: 25,
			Servings:       3,
			SourceURL:      "https://example.com/pasta",
		},
	}
}
