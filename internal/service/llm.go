package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/localflavor/recipebot/internal/models"
)

const understandSystemPrompt = `You are a food and recipe understanding assistant. Extract structured information from user queries.

Output ONLY valid JSON with this exact format:
{
  "keywords": ["list", "of", "food", "keywords"],
  "excluded_ingredients": ["ingredients", "to", "exclude"],
  "dietary_preferences": ["vegan", "gluten-free", etc],
  "cuisine_type": "italian/mexican/asian/etc or empty string",
  "meal_type": "breakfast/lunch/dinner/snack or empty string"
}

Rules:
- Only extract food-related keywords
- Detect exclusions from phrases like "no dairy", "without eggs", "I'm allergic to nuts"
- Identify dietary preferences
- Return empty arrays if nothing found
- Keep it concise`

const extractExclusionsSystemPrompt = `You are a dietary restriction and allergen detection assistant.

Extract ingredients that should be EXCLUDED from recipes based on the user's query.

Output ONLY valid JSON array format:
["ingredient1", "ingredient2", "ingredient3"]

Detect exclusions from:
- "no X", "without X", "exclude X"
- "allergic to X", "intolerant to X"
- "can't eat X", "cannot have X"
- "X-free" (dairy-free, gluten-free, etc)
- Health conditions implying exclusions

Expand common allergens:
- "dairy" includes: milk, cheese, butter, cream, yogurt
- "gluten" includes: wheat, barley, rye
- "nuts" includes: peanuts, almonds, cashews, walnuts

Return empty array [] if no exclusions found.`

const foodRelevanceSystemPrompt = `You are a food relevance classifier. Determine if a word is related to food, cooking, ingredients, or cuisine.

Output ONLY 'yes' or 'no' (lowercase, one word).`

// inappropriateIndicators flag LLM output as a refusal or unsafe content.
var inappropriateIndicators = []string{
	"sorry, i cannot",
	"i cannot help",
	"inappropriate",
	"offensive",
	"harmful",
	"illegal",
	"unethical",
}

// UnderstandingService is the LLM-assisted query understanding path. Every
// operation degrades to a "not available" result rather than an error;
// callers always have the rule-based analyzer to fall back to.
type UnderstandingService struct {
	client    LLMClient
	guardrail *GuardrailValidator
	available bool
	logger    *zap.Logger
}

// NewUnderstandingService creates the LLM-assisted path. guardrail must be
// configured with the LLM rate limiter (30 calls per 60s). available should
// be false when the disabled backend is active.
func NewUnderstandingService(client LLMClient, guardrail *GuardrailValidator, available bool, logger *zap.Logger) *UnderstandingService {
	return &UnderstandingService{
		client:    client,
		guardrail: guardrail,
		available: available,
		logger:    logger,
	}
}

// Available reports whether an LLM backend is configured.
func (s *UnderstandingService) Available() bool {
	return s != nil && s.available
}

// SelectLLMClient picks the backend named by provider ("groq", "ollama" or
// anything else for disabled). Initialization failures fall back to the
// disabled backend instead of failing startup. The returned bool reports
// whether a live backend is active.
func SelectLLMClient(provider string, groq func() (LLMClient, error), ollamaFn func() (LLMClient, error), logger *zap.Logger) (LLMClient, bool) {
	switch provider {
	case "groq":
		client, err := groq()
		if err != nil {
			logger.Warn("failed to initialize groq client, LLM path disabled", zap.Error(err))
			return NewDisabledClient(), false
		}
		logger.Info("initialized groq client")
		return client, true
	case "ollama":
		client, err := ollamaFn()
		if err != nil {
			logger.Warn("failed to initialize ollama client, LLM path disabled", zap.Error(err))
			return NewDisabledClient(), false
		}
		logger.Info("initialized ollama client")
		return client, true
	default:
		logger.Info("LLM provider disabled or not configured")
		return NewDisabledClient(), false
	}
}

// Understand extracts structured information from the query. Returns ok=false
// on any failure: guardrail violation, provider unavailable, malformed JSON,
// missing keys or flagged output.
func (s *UnderstandingService) Understand(ctx context.Context, query, callerID string) (*models.QueryUnderstanding, bool) {
	if !s.Available() {
		return nil, false
	}
	if v := s.guardrail.Validate(query, callerID); v != nil {
		s.logger.Warn("guardrail violation in query understanding",
			zap.String("kind", string(v.Kind)), zap.String("message", v.Message))
		return nil, false
	}

	messages := []ChatMessage{
		{Role: "system", Content: understandSystemPrompt},
		{Role: "user", Content: "Extract information from this food query: '" + query + "'"},
	}

	response, err := s.client.Call(ctx, messages, 0.2, 300)
	if err != nil {
		s.logLLMError("query understanding", err)
		return nil, false
	}
	if !validateLLMOutput(response, s.logger) {
		s.logger.Warn("invalid LLM response format")
		return nil, false
	}

	// Decode into a raw map first so missing keys can be told apart from
	// zero values.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(response), &raw); err != nil {
		s.logger.Error("failed to parse LLM JSON response", zap.Error(err))
		return nil, false
	}
	for _, key := range []string{"keywords", "excluded_ingredients", "dietary_preferences", "cuisine_type", "meal_type"} {
		if _, ok := raw[key]; !ok {
			s.logger.Warn("missing required key in LLM response", zap.String("key", key))
			return nil, false
		}
	}

	var parsed models.QueryUnderstanding
	if err := json.Unmarshal([]byte(response), &parsed); err != nil {
		s.logger.Error("failed to parse LLM JSON response", zap.Error(err))
		return nil, false
	}

	s.logger.Info("query understanding successful",
		zap.Strings("keywords", parsed.Keywords),
		zap.Strings("excluded", parsed.ExcludedIngredients))
	return &parsed, true
}

// ExtractExcludedIngredients asks the LLM for a JSON array of ingredients to
// exclude. Returns ok=false on any failure.
func (s *UnderstandingService) ExtractExcludedIngredients(ctx context.Context, query, callerID string) ([]string, bool) {
	if !s.Available() {
		return nil, false
	}
	if v := s.guardrail.Validate(query, callerID); v != nil {
		s.logger.Warn("guardrail violation in ingredient extraction",
			zap.String("kind", string(v.Kind)))
		return nil, false
	}

	messages := []ChatMessage{
		{Role: "system", Content: extractExclusionsSystemPrompt},
		{Role: "user", Content: "What ingredients should be excluded from this query: '" + query + "'"},
	}

	response, err := s.client.Call(ctx, messages, 0.1, 200)
	if err != nil {
		s.logLLMError("ingredient extraction", err)
		return nil, false
	}
	if !validateLLMOutput(response, s.logger) {
		s.logger.Warn("invalid ingredient extraction response")
		return nil, false
	}

	var excluded []string
	if err := json.Unmarshal([]byte(response), &excluded); err != nil {
		s.logger.Error("failed to parse ingredient extraction JSON", zap.Error(err))
		return nil, false
	}

	cleaned := make([]string, 0, len(excluded))
	for _, item := range excluded {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			cleaned = append(cleaned, item)
		}
	}

	s.logger.Info("extracted excluded ingredients", zap.Strings("excluded", cleaned))
	return cleaned, true
}

// CheckFoodRelevance asks the LLM whether a single word is food-related.
// The second return is false when no usable answer was produced.
func (s *UnderstandingService) CheckFoodRelevance(ctx context.Context, word string) (bool, bool) {
	if !s.Available() {
		return false, false
	}
	if n := utf8.RuneCountInString(word); n < 2 || n > 50 {
		return false, true
	}

	messages := []ChatMessage{
		{Role: "system", Content: foodRelevanceSystemPrompt},
		{Role: "user", Content: "Is this word food-related: '" + word + "'"},
	}

	response, err := s.client.Call(ctx, messages, 0.1, 10)
	if err != nil {
		s.logLLMError("food relevance check", err)
		return false, false
	}

	switch strings.ToLower(strings.TrimSpace(response)) {
	case "yes":
		return true, true
	case "no":
		return false, true
	default:
		return false, false
	}
}

func (s *UnderstandingService) logLLMError(op string, err error) {
	if errors.Is(err, ErrProviderUnavailable) {
		s.logger.Debug("LLM not available", zap.String("op", op))
		return
	}
	s.logger.Error("LLM call failed", zap.String("op", op), zap.Error(err))
}

// validateLLMOutput rejects empty responses and ones containing refusal or
// offensive-language indicators.
func validateLLMOutput(response string, logger *zap.Logger) bool {
	if strings.TrimSpace(response) == "" {
		return false
	}
	lower := strings.ToLower(response)
	for _, indicator := range inappropriateIndicators {
		if strings.Contains(lower, indicator) {
			logger.Warn("LLM refused or flagged content", zap.String("indicator", indicator))
			return false
		}
	}
	return true
}
