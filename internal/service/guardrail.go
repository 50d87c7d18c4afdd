package service

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Query length bounds, applied to the trimmed text.
const (
	MinQueryLength = 2
	MaxQueryLength = 500
)

// ViolationKind identifies why a query was rejected.
type ViolationKind string

const (
	ViolationTooShort          ViolationKind = "too_short"
	ViolationTooLong           ViolationKind = "too_long"
	ViolationInjectionDetected ViolationKind = "injection_detected"
	ViolationOffTopic          ViolationKind = "off_topic"
	ViolationRateLimited       ViolationKind = "rate_limited"
)

// Violation describes a rejected query. Callers handle it as ordinary data;
// no error unwinding is involved.
type Violation struct {
	Kind    ViolationKind
	Message string
}

var injectionPatterns = []string{
	"ignore previous",
	"ignore all previous",
	"disregard previous",
	"forget previous",
	"new instructions",
	"system prompt",
	"you are now",
	"act as",
	"roleplay",
	"pretend you are",
}

var offTopicIndicators = []string{
	"weather", "temperature", "forecast", "rain", "sunny",
	"math", "calculate", "solve", "equation", "problem",
	"poem", "story", "write", "essay", "article",
	"president", "politics", "government", "election",
	"stock", "market", "investment",
	"movie", "film", "song", "music", "game",
	"sports", "football", "basketball", "soccer",
}

var foodDomainKeywords = []string{
	"recipe", "food", "cook", "ingredient", "meal", "dish", "eat",
	"bake", "cuisine", "flavor", "taste", "spice", "vegetable",
	"fruit", "meat", "protein", "grain", "dairy", "dessert",
	"breakfast", "lunch", "dinner", "snack", "healthy", "diet",
	"vegan", "vegetarian", "gluten", "chicken", "beef", "pork",
	"fish", "seafood", "pasta", "rice", "bread", "cheese", "egg",
	"milk", "butter", "oil", "sugar", "salt", "pepper", "tomato",
	"onion", "garlic", "potato", "carrot", "soup", "salad", "sauce",
	"pizza", "burger", "sandwich", "cake", "cookie", "pie",
}

var commonFoodPhrases = []string{
	"what can i", "i have", "i want", "show me", "find me",
	"looking for", "need a", "make with", "to cook",
}

// GuardrailValidator rejects unsafe, off-topic or over-quota queries before
// any expensive work is spent on them.
type GuardrailValidator struct {
	limiter *RateLimiter
	logger  *zap.Logger
}

// NewGuardrailValidator creates a validator backed by the given rate limiter.
func NewGuardrailValidator(limiter *RateLimiter, logger *zap.Logger) *GuardrailValidator {
	return &GuardrailValidator{
		limiter: limiter,
		logger:  logger,
	}
}

// Validate runs the guardrail checks in order and returns the first
// violation, or nil when the query passes. Checks 1-4 short-circuit before
// any rate accounting; the limiter records the attempt only when check 5 is
// actually reached.
func (g *GuardrailValidator) Validate(query, callerID string) *Violation {
	trimmed := strings.TrimSpace(query)

	// Bounds count characters, not bytes, so multibyte queries are measured
	// the same as ASCII ones.
	length := utf8.RuneCountInString(trimmed)
	if length < MinQueryLength {
		return &Violation{Kind: ViolationTooShort, Message: "Query too short"}
	}
	if length > MaxQueryLength {
		return &Violation{Kind: ViolationTooLong, Message: "Query too long"}
	}

	lower := strings.ToLower(trimmed)
	for _, pattern := range injectionPatterns {
		if strings.Contains(lower, pattern) {
			g.logger.Warn("potential injection attempt detected", zap.String("pattern", pattern))
			return &Violation{Kind: ViolationInjectionDetected, Message: "Invalid user query pattern detected"}
		}
	}

	if !IsFoodDomain(trimmed) {
		g.logger.Warn("off-topic query detected", zap.String("query", trimmed))
		return &Violation{Kind: ViolationOffTopic, Message: "Query must be food or recipe related"}
	}

	if callerID != "" && !g.limiter.Allow(callerID) {
		return &Violation{Kind: ViolationRateLimited, Message: "Rate limit exceeded"}
	}

	return nil
}

// IsFoodDomain reports whether the query looks food-related. Off-topic
// indicator terms reject immediately; otherwise any food keyword, whole-word
// food token or canonical food-request phrase accepts.
func IsFoodDomain(query string) bool {
	lower := strings.ToLower(query)

	for _, indicator := range offTopicIndicators {
		if strings.Contains(lower, indicator) {
			return false
		}
	}

	for _, word := range strings.Fields(lower) {
		if len(word) > 2 {
			for _, keyword := range foodDomainKeywords {
				if word == keyword {
					return true
				}
			}
		}
	}

	for _, keyword := range foodDomainKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}

	for _, phrase := range commonFoodPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}

	return false
}
