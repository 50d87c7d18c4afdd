package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/localflavor/recipebot/internal/models"
)

// DefaultRetrieveCount is the number of recipes requested when the caller
// does not specify one.
const DefaultRetrieveCount = 3

// RetrievalResult is the outcome of a retrieve operation. Exactly one of
// the three shapes applies: Rejected is set, QuotaExceeded is true, or
// Recipes carries the (possibly empty) ranked result.
type RetrievalResult struct {
	Recipes []models.Recipe
	// Excluded ingredients extracted from the query. Recorded for the
	// caller but not filtered out of the results.
	Excluded      []string
	Rejected      *Violation
	QuotaExceeded bool
	// FromCache is true when the results were ranked against the cached
	// set because the live fetch failed or came back empty.
	FromCache bool
}

// RetrievalService composes the guardrail, analyzer, catalog source, cache
// and ranker into the end-to-end retrieve operation.
type RetrievalService struct {
	guardrail     *GuardrailValidator
	analyzer      *QueryAnalyzer
	understanding *UnderstandingService
	source        RecipeSource
	cache         *RecipeCache
	ranker        *SemanticRanker
	logger        *zap.Logger
}

// NewRetrievalService creates the orchestrator. understanding may be nil or
// disabled; the rule-based analyzer then handles every query.
func NewRetrievalService(
	guardrail *GuardrailValidator,
	analyzer *QueryAnalyzer,
	understanding *UnderstandingService,
	source RecipeSource,
	cache *RecipeCache,
	ranker *SemanticRanker,
	logger *zap.Logger,
) *RetrievalService {
	return &RetrievalService{
		guardrail:     guardrail,
		analyzer:      analyzer,
		understanding: understanding,
		source:        source,
		cache:         cache,
		ranker:        ranker,
		logger:        logger,
	}
}

// Retrieve runs the full pipeline: guardrail, query analysis, catalog fetch,
// cache update and semantic ranking. Quota exhaustion is terminal and never
// falls back to the cache; source failures and empty fetches do.
func (s *RetrievalService) Retrieve(ctx context.Context, query, callerID string, count int) *RetrievalResult {
	if count <= 0 {
		count = DefaultRetrieveCount
	}

	if v := s.guardrail.Validate(query, callerID); v != nil {
		s.logger.Warn("query rejected by guardrail",
			zap.String("kind", string(v.Kind)), zap.String("caller", callerID))
		return &RetrievalResult{Rejected: v}
	}

	analyzed := s.analyze(ctx, query, callerID)

	recipes, err := s.source.Search(ctx, query, analyzed.SearchQuery, count)
	if errors.Is(err, ErrQuotaExceeded) {
		return &RetrievalResult{QuotaExceeded: true, Excluded: analyzed.Excluded}
	}
	if err != nil || len(recipes) == 0 {
		if err != nil {
			s.logger.Warn("catalog fetch failed, consulting cache", zap.Error(err))
		}
		return s.rankCached(ctx, query, count, analyzed.Excluded)
	}

	embeddings, err := s.cache.Store(ctx, recipes)
	if err != nil {
		// Embedding failed; serve the fetched recipes unranked rather than
		// dropping them.
		return &RetrievalResult{Recipes: truncate(recipes, count), Excluded: analyzed.Excluded}
	}

	ranked, err := s.ranker.Rank(ctx, query, recipes, embeddings, count)
	if err != nil {
		return &RetrievalResult{Recipes: truncate(recipes, count), Excluded: analyzed.Excluded}
	}
	return &RetrievalResult{Recipes: ranked, Excluded: analyzed.Excluded}
}

// analyze runs the LLM-assisted path first when a provider is configured;
// any failure there falls back to the rule-based analyzer.
func (s *RetrievalService) analyze(ctx context.Context, query, callerID string) models.AnalyzedQuery {
	if s.understanding.Available() {
		if u, ok := s.understanding.Understand(ctx, query, callerID); ok && len(u.Keywords) > 0 {
			keywords := make([]string, 0, len(u.Keywords))
			for _, k := range u.Keywords {
				if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
					keywords = append(keywords, k)
				}
			}
			collected := make(map[string]struct{}, len(u.ExcludedIngredients))
			for _, item := range u.ExcludedIngredients {
				if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
					collected[item] = struct{}{}
				}
			}
			return models.AnalyzedQuery{
				Keywords:           keywords,
				SearchQuery:        strings.Join(keywords, " "),
				Excluded:           ExpandAllergens(collected),
				DietaryPreferences: u.DietaryPreferences,
				CuisineType:        u.CuisineType,
				MealType:           u.MealType,
			}
		}
		s.logger.Debug("LLM understanding unavailable, using rule-based analyzer")
	}
	return s.analyzer.Analyze(ctx, query)
}

// rankCached serves the previously cached result set, or an empty (not
// erroneous) result when the cache is also empty.
func (s *RetrievalService) rankCached(ctx context.Context, query string, count int, excluded []string) *RetrievalResult {
	recipes, embeddings, ok := s.cache.Current()
	if !ok {
		return &RetrievalResult{Excluded: excluded}
	}

	ranked, err := s.ranker.Rank(ctx, query, recipes, embeddings, count)
	if err != nil {
		return &RetrievalResult{Recipes: truncate(recipes, count), Excluded: excluded, FromCache: true}
	}
	return &RetrievalResult{Recipes: ranked, Excluded: excluded, FromCache: true}
}

func truncate(recipes []models.Recipe, n int) []models.Recipe {
	if len(recipes) <= n {
		return recipes
	}
	return recipes[:n]
}
