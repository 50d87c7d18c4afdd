package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/localflavor/recipebot/config"
	"github.com/localflavor/recipebot/internal/service"
)

// Dependencies holds the wired retrieval pipeline.
type Dependencies struct {
	Retrieval *service.RetrievalService
	Quota     *service.QuotaTracker
}

// Build constructs the full pipeline from configuration: embedder,
// classifier, analyzer, guardrails with their two limiters, quota-gated
// catalog adapter, cache, ranker and the optional LLM understanding path.
func Build(cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	embedder, err := service.NewEmbeddingService(cfg.EmbeddingHost, cfg.EmbeddingModel, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding service: %w", err)
	}

	classifier := service.NewFoodRelevanceClassifier(embedder, logger)
	analyzer := service.NewQueryAnalyzer(classifier, logger)

	requestGuardrail := service.NewGuardrailValidator(service.NewRequestRateLimiter(), logger)
	llmGuardrail := service.NewGuardrailValidator(service.NewLLMRateLimiter(), logger)

	quota := service.NewQuotaTracker(cfg.DailyQuota)
	source, err := service.NewSpoonacularClient(cfg.SpoonacularAPIKey, cfg.SpoonacularBaseURL, cfg.SpoonacularTimeout, quota, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize catalog client: %w", err)
	}

	llmClient, available := service.SelectLLMClient(cfg.LLMProvider,
		func() (service.LLMClient, error) {
			return service.NewGroqClient(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqModel, cfg.LLMTimeout, logger)
		},
		func() (service.LLMClient, error) {
			return service.NewOllamaClient(cfg.OllamaHost, cfg.OllamaModel, logger)
		},
		logger)
	understanding := service.NewUnderstandingService(llmClient, llmGuardrail, available, logger)

	cache := service.NewRecipeCache(embedder, logger)
	ranker := service.NewSemanticRanker(embedder, logger)

	retrieval := service.NewRetrievalService(requestGuardrail, analyzer, understanding, source, cache, ranker, logger)

	return &Dependencies{
		Retrieval: retrieval,
		Quota:     quota,
	}, nil
}
