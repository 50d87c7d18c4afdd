package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/localflavor/recipebot/internal/models"
)

const defaultSpoonacularBaseURL = "https://api.spoonacular.com/recipes"

// SpoonacularClient adapts the Spoonacular catalog to the internal recipe
// shape. Every outbound call is gated by the shared daily quota.
type SpoonacularClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	quota      *QuotaTracker
	logger     *zap.Logger
}

// NewSpoonacularClient creates a catalog adapter. baseURL falls back to the
// public API when empty.
func NewSpoonacularClient(apiKey, baseURL string, timeout time.Duration, quota *QuotaTracker, logger *zap.Logger) (*SpoonacularClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("spoonacular API key is required")
	}
	if baseURL == "" {
		baseURL = defaultSpoonacularBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SpoonacularClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		quota:      quota,
		logger:     logger,
	}, nil
}

// spoonacularResult mirrors the catalog's complexSearch response shape.
type spoonacularResult struct {
	Title               string `json:"title"`
	ExtendedIngredients []struct {
		Original string `json:"original"`
	} `json:"extendedIngredients"`
	AnalyzedInstructions []struct {
		Steps []struct {
			Step string `json:"step"`
		} `json:"steps"`
	} `json:"analyzedInstructions"`
	Instructions   string `json:"instructions"`
	ReadyInMinutes int    `json:"readyInMinutes"`
	Servings       int    `json:"servings"`
	SourceURL      string `json:"sourceUrl"`
}

type spoonacularResponse struct {
	Results []spoonacularResult `json:"results"`
}

// Search fetches candidate recipes for searchQuery. The quota is consumed
// before any network call; when it is spent, ErrQuotaExceeded is returned
// immediately. When the initial request yields no results and the query has
// more than one word, each keyword is retried individually in order until
// one produces results. The retries reuse the initial quota consumption
// rather than re-checking the budget per call.
func (c *SpoonacularClient) Search(ctx context.Context, originalQuery, searchQuery string, count int) ([]models.Recipe, error) {
	if !c.quota.TryConsume() {
		c.logger.Warn("daily API limit reached", zap.String("query", originalQuery))
		return nil, ErrQuotaExceeded
	}

	results, err := c.complexSearch(ctx, searchQuery, count)
	if err != nil {
		return nil, err
	}

	keywords := strings.Fields(searchQuery)
	if len(results) == 0 && len(keywords) > 1 {
		for _, keyword := range keywords {
			c.logger.Info("retrying with single keyword", zap.String("keyword", keyword))
			results, err = c.complexSearch(ctx, keyword, count)
			if err != nil {
				return nil, err
			}
			if len(results) > 0 {
				break
			}
		}
	}

	if len(results) == 0 {
		c.logger.Info("no results found", zap.String("search_query", searchQuery))
		return nil, nil
	}

	c.logger.Info("found recipes", zap.Int("count", len(results)))
	recipes := make([]models.Recipe, 0, len(results))
	for _, r := range results {
		recipes = append(recipes, mapResult(r))
	}
	return recipes, nil
}

func (c *SpoonacularClient) complexSearch(ctx context.Context, query string, count int) ([]spoonacularResult, error) {
	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("query", query)
	params.Set("number", strconv.Itoa(count*2))
	params.Set("addRecipeInformation", "true")
	params.Set("fillIngredients", "true")
	params.Set("instructionsRequired", "true")

	endpoint := c.baseURL + "/complexSearch?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("catalog request failed", zap.Error(err))
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("catalog returned error status", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	var body spoonacularResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}
	return body.Results, nil
}

// mapResult converts a raw catalog entry into the internal recipe shape.
// Steps come from the first instruction group, falling back to the raw
// instructions text split into lines.
func mapResult(r spoonacularResult) models.Recipe {
	ingredients := make([]string, 0, len(r.ExtendedIngredients))
	for _, ing := range r.ExtendedIngredients {
		ingredients = append(ingredients, ing.Original)
	}

	var steps []string
	if len(r.AnalyzedInstructions) > 0 {
		for _, s := range r.AnalyzedInstructions[0].Steps {
			steps = append(steps, s.Step)
		}
	} else if r.Instructions != "" {
		steps = strings.Split(r.Instructions, "\n")
	}

	return models.Recipe{
		Name:           r.Title,
		Ingredients:    ingredients,
		Steps:          steps,
		ReadyInMinutes: r.ReadyInMinutes,
		Servings:       r.Servings,
		SourceURL:      r.SourceURL,
	}
}
