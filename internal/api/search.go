package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/localflavor/recipebot/internal/service"
)

// SearchHandler exposes the retrieval pipeline over HTTP.
type SearchHandler struct {
	retrieval *service.RetrievalService
	logger    *zap.Logger
}

// NewSearchHandler creates the search handler.
func NewSearchHandler(retrieval *service.RetrievalService, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		retrieval: retrieval,
		logger:    logger,
	}
}

// RegisterRoutes wires the handler into the router group.
func (h *SearchHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/search", h.Search)
	router.GET("/health", h.Health)
}

// SearchRequest is the inbound search payload.
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
	Count int    `json:"count"`
}

// Search runs the retrieval pipeline for the caller's query. Rate and quota
// rejections map to 429, other guardrail violations to 400.
func (h *SearchHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	result := h.retrieval.Retrieve(c.Request.Context(), req.Query, c.ClientIP(), req.Count)

	switch {
	case result.Rejected != nil && result.Rejected.Kind == service.ViolationRateLimited:
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":        "Rate limit exceeded. Please wait a few seconds before trying again.",
			"rate_limited": true,
		})
	case result.Rejected != nil:
		c.JSON(http.StatusBadRequest, gin.H{
			"error": result.Rejected.Message,
			"kind":  string(result.Rejected.Kind),
		})
	case result.QuotaExceeded:
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "Daily API limit reached. Please try again tomorrow.",
			"api_limited": true,
		})
	default:
		c.JSON(http.StatusOK, gin.H{
			"rate_limited": false,
			"from_cache":   result.FromCache,
			"excluded":     result.Excluded,
			"results":      result.Recipes,
		})
	}
}

// Health reports liveness.
func (h *SearchHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
