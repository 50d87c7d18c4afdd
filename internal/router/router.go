package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/localflavor/recipebot/internal/api"
	"github.com/localflavor/recipebot/internal/middleware"
)

// SetupRouter configures the application routes
func SetupRouter(searchHandler *api.SearchHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "X-Request-ID")
	router.Use(cors.New(corsConfig))

	v1 := router.Group("/api/v1")
	searchHandler.RegisterRoutes(v1)

	return router
}
