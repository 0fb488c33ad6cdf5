// Package handlers implements the HTTP request handlers for the streaming
// front-end API.
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/amaumene/goanistream/internal/catalog"
	"github.com/amaumene/goanistream/internal/config"
	"github.com/amaumene/goanistream/internal/resolver"
	"github.com/amaumene/goanistream/internal/services"
)

// Handler handles HTTP requests for the streaming front-end.
type Handler struct {
	services *services.Container
	config   *config.Config
	catalog  *catalog.Pipeline
	resolver *resolver.Resolver
}

// New creates a Handler with the provided services and configuration.
func New(container *services.Container, cfg *config.Config) *Handler {
	return &Handler{
		services: container,
		config:   cfg,
		catalog:  catalog.New(container.Jikan, container.Logger),
		resolver: resolver.New(container.Jikan, container.TMDB, container.Logger),
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.handleHome)

	api := r.Group("/api")
	{
		api.GET("/genres", h.handleGenres)
		api.GET("/catalog", h.handleCatalog)
		api.GET("/catalog/options", h.handleFilterOptions)

		api.GET("/anime/:id", h.handleResolve)
		api.GET("/anime/:id/source", h.handleSource)
		api.GET("/anime/:id/comments", h.handleListComments)
		api.POST("/anime/:id/comments", h.handleAddComment)
		api.GET("/anime/:id/rating", h.handleGetRating)
		api.PUT("/anime/:id/rating", h.handleRateAnime)

		api.GET("/tv/:tmdb/episodes", h.handleEpisodes)

		api.GET("/users/:user/progress", h.handleListProgress)
		api.PUT("/users/:user/progress", h.handleUpsertProgress)

		api.GET("/users/:user/history", h.handleListHistory)
		api.POST("/users/:user/history", h.handleLogHistory)
		api.DELETE("/users/:user/history", h.handleClearHistory)
		api.GET("/users/:user/ratings", h.handleListRatings)

		api.GET("/users/:user/watchlist", h.handleListWatchLater)
		api.POST("/users/:user/watchlist", h.handleAddWatchLater)
		api.DELETE("/users/:user/watchlist/:animeID", h.handleRemoveWatchLater)

		api.GET("/users/:user/settings", h.handleGetSettings)
		api.PUT("/users/:user/settings", h.handleUpdateSettings)

		api.GET("/sessions/:sid/filters", h.handleLoadFilter)
		api.PUT("/sessions/:sid/filters", h.handleSaveFilter)

		api.POST("/auth/login", h.handleLogin)
		api.POST("/auth/logout", h.handleLogout)
		api.GET("/auth/me", h.handleMe)
	}
}

func (h *Handler) handleHome(c *gin.Context) {
	c.String(200, "GoAniStream API. See /api/catalog to get started.")
}
