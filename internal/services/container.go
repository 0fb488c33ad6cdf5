// Package services provides the upstream API clients and the dependency
// injection container wiring them to handlers.
package services

import (
	"context"
	"net/url"

	"github.com/amaumene/goanistream/internal/cache"
	"github.com/amaumene/goanistream/internal/database"
	"github.com/amaumene/goanistream/internal/models"
	"github.com/amaumene/goanistream/pkg/logger"
)

// Container holds all application services for dependency injection.
// Each durable concern is owned by exactly one service; handlers never reach
// into storage or upstream APIs directly.
type Container struct {
	Jikan   JikanService
	TMDB    TMDBService
	Cache   *cache.LRUCache
	DB      database.Database
	Logger  logger.Logger
	Cleanup *CleanupService
}

// JikanService defines the interface for metadata provider operations.
type JikanService interface {
	GenreMap(ctx context.Context) (map[string]int, error)
	SearchAnime(ctx context.Context, params url.Values) ([]models.JikanAnime, error)
	TopAnime(ctx context.Context, params url.Values) ([]models.JikanAnime, error)
	GetAnimeFull(ctx context.Context, animeID int) (*models.JikanAnime, error)
	GetExternalLinks(ctx context.Context, animeID int) ([]models.JikanExternalLink, error)
	GetRecommendations(ctx context.Context, animeID int) ([]models.Anime, error)
}

// TMDBService defines the interface for media-database operations.
type TMDBService interface {
	SearchByTitle(ctx context.Context, mediaType, query string) ([]models.TMDBSearchResult, error)
	GetExternalIDs(ctx context.Context, mediaType string, tmdbID int) (*models.TMDBExternalIDs, error)
	GetTVDetails(ctx context.Context, tmdbID int) (*models.TMDBTVDetails, error)
	GetSeasonEpisodes(ctx context.Context, tmdbID, season int) ([]models.Episode, error)
}
