package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/amaumene/goanistream/internal/catalog"
	"github.com/amaumene/goanistream/internal/constants"
	apperrors "github.com/amaumene/goanistream/internal/errors"
	"github.com/amaumene/goanistream/internal/models"
)

// handleFilterOptions serves the filter-panel and player-settings
// vocabularies so the front-end never hardcodes them.
func (h *Handler) handleFilterOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"genres":            constants.Genres,
		"types":             constants.AnimeTypes,
		"statuses":          constants.AnimeStatuses,
		"years":             constants.YearBuckets,
		"languages":         constants.Languages,
		"providers":         []string{constants.ProviderEmbedAPI, constants.ProviderVidsrc, constants.ProviderVideasy},
		"vidsrcDomains":     constants.VidsrcDomains,
		"subtitleLanguages": constants.SubtitleLanguages,
	})
}

func (h *Handler) handleGenres(c *gin.Context) {
	genreMap, err := h.services.Jikan.GenreMap(c.Request.Context())
	if err != nil {
		h.services.Logger.Errorf("[CatalogHandler] failed to fetch genre map: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch genre list"})
		return
	}

	c.JSON(http.StatusOK, genreMap)
}

func (h *Handler) handleCatalog(c *gin.Context) {
	filter := filterFromQuery(c)

	result, err := h.catalog.Fetch(c.Request.Context(), filter)
	if err != nil {
		if errors.Is(err, catalog.ErrGenreMapPending) {
			// The genre table has not loaded yet; the client retries
			// rather than losing its genre constraint.
			c.Header("Retry-After", "1")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "genre list still loading, retry shortly"})
			return
		}
		h.services.Logger.Errorf("[CatalogHandler] fetch failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch anime data"})
		return
	}

	c.JSON(http.StatusOK, models.CatalogResponse{Items: result.Items, Top: result.Top})
}

// filterFromQuery builds the filter state from query parameters. Multi-value
// fields arrive comma-separated.
func filterFromQuery(c *gin.Context) models.Filter {
	return models.Filter{
		Query:    strings.TrimSpace(c.Query("query")),
		Genres:   splitParam(c.Query("genres")),
		Types:    splitParam(c.Query("types")),
		Status:   c.Query("status"),
		Year:     c.Query("year"),
		Sort:     c.Query("sort"),
		Language: c.Query("language"),
	}
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	return values
}

func (h *Handler) handleLoadFilter(c *gin.Context) {
	sessionID := c.Param("sid")

	filter, err := h.services.DB.LoadFilter(sessionID)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Type == apperrors.ErrorTypeCorruptState {
			// Offending record already cleared; hand back defaults.
			h.services.Logger.Warnf("[CatalogHandler] %v", err)
			c.JSON(http.StatusOK, models.Filter{})
			return
		}
		h.services.Logger.Errorf("[CatalogHandler] failed to load filter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load filters"})
		return
	}

	c.JSON(http.StatusOK, filter)
}

func (h *Handler) handleSaveFilter(c *gin.Context) {
	sessionID := c.Param("sid")

	var filter models.Filter
	if err := c.ShouldBindJSON(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter payload"})
		return
	}

	if err := h.services.DB.SaveFilter(sessionID, filter); err != nil {
		h.services.Logger.Errorf("[CatalogHandler] failed to save filter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save filters"})
		return
	}

	c.JSON(http.StatusOK, filter)
}
