package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/amaumene/goanistream/internal/constants"
	apperrors "github.com/amaumene/goanistream/internal/errors"
	"github.com/amaumene/goanistream/internal/player"
)

// sessionID identifies the browsing session for resolution scoping and
// filter persistence. Anonymous clients share one scope.
func sessionID(c *gin.Context) string {
	if sid := c.GetHeader("X-Session-ID"); sid != "" {
		return sid
	}
	if cookie, err := c.Cookie(sessionCookieName); err == nil && cookie != "" {
		return cookie
	}
	return "anonymous"
}

func (h *Handler) handleResolve(c *gin.Context) {
	animeID, err := strconv.Atoi(c.Param("id"))
	if err != nil || animeID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": apperrors.NewInvalidIDError(c.Param("id")).Message})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), constants.ResolveTimeout)
	defer cancel()

	res, err := h.resolver.Resolve(ctx, sessionID(c), animeID)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Type == apperrors.ErrorTypeResolveSuperseded {
			// A newer selection replaced this one; the stale result is
			// dropped instead of clobbering newer state.
			c.JSON(http.StatusConflict, gin.H{"error": "superseded by a newer selection"})
			return
		}
		h.services.Logger.Errorf("[PlayerHandler] resolution failed for %d: %v", animeID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch detailed anime data"})
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *Handler) handleEpisodes(c *gin.Context) {
	tmdbID, err := strconv.Atoi(c.Param("tmdb"))
	if err != nil || tmdbID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": apperrors.NewInvalidIDError(c.Param("tmdb")).Message})
		return
	}

	season, err := strconv.Atoi(c.DefaultQuery("season", "1"))
	if err != nil || season <= 0 {
		season = 1
	}

	episodes, err := h.resolver.Episodes(c.Request.Context(), tmdbID, season)
	if err != nil {
		// Episode thumbnails are a best-effort extra; absence is not an error.
		h.services.Logger.Debugf("[PlayerHandler] episode list unavailable for %d season %d: %v", tmdbID, season, err)
		c.JSON(http.StatusOK, gin.H{"episodes": []struct{}{}})
		return
	}

	c.JSON(http.StatusOK, gin.H{"episodes": episodes})
}

func (h *Handler) handleSource(c *gin.Context) {
	animeID, err := strconv.Atoi(c.Param("id"))
	if err != nil || animeID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": apperrors.NewInvalidIDError(c.Param("id")).Message})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), constants.ResolveTimeout)
	defer cancel()

	res, err := h.resolver.Resolve(ctx, sessionID(c), animeID)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Type == apperrors.ErrorTypeResolveSuperseded {
			c.JSON(http.StatusConflict, gin.H{"error": "superseded by a newer selection"})
			return
		}
		h.services.Logger.Errorf("[PlayerHandler] resolution failed for %d: %v", animeID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch detailed anime data"})
		return
	}
	if res.StreamError != "" {
		c.JSON(http.StatusNotFound, gin.H{"error": res.StreamError})
		return
	}

	season, _ := strconv.Atoi(c.Query("season"))
	episode, _ := strconv.Atoi(c.Query("episode"))

	prov := h.providerFor(c)
	target := player.Target{
		MediaType: res.Identity.MediaType,
		TMDBID:    res.Identity.TMDBID,
		Season:    season,
		Episode:   episode,
	}

	url := player.BuildSourceURL(prov, target)
	if url == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "could not generate a valid streaming source for this title"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// providerFor picks the embed provider variant from the request, the user's
// stored settings, and the server default, in that order.
func (h *Handler) providerFor(c *gin.Context) player.Provider {
	name := c.Query("provider")
	domain := c.Query("domain")
	autoplay := c.Query("autoplay") == "1"
	subtitleLang := c.Query("sub_lang")

	if user := c.Query("user"); user != "" {
		if settings, err := h.services.DB.GetSettings(user); err == nil && settings != nil {
			if name == "" {
				name = settings.VideoServer
			}
			if domain == "" {
				domain = settings.VidsrcDomain
			}
			if c.Query("autoplay") == "" {
				autoplay = settings.Autoplay
			}
			if subtitleLang == "" {
				subtitleLang = settings.SubtitleLanguage
			}
		}
	}

	if name == "" {
		name = h.config.DefaultProvider
	}
	return player.ProviderFor(name, domain, autoplay, subtitleLang)
}
