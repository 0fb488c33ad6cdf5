package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/amaumene/goanistream/internal/constants"
	"github.com/amaumene/goanistream/internal/database"
	apperrors "github.com/amaumene/goanistream/internal/errors"
)

func (h *Handler) handleListHistory(c *gin.Context) {
	username := c.Param("user")

	entries, err := h.services.DB.ListHistory(username)
	if err != nil {
		h.services.Logger.Errorf("[ProfileHandler] failed to list history: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": entries})
}

type historyRequest struct {
	AnimeID int `json:"animeId" binding:"required"`
}

func (h *Handler) handleLogHistory(c *gin.Context) {
	username := c.Param("user")

	var req historyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.AnimeID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid history payload"})
		return
	}

	item := &database.ViewingHistoryItem{Username: username, AnimeID: req.AnimeID}
	if err := h.services.DB.LogHistory(item); err != nil {
		h.services.Logger.Errorf("[ProfileHandler] failed to log history: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save history entry"})
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *Handler) handleClearHistory(c *gin.Context) {
	username := c.Param("user")

	if err := h.services.DB.ClearHistory(username); err != nil {
		h.services.Logger.Errorf("[ProfileHandler] failed to clear history: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear history"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) handleListRatings(c *gin.Context) {
	username := c.Param("user")

	ratings, err := h.services.DB.ListRatings(username)
	if err != nil {
		h.services.Logger.Errorf("[ProfileHandler] failed to list ratings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load ratings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ratings": ratings})
}

func (h *Handler) handleGetRating(c *gin.Context) {
	animeID, err := strconv.Atoi(c.Param("id"))
	if err != nil || animeID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": apperrors.NewInvalidIDError(c.Param("id")).Message})
		return
	}

	// Without a logged-in user there is no rating to report.
	user, ok := h.currentUser(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"rating": nil})
		return
	}

	rating, err := h.services.DB.GetRating(user.Username, animeID)
	if err != nil {
		h.services.Logger.Errorf("[ProfileHandler] failed to get rating: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load rating"})
		return
	}
	if rating == nil {
		c.JSON(http.StatusOK, gin.H{"rating": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rating": rating.Score})
}

type ratingRequest struct {
	Rating int `json:"rating" binding:"required"`
}

func (h *Handler) handleRateAnime(c *gin.Context) {
	animeID, err := strconv.Atoi(c.Param("id"))
	if err != nil || animeID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": apperrors.NewInvalidIDError(c.Param("id")).Message})
		return
	}

	user, ok := h.currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required to rate"})
		return
	}

	var req ratingRequest
	if err := c.ShouldBindJSON(&req); err != nil ||
		req.Rating < constants.MinRatingScore || req.Rating > constants.MaxRatingScore {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
		return
	}

	rating := &database.Rating{Username: user.Username, AnimeID: animeID, Score: req.Rating}
	if err := h.services.DB.RateAnime(rating); err != nil {
		h.services.Logger.Errorf("[ProfileHandler] failed to store rating: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save rating"})
		return
	}

	c.JSON(http.StatusOK, rating)
}
