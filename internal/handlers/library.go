package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/amaumene/goanistream/internal/database"
	apperrors "github.com/amaumene/goanistream/internal/errors"
	"github.com/amaumene/goanistream/internal/models"
)

func (h *Handler) handleListProgress(c *gin.Context) {
	username := c.Param("user")

	entries, err := h.services.DB.ListProgress(username)
	if err != nil {
		h.services.Logger.Errorf("[LibraryHandler] failed to list progress: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load progress"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": entries})
}

type progressRequest struct {
	AnimeID  int     `json:"animeId" binding:"required"`
	Season   int     `json:"season"`
	Episode  int     `json:"episode"`
	Progress float64 `json:"progress"`
}

func (h *Handler) handleUpsertProgress(c *gin.Context) {
	username := c.Param("user")

	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid progress payload"})
		return
	}

	entry := &database.WatchProgress{
		Username: username,
		AnimeID:  req.AnimeID,
		Season:   req.Season,
		Episode:  req.Episode,
		Progress: req.Progress,
	}
	if err := h.services.DB.UpsertProgress(entry); err != nil {
		h.services.Logger.Errorf("[LibraryHandler] failed to store progress: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save progress"})
		return
	}

	c.JSON(http.StatusOK, entry)
}

func (h *Handler) handleListWatchLater(c *gin.Context) {
	username := c.Param("user")

	items, err := h.services.DB.ListWatchLater(username)
	if err != nil {
		h.services.Logger.Errorf("[LibraryHandler] failed to list watch-later: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load watch-later list"})
		return
	}

	animes := make([]models.Anime, 0, len(items))
	for _, item := range items {
		animes = append(animes, item.Anime)
	}
	c.JSON(http.StatusOK, gin.H{"watchlist": animes})
}

func (h *Handler) handleAddWatchLater(c *gin.Context) {
	username := c.Param("user")

	var anime models.Anime
	if err := c.ShouldBindJSON(&anime); err != nil || anime.MALID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid anime payload"})
		return
	}

	item := &database.WatchLaterItem{Username: username, Anime: anime}
	if err := h.services.DB.AddWatchLater(item); err != nil {
		h.services.Logger.Errorf("[LibraryHandler] failed to add watch-later: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save watch-later item"})
		return
	}

	c.JSON(http.StatusCreated, anime)
}

func (h *Handler) handleRemoveWatchLater(c *gin.Context) {
	username := c.Param("user")

	animeID, err := strconv.Atoi(c.Param("animeID"))
	if err != nil || animeID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": apperrors.NewInvalidIDError(c.Param("animeID")).Message})
		return
	}

	if err := h.services.DB.RemoveWatchLater(username, animeID); err != nil {
		h.services.Logger.Errorf("[LibraryHandler] failed to remove watch-later: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove watch-later item"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) handleListComments(c *gin.Context) {
	animeID, err := strconv.Atoi(c.Param("id"))
	if err != nil || animeID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": apperrors.NewInvalidIDError(c.Param("id")).Message})
		return
	}

	comments, err := h.services.DB.ListComments(animeID)
	if err != nil {
		h.services.Logger.Errorf("[LibraryHandler] failed to list comments: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load comments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

type commentRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h *Handler) handleAddComment(c *gin.Context) {
	animeID, err := strconv.Atoi(c.Param("id"))
	if err != nil || animeID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": apperrors.NewInvalidIDError(c.Param("id")).Message})
		return
	}

	user, ok := h.currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required to comment"})
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment payload"})
		return
	}

	comment := &database.Comment{
		AnimeID:  animeID,
		Username: user.Username,
		Avatar:   user.Avatar,
		Text:     req.Text,
	}
	if err := h.services.DB.AddComment(comment); err != nil {
		h.services.Logger.Errorf("[LibraryHandler] failed to store comment: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save comment"})
		return
	}

	c.JSON(http.StatusCreated, comment)
}
