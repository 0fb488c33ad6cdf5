package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/amaumene/goanistream/internal/constants"
	"github.com/amaumene/goanistream/internal/database"
	"github.com/amaumene/goanistream/internal/models"
)

const (
	sessionCookieName = "anistream_session"
	sessionCookieAge  = 30 * 24 * 60 * 60 // seconds
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Avatar   string `json:"avatar"`
}

// handleLogin creates a mock-auth session. The token is the base64-encoded
// JSON of the user, set both as a cookie and returned in the body for
// clients that prefer a header.
func (h *Handler) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}

	user := models.User{Username: req.Username, Avatar: req.Avatar}
	if user.Avatar == "" {
		user.Avatar = fmt.Sprintf("https://api.dicebear.com/8.x/bottts/svg?seed=%s", url.QueryEscape(user.Username))
	}

	payload, err := json.Marshal(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	token := base64.StdEncoding.EncodeToString(payload)

	session := &database.Session{Token: token, Username: user.Username, Avatar: user.Avatar}
	if err := h.services.DB.StoreSession(session); err != nil {
		h.services.Logger.Errorf("[AuthHandler] failed to store session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	c.SetCookie(sessionCookieName, token, sessionCookieAge, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (h *Handler) handleLogout(c *gin.Context) {
	if token := h.sessionToken(c); token != "" {
		if err := h.services.DB.DeleteSession(token); err != nil {
			h.services.Logger.Errorf("[AuthHandler] failed to delete session: %v", err)
		}
	}

	c.SetCookie(sessionCookieName, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

func (h *Handler) handleMe(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *Handler) sessionToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if cookie, err := c.Cookie(sessionCookieName); err == nil {
		return cookie
	}
	return ""
}

// currentUser resolves the calling user from the session token. A token
// missing from the store still counts when it decodes cleanly (the cookie
// fallback); a malformed token is treated as corrupt state and the cookie
// cleared.
func (h *Handler) currentUser(c *gin.Context) (models.User, bool) {
	token := h.sessionToken(c)
	if token == "" {
		return models.User{}, false
	}

	if session, err := h.services.DB.GetSession(token); err == nil && session != nil {
		return models.User{Username: session.Username, Avatar: session.Avatar}, true
	}

	payload, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		h.services.Logger.Warnf("[AuthHandler] clearing malformed session token")
		c.SetCookie(sessionCookieName, "", -1, "/", "", false, true)
		return models.User{}, false
	}

	var user models.User
	if err := json.Unmarshal(payload, &user); err != nil || user.Username == "" {
		h.services.Logger.Warnf("[AuthHandler] clearing malformed session token")
		c.SetCookie(sessionCookieName, "", -1, "/", "", false, true)
		return models.User{}, false
	}

	return user, true
}

// defaultSettings is the baseline merged under any stored value.
func defaultSettings(username string) *database.UserSettings {
	return &database.UserSettings{
		Username:         username,
		Theme:            "dark",
		ColorPreset:      "neon-purple",
		Autoplay:         true,
		VideoServer:      constants.ProviderVidsrc,
		VidsrcDomain:     constants.DefaultVidsrcDomain,
		SubtitleLanguage: "en",
	}
}

func (h *Handler) handleGetSettings(c *gin.Context) {
	username := c.Param("user")

	settings, err := h.services.DB.GetSettings(username)
	if err != nil {
		h.services.Logger.Errorf("[AuthHandler] failed to load settings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}
	if settings == nil {
		settings = defaultSettings(username)
	}

	c.JSON(http.StatusOK, settings)
}

type settingsRequest struct {
	Theme            *string `json:"theme"`
	ColorPreset      *string `json:"colorPreset"`
	Autoplay         *bool   `json:"autoplay"`
	VideoServer      *string `json:"videoServer"`
	VidsrcDomain     *string `json:"vidsrcDomain"`
	SubtitleLanguage *string `json:"subtitleLanguage"`
	PreferDub        *bool   `json:"preferDub"`
}

// handleUpdateSettings merges a partial update over the stored settings
// (or the defaults when none exist), mirroring the original's
// spread-over-defaults behavior.
func (h *Handler) handleUpdateSettings(c *gin.Context) {
	username := c.Param("user")

	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid settings payload"})
		return
	}

	settings, err := h.services.DB.GetSettings(username)
	if err != nil {
		h.services.Logger.Errorf("[AuthHandler] failed to load settings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}
	if settings == nil {
		settings = defaultSettings(username)
	}

	if req.Theme != nil {
		settings.Theme = *req.Theme
	}
	if req.ColorPreset != nil {
		settings.ColorPreset = *req.ColorPreset
	}
	if req.Autoplay != nil {
		settings.Autoplay = *req.Autoplay
	}
	if req.VideoServer != nil {
		settings.VideoServer = *req.VideoServer
	}
	if req.VidsrcDomain != nil {
		settings.VidsrcDomain = *req.VidsrcDomain
	}
	if req.SubtitleLanguage != nil {
		settings.SubtitleLanguage = *req.SubtitleLanguage
	}
	if req.PreferDub != nil {
		settings.PreferDub = *req.PreferDub
	}

	if err := h.services.DB.StoreSettings(settings); err != nil {
		h.services.Logger.Errorf("[AuthHandler] failed to store settings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save settings"})
		return
	}

	c.JSON(http.StatusOK, settings)
}
