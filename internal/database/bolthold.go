// Package database provides data persistence using BoltDB through bolthold.
// It owns the durable per-user state: viewing progress, watch-later lists,
// comments, sessions, player settings and saved filter panels.
package database

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/timshannon/bolthold"

	apperrors "github.com/amaumene/goanistream/internal/errors"
	"github.com/amaumene/goanistream/internal/models"
)

const (
	dbFileMode = 0600
	dbDirMode  = 0755

	defaultDBFile = "data.db"
)

// WatchProgress is one continue-watching entry, keyed per user and anime.
type WatchProgress struct {
	Key       string    `boltholdKey:"Key" json:"-"` // username + ":" + anime id
	Username  string    `boltholdIndex:"Username" json:"username"`
	AnimeID   int       `json:"animeId"`
	Season    int       `json:"season"`
	Episode   int       `json:"episode"`
	Progress  float64   `json:"progress"` // percent complete, clamped to [0, 100]
	UpdatedAt time.Time `json:"updatedAt"`
}

// WatchLaterItem is one saved title on a user's watch-later list.
type WatchLaterItem struct {
	Key      string       `boltholdKey:"Key" json:"-"` // username + ":" + anime id
	Username string       `boltholdIndex:"Username" json:"username"`
	Anime    models.Anime `json:"anime"`
	AddedAt  time.Time    `json:"addedAt"`
}

// ViewingHistoryItem records that a user opened the player for a title.
// Logging the same title again moves it to the front of the list.
type ViewingHistoryItem struct {
	Key       string    `boltholdKey:"Key" json:"-"` // username + ":" + anime id
	Username  string    `boltholdIndex:"Username" json:"username"`
	AnimeID   int       `json:"animeId"`
	WatchedAt time.Time `json:"watchedAt"`
}

// Rating is one user's star rating for a title. Rating a title again
// replaces the previous score.
type Rating struct {
	Key       string    `boltholdKey:"Key" json:"-"` // username + ":" + anime id
	Username  string    `boltholdIndex:"Username" json:"username"`
	AnimeID   int       `json:"animeId"`
	Score     int       `json:"rating"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Comment is one user comment attached to a title.
type Comment struct {
	ID        string    `boltholdKey:"ID" json:"id"`
	AnimeID   int       `boltholdIndex:"AnimeID" json:"animeId"`
	Username  string    `json:"username"`
	Avatar    string    `json:"avatar"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session is one mock-auth login session addressed by its token.
type Session struct {
	Token     string    `boltholdKey:"Token" json:"-"`
	Username  string    `boltholdIndex:"Username" json:"username"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserSettings holds the per-user player and appearance settings.
type UserSettings struct {
	Username         string    `boltholdKey:"Username" json:"username"`
	Theme            string    `json:"theme"`
	ColorPreset      string    `json:"colorPreset"`
	Autoplay         bool      `json:"autoplay"`
	VideoServer      string    `json:"videoServer"`
	VidsrcDomain     string    `json:"vidsrcDomain"`
	SubtitleLanguage string    `json:"subtitleLanguage"`
	PreferDub        bool      `json:"preferDub"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// savedFilter keeps the raw JSON of a session's filter panel so that a
// malformed stored value can be detected and cleared on read.
type savedFilter struct {
	SessionID string `boltholdKey:"SessionID"`
	Raw       []byte
	UpdatedAt time.Time
}

// Database defines the interface for data persistence operations.
type Database interface {
	// Viewing progress, capped most-recent-first list per user
	UpsertProgress(p *WatchProgress) error
	GetProgress(username string, animeID int) (*WatchProgress, error)
	ListProgress(username string) ([]WatchProgress, error)

	// Watch-later list per user
	AddWatchLater(item *WatchLaterItem) error
	RemoveWatchLater(username string, animeID int) error
	ListWatchLater(username string) ([]WatchLaterItem, error)

	// Viewing history, capped most-recent-first list per user
	LogHistory(item *ViewingHistoryItem) error
	ListHistory(username string) ([]ViewingHistoryItem, error)
	ClearHistory(username string) error

	// Star ratings per user
	RateAnime(r *Rating) error
	GetRating(username string, animeID int) (*Rating, error)
	ListRatings(username string) ([]Rating, error)

	// Comments per anime
	AddComment(c *Comment) error
	ListComments(animeID int) ([]Comment, error)

	// Mock-auth sessions
	StoreSession(s *Session) error
	GetSession(token string) (*Session, error)
	DeleteSession(token string) error
	DeleteOldSessions(olderThan time.Duration) (int, error)

	// Per-user settings
	StoreSettings(s *UserSettings) error
	GetSettings(username string) (*UserSettings, error)

	// Saved filter state per browsing session
	SaveFilter(sessionID string, f models.Filter) error
	LoadFilter(sessionID string) (models.Filter, error)

	Close() error
}

// BoltDB implements the Database interface using bolthold.
type BoltDB struct {
	store       *bolthold.Store
	maxProgress int
	maxHistory  int
}

// NewBolt creates a new BoltDB database instance. If dbPath is empty, the
// default database file in the current directory is used.
func NewBolt(dbPath string, maxProgress, maxHistory int) (*BoltDB, error) {
	if dbPath == "" {
		dbPath = filepath.Join(".", defaultDBFile)
	}
	if maxProgress <= 0 {
		maxProgress = 20
	}
	if maxHistory <= 0 {
		maxHistory = 50
	}

	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, dbDirMode); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err := bolthold.Open(dbPath, dbFileMode, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	return &BoltDB{store: store, maxProgress: maxProgress, maxHistory: maxHistory}, nil
}

// Close closes the database connection.
func (db *BoltDB) Close() error {
	return db.store.Close()
}

func progressKey(username string, animeID int) string {
	return fmt.Sprintf("%s:%d", username, animeID)
}

// UpsertProgress records the latest viewing position for a title and trims
// the user's list to the configured cap, dropping the oldest entries.
func (db *BoltDB) UpsertProgress(p *WatchProgress) error {
	p.Key = progressKey(p.Username, p.AnimeID)
	if p.Progress > 100 {
		p.Progress = 100
	}
	if p.Progress < 0 {
		p.Progress = 0
	}
	p.UpdatedAt = time.Now()

	if err := db.store.Upsert(p.Key, p); err != nil {
		return fmt.Errorf("failed to store progress: %w", err)
	}

	return db.trimProgress(p.Username)
}

func (db *BoltDB) trimProgress(username string) error {
	entries, err := db.ListProgress(username)
	if err != nil {
		return err
	}

	for _, old := range entries[min(len(entries), db.maxProgress):] {
		if err := db.store.Delete(old.Key, WatchProgress{}); err != nil && err != bolthold.ErrNotFound {
			return fmt.Errorf("failed to trim progress: %w", err)
		}
	}
	return nil
}

// GetProgress returns the stored position for one title, or nil when the
// user has none.
func (db *BoltDB) GetProgress(username string, animeID int) (*WatchProgress, error) {
	var p WatchProgress
	err := db.store.Get(progressKey(username, animeID), &p)
	if err == bolthold.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return &p, nil
}

// ListProgress returns the user's continue-watching list, most recent first.
func (db *BoltDB) ListProgress(username string) ([]WatchProgress, error) {
	var entries []WatchProgress
	err := db.store.Find(&entries, bolthold.Where("Username").Eq(username).Index("Username"))
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})
	return entries, nil
}

// AddWatchLater saves a title on the user's watch-later list.
func (db *BoltDB) AddWatchLater(item *WatchLaterItem) error {
	item.Key = progressKey(item.Username, item.Anime.MALID)
	item.AddedAt = time.Now()

	if err := db.store.Upsert(item.Key, item); err != nil {
		return fmt.Errorf("failed to store watch-later item: %w", err)
	}
	return nil
}

// RemoveWatchLater removes a title from the user's watch-later list.
// Removing an absent title is not an error.
func (db *BoltDB) RemoveWatchLater(username string, animeID int) error {
	err := db.store.Delete(progressKey(username, animeID), WatchLaterItem{})
	if err == bolthold.ErrNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete watch-later item: %w", err)
	}
	return nil
}

// ListWatchLater returns the user's watch-later list, most recently added first.
func (db *BoltDB) ListWatchLater(username string) ([]WatchLaterItem, error) {
	var items []WatchLaterItem
	err := db.store.Find(&items, bolthold.Where("Username").Eq(username).Index("Username"))
	if err != nil {
		return nil, fmt.Errorf("failed to list watch-later items: %w", err)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].AddedAt.After(items[j].AddedAt)
	})
	return items, nil
}

// LogHistory records a player open for a title. Re-opening a title moves
// its entry to the front; the list is trimmed to the configured cap,
// dropping the oldest entries.
func (db *BoltDB) LogHistory(item *ViewingHistoryItem) error {
	item.Key = progressKey(item.Username, item.AnimeID)
	item.WatchedAt = time.Now()

	if err := db.store.Upsert(item.Key, item); err != nil {
		return fmt.Errorf("failed to store history entry: %w", err)
	}

	return db.trimHistory(item.Username)
}

func (db *BoltDB) trimHistory(username string) error {
	entries, err := db.ListHistory(username)
	if err != nil {
		return err
	}

	for _, old := range entries[min(len(entries), db.maxHistory):] {
		if err := db.store.Delete(old.Key, ViewingHistoryItem{}); err != nil && err != bolthold.ErrNotFound {
			return fmt.Errorf("failed to trim history: %w", err)
		}
	}
	return nil
}

// ListHistory returns the user's viewing history, most recent first.
func (db *BoltDB) ListHistory(username string) ([]ViewingHistoryItem, error) {
	var entries []ViewingHistoryItem
	err := db.store.Find(&entries, bolthold.Where("Username").Eq(username).Index("Username"))
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].WatchedAt.After(entries[j].WatchedAt)
	})
	return entries, nil
}

// ClearHistory removes the user's entire viewing history.
func (db *BoltDB) ClearHistory(username string) error {
	entries, err := db.ListHistory(username)
	if err != nil {
		return err
	}

	for _, item := range entries {
		if err := db.store.Delete(item.Key, ViewingHistoryItem{}); err != nil && err != bolthold.ErrNotFound {
			return fmt.Errorf("failed to clear history: %w", err)
		}
	}
	return nil
}

// RateAnime stores the user's star rating for a title, replacing any
// previous score.
func (db *BoltDB) RateAnime(r *Rating) error {
	r.Key = progressKey(r.Username, r.AnimeID)
	r.UpdatedAt = time.Now()

	if err := db.store.Upsert(r.Key, r); err != nil {
		return fmt.Errorf("failed to store rating: %w", err)
	}
	return nil
}

// GetRating returns the user's rating for a title, or nil when unrated.
func (db *BoltDB) GetRating(username string, animeID int) (*Rating, error) {
	var r Rating
	err := db.store.Get(progressKey(username, animeID), &r)
	if err == bolthold.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}
	return &r, nil
}

// ListRatings returns all of the user's ratings, most recently updated first.
func (db *BoltDB) ListRatings(username string) ([]Rating, error) {
	var ratings []Rating
	err := db.store.Find(&ratings, bolthold.Where("Username").Eq(username).Index("Username"))
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}

	sort.Slice(ratings, func(i, j int) bool {
		return ratings[i].UpdatedAt.After(ratings[j].UpdatedAt)
	})
	return ratings, nil
}

// AddComment stores a comment for a title.
func (db *BoltDB) AddComment(c *Comment) error {
	if c.ID == "" {
		c.ID = fmt.Sprintf("%d", time.Now().UnixNano())
	}
	c.CreatedAt = time.Now()

	if err := db.store.Insert(c.ID, c); err != nil {
		return fmt.Errorf("failed to store comment: %w", err)
	}
	return nil
}

// ListComments returns the comments for a title, newest first.
func (db *BoltDB) ListComments(animeID int) ([]Comment, error) {
	var comments []Comment
	err := db.store.Find(&comments, bolthold.Where("AnimeID").Eq(animeID).Index("AnimeID"))
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
	return comments, nil
}

// StoreSession stores a login session.
func (db *BoltDB) StoreSession(s *Session) error {
	s.CreatedAt = time.Now()
	if err := db.store.Upsert(s.Token, s); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// GetSession returns the session for a token, or nil when unknown.
func (db *BoltDB) GetSession(token string) (*Session, error) {
	var s Session
	err := db.store.Get(token, &s)
	if err == bolthold.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

// DeleteSession removes a session. Removing an unknown token is not an error.
func (db *BoltDB) DeleteSession(token string) error {
	err := db.store.Delete(token, Session{})
	if err == bolthold.ErrNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteOldSessions purges sessions older than the given age and reports how
// many were removed. Used by the cleanup service.
func (db *BoltDB) DeleteOldSessions(olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)

	var old []Session
	if err := db.store.Find(&old, bolthold.Where("CreatedAt").Lt(cutoff)); err != nil {
		return 0, fmt.Errorf("failed to find old sessions: %w", err)
	}

	for _, s := range old {
		if err := db.store.Delete(s.Token, Session{}); err != nil && err != bolthold.ErrNotFound {
			return 0, fmt.Errorf("failed to delete old session: %w", err)
		}
	}
	return len(old), nil
}

// StoreSettings stores the user's player settings.
func (db *BoltDB) StoreSettings(s *UserSettings) error {
	s.UpdatedAt = time.Now()
	if err := db.store.Upsert(s.Username, s); err != nil {
		return fmt.Errorf("failed to store settings: %w", err)
	}
	return nil
}

// GetSettings returns the user's stored settings, or nil when none exist.
func (db *BoltDB) GetSettings(username string) (*UserSettings, error) {
	var s UserSettings
	err := db.store.Get(username, &s)
	if err == bolthold.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &s, nil
}

// SaveFilter stores the session's filter panel verbatim as JSON.
func (db *BoltDB) SaveFilter(sessionID string, f models.Filter) error {
	raw, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to encode filter: %w", err)
	}

	rec := &savedFilter{SessionID: sessionID, Raw: raw, UpdatedAt: time.Now()}
	if err := db.store.Upsert(sessionID, rec); err != nil {
		return fmt.Errorf("failed to store filter: %w", err)
	}
	return nil
}

// LoadFilter reads the session's filter panel back. A missing record yields
// the zero filter. A malformed record is cleared and reported as corrupt
// state so the caller can substitute defaults.
func (db *BoltDB) LoadFilter(sessionID string) (models.Filter, error) {
	var rec savedFilter
	err := db.store.Get(sessionID, &rec)
	if err == bolthold.ErrNotFound {
		return models.Filter{}, nil
	}
	if err != nil {
		return models.Filter{}, fmt.Errorf("failed to get filter: %w", err)
	}

	var f models.Filter
	if err := json.Unmarshal(rec.Raw, &f); err != nil {
		// Corrupt value: clear the offending record, hand back defaults.
		if delErr := db.store.Delete(sessionID, savedFilter{}); delErr != nil && delErr != bolthold.ErrNotFound {
			return models.Filter{}, fmt.Errorf("failed to clear corrupt filter: %w", delErr)
		}
		return models.Filter{}, apperrors.New(apperrors.ErrorTypeCorruptState, "stored filter was malformed and has been cleared", err)
	}

	return f, nil
}

// saveFilterRaw stores arbitrary bytes under a session id. Only used by tests
// to exercise the corrupt-state path.
func (db *BoltDB) saveFilterRaw(sessionID string, raw []byte) error {
	rec := &savedFilter{SessionID: sessionID, Raw: raw, UpdatedAt: time.Now()}
	return db.store.Upsert(sessionID, rec)
}
