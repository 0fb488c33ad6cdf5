// Package models defines the domain types shared across services and handlers.
package models

// Anime is one displayable title sourced from Jikan. Immutable once fetched;
// a re-fetch replaces the value wholesale.
type Anime struct {
	MALID         int      `json:"id"`
	Title         string   `json:"title"`
	Thumbnail     string   `json:"thumbnail"`
	BannerImage   string   `json:"bannerImage"`
	Synopsis      string   `json:"synopsis"`
	Genres        []string `json:"genres"`
	ReleaseYear   int      `json:"releaseYear,omitempty"`
	Status        string   `json:"status"`
	TotalEpisodes int      `json:"totalEpisodes,omitempty"`
	Rating        float64  `json:"rating,omitempty"`
	Type          string   `json:"type,omitempty"`
	Studio        string   `json:"studio"`
	HasSub        bool     `json:"hasSub"`
	HasDub        bool     `json:"hasDub"`
}

// Lifecycle status values for Anime.Status.
const (
	StatusOngoing   = "Ongoing"
	StatusCompleted = "Completed"
	StatusUpcoming  = "Upcoming"
)

// Sort modes for Filter.Sort.
const (
	SortPopularity   = "popularity"
	SortAlphabetical = "alphabetical"
	SortReleaseDate  = "release_date"
)

// Language preferences for Filter.Language.
const (
	LanguageSub = "Sub"
	LanguageDub = "Dub"
	LanguageRaw = "Raw"
)

// Filter holds the user-chosen catalog constraints. Every field is optional;
// the zero value means "no constraint". Stored verbatim as JSON and merged
// with defaults when read back.
type Filter struct {
	Query    string   `json:"query,omitempty"`
	Genres   []string `json:"genres,omitempty"`
	Types    []string `json:"types,omitempty"`
	Status   string   `json:"status,omitempty"`
	Year     string   `json:"year,omitempty"`
	Sort     string   `json:"sort,omitempty"`
	Language string   `json:"language,omitempty"`
}

// IsEmpty reports whether no constraint is set at all.
func (f Filter) IsEmpty() bool {
	return f.Query == "" && len(f.Genres) == 0 && len(f.Types) == 0 &&
		f.Status == "" && f.Year == "" && f.Sort == "" && f.Language == ""
}

// NeedsSearchEndpoint reports whether the filter requires Jikan's general
// search endpoint instead of the curated top list.
func (f Filter) NeedsSearchEndpoint() bool {
	return f.Query != "" || len(f.Genres) > 0 || f.Status != ""
}

// MediaIdentity is the resolved (TMDB id, IMDb id, media type) triple used to
// address a video embed provider. Recomputed per selection, never persisted.
type MediaIdentity struct {
	TMDBID    int    `json:"tmdbId,omitempty"`
	IMDBID    string `json:"imdbId,omitempty"`
	MediaType string `json:"mediaType,omitempty"` // "tv" or "movie"
}

// HasTMDB reports whether a TMDB id was resolved.
func (m MediaIdentity) HasTMDB() bool { return m.TMDBID > 0 }

// HasAny reports whether any usable id was resolved.
func (m MediaIdentity) HasAny() bool { return m.TMDBID > 0 || m.IMDBID != "" }

// Season is one selectable TV season from TMDB.
type Season struct {
	Number       int    `json:"season_number"`
	EpisodeCount int    `json:"episode_count"`
	Name         string `json:"name"`
}

// Episode is one episode of a season from TMDB.
type Episode struct {
	Number    int    `json:"episode_number"`
	Name      string `json:"name"`
	Overview  string `json:"overview"`
	StillPath string `json:"still_path,omitempty"`
}

// User is the mock-auth account shape.
type User struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// CatalogResponse is the payload returned by the catalog endpoint.
type CatalogResponse struct {
	Items []Anime `json:"items"`
	Top   []Anime `json:"top,omitempty"`
}
