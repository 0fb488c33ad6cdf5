package models

// JikanListResponse is the envelope for Jikan list endpoints (/anime, /top/anime).
type JikanListResponse struct {
	Data []JikanAnime `json:"data"`
}

// JikanAnimeResponse is the envelope for the full-detail endpoint.
type JikanAnimeResponse struct {
	Data JikanAnime `json:"data"`
}

// JikanAnime is the raw Jikan anime shape, trimmed to the fields consumed.
type JikanAnime struct {
	MALID        int          `json:"mal_id"`
	Title        string       `json:"title"`
	TitleEnglish string       `json:"title_english"`
	Images       JikanImages  `json:"images"`
	Synopsis     string       `json:"synopsis"`
	Genres       []JikanNamed `json:"genres"`
	Year         int          `json:"year"`
	Status       string       `json:"status"`
	Episodes     int          `json:"episodes"`
	Score        float64      `json:"score"`
	Type         string       `json:"type"`
	Studios      []JikanNamed `json:"studios"`
}

type JikanImages struct {
	JPG JikanImageSet `json:"jpg"`
}

type JikanImageSet struct {
	ImageURL      string `json:"image_url"`
	LargeImageURL string `json:"large_image_url"`
}

// JikanNamed covers Jikan's {mal_id, name} sub-objects (genres, studios).
type JikanNamed struct {
	MALID int    `json:"mal_id"`
	Name  string `json:"name"`
}

// JikanGenreResponse is the envelope for /genres/anime.
type JikanGenreResponse struct {
	Data []JikanNamed `json:"data"`
}

// JikanExternalResponse is the envelope for /anime/{id}/external.
type JikanExternalResponse struct {
	Data []JikanExternalLink `json:"data"`
}

// JikanExternalLink is one cross-reference link (TheMovieDB, IMDb, ...).
type JikanExternalLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// JikanRecommendationsResponse is the envelope for /anime/{id}/recommendations.
type JikanRecommendationsResponse struct {
	Data []JikanRecommendation `json:"data"`
}

type JikanRecommendation struct {
	Entry JikanRecommendationEntry `json:"entry"`
}

type JikanRecommendationEntry struct {
	MALID  int         `json:"mal_id"`
	Title  string      `json:"title"`
	Images JikanImages `json:"images"`
}
