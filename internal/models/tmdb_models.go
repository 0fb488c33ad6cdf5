package models

// TMDBSearchResponse is the envelope for /search/{movie|tv}.
type TMDBSearchResponse struct {
	Results []TMDBSearchResult `json:"results"`
}

// TMDBSearchResult is one search hit. Name is set for TV, Title for movies.
type TMDBSearchResult struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Title         string   `json:"title"`
	OriginalName  string   `json:"original_name"`
	GenreIDs      []int    `json:"genre_ids"`
	OriginCountry []string `json:"origin_country"`
}

// DisplayTitle returns whichever of Name/Title is populated.
func (r TMDBSearchResult) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

// TMDBExternalIDs is the /{movie|tv}/{id}/external_ids payload.
type TMDBExternalIDs struct {
	IMDBID string `json:"imdb_id"`
}

// TMDBTVDetails is the /tv/{id} payload, trimmed to season data.
type TMDBTVDetails struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Seasons []Season `json:"seasons"`
}

// TMDBSeasonDetails is the /tv/{id}/season/{n} payload.
type TMDBSeasonDetails struct {
	SeasonNumber int       `json:"season_number"`
	Episodes     []Episode `json:"episodes"`
}
