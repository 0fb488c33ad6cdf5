package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/amaumene/goanistream/internal/errors"
	"github.com/amaumene/goanistream/internal/models"
	"github.com/amaumene/goanistream/pkg/logger"
)

type stubJikan struct {
	detail    *models.JikanAnime
	detailErr error
	links     []models.JikanExternalLink
	linksErr  error
	recs      []models.Anime
	recsErr   error

	// Optional hook replacing the canned detail response.
	onDetail func(ctx context.Context) (*models.JikanAnime, error)
}

func (s *stubJikan) GenreMap(ctx context.Context) (map[string]int, error) { return nil, nil }

func (s *stubJikan) SearchAnime(ctx context.Context, params url.Values) ([]models.JikanAnime, error) {
	return nil, nil
}

func (s *stubJikan) TopAnime(ctx context.Context, params url.Values) ([]models.JikanAnime, error) {
	return nil, nil
}

func (s *stubJikan) GetAnimeFull(ctx context.Context, animeID int) (*models.JikanAnime, error) {
	if s.onDetail != nil {
		return s.onDetail(ctx)
	}
	return s.detail, s.detailErr
}

func (s *stubJikan) GetExternalLinks(ctx context.Context, animeID int) ([]models.JikanExternalLink, error) {
	return s.links, s.linksErr
}

func (s *stubJikan) GetRecommendations(ctx context.Context, animeID int) ([]models.Anime, error) {
	return s.recs, s.recsErr
}

type stubTMDB struct {
	searchResults []models.TMDBSearchResult
	searchErr     error
	searchCalls   int

	externalIDs *models.TMDBExternalIDs
	extErr      error
	extCalls    int

	tvDetails *models.TMDBTVDetails
	tvErr     error

	episodes []models.Episode
}

func (s *stubTMDB) SearchByTitle(ctx context.Context, mediaType, query string) ([]models.TMDBSearchResult, error) {
	s.searchCalls++
	return s.searchResults, s.searchErr
}

func (s *stubTMDB) GetExternalIDs(ctx context.Context, mediaType string, tmdbID int) (*models.TMDBExternalIDs, error) {
	s.extCalls++
	return s.externalIDs, s.extErr
}

func (s *stubTMDB) GetTVDetails(ctx context.Context, tmdbID int) (*models.TMDBTVDetails, error) {
	return s.tvDetails, s.tvErr
}

func (s *stubTMDB) GetSeasonEpisodes(ctx context.Context, tmdbID, season int) ([]models.Episode, error) {
	return s.episodes, nil
}

func tvDetail(title string) *models.JikanAnime {
	return &models.JikanAnime{MALID: 1, Title: title, Type: "TV"}
}

func TestResolveUsesExternalLinksFirst(t *testing.T) {
	jikan := &stubJikan{
		detail: tvDetail("Cowboy Bebop"),
		links: []models.JikanExternalLink{
			{Name: "Wikipedia", URL: "https://en.wikipedia.org/wiki/Cowboy_Bebop"},
			{Name: "TheMovieDB", URL: "https://www.themoviedb.org/tv/30991"},
			{Name: "IMDb", URL: "https://www.imdb.com/title/tt0213338/"},
		},
	}
	tmdb := &stubTMDB{externalIDs: &models.TMDBExternalIDs{IMDBID: "tt9999999"}}
	r := New(jikan, tmdb, logger.New())

	res, err := r.Resolve(context.Background(), "s1", 1)
	require.NoError(t, err)
	assert.Equal(t, 30991, res.Identity.TMDBID)
	assert.Equal(t, "tv", res.Identity.MediaType)
	assert.Equal(t, "tt0213338", res.Identity.IMDBID)
	assert.Empty(t, res.StreamError)

	// Both ids came from the links, so no fallback may run and the found
	// IMDb id survives untouched.
	assert.Zero(t, tmdb.searchCalls)
	assert.Zero(t, tmdb.extCalls)
}

func TestResolveSearchFallbackPicksPlausibleClosestTitle(t *testing.T) {
	jikan := &stubJikan{detail: tvDetail("Frieren")}
	tmdb := &stubTMDB{
		searchResults: []models.TMDBSearchResult{
			// Not animation, not Japanese: skipped no matter how close.
			{ID: 10, Name: "Frieren", OriginCountry: []string{"US"}},
			// Plausible but a worse title match.
			{ID: 20, Name: "Frieren: Beyond Journey's End", GenreIDs: []int{16}},
			// Plausible and the closest title.
			{ID: 30, Name: "Frieren", OriginCountry: []string{"JP"}},
		},
		externalIDs: &models.TMDBExternalIDs{},
	}
	r := New(jikan, tmdb, logger.New())

	res, err := r.Resolve(context.Background(), "s1", 1)
	require.NoError(t, err)
	assert.Equal(t, 30, res.Identity.TMDBID)
	assert.Equal(t, "tv", res.Identity.MediaType)
	assert.Equal(t, 1, tmdb.searchCalls)
}

func TestResolveBackfillsMissingIMDBID(t *testing.T) {
	jikan := &stubJikan{
		detail: tvDetail("Show"),
		links: []models.JikanExternalLink{
			{Name: "TheMovieDB", URL: "https://www.themoviedb.org/tv/123"},
		},
	}
	tmdb := &stubTMDB{externalIDs: &models.TMDBExternalIDs{IMDBID: "tt0000001"}}
	r := New(jikan, tmdb, logger.New())

	res, err := r.Resolve(context.Background(), "s1", 1)
	require.NoError(t, err)
	assert.Equal(t, 123, res.Identity.TMDBID)
	assert.Equal(t, "tt0000001", res.Identity.IMDBID)
	assert.Equal(t, 1, tmdb.extCalls)
}

func TestResolveCascadeExhaustionSetsStreamError(t *testing.T) {
	jikan := &stubJikan{detail: tvDetail("Obscure Show")}
	tmdb := &stubTMDB{searchErr: errors.New("boom")}
	r := New(jikan, tmdb, logger.New())

	res, err := r.Resolve(context.Background(), "s1", 1)
	require.NoError(t, err)
	assert.False(t, res.Identity.HasAny())
	assert.NotEmpty(t, res.StreamError)
	// The rest of the page data stays usable.
	assert.Equal(t, "Obscure Show", res.Anime.Title)
}

func TestResolveMovieSkipsSeasons(t *testing.T) {
	jikan := &stubJikan{
		detail: &models.JikanAnime{MALID: 1, Title: "A Movie", Type: "Movie"},
		links: []models.JikanExternalLink{
			{Name: "TheMovieDB", URL: "https://www.themoviedb.org/movie/456"},
		},
	}
	tmdb := &stubTMDB{
		externalIDs: &models.TMDBExternalIDs{IMDBID: "tt0000002"},
		tvDetails:   &models.TMDBTVDetails{Seasons: []models.Season{{Number: 1, EpisodeCount: 12}}},
	}
	r := New(jikan, tmdb, logger.New())

	res, err := r.Resolve(context.Background(), "s1", 1)
	require.NoError(t, err)
	assert.Equal(t, "movie", res.Identity.MediaType)
	assert.Empty(t, res.Seasons)
}

func TestResolveFiltersSeasons(t *testing.T) {
	jikan := &stubJikan{
		detail: tvDetail("Long Show"),
		links: []models.JikanExternalLink{
			{Name: "TheMovieDB", URL: "https://www.themoviedb.org/tv/123"},
		},
	}
	tmdb := &stubTMDB{
		externalIDs: &models.TMDBExternalIDs{IMDBID: "tt0000003"},
		tvDetails: &models.TMDBTVDetails{Seasons: []models.Season{
			{Number: 0, EpisodeCount: 4, Name: "Specials"},
			{Number: 1, EpisodeCount: 12, Name: "Season 1"},
			{Number: 2, EpisodeCount: 0, Name: "Season 2"},
			{Number: 3, EpisodeCount: 13, Name: "Season 3"},
		}},
	}
	r := New(jikan, tmdb, logger.New())

	res, err := r.Resolve(context.Background(), "s1", 1)
	require.NoError(t, err)
	require.Len(t, res.Seasons, 2)
	assert.Equal(t, 1, res.Seasons[0].Number)
	assert.Equal(t, 3, res.Seasons[1].Number)
}

func TestResolveDetailFailureIsFatal(t *testing.T) {
	jikan := &stubJikan{detailErr: errors.New("boom")}
	r := New(jikan, &stubTMDB{}, logger.New())

	_, err := r.Resolve(context.Background(), "s1", 1)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorTypeUpstreamFailure, appErr.Type)
}

func TestResolveRecommendationsAreBestEffort(t *testing.T) {
	jikan := &stubJikan{
		detail:   tvDetail("Show"),
		linksErr: errors.New("links down"),
		recsErr:  errors.New("recs down"),
	}
	r := New(jikan, &stubTMDB{}, logger.New())

	res, err := r.Resolve(context.Background(), "s1", 1)
	require.NoError(t, err)
	assert.Empty(t, res.Recommendations)
}

func TestResolveSupersededByNewerSelection(t *testing.T) {
	started := make(chan struct{})
	jikan := &stubJikan{
		detail: tvDetail("Show"),
		links: []models.JikanExternalLink{
			{Name: "TheMovieDB", URL: "https://www.themoviedb.org/tv/123"},
		},
	}
	first := true
	jikan.onDetail = func(ctx context.Context) (*models.JikanAnime, error) {
		if first {
			first = false
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return jikan.detail, nil
	}
	tmdb := &stubTMDB{externalIDs: &models.TMDBExternalIDs{IMDBID: "tt0000004"}}
	r := New(jikan, tmdb, logger.New())

	firstErr := make(chan error, 1)
	go func() {
		_, err := r.Resolve(context.Background(), "session", 1)
		firstErr <- err
	}()

	<-started
	res, err := r.Resolve(context.Background(), "session", 2)
	require.NoError(t, err)
	assert.Equal(t, 123, res.Identity.TMDBID)

	select {
	case err := <-firstErr:
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrorTypeResolveSuperseded, appErr.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("superseded resolution never returned")
	}
}

func TestParseTMDBLink(t *testing.T) {
	tests := []struct {
		url       string
		id        int
		mediaType string
		ok        bool
	}{
		{"https://www.themoviedb.org/tv/30991", 30991, "tv", true},
		{"https://www.themoviedb.org/movie/129", 129, "movie", true},
		{"https://www.themoviedb.org/tv/30991/", 30991, "tv", true},
		{"https://www.themoviedb.org/person/123", 0, "", false},
		{"https://www.themoviedb.org/tv/not-a-number", 0, "", false},
		{"https://www.themoviedb.org/", 0, "", false},
	}

	for _, tt := range tests {
		id, mediaType, ok := parseTMDBLink(tt.url)
		assert.Equal(t, tt.ok, ok, tt.url)
		assert.Equal(t, tt.id, id, tt.url)
		assert.Equal(t, tt.mediaType, mediaType, tt.url)
	}
}

func TestScopeManager(t *testing.T) {
	m := NewScopeManager()

	ctx1, token1 := m.Begin(context.Background(), "s")
	assert.True(t, m.Current("s", token1))

	ctx2, token2 := m.Begin(context.Background(), "s")
	assert.False(t, m.Current("s", token1))
	assert.True(t, m.Current("s", token2))

	// The older scope's context is cancelled when the newer one begins.
	assert.Error(t, ctx1.Err())
	assert.NoError(t, ctx2.Err())

	// Scopes are per session.
	_, other := m.Begin(context.Background(), "other")
	assert.True(t, m.Current("other", other))
	assert.True(t, m.Current("s", token2))
}

func TestScopeManagerEndReleasesEntries(t *testing.T) {
	m := NewScopeManager()

	ctx1, token1 := m.Begin(context.Background(), "s")
	assert.True(t, m.End("s", token1))
	assert.Equal(t, 0, m.Len())
	assert.Error(t, ctx1.Err())

	// A stale token must not tear down the newer scope.
	_, stale := m.Begin(context.Background(), "s")
	ctx3, token3 := m.Begin(context.Background(), "s")
	assert.False(t, m.End("s", stale))
	assert.Equal(t, 1, m.Len())
	assert.NoError(t, ctx3.Err())

	assert.True(t, m.End("s", token3))
	assert.Equal(t, 0, m.Len())
}

func TestResolveDropsScopeEntryWhenDone(t *testing.T) {
	jikan := &stubJikan{
		detail: tvDetail("Cowboy Bebop"),
		links: []models.JikanExternalLink{
			{Name: "TheMovieDB", URL: "https://www.themoviedb.org/tv/30991"},
			{Name: "IMDb", URL: "https://www.imdb.com/title/tt0213338/"},
		},
	}
	r := New(jikan, &stubTMDB{}, logger.New())

	for i := 0; i < 10; i++ {
		_, err := r.Resolve(context.Background(), fmt.Sprintf("session-%d", i), 1)
		require.NoError(t, err)
	}
	assert.Equal(t, 0, r.scopes.Len())
}
