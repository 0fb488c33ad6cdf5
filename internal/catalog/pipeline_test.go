package catalog

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/goanistream/internal/models"
	"github.com/amaumene/goanistream/pkg/logger"
)

// stubJikan records which endpoint the pipeline picked and with what
// parameters, and serves canned responses.
type stubJikan struct {
	genreMap     map[string]int
	genreMapErr  error
	genreCalls   int
	searchCalls  int
	topCalls     int
	lastParams   url.Values
	searchResult []models.JikanAnime
	topResult    []models.JikanAnime
}

func (s *stubJikan) GenreMap(ctx context.Context) (map[string]int, error) {
	s.genreCalls++
	return s.genreMap, s.genreMapErr
}

func (s *stubJikan) SearchAnime(ctx context.Context, params url.Values) ([]models.JikanAnime, error) {
	s.searchCalls++
	s.lastParams = params
	return s.searchResult, nil
}

func (s *stubJikan) TopAnime(ctx context.Context, params url.Values) ([]models.JikanAnime, error) {
	s.topCalls++
	s.lastParams = params
	return s.topResult, nil
}

func (s *stubJikan) GetAnimeFull(ctx context.Context, animeID int) (*models.JikanAnime, error) {
	return nil, nil
}

func (s *stubJikan) GetExternalLinks(ctx context.Context, animeID int) ([]models.JikanExternalLink, error) {
	return nil, nil
}

func (s *stubJikan) GetRecommendations(ctx context.Context, animeID int) ([]models.Anime, error) {
	return nil, nil
}

func rawAnime(id int, title string, animeType string, year int, score float64) models.JikanAnime {
	return models.JikanAnime{
		MALID: id,
		Title: title,
		Year:  year,
		Score: score,
		Type:  animeType,
	}
}

func TestFetchDefersUntilGenreMapLoads(t *testing.T) {
	jikan := &stubJikan{}
	p := New(jikan, logger.New())

	_, err := p.Fetch(context.Background(), models.Filter{Genres: []string{"Action"}})
	assert.ErrorIs(t, err, ErrGenreMapPending)
	assert.Zero(t, jikan.searchCalls, "no request may be issued while the genre table is missing")
	assert.Zero(t, jikan.topCalls)
}

func TestFetchWithoutGenresNeverTouchesGenreMap(t *testing.T) {
	jikan := &stubJikan{topResult: []models.JikanAnime{rawAnime(1, "A", "TV", 2020, 8)}}
	p := New(jikan, logger.New())

	_, err := p.Fetch(context.Background(), models.Filter{Year: "2020s"})
	require.NoError(t, err)
	assert.Zero(t, jikan.genreCalls)
}

func TestFetchEndpointSelection(t *testing.T) {
	tests := []struct {
		name       string
		filter     models.Filter
		wantSearch bool
	}{
		{"empty filter", models.Filter{}, false},
		{"query", models.Filter{Query: "naruto"}, true},
		{"genres", models.Filter{Genres: []string{"Action"}}, true},
		{"status", models.Filter{Status: models.StatusOngoing}, true},
		{"type only", models.Filter{Types: []string{"Movie"}}, false},
		{"year only", models.Filter{Year: "2010s"}, false},
		{"sort only", models.Filter{Sort: models.SortAlphabetical}, false},
		{"language only", models.Filter{Language: models.LanguageDub}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jikan := &stubJikan{genreMap: map[string]int{"Action": 1}}
			p := New(jikan, logger.New())

			_, err := p.Fetch(context.Background(), tt.filter)
			require.NoError(t, err)
			if tt.wantSearch {
				assert.Equal(t, 1, jikan.searchCalls)
				assert.Zero(t, jikan.topCalls)
			} else {
				assert.Equal(t, 1, jikan.topCalls)
				assert.Zero(t, jikan.searchCalls)
			}
		})
	}
}

func TestBuildParamsGenreTranslation(t *testing.T) {
	genreMap := map[string]int{"Action": 1, "Romance": 22}

	params := BuildParams(models.Filter{Genres: []string{"Action", "Romance"}}, genreMap, true)
	assert.Equal(t, "1,22", params.Get("genres"))

	// Names missing from the table are dropped silently.
	params = BuildParams(models.Filter{Genres: []string{"Action", "Unheard Of"}}, genreMap, true)
	assert.Equal(t, "1", params.Get("genres"))

	params = BuildParams(models.Filter{Genres: []string{"Unheard Of"}}, genreMap, true)
	assert.Empty(t, params.Get("genres"))
}

func TestBuildParamsStatusAndOrder(t *testing.T) {
	params := BuildParams(models.Filter{Status: models.StatusOngoing}, nil, true)
	assert.Equal(t, "airing", params.Get("status"))
	params = BuildParams(models.Filter{Status: models.StatusCompleted}, nil, true)
	assert.Equal(t, "complete", params.Get("status"))
	params = BuildParams(models.Filter{Status: models.StatusUpcoming}, nil, true)
	assert.Equal(t, "upcoming", params.Get("status"))

	// Order parameters only apply to the search endpoint.
	params = BuildParams(models.Filter{Sort: models.SortPopularity}, nil, false)
	assert.Empty(t, params.Get("order_by"))

	params = BuildParams(models.Filter{Query: "x", Sort: models.SortPopularity}, nil, true)
	assert.Equal(t, "score", params.Get("order_by"))
	assert.Equal(t, "desc", params.Get("sort"))

	params = BuildParams(models.Filter{Query: "x", Sort: models.SortReleaseDate}, nil, true)
	assert.Equal(t, "start_date", params.Get("order_by"))
	assert.Equal(t, "desc", params.Get("sort"))

	// Alphabetical is the one ascending mode.
	params = BuildParams(models.Filter{Query: "x", Sort: models.SortAlphabetical}, nil, true)
	assert.Equal(t, "title", params.Get("order_by"))
	assert.Equal(t, "asc", params.Get("sort"))
}

func TestMapItemsDropsDisallowedTypes(t *testing.T) {
	raw := []models.JikanAnime{
		rawAnime(1, "Show", "TV", 2020, 8),
		rawAnime(2, "Film", "Movie", 2019, 7),
		rawAnime(3, "Jingle", "Music", 2020, 6),
		rawAnime(4, "Promo", "CM", 2020, 5),
		rawAnime(5, "Side Story", "OVA", 2018, 7.5),
	}

	items := MapItems(raw)
	require.Len(t, items, 3)
	assert.Equal(t, "Show", items[0].Title)
	assert.Equal(t, "Film", items[1].Title)
	assert.Equal(t, "Side Story", items[2].Title)
}

func TestMatchesYearBucket(t *testing.T) {
	assert.True(t, MatchesYearBucket(2010, "2010s"))
	assert.True(t, MatchesYearBucket(2017, "2010s"))
	assert.True(t, MatchesYearBucket(2019, "2010s"))
	assert.False(t, MatchesYearBucket(2017, "2020s"))
	assert.False(t, MatchesYearBucket(2020, "2010s"))
	assert.False(t, MatchesYearBucket(2009, "2010s"))
	assert.False(t, MatchesYearBucket(2017, "bad"))
}

func TestPostFilterYearBucketSkipsUnknownYears(t *testing.T) {
	items := []models.Anime{
		{MALID: 1, Title: "Dated", ReleaseYear: 2015},
		{MALID: 2, Title: "Undated"},
		{MALID: 3, Title: "Too New", ReleaseYear: 2022},
	}

	filtered := PostFilter(items, models.Filter{Year: "2010s"}, true)
	require.Len(t, filtered, 2)
	assert.Equal(t, "Dated", filtered[0].Title)
	// Unknown release year never disqualifies an item.
	assert.Equal(t, "Undated", filtered[1].Title)
}

func TestPostFilterLanguageAndTypes(t *testing.T) {
	items := []models.Anime{
		{MALID: 1, Title: "Dubbed Show", Type: "TV", HasSub: true, HasDub: true},
		{MALID: 2, Title: "Sub Only", Type: "TV", HasSub: true},
		{MALID: 3, Title: "Dubbed Film", Type: "Movie", HasSub: true, HasDub: true},
	}

	filtered := PostFilter(items, models.Filter{Language: models.LanguageDub}, true)
	require.Len(t, filtered, 2)

	filtered = PostFilter(items, models.Filter{Types: []string{"Movie"}}, true)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Dubbed Film", filtered[0].Title)

	filtered = PostFilter(items, models.Filter{Types: []string{"Movie"}, Language: models.LanguageSub}, true)
	require.Len(t, filtered, 1)
}

func TestPostFilterTextMatchOnlyOffSearch(t *testing.T) {
	items := []models.Anime{
		{MALID: 1, Title: "Cowboy Bebop", Type: "TV", Genres: []string{"Sci-Fi"}},
		{MALID: 2, Title: "Slice of Life Show", Type: "TV", Genres: []string{"Comedy"}},
	}

	// Off the search endpoint the text constraint applies locally, matching
	// title or genre names case-insensitively.
	filtered := PostFilter(items, models.Filter{Query: "bebop"}, false)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Cowboy Bebop", filtered[0].Title)

	filtered = PostFilter(items, models.Filter{Query: "comedy"}, false)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Slice of Life Show", filtered[0].Title)

	// The search endpoint already applied it server-side.
	filtered = PostFilter(items, models.Filter{Query: "bebop"}, true)
	assert.Len(t, filtered, 2)
}

func TestSortItemsIsIdempotent(t *testing.T) {
	base := []models.Anime{
		{MALID: 1, Title: "B", ReleaseYear: 2010, Rating: 7.1},
		{MALID: 2, Title: "A", ReleaseYear: 2020, Rating: 9.0},
		{MALID: 3, Title: "C", ReleaseYear: 2015, Rating: 8.2},
		{MALID: 4, Title: "D", ReleaseYear: 2015, Rating: 8.2},
	}

	for _, mode := range []string{models.SortPopularity, models.SortAlphabetical, models.SortReleaseDate, ""} {
		items := append([]models.Anime(nil), base...)
		SortItems(items, mode)
		once := append([]models.Anime(nil), items...)
		SortItems(items, mode)
		assert.Equal(t, once, items, "sorting twice must equal sorting once for mode %q", mode)
	}
}

func TestSortItemsModes(t *testing.T) {
	items := []models.Anime{
		{MALID: 1, Title: "B", ReleaseYear: 2010, Rating: 7.1},
		{MALID: 2, Title: "A", ReleaseYear: 2020, Rating: 9.0},
		{MALID: 3, Title: "C", Rating: 8.2}, // missing year sorts last
	}

	SortItems(items, models.SortAlphabetical)
	assert.Equal(t, []int{2, 1, 3}, ids(items))

	SortItems(items, models.SortReleaseDate)
	assert.Equal(t, []int{2, 1, 3}, ids(items))

	SortItems(items, models.SortPopularity)
	assert.Equal(t, []int{2, 3, 1}, ids(items))
}

func ids(items []models.Anime) []int {
	out := make([]int, len(items))
	for i, a := range items {
		out[i] = a.MALID
	}
	return out
}

func TestTopSnapshotOnlyUpdatesOffSearch(t *testing.T) {
	jikan := &stubJikan{
		genreMap:     map[string]int{"Action": 1},
		topResult:    []models.JikanAnime{rawAnime(1, "Top Pick", "TV", 2020, 9)},
		searchResult: []models.JikanAnime{rawAnime(2, "Search Hit", "TV", 2021, 8)},
	}
	p := New(jikan, logger.New())

	res, err := p.Fetch(context.Background(), models.Filter{})
	require.NoError(t, err)
	require.Len(t, res.Top, 1)
	assert.Equal(t, "Top Pick", res.Top[0].Title)

	// A search-backed fetch keeps serving the last curated snapshot.
	res, err = p.Fetch(context.Background(), models.Filter{Query: "search"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Search Hit", res.Items[0].Title)
	require.Len(t, res.Top, 1)
	assert.Equal(t, "Top Pick", res.Top[0].Title)
}

func TestTopTrimsToCarouselLength(t *testing.T) {
	raw := make([]models.JikanAnime, 8)
	for i := range raw {
		raw[i] = rawAnime(i+1, "Show", "TV", 2020, float64(10-i))
	}
	jikan := &stubJikan{topResult: raw}
	p := New(jikan, logger.New())

	_, err := p.Fetch(context.Background(), models.Filter{})
	require.NoError(t, err)
	assert.Len(t, p.Top(), 5)
}
