// Package catalog implements the query pipeline translating a filter panel
// into one Jikan request plus the client-side post-filtering and sorting the
// API does not support natively.
package catalog

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/amaumene/goanistream/internal/constants"
	apperrors "github.com/amaumene/goanistream/internal/errors"
	"github.com/amaumene/goanistream/internal/models"
	"github.com/amaumene/goanistream/internal/services"
	"github.com/amaumene/goanistream/pkg/logger"
)

// ErrGenreMapPending signals that a genre filter is active but the
// genre-name-to-id table is not available yet. The caller retries once the
// table loads; proceeding would silently drop the genre constraint.
var ErrGenreMapPending = apperrors.New(apperrors.ErrorTypeGenreMapPending,
	"genre lookup table not loaded yet", nil)

// statusParam maps lifecycle statuses to Jikan's status parameter.
var statusParam = map[string]string{
	models.StatusOngoing:   "airing",
	models.StatusCompleted: "complete",
	models.StatusUpcoming:  "upcoming",
}

// orderParam maps sort modes to Jikan's order_by parameter.
var orderParam = map[string]string{
	models.SortPopularity:   "score",
	models.SortReleaseDate:  "start_date",
	models.SortAlphabetical: "title",
}

// Result is the display-ready outcome of one pipeline run: the ordered item
// list plus the latest featured-carousel snapshot.
type Result struct {
	Items []models.Anime
	Top   []models.Anime
}

// Pipeline produces display-ready catalog lists from filter state.
type Pipeline struct {
	jikan  services.JikanService
	logger logger.Logger

	mu  sync.Mutex
	top []models.Anime
}

func New(jikan services.JikanService, log logger.Logger) *Pipeline {
	return &Pipeline{
		jikan:  jikan,
		logger: log,
	}
}

// Fetch runs the full pipeline for one filter state: endpoint selection,
// parameter construction, one Jikan request, response mapping, client-side
// post-filtering and (for the curated endpoint) client-side sorting.
func (p *Pipeline) Fetch(ctx context.Context, f models.Filter) (*Result, error) {
	var genreMap map[string]int
	if len(f.Genres) > 0 {
		m, err := p.jikan.GenreMap(ctx)
		if err != nil || len(m) == 0 {
			// Never issue a request that silently ignores an active
			// genre constraint.
			return nil, ErrGenreMapPending
		}
		genreMap = m
	}

	useSearch := f.NeedsSearchEndpoint()
	params := BuildParams(f, genreMap, useSearch)

	var (
		raw []models.JikanAnime
		err error
	)
	if useSearch {
		raw, err = p.jikan.SearchAnime(ctx, params)
	} else {
		raw, err = p.jikan.TopAnime(ctx, params)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog fetch failed: %w", err)
	}

	items := MapItems(raw)
	items = PostFilter(items, f, useSearch)
	if !useSearch {
		SortItems(items, f.Sort)
	}

	p.mu.Lock()
	if !useSearch {
		p.top = items
	}
	top := p.top
	if len(top) > constants.FeaturedCarouselSize {
		top = top[:constants.FeaturedCarouselSize]
	}
	p.mu.Unlock()

	p.logger.Infof("[Catalog] returning %d items (search endpoint: %t)", len(items), useSearch)
	return &Result{Items: items, Top: top}, nil
}

// Top returns the latest featured-carousel snapshot, trimmed to the
// carousel length.
func (p *Pipeline) Top() []models.Anime {
	p.mu.Lock()
	defer p.mu.Unlock()

	top := p.top
	if len(top) > constants.FeaturedCarouselSize {
		top = top[:constants.FeaturedCarouselSize]
	}
	return top
}

// BuildParams constructs the outbound query parameters for one filter state.
// Genre names resolve through the lookup table; names that fail to resolve
// are dropped silently. Server-side order parameters are only honored by the
// search endpoint, so they are only sent there; alphabetical sorting is the
// one mode requesting ascending order.
func BuildParams(f models.Filter, genreMap map[string]int, useSearch bool) url.Values {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(constants.CatalogPageSize))

	if f.Query != "" {
		params.Set("q", f.Query)
	}

	if len(f.Genres) > 0 && len(genreMap) > 0 {
		ids := make([]string, 0, len(f.Genres))
		for _, name := range f.Genres {
			if id, ok := genreMap[name]; ok {
				ids = append(ids, strconv.Itoa(id))
			}
		}
		if len(ids) > 0 {
			params.Set("genres", strings.Join(ids, ","))
		}
	}

	if status, ok := statusParam[f.Status]; ok {
		params.Set("status", status)
	}

	if f.Sort != "" && useSearch {
		if orderBy, ok := orderParam[f.Sort]; ok {
			params.Set("order_by", orderBy)
			if f.Sort == models.SortAlphabetical {
				params.Set("sort", "asc")
			} else {
				params.Set("sort", "desc")
			}
		}
	}

	return params
}

// MapItems converts raw Jikan items into catalog items, dropping entirely
// any item whose media type is outside the accepted allow-list.
func MapItems(raw []models.JikanAnime) []models.Anime {
	items := make([]models.Anime, 0, len(raw))
	for _, item := range raw {
		anime := models.FromJikan(item)
		if !typeAllowed(anime.Type) {
			continue
		}
		items = append(items, anime)
	}
	return items
}

func typeAllowed(animeType string) bool {
	for _, t := range constants.AnimeTypes {
		if animeType == t {
			return true
		}
	}
	return false
}

// PostFilter applies the constraints the selected endpoint could not:
// explicit type set, year-decade bucket, language flags, and a
// case-insensitive text match over title and genre names. The text match only
// runs when the search endpoint was not used.
func PostFilter(items []models.Anime, f models.Filter, usedSearch bool) []models.Anime {
	filtered := make([]models.Anime, 0, len(items))
	for _, anime := range items {
		if len(f.Types) > 0 && !containsString(f.Types, anime.Type) {
			continue
		}
		if f.Year != "" && anime.ReleaseYear != 0 && !MatchesYearBucket(anime.ReleaseYear, f.Year) {
			continue
		}
		if f.Language == models.LanguageSub && !anime.HasSub {
			continue
		}
		if f.Language == models.LanguageDub && !anime.HasDub {
			continue
		}
		if f.Query != "" && !usedSearch && !textMatch(anime, f.Query) {
			continue
		}
		filtered = append(filtered, anime)
	}
	return filtered
}

// MatchesYearBucket reports whether a release year falls into a decade
// bucket string such as "2010s": [2010, 2019].
func MatchesYearBucket(year int, bucket string) bool {
	if len(bucket) < 4 {
		return false
	}
	start, err := strconv.Atoi(bucket[:4])
	if err != nil {
		return false
	}
	return year >= start && year <= start+9
}

func textMatch(anime models.Anime, query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(anime.Title), q) {
		return true
	}
	for _, genre := range anime.Genres {
		if strings.Contains(strings.ToLower(genre), q) {
			return true
		}
	}
	return false
}

// SortItems orders items in place: alphabetical by title, release date by
// year descending, otherwise rating descending. Missing rating or year
// counts as zero. Ordering is stable, so sorting a sorted list is a no-op.
func SortItems(items []models.Anime, mode string) {
	switch mode {
	case models.SortAlphabetical:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Title < items[j].Title
		})
	case models.SortReleaseDate:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].ReleaseYear > items[j].ReleaseYear
		})
	default:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Rating > items[j].Rating
		})
	}
}

func containsString(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
