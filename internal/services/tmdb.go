package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/amaumene/goanistream/internal/cache"
	"github.com/amaumene/goanistream/internal/constants"
	apperrors "github.com/amaumene/goanistream/internal/errors"
	"github.com/amaumene/goanistream/internal/models"
	"github.com/amaumene/goanistream/pkg/httputil"
	"github.com/amaumene/goanistream/pkg/logger"
	"github.com/amaumene/goanistream/pkg/ratelimiter"
)

// TMDB is the client for the secondary media-database API. It backs the
// identity-resolution fallbacks: title search, external-ids backfill and
// season/episode data. The API key travels as a query parameter, which is
// what TMDB requires.
type TMDB struct {
	apiKey      string
	baseURL     string
	cache       *cache.LRUCache
	rateLimiter *ratelimiter.TokenBucket
	httpClient  *http.Client
	logger      logger.Logger
}

func NewTMDB(apiKey string, c *cache.LRUCache) *TMDB {
	return &TMDB{
		apiKey:      apiKey,
		baseURL:     constants.TMDBBaseURL,
		cache:       c,
		rateLimiter: ratelimiter.NewTokenBucket(constants.TMDBRateBurst, constants.TMDBRateLimit),
		httpClient:  httputil.NewHTTPClient(constants.UpstreamTimeout),
		logger:      logger.New(),
	}
}

// SetBaseURL overrides the API origin. Used by tests.
func (t *TMDB) SetBaseURL(baseURL string) {
	t.baseURL = baseURL
}

// SetAPIKey replaces the API key at runtime.
func (t *TMDB) SetAPIKey(apiKey string) {
	t.apiKey = apiKey
}

func (t *TMDB) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if t.apiKey == "" {
		return apperrors.NewAPIKeyMissingError("TMDB")
	}

	t.rateLimiter.Wait()

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", t.apiKey)

	apiURL := t.baseURL + path + "?" + params.Encode()
	t.logger.Debugf("[TMDB] API URL: %s", path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build TMDB request: %w", err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch TMDB data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("TMDB API error: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode TMDB response: %w", err)
	}

	return nil
}

// SearchByTitle searches one media type ("movie" or "tv") for a title.
func (t *TMDB) SearchByTitle(ctx context.Context, mediaType, query string) ([]models.TMDBSearchResult, error) {
	cacheKey := fmt.Sprintf("tmdb:search:%s:%s", mediaType, query)
	if data, found := t.cache.Get(cacheKey); found {
		return data.([]models.TMDBSearchResult), nil
	}

	params := url.Values{}
	params.Set("query", query)

	var searchResp models.TMDBSearchResponse
	if err := t.get(ctx, "/search/"+mediaType, params, &searchResp); err != nil {
		return nil, err
	}

	t.cache.Set(cacheKey, searchResp.Results)
	return searchResp.Results, nil
}

// GetExternalIDs fetches the external ids (IMDb) for a TMDB id and type.
func (t *TMDB) GetExternalIDs(ctx context.Context, mediaType string, tmdbID int) (*models.TMDBExternalIDs, error) {
	cacheKey := fmt.Sprintf("tmdb:extids:%s:%d", mediaType, tmdbID)
	if data, found := t.cache.Get(cacheKey); found {
		return data.(*models.TMDBExternalIDs), nil
	}

	var ids models.TMDBExternalIDs
	if err := t.get(ctx, fmt.Sprintf("/%s/%d/external_ids", mediaType, tmdbID), nil, &ids); err != nil {
		return nil, err
	}

	t.cache.Set(cacheKey, &ids)
	return &ids, nil
}

// GetTVDetails fetches the TV show record, including its season list.
func (t *TMDB) GetTVDetails(ctx context.Context, tmdbID int) (*models.TMDBTVDetails, error) {
	cacheKey := fmt.Sprintf("tmdb:tv:%d", tmdbID)
	if data, found := t.cache.Get(cacheKey); found {
		return data.(*models.TMDBTVDetails), nil
	}

	var details models.TMDBTVDetails
	if err := t.get(ctx, fmt.Sprintf("/tv/%d", tmdbID), nil, &details); err != nil {
		return nil, err
	}

	t.cache.Set(cacheKey, &details)
	return &details, nil
}

// GetSeasonEpisodes fetches the episode list for one season.
func (t *TMDB) GetSeasonEpisodes(ctx context.Context, tmdbID, season int) ([]models.Episode, error) {
	cacheKey := fmt.Sprintf("tmdb:season:%d:%d", tmdbID, season)
	if data, found := t.cache.Get(cacheKey); found {
		return data.([]models.Episode), nil
	}

	var seasonResp models.TMDBSeasonDetails
	if err := t.get(ctx, fmt.Sprintf("/tv/%d/season/%d", tmdbID, season), nil, &seasonResp); err != nil {
		return nil, err
	}

	t.cache.Set(cacheKey, seasonResp.Episodes)
	return seasonResp.Episodes, nil
}
