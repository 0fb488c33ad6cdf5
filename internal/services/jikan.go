package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/amaumene/goanistream/internal/cache"
	"github.com/amaumene/goanistream/internal/constants"
	"github.com/amaumene/goanistream/internal/models"
	"github.com/amaumene/goanistream/pkg/httputil"
	"github.com/amaumene/goanistream/pkg/logger"
	"github.com/amaumene/goanistream/pkg/ratelimiter"
)

// Jikan is the client for the MyAnimeList metadata API. All reads go through
// the shared LRU cache and are paced by a token bucket honoring Jikan's
// public rate limit.
type Jikan struct {
	baseURL     string
	cache       *cache.LRUCache
	rateLimiter *ratelimiter.TokenBucket
	httpClient  *http.Client
	logger      logger.Logger
}

func NewJikan(c *cache.LRUCache) *Jikan {
	return &Jikan{
		baseURL:     constants.JikanBaseURL,
		cache:       c,
		rateLimiter: ratelimiter.NewTokenBucket(constants.JikanRateBurst, constants.JikanRateLimit),
		httpClient:  httputil.NewHTTPClient(constants.UpstreamTimeout),
		logger:      logger.New(),
	}
}

// SetBaseURL overrides the API origin. Used by tests.
func (j *Jikan) SetBaseURL(baseURL string) {
	j.baseURL = baseURL
}

func (j *Jikan) get(ctx context.Context, path string, out interface{}) error {
	j.rateLimiter.Wait()

	apiURL := j.baseURL + path
	j.logger.Debugf("[Jikan] API URL: %s", apiURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build Jikan request: %w", err)
	}

	resp, err := j.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch Jikan data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Jikan API error: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode Jikan response: %w", err)
	}

	return nil
}

// GenreMap returns the genre-name-to-id lookup table, fetched once and cached.
func (j *Jikan) GenreMap(ctx context.Context) (map[string]int, error) {
	const cacheKey = "jikan:genres"

	if data, found := j.cache.Get(cacheKey); found {
		return data.(map[string]int), nil
	}

	var genreResp models.JikanGenreResponse
	if err := j.get(ctx, "/genres/anime", &genreResp); err != nil {
		return nil, err
	}

	genreMap := make(map[string]int, len(genreResp.Data))
	for _, g := range genreResp.Data {
		genreMap[g.Name] = g.MALID
	}

	j.cache.Set(cacheKey, genreMap)
	j.logger.Debugf("[Jikan] loaded %d genres", len(genreMap))
	return genreMap, nil
}

// SearchAnime queries the general /anime search endpoint.
func (j *Jikan) SearchAnime(ctx context.Context, params url.Values) ([]models.JikanAnime, error) {
	return j.list(ctx, "/anime", params)
}

// TopAnime queries the curated /top/anime endpoint.
func (j *Jikan) TopAnime(ctx context.Context, params url.Values) ([]models.JikanAnime, error) {
	return j.list(ctx, "/top/anime", params)
}

func (j *Jikan) list(ctx context.Context, path string, params url.Values) ([]models.JikanAnime, error) {
	cacheKey := fmt.Sprintf("jikan:list:%s?%s", path, params.Encode())
	if data, found := j.cache.Get(cacheKey); found {
		return data.([]models.JikanAnime), nil
	}

	var listResp models.JikanListResponse
	if err := j.get(ctx, path+"?"+params.Encode(), &listResp); err != nil {
		return nil, err
	}

	j.cache.Set(cacheKey, listResp.Data)
	return listResp.Data, nil
}

// GetAnimeFull fetches the full detail record for one title.
func (j *Jikan) GetAnimeFull(ctx context.Context, animeID int) (*models.JikanAnime, error) {
	cacheKey := fmt.Sprintf("jikan:full:%d", animeID)
	if data, found := j.cache.Get(cacheKey); found {
		return data.(*models.JikanAnime), nil
	}

	var detailResp models.JikanAnimeResponse
	if err := j.get(ctx, fmt.Sprintf("/anime/%d/full", animeID), &detailResp); err != nil {
		return nil, err
	}

	j.cache.Set(cacheKey, &detailResp.Data)
	return &detailResp.Data, nil
}

// GetExternalLinks fetches the cross-reference links for one title.
func (j *Jikan) GetExternalLinks(ctx context.Context, animeID int) ([]models.JikanExternalLink, error) {
	cacheKey := fmt.Sprintf("jikan:external:%d", animeID)
	if data, found := j.cache.Get(cacheKey); found {
		return data.([]models.JikanExternalLink), nil
	}

	var extResp models.JikanExternalResponse
	if err := j.get(ctx, fmt.Sprintf("/anime/%d/external", animeID), &extResp); err != nil {
		return nil, err
	}

	j.cache.Set(cacheKey, extResp.Data)
	return extResp.Data, nil
}

// GetRecommendations fetches related titles, trimmed to the display limit.
func (j *Jikan) GetRecommendations(ctx context.Context, animeID int) ([]models.Anime, error) {
	cacheKey := fmt.Sprintf("jikan:recs:%d", animeID)
	if data, found := j.cache.Get(cacheKey); found {
		return data.([]models.Anime), nil
	}

	var recResp models.JikanRecommendationsResponse
	if err := j.get(ctx, fmt.Sprintf("/anime/%d/recommendations", animeID), &recResp); err != nil {
		return nil, err
	}

	entries := recResp.Data
	if len(entries) > constants.MaxRecommendations {
		entries = entries[:constants.MaxRecommendations]
	}

	recs := make([]models.Anime, 0, len(entries))
	for _, rec := range entries {
		recs = append(recs, models.FromJikanRecommendation(rec.Entry))
	}

	j.cache.Set(cacheKey, recs)
	return recs, nil
}
