// Package resolver implements the player identity resolution cascade: given
// a catalog item id it fills in a MediaIdentity (TMDB id, IMDb id, media
// type) through Jikan external links with TMDB search and external-ids
// fallbacks, then loads the selectable season list for TV titles.
package resolver

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/amaumene/goanistream/internal/errors"
	"github.com/amaumene/goanistream/internal/models"
	"github.com/amaumene/goanistream/internal/services"
	"github.com/amaumene/goanistream/pkg/logger"
)

// TMDB's animation genre id, used to judge search-fallback plausibility.
const tmdbAnimationGenre = 16

var imdbIDPattern = regexp.MustCompile(`tt\d+`)

// Resolution is the outcome of one cascade run. StreamError carries the
// user-visible message on cascade exhaustion; the rest of the page data
// stays usable.
type Resolution struct {
	Anime           models.Anime         `json:"anime"`
	Identity        models.MediaIdentity `json:"identity"`
	Seasons         []models.Season      `json:"seasons,omitempty"`
	Recommendations []models.Anime       `json:"recommendations,omitempty"`
	StreamError     string               `json:"streamError,omitempty"`
}

// Resolver runs the cascade. Per-session resolution scopes make a newer
// selection cancel the in-flight resolution of the previous one, so a late
// response can never clobber newer state.
type Resolver struct {
	jikan  services.JikanService
	tmdb   services.TMDBService
	scopes *ScopeManager
	logger logger.Logger
}

func New(jikan services.JikanService, tmdb services.TMDBService, log logger.Logger) *Resolver {
	return &Resolver{
		jikan:  jikan,
		tmdb:   tmdb,
		scopes: NewScopeManager(),
		logger: log,
	}
}

// Resolve runs the cascade for one selection within the session's resolution
// scope. A concurrent newer selection for the same session cancels this one;
// the stale result is dropped explicitly and reported as superseded.
func (r *Resolver) Resolve(ctx context.Context, sessionID string, animeID int) (*Resolution, error) {
	scopeCtx, token := r.scopes.Begin(ctx, sessionID)

	res, err := r.resolve(scopeCtx, animeID)
	if !r.scopes.End(sessionID, token) {
		return nil, apperrors.New(apperrors.ErrorTypeResolveSuperseded,
			"resolution superseded by a newer selection", scopeCtx.Err())
	}
	return res, err
}

func (r *Resolver) resolve(ctx context.Context, animeID int) (*Resolution, error) {
	var (
		detail *models.JikanAnime
		links  []models.JikanExternalLink
		recs   []models.Anime
	)

	// Detail, external links and recommendations carry no data dependency,
	// so they are fetched together. Only the detail fetch is required; the
	// other two degrade to absence.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		detail, err = r.jikan.GetAnimeFull(gctx, animeID)
		return err
	})
	g.Go(func() error {
		l, err := r.jikan.GetExternalLinks(gctx, animeID)
		if err != nil {
			r.logger.Debugf("[Resolver] external links unavailable for %d: %v", animeID, err)
			return nil
		}
		links = l
		return nil
	})
	g.Go(func() error {
		rec, err := r.jikan.GetRecommendations(gctx, animeID)
		if err != nil {
			r.logger.Debugf("[Resolver] recommendations unavailable for %d: %v", animeID, err)
			return nil
		}
		recs = rec
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.NewUpstreamError("failed to fetch detailed anime data", err)
	}

	anime := models.FromJikan(*detail)

	identity := models.MediaIdentity{MediaType: mediaTypeFor(anime)}
	applyExternalLinks(&identity, links)

	// The cascade never revisits data already obtained: a found TMDB or
	// IMDb id survives every later step.
	if !identity.HasTMDB() {
		r.searchFallback(ctx, &identity, anime)
	}
	if identity.HasTMDB() && identity.IMDBID == "" {
		r.backfillIMDB(ctx, &identity)
	}

	res := &Resolution{
		Anime:           anime,
		Identity:        identity,
		Recommendations: recs,
	}

	if identity.HasTMDB() && identity.MediaType == "tv" {
		res.Seasons = r.fetchSeasons(ctx, identity.TMDBID)
	}

	if !identity.HasAny() {
		res.StreamError = apperrors.NewNoStreamIDError(anime.Title).Message
	}

	return res, nil
}

// mediaTypeFor infers the TMDB media type from the item's own type field.
func mediaTypeFor(anime models.Anime) string {
	if anime.Type == "Movie" {
		return "movie"
	}
	return "tv"
}

// applyExternalLinks extracts TMDB and IMDb identifiers from the
// cross-reference list. The TMDB link encodes the numeric id in its trailing
// path segment and the media type in the one before it.
func applyExternalLinks(identity *models.MediaIdentity, links []models.JikanExternalLink) {
	for _, link := range links {
		switch link.Name {
		case "TheMovieDB":
			if id, mediaType, ok := parseTMDBLink(link.URL); ok {
				identity.TMDBID = id
				identity.MediaType = mediaType
			}
		case "IMDb":
			if match := imdbIDPattern.FindString(link.URL); match != "" && identity.IMDBID == "" {
				identity.IMDBID = match
			}
		}
	}
}

func parseTMDBLink(rawURL string) (int, string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, "", false
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 {
		return 0, "", false
	}

	idStr := segments[len(segments)-1]
	mediaType := segments[len(segments)-2]
	if mediaType != "tv" && mediaType != "movie" {
		return 0, "", false
	}

	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		return 0, "", false
	}
	return id, mediaType, true
}

// searchFallback queries TMDB by title within the media type inferred from
// the item's own type. A candidate is plausible when TMDB tags it as
// animation or as Japanese origin; among plausible candidates the closest
// title by edit distance wins. Failures are swallowed: the cascade moves on
// without an id.
func (r *Resolver) searchFallback(ctx context.Context, identity *models.MediaIdentity, anime models.Anime) {
	searchType := mediaTypeFor(anime)

	results, err := r.tmdb.SearchByTitle(ctx, searchType, anime.Title)
	if err != nil {
		r.logger.Debugf("[Resolver] TMDB search fallback failed for %q: %v", anime.Title, err)
		return
	}

	best := pickPlausibleMatch(results, anime.Title)
	if best == nil {
		return
	}

	identity.TMDBID = best.ID
	identity.MediaType = searchType
}

func pickPlausibleMatch(results []models.TMDBSearchResult, title string) *models.TMDBSearchResult {
	var (
		best     *models.TMDBSearchResult
		bestDist int
	)

	for i := range results {
		r := &results[i]
		if !plausible(r) {
			continue
		}

		dist := levenshtein.ComputeDistance(
			strings.ToLower(title),
			strings.ToLower(r.DisplayTitle()),
		)
		if best == nil || dist < bestDist {
			best = r
			bestDist = dist
		}
	}
	return best
}

func plausible(r *models.TMDBSearchResult) bool {
	for _, id := range r.GenreIDs {
		if id == tmdbAnimationGenre {
			return true
		}
	}
	for _, country := range r.OriginCountry {
		if country == "JP" {
			return true
		}
	}
	return false
}

// backfillIMDB fills a missing IMDb id from TMDB's external-ids endpoint.
// A previously found IMDb id is never overwritten.
func (r *Resolver) backfillIMDB(ctx context.Context, identity *models.MediaIdentity) {
	ids, err := r.tmdb.GetExternalIDs(ctx, identity.MediaType, identity.TMDBID)
	if err != nil {
		r.logger.Debugf("[Resolver] external-ids backfill failed for %d: %v", identity.TMDBID, err)
		return
	}
	if identity.IMDBID == "" && ids.IMDBID != "" {
		identity.IMDBID = ids.IMDBID
	}
}

// fetchSeasons loads the selectable season list, keeping only seasons with
// a positive number and episode count. Best-effort.
func (r *Resolver) fetchSeasons(ctx context.Context, tmdbID int) []models.Season {
	details, err := r.tmdb.GetTVDetails(ctx, tmdbID)
	if err != nil || details == nil {
		r.logger.Debugf("[Resolver] season list unavailable for %d: %v", tmdbID, err)
		return nil
	}

	seasons := make([]models.Season, 0, len(details.Seasons))
	for _, s := range details.Seasons {
		if s.Number > 0 && s.EpisodeCount > 0 {
			seasons = append(seasons, s)
		}
	}
	return seasons
}

// Episodes loads the episode list for one season of a resolved TV title.
func (r *Resolver) Episodes(ctx context.Context, tmdbID, season int) ([]models.Episode, error) {
	return r.tmdb.GetSeasonEpisodes(ctx, tmdbID, season)
}
