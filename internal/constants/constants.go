// Package constants defines application-wide constants and vocabularies.
package constants

const (
	AppName    = "GoAniStream"
	AppVersion = "1.0.0"

	// Default configuration values
	DefaultPort     = "5000"
	DefaultLogLevel = "info"

	// Cache settings
	DefaultCacheSize = 2000
	DefaultCacheTTL  = 6 // hours

	// Rate limiting (requests per second, burst capacity)
	JikanRateLimit = 3
	JikanRateBurst = 3
	TMDBRateLimit  = 20
	TMDBRateBurst  = 5

	// Catalog page size requested from Jikan
	CatalogPageSize = 25

	// Featured carousel length
	FeaturedCarouselSize = 5

	// Recommendations shown on the player page
	MaxRecommendations = 6

	// Continue-watching entries kept per user, most recent first
	MaxWatchProgressEntries = 20

	// Viewing-history entries kept per user, most recent first
	MaxViewingHistoryEntries = 50

	// Star-rating bounds
	MinRatingScore = 1
	MaxRatingScore = 5
)

// API base URLs. Overridable in tests.
const (
	JikanBaseURL = "https://api.jikan.moe/v4"
	TMDBBaseURL  = "https://api.themoviedb.org/3"
)

// AnimeTypes is the accepted media type allow-list; items outside it are
// dropped before any further filtering.
var AnimeTypes = []string{"TV", "Movie", "OVA", "Special", "ONA"}

// AnimeStatuses lists the lifecycle states exposed to clients.
var AnimeStatuses = []string{"Ongoing", "Completed", "Upcoming"}

// YearBuckets lists the selectable release-decade filters.
var YearBuckets = []string{"2020s", "2010s", "2000s", "1990s"}

// Languages lists the selectable language preferences.
var Languages = []string{"Sub", "Dub", "Raw"}

// Genres lists the genre names offered by the filter panel. Names are
// translated to Jikan ids through the genre map at request time.
var Genres = []string{
	"Action", "Adventure", "Comedy", "Drama", "Fantasy", "Horror",
	"Mecha", "Music", "Mystery", "Psychological", "Romance", "Sci-Fi",
	"Slice of Life", "Sports", "Supernatural", "Thriller", "Shounen",
	"Shoujo", "Isekai",
}
