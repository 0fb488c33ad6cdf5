// Package player builds video-embed source URLs and tracks episode
// navigation over a resolved season list.
package player

import (
	"fmt"

	"github.com/amaumene/goanistream/internal/constants"
)

// Target addresses one playable item: the resolved media type and TMDB id,
// plus season and episode for TV.
type Target struct {
	MediaType string
	TMDBID    int
	Season    int
	Episode   int
}

// Provider is the closed set of interchangeable video-embed backends. Each
// variant carries only the knobs its URL shape supports.
type Provider interface {
	sourceURL(t Target) string
}

// EmbedAPI is the single-endpoint provider using query parameters.
type EmbedAPI struct{}

// Vidsrc is the path-based provider with selectable mirror domains and
// optional autoplay and subtitle-language flags.
type Vidsrc struct {
	Domain       string
	Autoplay     bool
	SubtitleLang string
}

// Videasy is the plain path-based provider.
type Videasy struct{}

// BuildSourceURL is a pure function of (provider, target) returning the
// iframe URL, or "" when no valid URL can be produced: a missing TMDB id or
// media type is always fatal, and TV requires both season and episode.
// No network call is made; the returned URL points at a third-party player
// the application does not control.
func BuildSourceURL(p Provider, t Target) string {
	if p == nil || t.TMDBID <= 0 {
		return ""
	}
	switch t.MediaType {
	case "movie":
	case "tv":
		if t.Season <= 0 || t.Episode <= 0 {
			return ""
		}
	default:
		return ""
	}

	return p.sourceURL(t)
}

func (EmbedAPI) sourceURL(t Target) string {
	base := fmt.Sprintf("%s/?id=%d", constants.EmbedAPIBaseURL, t.TMDBID)
	if t.MediaType == "movie" {
		return base
	}
	return fmt.Sprintf("%s&s=%d&e=%d", base, t.Season, t.Episode)
}

func (v Vidsrc) sourceURL(t Target) string {
	domain := v.Domain
	if !validDomain(domain) {
		domain = constants.DefaultVidsrcDomain
	}

	base := fmt.Sprintf("https://%s/embed/%s/%d", domain, t.MediaType, t.TMDBID)
	if t.MediaType == "tv" {
		base = fmt.Sprintf("%s/%d-%d", base, t.Season, t.Episode)
	}

	query := ""
	if v.Autoplay {
		query = "autoplay=1"
		if t.MediaType == "tv" {
			query += "&autonext=1"
		}
	}
	if v.SubtitleLang != "" {
		if query != "" {
			query += "&"
		}
		query += "ds_lang=" + v.SubtitleLang
	}
	if query != "" {
		base += "?" + query
	}
	return base
}

func (Videasy) sourceURL(t Target) string {
	base := fmt.Sprintf("%s/%s/%d", constants.VideasyBaseURL, t.MediaType, t.TMDBID)
	if t.MediaType == "tv" {
		base = fmt.Sprintf("%s/%d-%d", base, t.Season, t.Episode)
	}
	return base
}

func validDomain(domain string) bool {
	for _, d := range constants.VidsrcDomains {
		if domain == d {
			return true
		}
	}
	return false
}

// ProviderFor maps a provider name and per-user settings onto the matching
// variant. Unknown names fall back to the vidsrc provider.
func ProviderFor(name, domain string, autoplay bool, subtitleLang string) Provider {
	switch name {
	case constants.ProviderEmbedAPI:
		return EmbedAPI{}
	case constants.ProviderVideasy:
		return Videasy{}
	default:
		return Vidsrc{Domain: domain, Autoplay: autoplay, SubtitleLang: subtitleLang}
	}
}
