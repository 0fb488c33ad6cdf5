package constants

// Video embed provider identifiers.
const (
	ProviderEmbedAPI = "embedapi"
	ProviderVidsrc   = "vidsrc"
	ProviderVideasy  = "videasy"
)

const (
	EmbedAPIBaseURL = "https://player.embed-api.stream"
	VideasyBaseURL  = "https://player.videasy.net"

	DefaultVidsrcDomain = "vsrc.su"
)

// VidsrcDomains lists the known-good mirror domains for the vidsrc provider.
var VidsrcDomains = []string{
	"vsrc.su",
	"vidsrc.xyz",
	"vidsrc.in",
	"vidsrc.pm",
	"vidsrc.net",
	"vidsrc.vc",
	"vidsrc.io",
}

// SubtitleLanguages lists the subtitle language codes offered by the player
// settings for providers that honor them.
var SubtitleLanguages = []string{"en", "es", "fr", "de", "it", "pt", "ja"}
