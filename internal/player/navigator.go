package player

import (
	"github.com/amaumene/goanistream/internal/models"
)

// Navigator is the episode navigation state machine over a fetched season
// list. Positions are (season, episode) pairs; both ends of the series are
// terminal.
type Navigator struct {
	seasons   []models.Season
	seasonIdx int
	episode   int

	// Number of episodes actually loaded for the current season; when the
	// episode list fetch is still pending this is zero and the season's
	// nominal episode count bounds navigation instead.
	loadedEpisodes int
}

// NewNavigator starts at episode 1 of the first listed season.
func NewNavigator(seasons []models.Season) *Navigator {
	return &Navigator{
		seasons: seasons,
		episode: 1,
	}
}

// Position returns the current season number and episode.
func (n *Navigator) Position() (season, episode int) {
	if len(n.seasons) == 0 {
		return 1, n.episode
	}
	return n.seasons[n.seasonIdx].Number, n.episode
}

// SetPosition jumps to a stored position, e.g. when resuming from saved
// progress. Unknown season numbers are ignored and the position is kept.
func (n *Navigator) SetPosition(seasonNumber, episode int) bool {
	for i, s := range n.seasons {
		if s.Number == seasonNumber {
			n.seasonIdx = i
			if episode < 1 {
				episode = 1
			}
			n.episode = episode
			n.loadedEpisodes = 0
			return true
		}
	}
	return false
}

// SetLoadedEpisodes records how many episodes the current season's episode
// list fetch returned.
func (n *Navigator) SetLoadedEpisodes(count int) {
	n.loadedEpisodes = count
}

func (n *Navigator) episodeBound() int {
	if n.loadedEpisodes > 0 {
		return n.loadedEpisodes
	}
	if len(n.seasons) == 0 {
		return 0
	}
	return n.seasons[n.seasonIdx].EpisodeCount
}

// AtStart reports whether the position is episode 1 of the first season.
func (n *Navigator) AtStart() bool {
	return len(n.seasons) > 0 && n.seasonIdx == 0 && n.episode == 1
}

// AtEnd reports whether the position is the last episode of the last season.
func (n *Navigator) AtEnd() bool {
	return len(n.seasons) > 0 &&
		n.seasonIdx == len(n.seasons)-1 &&
		n.episode >= n.episodeBound()
}

// Next advances one episode, crossing into the next season's episode 1 at
// the boundary. At the final episode of the final season it is a no-op.
func (n *Navigator) Next() bool {
	if len(n.seasons) == 0 {
		return false
	}

	if n.episode < n.episodeBound() {
		n.episode++
		return true
	}
	if n.seasonIdx < len(n.seasons)-1 {
		n.seasonIdx++
		n.episode = 1
		n.loadedEpisodes = 0
		return true
	}
	return false
}

// Prev steps one episode back, landing on the prior season's last episode
// at the boundary. At episode 1 of the first season it is a no-op.
func (n *Navigator) Prev() bool {
	if len(n.seasons) == 0 {
		return false
	}

	if n.episode > 1 {
		n.episode--
		return true
	}
	if n.seasonIdx > 0 {
		n.seasonIdx--
		n.episode = n.seasons[n.seasonIdx].EpisodeCount
		n.loadedEpisodes = 0
		return true
	}
	return false
}
