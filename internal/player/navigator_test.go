package player

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amaumene/goanistream/internal/models"
)

func twoSeasons() []models.Season {
	return []models.Season{
		{Number: 1, EpisodeCount: 3, Name: "Season 1"},
		{Number: 2, EpisodeCount: 2, Name: "Season 2"},
	}
}

func TestNavigatorCrossesSeasonBoundary(t *testing.T) {
	n := NewNavigator(twoSeasons())

	season, episode := n.Position()
	assert.Equal(t, 1, season)
	assert.Equal(t, 1, episode)
	assert.True(t, n.AtStart())

	assert.True(t, n.Next()) // 1x02
	assert.True(t, n.Next()) // 1x03
	assert.True(t, n.Next()) // 2x01, boundary crossed
	season, episode = n.Position()
	assert.Equal(t, 2, season)
	assert.Equal(t, 1, episode)

	assert.True(t, n.Next()) // 2x02, series end
	assert.True(t, n.AtEnd())
	assert.False(t, n.Next())
	season, episode = n.Position()
	assert.Equal(t, 2, season)
	assert.Equal(t, 2, episode)
}

func TestNavigatorPrevLandsOnPriorSeasonLastEpisode(t *testing.T) {
	n := NewNavigator(twoSeasons())
	assert.True(t, n.SetPosition(2, 1))

	assert.True(t, n.Prev())
	season, episode := n.Position()
	assert.Equal(t, 1, season)
	assert.Equal(t, 3, episode)

	assert.True(t, n.Prev()) // 1x02
	assert.True(t, n.Prev()) // 1x01
	assert.True(t, n.AtStart())
	assert.False(t, n.Prev())
	season, episode = n.Position()
	assert.Equal(t, 1, season)
	assert.Equal(t, 1, episode)
}

func TestNavigatorSetPosition(t *testing.T) {
	n := NewNavigator(twoSeasons())

	// Unknown season numbers leave the position untouched.
	assert.False(t, n.SetPosition(9, 1))
	season, episode := n.Position()
	assert.Equal(t, 1, season)
	assert.Equal(t, 1, episode)

	// Episodes below 1 clamp to 1.
	assert.True(t, n.SetPosition(2, 0))
	season, episode = n.Position()
	assert.Equal(t, 2, season)
	assert.Equal(t, 1, episode)
}

func TestNavigatorLoadedEpisodesBound(t *testing.T) {
	n := NewNavigator(twoSeasons())

	// The loaded episode list overrides the season's nominal count.
	n.SetLoadedEpisodes(2)
	assert.True(t, n.Next()) // 1x02
	assert.True(t, n.Next()) // crosses into 2x01 despite EpisodeCount of 3
	season, episode := n.Position()
	assert.Equal(t, 2, season)
	assert.Equal(t, 1, episode)

	// Crossing a boundary resets the loaded count for the new season.
	assert.True(t, n.Next())
	assert.True(t, n.AtEnd())
}

func TestNavigatorWithoutSeasons(t *testing.T) {
	n := NewNavigator(nil)

	season, episode := n.Position()
	assert.Equal(t, 1, season)
	assert.Equal(t, 1, episode)
	assert.False(t, n.Next())
	assert.False(t, n.Prev())
	assert.False(t, n.AtStart())
	assert.False(t, n.AtEnd())
}
