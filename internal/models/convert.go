package models

// FromJikan maps a raw Jikan item into the displayable Anime shape.
// The English title is preferred when present; its presence also serves as
// the proxy for dub availability. Subtitles are assumed available.
func FromJikan(item JikanAnime) Anime {
	title := item.Title
	if item.TitleEnglish != "" {
		title = item.TitleEnglish
	}

	genres := make([]string, 0, len(item.Genres))
	for _, g := range item.Genres {
		genres = append(genres, g.Name)
	}

	studio := "Unknown"
	if len(item.Studios) > 0 {
		studio = item.Studios[0].Name
	}

	synopsis := item.Synopsis
	if synopsis == "" {
		synopsis = "No synopsis available."
	}

	return Anime{
		MALID:         item.MALID,
		Title:         title,
		Thumbnail:     item.Images.JPG.LargeImageURL,
		BannerImage:   item.Images.JPG.LargeImageURL,
		Synopsis:      synopsis,
		Genres:        genres,
		ReleaseYear:   item.Year,
		Status:        statusFromJikan(item.Status),
		TotalEpisodes: item.Episodes,
		Rating:        item.Score,
		Type:          item.Type,
		Studio:        studio,
		HasSub:        true,
		HasDub:        item.TitleEnglish != "",
	}
}

func statusFromJikan(status string) string {
	switch status {
	case "Finished Airing":
		return StatusCompleted
	case "Currently Airing":
		return StatusOngoing
	default:
		return StatusUpcoming
	}
}

// FromJikanRecommendation maps a recommendation entry into a sparse Anime
// card; only identity and artwork are known at this point.
func FromJikanRecommendation(entry JikanRecommendationEntry) Anime {
	return Anime{
		MALID:       entry.MALID,
		Title:       entry.Title,
		Thumbnail:   entry.Images.JPG.LargeImageURL,
		BannerImage: entry.Images.JPG.LargeImageURL,
		Status:      StatusOngoing,
		HasSub:      true,
	}
}
