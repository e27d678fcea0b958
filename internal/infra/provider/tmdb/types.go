package tmdb

import (
	"encoding/json"
	"strconv"

	"media-catalog-service/internal/domain"
)

const imageBaseURL = "https://image.tmdb.org/t/p/w500"

// pagedResponse is the common TMDB paged envelope. Results stay raw so
// the untouched payload can be attached to each mapped item.
type pagedResponse struct {
	Page         int               `json:"page"`
	TotalPages   int               `json:"total_pages"`
	TotalResults int               `json:"total_results"`
	Results      []json.RawMessage `json:"results"`
}

// item is one TMDB result row. Movie and TV rows differ in field names
// (title/release_date vs name/first_air_date); both sets are declared
// and the mapper picks whichever is populated.
type item struct {
	ID               int     `json:"id"`
	MediaType        string  `json:"media_type,omitempty"`
	Title            string  `json:"title,omitempty"`
	Name             string  `json:"name,omitempty"`
	OriginalTitle    string  `json:"original_title,omitempty"`
	OriginalName     string  `json:"original_name,omitempty"`
	Overview         string  `json:"overview,omitempty"`
	PosterPath       string  `json:"poster_path,omitempty"`
	BackdropPath     string  `json:"backdrop_path,omitempty"`
	ProfilePath      string  `json:"profile_path,omitempty"`
	ReleaseDate      string  `json:"release_date,omitempty"`
	FirstAirDate     string  `json:"first_air_date,omitempty"`
	VoteAverage      float64 `json:"vote_average,omitempty"`
	VoteCount        int     `json:"vote_count,omitempty"`
	Runtime          int     `json:"runtime,omitempty"`
	Budget           int64   `json:"budget,omitempty"`
	NumberOfSeasons  int     `json:"number_of_seasons,omitempty"`
	NumberOfEpisodes int     `json:"number_of_episodes,omitempty"`
	Character        string  `json:"character,omitempty"`
	Job              string  `json:"job,omitempty"`
	Department       string  `json:"department,omitempty"`
	IMDBID           string  `json:"imdb_id,omitempty"`
}

// creditsResponse is the /person/{id}/combined_credits envelope. TMDB
// returns the full filmography in one call; pagination is derived
// locally.
type creditsResponse struct {
	ID   int               `json:"id"`
	Cast []json.RawMessage `json:"cast"`
	Crew []json.RawMessage `json:"crew"`
}

// seriesResponse is the /tv/{id} envelope.
type seriesResponse struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Seasons []struct {
		SeasonNumber int    `json:"season_number"`
		Name         string `json:"name"`
		EpisodeCount int    `json:"episode_count"`
		AirDate      string `json:"air_date"`
	} `json:"seasons"`
}

// seasonResponse is the /tv/{id}/season/{n} envelope.
type seasonResponse struct {
	SeasonNumber int               `json:"season_number"`
	Name         string            `json:"name"`
	Overview     string            `json:"overview"`
	AirDate      string            `json:"air_date"`
	Episodes     []episodeResponse `json:"episodes"`
}

// episodeResponse is one episode row.
type episodeResponse struct {
	SeasonNumber  int     `json:"season_number"`
	EpisodeNumber int     `json:"episode_number"`
	Name          string  `json:"name"`
	Overview      string  `json:"overview"`
	AirDate       string  `json:"air_date"`
	StillPath     string  `json:"still_path"`
	Runtime       int     `json:"runtime"`
	VoteAverage   float64 `json:"vote_average"`
}

// toProviderItem maps a TMDB row to the common provider item, keeping
// the raw payload untouched.
func (i *item) toProviderItem(mediaType domain.MediaType, raw json.RawMessage) domain.ProviderItem {
	if i.MediaType != "" {
		switch i.MediaType {
		case "movie":
			mediaType = domain.MediaTypeMovie
		case "tv":
			mediaType = domain.MediaTypeSeries
		case "person":
			mediaType = domain.MediaTypePerson
		}
	}

	title := i.Title
	if title == "" {
		title = i.Name
	}
	originalTitle := i.OriginalTitle
	if originalTitle == "" {
		originalTitle = i.OriginalName
	}
	releaseDate := i.ReleaseDate
	if releaseDate == "" {
		releaseDate = i.FirstAirDate
	}
	posterPath := i.PosterPath
	if posterPath == "" {
		posterPath = i.ProfilePath
	}

	out := domain.ProviderItem{
		ID:            strconv.Itoa(i.ID),
		MediaType:     mediaType,
		Title:         title,
		OriginalTitle: originalTitle,
		Overview:      i.Overview,
		ReleaseDate:   releaseDate,
		VoteAverage:   i.VoteAverage,
		VoteCount:     i.VoteCount,
		Runtime:       i.Runtime,
		Budget:        i.Budget,
		SeasonCount:   i.NumberOfSeasons,
		EpisodeCount:  i.NumberOfEpisodes,
		Character:     i.Character,
		Job:           i.Job,
		Department:    i.Department,
		ExternalIDs:   domain.ExternalIDs{"tmdb": strconv.Itoa(i.ID)},
		Raw:           raw,
	}
	if posterPath != "" {
		out.PosterURL = imageBaseURL + posterPath
	}
	if i.BackdropPath != "" {
		out.BackdropURL = imageBaseURL + i.BackdropPath
	}
	if i.IMDBID != "" {
		out.ExternalIDs["imdb"] = i.IMDBID
	}
	return out
}

func (e *episodeResponse) toEpisode() domain.Episode {
	out := domain.Episode{
		SeasonNumber:  e.SeasonNumber,
		EpisodeNumber: e.EpisodeNumber,
		Name:          e.Name,
		Overview:      e.Overview,
		AirDate:       e.AirDate,
		Runtime:       e.Runtime,
		VoteAverage:   e.VoteAverage,
	}
	if e.StillPath != "" {
		out.StillURL = imageBaseURL + e.StillPath
	}
	return out
}
