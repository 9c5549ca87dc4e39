package tmdb

// ListItem is one entry of a TMDB list or search response. Movies carry
// Title/ReleaseDate and shows carry Name/FirstAirDate.
type ListItem struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	PosterPath   *string `json:"poster_path"`
	BackdropPath *string `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	MediaType    string  `json:"media_type"`
	GenreIDs     []int   `json:"genre_ids"`
	Popularity   float64 `json:"popularity"`
}

// ListResponse is a paginated TMDB list
type ListResponse struct {
	Page         int        `json:"page"`
	Results      []ListItem `json:"results"`
	TotalPages   int        `json:"total_pages"`
	TotalResults int        `json:"total_results"`
}

// Genre represents a TMDB genre
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Company is a production company or network
type Company struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Country is a production country
type Country struct {
	ISO3166 string `json:"iso_3166_1"`
	Name    string `json:"name"`
}

// SpokenLanguage is a language spoken in the title
type SpokenLanguage struct {
	ISO639      string `json:"iso_639_1"`
	EnglishName string `json:"english_name"`
	Name        string `json:"name"`
}

// CastMember is a credited actor
type CastMember struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Character   string  `json:"character"`
	ProfilePath *string `json:"profile_path"`
	Order       int     `json:"order"`
}

// Video is a trailer, teaser or clip
type Video struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// Season is a season summary of a show
type Season struct {
	SeasonNumber int    `json:"season_number"`
	Name         string `json:"name"`
	EpisodeCount int    `json:"episode_count"`
	AirDate      string `json:"air_date"`
}

// ExternalIDs represents external IDs for a movie or TV show
type ExternalIDs struct {
	IMDBID *string `json:"imdb_id"`
	TVDBID *int    `json:"tvdb_id"`
}

// DetailsResponse is a movie or show with appended credits, videos and
// external ids
type DetailsResponse struct {
	ListItem

	Genres              []Genre          `json:"genres"`
	Status              string           `json:"status"`
	Runtime             *int             `json:"runtime"`
	Budget              int64            `json:"budget"`
	Revenue             int64            `json:"revenue"`
	NumberOfSeasons     int              `json:"number_of_seasons"`
	NumberOfEpisodes    int              `json:"number_of_episodes"`
	InProduction        bool             `json:"in_production"`
	Seasons             []Season         `json:"seasons"`
	Networks            []Company        `json:"networks"`
	ProductionCountries []Country        `json:"production_countries"`
	ProductionCompanies []Company        `json:"production_companies"`
	SpokenLanguages     []SpokenLanguage `json:"spoken_languages"`

	Credits struct {
		Cast []CastMember `json:"cast"`
	} `json:"credits"`

	Videos struct {
		Results []Video `json:"results"`
	} `json:"videos"`

	ExternalIDs ExternalIDs `json:"external_ids"`
}

// IMDBID returns the external id or "" when absent
func (d *DetailsResponse) IMDBID() string {
	if d.ExternalIDs.IMDBID == nil {
		return ""
	}
	return *d.ExternalIDs.IMDBID
}
