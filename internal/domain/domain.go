package domain

// Anime stores information about an anime as mirrored from the Jikan v4 API.
// Scalar fields map to native columns, nested fields are stored as JSON text.
type Anime struct {
	MalID          int       `json:"mal_id" yaml:"malid"`
	URL            string    `json:"url" yaml:"url,omitempty"`
	Images         Images    `json:"images" yaml:"-"`
	Trailer        Trailer   `json:"trailer" yaml:"-"`
	Approved       bool      `json:"approved" yaml:"-"`
	Titles         []Title   `json:"titles" yaml:"-"`
	Title          string    `json:"title" yaml:"title"`
	TitleEnglish   string    `json:"title_english" yaml:"enTitle,omitempty"`
	TitleJapanese  string    `json:"title_japanese" yaml:"-"`
	TitleSynonyms  []string  `json:"title_synonyms" yaml:"-"`
	Type           string    `json:"type" yaml:"type"`
	Source         string    `json:"source" yaml:"-"`
	Episodes       int       `json:"episodes" yaml:"episodes,omitempty"`
	Status         string    `json:"status" yaml:"-"`
	Airing         bool      `json:"airing" yaml:"-"`
	Aired          Aired     `json:"aired" yaml:"-"`
	Duration       string    `json:"duration" yaml:"-"`
	Rating         string    `json:"rating" yaml:"-"`
	Score          float64   `json:"score" yaml:"-"`
	ScoredBy       int       `json:"scored_by" yaml:"-"`
	Rank           int       `json:"rank" yaml:"-"`
	Popularity     int       `json:"popularity" yaml:"-"`
	Members        int       `json:"members" yaml:"-"`
	Favorites      int       `json:"favorites" yaml:"-"`
	Synopsis       string    `json:"synopsis" yaml:"-"`
	Background     string    `json:"background" yaml:"-"`
	Season         string    `json:"season" yaml:"-"`
	Year           int       `json:"year" yaml:"year,omitempty"`
	Broadcast      Broadcast `json:"broadcast" yaml:"-"`
	Producers      []Entity  `json:"producers" yaml:"-"`
	Licensors      []Entity  `json:"licensors" yaml:"-"`
	Studios        []Entity  `json:"studios" yaml:"-"`
	Genres         []Entity  `json:"genres" yaml:"-"`
	ExplicitGenres []Entity  `json:"explicit_genres" yaml:"-"`
	Themes         []Entity  `json:"themes" yaml:"-"`
	Demographics   []Entity  `json:"demographics" yaml:"-"`
}

type Images struct {
	JPG  ImageSet `json:"jpg"`
	WebP ImageSet `json:"webp"`
}

type ImageSet struct {
	ImageURL      string `json:"image_url"`
	SmallImageURL string `json:"small_image_url"`
	LargeImageURL string `json:"large_image_url"`
}

type Trailer struct {
	YoutubeID string `json:"youtube_id"`
	URL       string `json:"url"`
	EmbedURL  string `json:"embed_url"`
}

type Title struct {
	Type  string `json:"type"`
	Title string `json:"title"`
}

// Aired keeps the upstream ISO timestamps as strings, they are display data only.
type Aired struct {
	From   string `json:"from"`
	To     string `json:"to"`
	String string `json:"string"`
}

type Broadcast struct {
	Day      string `json:"day"`
	Time     string `json:"time"`
	Timezone string `json:"timezone"`
	String   string `json:"string"`
}

// Entity is a named MAL relation such as a studio, genre or producer.
type Entity struct {
	MalID int    `json:"mal_id"`
	Type  string `json:"type"`
	Name  string `json:"name"`
	URL   string `json:"url"`
}
