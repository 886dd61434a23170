package indexer

import "time"

// Default Torznab category sets for the two media types.
func DefaultMovieCategories() []int {
	return []int{2000, 2010, 2020, 2030, 2040, 2045, 2050, 2060}
}

func DefaultTVCategories() []int {
	return []int{5000, 5010, 5020, 5030, 5040, 5045, 5050}
}

// Release is one candidate downloadable release returned by the aggregator.
type Release struct {
	GUID        string    `json:"guid"`
	Title       string    `json:"title"`
	Indexer     string    `json:"indexer"`
	IndexerID   int64     `json:"indexerId"`
	Size        int64     `json:"size"`
	Seeders     int       `json:"seeders"`
	Leechers    int       `json:"leechers"`
	Protocol    string    `json:"protocol"`
	DownloadURL string    `json:"downloadUrl"`
	InfoURL     string    `json:"infoUrl,omitempty"`
	PublishDate time.Time `json:"publishDate"`
	Categories  []int     `json:"categories,omitempty"`
}

// SearchInput describes one manual search.
type SearchInput struct {
	Query      string `json:"query"`
	MediaType  string `json:"mediaType,omitempty"` // "movie", "episode" or empty
	Limit      int    `json:"limit,omitempty"`
	Categories []int  `json:"categories,omitempty"`
}

// Indexer is one indexer configured on the aggregator.
type Indexer struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Enable   bool   `json:"enable"`
	Protocol string `json:"protocol"`
	Priority int    `json:"priority"`
}
