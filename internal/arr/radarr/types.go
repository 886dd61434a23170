package radarr

// Movie is a title managed by the movie automation service.
type Movie struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	TmdbID           int64  `json:"tmdbId"`
	Year             int    `json:"year"`
	HasFile          bool   `json:"hasFile"`
	Monitored        bool   `json:"monitored"`
	QualityProfileID int64  `json:"qualityProfileId"`
	RootFolderPath   string `json:"rootFolderPath"`
}

// AddMovieInput holds the fields sent when adding a title.
type AddMovieInput struct {
	Title            string          `json:"title"`
	TmdbID           int64           `json:"tmdbId"`
	QualityProfileID int64           `json:"qualityProfileId"`
	RootFolderPath   string          `json:"rootFolderPath"`
	Monitored        bool            `json:"monitored"`
	AddOptions       MovieAddOptions `json:"addOptions"`
}

// MovieAddOptions controls post-add behavior.
type MovieAddOptions struct {
	SearchForMovie bool `json:"searchForMovie"`
}

// QueuePage is one page of the download queue.
type QueuePage struct {
	Page         int           `json:"page"`
	PageSize     int           `json:"pageSize"`
	TotalRecords int           `json:"totalRecords"`
	Records      []QueueRecord `json:"records"`
}

// QueueRecord is one in-progress download as reported by the queue endpoint.
type QueueRecord struct {
	ID                    int64  `json:"id"`
	MovieID               int64  `json:"movieId"`
	Title                 string `json:"title"`
	Status                string `json:"status"`
	TrackedDownloadStatus string `json:"trackedDownloadStatus"`
	TrackedDownloadState  string `json:"trackedDownloadState"`
	SizeLeft              int64  `json:"sizeleft"`
}

// Active reports whether the entry represents work still in flight.
// Completed and failed entries must not count as "downloading".
func (r QueueRecord) Active() bool {
	switch r.Status {
	case "completed", "failed":
		return false
	}
	return true
}

// QualityProfile is a quality profile configured on the service.
type QualityProfile struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
