package sonarr

// Series is a show managed by the TV automation service.
type Series struct {
	ID               int64            `json:"id"`
	Title            string           `json:"title"`
	TvdbID           int64            `json:"tvdbId"`
	Year             int              `json:"year"`
	Monitored        bool             `json:"monitored"`
	QualityProfileID int64            `json:"qualityProfileId"`
	RootFolderPath   string           `json:"rootFolderPath"`
	SeasonFolder     bool             `json:"seasonFolder"`
	SeriesType       string           `json:"seriesType"`
	Statistics       SeriesStatistics `json:"statistics"`
	Seasons          []Season         `json:"seasons,omitempty"`
}

// Season is one season entry on a series, as returned by lookup.
type Season struct {
	SeasonNumber int64            `json:"seasonNumber"`
	Monitored    bool             `json:"monitored"`
	Statistics   SeasonStatistics `json:"statistics"`
}

// SeasonStatistics summarizes one season's episode counts.
type SeasonStatistics struct {
	EpisodeCount      int `json:"episodeCount"`
	TotalEpisodeCount int `json:"totalEpisodeCount"`
}

// SeriesStatistics summarizes file coverage at the series level.
type SeriesStatistics struct {
	EpisodeCount     int `json:"episodeCount"`
	EpisodeFileCount int `json:"episodeFileCount"`
}

// FullyDownloaded reports whether the series has no missing monitored
// episodes anywhere, not just among the ones a request tracks.
func (s SeriesStatistics) FullyDownloaded() bool {
	return s.EpisodeCount > 0 && s.EpisodeFileCount >= s.EpisodeCount
}

// Episode is one episode of a managed series.
type Episode struct {
	ID            int64 `json:"id"`
	SeriesID      int64 `json:"seriesId"`
	SeasonNumber  int64 `json:"seasonNumber"`
	EpisodeNumber int64 `json:"episodeNumber"`
	HasFile       bool  `json:"hasFile"`
	Monitored     bool  `json:"monitored"`
}

// AddSeriesInput holds the fields sent when adding a series.
type AddSeriesInput struct {
	Title            string           `json:"title"`
	TvdbID           int64            `json:"tvdbId"`
	QualityProfileID int64            `json:"qualityProfileId"`
	RootFolderPath   string           `json:"rootFolderPath"`
	Monitored        bool             `json:"monitored"`
	SeasonFolder     bool             `json:"seasonFolder"`
	SeriesType       string           `json:"seriesType,omitempty"`
	AddOptions       SeriesAddOptions `json:"addOptions"`
}

// SeriesAddOptions controls post-add behavior.
type SeriesAddOptions struct {
	SearchForMissingEpisodes bool `json:"searchForMissingEpisodes"`
	IgnoreEpisodesWithFiles  bool `json:"ignoreEpisodesWithFiles"`
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
	SeriesID              int64  `json:"seriesId"`
	EpisodeID             int64  `json:"episodeId"`
	Title                 string `json:"title"`
	Status                string `json:"status"`
	TrackedDownloadStatus string `json:"trackedDownloadStatus"`
	TrackedDownloadState  string `json:"trackedDownloadState"`
	SizeLeft              int64  `json:"sizeleft"`
}

// Active reports whether the entry represents work still in flight.
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
