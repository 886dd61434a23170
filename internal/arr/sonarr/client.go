// Package sonarr is the typed client for the TV automation service.
package sonarr

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/requesterr/requesterr/internal/arr"
	"github.com/requesterr/requesterr/internal/services"
)

const listCacheTTL = 30 * time.Second

// Client wraps the TV automation service API.
type Client struct {
	http     *arr.Client
	settings services.Settings
	profiles *arr.ListCache[[]QualityProfile]
}

// New creates a client from a resolved service instance.
func New(instance *services.Instance, logger *zerolog.Logger) (*Client, error) {
	httpClient, err := arr.NewClient("sonarr", arr.ClientConfig{
		URL:    instance.BaseURL,
		APIKey: instance.APIKey,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		http:     httpClient,
		settings: instance.Settings,
		profiles: arr.NewListCache[[]QualityProfile](listCacheTTL),
	}, nil
}

// AddSeries adds a series, filling zero-valued overrides from the
// instance settings.
func (c *Client) AddSeries(ctx context.Context, input AddSeriesInput) (*Series, error) {
	if input.QualityProfileID == 0 {
		input.QualityProfileID = c.settings.QualityProfileID
	}
	if input.QualityProfileID == 0 {
		// No explicit default configured; the service rejects an add
		// without a profile, so fall back to its first one.
		if profiles, err := c.GetQualityProfiles(ctx); err == nil && len(profiles) > 0 {
			input.QualityProfileID = profiles[0].ID
		}
	}
	if input.RootFolderPath == "" {
		input.RootFolderPath = c.settings.RootFolder
	}
	if input.SeriesType == "" {
		input.SeriesType = c.settings.SeriesType
	}
	input.SeasonFolder = c.settings.SeasonFolder
	input.Monitored = true

	var series Series
	if err := c.http.PostJSON(ctx, "sonarr.AddSeries", "/api/v3/series", input, &series); err != nil {
		return nil, err
	}
	return &series, nil
}

// GetSeriesByTvdbID looks up a series by its catalog id. A missing series
// is arr.ErrNotFound.
func (c *Client) GetSeriesByTvdbID(ctx context.Context, tvdbID int64) (*Series, error) {
	var series []Series
	path := fmt.Sprintf("/api/v3/series?tvdbId=%d", tvdbID)
	if err := c.http.GetJSON(ctx, "sonarr.GetSeriesByTvdbID", path, &series); err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, &arr.Error{Op: "sonarr.GetSeriesByTvdbID", Kind: arr.ErrNotFound}
	}
	return &series[0], nil
}

// LookupByTvdbID fetches catalog metadata for a series that may not be
// managed yet. Unlike GetSeriesByTvdbID this includes season structure for
// titles the service has never seen.
func (c *Client) LookupByTvdbID(ctx context.Context, tvdbID int64) (*Series, error) {
	var series []Series
	path := fmt.Sprintf("/api/v3/series/lookup?term=tvdb:%d", tvdbID)
	if err := c.http.GetJSON(ctx, "sonarr.LookupByTvdbID", path, &series); err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, &arr.Error{Op: "sonarr.LookupByTvdbID", Kind: arr.ErrNotFound}
	}
	return &series[0], nil
}

// GetSeries fetches a series by the service's internal id.
func (c *Client) GetSeries(ctx context.Context, id int64) (*Series, error) {
	var series Series
	path := fmt.Sprintf("/api/v3/series/%d", id)
	if err := c.http.GetJSON(ctx, "sonarr.GetSeries", path, &series); err != nil {
		return nil, err
	}
	return &series, nil
}

// GetEpisodes lists all episodes of a series.
func (c *Client) GetEpisodes(ctx context.Context, seriesID int64) ([]Episode, error) {
	var episodes []Episode
	path := fmt.Sprintf("/api/v3/episode?seriesId=%d", seriesID)
	if err := c.http.GetJSON(ctx, "sonarr.GetEpisodes", path, &episodes); err != nil {
		return nil, err
	}
	return episodes, nil
}

// SetEpisodesMonitored flips the monitored flag on a set of episodes.
func (c *Client) SetEpisodesMonitored(ctx context.Context, episodeIDs []int64, monitored bool) error {
	body := map[string]interface{}{
		"episodeIds": episodeIDs,
		"monitored":  monitored,
	}
	return c.http.PutJSON(ctx, "sonarr.SetEpisodesMonitored", "/api/v3/episode/monitor", body, nil)
}

// SearchEpisodes triggers a release search for a set of episodes.
func (c *Client) SearchEpisodes(ctx context.Context, episodeIDs []int64) error {
	body := map[string]interface{}{
		"name":       "EpisodeSearch",
		"episodeIds": episodeIDs,
	}
	return c.http.PostJSON(ctx, "sonarr.SearchEpisodes", "/api/v3/command", body, nil)
}

// GetQueue fetches one page of the download queue.
func (c *Client) GetQueue(ctx context.Context, page, pageSize int) (*QueuePage, error) {
	var queue QueuePage
	path := fmt.Sprintf("/api/v3/queue?page=%d&pageSize=%d", page, pageSize)
	if err := c.http.GetJSON(ctx, "sonarr.GetQueue", path, &queue); err != nil {
		return nil, err
	}
	return &queue, nil
}

// GetQualityProfiles lists quality profiles, cached for the duration of a
// reconciliation pass.
func (c *Client) GetQualityProfiles(ctx context.Context) ([]QualityProfile, error) {
	if cached, ok := c.profiles.Get("profiles"); ok {
		return cached, nil
	}

	var profiles []QualityProfile
	if err := c.http.GetJSON(ctx, "sonarr.GetQualityProfiles", "/api/v3/qualityprofile", &profiles); err != nil {
		return nil, err
	}

	c.profiles.Set("profiles", profiles)
	return profiles, nil
}
