// Package radarr is the typed client for the movie automation service.
package radarr

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/requesterr/requesterr/internal/arr"
	"github.com/requesterr/requesterr/internal/services"
)

const listCacheTTL = 30 * time.Second

// Client wraps the movie automation service API.
type Client struct {
	http     *arr.Client
	settings services.Settings
	profiles *arr.ListCache[[]QualityProfile]
}

// New creates a client from a resolved service instance.
func New(instance *services.Instance, logger *zerolog.Logger) (*Client, error) {
	httpClient, err := arr.NewClient("radarr", arr.ClientConfig{
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

// AddMovie adds a title to the service, optionally triggering an
// immediate search. Service-level defaults from the instance settings
// fill any zero-valued overrides.
func (c *Client) AddMovie(ctx context.Context, input AddMovieInput) (*Movie, error) {
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
	input.Monitored = true

	var movie Movie
	if err := c.http.PostJSON(ctx, "radarr.AddMovie", "/api/v3/movie", input, &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

// GetMovieByTmdbID looks up a title by its catalog id. A missing title is
// arr.ErrNotFound.
func (c *Client) GetMovieByTmdbID(ctx context.Context, tmdbID int64) (*Movie, error) {
	var movies []Movie
	path := fmt.Sprintf("/api/v3/movie?tmdbId=%d", tmdbID)
	if err := c.http.GetJSON(ctx, "radarr.GetMovieByTmdbID", path, &movies); err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, &arr.Error{Op: "radarr.GetMovieByTmdbID", Kind: arr.ErrNotFound}
	}
	return &movies[0], nil
}

// GetMovie fetches a title by the service's internal id.
func (c *Client) GetMovie(ctx context.Context, id int64) (*Movie, error) {
	var movie Movie
	path := fmt.Sprintf("/api/v3/movie/%d", id)
	if err := c.http.GetJSON(ctx, "radarr.GetMovie", path, &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

// GetQueue fetches one page of the download queue.
func (c *Client) GetQueue(ctx context.Context, page, pageSize int) (*QueuePage, error) {
	var queue QueuePage
	path := fmt.Sprintf("/api/v3/queue?page=%d&pageSize=%d", page, pageSize)
	if err := c.http.GetJSON(ctx, "radarr.GetQueue", path, &queue); err != nil {
		return nil, err
	}
	return &queue, nil
}

// SearchMovie triggers a release search for a title.
func (c *Client) SearchMovie(ctx context.Context, movieID int64) error {
	body := map[string]interface{}{
		"name":     "MoviesSearch",
		"movieIds": []int64{movieID},
	}
	return c.http.PostJSON(ctx, "radarr.SearchMovie", "/api/v3/command", body, nil)
}

// GetQualityProfiles lists quality profiles, cached for the duration of a
// reconciliation pass.
func (c *Client) GetQualityProfiles(ctx context.Context) ([]QualityProfile, error) {
	if cached, ok := c.profiles.Get("profiles"); ok {
		return cached, nil
	}

	var profiles []QualityProfile
	if err := c.http.GetJSON(ctx, "radarr.GetQualityProfiles", "/api/v3/qualityprofile", &profiles); err != nil {
		return nil, err
	}

	c.profiles.Set("profiles", profiles)
	return profiles, nil
}
