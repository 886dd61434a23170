package plex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	discoverBaseURL = "https://discover.provider.plex.tv"
	product         = "Requesterr"
)

// Item is one entry on a user's media-server watchlist.
type Item struct {
	Type   string // "movie" or "show"
	Title  string
	Year   int
	TmdbID int64
	TvdbID int64
}

// Client fetches a user's watchlist from the Plex discover API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	version    string
	logger     zerolog.Logger
}

// NewClient creates a new Plex watchlist client.
func NewClient(httpClient *http.Client, logger zerolog.Logger, version string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    discoverBaseURL,
		clientID:   uuid.New().String(),
		version:    version,
		logger:     logger.With().Str("component", "plex-watchlist").Logger(),
	}
}

// SetBaseURL overrides the discover endpoint. Used in tests.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

type watchlistResponse struct {
	MediaContainer struct {
		Metadata []struct {
			Type  string `json:"type"`
			Title string `json:"title"`
			Year  int    `json:"year"`
			Guid  []struct {
				ID string `json:"id"`
			} `json:"Guid"`
		} `json:"Metadata"`
	} `json:"MediaContainer"`
}

// GetWatchlist returns the watchlist for the given account token.
func (c *Client) GetWatchlist(ctx context.Context, token string) ([]Item, error) {
	url := c.baseURL + "/library/sections/watchlist/all"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create watchlist request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Plex-Token", token)
	req.Header.Set("X-Plex-Client-Identifier", c.clientID)
	req.Header.Set("X-Plex-Product", product)
	req.Header.Set("X-Plex-Version", c.version)
	req.Header.Set("X-Plex-Platform", runtime.GOOS)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch watchlist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("plex token rejected")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("plex watchlist returned status %d", resp.StatusCode)
	}

	var payload watchlistResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode watchlist: %w", err)
	}

	items := make([]Item, 0, len(payload.MediaContainer.Metadata))
	for _, meta := range payload.MediaContainer.Metadata {
		item := Item{Type: meta.Type, Title: meta.Title, Year: meta.Year}
		for _, guid := range meta.Guid {
			var id int64
			if _, err := fmt.Sscanf(guid.ID, "tmdb://%d", &id); err == nil {
				item.TmdbID = id
				continue
			}
			if _, err := fmt.Sscanf(guid.ID, "tvdb://%d", &id); err == nil {
				item.TvdbID = id
			}
		}
		items = append(items, item)
	}

	c.logger.Debug().Int("count", len(items)).Msg("Fetched Plex watchlist")
	return items, nil
}
