package trakt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	apiBaseURL = "https://api.trakt.tv"
	apiVersion = "2"

	// refreshMargin is how close to expiry a token may get before it is
	// refreshed ahead of use.
	refreshMargin = 5 * time.Minute
)

// Tokens is one user's OAuth credential set.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// NeedsRefresh reports whether the access token should be refreshed
// before use.
func (t Tokens) NeedsRefresh() bool {
	return time.Until(t.ExpiresAt) < refreshMargin
}

// Item is one entry on a user's tracking-service watchlist.
type Item struct {
	Type   string // "movie" or "show"
	Title  string
	Year   int
	TmdbID int64
	TvdbID int64
}

// Client talks to the Trakt API on behalf of individual users.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	clientID     string
	clientSecret string
	logger       zerolog.Logger
}

// NewClient creates a new Trakt client with application credentials.
func NewClient(httpClient *http.Client, clientID, clientSecret string, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		httpClient:   httpClient,
		baseURL:      apiBaseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		logger:       logger.With().Str("component", "trakt").Logger(),
	}
}

// SetBaseURL overrides the API endpoint. Used in tests.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	CreatedAt    int64  `json:"created_at"`
}

// RefreshTokens exchanges a refresh token for a fresh credential set.
func (c *Client) RefreshTokens(ctx context.Context, tokens Tokens) (Tokens, error) {
	body, err := json.Marshal(map[string]string{
		"refresh_token": tokens.RefreshToken,
		"client_id":     c.clientID,
		"client_secret": c.clientSecret,
		"redirect_uri":  "urn:ietf:wg:oauth:2.0:oob",
		"grant_type":    "refresh_token",
	})
	if err != nil {
		return Tokens{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth/token", bytes.NewReader(body))
	if err != nil {
		return Tokens{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Tokens{}, fmt.Errorf("refresh trakt token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Tokens{}, fmt.Errorf("trakt token refresh returned status %d", resp.StatusCode)
	}

	var payload tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Tokens{}, fmt.Errorf("decode token response: %w", err)
	}

	refreshed := Tokens{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		ExpiresAt:    time.Unix(payload.CreatedAt, 0).Add(time.Duration(payload.ExpiresIn) * time.Second),
	}
	c.logger.Debug().Time("expires_at", refreshed.ExpiresAt).Msg("Refreshed Trakt tokens")
	return refreshed, nil
}

type watchlistEntry struct {
	Type  string `json:"type"`
	Movie *struct {
		Title string `json:"title"`
		Year  int    `json:"year"`
		IDs   struct {
			Tmdb int64 `json:"tmdb"`
		} `json:"ids"`
	} `json:"movie"`
	Show *struct {
		Title string `json:"title"`
		Year  int    `json:"year"`
		IDs   struct {
			Tvdb int64 `json:"tvdb"`
		} `json:"ids"`
	} `json:"show"`
}

// GetWatchlist returns the authenticated user's watchlist.
func (c *Client) GetWatchlist(ctx context.Context, tokens Tokens) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/sync/watchlist", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	req.Header.Set("trakt-api-version", apiVersion)
	req.Header.Set("trakt-api-key", c.clientID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch trakt watchlist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("trakt token rejected")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trakt watchlist returned status %d", resp.StatusCode)
	}

	var entries []watchlistEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode trakt watchlist: %w", err)
	}

	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		switch {
		case entry.Type == "movie" && entry.Movie != nil:
			items = append(items, Item{
				Type:   "movie",
				Title:  entry.Movie.Title,
				Year:   entry.Movie.Year,
				TmdbID: entry.Movie.IDs.Tmdb,
			})
		case entry.Type == "show" && entry.Show != nil:
			items = append(items, Item{
				Type:   "show",
				Title:  entry.Show.Title,
				Year:   entry.Show.Year,
				TvdbID: entry.Show.IDs.Tvdb,
			})
		}
	}

	c.logger.Debug().Int("count", len(items)).Msg("Fetched Trakt watchlist")
	return items, nil
}
