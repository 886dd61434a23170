package indexer

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/requesterr/requesterr/internal/arr"
	"github.com/requesterr/requesterr/internal/services"
)

const (
	defaultLimit  = 100
	searchTimeout = 90 * time.Second
)

// Service performs manual release searches through the indexer aggregator.
type Service struct {
	directory *services.Directory
	logger    zerolog.Logger
}

func NewService(directory *services.Directory, logger zerolog.Logger) *Service {
	return &Service{
		directory: directory,
		logger:    logger.With().Str("component", "indexer").Logger(),
	}
}

func (s *Service) client(ctx context.Context) (*arr.Client, error) {
	instance, err := s.directory.Resolve(ctx, services.TypeProwlarr)
	if err != nil {
		return nil, err
	}
	return arr.NewClient("prowlarr", arr.ClientConfig{
		URL:     instance.BaseURL,
		APIKey:  instance.APIKey,
		Timeout: searchTimeout,
		Logger:  &s.logger,
	})
}

type searchResult struct {
	GUID        string    `json:"guid"`
	Title       string    `json:"title"`
	Indexer     string    `json:"indexer"`
	IndexerID   int64     `json:"indexerId"`
	Size        int64     `json:"size"`
	Seeders     int       `json:"seeders"`
	Leechers    int       `json:"leechers"`
	Protocol    string    `json:"protocol"`
	DownloadURL string    `json:"downloadUrl"`
	InfoURL     string    `json:"infoUrl"`
	PublishDate time.Time `json:"publishDate"`
	Categories  []struct {
		ID int `json:"id"`
	} `json:"categories"`
}

// Search runs one free-text or id-qualified query against all enabled
// indexers on the aggregator.
func (s *Service) Search(ctx context.Context, input SearchInput) ([]Release, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, fmt.Errorf("search query is required")
	}

	client, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit <= 0 || limit > 500 {
		limit = defaultLimit
	}

	categories := input.Categories
	if len(categories) == 0 {
		switch input.MediaType {
		case "movie":
			categories = DefaultMovieCategories()
		case "episode":
			categories = DefaultTVCategories()
		}
	}

	params := url.Values{}
	params.Set("query", input.Query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("type", "search")
	for _, cat := range categories {
		params.Add("categories", strconv.Itoa(cat))
	}

	var results []searchResult
	path := "/api/v1/search?" + params.Encode()
	if err := client.GetJSON(ctx, "prowlarr.Search", path, &results); err != nil {
		return nil, err
	}

	releases := make([]Release, 0, len(results))
	for _, r := range results {
		release := Release{
			GUID:        r.GUID,
			Title:       r.Title,
			Indexer:     r.Indexer,
			IndexerID:   r.IndexerID,
			Size:        r.Size,
			Seeders:     r.Seeders,
			Leechers:    r.Leechers,
			Protocol:    r.Protocol,
			DownloadURL: r.DownloadURL,
			InfoURL:     r.InfoURL,
			PublishDate: r.PublishDate,
		}
		for _, cat := range r.Categories {
			release.Categories = append(release.Categories, cat.ID)
		}
		releases = append(releases, release)
	}

	s.logger.Debug().
		Str("query", input.Query).
		Int("results", len(releases)).
		Msg("Indexer search complete")
	return releases, nil
}

// SearchMovie searches by catalog id with the movie category set.
func (s *Service) SearchMovie(ctx context.Context, tmdbID int64) ([]Release, error) {
	return s.Search(ctx, SearchInput{
		Query:      fmt.Sprintf("{TmdbId:%d}", tmdbID),
		MediaType:  "movie",
		Categories: DefaultMovieCategories(),
	})
}

// SearchSeries searches by catalog id with the TV category set.
func (s *Service) SearchSeries(ctx context.Context, tvdbID int64) ([]Release, error) {
	return s.Search(ctx, SearchInput{
		Query:      fmt.Sprintf("{TvdbId:%d}", tvdbID),
		MediaType:  "episode",
		Categories: DefaultTVCategories(),
	})
}

// ListIndexers returns the indexers configured on the aggregator.
func (s *Service) ListIndexers(ctx context.Context) ([]Indexer, error) {
	client, err := s.client(ctx)
	if err != nil {
		return nil, err
	}
	var indexers []Indexer
	if err := client.GetJSON(ctx, "prowlarr.ListIndexers", "/api/v1/indexer", &indexers); err != nil {
		return nil, err
	}
	return indexers, nil
}
