package watchlist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/requesterr/requesterr/internal/arr"
	"github.com/requesterr/requesterr/internal/arr/radarr"
	"github.com/requesterr/requesterr/internal/arr/sonarr"
	"github.com/requesterr/requesterr/internal/database/sqlc"
	"github.com/requesterr/requesterr/internal/health"
	"github.com/requesterr/requesterr/internal/reconcile"
	"github.com/requesterr/requesterr/internal/requests"
	"github.com/requesterr/requesterr/internal/services"
	"github.com/requesterr/requesterr/internal/watchlist/plex"
	"github.com/requesterr/requesterr/internal/watchlist/trakt"
)

// candidate is one watchlist entry normalized across sources.
type candidate struct {
	mediaType  string // requests.TypeMovie or requests.TypeEpisode
	externalID int64
	title      string
}

// ImportSummary reports what one import cycle did.
type ImportSummary struct {
	Users     int `json:"users"`
	Seen      int `json:"seen"`
	Created   int `json:"created"`
	Approved  int `json:"approved"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
}

// Importer pulls user watchlists from external sources and turns new
// entries into requests.
type Importer struct {
	queries    *sqlc.Queries
	directory  *services.Directory
	requests   *requests.Service
	engine     *reconcile.Engine
	plex       *plex.Client
	trakt      *trakt.Client
	health     *health.Service
	logger     zerolog.Logger
}

func NewImporter(
	queries *sqlc.Queries,
	directory *services.Directory,
	reqs *requests.Service,
	engine *reconcile.Engine,
	plexClient *plex.Client,
	traktClient *trakt.Client,
	healthSvc *health.Service,
	logger zerolog.Logger,
) *Importer {
	return &Importer{
		queries:    queries,
		directory:  directory,
		requests:   reqs,
		engine:     engine,
		plex:       plexClient,
		trakt:      traktClient,
		health:     healthSvc,
		logger:     logger.With().Str("component", "watchlist").Logger(),
	}
}

// Run executes one import cycle over all users with watchlist sync enabled.
func (i *Importer) Run(ctx context.Context) (*ImportSummary, error) {
	users, err := i.queries.ListWatchlistUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list watchlist users: %w", err)
	}

	summary := &ImportSummary{Users: len(users)}
	for _, user := range users {
		if err := i.importUser(ctx, user, summary); err != nil {
			summary.Errors++
			i.logger.Warn().
				Err(err).
				Str("username", user.Username).
				Msg("Watchlist import failed for user")
		}
	}

	i.logger.Info().
		Int("users", summary.Users).
		Int("seen", summary.Seen).
		Int("created", summary.Created).
		Int("approved", summary.Approved).
		Int("skipped", summary.Skipped).
		Int("errors", summary.Errors).
		Msg("Watchlist import complete")
	return summary, nil
}

func (i *Importer) importUser(ctx context.Context, user *sqlc.User, summary *ImportSummary) error {
	candidates, err := i.collect(ctx, user)
	if err != nil {
		return err
	}
	summary.Seen += len(candidates)

	for _, cand := range candidates {
		created, approved, err := i.importCandidate(ctx, user, cand)
		if err != nil {
			summary.Errors++
			i.logger.Warn().
				Err(err).
				Str("title", cand.title).
				Int64("external_id", cand.externalID).
				Msg("Failed to import watchlist entry")
			continue
		}
		switch {
		case approved:
			summary.Created++
			summary.Approved++
		case created:
			summary.Created++
		default:
			summary.Skipped++
		}
	}
	return nil
}

// collect unions the user's configured sources by (media type, external id).
func (i *Importer) collect(ctx context.Context, user *sqlc.User) ([]candidate, error) {
	seen := make(map[candidate]bool)
	var out []candidate
	add := func(mediaType string, externalID int64, title string) {
		if externalID == 0 {
			return
		}
		key := candidate{mediaType: mediaType, externalID: externalID}
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, candidate{mediaType: mediaType, externalID: externalID, title: title})
	}

	var sourceErrs []error
	if user.PlexToken.Valid && user.PlexToken.String != "" && i.plex != nil {
		items, err := i.plex.GetWatchlist(ctx, user.PlexToken.String)
		if err != nil {
			i.noteSourceError("plex", err)
			sourceErrs = append(sourceErrs, fmt.Errorf("plex: %w", err))
		} else {
			i.clearSourceError("plex")
			for _, item := range items {
				switch item.Type {
				case "movie":
					add(requests.TypeMovie, item.TmdbID, item.Title)
				case "show":
					add(requests.TypeEpisode, item.TvdbID, item.Title)
				}
			}
		}
	}

	if user.TraktAccessToken.Valid && user.TraktAccessToken.String != "" && i.trakt != nil {
		items, err := i.traktWatchlist(ctx, user)
		if err != nil {
			i.noteSourceError("trakt", err)
			sourceErrs = append(sourceErrs, fmt.Errorf("trakt: %w", err))
		} else {
			i.clearSourceError("trakt")
			for _, item := range items {
				switch item.Type {
				case "movie":
					add(requests.TypeMovie, item.TmdbID, item.Title)
				case "show":
					add(requests.TypeEpisode, item.TvdbID, item.Title)
				}
			}
		}
	}

	// One failed source still lets the other contribute; only a total
	// blank with errors is reported upward.
	if len(out) == 0 && len(sourceErrs) > 0 {
		return nil, errors.Join(sourceErrs...)
	}
	return out, nil
}

// traktWatchlist refreshes the user's tokens if they are near expiry,
// persists the refreshed set, and fetches the watchlist.
func (i *Importer) traktWatchlist(ctx context.Context, user *sqlc.User) ([]trakt.Item, error) {
	tokens := trakt.Tokens{
		AccessToken:  user.TraktAccessToken.String,
		RefreshToken: user.TraktRefreshToken.String,
	}
	if user.TraktExpiresAt.Valid {
		tokens.ExpiresAt = user.TraktExpiresAt.Time
	}

	if tokens.NeedsRefresh() && tokens.RefreshToken != "" {
		refreshed, err := i.trakt.RefreshTokens(ctx, tokens)
		if err != nil {
			return nil, fmt.Errorf("refresh tokens: %w", err)
		}
		if err := i.queries.UpdateUserTraktTokens(ctx, sqlc.UpdateUserTraktTokensParams{
			TraktAccessToken:  sql.NullString{String: refreshed.AccessToken, Valid: true},
			TraktRefreshToken: sql.NullString{String: refreshed.RefreshToken, Valid: true},
			TraktExpiresAt:    sql.NullTime{Time: refreshed.ExpiresAt, Valid: true},
			ID:                user.ID,
		}); err != nil {
			return nil, fmt.Errorf("persist refreshed tokens: %w", err)
		}
		tokens = refreshed
	}

	return i.trakt.GetWatchlist(ctx, tokens)
}

// importCandidate creates a request for one watchlist entry unless it is
// already requested or already present in the automation service. Returns
// (created, autoApproved).
func (i *Importer) importCandidate(ctx context.Context, user *sqlc.User, cand candidate) (bool, bool, error) {
	present, items, err := i.probeTarget(ctx, cand)
	if err != nil {
		return false, false, err
	}
	if present {
		return false, false, nil
	}

	input := &requests.CreateInput{
		RequestType:     cand.mediaType,
		ExternalMediaID: cand.externalID,
		Title:           cand.title,
		Items:           items,
	}

	req, err := i.requests.Create(ctx, user.ID, input)
	if err != nil {
		if errors.Is(err, requests.ErrAlreadyRequested) {
			return false, false, nil
		}
		return false, false, err
	}

	if !i.autoApproves(user, cand.mediaType) {
		return true, false, nil
	}

	if _, err := i.requests.Approve(ctx, req.ID); err != nil {
		return true, false, err
	}

	// Push the add-and-search through immediately rather than waiting for
	// the next scheduled pass.
	if i.engine != nil {
		if _, err := i.engine.SyncRequest(ctx, req.ID); err != nil {
			i.logger.Warn().
				Err(err).
				Int64("request_id", req.ID).
				Msg("Immediate submit after auto-approval failed")
		}
	}
	return true, true, nil
}

// probeTarget checks whether the title already exists in the automation
// service and builds the item set for a new request.
func (i *Importer) probeTarget(ctx context.Context, cand candidate) (bool, []requests.ItemInput, error) {
	switch cand.mediaType {
	case requests.TypeMovie:
		instance, err := i.directory.Resolve(ctx, services.TypeRadarr)
		if err != nil {
			if errors.Is(err, services.ErrNotConfigured) {
				return false, []requests.ItemInput{{Provider: requests.ProviderRadarr}}, nil
			}
			return false, nil, err
		}
		client, err := radarr.New(instance, &i.logger)
		if err != nil {
			return false, nil, err
		}
		movie, err := client.GetMovieByTmdbID(ctx, cand.externalID)
		switch {
		case err == nil:
			if movie.HasFile {
				return true, nil, nil
			}
			// Managed but not downloaded yet: track the existing title.
			return false, []requests.ItemInput{{Provider: requests.ProviderRadarr, ProviderID: &movie.ID}}, nil
		case arr.IsNotFound(err):
			return false, []requests.ItemInput{{Provider: requests.ProviderRadarr}}, nil
		default:
			return false, nil, err
		}

	case requests.TypeEpisode:
		instance, err := i.directory.Resolve(ctx, services.TypeSonarr)
		if err != nil {
			if errors.Is(err, services.ErrNotConfigured) {
				return false, nil, fmt.Errorf("no TV service configured for show import")
			}
			return false, nil, err
		}
		client, err := sonarr.New(instance, &i.logger)
		if err != nil {
			return false, nil, err
		}
		return i.probeSeries(ctx, client, cand)

	default:
		return false, nil, fmt.Errorf("unknown media type %q", cand.mediaType)
	}
}

// probeSeries builds one item per known episode of the series, skipping
// specials. A series whose monitored episodes are all on disk counts as
// already present.
func (i *Importer) probeSeries(ctx context.Context, client *sonarr.Client, cand candidate) (bool, []requests.ItemInput, error) {
	series, err := client.GetSeriesByTvdbID(ctx, cand.externalID)
	switch {
	case err == nil:
		if series.Statistics.FullyDownloaded() {
			return true, nil, nil
		}
		episodes, err := client.GetEpisodes(ctx, series.ID)
		if err != nil {
			return false, nil, err
		}
		var items []requests.ItemInput
		for _, ep := range episodes {
			if ep.SeasonNumber == 0 || ep.HasFile {
				continue
			}
			season, episode := ep.SeasonNumber, ep.EpisodeNumber
			items = append(items, requests.ItemInput{
				Provider: requests.ProviderSonarr,
				Season:   &season,
				Episode:  &episode,
			})
		}
		if len(items) == 0 {
			return true, nil, nil
		}
		return false, items, nil

	case arr.IsNotFound(err):
		// Not managed yet: enumerate episodes from catalog metadata.
		lookup, err := client.LookupByTvdbID(ctx, cand.externalID)
		if err != nil {
			return false, nil, err
		}
		var items []requests.ItemInput
		for _, season := range lookup.Seasons {
			if season.SeasonNumber == 0 {
				continue
			}
			count := season.Statistics.TotalEpisodeCount
			if count == 0 {
				count = season.Statistics.EpisodeCount
			}
			for n := 1; n <= count; n++ {
				seasonNum, episodeNum := season.SeasonNumber, int64(n)
				items = append(items, requests.ItemInput{
					Provider: requests.ProviderSonarr,
					Season:   &seasonNum,
					Episode:  &episodeNum,
				})
			}
		}
		if len(items) == 0 {
			return false, nil, fmt.Errorf("no episodes found for %q", cand.title)
		}
		return false, items, nil

	default:
		return false, nil, err
	}
}

func (i *Importer) autoApproves(user *sqlc.User, mediaType string) bool {
	if user.IsAdmin != 0 || user.AutoApprove != 0 {
		return true
	}
	switch mediaType {
	case requests.TypeMovie:
		return user.AutoApproveMovies != 0
	case requests.TypeEpisode:
		return user.AutoApproveTv != 0
	}
	return false
}

func (i *Importer) noteSourceError(source string, err error) {
	if i.health == nil {
		return
	}
	i.health.SetWarning(health.CategoryWatchlist, source, err.Error())
}

func (i *Importer) clearSourceError(source string) {
	if i.health == nil {
		return
	}
	i.health.ClearStatus(health.CategoryWatchlist, source)
}
