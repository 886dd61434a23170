package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/requesterr/requesterr/internal/arr"
	"github.com/requesterr/requesterr/internal/arr/radarr"
	"github.com/requesterr/requesterr/internal/arr/sonarr"
	"github.com/requesterr/requesterr/internal/config"
	"github.com/requesterr/requesterr/internal/health"
	"github.com/requesterr/requesterr/internal/requests"
	"github.com/requesterr/requesterr/internal/services"
	"github.com/requesterr/requesterr/internal/synclock"
)

// LockName identifies the pass mutex shared by all process instances.
const LockName = "request-sync"

// ErrPassInProgress is returned by SyncRequest when a reconciliation pass
// holds the lock; the request will be visited by that pass instead.
var ErrPassInProgress = errors.New("a sync pass is already running")

// PassSummary reports what one reconciliation pass did.
type PassSummary struct {
	Skipped            bool `json:"skipped"`
	Merged             int  `json:"merged"`
	Processed          int  `json:"processed"`
	Submitted          int  `json:"submitted"`
	Downloading        int  `json:"downloading"`
	PartiallyAvailable int  `json:"partiallyAvailable"`
	Available          int  `json:"available"`
	Removed            int  `json:"removed"`
	Errors             int  `json:"errors"`
}

// Engine drives periodic reconciliation of requests against the external
// automation services. At most one pass runs system-wide at any instant;
// the advisory lock, not the engine, enforces that across processes.
type Engine struct {
	cfg        config.SyncConfig
	directory  *services.Directory
	requests   *requests.Service
	lock       *synclock.Lock
	health     *health.Service
	logger     zerolog.Logger

	// runMu serializes RunPass and SyncRequest within this process. The
	// advisory lock covers other processes but treats re-acquisition by
	// the same holder as a lease renewal, so it cannot do this job alone.
	runMu sync.Mutex

	mu          sync.Mutex
	lastSummary *PassSummary
	lastPassAt  time.Time
}

// LastPass returns the most recent non-skipped pass summary and when it ran.
func (e *Engine) LastPass() (*PassSummary, time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSummary, e.lastPassAt
}

func NewEngine(
	cfg config.SyncConfig,
	directory *services.Directory,
	reqs *requests.Service,
	lock *synclock.Lock,
	healthSvc *health.Service,
	logger zerolog.Logger,
) *Engine {
	return &Engine{
		cfg:        cfg,
		directory:  directory,
		requests:   reqs,
		lock:       lock,
		health:     healthSvc,
		logger:     logger.With().Str("component", "reconcile").Logger(),
	}
}

// movieProvider carries the per-pass movie service client and queue index.
// ok is false when the service is not configured or its queue fetch failed;
// movie requests are then skipped for this pass only.
type movieProvider struct {
	client *radarr.Client
	queue  map[int64]bool
	ok     bool
}

type seriesProvider struct {
	client *sonarr.Client
	queue  map[int64]bool
	ok     bool
}

// RunPass executes one bounded reconciliation pass. A pass that finds the
// lock held elsewhere returns a summary with Skipped set; that is expected
// under concurrent deployment, not an error.
func (e *Engine) RunPass(ctx context.Context) (*PassSummary, error) {
	summary := &PassSummary{}

	if !e.runMu.TryLock() {
		summary.Skipped = true
		return summary, nil
	}
	defer e.runMu.Unlock()

	acquired, err := e.lock.TryAcquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire sync lock: %w", err)
	}
	if !acquired {
		e.logger.Debug().Msg("Sync already running elsewhere, skipping pass")
		summary.Skipped = true
		return summary, nil
	}
	defer func() {
		if err := e.lock.Release(ctx); err != nil {
			e.logger.Warn().Err(err).Msg("Failed to release sync lock")
		}
	}()

	if merged, err := e.requests.MergeDuplicates(ctx); err != nil {
		e.logger.Error().Err(err).Msg("Duplicate merge failed")
		summary.Errors++
	} else {
		summary.Merged = merged.Merged
	}

	movies := e.prepareMovieProvider(ctx)
	series := e.prepareSeriesProvider(ctx)

	batch, err := e.requests.ListSyncable(ctx, e.cfg.BatchSize)
	if err != nil {
		return summary, fmt.Errorf("load syncable requests: %w", err)
	}

	for _, req := range batch {
		if err := e.processRequest(ctx, req, movies, series, summary); err != nil {
			summary.Errors++
			e.logger.Warn().
				Err(err).
				Int64("request_id", req.ID).
				Str("type", req.RequestType).
				Msg("Request sync failed")
		}
	}

	e.logger.Info().
		Int("processed", summary.Processed).
		Int("merged", summary.Merged).
		Int("submitted", summary.Submitted).
		Int("available", summary.Available).
		Int("partially_available", summary.PartiallyAvailable).
		Int("downloading", summary.Downloading).
		Int("removed", summary.Removed).
		Int("errors", summary.Errors).
		Msg("Sync pass complete")

	e.mu.Lock()
	e.lastSummary = summary
	e.lastPassAt = time.Now().UTC()
	e.mu.Unlock()
	return summary, nil
}

// SyncRequest reconciles a single request immediately, outside the
// scheduled pass. Used by the "try again now" action. It takes the same
// lock as RunPass; a request observed mid-pass by both paths could
// otherwise double-notify one transition.
func (e *Engine) SyncRequest(ctx context.Context, id int64) (*PassSummary, error) {
	req, err := e.requests.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if requests.IsTerminal(req.Status) {
		return &PassSummary{}, nil
	}

	if !e.runMu.TryLock() {
		return nil, ErrPassInProgress
	}
	defer e.runMu.Unlock()

	acquired, err := e.lock.TryAcquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire sync lock: %w", err)
	}
	if !acquired {
		return nil, ErrPassInProgress
	}
	defer func() {
		if err := e.lock.Release(ctx); err != nil {
			e.logger.Warn().Err(err).Msg("Failed to release sync lock")
		}
	}()

	summary := &PassSummary{}
	switch req.RequestType {
	case requests.TypeMovie:
		movies := e.prepareMovieProvider(ctx)
		if err := e.processRequest(ctx, req, movies, seriesProvider{}, summary); err != nil {
			summary.Errors++
			return summary, err
		}
		if summary.Submitted == 0 {
			if err := e.retryMovieSearch(ctx, id, movies); err != nil {
				e.logger.Warn().Err(err).Int64("request_id", id).Msg("Movie search retry failed")
			}
		}
	case requests.TypeEpisode:
		series := e.prepareSeriesProvider(ctx)
		if err := e.processRequest(ctx, req, movieProvider{}, series, summary); err != nil {
			summary.Errors++
			return summary, err
		}
	}
	return summary, nil
}

// retryMovieSearch re-kicks the release search for a linked movie request
// that is still waiting on a download. Only the explicit per-request sync
// does this; a scheduled pass would re-search on every interval.
func (e *Engine) retryMovieSearch(ctx context.Context, id int64, p movieProvider) error {
	if !p.ok {
		return nil
	}
	req, err := e.requests.Get(ctx, id)
	if err != nil {
		return err
	}
	if !isApproved(req.Status) || len(req.Items) == 0 {
		return nil
	}
	item := req.Items[0]
	if item.ProviderID == nil || p.queue[*item.ProviderID] {
		return nil
	}
	if err := p.client.SearchMovie(ctx, *item.ProviderID); err != nil {
		return err
	}
	e.logger.Info().
		Int64("request_id", req.ID).
		Int64("movie_id", *item.ProviderID).
		Msg("Re-triggered movie search")
	return nil
}

func (e *Engine) prepareMovieProvider(ctx context.Context) movieProvider {
	instance, err := e.directory.Resolve(ctx, services.TypeRadarr)
	if err != nil {
		if errors.Is(err, services.ErrNotConfigured) {
			e.logger.Debug().Msg("No movie service configured, skipping movie requests")
		} else {
			e.logger.Error().Err(err).Msg("Failed to resolve movie service")
		}
		return movieProvider{}
	}

	client, err := radarr.New(instance, &e.logger)
	if err != nil {
		e.logger.Error().Err(err).Msg("Failed to build movie service client")
		return movieProvider{}
	}

	page, err := client.GetQueue(ctx, 1, e.cfg.QueuePageSize)
	if err != nil {
		e.noteServiceError(services.TypeRadarr, err)
		e.logger.Warn().Err(err).Msg("Movie queue fetch failed, skipping movie requests this pass")
		return movieProvider{}
	}
	e.clearServiceError(services.TypeRadarr)

	queue := make(map[int64]bool, len(page.Records))
	for _, record := range page.Records {
		if record.Active() {
			queue[record.MovieID] = true
		}
	}
	return movieProvider{client: client, queue: queue, ok: true}
}

func (e *Engine) prepareSeriesProvider(ctx context.Context) seriesProvider {
	instance, err := e.directory.Resolve(ctx, services.TypeSonarr)
	if err != nil {
		if errors.Is(err, services.ErrNotConfigured) {
			e.logger.Debug().Msg("No TV service configured, skipping episode requests")
		} else {
			e.logger.Error().Err(err).Msg("Failed to resolve TV service")
		}
		return seriesProvider{}
	}

	client, err := sonarr.New(instance, &e.logger)
	if err != nil {
		e.logger.Error().Err(err).Msg("Failed to build TV service client")
		return seriesProvider{}
	}

	page, err := client.GetQueue(ctx, 1, e.cfg.QueuePageSize)
	if err != nil {
		e.noteServiceError(services.TypeSonarr, err)
		e.logger.Warn().Err(err).Msg("TV queue fetch failed, skipping episode requests this pass")
		return seriesProvider{}
	}
	e.clearServiceError(services.TypeSonarr)

	queue := make(map[int64]bool, len(page.Records))
	for _, record := range page.Records {
		if record.Active() {
			queue[record.EpisodeID] = true
		}
	}
	return seriesProvider{client: client, queue: queue, ok: true}
}

func (e *Engine) processRequest(ctx context.Context, req *requests.Request, movies movieProvider, series seriesProvider, summary *PassSummary) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("request %d: panic: %v", req.ID, r)
		}
	}()

	switch req.RequestType {
	case requests.TypeMovie:
		return e.processMovie(ctx, req, movies, summary)
	case requests.TypeEpisode:
		return e.processEpisodes(ctx, req, series, summary)
	default:
		return fmt.Errorf("unknown request type %q", req.RequestType)
	}
}

func (e *Engine) processMovie(ctx context.Context, req *requests.Request, p movieProvider, summary *PassSummary) error {
	if !p.ok || len(req.Items) == 0 {
		return nil
	}
	summary.Processed++
	item := req.Items[0]

	var movie *radarr.Movie
	var err error
	if item.ProviderID != nil {
		movie, err = p.client.GetMovie(ctx, *item.ProviderID)
	} else {
		movie, err = p.client.GetMovieByTmdbID(ctx, req.ExternalMediaID)
	}

	state := MovieState{}
	switch {
	case err == nil:
		state.Found = true
		state.HasFile = movie.HasFile
		state.QueueActive = p.queue[movie.ID]
		if item.ProviderID == nil {
			if err := e.requests.SetItemProviderID(ctx, item.ID, movie.ID); err != nil {
				return err
			}
		}
	case arr.IsNotFound(err):
		if item.ProviderID == nil {
			// The title was never added. Submit it now if the request
			// has been approved; a pending request has nothing to
			// reconcile yet.
			if isApproved(req.Status) {
				return e.submitMovie(ctx, req, item, p, summary)
			}
			return nil
		}
		// tracked id gone: state.Found stays false and resolves to removed
	case arr.IsAuth(err):
		e.noteServiceError(services.TypeRadarr, err)
		return err
	default:
		return err
	}

	decision := ResolveMovieStatus(req.Status, state)
	return e.apply(ctx, req, decision, summary)
}

func (e *Engine) submitMovie(ctx context.Context, req *requests.Request, item *requests.Item, p movieProvider, summary *PassSummary) error {
	movie, err := p.client.AddMovie(ctx, radarr.AddMovieInput{
		Title:      req.Title,
		TmdbID:     req.ExternalMediaID,
		AddOptions: radarr.MovieAddOptions{SearchForMovie: true},
	})
	if err != nil {
		e.noteServiceError(services.TypeRadarr, err)
		return fmt.Errorf("add movie: %w", err)
	}
	if err := e.requests.SetItemProviderID(ctx, item.ID, movie.ID); err != nil {
		return err
	}
	summary.Submitted++
	e.logger.Info().
		Int64("request_id", req.ID).
		Int64("movie_id", movie.ID).
		Str("title", req.Title).
		Msg("Submitted movie to automation service")
	return nil
}

func (e *Engine) processEpisodes(ctx context.Context, req *requests.Request, p seriesProvider, summary *PassSummary) error {
	if !p.ok || len(req.Items) == 0 {
		return nil
	}
	summary.Processed++
	tracked := anyTracked(req.Items)

	series, err := p.client.GetSeriesByTvdbID(ctx, req.ExternalMediaID)
	switch {
	case err == nil:
	case arr.IsNotFound(err):
		if !tracked {
			if isApproved(req.Status) {
				return e.submitSeries(ctx, req, p, summary)
			}
			return nil
		}
		decision := ResolveEpisodeStatus(req.Status, req.Items, SeriesState{}, e.cfg.PartialSeriesSuppressesAvailable)
		return e.apply(ctx, req, decision, summary)
	case arr.IsAuth(err):
		e.noteServiceError(services.TypeSonarr, err)
		return err
	default:
		return err
	}

	episodes, err := p.client.GetEpisodes(ctx, series.ID)
	if err != nil {
		if arr.IsAuth(err) {
			e.noteServiceError(services.TypeSonarr, err)
		}
		return err
	}

	state := SeriesState{
		Found:           true,
		FullyDownloaded: series.Statistics.FullyDownloaded(),
		Episodes:        make(map[requests.EpisodeKey]EpisodeState, len(episodes)),
	}
	byKey := make(map[requests.EpisodeKey]sonarr.Episode, len(episodes))
	for _, ep := range episodes {
		key := requests.EpisodeKey{Season: ep.SeasonNumber, Episode: ep.EpisodeNumber}
		byKey[key] = ep
		state.Episodes[key] = EpisodeState{HasFile: ep.HasFile, QueueActive: p.queue[ep.ID]}
	}

	// Requests folded in before the series metadata arrived get their
	// provider ids backfilled as episodes become known. Newly linked
	// episodes that have no file and no active download were never part
	// of a submit, so they get their monitor-and-search here.
	var acquire []int64
	for _, item := range req.Items {
		if item.ProviderID != nil {
			continue
		}
		ep, ok := byKey[item.Key()]
		if !ok {
			continue
		}
		if err := e.requests.SetItemProviderID(ctx, item.ID, ep.ID); err != nil {
			return err
		}
		if req.Status != requests.StatusPending && !ep.HasFile && !p.queue[ep.ID] {
			acquire = append(acquire, ep.ID)
		}
	}
	if len(acquire) > 0 {
		if err := p.client.SetEpisodesMonitored(ctx, acquire, true); err != nil {
			return err
		}
		if err := p.client.SearchEpisodes(ctx, acquire); err != nil {
			return err
		}
	}

	decision := ResolveEpisodeStatus(req.Status, req.Items, state, e.cfg.PartialSeriesSuppressesAvailable)

	if decision.Transition && decision.Status == requests.StatusAvailable {
		// Cross-check against a fresh episode listing before announcing
		// completion; the queue snapshot can run ahead of the file index.
		confirmed, err := e.confirmEpisodesAvailable(ctx, p, series.ID, req.Items)
		if err != nil {
			return err
		}
		if !confirmed {
			decision.Status = requests.StatusPartiallyAvailable
			decision.Reason = "awaiting library index"
		}
	}

	return e.apply(ctx, req, decision, summary)
}

func (e *Engine) submitSeries(ctx context.Context, req *requests.Request, p seriesProvider, summary *PassSummary) error {
	series, err := p.client.AddSeries(ctx, sonarr.AddSeriesInput{
		Title:  req.Title,
		TvdbID: req.ExternalMediaID,
		AddOptions: sonarr.SeriesAddOptions{
			SearchForMissingEpisodes: false,
			IgnoreEpisodesWithFiles:  true,
		},
	})
	if err != nil {
		e.noteServiceError(services.TypeSonarr, err)
		return fmt.Errorf("add series: %w", err)
	}

	// Monitor and search only the requested episodes. The episode list can
	// lag a fresh add; anything unmatched is picked up on a later pass.
	episodes, err := p.client.GetEpisodes(ctx, series.ID)
	if err != nil {
		return err
	}
	byKey := make(map[requests.EpisodeKey]sonarr.Episode, len(episodes))
	for _, ep := range episodes {
		byKey[requests.EpisodeKey{Season: ep.SeasonNumber, Episode: ep.EpisodeNumber}] = ep
	}

	var episodeIDs []int64
	for _, item := range req.Items {
		ep, ok := byKey[item.Key()]
		if !ok {
			continue
		}
		episodeIDs = append(episodeIDs, ep.ID)
		if err := e.requests.SetItemProviderID(ctx, item.ID, ep.ID); err != nil {
			return err
		}
	}
	if len(episodeIDs) > 0 {
		if err := p.client.SetEpisodesMonitored(ctx, episodeIDs, true); err != nil {
			return err
		}
		if err := p.client.SearchEpisodes(ctx, episodeIDs); err != nil {
			return err
		}
	}

	summary.Submitted++
	e.logger.Info().
		Int64("request_id", req.ID).
		Int64("series_id", series.ID).
		Int("episodes", len(episodeIDs)).
		Str("title", req.Title).
		Msg("Submitted series episodes to automation service")
	return nil
}

func (e *Engine) confirmEpisodesAvailable(ctx context.Context, p seriesProvider, seriesID int64, items []*requests.Item) (bool, error) {
	if e.cfg.PartialSeriesSuppressesAvailable {
		// The series statistics came from the lookup at the start of the
		// request's processing; re-read them so a hold on an incomplete
		// series is decided on current numbers.
		series, err := p.client.GetSeries(ctx, seriesID)
		if err != nil {
			return false, err
		}
		if !series.Statistics.FullyDownloaded() {
			return false, nil
		}
	}

	episodes, err := p.client.GetEpisodes(ctx, seriesID)
	if err != nil {
		return false, err
	}
	hasFile := make(map[requests.EpisodeKey]bool, len(episodes))
	for _, ep := range episodes {
		hasFile[requests.EpisodeKey{Season: ep.SeasonNumber, Episode: ep.EpisodeNumber}] = ep.HasFile
	}
	for _, item := range items {
		if !hasFile[item.Key()] {
			return false, nil
		}
	}
	return true, nil
}

// apply persists a resolved transition and emits the notification for it.
// The notification keys off the previously persisted status, so a status
// re-observed on a later pass never re-notifies. Item statuses are written
// even when the aggregate holds steady, so that a second episode landing
// inside a partially_available request is not lost until the next transition.
func (e *Engine) apply(ctx context.Context, req *requests.Request, decision Decision, summary *PassSummary) error {
	for _, item := range req.Items {
		status, ok := decision.ItemStatuses[item.Key()]
		if !ok || status == item.Status {
			continue
		}
		if err := e.requests.SetItemStatus(ctx, item.ID, status); err != nil {
			return err
		}
	}

	if !decision.Transition {
		return nil
	}

	var reason *string
	if decision.Reason != "" {
		reason = &decision.Reason
	}
	// UpdateStatus emits the notification itself when the stored status
	// actually changed.
	if _, _, err := e.requests.UpdateStatus(ctx, req.ID, decision.Status, reason); err != nil {
		return err
	}

	switch decision.Status {
	case requests.StatusDownloading:
		summary.Downloading++
	case requests.StatusPartiallyAvailable:
		summary.PartiallyAvailable++
	case requests.StatusAvailable:
		summary.Available++
	case requests.StatusRemoved:
		summary.Removed++
	}

	return nil
}

func (e *Engine) noteServiceError(serviceType string, err error) {
	if e.health == nil {
		return
	}
	if arr.IsAuth(err) {
		e.health.SetError(health.CategoryServices, serviceType, err.Error())
	} else {
		e.health.SetWarning(health.CategoryServices, serviceType, err.Error())
	}
}

func (e *Engine) clearServiceError(serviceType string) {
	if e.health == nil {
		return
	}
	e.health.ClearStatus(health.CategoryServices, serviceType)
}

func isApproved(status string) bool {
	return status == requests.StatusSubmitted || status == requests.StatusQueued
}

func anyTracked(items []*requests.Item) bool {
	for _, item := range items {
		if item.ProviderID != nil {
			return true
		}
	}
	return false
}
