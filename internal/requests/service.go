package requests

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog"

	"github.com/requesterr/requesterr/internal/database/sqlc"
	"github.com/requesterr/requesterr/internal/notification"
)

var (
	ErrRequestNotFound  = errors.New("request not found")
	ErrAlreadyRequested = errors.New("item already requested")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidType      = errors.New("invalid request type")
	ErrNoItems          = errors.New("request needs at least one item")
)

// CreateInput holds the fields for a new request.
type CreateInput struct {
	RequestType     string
	ExternalMediaID int64
	Title           string
	Status          string // empty defaults to pending
	Items           []ItemInput
}

// ItemInput describes one tracked unit on creation.
type ItemInput struct {
	Provider   string
	ProviderID *int64
	Season     *int64
	Episode    *int64
}

// Service owns Request and RequestItem records.
type Service struct {
	db      *sql.DB
	queries *sqlc.Queries
	logger  zerolog.Logger

	broadcaster *EventBroadcaster
	dispatcher  *notification.Dispatcher
}

// NewService creates a request service.
func NewService(db *sql.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:      db,
		queries: sqlc.New(db),
		logger:  logger.With().Str("component", "requests").Logger(),
	}
}

// SetBroadcaster wires the websocket event broadcaster.
func (s *Service) SetBroadcaster(b *EventBroadcaster) {
	s.broadcaster = b
}

// SetDispatcher wires the notification dispatcher. Every persisted status
// transition then emits exactly one notification event, keyed off the
// previously stored status.
func (s *Service) SetDispatcher(d *notification.Dispatcher) {
	s.dispatcher = d
}

// Create stores a new request with its items. A movie request gets exactly
// one item; an episode request gets one item per season/episode pair. An
// existing active request for the same title is rejected for movies and
// extended with the new episode items for series.
func (s *Service) Create(ctx context.Context, userID int64, input *CreateInput) (*Request, error) {
	if input.RequestType != TypeMovie && input.RequestType != TypeEpisode {
		return nil, ErrInvalidType
	}
	if len(input.Items) == 0 {
		return nil, ErrNoItems
	}
	if input.RequestType == TypeMovie && len(input.Items) != 1 {
		return nil, ErrInvalidType
	}

	existing, err := s.queries.GetActiveRequestByExternalID(ctx, sqlc.GetActiveRequestByExternalIDParams{
		RequestType:     input.RequestType,
		ExternalMediaID: input.ExternalMediaID,
	})
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if existing != nil && err == nil {
		if input.RequestType == TypeMovie {
			return nil, ErrAlreadyRequested
		}
		// Episode requests for an already-tracked series fold their new
		// episodes into the existing record instead of duplicating it.
		added, addErr := s.AddItems(ctx, existing.ID, input.Items)
		if addErr != nil {
			return nil, addErr
		}
		if added == 0 {
			return nil, ErrAlreadyRequested
		}
		if IsTerminal(existing.Status) {
			// A completed request would never be visited again, and the
			// new episodes with it. Reopen it so the reconciler picks
			// them up.
			reason := "new episodes requested"
			if _, _, err := s.UpdateStatus(ctx, existing.ID, StatusSubmitted, &reason); err != nil {
				return nil, err
			}
		}
		return s.Get(ctx, existing.ID)
	}

	status := input.Status
	if status == "" {
		status = StatusPending
	}
	if !IsValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	row, err := s.queries.CreateRequest(ctx, sqlc.CreateRequestParams{
		RequestType:     input.RequestType,
		ExternalMediaID: input.ExternalMediaID,
		Title:           input.Title,
		Status:          status,
		RequestedBy:     userID,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("title", input.Title).Msg("failed to create request")
		return nil, err
	}

	if _, err := s.AddItems(ctx, row.ID, input.Items); err != nil {
		return nil, err
	}

	result, err := s.Get(ctx, row.ID)
	if err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastRequestCreated(result)
	}

	s.logger.Info().
		Int64("requestID", result.ID).
		Str("type", result.RequestType).
		Str("title", result.Title).
		Msg("request created")

	return result, nil
}

// AddItems appends items to a request, skipping duplicates of an already
// tracked (provider, season, episode). Returns the number actually added.
func (s *Service) AddItems(ctx context.Context, requestID int64, items []ItemInput) (int, error) {
	existing, err := s.queries.ListRequestItems(ctx, requestID)
	if err != nil {
		return 0, err
	}

	seen := make(map[EpisodeKey]bool, len(existing))
	for _, row := range existing {
		seen[toItem(row).Key()] = true
	}

	added := 0
	for _, item := range items {
		key := EpisodeKey{}
		if item.Season != nil {
			key.Season = *item.Season
		}
		if item.Episode != nil {
			key.Episode = *item.Episode
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		if _, err := s.queries.CreateRequestItem(ctx, sqlc.CreateRequestItemParams{
			RequestID:  requestID,
			Provider:   item.Provider,
			ProviderID: toNullInt64(item.ProviderID),
			Season:     toNullInt64(item.Season),
			Episode:    toNullInt64(item.Episode),
			Status:     StatusPending,
		}); err != nil {
			return added, err
		}
		added++
	}

	return added, nil
}

// Get loads a request with its items.
func (s *Service) Get(ctx context.Context, id int64) (*Request, error) {
	row, err := s.queries.GetRequest(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	req := toRequest(row)
	items, err := s.queries.ListRequestItems(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		req.Items = append(req.Items, toItem(item))
	}

	return req, nil
}

// List returns all requests, optionally filtered by status or user.
func (s *Service) List(ctx context.Context, status *string, userID *int64) ([]*Request, error) {
	var rows []*sqlc.Request
	var err error

	switch {
	case status != nil:
		rows, err = s.queries.ListRequestsByStatus(ctx, *status)
	case userID != nil:
		rows, err = s.queries.ListRequestsByUser(ctx, *userID)
	default:
		rows, err = s.queries.ListRequests(ctx)
	}
	if err != nil {
		return nil, err
	}

	result := make([]*Request, len(rows))
	for i, row := range rows {
		result[i] = toRequest(row)
	}
	return result, nil
}

// ListSyncable returns the oldest-first batch of requests the reconciler
// should visit: every request in a non-terminal state.
func (s *Service) ListSyncable(ctx context.Context, limit int) ([]*Request, error) {
	rows, err := s.queries.ListSyncableRequests(ctx, int64(limit))
	if err != nil {
		return nil, err
	}

	result := make([]*Request, 0, len(rows))
	for _, row := range rows {
		req := toRequest(row)
		items, err := s.queries.ListRequestItems(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			req.Items = append(req.Items, toItem(item))
		}
		result = append(result, req)
	}
	return result, nil
}

// UpdateStatus persists a status transition and returns the updated
// request plus the previous status, which drives exactly-once
// notification decisions.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string, reason *string) (*Request, string, error) {
	if !IsValidStatus(status) {
		return nil, "", ErrInvalidStatus
	}

	existing, err := s.queries.GetRequest(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrRequestNotFound
		}
		return nil, "", err
	}
	previous := existing.Status

	row, err := s.queries.UpdateRequestStatus(ctx, sqlc.UpdateRequestStatusParams{
		Status:       status,
		StatusReason: toNullString(reason),
		ID:           id,
	})
	if err != nil {
		return nil, "", err
	}

	result := toRequest(row)
	if previous != status {
		if s.broadcaster != nil {
			s.broadcaster.BroadcastRequestUpdated(result, previous)
		}
		s.notifyTransition(ctx, result)
	}

	return result, previous, nil
}

// SetItemStatus persists a per-item status.
func (s *Service) SetItemStatus(ctx context.Context, itemID int64, status string) error {
	if !IsValidStatus(status) {
		return ErrInvalidStatus
	}
	return s.queries.UpdateRequestItemStatus(ctx, sqlc.UpdateRequestItemStatusParams{
		Status: status,
		ID:     itemID,
	})
}

// SetItemProviderID records the external service's internal id for an item
// once the title has been added there.
func (s *Service) SetItemProviderID(ctx context.Context, itemID, providerID int64) error {
	return s.queries.UpdateRequestItemProviderID(ctx, sqlc.UpdateRequestItemProviderIDParams{
		ProviderID: sql.NullInt64{Int64: providerID, Valid: true},
		ID:         itemID,
	})
}

// Approve moves a pending request to submitted. The add-and-search against
// the automation service happens in the reconciler's submit step.
func (s *Service) Approve(ctx context.Context, id int64) (*Request, error) {
	req, _, err := s.UpdateStatus(ctx, id, StatusSubmitted, nil)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("requestID", id).Msg("request approved")
	return req, nil
}

// Deny marks a pending request denied.
func (s *Service) Deny(ctx context.Context, id int64, reason *string) (*Request, error) {
	req, _, err := s.UpdateStatus(ctx, id, StatusDenied, reason)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("requestID", id).Msg("request denied")
	return req, nil
}

// Delete removes a request; items cascade.
func (s *Service) Delete(ctx context.Context, id int64) error {
	req, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.queries.DeleteRequest(ctx, id); err != nil {
		return err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastRequestDeleted(req)
	}
	return nil
}

func toRequest(r *sqlc.Request) *Request {
	req := &Request{
		ID:              r.ID,
		RequestType:     r.RequestType,
		ExternalMediaID: r.ExternalMediaID,
		Title:           r.Title,
		Status:          r.Status,
		RequestedBy:     r.RequestedBy,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.StatusReason.Valid {
		req.StatusReason = &r.StatusReason.String
	}
	return req
}

func toItem(r *sqlc.RequestItem) *Item {
	item := &Item{
		ID:        r.ID,
		RequestID: r.RequestID,
		Provider:  r.Provider,
		Status:    r.Status,
	}
	if r.ProviderID.Valid {
		item.ProviderID = &r.ProviderID.Int64
	}
	if r.Season.Valid {
		item.Season = &r.Season.Int64
	}
	if r.Episode.Valid {
		item.Episode = &r.Episode.Int64
	}
	return item
}

func toNullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func toNullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func (s *Service) notifyTransition(ctx context.Context, req *Request) {
	if s.dispatcher == nil {
		return
	}
	kind, ok := notification.KindForStatus(req.Status)
	if !ok {
		return
	}
	s.dispatcher.Dispatch(ctx, notification.Event{
		Kind:            kind,
		RequestID:       req.ID,
		RequestType:     req.RequestType,
		ExternalMediaID: req.ExternalMediaID,
		Title:           req.Title,
		RequestedBy:     req.RequestedBy,
	})
}
