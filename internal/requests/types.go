package requests

import (
	"time"
)

// Request types.
const (
	TypeMovie   = "movie"
	TypeEpisode = "episode"
)

// Providers that fulfill request items.
const (
	ProviderRadarr = "radarr"
	ProviderSonarr = "sonarr"
)

// Request lifecycle states. The happy path is
// pending -> submitted/queued -> downloading -> partially_available -> available.
// removed is the escape hatch for external deletion; denied and failed are
// the admin/error path.
const (
	StatusPending            = "pending"
	StatusSubmitted          = "submitted"
	StatusQueued             = "queued"
	StatusDownloading        = "downloading"
	StatusPartiallyAvailable = "partially_available"
	StatusAvailable          = "available"
	StatusRemoved            = "removed"
	StatusDenied             = "denied"
	StatusFailed             = "failed"
)

// Request is one user-initiated ask for a movie or for specific episodes
// of a series.
type Request struct {
	ID              int64     `json:"id"`
	RequestType     string    `json:"requestType"`
	ExternalMediaID int64     `json:"externalMediaId"`
	Title           string    `json:"title"`
	Status          string    `json:"status"`
	StatusReason    *string   `json:"statusReason,omitempty"`
	RequestedBy     int64     `json:"requestedBy"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	Items           []*Item   `json:"items,omitempty"`
}

// Item is one trackable unit of fulfillment within a Request: the movie
// itself, or one season/episode pair.
type Item struct {
	ID         int64  `json:"id"`
	RequestID  int64  `json:"requestId"`
	Provider   string `json:"provider"`
	ProviderID *int64 `json:"providerId,omitempty"`
	Season     *int64 `json:"season,omitempty"`
	Episode    *int64 `json:"episode,omitempty"`
	Status     string `json:"status"`
}

// EpisodeKey identifies one tracked season/episode pair.
type EpisodeKey struct {
	Season  int64
	Episode int64
}

// Key returns the item's episode key. Movie items return the zero key.
func (i *Item) Key() EpisodeKey {
	var k EpisodeKey
	if i.Season != nil {
		k.Season = *i.Season
	}
	if i.Episode != nil {
		k.Episode = *i.Episode
	}
	return k
}

// IsTerminal reports whether a status is never revisited by the reconciler.
func IsTerminal(status string) bool {
	switch status {
	case StatusAvailable, StatusRemoved, StatusDenied, StatusFailed:
		return true
	}
	return false
}

// IsValidStatus reports whether the string is a known lifecycle state.
func IsValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusSubmitted, StatusQueued, StatusDownloading,
		StatusPartiallyAvailable, StatusAvailable, StatusRemoved,
		StatusDenied, StatusFailed:
		return true
	}
	return false
}
