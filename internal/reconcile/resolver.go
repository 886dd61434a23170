package reconcile

import (
	"github.com/requesterr/requesterr/internal/requests"
)

// MovieState is the externally observed state for a movie request.
type MovieState struct {
	Found       bool
	HasFile     bool
	QueueActive bool
}

// EpisodeState is the externally observed state for one tracked episode.
type EpisodeState struct {
	HasFile     bool
	QueueActive bool
}

// SeriesState is the externally observed state for an episode request's series.
type SeriesState struct {
	Found           bool
	FullyDownloaded bool
	Episodes        map[requests.EpisodeKey]EpisodeState
}

// Decision is the resolver's verdict for a single request. When Transition is
// false the scheduler leaves the stored status untouched, which is how noisy
// or ambiguous external data is kept from flapping a request backwards.
// ItemStatuses is reported independently of Transition: per-episode progress
// is persisted even when the aggregate status holds.
type Decision struct {
	Transition   bool
	Status       string
	Reason       string
	ItemStatuses map[requests.EpisodeKey]string
}

func noTransition() Decision {
	return Decision{}
}

func transition(status string, reason string) Decision {
	return Decision{Transition: true, Status: status, Reason: reason}
}

// statusRank orders lifecycle statuses along the forward direction of the
// state machine. Lower-ranked resolutions never overwrite a higher-ranked
// stored status; only removed bypasses the ordering.
func statusRank(status string) int {
	switch status {
	case requests.StatusPending:
		return 0
	case requests.StatusSubmitted, requests.StatusQueued:
		return 1
	case requests.StatusDownloading:
		return 2
	case requests.StatusPartiallyAvailable:
		return 3
	case requests.StatusAvailable:
		return 4
	default:
		return -1
	}
}

func guardBackwards(current string, decision Decision) Decision {
	if !decision.Transition {
		return decision
	}
	if decision.Status == requests.StatusRemoved {
		return decision
	}
	if decision.Status == current {
		return noTransition()
	}
	if statusRank(decision.Status) < statusRank(current) {
		return noTransition()
	}
	return decision
}

// ResolveMovieStatus decides the next status for a movie request from a
// snapshot of the external movie-automation service.
func ResolveMovieStatus(current string, state MovieState) Decision {
	if !state.Found {
		return transition(requests.StatusRemoved, "title no longer exists in movie service")
	}
	if state.HasFile {
		return guardBackwards(current, transition(requests.StatusAvailable, ""))
	}
	if state.QueueActive {
		return guardBackwards(current, transition(requests.StatusDownloading, ""))
	}
	return noTransition()
}

// ResolveEpisodeStatus decides the next status for an episode request by
// classifying each tracked item and aggregating. suppressPartial controls
// whether a series that is itself still missing episodes elsewhere holds the
// request at partially_available even when every tracked item has a file.
func ResolveEpisodeStatus(current string, items []*requests.Item, series SeriesState, suppressPartial bool) Decision {
	if !series.Found {
		return transition(requests.StatusRemoved, "series no longer exists in TV service")
	}
	if len(items) == 0 {
		return noTransition()
	}

	itemStatuses := make(map[requests.EpisodeKey]string, len(items))
	var available, downloading int
	for _, item := range items {
		key := item.Key()
		status := item.Status
		if ep, ok := series.Episodes[key]; ok {
			switch {
			case ep.HasFile:
				status = requests.StatusAvailable
			case ep.QueueActive:
				status = requests.StatusDownloading
			}
		}
		itemStatuses[key] = status
		switch status {
		case requests.StatusAvailable:
			available++
		case requests.StatusDownloading:
			downloading++
		}
	}

	var decision Decision
	switch {
	case available == len(items):
		if suppressPartial && !series.FullyDownloaded {
			decision = transition(requests.StatusPartiallyAvailable, "requested episodes present, series still incomplete")
		} else {
			decision = transition(requests.StatusAvailable, "")
		}
	case available > 0:
		decision = transition(requests.StatusPartiallyAvailable, "")
	case downloading > 0:
		decision = transition(requests.StatusDownloading, "")
	default:
		decision = noTransition()
	}

	decision = guardBackwards(current, decision)
	decision.ItemStatuses = itemStatuses
	return decision
}
