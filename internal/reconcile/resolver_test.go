package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/requesterr/requesterr/internal/requests"
)

func episodeItem(season, episode int64) *requests.Item {
	return &requests.Item{
		Provider: requests.ProviderSonarr,
		Season:   &season,
		Episode:  &episode,
		Status:   requests.StatusPending,
	}
}

func TestResolveMovieStatus(t *testing.T) {
	tests := []struct {
		name       string
		current    string
		state      MovieState
		transition bool
		status     string
	}{
		{
			name:       "not found in service",
			current:    requests.StatusDownloading,
			state:      MovieState{Found: false},
			transition: true,
			status:     requests.StatusRemoved,
		},
		{
			name:       "file present",
			current:    requests.StatusDownloading,
			state:      MovieState{Found: true, HasFile: true},
			transition: true,
			status:     requests.StatusAvailable,
		},
		{
			name:       "active queue entry",
			current:    requests.StatusSubmitted,
			state:      MovieState{Found: true, QueueActive: true},
			transition: true,
			status:     requests.StatusDownloading,
		},
		{
			name:       "no file and no queue keeps current status",
			current:    requests.StatusSubmitted,
			state:      MovieState{Found: true},
			transition: false,
		},
		{
			name:       "same status does not re-announce",
			current:    requests.StatusAvailable,
			state:      MovieState{Found: true, HasFile: true},
			transition: false,
		},
		{
			name:    "available never regresses to downloading",
			current: requests.StatusAvailable,
			// A stale queue entry can linger after import completes.
			state:      MovieState{Found: true, QueueActive: true},
			transition: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := ResolveMovieStatus(tt.current, tt.state)
			assert.Equal(t, tt.transition, decision.Transition)
			if tt.transition {
				assert.Equal(t, tt.status, decision.Status)
			}
		})
	}
}

func TestResolveMovieStatus_RemovedBypassesOrdering(t *testing.T) {
	decision := ResolveMovieStatus(requests.StatusAvailable, MovieState{Found: false})
	require.True(t, decision.Transition)
	assert.Equal(t, requests.StatusRemoved, decision.Status)
	assert.NotEmpty(t, decision.Reason)
}

// A two-episode request observed across three consecutive passes: nothing
// yet, then one episode downloading, then one imported, then both.
func TestResolveEpisodeStatus_LifecycleAcrossPasses(t *testing.T) {
	items := []*requests.Item{episodeItem(1, 1), episodeItem(1, 2)}
	k1 := requests.EpisodeKey{Season: 1, Episode: 1}
	k2 := requests.EpisodeKey{Season: 1, Episode: 2}

	// Pass 1: submitted, nothing moving yet.
	series := SeriesState{Found: true, Episodes: map[requests.EpisodeKey]EpisodeState{}}
	decision := ResolveEpisodeStatus(requests.StatusSubmitted, items, series, false)
	assert.False(t, decision.Transition)

	// Pass 2: first episode is in the download queue.
	series.Episodes[k1] = EpisodeState{QueueActive: true}
	decision = ResolveEpisodeStatus(requests.StatusSubmitted, items, series, false)
	require.True(t, decision.Transition)
	assert.Equal(t, requests.StatusDownloading, decision.Status)
	assert.Equal(t, requests.StatusDownloading, decision.ItemStatuses[k1])
	assert.Equal(t, requests.StatusPending, decision.ItemStatuses[k2])

	// Pass 3: first episode imported, second still downloading.
	series.Episodes[k1] = EpisodeState{HasFile: true}
	series.Episodes[k2] = EpisodeState{QueueActive: true}
	decision = ResolveEpisodeStatus(requests.StatusDownloading, items, series, false)
	require.True(t, decision.Transition)
	assert.Equal(t, requests.StatusPartiallyAvailable, decision.Status)
	assert.Equal(t, requests.StatusAvailable, decision.ItemStatuses[k1])
	assert.Equal(t, requests.StatusDownloading, decision.ItemStatuses[k2])

	// Pass 4: both imported.
	series.Episodes[k2] = EpisodeState{HasFile: true}
	decision = ResolveEpisodeStatus(requests.StatusPartiallyAvailable, items, series, false)
	require.True(t, decision.Transition)
	assert.Equal(t, requests.StatusAvailable, decision.Status)
}

func TestResolveEpisodeStatus_SeriesRemoved(t *testing.T) {
	items := []*requests.Item{episodeItem(1, 1)}
	decision := ResolveEpisodeStatus(requests.StatusDownloading, items, SeriesState{Found: false}, false)
	require.True(t, decision.Transition)
	assert.Equal(t, requests.StatusRemoved, decision.Status)
}

func TestResolveEpisodeStatus_NoItems(t *testing.T) {
	decision := ResolveEpisodeStatus(requests.StatusPending, nil, SeriesState{Found: true}, false)
	assert.False(t, decision.Transition)
}

func TestResolveEpisodeStatus_SuppressPartial(t *testing.T) {
	items := []*requests.Item{episodeItem(2, 5)}
	key := requests.EpisodeKey{Season: 2, Episode: 5}
	series := SeriesState{
		Found:           true,
		FullyDownloaded: false,
		Episodes:        map[requests.EpisodeKey]EpisodeState{key: {HasFile: true}},
	}

	decision := ResolveEpisodeStatus(requests.StatusDownloading, items, series, true)
	require.True(t, decision.Transition)
	assert.Equal(t, requests.StatusPartiallyAvailable, decision.Status)

	// Once the series itself has everything, the request graduates.
	series.FullyDownloaded = true
	decision = ResolveEpisodeStatus(requests.StatusPartiallyAvailable, items, series, true)
	require.True(t, decision.Transition)
	assert.Equal(t, requests.StatusAvailable, decision.Status)
}

func TestResolveEpisodeStatus_NeverRegresses(t *testing.T) {
	items := []*requests.Item{episodeItem(1, 1), episodeItem(1, 2)}
	k1 := requests.EpisodeKey{Season: 1, Episode: 1}

	// The service briefly reports only partial progress for a request
	// already marked available. The stored status must hold.
	series := SeriesState{
		Found:    true,
		Episodes: map[requests.EpisodeKey]EpisodeState{k1: {HasFile: true}},
	}
	decision := ResolveEpisodeStatus(requests.StatusAvailable, items, series, false)
	assert.False(t, decision.Transition)
}

func TestGuardBackwards(t *testing.T) {
	tests := []struct {
		name       string
		current    string
		proposed   string
		transition bool
	}{
		{"forward", requests.StatusSubmitted, requests.StatusDownloading, true},
		{"same status", requests.StatusDownloading, requests.StatusDownloading, false},
		{"backward", requests.StatusAvailable, requests.StatusDownloading, false},
		{"partial to available", requests.StatusPartiallyAvailable, requests.StatusAvailable, true},
		{"available to partial", requests.StatusAvailable, requests.StatusPartiallyAvailable, false},
		{"removed always wins", requests.StatusAvailable, requests.StatusRemoved, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := guardBackwards(tt.current, transition(tt.proposed, ""))
			assert.Equal(t, tt.transition, decision.Transition)
		})
	}
}
