package plex

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/requesterr/requesterr/internal/testutil"
)

func TestGetWatchlist(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/library/sections/watchlist/all", r.URL.Path)
		assert.Equal(t, "user-token", r.Header.Get("X-Plex-Token"))
		assert.NotEmpty(t, r.Header.Get("X-Plex-Client-Identifier"))
		assert.Equal(t, "Requesterr", r.Header.Get("X-Plex-Product"))

		w.Write([]byte(`{"MediaContainer":{"Metadata":[
			{"type":"movie","title":"The Matrix","year":1999,"Guid":[{"id":"imdb://tt0133093"},{"id":"tmdb://603"}]},
			{"type":"show","title":"Breaking Bad","year":2008,"Guid":[{"id":"tvdb://81189"}]}
		]}}`))
	}))
	defer server.Close()

	client := NewClient(nil, testutil.NopLogger(), "1.0.0")
	client.SetBaseURL(server.URL)

	items, err := client.GetWatchlist(context.Background(), "user-token")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "movie", items[0].Type)
	assert.Equal(t, "The Matrix", items[0].Title)
	assert.Equal(t, int64(603), items[0].TmdbID)
	assert.Zero(t, items[0].TvdbID)

	assert.Equal(t, "show", items[1].Type)
	assert.Equal(t, int64(81189), items[1].TvdbID)
}

func TestGetWatchlist_TokenRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(nil, testutil.NopLogger(), "1.0.0")
	client.SetBaseURL(server.URL)

	_, err := client.GetWatchlist(context.Background(), "bad-token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token rejected")
}

func TestGetWatchlist_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"MediaContainer":{}}`))
	}))
	defer server.Close()

	client := NewClient(nil, testutil.NopLogger(), "1.0.0")
	client.SetBaseURL(server.URL)

	items, err := client.GetWatchlist(context.Background(), "user-token")
	require.NoError(t, err)
	assert.Empty(t, items)
}
