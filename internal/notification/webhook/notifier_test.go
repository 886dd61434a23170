package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/requesterr/requesterr/internal/notification"
	"github.com/requesterr/requesterr/internal/testutil"
)

func TestNotify_SendsPayload(t *testing.T) {
	var got Payload
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := New("wh", Settings{
		URL:      server.URL,
		Username: "user",
		Password: "pass",
	}, nil, testutil.NopLogger())

	event := notification.Event{
		Kind:            notification.KindRequestAvailable,
		RequestID:       42,
		RequestType:     "movie",
		ExternalMediaID: 603,
		Title:           "The Matrix",
		OccurredAt:      time.Now().UTC(),
	}
	require.NoError(t, notifier.Notify(context.Background(), event))

	assert.Equal(t, "request_available", got.EventType)
	assert.Equal(t, int64(42), got.RequestID)
	assert.Equal(t, "The Matrix", got.Title)
	assert.Contains(t, gotAuth, "Basic ")
}

func TestNotify_CustomHeaders(t *testing.T) {
	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Custom")
	}))
	defer server.Close()

	notifier := New("wh", Settings{
		URL:     server.URL,
		Headers: map[string]string{"X-Custom": "value"},
	}, nil, testutil.NopLogger())

	require.NoError(t, notifier.Test(context.Background()))
	assert.Equal(t, "value", gotHeader)
}

func TestNotify_Non2xxIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	notifier := New("wh", Settings{URL: server.URL}, nil, testutil.NopLogger())
	err := notifier.Notify(context.Background(), notification.Event{Kind: notification.KindRequestRemoved})
	assert.Error(t, err)
}
