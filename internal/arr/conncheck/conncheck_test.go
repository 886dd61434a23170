package conncheck

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/requesterr/requesterr/internal/arr"
	"github.com/requesterr/requesterr/internal/services"
)

func instance(serviceType, url string) *services.Instance {
	return &services.Instance{
		ID:      1,
		Type:    serviceType,
		Name:    "test",
		BaseURL: url,
		APIKey:  "test-key",
	}
}

func TestRun_MovieService(t *testing.T) {
	var gotPath, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Api-Key")
		json.NewEncoder(w).Encode([]map[string]any{{"id": 1, "name": "HD-1080p"}})
	}))
	defer server.Close()

	log := zerolog.Nop()
	err := Run(context.Background(), instance(services.TypeRadarr, server.URL), &log)
	require.NoError(t, err)
	assert.Equal(t, "/api/v3/qualityprofile", gotPath)
	assert.Equal(t, "test-key", gotKey)
}

func TestRun_RejectedCredential(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	log := zerolog.Nop()
	err := Run(context.Background(), instance(services.TypeSonarr, server.URL), &log)
	require.Error(t, err)
	assert.True(t, arr.IsAuth(err))
}

func TestRun_IndexerAggregator(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode([]map[string]any{{"id": 5, "name": "indexer"}})
	}))
	defer server.Close()

	log := zerolog.Nop()
	err := Run(context.Background(), instance(services.TypeProwlarr, server.URL), &log)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/indexer", gotPath)
}

func TestRun_UnknownType(t *testing.T) {
	log := zerolog.Nop()
	err := Run(context.Background(), instance("lidarr", "http://localhost:1"), &log)
	assert.ErrorIs(t, err, services.ErrUnknownType)
}
