package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/requesterr/requesterr/internal/crypto"
	"github.com/requesterr/requesterr/internal/database/sqlc"
	"github.com/requesterr/requesterr/internal/testutil"
)

func newTestDirectory(t *testing.T) (*Directory, *sqlc.Queries) {
	t.Helper()
	tdb := testutil.NewTestDB(t)
	t.Cleanup(tdb.Close)

	salt, err := crypto.GenerateSalt()
	require.NoError(t, err)
	secrets := crypto.NewSecretStore("test-passphrase", salt)

	queries := sqlc.New(tdb.Conn)
	return NewDirectory(queries, secrets, tdb.Logger), queries
}

func TestCreateAndResolve(t *testing.T) {
	directory, _ := newTestDirectory(t)
	ctx := context.Background()

	created, err := directory.Create(ctx, CreateInput{
		Type:    TypeRadarr,
		Name:    "main",
		BaseURL: "http://radarr:7878",
		APIKey:  "secret-key",
		Enabled: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "secret-key", created.APIKey)

	resolved, err := directory.Resolve(ctx, TypeRadarr)
	require.NoError(t, err)
	assert.Equal(t, created.ID, resolved.ID)
	assert.Equal(t, "secret-key", resolved.APIKey)
	assert.Equal(t, "http://radarr:7878", resolved.BaseURL)
}

func TestCreate_EncryptsKeyAtRest(t *testing.T) {
	directory, queries := newTestDirectory(t)
	ctx := context.Background()

	created, err := directory.Create(ctx, CreateInput{
		Type: TypeRadarr, Name: "main", BaseURL: "http://radarr:7878",
		APIKey: "secret-key", Enabled: true,
	})
	require.NoError(t, err)

	row, err := queries.GetServiceInstance(ctx, created.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret-key", row.ApiKey)
	assert.True(t, crypto.IsEncrypted(row.ApiKey))
}

func TestCreate_RejectsUnknownType(t *testing.T) {
	directory, _ := newTestDirectory(t)

	_, err := directory.Create(context.Background(), CreateInput{
		Type: "lidarr", Name: "x", BaseURL: "http://x", APIKey: "k", Enabled: true,
	})
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestResolve_NotConfigured(t *testing.T) {
	directory, _ := newTestDirectory(t)

	_, err := directory.Resolve(context.Background(), TypeSonarr)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = directory.Resolve(context.Background(), "lidarr")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestResolve_PrefersDefault(t *testing.T) {
	directory, _ := newTestDirectory(t)
	ctx := context.Background()

	_, err := directory.Create(ctx, CreateInput{
		Type: TypeRadarr, Name: "secondary", BaseURL: "http://a", APIKey: "k1", Enabled: true,
	})
	require.NoError(t, err)

	preferred, err := directory.Create(ctx, CreateInput{
		Type: TypeRadarr, Name: "primary", BaseURL: "http://b", APIKey: "k2",
		Enabled: true, IsDefault: true,
	})
	require.NoError(t, err)

	resolved, err := directory.Resolve(ctx, TypeRadarr)
	require.NoError(t, err)
	assert.Equal(t, preferred.ID, resolved.ID)
}

func TestResolve_IgnoresDisabled(t *testing.T) {
	directory, _ := newTestDirectory(t)
	ctx := context.Background()

	_, err := directory.Create(ctx, CreateInput{
		Type: TypeRadarr, Name: "off", BaseURL: "http://a", APIKey: "k", Enabled: false,
	})
	require.NoError(t, err)

	_, err = directory.Resolve(ctx, TypeRadarr)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestResolve_CachesUntilCleared(t *testing.T) {
	directory, _ := newTestDirectory(t)
	ctx := context.Background()

	created, err := directory.Create(ctx, CreateInput{
		Type: TypeRadarr, Name: "main", BaseURL: "http://old", APIKey: "k", Enabled: true,
	})
	require.NoError(t, err)

	first, err := directory.Resolve(ctx, TypeRadarr)
	require.NoError(t, err)
	assert.Equal(t, "http://old", first.BaseURL)

	// Update goes through the directory, which invalidates the cache.
	_, err = directory.Update(ctx, created.ID, CreateInput{
		Type: TypeRadarr, Name: "main", BaseURL: "http://new", APIKey: "", Enabled: true,
	})
	require.NoError(t, err)

	second, err := directory.Resolve(ctx, TypeRadarr)
	require.NoError(t, err)
	assert.Equal(t, "http://new", second.BaseURL)
	// An empty APIKey on update keeps the stored credential.
	assert.Equal(t, "k", second.APIKey)
}

func TestDelete(t *testing.T) {
	directory, _ := newTestDirectory(t)
	ctx := context.Background()

	created, err := directory.Create(ctx, CreateInput{
		Type: TypeRadarr, Name: "main", BaseURL: "http://a", APIKey: "k", Enabled: true,
	})
	require.NoError(t, err)

	require.NoError(t, directory.Delete(ctx, created.ID))

	_, err = directory.Resolve(ctx, TypeRadarr)
	assert.ErrorIs(t, err, ErrNotConfigured)

	assert.ErrorIs(t, directory.Delete(ctx, created.ID), ErrInstanceMissing)
}

func TestList_RedactsKeys(t *testing.T) {
	directory, _ := newTestDirectory(t)
	ctx := context.Background()

	_, err := directory.Create(ctx, CreateInput{
		Type: TypeRadarr, Name: "main", BaseURL: "http://a", APIKey: "k", Enabled: true,
	})
	require.NoError(t, err)

	instances, err := directory.List(ctx)
	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.Empty(t, instances[0].APIKey)
}
