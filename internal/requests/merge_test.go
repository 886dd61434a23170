package requests

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/requesterr/requesterr/internal/database/sqlc"
)

// insertRequest writes a request row directly, bypassing the service's
// fold-in behavior so tests can manufacture true duplicates.
func insertRequest(t *testing.T, queries *sqlc.Queries, userID int64, tvdbID int64, status string, pairs ...[2]int64) int64 {
	t.Helper()
	ctx := context.Background()

	row, err := queries.CreateRequest(ctx, sqlc.CreateRequestParams{
		RequestType:     TypeEpisode,
		ExternalMediaID: tvdbID,
		Title:           "Test Series",
		Status:          status,
		RequestedBy:     userID,
	})
	require.NoError(t, err)

	for _, pair := range pairs {
		_, err := queries.CreateRequestItem(ctx, sqlc.CreateRequestItemParams{
			RequestID: row.ID,
			Provider:  ProviderSonarr,
			Season:    sql.NullInt64{Int64: pair[0], Valid: true},
			Episode:   sql.NullInt64{Int64: pair[1], Valid: true},
			Status:    StatusPending,
		})
		require.NoError(t, err)
	}

	return row.ID
}

func TestMergeDuplicates_FoldsIntoEarliest(t *testing.T) {
	service, tdb, userID := newTestService(t)
	queries := sqlc.New(tdb.Conn)
	ctx := context.Background()

	first := insertRequest(t, queries, userID, 81189, StatusSubmitted, [2]int64{1, 1}, [2]int64{1, 2})
	second := insertRequest(t, queries, userID, 81189, StatusSubmitted, [2]int64{1, 2}, [2]int64{1, 3})

	before, err := service.Get(ctx, first)
	require.NoError(t, err)

	summary, err := service.MergeDuplicates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Merged)
	assert.Equal(t, 1, summary.Reparented)
	assert.Equal(t, 1, summary.Conflicts)

	// The earliest request keeps its identity and creation time; the
	// duplicate is gone.
	canonical, err := service.Get(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, before.CreatedAt, canonical.CreatedAt)
	assert.Len(t, canonical.Items, 3)

	_, err = service.Get(ctx, second)
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestMergeDuplicates_Idempotent(t *testing.T) {
	service, tdb, userID := newTestService(t)
	queries := sqlc.New(tdb.Conn)
	ctx := context.Background()

	insertRequest(t, queries, userID, 81189, StatusSubmitted, [2]int64{1, 1})
	insertRequest(t, queries, userID, 81189, StatusSubmitted, [2]int64{1, 2})

	_, err := service.MergeDuplicates(ctx)
	require.NoError(t, err)

	again, err := service.MergeDuplicates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Merged)
	assert.Equal(t, 0, again.Reparented)
	assert.Equal(t, 0, again.Conflicts)
}

func TestMergeDuplicates_PendingNeverMergesWithApproved(t *testing.T) {
	service, tdb, userID := newTestService(t)
	queries := sqlc.New(tdb.Conn)
	ctx := context.Background()

	approved := insertRequest(t, queries, userID, 81189, StatusSubmitted, [2]int64{1, 1})
	pending := insertRequest(t, queries, userID, 81189, StatusPending, [2]int64{1, 2})

	summary, err := service.MergeDuplicates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Merged)

	// Folding a pending request into an approved one would silently
	// approve it; both must survive.
	_, err = service.Get(ctx, approved)
	require.NoError(t, err)
	_, err = service.Get(ctx, pending)
	require.NoError(t, err)
}

func TestMergeDuplicates_IgnoresDifferentSeries(t *testing.T) {
	service, tdb, userID := newTestService(t)
	queries := sqlc.New(tdb.Conn)
	ctx := context.Background()

	insertRequest(t, queries, userID, 81189, StatusSubmitted, [2]int64{1, 1})
	insertRequest(t, queries, userID, 73255, StatusSubmitted, [2]int64{1, 1})

	summary, err := service.MergeDuplicates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Merged)
}
