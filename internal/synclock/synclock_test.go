package synclock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/requesterr/requesterr/internal/database/sqlc"
	"github.com/requesterr/requesterr/internal/testutil"
)

func TestTryAcquire_MutualExclusion(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	defer tdb.Close()
	queries := sqlc.New(tdb.Conn)
	ctx := context.Background()

	a := New(queries, "pass", time.Minute, tdb.Logger)
	b := New(queries, "pass", time.Minute, tdb.Logger)

	acquired, err := a.TryAcquire(ctx)
	require.NoError(t, err)
	assert.True(t, acquired)

	acquired, err = b.TryAcquire(ctx)
	require.NoError(t, err)
	assert.False(t, acquired)

	require.NoError(t, a.Release(ctx))

	acquired, err = b.TryAcquire(ctx)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestTryAcquire_Reentrant(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	defer tdb.Close()
	queries := sqlc.New(tdb.Conn)
	ctx := context.Background()

	lock := New(queries, "pass", time.Minute, tdb.Logger)

	acquired, err := lock.TryAcquire(ctx)
	require.NoError(t, err)
	assert.True(t, acquired)

	// The same holder re-acquiring extends its lease instead of failing.
	acquired, err = lock.TryAcquire(ctx)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestTryAcquire_ExpiredLeaseIsStolen(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	defer tdb.Close()
	queries := sqlc.New(tdb.Conn)
	ctx := context.Background()

	// Holder a dies without releasing; its lease runs out.
	a := New(queries, "pass", time.Minute, tdb.Logger)
	acquired, err := a.TryAcquire(ctx)
	require.NoError(t, err)
	require.True(t, acquired)

	_, err = tdb.Conn.ExecContext(ctx, "UPDATE sync_locks SET expires_at = ? WHERE name = 'pass'", time.Now().UTC().Add(-time.Second))
	require.NoError(t, err)

	b := New(queries, "pass", time.Minute, tdb.Logger)
	acquired, err = b.TryAcquire(ctx)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestRelease_OnlyByOwner(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	defer tdb.Close()
	queries := sqlc.New(tdb.Conn)
	ctx := context.Background()

	a := New(queries, "pass", time.Minute, tdb.Logger)
	b := New(queries, "pass", time.Minute, tdb.Logger)

	acquired, err := a.TryAcquire(ctx)
	require.NoError(t, err)
	require.True(t, acquired)

	// A non-owner release is a no-op; the lock stays held.
	require.NoError(t, b.Release(ctx))

	acquired, err = b.TryAcquire(ctx)
	require.NoError(t, err)
	assert.False(t, acquired)
}

func TestLocks_IndependentByName(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	defer tdb.Close()
	queries := sqlc.New(tdb.Conn)
	ctx := context.Background()

	a := New(queries, "pass", time.Minute, tdb.Logger)
	b := New(queries, "import", time.Minute, tdb.Logger)

	acquired, err := a.TryAcquire(ctx)
	require.NoError(t, err)
	assert.True(t, acquired)

	acquired, err = b.TryAcquire(ctx)
	require.NoError(t, err)
	assert.True(t, acquired)
}
