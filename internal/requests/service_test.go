package requests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/requesterr/requesterr/internal/database/sqlc"
	"github.com/requesterr/requesterr/internal/notification"
	"github.com/requesterr/requesterr/internal/notification/mock"
	"github.com/requesterr/requesterr/internal/testutil"
)

func newTestService(t *testing.T) (*Service, *testutil.TestDB, int64) {
	t.Helper()
	tdb := testutil.NewTestDB(t)
	t.Cleanup(tdb.Close)

	service := NewService(tdb.Conn, tdb.Logger)

	user, err := sqlc.New(tdb.Conn).CreateUser(context.Background(), sqlc.CreateUserParams{
		Username: "tester",
	})
	require.NoError(t, err)

	return service, tdb, user.ID
}

func movieInput(tmdbID int64, title string) *CreateInput {
	return &CreateInput{
		RequestType:     TypeMovie,
		ExternalMediaID: tmdbID,
		Title:           title,
		Items:           []ItemInput{{Provider: ProviderRadarr}},
	}
}

func episodeInput(tvdbID int64, title string, pairs ...[2]int64) *CreateInput {
	input := &CreateInput{
		RequestType:     TypeEpisode,
		ExternalMediaID: tvdbID,
		Title:           title,
	}
	for _, pair := range pairs {
		season, episode := pair[0], pair[1]
		input.Items = append(input.Items, ItemInput{
			Provider: ProviderSonarr,
			Season:   &season,
			Episode:  &episode,
		})
	}
	return input
}

func TestCreate_Movie(t *testing.T) {
	service, _, userID := newTestService(t)
	ctx := context.Background()

	req, err := service.Create(ctx, userID, movieInput(603, "The Matrix"))
	require.NoError(t, err)
	assert.Equal(t, StatusPending, req.Status)
	assert.Equal(t, int64(603), req.ExternalMediaID)
	require.Len(t, req.Items, 1)
	assert.Equal(t, ProviderRadarr, req.Items[0].Provider)
	assert.Nil(t, req.Items[0].ProviderID)
}

func TestCreate_MovieDuplicateRejected(t *testing.T) {
	service, _, userID := newTestService(t)
	ctx := context.Background()

	_, err := service.Create(ctx, userID, movieInput(603, "The Matrix"))
	require.NoError(t, err)

	_, err = service.Create(ctx, userID, movieInput(603, "The Matrix"))
	assert.ErrorIs(t, err, ErrAlreadyRequested)
}

func TestCreate_MovieRerequestAfterRemoval(t *testing.T) {
	service, _, userID := newTestService(t)
	ctx := context.Background()

	req, err := service.Create(ctx, userID, movieInput(603, "The Matrix"))
	require.NoError(t, err)

	_, _, err = service.UpdateStatus(ctx, req.ID, StatusRemoved, nil)
	require.NoError(t, err)

	// A removed request no longer blocks a fresh one for the same title.
	again, err := service.Create(ctx, userID, movieInput(603, "The Matrix"))
	require.NoError(t, err)
	assert.NotEqual(t, req.ID, again.ID)
	assert.Equal(t, StatusPending, again.Status)
}

func TestCreate_EpisodeFoldsIntoExisting(t *testing.T) {
	service, _, userID := newTestService(t)
	ctx := context.Background()

	first, err := service.Create(ctx, userID, episodeInput(81189, "Breaking Bad", [2]int64{1, 1}))
	require.NoError(t, err)

	// Same series, new episode: extends the existing request.
	second, err := service.Create(ctx, userID, episodeInput(81189, "Breaking Bad", [2]int64{1, 2}))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, second.Items, 2)

	// Same series, same episode: nothing to add.
	_, err = service.Create(ctx, userID, episodeInput(81189, "Breaking Bad", [2]int64{1, 1}))
	assert.ErrorIs(t, err, ErrAlreadyRequested)
}

func TestCreate_EpisodeFoldIntoCompletedReopens(t *testing.T) {
	service, _, userID := newTestService(t)
	ctx := context.Background()

	notifier := mock.New("test", testutil.NopLogger())
	dispatcher := notification.NewDispatcher(testutil.NopLogger())
	dispatcher.Register(notifier)
	service.SetDispatcher(dispatcher)

	first, err := service.Create(ctx, userID, episodeInput(81189, "Breaking Bad", [2]int64{1, 1}))
	require.NoError(t, err)

	_, _, err = service.UpdateStatus(ctx, first.ID, StatusAvailable, nil)
	require.NoError(t, err)

	// A new episode for the completed series folds in and reopens the
	// request so the reconciler will visit it again.
	folded, err := service.Create(ctx, userID, episodeInput(81189, "Breaking Bad", [2]int64{1, 2}))
	require.NoError(t, err)
	assert.Equal(t, first.ID, folded.ID)
	require.Len(t, folded.Items, 2)
	assert.Equal(t, StatusSubmitted, folded.Status)

	batch, err := service.ListSyncable(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, first.ID, batch[0].ID)

	// Folding into a non-terminal request leaves its status alone.
	stillOpen, err := service.Create(ctx, userID, episodeInput(81189, "Breaking Bad", [2]int64{1, 3}))
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, stillOpen.Status)

	kinds := make([]notification.Kind, 0, len(notifier.Records()))
	for _, record := range notifier.Records() {
		kinds = append(kinds, record.Event.Kind)
	}
	assert.Equal(t, []notification.Kind{
		notification.KindRequestAvailable,
		notification.KindRequestSubmitted,
	}, kinds)
}

func TestCreate_Validation(t *testing.T) {
	service, _, userID := newTestService(t)
	ctx := context.Background()

	_, err := service.Create(ctx, userID, &CreateInput{RequestType: "album", Title: "x", Items: []ItemInput{{Provider: ProviderRadarr}}})
	assert.ErrorIs(t, err, ErrInvalidType)

	_, err = service.Create(ctx, userID, &CreateInput{RequestType: TypeMovie, Title: "x"})
	assert.ErrorIs(t, err, ErrNoItems)
}

func TestAddItems_SkipsDuplicates(t *testing.T) {
	service, _, userID := newTestService(t)
	ctx := context.Background()

	req, err := service.Create(ctx, userID, episodeInput(81189, "Breaking Bad", [2]int64{1, 1}, [2]int64{1, 2}))
	require.NoError(t, err)

	s2, e3 := int64(1), int64(3)
	s1, e1 := int64(1), int64(1)
	added, err := service.AddItems(ctx, req.ID, []ItemInput{
		{Provider: ProviderSonarr, Season: &s1, Episode: &e1},
		{Provider: ProviderSonarr, Season: &s2, Episode: &e3},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, added)
}

func TestUpdateStatus_ReturnsPrevious(t *testing.T) {
	service, _, userID := newTestService(t)
	ctx := context.Background()

	req, err := service.Create(ctx, userID, movieInput(603, "The Matrix"))
	require.NoError(t, err)

	updated, previous, err := service.UpdateStatus(ctx, req.ID, StatusSubmitted, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, previous)
	assert.Equal(t, StatusSubmitted, updated.Status)

	_, _, err = service.UpdateStatus(ctx, req.ID, "bogus", nil)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, _, err = service.UpdateStatus(ctx, 9999, StatusSubmitted, nil)
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestUpdateStatus_NotifiesOncePerTransition(t *testing.T) {
	service, tdb, userID := newTestService(t)
	ctx := context.Background()

	notifier := mock.New("test", tdb.Logger)
	dispatcher := notification.NewDispatcher(tdb.Logger)
	dispatcher.Register(notifier)
	service.SetDispatcher(dispatcher)

	req, err := service.Create(ctx, userID, movieInput(603, "The Matrix"))
	require.NoError(t, err)

	for _, status := range []string{StatusSubmitted, StatusDownloading, StatusAvailable} {
		_, _, err = service.UpdateStatus(ctx, req.ID, status, nil)
		require.NoError(t, err)
	}

	// Writing the same status again must stay silent.
	_, _, err = service.UpdateStatus(ctx, req.ID, StatusAvailable, nil)
	require.NoError(t, err)

	records := notifier.Records()
	require.Len(t, records, 3)
	assert.Equal(t, notification.KindRequestSubmitted, records[0].Event.Kind)
	assert.Equal(t, notification.KindRequestDownloading, records[1].Event.Kind)
	assert.Equal(t, notification.KindRequestAvailable, records[2].Event.Kind)
}

func TestApproveAndDeny(t *testing.T) {
	service, _, userID := newTestService(t)
	ctx := context.Background()

	req, err := service.Create(ctx, userID, movieInput(603, "The Matrix"))
	require.NoError(t, err)

	approved, err := service.Approve(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, approved.Status)

	other, err := service.Create(ctx, userID, movieInput(550, "Fight Club"))
	require.NoError(t, err)

	reason := "not family friendly"
	denied, err := service.Deny(ctx, other.ID, &reason)
	require.NoError(t, err)
	assert.Equal(t, StatusDenied, denied.Status)
	require.NotNil(t, denied.StatusReason)
	assert.Equal(t, reason, *denied.StatusReason)
}

func TestListSyncable_ExcludesTerminal(t *testing.T) {
	service, _, userID := newTestService(t)
	ctx := context.Background()

	active, err := service.Create(ctx, userID, movieInput(603, "The Matrix"))
	require.NoError(t, err)

	done, err := service.Create(ctx, userID, movieInput(550, "Fight Club"))
	require.NoError(t, err)
	_, _, err = service.UpdateStatus(ctx, done.ID, StatusAvailable, nil)
	require.NoError(t, err)

	gone, err := service.Create(ctx, userID, movieInput(27205, "Inception"))
	require.NoError(t, err)
	_, _, err = service.UpdateStatus(ctx, gone.ID, StatusRemoved, nil)
	require.NoError(t, err)

	syncable, err := service.ListSyncable(ctx, 100)
	require.NoError(t, err)
	require.Len(t, syncable, 1)
	assert.Equal(t, active.ID, syncable[0].ID)
}

func TestDelete(t *testing.T) {
	service, _, userID := newTestService(t)
	ctx := context.Background()

	req, err := service.Create(ctx, userID, movieInput(603, "The Matrix"))
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, req.ID))

	_, err = service.Get(ctx, req.ID)
	assert.ErrorIs(t, err, ErrRequestNotFound)
}
