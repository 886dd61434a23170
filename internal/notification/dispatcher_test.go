package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/requesterr/requesterr/internal/testutil"
)

type stubNotifier struct {
	name   string
	err    error
	events []Event
}

func (s *stubNotifier) Name() string { return s.name }

func (s *stubNotifier) Notify(_ context.Context, event Event) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func (s *stubNotifier) Test(context.Context) error { return s.err }

func TestKindForStatus(t *testing.T) {
	tests := []struct {
		status string
		kind   Kind
		ok     bool
	}{
		{"submitted", KindRequestSubmitted, true},
		{"queued", KindRequestSubmitted, true},
		{"downloading", KindRequestDownloading, true},
		{"partially_available", KindRequestPartiallyAvailable, true},
		{"available", KindRequestAvailable, true},
		{"removed", KindRequestRemoved, true},
		{"pending", "", false},
		{"denied", "", false},
		{"failed", "", false},
	}

	for _, tt := range tests {
		kind, ok := KindForStatus(tt.status)
		assert.Equal(t, tt.ok, ok, tt.status)
		assert.Equal(t, tt.kind, kind, tt.status)
	}
}

func TestDispatch_FansOut(t *testing.T) {
	dispatcher := NewDispatcher(testutil.NopLogger())
	a := &stubNotifier{name: "a"}
	b := &stubNotifier{name: "b"}
	dispatcher.Register(a)
	dispatcher.Register(b)

	dispatcher.Dispatch(context.Background(), Event{Kind: KindRequestAvailable, RequestID: 7})

	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)
	assert.False(t, a.events[0].OccurredAt.IsZero(), "timestamp filled in when unset")
}

func TestDispatch_FailureDoesNotBlockOthers(t *testing.T) {
	dispatcher := NewDispatcher(testutil.NopLogger())
	failing := &stubNotifier{name: "failing", err: errors.New("unreachable")}
	working := &stubNotifier{name: "working"}
	dispatcher.Register(failing)
	dispatcher.Register(working)

	dispatcher.Dispatch(context.Background(), Event{Kind: KindRequestRemoved, RequestID: 3})

	assert.Len(t, working.events, 1)
}

func TestDispatch_NoNotifiers(t *testing.T) {
	dispatcher := NewDispatcher(testutil.NopLogger())
	// Must not panic with an empty fan-out set.
	dispatcher.Dispatch(context.Background(), Event{Kind: KindRequestSubmitted})
}
