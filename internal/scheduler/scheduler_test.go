package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/requesterr/requesterr/internal/testutil"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	sched, err := New(testutil.NopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { sched.Stop() })
	return sched
}

func TestRegisterTask(t *testing.T) {
	sched := newTestScheduler(t)

	err := sched.RegisterTask(TaskConfig{
		ID:       "sync",
		Name:     "Sync",
		Interval: time.Hour,
		Func:     func(context.Context) error { return nil },
	})
	require.NoError(t, err)

	tasks := sched.ListTasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "sync", tasks[0].ID)
	assert.Equal(t, time.Hour.String(), tasks[0].Interval)
	assert.False(t, tasks[0].Running)
	assert.Nil(t, tasks[0].LastRun)
}

func TestRegisterTask_DuplicateID(t *testing.T) {
	sched := newTestScheduler(t)
	cfg := TaskConfig{
		ID:       "sync",
		Name:     "Sync",
		Interval: time.Hour,
		Func:     func(context.Context) error { return nil },
	}

	require.NoError(t, sched.RegisterTask(cfg))
	assert.Error(t, sched.RegisterTask(cfg))
}

func TestRegisterTask_RequiresSchedule(t *testing.T) {
	sched := newTestScheduler(t)

	err := sched.RegisterTask(TaskConfig{
		ID:   "broken",
		Name: "Broken",
		Func: func(context.Context) error { return nil },
	})
	assert.Error(t, err)
}

func TestRegisterTask_Cron(t *testing.T) {
	sched := newTestScheduler(t)

	err := sched.RegisterTask(TaskConfig{
		ID:   "nightly",
		Name: "Nightly",
		Cron: "0 3 * * *",
		Func: func(context.Context) error { return nil },
	})
	require.NoError(t, err)

	tasks := sched.ListTasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "0 3 * * *", tasks[0].Cron)
}

func TestRunNow(t *testing.T) {
	sched := newTestScheduler(t)

	var runs atomic.Int64
	done := make(chan struct{}, 1)
	err := sched.RegisterTask(TaskConfig{
		ID:       "sync",
		Name:     "Sync",
		Interval: time.Hour,
		Func: func(context.Context) error {
			runs.Add(1)
			done <- struct{}{}
			return nil
		},
	})
	require.NoError(t, err)

	require.NoError(t, sched.RunNow("sync"))
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("task did not run")
	}
	assert.Equal(t, int64(1), runs.Load())

	assert.Error(t, sched.RunNow("missing"))
}

func TestStart_RunsOnStartTasks(t *testing.T) {
	sched := newTestScheduler(t)

	done := make(chan struct{}, 1)
	err := sched.RegisterTask(TaskConfig{
		ID:         "boot",
		Name:       "Boot",
		Interval:   time.Hour,
		RunOnStart: true,
		Func: func(context.Context) error {
			done <- struct{}{}
			return nil
		},
	})
	require.NoError(t, err)

	require.NoError(t, sched.Start())
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("run-on-start task did not run")
	}
}

func TestUnregisterTask(t *testing.T) {
	sched := newTestScheduler(t)

	require.NoError(t, sched.RegisterTask(TaskConfig{
		ID:       "sync",
		Name:     "Sync",
		Interval: time.Hour,
		Func:     func(context.Context) error { return nil },
	}))

	require.NoError(t, sched.UnregisterTask("sync"))
	assert.Empty(t, sched.ListTasks())

	// Unregistering a missing task is a no-op.
	require.NoError(t, sched.UnregisterTask("sync"))
}
