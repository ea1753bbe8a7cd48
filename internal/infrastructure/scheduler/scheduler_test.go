package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJob struct {
	name  string
	runs  atomic.Int64
	block chan struct{}
	err   error
}

func (j *stubJob) Name() string        { return j.name }
func (j *stubJob) Description() string { return "stub job" }

func (j *stubJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	if j.block != nil {
		select {
		case <-j.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return j.err
}

func newTestScheduler(tick time.Duration) *Scheduler {
	cfg := DefaultSchedulerConfig()
	cfg.TickInterval = tick
	return NewScheduler(cfg)
}

func TestScheduler_RegisterValidation(t *testing.T) {
	s := newTestScheduler(time.Second)

	assert.ErrorIs(t, s.Register(nil, NewIntervalSchedule(time.Second)), ErrNilJob)
	assert.ErrorIs(t, s.Register(&stubJob{name: "a"}, nil), ErrNilSchedule)

	require.NoError(t, s.Register(&stubJob{name: "a"}, NewIntervalSchedule(time.Second)))
	assert.ErrorIs(t, s.Register(&stubJob{name: "a"}, NewIntervalSchedule(time.Second)), ErrJobAlreadyExists)
}

func TestScheduler_UnregisterUnknownJob(t *testing.T) {
	s := newTestScheduler(time.Second)
	assert.ErrorIs(t, s.Unregister("missing"), ErrJobNotFound)
}

func TestScheduler_RunsDueJobs(t *testing.T) {
	s := newTestScheduler(5 * time.Millisecond)

	job := &stubJob{name: "tick"}
	require.NoError(t, s.Register(job, NewIntervalSchedule(10*time.Millisecond)))
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return job.runs.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestScheduler_SkipsOverlappingRuns(t *testing.T) {
	s := newTestScheduler(5 * time.Millisecond)

	job := &stubJob{name: "slow", block: make(chan struct{})}
	require.NoError(t, s.Register(job, NewIntervalSchedule(10*time.Millisecond)))
	require.NoError(t, s.Start(context.Background()))

	// Let several schedule slots pass while the first run is blocked.
	assert.Eventually(t, func() bool {
		return job.runs.Load() == 1
	}, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int64(1), job.runs.Load())

	close(job.block)
	require.NoError(t, s.Stop())
}

func TestScheduler_RunNow(t *testing.T) {
	s := newTestScheduler(time.Hour)

	job := &stubJob{name: "manual"}
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))

	result, err := s.RunNow(context.Background(), "manual")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, int64(1), job.runs.Load())

	_, err = s.RunNow(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestScheduler_RunNowReportsJobError(t *testing.T) {
	s := newTestScheduler(time.Hour)

	wantErr := errors.New("refresh failed")
	job := &stubJob{name: "failing", err: wantErr}
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))

	result, err := s.RunNow(context.Background(), "failing")
	require.ErrorIs(t, err, wantErr)
	assert.False(t, result.Success)

	last, ok := s.LastRun("failing")
	require.True(t, ok)
	assert.False(t, last.Success)
}

func TestScheduler_StartStop(t *testing.T) {
	s := newTestScheduler(time.Millisecond)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	assert.ErrorIs(t, s.Start(context.Background()), ErrSchedulerAlreadyRunning)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.ErrorIs(t, s.Stop(), ErrSchedulerNotRunning)
}

func TestIntervalSchedule(t *testing.T) {
	sched := NewIntervalSchedule(30 * time.Second)
	now := time.Now()

	assert.Equal(t, now.Add(30*time.Second), sched.Next(now))
	assert.Equal(t, "@every 30s", sched.String())
}
