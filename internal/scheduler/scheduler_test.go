package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/vwapcast/pkg/logger"
)

type countingJob struct {
	name     string
	schedule string
	failures int32 // fail this many times before succeeding
	calls    int32
	block    chan struct{}
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }

func (j *countingJob) Run(ctx context.Context) error {
	n := atomic.AddInt32(&j.calls, 1)
	if j.block != nil {
		select {
		case <-j.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if n <= j.failures {
		return errors.New("transient")
	}
	return nil
}

func newTestScheduler(retries int) *Scheduler {
	return New(logger.Nop(), WithRetry(retries, time.Millisecond))
}

func TestScheduler_AddRemove(t *testing.T) {
	s := newTestScheduler(0)

	require.NoError(t, s.AddJob(&countingJob{name: "b", schedule: "@daily"}))
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "0 0 18 * * 1-5"}))
	assert.Error(t, s.AddJob(&countingJob{name: "a", schedule: "@daily"}), "duplicate name")
	assert.Error(t, s.AddJob(&countingJob{name: "bad", schedule: "not a cron"}))

	assert.Equal(t, []string{"a", "b"}, s.GetAllJobs())

	next, err := s.NextRun("a")
	require.NoError(t, err)
	assert.True(t, next.IsZero(), "next run is only known once cron is started")

	require.NoError(t, s.RemoveJob("b"))
	assert.Error(t, s.RemoveJob("b"))
	assert.Equal(t, []string{"a"}, s.GetAllJobs())
}

func TestScheduler_RunJobSync_Retries(t *testing.T) {
	tests := []struct {
		name        string
		retries     int
		failures    int32
		wantSuccess bool
		wantCalls   int32
	}{
		{"first try", 2, 0, true, 1},
		{"recovers", 2, 2, true, 3},
		{"exhausted", 1, 5, false, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScheduler(tt.retries)
			job := &countingJob{name: "job", schedule: "@daily", failures: tt.failures}
			require.NoError(t, s.AddJob(job))

			result, err := s.RunJobSync("job")
			require.NoError(t, err)
			assert.Equal(t, tt.wantSuccess, result.Success)
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&job.calls))
			if !tt.wantSuccess {
				assert.Equal(t, "transient", result.Error)
			}

			stats := s.GetJobStats()["job"]
			assert.Equal(t, 1, stats.TotalRuns)
			require.NotNil(t, stats.LastRun)
			if tt.wantSuccess {
				assert.Equal(t, 1, stats.SuccessCount)
				assert.NotNil(t, stats.LastSuccess)
			} else {
				assert.Equal(t, 1, stats.FailureCount)
				assert.NotNil(t, stats.LastFailure)
			}
		})
	}
}

func TestScheduler_RunJobUnknown(t *testing.T) {
	s := newTestScheduler(0)
	assert.Error(t, s.RunJob("missing"))
	_, err := s.RunJobSync("missing")
	assert.Error(t, err)
	_, err = s.GetJobHistory("missing")
	assert.Error(t, err)
}

func TestScheduler_SkipsOverlappingRun(t *testing.T) {
	s := newTestScheduler(0)
	job := &countingJob{name: "slow", schedule: "@daily", block: make(chan struct{})}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("slow"))
	require.Eventually(t, func() bool { return atomic.LoadInt32(&job.calls) == 1 }, time.Second, time.Millisecond)

	result, err := s.RunJobSync("slow")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "already running")

	close(job.block)
	s.Stop()
	assert.Equal(t, int32(1), atomic.LoadInt32(&job.calls))
}

func TestScheduler_StopCancelsRunningJob(t *testing.T) {
	s := newTestScheduler(3)
	job := &countingJob{name: "slow", schedule: "@daily", block: make(chan struct{})}
	require.NoError(t, s.AddJob(job))
	s.Start()

	require.NoError(t, s.RunJob("slow"))
	require.Eventually(t, func() bool { return atomic.LoadInt32(&job.calls) == 1 }, time.Second, time.Millisecond)

	s.Stop()

	history, err := s.GetJobHistory("slow")
	require.NoError(t, err)
	require.Len(t, history.Results, 1)
	assert.False(t, history.Results[0].Success)
	assert.Equal(t, int32(1), atomic.LoadInt32(&job.calls), "no retry after stop")
}

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}
	assert.Equal(t, 0.0, h.GetSuccessRate())

	for i := 0; i < maxHistory+10; i++ {
		h.AddResult(JobResult{JobName: "j", Success: i%2 == 0})
	}
	assert.Len(t, h.Results, maxHistory)
	assert.InDelta(t, 0.5, h.GetSuccessRate(), 1e-9)
	assert.Len(t, h.GetLatestResults(3), 3)
	assert.Len(t, h.GetFailedResults(), maxHistory/2)
}
