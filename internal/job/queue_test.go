package job

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/podcast-studio/backend/internal/db"
)

func newTestQueue(t *testing.T) *JobQueue {
	t.Helper()
	database, err := db.NewSQLite(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	q := NewJobQueue(database.DB())
	t.Cleanup(q.Stop)
	return q
}

func waitForStatus(t *testing.T, q *JobQueue, id string, status JobStatus) *Job {
	t.Helper()
	var got *Job
	require.Eventually(t, func() bool {
		j, err := q.GetJob(id)
		if err != nil {
			return false
		}
		got = j
		return j.Status == status
	}, 5*time.Second, 10*time.Millisecond, "job %s never reached %s", id, status)
	return got
}

func TestEnqueueAndProcess(t *testing.T) {
	q := newTestQueue(t)

	var handled int32
	q.RegisterHandler(JobTranscribe, func(ctx context.Context, j *Job, updateProgress func(float64)) error {
		atomic.AddInt32(&handled, 1)

		var params TranscribeParams
		require.NoError(t, json.Unmarshal(j.Params, &params))
		require.Equal(t, "rec-1", params.RecordingID)

		updateProgress(0.5)
		result, _ := json.Marshal(TranscribeResult{Characters: 11})
		j.Result = result
		return nil
	})

	j, err := q.Enqueue(JobTranscribe, 7, TranscribeParams{RecordingID: "rec-1", Language: "en"})
	require.NoError(t, err)
	require.Equal(t, StatusPending, j.Status)
	require.Equal(t, int64(7), j.EpisodeID)

	done := waitForStatus(t, q, j.ID, StatusCompleted)
	require.Equal(t, int32(1), atomic.LoadInt32(&handled))
	require.Equal(t, 1.0, done.Progress)
	require.NotNil(t, done.StartedAt)
	require.NotNil(t, done.CompletedAt)

	var result TranscribeResult
	require.NoError(t, json.Unmarshal(done.Result, &result))
	require.Equal(t, 11, result.Characters)
}

func TestFailureAndRetry(t *testing.T) {
	q := newTestQueue(t)

	var attempts int32
	q.RegisterHandler(JobDriveSync, func(ctx context.Context, j *Job, updateProgress func(float64)) error {
		if atomic.AddInt32(&attempts, 1) == 1 {
			return context.DeadlineExceeded
		}
		return nil
	})

	j, err := q.Enqueue(JobDriveSync, 0, DriveSyncParams{RecordingID: "rec-2"})
	require.NoError(t, err)

	failed := waitForStatus(t, q, j.ID, StatusFailed)
	require.NotEmpty(t, failed.Error)

	require.NoError(t, q.RetryJob(j.ID))
	done := waitForStatus(t, q, j.ID, StatusCompleted)
	require.Empty(t, done.Error)
	require.Equal(t, int32(2), atomic.LoadInt32(&attempts))

	// Completed jobs cannot be retried.
	require.Error(t, q.RetryJob(j.ID))
}

func TestCancelRunningJob(t *testing.T) {
	q := newTestQueue(t)

	started := make(chan struct{})
	q.RegisterHandler(JobProductionKit, func(ctx context.Context, j *Job, updateProgress func(float64)) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})

	j, err := q.Enqueue(JobProductionKit, 3, ProductionKitParams{})
	require.NoError(t, err)

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("job never started")
	}

	require.NoError(t, q.CancelJob(j.ID))
	waitForStatus(t, q, j.ID, StatusCancelled)
}

func TestUnknownJobTypeFails(t *testing.T) {
	q := newTestQueue(t)

	j, err := q.Enqueue(JobType("bogus"), 0, struct{}{})
	require.NoError(t, err)

	failed := waitForStatus(t, q, j.ID, StatusFailed)
	require.Contains(t, failed.Error, "no handler")
}

func TestListJobs(t *testing.T) {
	q := newTestQueue(t)
	q.RegisterHandler(JobTranscribe, func(ctx context.Context, j *Job, updateProgress func(float64)) error {
		return nil
	})

	j1, err := q.Enqueue(JobTranscribe, 1, TranscribeParams{RecordingID: "a"})
	require.NoError(t, err)
	j2, err := q.Enqueue(JobTranscribe, 2, TranscribeParams{RecordingID: "b"})
	require.NoError(t, err)

	waitForStatus(t, q, j1.ID, StatusCompleted)
	waitForStatus(t, q, j2.ID, StatusCompleted)

	jobs, err := q.ListJobs()
	require.NoError(t, err)
	require.Len(t, jobs, 2)
}

func TestSweepPicksUpStrandedPendingJob(t *testing.T) {
	q := newTestQueue(t)

	var handled int32
	q.RegisterHandler(JobTranscribe, func(ctx context.Context, j *Job, updateProgress func(float64)) error {
		atomic.AddInt32(&handled, 1)
		return nil
	})

	// A pending row with no matching channel push, as happens when the
	// buffer is full at enqueue time.
	id := "stranded-job"
	_, err := q.db.Exec(`
		INSERT INTO jobs (id, type, status, episode_id, params, progress, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, JobTranscribe, StatusPending, int64(1), `{"recording_id":"rec-1"}`, 0.0, time.Now(),
	)
	require.NoError(t, err)

	q.sweepPending()
	done := waitForStatus(t, q, id, StatusCompleted)
	require.Equal(t, int32(1), atomic.LoadInt32(&handled))
	require.NotNil(t, done.CompletedAt)

	// A second sweep finds nothing pending and must not rerun the job.
	require.Equal(t, 0, q.sweepPending())
	require.Equal(t, int32(1), atomic.LoadInt32(&handled))
}
