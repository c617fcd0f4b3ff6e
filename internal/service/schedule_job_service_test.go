package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/batch-scheduler-api/internal/dto"
	"github.com/noah-isme/batch-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/batch-scheduler-api/pkg/errors"
	"github.com/noah-isme/batch-scheduler-api/pkg/jobs"
)

type dispatcherStub struct {
	jobs []jobs.Job
	err  error
}

func (d *dispatcherStub) Enqueue(job jobs.Job) error {
	if d.err != nil {
		return d.err
	}
	d.jobs = append(d.jobs, job)
	return nil
}

type generatorStub struct {
	calls int
	err   error
}

func (g *generatorStub) Generate(ctx context.Context, batchID string) (*dto.ScheduleResponse, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &dto.ScheduleResponse{
		BatchID: batchID,
		Summary: models.ScheduleSummary{BatchID: batchID, TotalSessions: 5, Assigned: 4, Unassigned: 1},
	}, nil
}

func TestScheduleJobEnqueue(t *testing.T) {
	queue := &dispatcherStub{}
	svc := NewScheduleJobService(queue, nil, ScheduleJobConfig{})

	resp, err := svc.Enqueue(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, dto.JobStatusQueued, resp.Status)
	assert.Equal(t, "b1", resp.BatchID)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, resp.JobID, queue.jobs[0].ID)
	assert.Equal(t, JobTypeGenerateSchedule, queue.jobs[0].Type)
	assert.Equal(t, "b1", queue.jobs[0].Payload)

	_, err = svc.Enqueue(context.Background(), "b1")
	requireAppError(t, err, appErrors.ErrScheduleBusy.Code)

	_, err = svc.Enqueue(context.Background(), "b2")
	require.NoError(t, err)
}

func TestScheduleJobEnqueueFailures(t *testing.T) {
	svc := NewScheduleJobService(nil, nil, ScheduleJobConfig{})
	_, err := svc.Enqueue(context.Background(), "b1")
	requireAppError(t, err, appErrors.ErrUnavailable.Code)

	_, err = svc.Enqueue(context.Background(), "")
	requireAppError(t, err, appErrors.ErrValidation.Code)

	svc.AttachQueue(&dispatcherStub{err: errors.New("queue stopped")})
	_, err = svc.Enqueue(context.Background(), "b1")
	requireAppError(t, err, appErrors.ErrUnavailable.Code)
	_, ok := svc.store.ActiveForBatch("b1")
	assert.False(t, ok, "failed enqueue must not leave a pending record")
}

func TestScheduleWorkerSuccess(t *testing.T) {
	queue := &dispatcherStub{}
	svc := NewScheduleJobService(queue, nil, ScheduleJobConfig{})
	gen := &generatorStub{}
	worker := NewScheduleWorker(svc, gen, nil)

	queued, err := svc.Enqueue(context.Background(), "b1")
	require.NoError(t, err)

	require.NoError(t, worker.Handle(context.Background(), queue.jobs[0]))

	status, err := svc.Get(context.Background(), queued.JobID)
	require.NoError(t, err)
	assert.Equal(t, dto.JobStatusSucceeded, status.Status)
	assert.Equal(t, 5, status.Sessions)
	assert.Equal(t, 1, status.Unassigned)
	assert.Equal(t, 1, status.Attempts)
	require.NotNil(t, status.FinishedAt)

	_, err = svc.Enqueue(context.Background(), "b1")
	require.NoError(t, err, "finished jobs do not block new ones")
}

func TestScheduleWorkerRetriesServerErrors(t *testing.T) {
	queue := &dispatcherStub{}
	svc := NewScheduleJobService(queue, nil, ScheduleJobConfig{MaxRetries: 2})
	gen := &generatorStub{err: errors.New("connection reset")}
	worker := NewScheduleWorker(svc, gen, nil)

	queued, err := svc.Enqueue(context.Background(), "b1")
	require.NoError(t, err)
	job := queue.jobs[0]

	assert.Error(t, worker.Handle(context.Background(), job))
	status, _ := svc.Get(context.Background(), queued.JobID)
	assert.Equal(t, dto.JobStatusQueued, status.Status)
	assert.Equal(t, "connection reset", status.Error)

	job.Attempt = 2
	assert.NoError(t, worker.Handle(context.Background(), job))
	status, _ = svc.Get(context.Background(), queued.JobID)
	assert.Equal(t, dto.JobStatusFailed, status.Status)
	assert.Equal(t, 3, status.Attempts)
}

func TestScheduleWorkerClientErrorsAreFinal(t *testing.T) {
	queue := &dispatcherStub{}
	svc := NewScheduleJobService(queue, nil, ScheduleJobConfig{})
	gen := &generatorStub{err: appErrors.Clone(appErrors.ErrNotFound, "batch not found")}
	worker := NewScheduleWorker(svc, gen, nil)

	queued, err := svc.Enqueue(context.Background(), "missing")
	require.NoError(t, err)

	assert.NoError(t, worker.Handle(context.Background(), queue.jobs[0]))
	assert.Equal(t, 1, gen.calls)
	status, _ := svc.Get(context.Background(), queued.JobID)
	assert.Equal(t, dto.JobStatusFailed, status.Status)
}

func TestScheduleJobStoreExpiry(t *testing.T) {
	svc := NewScheduleJobService(&dispatcherStub{}, nil, ScheduleJobConfig{ResultTTL: time.Minute})
	finished := time.Now().Add(-2 * time.Minute)
	svc.store.Save(jobRecord{ID: "old", BatchID: "b1", Status: dto.JobStatusSucceeded, FinishedAt: &finished})
	svc.store.Save(jobRecord{ID: "live", BatchID: "b2", Status: dto.JobStatusRunning})

	_, err := svc.Get(context.Background(), "old")
	requireAppError(t, err, appErrors.ErrNotFound.Code)

	assert.Equal(t, 0, svc.store.Purge(time.Now()))
	_, err = svc.Get(context.Background(), "live")
	assert.NoError(t, err)
}

func TestScheduleJobThroughQueue(t *testing.T) {
	svc := NewScheduleJobService(nil, nil, ScheduleJobConfig{})
	gen := &generatorStub{}
	worker := NewScheduleWorker(svc, gen, nil)
	queue := jobs.NewQueue("schedule-test", worker.Handle, jobs.QueueConfig{Workers: 1})
	queue.Start(context.Background())
	defer queue.Stop()
	svc.AttachQueue(queue)

	queued, err := svc.Enqueue(context.Background(), "b1")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		status, err := svc.Get(context.Background(), queued.JobID)
		return err == nil && status.Status == dto.JobStatusSucceeded
	}, time.Second, 10*time.Millisecond)
}
