package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/batch-scheduler-api/internal/dto"
	appErrors "github.com/noah-isme/batch-scheduler-api/pkg/errors"
	"github.com/noah-isme/batch-scheduler-api/pkg/jobs"
)

// JobTypeGenerateSchedule identifies background generation jobs.
const JobTypeGenerateSchedule = "schedule.generate"

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type scheduleGenerator interface {
	Generate(ctx context.Context, batchID string) (*dto.ScheduleResponse, error)
}

// ScheduleJobConfig tunes background generation. MaxRetries should match the
// queue's so the last attempt is recorded as failed.
type ScheduleJobConfig struct {
	MaxRetries int
	ResultTTL  time.Duration
}

// ScheduleJobService queues schedule generation and tracks job status in memory.
type ScheduleJobService struct {
	queue  jobDispatcher
	store  *jobStore
	logger *zap.Logger
	cfg    ScheduleJobConfig
	now    func() time.Time
}

// NewScheduleJobService builds the service. The queue may be attached later with
// AttachQueue because the worker and the queue reference each other.
func NewScheduleJobService(queue jobDispatcher, logger *zap.Logger, cfg ScheduleJobConfig) *ScheduleJobService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = time.Hour
	}
	return &ScheduleJobService{
		queue:  queue,
		store:  newJobStore(cfg.ResultTTL),
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
	}
}

// AttachQueue sets the dispatcher used by Enqueue.
func (s *ScheduleJobService) AttachQueue(queue jobDispatcher) {
	s.queue = queue
}

// Enqueue registers a generation job for batchID.
func (s *ScheduleJobService) Enqueue(ctx context.Context, batchID string) (*dto.ScheduleJobResponse, error) {
	if batchID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "batch id is required")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "schedule queue is not running")
	}
	if active, ok := s.store.ActiveForBatch(batchID); ok {
		return nil, appErrors.Clone(appErrors.ErrScheduleBusy, "generation job "+active.ID+" is already pending for this batch")
	}

	record := jobRecord{
		ID:         uuid.NewString(),
		BatchID:    batchID,
		Status:     dto.JobStatusQueued,
		EnqueuedAt: s.now().UTC(),
	}
	s.store.Save(record)

	if err := s.queue.Enqueue(jobs.Job{ID: record.ID, Type: JobTypeGenerateSchedule, Payload: batchID}); err != nil {
		s.store.Delete(record.ID)
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to enqueue schedule job")
	}

	resp := record.response()
	return &resp, nil
}

// Get returns the status of a job.
func (s *ScheduleJobService) Get(ctx context.Context, jobID string) (*dto.ScheduleJobResponse, error) {
	record, ok := s.store.Get(jobID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule job not found or expired")
	}
	resp := record.response()
	return &resp, nil
}

// StartCleanup purges finished jobs older than the result TTL until ctx ends.
func (s *ScheduleJobService) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.store.Purge(s.now()); n > 0 {
					s.logger.Debug("expired schedule jobs purged", zap.Int("count", n))
				}
			}
		}
	}()
}

// ScheduleWorker runs queued generation jobs.
type ScheduleWorker struct {
	jobs      *ScheduleJobService
	generator scheduleGenerator
	logger    *zap.Logger
}

// NewScheduleWorker constructs a worker.
func NewScheduleWorker(jobsSvc *ScheduleJobService, generator scheduleGenerator, logger *zap.Logger) *ScheduleWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleWorker{jobs: jobsSvc, generator: generator, logger: logger}
}

// Handle processes a queue job. Client errors are final; anything else is
// returned so the queue retries it until MaxRetries.
func (w *ScheduleWorker) Handle(ctx context.Context, job jobs.Job) error {
	batchID, _ := job.Payload.(string)
	store := w.jobs.store
	store.Update(job.ID, func(r *jobRecord) {
		r.Status = dto.JobStatusRunning
		r.Attempts = job.Attempt + 1
	})

	resp, err := w.generator.Generate(ctx, batchID)
	finished := w.jobs.now().UTC()
	if err != nil {
		retry := job.Attempt < w.jobs.cfg.MaxRetries && !appErrors.IsClient(err)
		store.Update(job.ID, func(r *jobRecord) {
			r.Error = err.Error()
			if retry {
				r.Status = dto.JobStatusQueued
				return
			}
			r.Status = dto.JobStatusFailed
			r.FinishedAt = &finished
		})
		if !retry {
			w.logger.Warn("schedule job failed", zap.String("job_id", job.ID), zap.String("batch_id", batchID), zap.Error(err))
			return nil
		}
		return err
	}

	store.Update(job.ID, func(r *jobRecord) {
		r.Status = dto.JobStatusSucceeded
		r.Error = ""
		r.FinishedAt = &finished
		r.Sessions = resp.Summary.TotalSessions
		r.Unassigned = resp.Summary.Unassigned
	})
	return nil
}

type jobRecord struct {
	ID         string
	BatchID    string
	Status     string
	Error      string
	Attempts   int
	Sessions   int
	Unassigned int
	EnqueuedAt time.Time
	FinishedAt *time.Time
}

func (r jobRecord) response() dto.ScheduleJobResponse {
	return dto.ScheduleJobResponse{
		JobID:      r.ID,
		BatchID:    r.BatchID,
		Status:     r.Status,
		Error:      r.Error,
		Attempts:   r.Attempts,
		Sessions:   r.Sessions,
		Unassigned: r.Unassigned,
		EnqueuedAt: r.EnqueuedAt,
		FinishedAt: r.FinishedAt,
	}
}

func (r jobRecord) active() bool {
	return r.Status == dto.JobStatusQueued || r.Status == dto.JobStatusRunning
}

type jobStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]jobRecord
}

func newJobStore(ttl time.Duration) *jobStore {
	return &jobStore{ttl: ttl, items: make(map[string]jobRecord)}
}

func (s *jobStore) Save(record jobRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[record.ID] = record
}

func (s *jobStore) Get(id string) (jobRecord, bool) {
	s.mu.RLock()
	record, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return jobRecord{}, false
	}
	if s.expired(record, time.Now()) {
		s.Delete(id)
		return jobRecord{}, false
	}
	return record, true
}

func (s *jobStore) Update(id string, fn func(*jobRecord)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.items[id]
	if !ok {
		return
	}
	fn(&record)
	s.items[id] = record
}

func (s *jobStore) ActiveForBatch(batchID string) (jobRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, record := range s.items {
		if record.BatchID == batchID && record.active() {
			return record, true
		}
	}
	return jobRecord{}, false
}

func (s *jobStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

func (s *jobStore) Purge(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, record := range s.items {
		if s.expired(record, now) {
			delete(s.items, id)
			removed++
		}
	}
	return removed
}

func (s *jobStore) expired(record jobRecord, now time.Time) bool {
	return record.FinishedAt != nil && now.Sub(*record.FinishedAt) > s.ttl
}
