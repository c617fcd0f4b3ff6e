package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/batch-scheduler-api/internal/calendar"
	"github.com/noah-isme/batch-scheduler-api/internal/dto"
	"github.com/noah-isme/batch-scheduler-api/internal/models"
	"github.com/noah-isme/batch-scheduler-api/internal/scheduler"
	appErrors "github.com/noah-isme/batch-scheduler-api/pkg/errors"
	"github.com/noah-isme/batch-scheduler-api/pkg/events"
	"github.com/noah-isme/batch-scheduler-api/pkg/export"
)

type batchStore interface {
	FindByID(ctx context.Context, id string) (*models.Batch, error)
	UpdateEndDate(ctx context.Context, id string, endDate calendar.Date) error
}

type courseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type subjectLister interface {
	ListByIDs(ctx context.Context, ids []string) ([]models.Subject, error)
}

type trainerLister interface {
	ListWithLeaves(ctx context.Context, since calendar.Date) ([]models.Trainer, error)
}

type holidayLister interface {
	ListFrom(ctx context.Context, from calendar.Date) ([]models.Holiday, error)
	ListBetween(ctx context.Context, from, to calendar.Date) ([]models.Holiday, error)
}

type sessionStore interface {
	ListByBatch(ctx context.Context, batchID string) ([]models.ScheduleSession, error)
	ListAssignedSince(ctx context.Context, excludeBatchID string, from calendar.Date) ([]models.ScheduleSession, error)
	ReplaceForBatch(ctx context.Context, batchID string, sessions []models.ScheduleSession) error
	UpdateAssignments(ctx context.Context, sessions []models.ScheduleSession) error
}

type scheduleCache interface {
	Schedule(ctx context.Context, batchID string) (*dto.ScheduleResponse, bool)
	StoreSchedule(ctx context.Context, resp *dto.ScheduleResponse, ttl time.Duration)
	InvalidateSchedule(ctx context.Context, batchID string) error
}

// Export formats.
const (
	ExportCSV = "csv"
	ExportPDF = "pdf"
)

// ExportFile is a rendered schedule document.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// BatchScheduleConfig tunes caching around the engine.
type BatchScheduleConfig struct {
	CacheTTL time.Duration
}

// BatchScheduleService loads batch data, runs the scheduling engine and
// persists the outcome. Mutating operations on one batch run one at a time.
type BatchScheduleService struct {
	batches   batchStore
	courses   courseReader
	subjects  subjectLister
	trainers  trainerLister
	holidays  holidayLister
	sessions  sessionStore
	cache     scheduleCache
	metrics   *MetricsService
	publisher events.Publisher
	engine    *scheduler.Engine
	validator *validator.Validate
	logger    *zap.Logger
	cfg       BatchScheduleConfig
	locks     *keyedMutex
	now       func() time.Time
}

// NewBatchScheduleService wires the service. cache, metrics and publisher may be nil.
func NewBatchScheduleService(
	batches batchStore,
	courses courseReader,
	subjects subjectLister,
	trainers trainerLister,
	holidays holidayLister,
	sessions sessionStore,
	cache scheduleCache,
	metrics *MetricsService,
	publisher events.Publisher,
	engine *scheduler.Engine,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg BatchScheduleConfig,
) *BatchScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if engine == nil {
		engine = scheduler.New(scheduler.DefaultConfig(), logger)
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &BatchScheduleService{
		batches:   batches,
		courses:   courses,
		subjects:  subjects,
		trainers:  trainers,
		holidays:  holidays,
		sessions:  sessions,
		cache:     cache,
		metrics:   metrics,
		publisher: publisher,
		engine:    engine,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		locks:     newKeyedMutex(),
		now:       time.Now,
	}
}

// planningInput is everything read from storage before an engine run.
type planningInput struct {
	batch    models.Batch
	course   models.Course
	subjects []models.Subject
	trainers []models.Trainer
	holidays []models.Holiday
	booked   []models.ScheduleSession
}

// Generate rebuilds a batch's schedule from scratch and stores it.
func (s *BatchScheduleService) Generate(ctx context.Context, batchID string) (resp *dto.ScheduleResponse, err error) {
	unlock := s.locks.Lock(batchID)
	defer unlock()

	start := s.now()
	var sessions []models.ScheduleSession
	defer func() {
		summary := models.Summarize(batchID, sessions)
		s.metrics.RecordScheduleRun(OperationGenerate, summary.Assigned, summary.Unassigned, s.now().Sub(start), err)
	}()

	in, err := s.loadPlanningInput(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if in.batch.StartDate.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "batch has no start date")
	}

	sessions = s.engine.Generate(scheduler.GenerateInput{
		Batch:    in.batch,
		Course:   in.course,
		Subjects: in.subjects,
		Trainers: in.trainers,
		Holidays: in.holidays,
		Existing: in.booked,
	})

	if err := s.sessions.ReplaceForBatch(ctx, batchID, sessions); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store schedule")
	}
	s.invalidate(ctx, batchID)

	resp = buildScheduleResponse(batchID, sessions)
	s.metrics.RecordConflicts(conflictLabels(resp.Summary.ConflictCounts))
	s.publish(ctx, events.TypeScheduleGenerated, batchID, map[string]any{
		"sessions":   resp.Summary.TotalSessions,
		"assigned":   resp.Summary.Assigned,
		"unassigned": resp.Summary.Unassigned,
	})
	s.logger.Info("schedule generated",
		zap.String("batch_id", batchID),
		zap.Int("sessions", resp.Summary.TotalSessions),
		zap.Int("unassigned", resp.Summary.Unassigned),
	)
	return resp, nil
}

// Optimize fills unassigned sessions of a stored schedule. Bookings held by
// other batches are honoured.
func (s *BatchScheduleService) Optimize(ctx context.Context, batchID string) (resp *dto.OptimizeResponse, err error) {
	unlock := s.locks.Lock(batchID)
	defer unlock()

	start := s.now()
	var result []models.ScheduleSession
	defer func() {
		summary := models.Summarize(batchID, result)
		s.metrics.RecordScheduleRun(OperationOptimize, summary.Assigned, summary.Unassigned, s.now().Sub(start), err)
	}()

	in, err := s.loadPlanningInput(ctx, batchID)
	if err != nil {
		return nil, err
	}
	own, err := s.sessions.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	if len(own) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "schedule has not been generated")
	}

	combined := make([]models.ScheduleSession, 0, len(in.booked)+len(own))
	combined = append(combined, in.booked...)
	combined = append(combined, own...)
	optimized := s.engine.Optimize(combined, in.trainers, in.subjects)
	result = optimized[len(in.booked):]

	var changed []models.ScheduleSession
	for i := range own {
		if !own[i].IsAssigned() && result[i].IsAssigned() {
			changed = append(changed, result[i])
		}
	}
	if err := s.sessions.UpdateAssignments(ctx, changed); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store optimized schedule")
	}
	if len(changed) > 0 {
		s.invalidate(ctx, batchID)
		s.publish(ctx, events.TypeScheduleOptimized, batchID, map[string]any{"filled": len(changed)})
	}

	s.logger.Info("schedule optimized", zap.String("batch_id", batchID), zap.Int("filled", len(changed)))
	return &dto.OptimizeResponse{ScheduleResponse: *buildScheduleResponse(batchID, result), Filled: len(changed)}, nil
}

// DetectConflicts annotates a stored schedule with leave and double-booking
// diagnostics, checking against every other batch's bookings. With persist
// the annotations are written back.
func (s *BatchScheduleService) DetectConflicts(ctx context.Context, batchID string, persist bool) (report *dto.ConflictReport, err error) {
	if persist {
		unlock := s.locks.Lock(batchID)
		defer unlock()
	}

	start := s.now()
	defer func() {
		s.metrics.RecordScheduleRun(OperationDetect, 0, 0, s.now().Sub(start), err)
	}()

	batch, err := s.findBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	own, err := s.sessions.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	trainers, err := s.trainers.ListWithLeaves(ctx, batch.StartDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load trainers")
	}
	booked, err := s.sessions.ListAssignedSince(ctx, batchID, batch.StartDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load trainer bookings")
	}

	combined := make([]models.ScheduleSession, 0, len(booked)+len(own))
	combined = append(combined, booked...)
	combined = append(combined, own...)
	annotated := s.engine.DetectConflicts(combined, trainers)[len(booked):]

	report = &dto.ConflictReport{BatchID: batchID, Sessions: []models.ScheduleSession{}, Counts: map[models.ConflictCode]int{}}
	var changed []models.ScheduleSession
	for i, session := range annotated {
		if len(session.Conflicts) > len(own[i].Conflicts) {
			changed = append(changed, session)
		}
		if len(session.Conflicts) == 0 {
			continue
		}
		report.Sessions = append(report.Sessions, session)
		for _, c := range session.Conflicts {
			report.Counts[c.Code]++
		}
	}

	if persist && len(changed) > 0 {
		if err := s.sessions.UpdateAssignments(ctx, changed); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store conflicts")
		}
		s.invalidate(ctx, batchID)
		report.Persisted = true
	}
	return report, nil
}

// Get returns the stored schedule of a batch, served from cache when possible.
func (s *BatchScheduleService) Get(ctx context.Context, batchID string) (*dto.ScheduleResponse, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Schedule(ctx, batchID); ok {
			return cached, nil
		}
	}

	if _, err := s.findBatch(ctx, batchID); err != nil {
		return nil, err
	}
	sessions, err := s.sessions.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	resp := buildScheduleResponse(batchID, sessions)

	if s.cache != nil {
		s.cache.StoreSchedule(ctx, resp, s.cfg.CacheTTL)
	}
	return resp, nil
}

// Summary returns the aggregate view of a stored schedule.
func (s *BatchScheduleService) Summary(ctx context.Context, batchID string) (*models.ScheduleSummary, error) {
	resp, err := s.Get(ctx, batchID)
	if err != nil {
		return nil, err
	}
	return &resp.Summary, nil
}

// CalculateEndDate projects the end date of a batch that starts on req.StartDate.
func (s *BatchScheduleService) CalculateEndDate(ctx context.Context, req dto.EndDateRequest) (*dto.EndDateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid end date payload")
	}
	start, err := calendar.ParseDate(req.StartDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidDate.Code, appErrors.ErrInvalidDate.Status, appErrors.ErrInvalidDate.Message)
	}
	cadence := calendar.Cadence(strings.ToLower(req.Cadence))
	if cadence == "" {
		cadence = calendar.CadenceWeekday
	}

	course, subjects, err := s.loadCurriculum(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	return s.endDate(ctx, "", start, *course, subjects, cadence)
}

// ApplyEndDate computes and stores the end date of an existing batch.
func (s *BatchScheduleService) ApplyEndDate(ctx context.Context, batchID string) (*dto.EndDateResponse, error) {
	unlock := s.locks.Lock(batchID)
	defer unlock()

	batch, err := s.findBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch.StartDate.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "batch has no start date")
	}
	course, subjects, err := s.loadCurriculum(ctx, batch.CourseID)
	if err != nil {
		return nil, err
	}
	resp, err := s.endDate(ctx, batchID, batch.StartDate, *course, subjects, batch.Cadence)
	if err != nil {
		return nil, err
	}
	end := calendar.MustParseDate(resp.EndDate)
	if err := s.batches.UpdateEndDate(ctx, batchID, end); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store end date")
	}
	s.publish(ctx, events.TypeEndDateApplied, batchID, map[string]any{"end_date": resp.EndDate})
	return resp, nil
}

// Export renders the stored schedule as CSV or PDF.
func (s *BatchScheduleService) Export(ctx context.Context, batchID, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportCSV
	}
	if format != ExportCSV && format != ExportPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	resp, err := s.Get(ctx, batchID)
	if err != nil {
		return nil, err
	}
	data := ScheduleDataset(resp.Sessions)

	var (
		content     []byte
		contentType string
	)
	switch format {
	case ExportPDF:
		exporter := export.NewPDFExporter()
		content, err = exporter.Render(data, fmt.Sprintf("Schedule for batch %s", batchID))
		contentType = exporter.ContentType()
	default:
		exporter := export.NewCSVExporter()
		content, err = exporter.Render(data)
		contentType = exporter.ContentType()
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render schedule export")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("schedule-%s.%s", batchID, format),
		ContentType: contentType,
		Content:     content,
	}, nil
}

// ScheduleDataset flattens sessions into export rows.
func ScheduleDataset(sessions []models.ScheduleSession) export.Dataset {
	data := export.Dataset{Headers: []string{"date", "day", "subject", "trainer", "time_slot", "status", "conflicts"}}
	for _, session := range sessions {
		trainer := ""
		if session.TrainerID != nil {
			trainer = *session.TrainerID
		}
		codes := make([]string, 0, len(session.Conflicts))
		for _, c := range session.Conflicts {
			codes = append(codes, string(c.Code))
		}
		data.Append(
			session.Date.String(),
			calendar.DayOfWeek(session.Date),
			session.SubjectID,
			trainer,
			session.TimeSlot,
			string(session.Status),
			strings.Join(codes, ";"),
		)
	}
	return data
}

func (s *BatchScheduleService) endDate(ctx context.Context, batchID string, start calendar.Date, course models.Course, subjects []models.Subject, cadence calendar.Cadence) (*dto.EndDateResponse, error) {
	if !cadence.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cadence must be weekday or weekend")
	}
	holidays, err := s.holidays.ListFrom(ctx, start)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load holidays")
	}
	end := s.engine.CalculateEndDate(start, course, subjects, cadence, models.HolidaySet(holidays))
	return &dto.EndDateResponse{
		BatchID:        batchID,
		StartDate:      start.String(),
		EndDate:        end.String(),
		CurriculumDays: s.engine.CurriculumDays(course, subjects),
		BufferDays:     s.engine.Config().EndDateBufferDays,
	}, nil
}

func (s *BatchScheduleService) loadPlanningInput(ctx context.Context, batchID string) (*planningInput, error) {
	batch, err := s.findBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	course, subjects, err := s.loadCurriculum(ctx, batch.CourseID)
	if err != nil {
		return nil, err
	}
	trainers, err := s.trainers.ListWithLeaves(ctx, batch.StartDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load trainers")
	}
	holidays, err := s.holidays.ListFrom(ctx, batch.StartDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load holidays")
	}
	booked, err := s.sessions.ListAssignedSince(ctx, batchID, batch.StartDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load trainer bookings")
	}
	return &planningInput{
		batch:    *batch,
		course:   *course,
		subjects: subjects,
		trainers: trainers,
		holidays: holidays,
		booked:   booked,
	}, nil
}

func (s *BatchScheduleService) loadCurriculum(ctx context.Context, courseID string) (*models.Course, []models.Subject, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	subjects, err := s.subjects.ListByIDs(ctx, course.SubjectIDs)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
	}
	return course, subjects, nil
}

func (s *BatchScheduleService) findBatch(ctx context.Context, batchID string) (*models.Batch, error) {
	batch, err := s.batches.FindByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	return batch, nil
}

func (s *BatchScheduleService) invalidate(ctx context.Context, batchID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSchedule(ctx, batchID); err != nil {
		s.logger.Warn("schedule cache invalidation failed", zap.String("batch_id", batchID), zap.Error(err))
	}
}

// publish never fails the caller; the schedule is already stored.
func (s *BatchScheduleService) publish(ctx context.Context, eventType, batchID string, data map[string]any) {
	err := s.publisher.Publish(ctx, events.Event{
		Type:       eventType,
		BatchID:    batchID,
		OccurredAt: s.now().UTC(),
		Data:       data,
	})
	if err != nil {
		s.logger.Warn("schedule event not published", zap.String("type", eventType), zap.String("batch_id", batchID), zap.Error(err))
	}
}

func buildScheduleResponse(batchID string, sessions []models.ScheduleSession) *dto.ScheduleResponse {
	if sessions == nil {
		sessions = []models.ScheduleSession{}
	}
	return &dto.ScheduleResponse{
		BatchID:  batchID,
		Sessions: sessions,
		Summary:  models.Summarize(batchID, sessions),
	}
}

func conflictLabels(counts map[models.ConflictCode]int) map[string]int {
	out := make(map[string]int, len(counts))
	for code, n := range counts {
		out[string(code)] = n
	}
	return out
}
