package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/batch-scheduler-api/api/swagger"
	"github.com/noah-isme/batch-scheduler-api/internal/handler"
	internalmiddleware "github.com/noah-isme/batch-scheduler-api/internal/middleware"
	"github.com/noah-isme/batch-scheduler-api/internal/repository"
	"github.com/noah-isme/batch-scheduler-api/internal/scheduler"
	"github.com/noah-isme/batch-scheduler-api/internal/service"
	"github.com/noah-isme/batch-scheduler-api/pkg/cache"
	"github.com/noah-isme/batch-scheduler-api/pkg/config"
	"github.com/noah-isme/batch-scheduler-api/pkg/database"
	"github.com/noah-isme/batch-scheduler-api/pkg/events"
	"github.com/noah-isme/batch-scheduler-api/pkg/jobs"
	"github.com/noah-isme/batch-scheduler-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/batch-scheduler-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/batch-scheduler-api/pkg/middleware/requestid"
)

// @title Batch Scheduler API
// @version 1.0.0
// @description Trainer assignment, conflict detection and end-date projection for training batches.
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if client, err := cache.NewRedis(ctx, cfg.Redis); err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
	} else {
		redisClient = client
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Scheduler.CacheTTL, logr, redisClient != nil)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Events.Enabled {
		conn, amqpPublisher, err := events.Dial(cfg.Events, logr)
		if err != nil {
			logr.Warn("event broker unavailable, events disabled", zap.Error(err))
		} else {
			defer conn.Close() //nolint:errcheck
			publisher = amqpPublisher
		}
	}

	engine := scheduler.New(scheduler.Config{
		OnlineDailyCap:     cfg.Scheduler.OnlineDailyCap,
		EndDateBufferDays:  cfg.Scheduler.EndDateBufferDays,
		OptimizerExpertise: scheduler.ExpertiseStrategy(cfg.Scheduler.OptimizerExpertise),
	}, logr)

	validate := validator.New()

	trainerRepo := repository.NewTrainerRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	holidayRepo := repository.NewHolidayRepository(db)
	sessionRepo := repository.NewScheduleSessionRepository(db)

	scheduleSvc := service.NewBatchScheduleService(
		batchRepo,
		courseRepo,
		subjectRepo,
		trainerRepo,
		holidayRepo,
		sessionRepo,
		cacheSvc,
		metricsSvc,
		publisher,
		engine,
		validate,
		logr,
		service.BatchScheduleConfig{CacheTTL: cfg.Scheduler.CacheTTL},
	)
	calendarSvc := service.NewCalendarService(holidayRepo, validate, logr)

	jobSvc := service.NewScheduleJobService(nil, logr, service.ScheduleJobConfig{MaxRetries: cfg.Scheduler.WorkerRetries})
	worker := service.NewScheduleWorker(jobSvc, scheduleSvc, logr)
	queue := jobs.NewQueue("schedule", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Scheduler.Workers,
		MaxRetries: cfg.Scheduler.WorkerRetries,
		Timeout:    cfg.Scheduler.JobTimeout,
		Logger:     logr,
	})
	queue.Start(ctx)
	defer queue.Stop()
	jobSvc.AttachQueue(queue)
	jobSvc.StartCleanup(ctx, time.Minute)

	scheduleHandler := handler.NewBatchScheduleHandler(scheduleSvc, jobSvc)
	calendarHandler := handler.NewCalendarHandler(calendarSvc)
	queueCheck := func(context.Context) error {
		if !queue.Running() {
			return errors.New("schedule queue is not running")
		}
		return nil
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc, map[string]handler.ReadinessCheck{
		"postgres":       db.PingContext,
		"redis":          cacheRepo.Ping,
		"schedule_queue": queueCheck,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", cfg.Metrics.Path))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc, "/health", "/ready", cfg.Metrics.Path))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if metricsSvc != nil {
		r.GET(cfg.Metrics.Path, metricsHandler.Prometheus)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		batches := api.Group("/batches")
		batches.POST("/end-date", scheduleHandler.EndDate)
		batches.PUT("/:id/end-date", scheduleHandler.ApplyEndDate)
		batches.GET("/:id/schedule", scheduleHandler.Get)
		batches.POST("/:id/schedule/generate", scheduleHandler.Generate)
		batches.POST("/:id/schedule/jobs", scheduleHandler.EnqueueGenerate)
		batches.POST("/:id/schedule/optimize", scheduleHandler.Optimize)
		batches.GET("/:id/schedule/conflicts", scheduleHandler.Conflicts)
		batches.GET("/:id/schedule/summary", scheduleHandler.Summary)
		batches.GET("/:id/schedule/export", scheduleHandler.Export)

		api.GET("/schedule/jobs/:jobId", scheduleHandler.JobStatus)

		calendar := api.Group("/calendar")
		calendar.GET("/business-days", calendarHandler.BusinessDays)
		calendar.GET("/working-days", calendarHandler.WorkingDays)

		if metricsSvc != nil {
			api.GET("/metrics/summary", metricsHandler.Snapshot)
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Errorw("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server forced to shutdown", zap.Error(err))
	}
}
