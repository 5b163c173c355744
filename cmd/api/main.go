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
	"github.com/jonboulle/clockwork"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/gearguard/gearguard-api/api/swagger"
	"github.com/gearguard/gearguard-api/internal/handler"
	"github.com/gearguard/gearguard-api/internal/middleware"
	"github.com/gearguard/gearguard-api/internal/models"
	"github.com/gearguard/gearguard-api/internal/repository"
	"github.com/gearguard/gearguard-api/internal/service"
	"github.com/gearguard/gearguard-api/pkg/cache"
	"github.com/gearguard/gearguard-api/pkg/config"
	"github.com/gearguard/gearguard-api/pkg/database"
	"github.com/gearguard/gearguard-api/pkg/jobs"
	"github.com/gearguard/gearguard-api/pkg/logger"
	corsmiddleware "github.com/gearguard/gearguard-api/pkg/middleware/cors"
	reqidmiddleware "github.com/gearguard/gearguard-api/pkg/middleware/requestid"
)

// @title GearGuard API
// @version 1.0.0
// @description Maintenance request lifecycle, scheduling and audit service
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		// Redis backs only the cache and job locks; run without them.
		logr.Warn("redis unavailable, caching and job locks disabled", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	clock := clockwork.NewRealClock()
	validate := validator.New()

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	requestRepo := repository.NewMaintenanceRequestRepository(db)
	logRepo := repository.NewMaintenanceLogRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	scheduleRepo := repository.NewPreventiveScheduleRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	lockRepo := repository.NewLockRepository(redisClient)

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheSvc = service.NewCacheService(repository.NewCacheRepository(redisClient), metricsSvc, cfg.Requests.OverdueCacheTTL, logr)
	}

	authSvc := service.NewAuthService(userRepo, logr, service.AuthConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
	})
	auditTrail := service.NewAuditTrail(logRepo, clock, metricsSvc, logr)
	lifecycleSvc := service.NewRequestLifecycleService(requestRepo, auditTrail, clock, logr,
		service.WithLifecycleMetrics(metricsSvc),
		service.WithLifecycleCache(cacheSvc),
	)
	requestSvc := service.NewRequestService(requestRepo, logRepo, auditTrail, cacheSvc, validate, clock, service.RequestServiceConfig{
		DefaultPageSize: cfg.Requests.DefaultPageSize,
		MaxPageSize:     cfg.Requests.MaxPageSize,
		OverdueCacheTTL: cfg.Requests.OverdueCacheTTL,
	}, logr)
	exportSvc := service.NewExportService(requestSvc, clock, logr)
	overdueSvc := service.NewOverdueService(requestRepo, teamRepo, notificationRepo, cacheSvc, clock, logr)
	preventiveSvc := service.NewPreventiveService(scheduleRepo, requestRepo, requestSvc, teamRepo, notificationRepo, cfg.Scheduler.PreventiveLookahead, clock, logr)

	runner := service.NewJobRunner(lockRepo, auditRepo, metricsSvc, clock, cfg.Jobs.LockTTL, logr)
	runner.Register(service.JobCheckOverdue, models.AuditActionCheckOverdue, func(ctx context.Context) (interface{}, error) {
		return overdueSvc.CheckOverdue(ctx)
	})
	runner.Register(service.JobGeneratePreventive, models.AuditActionGeneratePreventive, func(ctx context.Context) (interface{}, error) {
		return preventiveSvc.Generate(ctx)
	})

	queue := jobs.NewQueue("gearguard-jobs", jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		MaxRetries: cfg.Jobs.Retries,
		RetryDelay: cfg.Jobs.RetryDelay,
		Logger:     logr,
	})
	for _, name := range runner.Names() {
		queue.Handle(name, runner.Handler())
	}
	queue.Start(ctx)
	defer queue.Stop()

	if cfg.Scheduler.Enabled {
		location, err := time.LoadLocation(cfg.Scheduler.Location)
		if err != nil {
			logr.Warn("invalid scheduler location, using UTC", zap.String("location", cfg.Scheduler.Location), zap.Error(err))
			location = time.UTC
		}
		scheduler := jobs.NewScheduler(queue, clock, location, logr,
			jobs.DailyEntry{JobType: service.JobCheckOverdue, Hour: cfg.Scheduler.OverdueCheckHour},
			jobs.DailyEntry{JobType: service.JobGeneratePreventive, Hour: cfg.Scheduler.PreventiveGenerateHour},
		)
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, middleware.ContextUserIDKey))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	checks := map[string]handler.ReadinessCheck{
		"database": db.PingContext,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if metricsSvc != nil {
		r.GET("/metrics", metricsHandler.Prometheus)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r.Group(cfg.APIPrefix), authSvc,
		handler.NewMaintenanceRequestHandler(requestSvc, lifecycleSvc, exportSvc),
		handler.NewJobHandler(runner),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func registerRoutes(api *gin.RouterGroup, authSvc *service.AuthService, requests *handler.MaintenanceRequestHandler, jobsHandler *handler.JobHandler) {
	api.Use(middleware.JWT(authSvc))

	req := api.Group("/requests")
	req.POST("", requests.Create)
	req.GET("", requests.List)
	req.GET("/board", requests.Board)
	req.GET("/overdue/count", requests.OverdueCount)
	req.GET("/:id", requests.Get)
	req.GET("/:id/logs", requests.Timeline)
	req.GET("/:id/logs/export", middleware.RequireRoles(models.RolesExportReports...), requests.ExportTimeline)
	// per-target role checks happen in the handler; verification is open to requesters
	req.PATCH("/:id/status", requests.UpdateStatus)
	req.POST("/:id/assign", middleware.RequireRoles(models.RolesAssignRequest...), requests.Assign)
	req.POST("/:id/complete", middleware.RequireRoles(models.RolesUpdateStatus...), requests.Complete)
	req.POST("/:id/work-logs", middleware.RequireRoles(models.RolesUpdateStatus...), requests.AddWorkLog)

	api.POST("/internal/jobs/:name", middleware.RequireRoles(models.RolesRunJobs...), jobsHandler.Run)
}
