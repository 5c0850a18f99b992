package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/coop-portal-api/internal/handler"
	"github.com/noah-isme/coop-portal-api/internal/notification"
	"github.com/noah-isme/coop-portal-api/internal/repository"
	"github.com/noah-isme/coop-portal-api/internal/service"
	"github.com/noah-isme/coop-portal-api/pkg/cache"
	"github.com/noah-isme/coop-portal-api/pkg/config"
	"github.com/noah-isme/coop-portal-api/pkg/database"
	"github.com/noah-isme/coop-portal-api/pkg/jobs"
	"github.com/noah-isme/coop-portal-api/pkg/logger"
)

// @title Co-op Portal API
// @version 1.0.0
// @description Internship positions, employer selection and co-op credit tracking.
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, position cache disabled", zap.Error(err))
		redisClient = nil
	}

	app := buildApp(cfg, db, redisClient, logr)
	app.queue.Start(ctx)
	defer app.queue.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "notify_driver", cfg.Notifications.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
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

type app struct {
	router *gin.Engine
	queue  *jobs.Queue
}

func buildApp(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, logr *zap.Logger) *app {
	validate := validator.New()
	metrics := service.NewMetricsService()

	students := repository.NewStudentRepository(db)
	employers := repository.NewEmployerRepository(db)
	faculty := repository.NewFacultyRepository(db)
	positions := repository.NewPositionRepository(db)
	applications := repository.NewApplicationRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)

	cacheEnabled := cfg.Positions.CacheEnabled && redisClient != nil
	cacheSvc := service.NewCacheService(repository.NewCacheRepository(redisClient, logr), metrics, cfg.Positions.CacheTTL, logr, cacheEnabled)

	notifier := notification.NewNotifier(notification.NewDispatcher(cfg.Notifications, logr), metrics, logr)
	queue := notification.NewQueue(notifier, cfg.Notifications, logr)

	enrollmentSvc := service.NewEnrollmentService(enrollments, faculty, validate, logr)
	positionSvc := service.NewPositionService(positions, employers, cacheSvc, cfg.Positions.CacheTTL, validate, logr)
	applicationSvc := service.NewApplicationService(applications, positions, validate, logr)
	selectionSvc := service.NewSelectionService(service.SelectionDeps{
		Positions:    positions,
		Students:     students,
		Applications: applications,
		Enrollments:  enrollmentSvc,
		Notifier:     notifier,
		Cache:        cacheSvc,
		Metrics:      metrics,
	}, validate, logr)
	rosterSvc := service.NewRosterService(enrollmentSvc, nil, nil, logr)
	profileSvc := service.NewProfileService(students, employers, faculty, logr)
	authSvc := service.NewAuthService(logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	checks := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		checks["redis"] = redisPinger{client: redisClient}
	}

	router := newRouter(cfg, logr, routeDeps{
		auth:         authSvc,
		metrics:      metrics,
		metricsH:     handler.NewMetricsHandler(metrics, checks),
		positions:    handler.NewPositionHandler(positionSvc),
		selection:    handler.NewSelectionHandler(selectionSvc),
		applications: handler.NewApplicationHandler(applicationSvc),
		coop:         handler.NewCoopHandler(enrollmentSvc),
		faculty:      handler.NewFacultyHandler(enrollmentSvc, rosterSvc),
		profile:      handler.NewProfileHandler(profileSvc),
	})

	return &app{router: router, queue: queue}
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) PingContext(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
