package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/coop-portal-api/api/swagger"
	"github.com/noah-isme/coop-portal-api/internal/handler"
	"github.com/noah-isme/coop-portal-api/internal/middleware"
	"github.com/noah-isme/coop-portal-api/internal/models"
	"github.com/noah-isme/coop-portal-api/internal/service"
	"github.com/noah-isme/coop-portal-api/pkg/config"
	"github.com/noah-isme/coop-portal-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/coop-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/coop-portal-api/pkg/middleware/requestid"
)

type routeDeps struct {
	auth         middleware.TokenValidator
	metrics      *service.MetricsService
	metricsH     *handler.MetricsHandler
	positions    *handler.PositionHandler
	selection    *handler.SelectionHandler
	applications *handler.ApplicationHandler
	coop         *handler.CoopHandler
	faculty      *handler.FacultyHandler
	profile      *handler.ProfileHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, d routeDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(middleware.Metrics(d.metrics))

	r.GET("/health", d.metricsH.Health)
	r.GET("/ready", d.metricsH.Ready)
	r.GET("/metrics", d.metricsH.Prometheus)
	r.GET("/metrics/snapshot", d.metricsH.Snapshot)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/positions", d.positions.List)
	api.GET("/positions/:id", d.positions.Get)

	authed := api.Group("")
	authed.Use(middleware.JWT(d.auth))
	authed.GET("/me", d.profile.Me)

	employer := authed.Group("/employer", middleware.RequireRoles(models.RoleEmployer))
	employer.GET("/positions", d.positions.Mine)
	employer.POST("/positions", d.positions.Create)
	employer.PUT("/positions/:id", d.positions.Update)
	employer.POST("/positions/:id/select", d.selection.Select)
	employer.GET("/positions/:id/applications", d.applications.ListForPosition)
	employer.PUT("/applications/:id/status", d.applications.UpdateStatus)

	student := authed.Group("/student", middleware.RequireRoles(models.RoleStudent))
	student.POST("/applications", d.applications.Apply)
	student.GET("/applications", d.applications.Mine)
	student.GET("/coop/enrollments", d.coop.MyEnrollments)
	student.POST("/coop/opt-in", d.coop.OptIn)
	student.POST("/coop/opt-out", d.coop.OptOut)
	student.POST("/coop/summary", d.coop.Summary)

	faculty := authed.Group("/faculty", middleware.RequireRoles(models.RoleFaculty))
	faculty.GET("/coop-students", d.faculty.List)
	faculty.GET("/coop-students/:enrollmentId", d.faculty.Get)
	faculty.PUT("/coop-students/:enrollmentId/grade", d.faculty.Grade)
	faculty.GET("/roster", d.faculty.Export)

	return r
}
