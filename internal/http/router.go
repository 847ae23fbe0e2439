package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/legal_queries/backend/internal/config"
	"github.com/legal_queries/backend/internal/http/handlers"
	"github.com/legal_queries/backend/internal/http/middleware"
	"github.com/legal_queries/backend/internal/service"

	_ "github.com/legal_queries/backend/docs"
)

func Router(cfg config.Config, svc *service.AssignmentService, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	r.MaxMultipartMemory = cfg.MaxUploadSizeMB << 20

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if origins := cfg.CORSOrigins(); origins == nil {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = origins
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Service:   svc,
		Store:     svc.Store,
		Validator: validator.New(),
		Logger:    logger,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.GET("/queries", h.QueriesList)
		api.GET("/queries/:id", h.QueryDetails)
		api.PATCH("/queries/:id/status", h.UpdateQueryStatus)
		api.POST("/import", h.Import)
		api.POST("/reassign", h.Reassign)
		api.GET("/lawyers", h.LawyersList)
		api.PATCH("/lawyers/:id", h.UpdateLawyer)
		api.POST("/lawyers/:id/notify", h.NotifyLawyer)
		api.GET("/dashboard", h.DashboardStats)
		api.GET("/runs/latest", h.RunsLatest)
		api.GET("/debug/eligibility", h.DebugEligibility)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
