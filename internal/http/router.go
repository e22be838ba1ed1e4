package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/family-support/backend/internal/config"
	"github.com/family-support/backend/internal/dispatch"
	"github.com/family-support/backend/internal/http/handlers"
	"github.com/family-support/backend/internal/http/middleware"
	"github.com/family-support/backend/internal/outreach"
	"github.com/family-support/backend/internal/service"
	"github.com/family-support/backend/internal/store"

	_ "github.com/family-support/backend/docs"
)

type Services struct {
	Intakes   *service.IntakeService
	Signals   *service.SignalService
	Bookings  *service.BookingService
	Referrals *service.ReferralService
	Outreach  *outreach.Service
	Queue     *dispatch.Queue
	Store     store.Store
}

func Router(cfg config.Config, svc Services, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Intakes:   svc.Intakes,
		Signals:   svc.Signals,
		Bookings:  svc.Bookings,
		Referrals: svc.Referrals,
		Outreach:  svc.Outreach,
		Queue:     svc.Queue,
		Store:     svc.Store,
		Validator: validator.New(),
		Logger:    logger,
	}

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/intakes", h.IntakeCreate)
		api.POST("/signals", h.SignalIngest)
		api.POST("/bookings", h.BookingCreate)
		api.POST("/referrals", h.ReferralCreate)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.GET("/intakes", h.IntakesList)
		admin.GET("/intakes/urgent", h.IntakesUrgent)
		admin.GET("/intakes/stats", h.IntakeStats)
		admin.GET("/intakes/:id", h.IntakeDetails)
		admin.PATCH("/intakes/:id/status", h.IntakeUpdateStatus)

		admin.GET("/signals", h.SignalsList)
		admin.GET("/signals/stats", h.SignalStats)
		admin.GET("/signals/:id", h.SignalDetails)
		admin.PATCH("/signals/:id/status", h.SignalUpdateStatus)

		admin.POST("/outreach/drafts", h.OutreachGenerate)
		admin.GET("/outreach/drafts", h.OutreachDraftsList)
		admin.POST("/outreach/drafts/:id/review", h.OutreachReview)
		admin.POST("/outreach/drafts/:id/send", h.OutreachSend)
		admin.GET("/outreach/stats", h.OutreachStats)

		admin.GET("/bookings", h.BookingsList)
		admin.GET("/referrals", h.ReferralsList)
		admin.GET("/queue/stats", h.QueueStats)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
