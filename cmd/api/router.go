package main

import (
	"fmt"

	"service-area-api/internal/config"
	"service-area-api/internal/handler"
	"service-area-api/internal/metrics"
	"service-area-api/internal/middleware"

	_ "service-area-api/docs"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type handlers struct {
	health        *handler.HealthHandler
	validation    *handler.ValidationHandler
	areas         *handler.AreaHandler
	waitlist      *handler.WaitlistHandler
	adminAreas    *handler.AdminAreaHandler
	adminWaitlist *handler.AdminWaitlistHandler
}

func newRouter(cfg config.Config, h handlers, logger zerolog.Logger) (*gin.Engine, error) {
	r := gin.New()
	// Rate limits key on ClientIP, so X-Forwarded-For is honoured only from configured proxies.
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("router: invalid trusted proxies: %w", err)
	}
	r.Use(gin.Recovery(), middleware.RequestLogger(logger), middleware.Metrics())

	r.GET("/health", h.health.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	areasLimit := middleware.NewRateLimiter("areas", cfg.RateAreasPerMin).Handler()

	public := r.Group("/service-area")
	public.POST("/validate", middleware.NewRateLimiter("validate", cfg.RateValidatePerMin).Handler(), h.validation.Validate)
	public.GET("/areas", areasLimit, h.areas.List)
	public.GET("/areas.geojson", areasLimit, h.areas.GeoJSON)
	public.POST("/waitlist", middleware.NewRateLimiter("waitlist", cfg.RateWaitlistPerMin).Handler(), h.waitlist.Join)

	if !cfg.AdminEnabled() {
		logger.Warn().Msg("ADMIN_USER or ADMIN_PASSWORD not set, admin routes disabled")
		return r, nil
	}

	admin := r.Group("/admin", gin.BasicAuth(gin.Accounts{cfg.AdminUser: cfg.AdminPassword}))
	admin.GET("/service-areas", h.adminAreas.List)
	admin.POST("/service-areas", h.adminAreas.Create)
	admin.GET("/service-areas/waitlist-counts", h.adminWaitlist.Counts)
	admin.GET("/service-areas/:id", h.adminAreas.Get)
	admin.PUT("/service-areas/:id", h.adminAreas.Update)
	admin.PATCH("/service-areas/:id/active", h.adminAreas.SetActive)
	admin.DELETE("/service-areas/:id", h.adminAreas.Delete)
	admin.GET("/waitlist", h.adminWaitlist.List)
	admin.PATCH("/waitlist/:id", h.adminWaitlist.Update)

	return r, nil
}
