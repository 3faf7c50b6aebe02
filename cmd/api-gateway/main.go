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

	_ "github.com/astrxnomo/agendaun/api/swagger"
	"github.com/astrxnomo/agendaun/internal/handler"
	internalmiddleware "github.com/astrxnomo/agendaun/internal/middleware"
	"github.com/astrxnomo/agendaun/internal/repository"
	"github.com/astrxnomo/agendaun/internal/service"
	"github.com/astrxnomo/agendaun/pkg/cache"
	"github.com/astrxnomo/agendaun/pkg/config"
	"github.com/astrxnomo/agendaun/pkg/database"
	"github.com/astrxnomo/agendaun/pkg/jobs"
	"github.com/astrxnomo/agendaun/pkg/logger"
	corsmiddleware "github.com/astrxnomo/agendaun/pkg/middleware/cors"
	reqidmiddleware "github.com/astrxnomo/agendaun/pkg/middleware/requestid"
)

// @title AgendaUN API
// @version 1.0.0
// @description University calendars filtered by sede, facultad and programa with etiquette color visibility.
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, academic cache disabled", zap.Error(err))
			redisClient = nil
		}
	}

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	validate := validator.New()

	calendarRepo := repository.NewCalendarRepository(db)
	academicRepo := repository.NewAcademicRepository(db)
	etiquetteRepo := repository.NewEtiquetteRepository(db)
	userRepo := repository.NewUserRepository(db)
	magicLinkRepo := repository.NewMagicLinkRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, "agendaun")
	defer cacheRepo.Close() //nolint:errcheck

	cacheSvc := service.NewCacheService(cacheRepo, service.CacheOptions{
		Enabled:    cfg.Cache.Enabled && redisClient != nil,
		DefaultTTL: cfg.Cache.AcademicTTL,
		Metrics:    metricsSvc,
		Logger:     logr,
	})
	academicSvc := service.NewAcademicService(academicRepo, cacheSvc, cfg.Cache.AcademicTTL, validate, logr)
	calendarSvc := service.NewCalendarService(calendarRepo, academicSvc, etiquetteRepo, validate, logr)
	etiquetteSvc := service.NewEtiquetteService(etiquetteRepo, calendarRepo, validate, logr)
	viewSvc := service.NewCalendarViewService(calendarRepo, etiquetteRepo, academicSvc, metricsSvc, service.CalendarViewConfig{
		MaxEvents: cfg.Calendar.MaxEvents,
	}, logr)
	userSvc := service.NewUserService(userRepo, validate, logr)

	dispatcher := jobs.NewDispatcher(jobs.Config{
		Workers:    cfg.MagicLink.DeliveryWorkers,
		MaxRetries: cfg.MagicLink.DeliveryRetries,
		Logger:     logr.Named("magic_link_dispatcher"),
	})
	dispatcher.Start(ctx)
	defer dispatcher.Stop()
	linkSender := service.NewQueuedLinkSender(service.LogLinkSender{Logger: logr}, dispatcher, logr)

	authSvc := service.NewAuthService(userRepo, magicLinkRepo, linkSender, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
		LinkTTL:           cfg.MagicLink.TTL,
		LinkBaseURL:       cfg.MagicLink.BaseURL,
	})

	go purgeMagicLinks(ctx, authSvc, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	calendarHandler := handler.NewCalendarHandler(calendarSvc)
	viewHandler := handler.NewCalendarViewHandler(viewSvc)
	etiquetteHandler := handler.NewEtiquetteHandler(etiquetteSvc)
	academicHandler := handler.NewAcademicHandler(academicSvc)
	userHandler := handler.NewUserHandler(userSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, map[string]handler.Pinger{
		"database": db,
		"redis":    cacheRepo,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(internalmiddleware.WithResponseMeta())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if metricsSvc != nil {
		r.Use(internalmiddleware.Metrics(metricsSvc))
		r.GET("/metrics", metricsHandler.Prometheus)
	}

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	authn := internalmiddleware.JWT(authSvc)
	editor := []gin.HandlerFunc{authn, internalmiddleware.RequireEditor()}
	admin := []gin.HandlerFunc{authn, internalmiddleware.RequireAdmin()}

	auth := api.Group("/auth")
	auth.POST("/magic-link", authHandler.RequestMagicLink)
	auth.POST("/magic-link/consume", authHandler.ConsumeMagicLink)
	auth.GET("/me", authn, authHandler.Me)

	calendars := api.Group("/calendars", internalmiddleware.OptionalJWT(authSvc))
	calendars.GET("", calendarHandler.ListCalendars)
	calendars.GET("/:slug", calendarHandler.GetCalendar)
	calendars.GET("/:slug/view", viewHandler.View)
	calendars.GET("/:slug/export", viewHandler.Export)
	calendars.GET("/:slug/events", calendarHandler.ListEvents)
	calendars.POST("/:slug/events", append(editor, calendarHandler.CreateEvent)...)
	calendars.GET("/:slug/etiquettes", etiquetteHandler.List)
	calendars.POST("/:slug/etiquettes", append(editor, etiquetteHandler.Create)...)

	events := api.Group("/events")
	events.GET("/:id", calendarHandler.GetEvent)
	events.PUT("/:id", append(editor, calendarHandler.UpdateEvent)...)
	events.DELETE("/:id", append(editor, calendarHandler.DeleteEvent)...)

	etiquettes := api.Group("/etiquettes", editor...)
	etiquettes.PUT("/:id", etiquetteHandler.Update)
	etiquettes.DELETE("/:id", etiquetteHandler.Delete)

	api.GET("/academic/hierarchy", academicHandler.Hierarchy)
	sedes := api.Group("/sedes")
	sedes.GET("", academicHandler.ListSedes)
	sedes.GET("/:id/facultades", academicHandler.ListFacultades)
	sedes.POST("", append(admin, academicHandler.CreateSede)...)
	sedes.POST("/:id/facultades", append(admin, academicHandler.CreateFacultad)...)
	sedes.DELETE("/:id", append(admin, academicHandler.DeleteSede)...)

	facultades := api.Group("/facultades")
	facultades.GET("/:id/programas", academicHandler.ListProgramas)
	facultades.POST("/:id/programas", append(admin, academicHandler.CreatePrograma)...)
	facultades.DELETE("/:id", append(admin, academicHandler.DeleteFacultad)...)

	api.DELETE("/programas/:id", append(admin, academicHandler.DeletePrograma)...)

	users := api.Group("/users", admin...)
	users.GET("", userHandler.List)
	users.PUT("/:id", userHandler.Update)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func purgeMagicLinks(ctx context.Context, auth *service.AuthService, logr *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := auth.PurgeExpiredLinks(ctx); err != nil {
				logr.Warn("magic link purge failed", zap.Error(err))
			}
		}
	}
}
