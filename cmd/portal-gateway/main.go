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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/civicsense/portal-gateway/api/swagger"
	"github.com/civicsense/portal-gateway/internal/backend"
	"github.com/civicsense/portal-gateway/internal/handler"
	"github.com/civicsense/portal-gateway/internal/middleware"
	"github.com/civicsense/portal-gateway/internal/models"
	"github.com/civicsense/portal-gateway/internal/repository"
	"github.com/civicsense/portal-gateway/internal/service"
	"github.com/civicsense/portal-gateway/pkg/cache"
	"github.com/civicsense/portal-gateway/pkg/config"
	"github.com/civicsense/portal-gateway/pkg/jobs"
	"github.com/civicsense/portal-gateway/pkg/logger"
	corsmiddleware "github.com/civicsense/portal-gateway/pkg/middleware/cors"
	reqidmiddleware "github.com/civicsense/portal-gateway/pkg/middleware/requestid"
	"github.com/civicsense/portal-gateway/pkg/storage"
)

// @title Grievance Portal Gateway
// @version 0.1.0
// @description Gateway for the citizen grievance portal
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close() //nolint:errcheck

	mediaStore, err := storage.NewLocalStorage(cfg.Media.StorageDir)
	if err != nil {
		logr.Fatal("failed to init media storage", zap.Error(err))
	}
	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Fatal("failed to init export storage", zap.Error(err))
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	backendClient := backend.New(cfg.Backend, logr)
	backendClient.SetObserver(metricsSvc)

	draftRepo := repository.NewDraftRepository(redisClient, logr)
	sessionRepo := repository.NewSessionRepository(redisClient, logr)
	selectionRepo := repository.NewSelectionRepository(redisClient, logr)

	sessionSvc := service.NewSessionService(backendClient, sessionRepo, validate, logr, service.SessionConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	wizardSvc := service.NewWizardService(draftRepo, backendClient, validate, logr, service.WizardConfig{
		DraftTTL:          cfg.Wizard.DraftTTL,
		MinDescriptionLen: cfg.Wizard.MinDescriptionLen,
	})
	mediaSvc := service.NewMediaService(draftRepo, backendClient, mediaStore, logr, service.MediaConfig{
		MaxFileSizeBytes: cfg.Media.MaxFileSizeBytes,
		AllowedAudioMIME: cfg.Media.AllowedAudioMIME,
		AllowedImageMIME: cfg.Media.AllowedImageMIME,
		DraftTTL:         cfg.Wizard.DraftTTL,
	})
	uploadQueue := jobs.NewQueue("media-upload", mediaSvc.ProcessUploadJob, jobs.QueueConfig{
		Workers:    cfg.Media.UploadWorkers,
		MaxRetries: cfg.Media.UploadRetries,
		Logger:     logr,
	})
	mediaSvc.SetUploadQueue(uploadQueue)
	mediaSvc.SetMetrics(metricsSvc)
	metricsSvc.RegisterQueueDepth("media-upload", uploadQueue.Depth)
	uploadQueue.Start(ctx)
	defer uploadQueue.Stop()

	grievanceSvc := service.NewGrievanceService(backendClient, validate, logr)
	queueSvc := service.NewQueueService(backendClient, selectionRepo, validate, logr)
	assistantSvc := service.NewAssistantService(validate, logr)
	mapSvc := service.NewMapTilesService(service.MapConfig{
		TileURL:     cfg.Map.TileURL,
		Attribution: cfg.Map.Attribution,
		ProbeURL:    cfg.Map.ProbeURL,
		MinZoom:     cfg.Map.MinZoom,
		MaxZoom:     cfg.Map.MaxZoom,
	}, logr)

	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportSvc := service.NewExportService(backendClient, exportStore, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr, nil, nil)

	go func() {
		ticker := time.NewTicker(cfg.Exports.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := exportSvc.Cleanup(0)
				if err != nil {
					logr.Warn("export cleanup failed", zap.Error(err))
				} else if len(removed) > 0 {
					logr.Info("export cleanup", zap.Int("removed", len(removed)))
				}
			}
		}
	}()

	authHandler := handler.NewAuthHandler(sessionSvc)
	wizardHandler := handler.NewWizardHandler(wizardSvc)
	mediaHandler := handler.NewMediaHandler(mediaSvc)
	grievanceHandler := handler.NewGrievanceHandler(grievanceSvc)
	queueHandler := handler.NewQueueHandler(queueSvc)
	assistantHandler := handler.NewAssistantHandler(assistantSvc)
	mapHandler := handler.NewMapHandler(mapSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/register", authHandler.Register)
	auth.POST("/logout", middleware.JWT(sessionSvc), authHandler.Logout)
	auth.GET("/me", middleware.JWT(sessionSvc), authHandler.Me)

	wizard := api.Group("/wizard", middleware.OptionalJWT(sessionSvc))
	wizard.POST("", wizardHandler.Start)
	wizard.GET("", wizardHandler.Get)
	wizard.DELETE("", wizardHandler.Discard)
	wizard.PUT("/description", wizardHandler.UpdateDescription)
	wizard.PUT("/location", wizardHandler.UpdateLocation)
	wizard.PUT("/pin", wizardHandler.SelectPin)
	wizard.PUT("/contact", wizardHandler.UpdateContact)
	wizard.POST("/advance", wizardHandler.Advance)
	wizard.POST("/back", wizardHandler.Back)
	wizard.POST("/submit", wizardHandler.Submit)
	wizard.PUT("/audio/language", wizardHandler.SetAudioLanguage)
	wizard.POST("/audio/recording", mediaHandler.StartRecording)
	wizard.DELETE("/audio/recording", mediaHandler.CancelRecording)
	wizard.POST("/audio/recording/stop", mediaHandler.StopRecording)
	wizard.PUT("/audio", mediaHandler.AttachAudio)
	wizard.DELETE("/audio", mediaHandler.RemoveAudio)
	wizard.PUT("/image", mediaHandler.AttachImage)
	wizard.DELETE("/image", mediaHandler.RemoveImage)

	api.GET("/grievances/:id", grievanceHandler.Get)
	api.GET("/map/provider", mapHandler.Provider)
	if cfg.Assistant.Enabled {
		api.POST("/assistant", assistantHandler.Reply)
	}

	// Download links are authenticated by their signed token, not a session.
	api.GET("/admin/exports/:token", exportHandler.Download)

	admin := api.Group("/admin", middleware.JWT(sessionSvc), middleware.RequireRoles(models.RoleOfficial))
	admin.GET("/complaints", grievanceHandler.List)
	admin.POST("/complaints/:id/assign", middleware.Audit(logr, "assign", "complaint"), grievanceHandler.Assign)
	admin.POST("/complaints/:id/status", middleware.Audit(logr, "update_status", "complaint"), grievanceHandler.UpdateStatus)
	admin.GET("/complaints/export.csv", exportHandler.PassthroughCSV)
	admin.GET("/queue", queueHandler.Load)
	admin.POST("/queue/selection", queueHandler.Toggle)
	admin.POST("/queue/selection/all", queueHandler.ToggleAll)
	admin.POST("/queue/:id/approve", middleware.Audit(logr, "approve", "queue"), queueHandler.Approve)
	admin.POST("/queue/:id/reject", middleware.Audit(logr, "reject", "queue"), queueHandler.Reject)
	admin.POST("/queue/bulk-approve", middleware.Audit(logr, "bulk_approve", "queue"), queueHandler.BulkApprove)
	admin.POST("/exports", middleware.Audit(logr, "export", "complaints"), exportHandler.Generate)
	admin.GET("/metrics", metricsHandler.Snapshot)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}
