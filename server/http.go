package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"repwatch-console/config"
	"repwatch-console/constant"
	"repwatch-console/handler"
	"repwatch-console/pkg/rabbitmq"
	"repwatch-console/repository"
	"repwatch-console/service"
	"repwatch-console/session"
)

func RunHttp(cfg *config.Config) {
	ctx, cancel := signal.NotifyContext(setupLogger(cfg), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.Ctx(ctx).Info().
		Str("env", cfg.App.Environment).
		Bool("isProduction", cfg.App.Environment == constant.EnvironmentProduction.String()).
		Send()
	if cfg.App.Environment == constant.EnvironmentProduction.String() {
		gin.SetMode(gin.ReleaseMode)
	}

	for _, dir := range []string{cfg.Paths.UploadsDir, cfg.Paths.OutputDir, cfg.Paths.BackupsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			zerolog.Ctx(ctx).Fatal().Err(err).Str("dir", dir).Msg("failed to create data directory")
		}
	}

	repo, err := repository.NewRepo(cfg.Database.DSN, cfg.Database.LogMode)
	if err != nil {
		zerolog.Ctx(ctx).Fatal().Err(err).Msg("failed to open database")
	}
	if err := repo.AutoMigrate(); err != nil {
		zerolog.Ctx(ctx).Fatal().Err(err).Msg("failed to migrate database")
	}

	sessions := session.NewManager(
		session.NewMemoryStore(),
		cfg.Auth.AdminUsername,
		cfg.Auth.AdminPasswordHash,
		cfg.Auth.SessionTimeout,
	)

	concat := service.NewFFmpegConcatenator(cfg.Pipeline.FFmpegBin, cfg.Pipeline.FFmpegTimeout)
	combine := service.NewCombineService(repo, concat, cfg.Paths.UploadsDir, cfg.Paths.OutputDir)
	backups := service.NewBackupService(cfg.Backup, cfg.Paths.BackupsDir, cfg.Storage, cfg.MinIOBucket)

	janitor := service.NewJanitor(cfg.Paths.OutputDir, cfg.Pipeline.ArtifactRetention, cfg.Pipeline.SweepInterval)
	go janitor.Run(ctx)

	if cfg.Queue != nil && cfg.Queue.Enabled {
		conn, err := config.NewRabbitMQConn(ctx, cfg.Queue)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("upload-event ingest disabled: rabbitmq unavailable")
		} else {
			ingest := rabbitmq.NewConsumer(conn, cfg.Queue, cfg.Server.Workers, handler.UploadEventHandler)
			go func() {
				if err := ingest.Consume(ctx, handler.IngestDependencies{Repo: repo}); err != nil && !errors.Is(err, context.Canceled) {
					zerolog.Ctx(ctx).Error().Err(err).Msg("upload-event consumer stopped")
				}
			}()
		}
	}

	h := handler.New(sessions, repo, combine, backups, cfg)
	r := newRouter(cfg, h)

	srv := http.Server{
		Handler:           r,
		Addr:              fmt.Sprintf(":%s", cfg.Server.HttpPort),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zerolog.Ctx(ctx).Info().Str("addr", srv.Addr).Msg("start http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zerolog.Ctx(ctx).Error().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	zerolog.Ctx(ctx).Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("shutdown failed")
	}
	zerolog.Ctx(ctx).Info().Msg("server shutdown")
}

func newRouter(cfg *config.Config, h *handler.Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.LoadHTMLGlob(filepath.Join(cfg.Paths.TemplatesDir, "*.html"))

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/login")
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/login", h.LoginPage)
	r.POST("/auth", h.Authenticate)

	priv := r.Group("")
	priv.Use(h.RequireSession())

	priv.GET("/logout", h.Logout)
	priv.GET("/dashboard", h.Dashboard)
	priv.GET("/reports", h.Reports)

	priv.GET("/users", h.ListUsers)
	priv.GET("/users/new", h.NewUserForm)
	priv.POST("/users/create", h.CreateUser)
	priv.GET("/users/:id/edit", h.EditUserForm)
	priv.POST("/users/:id/update", h.UpdateUser)
	priv.POST("/users/:id/delete", h.DeleteUser)
	priv.POST("/users/bulk-delete", h.BulkDeleteUsers)

	priv.GET("/recordings/view", h.ViewRecording)
	priv.GET("/recordings/download", h.DownloadRecording)
	priv.GET("/recordings/live", h.WatchLive)
	priv.GET("/recordings/new-uploads", h.NewUploads)
	priv.GET("/recordings/latest", h.LatestVideo)

	priv.GET("/combine", h.CombineForm)
	priv.POST("/combine/generate", h.GenerateCombinedVideo)
	priv.GET("/combine/watch", h.WatchCombined)
	priv.GET("/combine/video", h.ServeCombinedVideo)

	priv.GET("/backups", h.ListBackups)
	priv.POST("/backups/create", h.CreateBackup)
	priv.GET("/backups/:name/download", h.DownloadBackup)
	priv.POST("/backups/:name/restore", h.RestoreBackup)
	priv.POST("/backups/:name/delete", h.DeleteBackup)

	priv.GET("/notifications", h.ListNotifications)
	priv.POST("/notifications/create", h.CreateNotification)
	priv.POST("/notifications/:id/read", h.MarkNotificationRead)
	priv.POST("/notifications/:id/delete", h.DeleteNotification)

	return r
}

func setupLogger(cfg *config.Config) context.Context {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.App.Environment == constant.EnvironmentDevelop.String() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}
