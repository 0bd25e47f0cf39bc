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
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/college-notes-api/api/swagger"
	"github.com/noah-isme/college-notes-api/internal/handler"
	"github.com/noah-isme/college-notes-api/internal/repository"
	"github.com/noah-isme/college-notes-api/internal/service"
	"github.com/noah-isme/college-notes-api/pkg/cache"
	"github.com/noah-isme/college-notes-api/pkg/config"
	"github.com/noah-isme/college-notes-api/pkg/database"
	"github.com/noah-isme/college-notes-api/pkg/logger"
	"github.com/noah-isme/college-notes-api/pkg/mailer"
	"github.com/noah-isme/college-notes-api/pkg/storage"
)

// @title College Notes API
// @version 1.0.0
// @description Notes, question papers and events for a college department, with moderation and notifications.
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 15 * time.Second

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

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(database.DSN(cfg.Database)); err != nil {
			return err
		}
		logr.Info("migrations applied")
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	metrics := service.NewMetricsService()
	validate := service.NewValidator()
	authorizer := service.NewAuthorizer()

	var redisClient *redis.Client
	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			// Listing works without the cache, so a missing Redis only degrades.
			logr.Warn("redis unavailable, list cache disabled", zap.Error(err))
		} else {
			repo := repository.NewCacheRepository(redisClient, "college-notes")
			defer repo.Close() //nolint:errcheck
			cacheRepo = repo
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.ListTTL, logr, cacheRepo != nil)

	backend, local, signer, err := newStorageBackend(ctx, cfg, logr)
	if err != nil {
		return err
	}
	files := storage.NewFileStore(backend, storage.FileStoreConfig{
		MaxSize:      cfg.Uploads.MaxFileSizeBytes,
		AllowedMIMEs: cfg.Uploads.AllowedMIMEs,
	}, logr)

	renderer, err := mailer.NewRenderer(cfg.Mail.AppName, cfg.Mail.FrontendBaseURL)
	if err != nil {
		return err
	}

	userRepo := repository.NewUserRepository(db)
	contentRepo := repository.NewContentRepository(db)
	engagementRepo := repository.NewEngagementRepository(db)

	notifier := service.NewNotifier(userRepo, renderer, newMailSender(cfg, logr), metrics, logr, service.NotifierConfig{
		Workers:     cfg.Notifications.Workers,
		BufferSize:  cfg.Notifications.BufferSize,
		Concurrency: cfg.Notifications.Concurrency,
	})
	notifier.Start(context.Background())

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
		Issuer: cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, authorizer, validate, logr)
	reportSvc := service.NewReportService(contentRepo, authorizer, logr)

	contentHandler := func(variant service.ContentVariant) *handler.ContentHandler {
		content := service.NewContentService(variant, service.ContentDeps{
			Repo:       contentRepo,
			Engagement: engagementRepo,
			Files:      files,
			Notifier:   notifier,
			Authorizer: authorizer,
			Cache:      cacheSvc,
			Metrics:    metrics,
			Validator:  validate,
			Logger:     logr,
		})
		engagement := service.NewEngagementService(variant, contentRepo, engagementRepo, files, authorizer, metrics, validate, logr)
		return handler.NewContentHandler(content, engagement, reportSvc, cfg.Uploads.MaxFileSizeBytes, logr)
	}

	checks := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	}

	var fileHandler *handler.FileHandler
	if local != nil {
		fileHandler = handler.NewFileHandler(signer, local)
	}

	router := handler.NewRouter(handler.RouterConfig{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Tokens:         authSvc,
		Metrics:        metrics,
		Logger:         logr,
		Auth:           handler.NewAuthHandler(authSvc),
		Users:          handler.NewUserHandler(userSvc),
		Notes:          contentHandler(service.NoteVariant),
		QuestionPapers: contentHandler(service.QuestionPaperVariant),
		Courses:        handler.NewCourseHandler(service.NewCourseService(repository.NewCourseRepository(db), authorizer, validate, logr)),
		Events:         handler.NewEventHandler(service.NewEventService(repository.NewEventRepository(db), notifier, authorizer, validate, logr)),
		Files:          fileHandler,
		Health:         handler.NewHealthHandler(metrics, checks),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logr.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("http shutdown", zap.Error(err))
	}
	// Requests are drained first so no notice is enqueued after the queue closes.
	if err := notifier.Stop(shutdownCtx); err != nil {
		logr.Warn("notification queue not drained", zap.Error(err))
	}
	logr.Info("server stopped")
	return nil
}

func newStorageBackend(ctx context.Context, cfg *config.Config, logr *zap.Logger) (storage.Backend, *storage.LocalStorage, *storage.SignedURLSigner, error) {
	switch cfg.Uploads.Driver {
	case config.StorageDriverAzure:
		azure, err := storage.NewAzureBlobStorage(cfg.Uploads.AzureConnectionString, cfg.Uploads.AzureContainer, logr)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := azure.EnsureContainer(ctx); err != nil {
			return nil, nil, nil, err
		}
		return azure, nil, nil, nil
	case config.StorageDriverLocal, "":
		signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)
		baseURL := cfg.Uploads.PublicBaseURL
		if baseURL == "" {
			baseURL = cfg.APIPrefix + "/files"
		}
		local, err := storage.NewLocalStorage(cfg.Uploads.StorageDir, baseURL, signer)
		if err != nil {
			return nil, nil, nil, err
		}
		return local, local, signer, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown upload driver %q", cfg.Uploads.Driver)
	}
}

func newMailSender(cfg *config.Config, logr *zap.Logger) mailer.Sender {
	if cfg.Mail.Provider == config.MailProviderSendgrid {
		if cfg.Mail.SendgridAPIKey != "" {
			return mailer.NewSendgridSender(cfg.Mail.SendgridAPIKey, cfg.Mail.AppName, cfg.Mail.FromName, cfg.Mail.FromAddress)
		}
		logr.Warn("sendgrid selected without an API key, falling back to log sender")
	}
	return mailer.NewLogSender(logr)
}
