package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"campusintern/internal/app"
	"campusintern/internal/config"
	"campusintern/internal/database"
	"campusintern/internal/domain/announcement"
	"campusintern/internal/domain/application"
	"campusintern/internal/domain/internship"
	"campusintern/internal/domain/principal"
	"campusintern/internal/domain/report"
	apphttp "campusintern/internal/http"
	"campusintern/internal/http/handlers"
	"campusintern/internal/http/metrics"
	httpmw "campusintern/internal/http/middleware"
	"campusintern/internal/http/response"
	"campusintern/internal/observability"
	"campusintern/internal/repository/memory"
	"campusintern/internal/repository/postgres"
	"campusintern/internal/security"
	"campusintern/internal/storage"
)

type repositories struct {
	principals    principal.Repository
	internships   internship.Repository
	applications  application.Repository
	announcements announcement.Repository
	reports       report.Repository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		observability.NewLogger("error", "json").Error("config: " + err.Error())
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	response.SetLogger(logger.Zerolog())

	ctx := context.Background()
	repos, db, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("database: " + err.Error())
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	blobs, err := openBlobStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("storage: " + err.Error())
		os.Exit(1)
	}

	redisClient := openRedis(ctx, cfg, logger)
	local := httpmw.NewRateLimiter()
	var limiter httpmw.Limiter = local
	if redisClient != nil {
		defer redisClient.Close()
		limiter = httpmw.NewRedisLimiter(redisClient, local, logger.Zerolog())
	}

	jwtProvider := security.NewJWTProvider(cfg.JWTSecret, cfg.TokenTTL)
	authService := app.NewAuthService(repos.principals, security.NewBcryptHasher(bcrypt.DefaultCost), jwtProvider, logger.With("service", "auth"))
	userService := app.NewUserService(repos.principals, authService, logger.With("service", "users"))
	internshipService := app.NewInternshipService(repos.internships, logger.With("service", "internships"))
	applicationService := app.NewApplicationService(repos.applications, repos.internships, blobs, logger.With("service", "applications"), cfg.MaxResumeBytes)
	announcementService := app.NewAnnouncementService(repos.announcements)
	reportService := app.NewReportService(repos.reports, repos.applications, repos.principals)

	collector := metrics.NewCollector()
	router := apphttp.NewRouter(apphttp.RouterDependencies{
		AuthHandler:         handlers.NewAuthHandler(authService, userService),
		InternshipHandler:   handlers.NewInternshipHandler(internshipService, applicationService),
		ApplicationHandler:  handlers.NewApplicationHandler(applicationService, limiter, cfg.ApplyRateLimit, collector),
		AnnouncementHandler: handlers.NewAnnouncementHandler(announcementService),
		AdminHandler:        handlers.NewAdminHandler(userService, reportService),
		AuthMiddleware:      httpmw.NewAuthMiddleware(authService),
		Limiter:             limiter,
		Metrics:             collector,
		Logger:              logger.Zerolog(),
		RequestTimeout:      cfg.RequestTimeout,
		MaxUploadBytes:      cfg.MaxResumeBytes + 1<<20,
	})
	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("API started on :" + cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server: " + err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown: " + err.Error())
	}
	logger.Info("API stopped")
}

func openRepositories(ctx context.Context, cfg *config.Config, logger *observability.Logger) (repositories, *sql.DB, error) {
	if cfg.InMemory() {
		logger.Info("using in-memory repositories; data is lost on exit")
		store := memory.NewStore()
		return repositories{
			principals:    store.Principals(),
			internships:   store.Internships(),
			applications:  store.Applications(),
			announcements: store.Announcements(),
			reports:       store.Reports(),
		}, nil, nil
	}
	db, err := database.NewPostgres(ctx, database.PostgresConfig{
		DSN:             cfg.PostgresDSN,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxIdle:     cfg.DBConnMaxIdle,
		ConnMaxLifetime: cfg.DBConnMaxLife,
	}, logger)
	if err != nil {
		return repositories{}, nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return repositories{}, nil, err
	}
	return repositories{
		principals:    postgres.NewPrincipalRepository(db),
		internships:   postgres.NewInternshipRepository(db),
		applications:  postgres.NewApplicationRepository(db),
		announcements: postgres.NewAnnouncementRepository(db),
		reports:       postgres.NewReportRepository(db),
	}, db, nil
}

func openBlobStore(ctx context.Context, cfg *config.Config, logger *observability.Logger) (storage.BlobStore, error) {
	if cfg.Storage.Endpoint == "" {
		logger.Info("S3_ENDPOINT not set, keeping resumes in memory")
		return storage.NewMemoryStore(), nil
	}
	store, err := storage.NewMinioStore(storage.MinioConfig{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	bucketCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := store.EnsureBucket(bucketCtx); err != nil {
		return nil, err
	}
	return store, nil
}

// openRedis returns nil when Redis is not configured or not reachable; the
// caller then limits in process.
func openRedis(ctx context.Context, cfg *config.Config, logger *observability.Logger) *redis.Client {
	if cfg.RedisURL == "" {
		return nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Error("invalid REDIS_URL, using in-process rate limiting: " + err.Error())
		return nil
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Error("redis unreachable, using in-process rate limiting: " + err.Error())
		_ = client.Close()
		return nil
	}
	return client
}
