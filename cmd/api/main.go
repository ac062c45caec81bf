package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/rilesCL/Projet-Leandrose-sub000/config"
	_ "github.com/rilesCL/Projet-Leandrose-sub000/docs" // Important for Swagger
	v1 "github.com/rilesCL/Projet-Leandrose-sub000/internal/delivery/http/v1"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/document"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/domain"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/repository/memory"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/repository/postgres"
	"github.com/rilesCL/Projet-Leandrose-sub000/internal/usecase"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/auth"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/database"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/email"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/logger"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/redis"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/storage"
	"github.com/rilesCL/Projet-Leandrose-sub000/pkg/validation"
)

type repositories struct {
	users        domain.UserRepository
	offers       domain.OfferRepository
	cvs          domain.CVRepository
	applications domain.ApplicationRepository
	agreements   domain.AgreementRepository
	evaluations  domain.EvaluationRepository
}

// @title           Internship Placement API
// @version         1.0
// @description     Application acceptance, three-party agreement signatures and dual evaluations of internship placements.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting placement backend", "port", cfg.Port, "storage", cfg.StorageDriver, "documents", cfg.DocumentStore)

	ctx := context.Background()
	checks := map[string]usecase.HealthCheck{}

	// 3. Setup Repositories
	var repos repositories
	switch cfg.StorageDriver {
	case "memory":
		store := memory.NewStore()
		memory.SeedDemo(store)
		logger.Log.Warn("Using in-memory storage with demo data; nothing survives a restart")
		repos = repositories{
			users:        memory.NewUserRepository(store),
			offers:       memory.NewOfferRepository(store),
			cvs:          memory.NewCVRepository(store),
			applications: memory.NewApplicationRepository(store),
			agreements:   memory.NewAgreementRepository(store),
			evaluations:  memory.NewEvaluationRepository(store),
		}
	default:
		dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
		if err != nil {
			logger.Log.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer dbPool.Close()

		if cfg.RunMigrations {
			db := database.SQLDB(dbPool)
			if err := database.Apply(ctx, db); err != nil {
				logger.Log.Error("Failed to apply migrations", "error", err)
				os.Exit(1)
			}
			_ = db.Close()
		}

		checks["database"] = dbPool.Ping
		repos = repositories{
			users:        postgres.NewUserRepository(dbPool),
			offers:       postgres.NewOfferRepository(dbPool),
			cvs:          postgres.NewCVRepository(dbPool),
			applications: postgres.NewApplicationRepository(dbPool),
			agreements:   postgres.NewAgreementRepository(dbPool),
			evaluations:  postgres.NewEvaluationRepository(dbPool),
		}
	}

	// 4. Setup Document Storage
	var files storage.Store
	switch cfg.DocumentStore {
	case "s3":
		s3Store, err := storage.NewS3Store(ctx, storage.S3Config{
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			Prefix:          cfg.S3Prefix,
		})
		if err != nil {
			logger.Log.Error("Failed to initialize S3 document store", "error", err)
			os.Exit(1)
		}
		checks["documents"] = s3Store.Ping
		files = s3Store
	default:
		localStore, err := storage.NewLocalStore(cfg.DocumentDir)
		if err != nil {
			logger.Log.Error("Failed to initialize local document store", "error", err)
			os.Exit(1)
		}
		files = localStore
	}

	catalog, err := document.LoadCatalog()
	if err != nil {
		logger.Log.Error("Failed to load evaluation forms", "error", err)
		os.Exit(1)
	}
	generator := document.NewGenerator(files, catalog)

	// 5. Setup Redis (optional)
	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword})
		if err != nil {
			logger.Log.Warn("Redis unavailable, rate limiting falls back to in-memory", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		}
	}

	// 6. Setup Email Service
	emailService := email.NewEmailService(cfg)
	if !emailService.IsConfigured() {
		logger.Log.Warn("Email service not fully configured - agreement notifications will be skipped")
	}

	// 7. Setup UseCases
	validate := validation.New()
	applicationUC := usecase.NewApplicationUsecase(repos.applications, repos.offers, repos.cvs, repos.users, validate)
	agreementUC := usecase.NewAgreementUsecase(repos.agreements, repos.applications, repos.evaluations, repos.offers, repos.users, generator, emailService, validate)
	evaluationUC := usecase.NewEvaluationUsecase(repos.evaluations, repos.agreements, repos.offers, repos.users, generator, catalog, validate)
	healthUC := usecase.NewHealthUsecase(checks)

	// 8. Setup Auth
	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		logger.Log.Error("Failed to initialize token issuer", "error", err)
		os.Exit(1)
	}

	// 9. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		ApplicationUC: applicationUC,
		AgreementUC:   agreementUC,
		EvaluationUC:  evaluationUC,
		HealthUC:      healthUC,
		Issuer:        issuer,
		Redis:         redisClient,
		Config:        cfg,
	})

	// 10. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
