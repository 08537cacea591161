package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"research-fi.backend/internal/config"
	"research-fi.backend/internal/infrastructure/genai"
	"research-fi.backend/internal/infrastructure/ipfs"
	"research-fi.backend/internal/infrastructure/jobs"
	"research-fi.backend/internal/infrastructure/payments"
	"research-fi.backend/internal/infrastructure/repositories"
	"research-fi.backend/internal/interfaces/http/handlers"
	"research-fi.backend/internal/interfaces/http/middleware"
	"research-fi.backend/internal/usecases"
	"research-fi.backend/pkg/logger"
	"research-fi.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	newSessionLedger = func() payments.SessionStore { return payments.NewRedisStore(30 * 24 * time.Hour) }
	runServer        = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB         = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := loadCfg()

	// Initialize Logger
	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	// Initialize Redis
	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	// Set Gin mode
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database using GORM
	dsn := cfg.Database.URL()
	db, err := openDB(dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("⚠️ Database not available: %v (endpoints will return errors)", err)
	} else {
		log.Println("✅ Connected to PostgreSQL via GORM")
	}

	// Initialize repositories
	studyRepo := repositories.NewStudyRepository(db)
	researcherRepo := repositories.NewResearcherRepository(db)
	participantRepo := repositories.NewParticipantRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	enrollmentRepo := repositories.NewEnrollmentRepository(db)

	// Initialize external stores
	metadataStore := ipfs.NewClient(cfg.Pinata.JWT, cfg.Pinata.PinURL, cfg.Pinata.Gateways)
	if !metadataStore.Configured() {
		log.Println("⚠️ PINATA_JWT not set: study metadata will not be pinned")
	}
	contentClient := genai.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.BaseURL)
	if !contentClient.Configured() {
		log.Println("⚠️ GEMINI_API_KEY not set: content generation disabled")
	}
	actionStore := redis.NewActionStore(24 * time.Hour)
	sessionLedger := newSessionLedger()

	// Initialize usecases
	studyUsecase := usecases.NewStudyUsecase(studyRepo, researcherRepo, enrollmentRepo, metadataStore)
	enrollmentUsecase := usecases.NewEnrollmentUsecase(enrollmentRepo, participantRepo, studyRepo, researcherRepo, studyUsecase)
	profileUsecase := usecases.NewProfileUsecase(profileRepo, actionStore)
	fundingUsecase := usecases.NewFundingUsecase(studyRepo, researcherRepo, enrollmentRepo, sessionLedger)
	contentUsecase := usecases.NewContentUsecase(contentClient)
	statsUsecase := usecases.NewStatsUsecase(studyRepo, researcherRepo, participantRepo, enrollmentRepo)

	// Initialize handlers
	studyHandler := handlers.NewStudyHandler(studyUsecase, profileUsecase)
	enrollmentHandler := handlers.NewEnrollmentHandler(enrollmentUsecase, profileUsecase)
	profileHandler := handlers.NewProfileHandler(profileUsecase)
	fundingHandler := handlers.NewFundingHandler(fundingUsecase)
	contentHandler := handlers.NewContentHandler(contentUsecase)
	statsHandler := handlers.NewStatsHandler(statsUsecase)

	// Start background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	capacityJob := jobs.NewStudyCapacityJob(studyRepo, enrollmentRepo, cfg.Jobs.CapacityCheckInterval)
	go capacityJob.Start(ctx)

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		studyHandler:      studyHandler,
		enrollmentHandler: enrollmentHandler,
		profileHandler:    profileHandler,
		fundingHandler:    fundingHandler,
		contentHandler:    contentHandler,
		statsHandler:      statsHandler,
		walletAuth:        middleware.WalletAuthMiddleware(),
	})

	// Print all registered routes for debugging
	log.Println("📋 Registered Routes:")
	for _, route := range r.Routes() {
		log.Printf("   %s %s", route.Method, route.Path)
	}

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("🛑 Shutting down server...")
		capacityJob.Stop()
		cancel()
	}()

	// Start server
	log.Printf("🚀 Research-Fi Backend starting on port %s", cfg.Server.Port)
	log.Printf("📚 API: http://localhost:%s/api/v1", cfg.Server.Port)
	log.Printf("❤️ Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
