package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/khoahotran/skillora/adapters/event"
	httpAdapter "github.com/khoahotran/skillora/adapters/http"
	"github.com/khoahotran/skillora/adapters/llm"
	"github.com/khoahotran/skillora/adapters/lock"
	"github.com/khoahotran/skillora/adapters/media_storage"
	metricsAdapter "github.com/khoahotran/skillora/adapters/metrics"
	"github.com/khoahotran/skillora/adapters/persistence"
	"github.com/khoahotran/skillora/adapters/persistence/memory"
	"github.com/khoahotran/skillora/internal/application/service"
	achievementUC "github.com/khoahotran/skillora/internal/application/usecase/achievement"
	fileUC "github.com/khoahotran/skillora/internal/application/usecase/file"
	goalUC "github.com/khoahotran/skillora/internal/application/usecase/goal"
	recommendUC "github.com/khoahotran/skillora/internal/application/usecase/recommend"
	statsUC "github.com/khoahotran/skillora/internal/application/usecase/stats"
	"github.com/khoahotran/skillora/internal/config"
	"github.com/khoahotran/skillora/internal/domain/achievement"
	"github.com/khoahotran/skillora/internal/domain/goal"
	"github.com/khoahotran/skillora/pkg/auth"
	"github.com/khoahotran/skillora/pkg/logger"
	"github.com/khoahotran/skillora/pkg/tracing"
)

func main() {
	// Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("cannot load config: " + err.Error())
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()
	appLogger.Info("Starting Skillora API server", zap.String("env", cfg.App.Env))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Tracing
	shutdownTracing, err := tracing.Init(ctx, cfg, appLogger, "skillora-api")
	if err != nil {
		appLogger.Fatal("Cannot init tracing", err)
	}
	defer shutdownTracing(context.Background())

	// Document stores
	var goalRepo goal.Repository
	var achievementRepo achievement.Repository
	if cfg.DB.DSN != "" {
		dbPool, err := persistence.NewPostgresPool(ctx, cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Cannot connect Postgres", err)
		}
		defer dbPool.Close()
		goalRepo = persistence.NewPostgresGoalRepo(dbPool, appLogger)
		achievementRepo = persistence.NewPostgresAchievementRepo(dbPool, appLogger)
	} else {
		appLogger.Warn("DB_DSN not set, using in-memory document store")
		goalRepo = memory.NewGoalRepo()
		achievementRepo = memory.NewAchievementRepo()
	}

	// Per-user locking and skill stats
	var locker service.UserLocker
	var skillStats service.SkillStatsStore
	if cfg.Redis.Addr != "" {
		redisClient, err := persistence.NewRedisClient(ctx, cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Cannot connect Redis", err)
		}
		defer redisClient.Close()
		locker = lock.NewRedisLocker(redisClient, cfg.Redis.LockTTL, cfg.Redis.LockWait, appLogger)
		skillStats = persistence.NewRedisSkillStatsRepo(redisClient)
	} else {
		appLogger.Warn("REDIS_ADDR not set, using in-process user locks")
		locker = lock.NewMemoryLocker(cfg.Redis.LockWait)
		skillStats = memory.NewSkillStats()
	}

	// Events
	var publisher service.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher, err := event.NewKafkaPublisher(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Cannot init Kafka", err)
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	} else {
		appLogger.Warn("KAFKA_BROKERS not set, events are only logged")
		publisher = event.NewLogPublisher(appLogger)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	engineMetrics := metricsAdapter.NewPrometheusMetrics(registry)

	// Collaborators
	var llmSvc service.LLMService
	if cfg.Ollama.Host != "" {
		llmSvc, err = llm.NewOllamaLLMAdapter(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Cannot init LLM adapter", err)
		}
	}

	var fileHandler *httpAdapter.FileHandler
	if cfg.Cloudinary.CloudName != "" {
		uploader, err := media_storage.NewCloudinaryAdapter(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Cannot init uploader", err)
		}
		fileHandler = httpAdapter.NewFileHandler(fileUC.NewFileUseCase(uploader, appLogger))
	} else {
		appLogger.Warn("Cloudinary not configured, file routes disabled")
	}

	var jwtSvc *auth.JWTService
	if cfg.Auth.JWTSecret != "" {
		jwtSvc = auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)
	} else {
		appLogger.Warn("JWT_SECRET not set, bearer verification disabled")
	}

	// Use Cases
	mergeGoalsUseCase := goalUC.NewMergeGoalsUseCase(goalRepo, locker, publisher, engineMetrics, appLogger)
	goalUseCase := goalUC.NewGoalUseCase(goalRepo, locker, publisher, appLogger)
	completeSkillUseCase := achievementUC.NewCompleteSkillUseCase(goalRepo, achievementRepo, locker, publisher, engineMetrics, appLogger)
	achievementUseCase := achievementUC.NewAchievementUseCase(achievementRepo, appLogger)
	recommendUseCase := recommendUC.NewRecommendUseCase(llmSvc, cfg.Ollama.Timeout, appLogger)
	statsUseCase := statsUC.NewStatsUseCase(skillStats, appLogger)

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpAdapter.NewRouter(httpAdapter.RouterDeps{
		Goals:           httpAdapter.NewGoalHandler(mergeGoalsUseCase, goalUseCase, appLogger),
		Achievements:    httpAdapter.NewAchievementHandler(completeSkillUseCase, achievementUseCase, appLogger),
		Recommendations: httpAdapter.NewRecommendHandler(recommendUseCase),
		Stats:           httpAdapter.NewStatsHandler(statsUseCase),
		Files:           fileHandler,
		JWT:             jwtSvc,
		Metrics:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Logger:          appLogger,
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.App.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: corsHandler.Handler(router),
	}

	go func() {
		appLogger.Info("Server listening", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Cannot run server", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server shutdown failed", err)
	}
}
