package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/khoahotran/skillora/adapters/event"
	"github.com/khoahotran/skillora/adapters/persistence"
	statsUC "github.com/khoahotran/skillora/internal/application/usecase/stats"
	"github.com/khoahotran/skillora/internal/config"
	"github.com/khoahotran/skillora/pkg/logger"
)

func main() {
	// Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("cannot load config: " + err.Error())
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()
	appLogger.Info("Starting Skillora stats worker")

	if len(cfg.Kafka.Brokers) == 0 {
		appLogger.Fatal("Worker requires Kafka", nil)
	}
	if cfg.Redis.Addr == "" {
		appLogger.Fatal("Worker requires Redis", nil)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis
	redisClient, err := persistence.NewRedisClient(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Redis", err)
	}
	defer redisClient.Close()

	// Worker Use Case
	statsUseCase := statsUC.NewStatsUseCase(persistence.NewRedisSkillStatsRepo(redisClient), appLogger)

	// Kafka Consumer
	reader := event.NewSkillEventReader(cfg)
	defer reader.Close()

	appLogger.Info("Worker listening", zap.String("topic", event.TopicSkillEvents), zap.String("group_id", cfg.Kafka.GroupID))

	consumer := event.NewSkillEventConsumer(reader, statsUseCase.RecordSkillCompletion, appLogger)
	if err := consumer.Run(ctx); err != nil {
		appLogger.Error("Worker stopped with error", err)
	}
	appLogger.Info("Worker stopped")
}
