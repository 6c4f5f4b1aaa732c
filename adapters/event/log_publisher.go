package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/khoahotran/skillora/internal/application/service"
	"github.com/khoahotran/skillora/pkg/logger"
)

// LogPublisher stands in for Kafka when no brokers are configured.
type LogPublisher struct {
	logger logger.Logger
}

func NewLogPublisher(log logger.Logger) *LogPublisher {
	return &LogPublisher{logger: log}
}

func (p *LogPublisher) PublishSkillEvent(_ context.Context, evt service.SkillCompletedEvent) error {
	p.logger.Debug("Skill event", zap.String("event_type", evt.EventType), zap.String("user_key", evt.UserKey), zap.String("skill", evt.Skill))
	return nil
}

func (p *LogPublisher) PublishGoalEvent(_ context.Context, evt service.GoalEvent) error {
	p.logger.Debug("Goal event", zap.String("event_type", evt.EventType), zap.String("user_key", evt.UserKey), zap.Strings("titles", evt.Titles))
	return nil
}
