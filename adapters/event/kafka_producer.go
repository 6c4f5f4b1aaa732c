package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/khoahotran/skillora/internal/application/service"
	"github.com/khoahotran/skillora/internal/config"
	"github.com/khoahotran/skillora/pkg/logger"
)

const (
	TopicSkillEvents = "skill.events"
	TopicGoalEvents  = "goal.events"
)

// KafkaPublisher writes domain events keyed by user key, so one user's
// events stay ordered within a partition.
type KafkaPublisher struct {
	SkillEventsWriter *kafka.Writer
	GoalEventsWriter  *kafka.Writer
	logger            logger.Logger
}

func NewKafkaPublisher(cfg config.Config, log logger.Logger) (*KafkaPublisher, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	skillWriter := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    TopicSkillEvents,
		Balancer: &kafka.Hash{},
	}

	goalWriter := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    TopicGoalEvents,
		Balancer: &kafka.Hash{},
	}

	log.Info("Kafka producers initialized")

	return &KafkaPublisher{
		SkillEventsWriter: skillWriter,
		GoalEventsWriter:  goalWriter,
		logger:            log,
	}, nil
}

func write(ctx context.Context, w *kafka.Writer, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := w.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: value}); err != nil {
		return fmt.Errorf("failed to write to topic %s: %w", w.Topic, err)
	}
	return nil
}

func (p *KafkaPublisher) PublishSkillEvent(ctx context.Context, evt service.SkillCompletedEvent) error {
	return write(ctx, p.SkillEventsWriter, evt.UserKey, evt)
}

func (p *KafkaPublisher) PublishGoalEvent(ctx context.Context, evt service.GoalEvent) error {
	return write(ctx, p.GoalEventsWriter, evt.UserKey, evt)
}

func (p *KafkaPublisher) Close() {
	if p.SkillEventsWriter != nil {
		p.SkillEventsWriter.Close()
	}
	if p.GoalEventsWriter != nil {
		p.GoalEventsWriter.Close()
	}
	p.logger.Info("Closed Kafka producers")
}
