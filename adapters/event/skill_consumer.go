package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/skillora/internal/application/service"
	"github.com/khoahotran/skillora/internal/config"
	"github.com/khoahotran/skillora/pkg/logger"
)

// MessageReader is the part of *kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type SkillEventHandler func(ctx context.Context, evt service.SkillCompletedEvent) error

type SkillEventConsumer struct {
	reader       MessageReader
	handler      SkillEventHandler
	logger       logger.Logger
	retryBackOff func() backoff.BackOff
}

func NewSkillEventReader(cfg config.Config) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    TopicSkillEvents,
		GroupID:  cfg.Kafka.GroupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
}

func NewSkillEventConsumer(r MessageReader, h SkillEventHandler, log logger.Logger) *SkillEventConsumer {
	return &SkillEventConsumer{reader: r, handler: h, logger: log, retryBackOff: defaultRetryBackOff}
}

func defaultRetryBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0
	return b
}

// Run consumes until ctx ends. Malformed messages and events of other types
// are committed and skipped. A failing handler is retried with backoff and
// nothing past that message is fetched until it succeeds, so the committed
// offset never moves beyond an unprocessed event.
func (c *SkillEventConsumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("Failed to read message from Kafka", err)
			continue
		}

		l := c.logger.With(zap.String("topic", msg.Topic), zap.String("key", string(msg.Key)), zap.Int64("offset", msg.Offset))

		var evt service.SkillCompletedEvent
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			l.Warn("Failed to unmarshal event, skipping", zap.Error(err))
			c.commit(msg)
			continue
		}
		if evt.EventType != service.EventSkillCompleted {
			l.Debug("Ignoring event", zap.String("event_type", evt.EventType))
			c.commit(msg)
			continue
		}

		err = backoff.RetryNotify(func() error {
			return c.handler(ctx, evt)
		}, backoff.WithContext(c.retryBackOff(), ctx), func(err error, wait time.Duration) {
			l.Error("Failed to process skill event, retrying", err, zap.String("skill", evt.Skill), zap.Duration("retry_in", wait))
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			l.Error("Giving up on skill event", err, zap.String("skill", evt.Skill))
			return err
		}
		c.commit(msg)
	}
}

func (c *SkillEventConsumer) commit(msg kafka.Message) {
	if err := c.reader.CommitMessages(context.Background(), msg); err != nil {
		c.logger.Error("Failed to commit message", err)
	}
}
