package goal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/skillora/internal/application/service"
	"github.com/khoahotran/skillora/internal/domain/goal"
	"github.com/khoahotran/skillora/pkg/apperror"
	"github.com/khoahotran/skillora/pkg/logger"
)

var tracer = otel.Tracer("goal_usecase")

type MergeGoalsUseCase struct {
	goalRepo  goal.Repository
	locker    service.UserLocker
	publisher service.EventPublisher
	metrics   service.Metrics
	logger    logger.Logger
	now       func() time.Time
}

func NewMergeGoalsUseCase(repo goal.Repository, locker service.UserLocker, publisher service.EventPublisher, metrics service.Metrics, log logger.Logger) *MergeGoalsUseCase {
	return &MergeGoalsUseCase{
		goalRepo:  repo,
		locker:    locker,
		publisher: publisher,
		metrics:   metrics,
		logger:    log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type MergeGoalsInput struct {
	UserKey string
	Goals   []goal.CareerGoal
}

type MergeGoalsOutput struct {
	Goals []goal.CareerGoal
	Added []string
}

func (in MergeGoalsInput) validate() error {
	if in.UserKey == "" {
		return apperror.NewInvalidInput("'userKey' is required", nil)
	}
	if len(in.Goals) == 0 {
		return apperror.NewInvalidInput("'goals' must be a non-empty array", nil)
	}
	for i := range in.Goals {
		if err := in.Goals[i].Validate(); err != nil {
			return apperror.NewInvalidInput(fmt.Sprintf("goals[%d] is invalid", i), err)
		}
	}
	return nil
}

// Execute appends every proposed goal whose title is not yet in the user's
// list and writes the merged list back as one document.
func (uc *MergeGoalsUseCase) Execute(ctx context.Context, input MergeGoalsInput) (*MergeGoalsOutput, error) {
	ctx, span := tracer.Start(ctx, "MergeGoals")
	defer span.End()

	if err := input.validate(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("user_key", input.UserKey), attribute.Int("proposed", len(input.Goals)))

	var out MergeGoalsOutput
	err := uc.locker.WithLock(ctx, input.UserKey, func(ctx context.Context) error {
		now := uc.now()

		doc, err := uc.goalRepo.Get(ctx, input.UserKey)
		if errors.Is(err, goal.ErrDocumentNotFound) {
			doc = goal.NewDocument(input.UserKey, now)
		} else if err != nil {
			return apperror.AsStorageFailure("goals.get", input.UserKey, err)
		}

		before := len(doc.Careers)
		doc.Merge(input.Goals, now)
		doc.UpdatedAt = now

		if err := uc.goalRepo.Put(ctx, doc); err != nil {
			return apperror.AsStorageFailure("goals.put", input.UserKey, err)
		}

		out.Goals = doc.Careers
		for _, g := range doc.Careers[before:] {
			out.Added = append(out.Added, g.Title)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		uc.logger.Error("Failed to merge goals", err, zap.String("user_key", input.UserKey))
		return nil, err
	}

	uc.metrics.ObserveGoalMerge(len(out.Added))
	if len(out.Added) > 0 {
		evt := service.GoalEvent{
			EventType:  service.EventGoalsMerged,
			UserKey:    input.UserKey,
			Titles:     out.Added,
			OccurredAt: uc.now(),
		}
		go func() {
			if err := uc.publisher.PublishGoalEvent(context.Background(), evt); err != nil {
				uc.logger.Error("Failed to publish 'goals.merged' event", err, zap.String("user_key", evt.UserKey))
			}
		}()
	}

	uc.logger.Info("Goals merged",
		zap.String("user_key", input.UserKey),
		zap.Int("added", len(out.Added)),
		zap.Int("total", len(out.Goals)),
	)
	return &out, nil
}
