package goal

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/khoahotran/skillora/internal/application/service"
	"github.com/khoahotran/skillora/internal/domain/goal"
	"github.com/khoahotran/skillora/pkg/apperror"
	"github.com/khoahotran/skillora/pkg/logger"
)

type GoalUseCase struct {
	goalRepo  goal.Repository
	locker    service.UserLocker
	publisher service.EventPublisher
	logger    logger.Logger
}

func NewGoalUseCase(repo goal.Repository, locker service.UserLocker, publisher service.EventPublisher, log logger.Logger) *GoalUseCase {
	return &GoalUseCase{
		goalRepo:  repo,
		locker:    locker,
		publisher: publisher,
		logger:    log,
	}
}

// ListGoals returns the user's goals, or an empty list when the user has
// no goal document yet.
func (uc *GoalUseCase) ListGoals(ctx context.Context, userKey string) ([]goal.CareerGoal, error) {
	if userKey == "" {
		return nil, apperror.NewInvalidInput("'userKey' is required", nil)
	}
	doc, err := uc.goalRepo.Get(ctx, userKey)
	if errors.Is(err, goal.ErrDocumentNotFound) {
		return []goal.CareerGoal{}, nil
	}
	if err != nil {
		return nil, apperror.AsStorageFailure("goals.get", userKey, err)
	}
	return doc.Careers, nil
}

// RemoveGoal pulls every goal titled title from the user's list. Removing a
// missing title, or from a missing document, succeeds without change.
func (uc *GoalUseCase) RemoveGoal(ctx context.Context, userKey, title string) ([]goal.CareerGoal, error) {
	if userKey == "" || title == "" {
		return nil, apperror.NewInvalidInput("'userKey' and 'title' are required", nil)
	}

	var remaining []goal.CareerGoal
	removed := false
	err := uc.locker.WithLock(ctx, userKey, func(ctx context.Context) error {
		doc, err := uc.goalRepo.Get(ctx, userKey)
		if errors.Is(err, goal.ErrDocumentNotFound) {
			remaining = []goal.CareerGoal{}
			return nil
		}
		if err != nil {
			return apperror.AsStorageFailure("goals.get", userKey, err)
		}
		if !doc.HasTitle(title) {
			remaining = doc.Careers
			return nil
		}

		doc, err = uc.goalRepo.PullByTitle(ctx, userKey, title)
		if err != nil {
			return apperror.AsStorageFailure("goals.pull", userKey, err)
		}
		remaining = doc.Careers
		removed = true
		return nil
	})
	if err != nil {
		uc.logger.Error("Failed to remove goal", err, zap.String("user_key", userKey), zap.String("title", title))
		return nil, err
	}
	if !removed {
		return remaining, nil
	}

	evt := service.GoalEvent{
		EventType:  service.EventGoalRemoved,
		UserKey:    userKey,
		Titles:     []string{title},
		OccurredAt: time.Now().UTC(),
	}
	go func() {
		if err := uc.publisher.PublishGoalEvent(context.Background(), evt); err != nil {
			uc.logger.Error("Failed to publish 'goal.removed' event", err, zap.String("user_key", evt.UserKey))
		}
	}()

	return remaining, nil
}
