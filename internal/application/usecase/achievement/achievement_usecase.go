package achievement

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/skillora/internal/domain/achievement"
	"github.com/khoahotran/skillora/pkg/apperror"
	"github.com/khoahotran/skillora/pkg/logger"
)

type AchievementUseCase struct {
	repo   achievement.Repository
	logger logger.Logger
}

func NewAchievementUseCase(r achievement.Repository, log logger.Logger) *AchievementUseCase {
	return &AchievementUseCase{repo: r, logger: log}
}

// ListAchievements returns the user's achievements newest first.
func (uc *AchievementUseCase) ListAchievements(ctx context.Context, userKey string) ([]achievement.Record, error) {
	if userKey == "" {
		return nil, apperror.NewInvalidInput("'userKey' is required", nil)
	}
	doc, err := uc.repo.Get(ctx, userKey)
	if errors.Is(err, achievement.ErrDocumentNotFound) {
		return []achievement.Record{}, nil
	}
	if err != nil {
		return nil, apperror.AsStorageFailure("achievements.get", userKey, err)
	}
	return achievement.SortByDateDesc(doc.Achievements), nil
}

// RemoveAchievement pulls every achievement titled title. A user without an
// achievement document is NotFound; a missing title is a no-op.
func (uc *AchievementUseCase) RemoveAchievement(ctx context.Context, userKey, title string) ([]achievement.Record, error) {
	if userKey == "" || title == "" {
		return nil, apperror.NewInvalidInput("'userKey' and 'title' are required", nil)
	}
	doc, err := uc.repo.PullByTitle(ctx, userKey, title)
	if errors.Is(err, achievement.ErrDocumentNotFound) {
		return nil, apperror.NewNotFound("achievements", userKey)
	}
	if err != nil {
		uc.logger.Error("Failed to remove achievement", err, zap.String("user_key", userKey), zap.String("title", title))
		return nil, apperror.AsStorageFailure("achievements.pull", userKey, err)
	}
	return doc.Achievements, nil
}

type AddAchievementInput struct {
	UserKey       string
	Title         string
	Type          string
	Description   string
	RelatedCareer string
	Icon          string
}

// AddAchievement appends one manually entered achievement.
func (uc *AchievementUseCase) AddAchievement(ctx context.Context, in AddAchievementInput) ([]achievement.Record, error) {
	if in.UserKey == "" {
		return nil, apperror.NewInvalidInput("'userKey' is required", nil)
	}
	typ, err := achievement.ParseType(in.Type)
	if err != nil {
		return nil, apperror.NewInvalidInput("achievement type must be one of academic, achievement, certification, skill", err)
	}
	rec := achievement.Record{
		ID:            uuid.New(),
		Title:         in.Title,
		Type:          typ,
		Description:   in.Description,
		RelatedCareer: in.RelatedCareer,
		Date:          time.Now().UTC(),
		Icon:          in.Icon,
	}
	if err := rec.Validate(); err != nil {
		return nil, apperror.NewInvalidInput("achievement validation failed", err)
	}

	if err := uc.repo.AppendMany(ctx, in.UserKey, []achievement.Record{rec}); err != nil {
		uc.logger.Error("Failed to add achievement", err, zap.String("user_key", in.UserKey))
		return nil, apperror.AsStorageFailure("achievements.append", in.UserKey, err)
	}

	return uc.ListAchievements(ctx, in.UserKey)
}
