package stats

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/khoahotran/skillora/internal/application/service"
	"github.com/khoahotran/skillora/pkg/apperror"
	"github.com/khoahotran/skillora/pkg/logger"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

type StatsUseCase struct {
	store  service.SkillStatsStore
	logger logger.Logger
}

func NewStatsUseCase(s service.SkillStatsStore, log logger.Logger) *StatsUseCase {
	return &StatsUseCase{store: s, logger: log}
}

// RecordSkillCompletion counts one completion event. Each matched career
// counts once, so fan-out completions weigh more.
func (uc *StatsUseCase) RecordSkillCompletion(ctx context.Context, evt service.SkillCompletedEvent) error {
	skill := strings.TrimSpace(evt.Skill)
	if skill == "" || evt.AchievementsCreated <= 0 {
		uc.logger.Warn("Ignoring skill event without skill or achievements", zap.String("user_key", evt.UserKey))
		return nil
	}
	if err := uc.store.Increment(ctx, skill, int64(evt.AchievementsCreated)); err != nil {
		return apperror.NewInternal("failed to record skill completion", err)
	}
	return nil
}

// TopSkills returns the most completed skills, highest first.
func (uc *StatsUseCase) TopSkills(ctx context.Context, limit int) ([]service.SkillCount, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	top, err := uc.store.Top(ctx, limit)
	if err != nil {
		uc.logger.Error("Failed to read skill stats", err)
		return nil, apperror.NewInternal("failed to read skill stats", err)
	}
	if top == nil {
		top = []service.SkillCount{}
	}
	return top, nil
}
