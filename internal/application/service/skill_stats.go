package service

import (
	"context"
)

type SkillCount struct {
	Skill       string `json:"skill"`
	Completions int64  `json:"completions"`
}

type SkillStatsStore interface {
	Increment(ctx context.Context, skill string, by int64) error
	Top(ctx context.Context, limit int) ([]SkillCount, error)
}
